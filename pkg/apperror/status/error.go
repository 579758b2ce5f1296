package status

// ErrorCode is a numeric code to classify API errors in a stable way
type ErrorCode int

// Reserved ranges by domain:
//   0-999:     client/validation errors
//   1000-1999: ingest
//   2000-2999: search
//   3000-3999: generate

const (
	BadRequestBase ErrorCode = 0
	IngestBase     ErrorCode = 1000
	SearchBase     ErrorCode = 2000
	GenerateBase   ErrorCode = 3000
)

// Client/validation errors start at 0
const (
	InvalidRequestBody ErrorCode = BadRequestBase + iota // 0
	MissingParams                                        // 1
)

// Ingest errors start at 1000
const (
	IngestInternal     ErrorCode = IngestBase + iota // 1000
	IngestFileNotFound                               // 1001
	IngestParseFailed                                // 1002
)

// Search errors start at 2000
const (
	SearchInternal             ErrorCode = SearchBase + iota // 2000
	SearchEmbeddingUnavailable                               // 2001
)

// Generate errors start at 3000
const (
	GenerateInternal       ErrorCode = GenerateBase + iota // 3000
	GenerateLLMUnavailable                                 // 3001
)

const (
	ErrorCodeInternal ErrorCode = 9000
)
