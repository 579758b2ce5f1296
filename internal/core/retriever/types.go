package retriever

// Candidate is a ready chunk eligible for ranking: its decoded vector
// plus the metadata carried through to the result.
type Candidate struct {
	ChunkID   string
	ReportID  string
	Heading   string
	PageRange string
	Text      string
	Vector    []float64
}

// Ranked pairs a candidate with its similarity to the query vector.
type Ranked struct {
	Candidate
	Score float64
}

// Result is a single search hit. Text is a bounded preview, not the full
// chunk content.
type Result struct {
	ChunkID         string  `json:"chunk_id"`
	ReportID        string  `json:"report_id"`
	SimilarityScore float64 `json:"similarity_score"`
	Text            string  `json:"text"`
	Heading         string  `json:"heading"`
	PageRange       string  `json:"page_range"`
}

// Ranker orders candidates by relevance to a query vector, best first.
// The flat scan implementation can be swapped for an approximate index
// without touching callers.
type Ranker interface {
	Rank(query []float64, candidates []Candidate) []Ranked
}
