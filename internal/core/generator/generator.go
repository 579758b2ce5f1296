package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"docgen/config"
	"docgen/internal/core/retriever"
	"docgen/internal/database"
	"docgen/internal/database/model"
	"docgen/pkg/logger"

	"github.com/google/uuid"
	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// ErrLLMUnavailable marks a failed text-generation call.
var ErrLLMUnavailable = errors.New("llm unavailable")

// Citation points at one source chunk used for a generated report.
type Citation struct {
	ReportID   string  `json:"report_id"`
	Heading    string  `json:"heading"`
	PageRange  string  `json:"page_range"`
	Similarity float64 `json:"similarity"`
}

// Report is a synthesized document plus its source citations.
type Report struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	Sources    []Citation `json:"source_documents"`
	FilePath   string     `json:"file_path,omitempty"`
	NumSources int        `json:"num_sources"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}
type chatChoice struct {
	Index   int `json:"index"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	FinishReason string `json:"finish_reason"`
}
type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

// Service synthesizes a short technical report from search results and
// hands it to the renderer for persistence.
type Service struct {
	cfg      config.OpenAIConfig
	client   openai.Client
	store    *database.Store
	renderer Renderer
}

func NewService(cfg config.OpenAIConfig, store *database.Store, renderer Renderer) *Service {
	opts := []option.RequestOption{option.WithAPIKey(cfg.Key)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &Service{cfg: cfg, client: openai.NewClient(opts...), store: store, renderer: renderer}
}

// Generate builds a prompt from the brief and the top search results,
// calls the LLM and persists the rendered document with its citations.
func (s *Service) Generate(ctx context.Context, brief string, results []retriever.Result, numResults int) (Report, error) {
	if numResults <= 0 || numResults > len(results) {
		numResults = len(results)
	}
	top := results[:numResults]

	sysMsg, userMsg := BuildPrompt(brief, top)

	llmCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()
	content, err := s.callLLM(llmCtx, sysMsg, userMsg)
	if err != nil {
		return Report{}, fmt.Errorf("%w: %v", ErrLLMUnavailable, err)
	}

	report := Report{
		ID:         uuid.NewString(),
		Title:      reportTitle(brief),
		Content:    content,
		Sources:    Citations(top),
		NumSources: len(top),
	}

	path, err := s.renderer.Render(report.Title, report.Content, report.Sources)
	if err != nil {
		// The generated text is still returned; only persistence failed.
		logger.Error(err, "%v: render failed", config.ModuleGenerate)
	}
	report.FilePath = path

	row := model.GeneratedReport{
		ID:         report.ID,
		Title:      report.Title,
		Body:       report.Content,
		FilePath:   report.FilePath,
		NumSources: report.NumSources,
	}
	if err := database.CreateEntity(ctx, s.store.DB(), &row); err != nil {
		logger.Error(err, "%v: persist generated report failed", config.ModuleGenerate)
	}

	return report, nil
}

// Citations maps search results to the citation list handed to the
// renderer; formatting stays with the renderer.
func Citations(results []retriever.Result) []Citation {
	out := make([]Citation, 0, len(results))
	for _, r := range results {
		out = append(out, Citation{
			ReportID:   r.ReportID,
			Heading:    r.Heading,
			PageRange:  r.PageRange,
			Similarity: r.SimilarityScore,
		})
	}
	return out
}

// BuildPrompt assembles the system and user messages for the LLM.
func BuildPrompt(brief string, results []retriever.Result) (systemMsg, userMsg string) {
	var b strings.Builder
	b.WriteString("Technischer Report-Generator. Schreibe einen kurzen technischen Bericht ")
	b.WriteString("mit Einleitung, Analyse und Ergebnis (max 300 Worte), nur auf Basis des Kontexts.\n\n")
	b.WriteString("Kontext:\n")
	for i, r := range results {
		b.WriteString(fmt.Sprintf("Report %d: %s - %s\n", i+1, r.ReportID, r.Heading))
		b.WriteString(fmt.Sprintf("Quelle: Seiten %s, Relevanz: %.2f\n\n", r.PageRange, r.SimilarityScore))
		b.WriteString(r.Text)
		b.WriteString("\n---\n")
	}
	systemMsg = b.String()
	userMsg = fmt.Sprintf("Thema: %s", brief)
	return
}

func reportTitle(brief string) string {
	runes := []rune(brief)
	if len(runes) > 50 {
		brief = string(runes[:50])
	}
	return fmt.Sprintf("Synthesized Report: %s", brief)
}

func (s *Service) callLLM(ctx context.Context, promptSystem, promptUser string) (string, error) {
	req := chatRequest{
		Model:       s.cfg.Model,
		Temperature: 0.5,
		MaxTokens:   512,
		Messages: []chatMessage{
			{Role: "system", Content: promptSystem},
			{Role: "user", Content: promptUser},
		},
	}
	var out chatResponse
	if err := s.client.Post(ctx, "/chat/completions", req, &out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}
