package generator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Renderer persists a generated report. The service supplies only the
// citation list; layout is the renderer's concern.
type Renderer interface {
	Render(title, body string, sources []Citation) (string, error)
}

// MarkdownRenderer writes generated reports as markdown files under a
// configured directory.
type MarkdownRenderer struct {
	dir string
}

func NewMarkdownRenderer(dir string) *MarkdownRenderer {
	return &MarkdownRenderer{dir: dir}
}

func (r *MarkdownRenderer) Render(title, body string, sources []Citation) (string, error) {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}

	var b strings.Builder
	b.WriteString("# " + title + "\n\n")
	b.WriteString("_Generated: " + time.Now().Format(time.RFC3339) + "_\n\n")
	b.WriteString(body)
	b.WriteString("\n\n## Quellen\n\n")
	for i, src := range sources {
		b.WriteString(fmt.Sprintf("%d. Report %s, %s (Seiten %s, Relevanz %.2f)\n",
			i+1, src.ReportID, src.Heading, src.PageRange, src.Similarity))
	}

	path := filepath.Join(r.dir, fmt.Sprintf("report-%s.md", uuid.NewString()))
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}
