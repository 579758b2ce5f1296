package parser

import (
	"fmt"
	"strings"
)

// PageBreakSeparator joins the per-page texts inside one chunk.
const PageBreakSeparator = "\n---PAGE_BREAK---\n"

// fallbackHeadingRunes caps the heading taken from a page's first line.
const fallbackHeadingRunes = 50

// Chunk is a contiguous page range with its heading label and the
// concatenated text of the covered pages.
type Chunk struct {
	Heading   string
	PageRange string
	Pages     []int
	Text      string
}

// ChunkByHeading partitions the document into chunks. With a TOC, entry i
// covers [start_i, start_{i+1}) and the last entry runs to the final page.
// A degenerate TOC range (out-of-order or duplicate entries) produces a
// chunk with no pages and empty text; that is accepted, not repaired.
// Without a TOC, every page becomes its own chunk.
func ChunkByHeading(pages []Page, toc []TOCEntry) []Chunk {
	if len(toc) == 0 {
		return chunkPerPage(pages)
	}

	chunks := make([]Chunk, 0, len(toc))
	for i, entry := range toc {
		end := len(pages)
		if i+1 < len(toc) {
			end = toc[i+1].StartPage
		}

		var parts []string
		var covered []int
		for p := entry.StartPage; p < end; p++ {
			if p < 0 || p >= len(pages) {
				continue
			}
			parts = append(parts, pages[p].Text)
			covered = append(covered, p)
		}

		chunks = append(chunks, Chunk{
			Heading:   entry.Heading,
			PageRange: fmt.Sprintf("%d-%d", entry.StartPage+1, end),
			Pages:     covered,
			Text:      strings.Join(parts, PageBreakSeparator),
		})
	}
	return chunks
}

func chunkPerPage(pages []Page) []Chunk {
	chunks := make([]Chunk, 0, len(pages))
	for i, page := range pages {
		heading := fmt.Sprintf("Page %d", i+1)
		if page.Text != "" {
			heading = truncateRunes(firstLine(page.Text), fallbackHeadingRunes)
		}
		chunks = append(chunks, Chunk{
			Heading:   heading,
			PageRange: fmt.Sprintf("%d", i+1),
			Pages:     []int{i},
			Text:      page.Text,
		})
	}
	return chunks
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
