package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// TOCEntry is one detected table-of-contents row: the heading label and
// its zero-indexed start page.
type TOCEntry struct {
	Heading   string
	StartPage int
}

// tocScanPages bounds how many leading pages are scanned for a TOC.
const tocScanPages = 5

// Keywords that mark a page as a TOC candidate (German and English).
var tocKeywords = []string{"inhalt", "inhaltsverzeichnis", "contents", "table of"}

// A TOC row looks like "1. Heading ............... 3": ordinal prefix,
// label, trailing printed page number at end of line. Leader dots are
// part of the lazy label group and survive into the heading.
var tocLineRe = regexp.MustCompile(`(?m)^(\d+\.\s+)(.+?)\s+(\d+)$`)

// ExtractTOC scans the first min(5, pageCount) pages for a table of
// contents and returns the entries in match order. Duplicate rows from
// repeated matches across TOC pages are kept as-is. An empty result means
// "no TOC" and selects fallback chunking; it is never an error.
func ExtractTOC(pages []Page) []TOCEntry {
	var toc []TOCEntry

	limit := tocScanPages
	if len(pages) < limit {
		limit = len(pages)
	}

	for i := 0; i < limit; i++ {
		text := pages[i].Text
		if text == "" || !containsTOCKeyword(text) {
			continue
		}
		for _, m := range tocLineRe.FindAllStringSubmatch(text, -1) {
			heading := strings.TrimSpace(m[2])
			printed, err := strconv.Atoi(m[3])
			if err != nil {
				continue
			}
			// printed pages are 1-indexed, positions 0-indexed
			toc = append(toc, TOCEntry{Heading: heading, StartPage: printed - 1})
		}
	}
	return toc
}

func containsTOCKeyword(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range tocKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
