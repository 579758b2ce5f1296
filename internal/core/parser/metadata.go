package parser

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// DefaultYear is the deterministic fallback when no 4-digit year appears
// in the filename.
const DefaultYear = 2023

var (
	reportIDRe = regexp.MustCompile(`\d{3,}`)
	yearRe     = regexp.MustCompile(`20\d{2}`)
)

// Metadata describes one report, derived from the filename and the PDF
// info dictionary. Every field has a deterministic fallback; extraction
// never fails.
type Metadata struct {
	ReportID string `json:"report_id"`
	Year     int    `json:"year"`
	Title    string `json:"title"`
	Filename string `json:"filename"`
	NumPages int    `json:"num_pages"`
}

// ExtractMetadata derives the report identifier, publication year and
// title. The identifier is the first run of three or more digits in the
// filename stem that is not already claimed as the year; with no other
// run the year digits themselves serve, and with no digits at all the
// stem does. The year is the first 20xx match, else DefaultYear. The
// title prefers the document-properties Title.
func ExtractMetadata(path string, info DocInfo, numPages int) Metadata {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	yearDigits := yearRe.FindString(stem)
	year := DefaultYear
	if yearDigits != "" {
		if y, err := strconv.Atoi(yearDigits); err == nil {
			year = y
		}
	}

	reportID := stem
	runs := reportIDRe.FindAllString(stem, -1)
	for _, run := range runs {
		if run != yearDigits {
			reportID = run
			break
		}
	}
	if reportID == stem && len(runs) > 0 {
		reportID = runs[0]
	}

	title := strings.TrimSpace(info.Title)
	if title == "" {
		title = stem
	}

	return Metadata{
		ReportID: reportID,
		Year:     year,
		Title:    title,
		Filename: base,
		NumPages: numPages,
	}
}
