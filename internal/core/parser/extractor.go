package parser

import (
	"errors"
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"
)

// ErrNotFound is returned when the PDF path does not exist.
var ErrNotFound = errors.New("pdf not found")

// ParseError wraps extractor failures on corrupt or unreadable input.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string { return fmt.Sprintf("parse %s: %v", e.Path, e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }

// Page is one page of extracted plain text with its media-box dimensions.
type Page struct {
	Text   string
	Width  float64
	Height float64
}

// DocInfo carries the document-properties fields the metadata extractor
// consumes. All fields may be empty.
type DocInfo struct {
	Title string
}

// ExtractPages reads a PDF and returns per-page plain text plus the info
// dictionary. A page whose text cannot be extracted yields an empty Text;
// only a document-level failure is an error.
func ExtractPages(path string) (pages []Page, info DocInfo, err error) {
	if _, statErr := os.Stat(path); statErr != nil {
		return nil, DocInfo{}, fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	// The underlying reader panics on some malformed cross-reference
	// tables; surface those as ParseError instead of crashing.
	defer func() {
		if r := recover(); r != nil {
			pages, info = nil, DocInfo{}
			err = &ParseError{Path: path, Err: fmt.Errorf("%v", r)}
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, DocInfo{}, &ParseError{Path: path, Err: err}
	}
	defer f.Close()

	if title := r.Trailer().Key("Info").Key("Title"); !title.IsNull() {
		info.Title = title.Text()
	}

	total := r.NumPage()
	pages = make([]Page, 0, total)
	for i := 1; i <= total; i++ {
		p := r.Page(i)
		out := Page{}
		if !p.V.IsNull() {
			if text, perr := p.GetPlainText(nil); perr == nil {
				out.Text = text
			}
			out.Width, out.Height = mediaBoxSize(p)
		}
		pages = append(pages, out)
	}
	return pages, info, nil
}

func mediaBoxSize(p pdf.Page) (w, h float64) {
	mb := p.V.Key("MediaBox")
	if mb.Kind() != pdf.Array || mb.Len() < 4 {
		return 0, 0
	}
	w = mb.Index(2).Float64() - mb.Index(0).Float64()
	h = mb.Index(3).Float64() - mb.Index(1).Float64()
	return w, h
}
