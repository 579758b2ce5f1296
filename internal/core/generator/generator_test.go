package generator

import (
	"os"
	"strings"
	"testing"

	"docgen/internal/core/retriever"
)

func sampleResults() []retriever.Result {
	return []retriever.Result{
		{
			ChunkID:         "017-0",
			ReportID:        "017",
			SimilarityScore: 0.87,
			Text:            "Windkraftsimulation mit hoher Auflösung.",
			Heading:         "Windkraftsimulation",
			PageRange:       "3-5",
		},
		{
			ChunkID:         "042-1",
			ReportID:        "042",
			SimilarityScore: 0.65,
			Text:            "Bruchanalyse des Rotorblatts.",
			Heading:         "Bruchanalyse",
			PageRange:       "7-9",
		},
	}
}

func TestBuildPrompt(t *testing.T) {
	sysMsg, userMsg := BuildPrompt("Windkraft im Küstenbereich", sampleResults())

	for _, want := range []string{
		"Kontext:",
		"Report 1: 017 - Windkraftsimulation",
		"Seiten 3-5",
		"Relevanz: 0.87",
		"Windkraftsimulation mit hoher Auflösung.",
		"Report 2: 042 - Bruchanalyse",
	} {
		if !strings.Contains(sysMsg, want) {
			t.Errorf("system message missing %q", want)
		}
	}
	if userMsg != "Thema: Windkraft im Küstenbereich" {
		t.Errorf("user message = %q", userMsg)
	}
}

func TestBuildPrompt_NoResults(t *testing.T) {
	sysMsg, _ := BuildPrompt("Thema", nil)
	if !strings.Contains(sysMsg, "Kontext:") {
		t.Errorf("system message should still carry the frame: %q", sysMsg)
	}
}

func TestCitations(t *testing.T) {
	got := Citations(sampleResults())
	if len(got) != 2 {
		t.Fatalf("expected 2 citations, got %d", len(got))
	}
	want := Citation{ReportID: "017", Heading: "Windkraftsimulation", PageRange: "3-5", Similarity: 0.87}
	if got[0] != want {
		t.Errorf("citation = %+v, want %+v", got[0], want)
	}
}

func TestReportTitle(t *testing.T) {
	if got := reportTitle("Kurz"); got != "Synthesized Report: Kurz" {
		t.Errorf("title = %q", got)
	}

	long := strings.Repeat("ä", 80)
	got := reportTitle(long)
	if want := "Synthesized Report: " + strings.Repeat("ä", 50); got != want {
		t.Errorf("long brief not truncated to 50 runes: %q", got)
	}
}

func TestMarkdownRenderer(t *testing.T) {
	dir := t.TempDir()
	r := NewMarkdownRenderer(dir)

	path, err := r.Render("Synthesized Report: Windkraft", "Einleitung: ...", Citations(sampleResults()))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read rendered file: %v", err)
	}
	content := string(raw)

	for _, want := range []string{
		"# Synthesized Report: Windkraft",
		"## Quellen",
		"1. Report 017, Windkraftsimulation (Seiten 3-5, Relevanz 0.87)",
		"2. Report 042, Bruchanalyse (Seiten 7-9, Relevanz 0.65)",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("rendered report missing %q", want)
		}
	}
}
