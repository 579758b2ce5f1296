package parser

import "testing"

func TestExtractMetadata(t *testing.T) {
	cases := []struct {
		name     string
		path     string
		info     DocInfo
		wantID   string
		wantYear int
	}{
		{
			name:     "year and report number",
			path:     "report_2023_017.pdf",
			wantID:   "017",
			wantYear: 2023,
		},
		{
			name:     "no digits falls back to stem",
			path:     "notes.pdf",
			wantID:   "notes",
			wantYear: DefaultYear,
		},
		{
			name:     "only year digits",
			path:     "bericht-2021.pdf",
			wantID:   "2021",
			wantYear: 2021,
		},
		{
			name:     "report number without year",
			path:     "/data/samples/REP-00451.pdf",
			wantID:   "00451",
			wantYear: DefaultYear,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractMetadata(tc.path, tc.info, 4)
			if got.ReportID != tc.wantID {
				t.Errorf("ReportID = %q, want %q", got.ReportID, tc.wantID)
			}
			if got.Year != tc.wantYear {
				t.Errorf("Year = %d, want %d", got.Year, tc.wantYear)
			}
			if got.NumPages != 4 {
				t.Errorf("NumPages = %d", got.NumPages)
			}
		})
	}
}

func TestExtractMetadata_Title(t *testing.T) {
	got := ExtractMetadata("report_099.pdf", DocInfo{Title: "Bruchanalyse Fahrzeugrahmen"}, 1)
	if got.Title != "Bruchanalyse Fahrzeugrahmen" {
		t.Errorf("Title = %q", got.Title)
	}

	got = ExtractMetadata("report_099.pdf", DocInfo{}, 1)
	if got.Title != "report_099" {
		t.Errorf("fallback Title = %q, want stem", got.Title)
	}
}
