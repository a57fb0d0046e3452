package ingest

import "testing"

func TestExtractLinks(t *testing.T) {
	grid := &TabGrid{
		Rows: [][]CellData{
			{
				{Hyperlink: "https://plans/explicit"},
				{Runs: []TextRun{{}, {LinkURI: "https://plans/run"}}},
				{Formula: `=HYPERLINK("https://plans/formula", "plan")`},
				{Formatted: "no link here"},
			},
			{
				{
					Hyperlink: "https://plans/wins",
					Runs:      []TextRun{{LinkURI: "https://plans/loses"}},
					Formula:   `=HYPERLINK("https://plans/also-loses")`,
				},
			},
		},
		RowMeta: []RowMeta{{}, {HiddenByFilter: true}},
	}

	idx := ExtractLinks(grid)

	tests := []struct {
		name     string
		row, col int
		want     string
	}{
		{"Explicit hyperlink", 0, 0, "https://plans/explicit"},
		{"Text run link", 0, 1, "https://plans/run"},
		{"Formula link", 0, 2, "https://plans/formula"},
		{"No link", 0, 3, ""},
		{"Hyperlink beats run and formula", 1, 0, "https://plans/wins"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := idx.CellLink(tt.row, tt.col); got != tt.want {
				t.Errorf("CellLink(%d, %d) = %q, want %q", tt.row, tt.col, got, tt.want)
			}
		})
	}

	// Row fallback resolves to the first link in the row.
	if got := idx.ResolveLink(0, 3); got != "https://plans/explicit" {
		t.Errorf("ResolveLink(0, 3) = %q, want row fallback", got)
	}

	if idx.Hidden(0) {
		t.Error("row 0 reported hidden")
	}
	if !idx.Hidden(1) {
		t.Error("row 1 not reported hidden")
	}
}

func TestExtractLinksCaseInsensitiveFormula(t *testing.T) {
	grid := &TabGrid{
		Rows: [][]CellData{
			{{Formula: `=hyperlink( "https://plans/lower" , "x")`}},
		},
	}

	idx := ExtractLinks(grid)
	if got := idx.CellLink(0, 0); got != "https://plans/lower" {
		t.Errorf("CellLink = %q, want formula url", got)
	}
}

func TestExtractLinksNilGrid(t *testing.T) {
	idx := ExtractLinks(nil)
	if got := idx.ResolveLink(0, 0); got != "" {
		t.Errorf("ResolveLink on empty index = %q", got)
	}
	if idx.Hidden(3) {
		t.Error("empty index reported a hidden row")
	}
}
