package ingest

// Raw grid structures produced by the sheets fetcher. They carry only the
// fields the link extractor needs; cell text for the layout heuristics
// comes from the separate values fetch.

// TextRun is a formatted run inside a cell, possibly carrying a link.
type TextRun struct {
	LinkURI string
}

// CellData is one cell of rich grid data.
type CellData struct {
	Formatted string
	Hyperlink string
	Formula   string
	Runs      []TextRun
}

// RowMeta is per-row metadata from the grid fetch.
type RowMeta struct {
	HiddenByUser   bool
	HiddenByFilter bool
}

// TabGrid is the rich grid data for one sheet tab.
type TabGrid struct {
	Rows    [][]CellData
	RowMeta []RowMeta
}
