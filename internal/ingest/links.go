package ingest

import "regexp"

// hyperlinkFormulaRegex captures the first quoted argument of a
// HYPERLINK("url", "label") formula.
var hyperlinkFormulaRegex = regexp.MustCompile(`(?i)HYPERLINK\(\s*"([^"]+)"`)

// LinkIndex resolves plan-document links and hidden rows for one tab.
type LinkIndex struct {
	byCell map[[2]int]string
	byRow  map[int]string
	hidden map[int]bool
}

// ExtractLinks walks the rich grid data of one tab and indexes, per cell,
// the first resolvable link: an explicit hyperlink, else the first
// rich-text run carrying a link URI, else the URL inside a HYPERLINK
// formula. Cells without any resolvable link produce nothing; absence is
// not an error. Rows hidden by the user or by a filter are recorded so the
// parser can skip them.
func ExtractLinks(grid *TabGrid) *LinkIndex {
	idx := &LinkIndex{
		byCell: make(map[[2]int]string),
		byRow:  make(map[int]string),
		hidden: make(map[int]bool),
	}
	if grid == nil {
		return idx
	}

	for row, meta := range grid.RowMeta {
		if meta.HiddenByUser || meta.HiddenByFilter {
			idx.hidden[row] = true
		}
	}

	for row, cells := range grid.Rows {
		for col, cell := range cells {
			url := cellLink(cell)
			if url == "" {
				continue
			}
			idx.byCell[[2]int{row, col}] = url
			if _, ok := idx.byRow[row]; !ok {
				idx.byRow[row] = url
			}
		}
	}

	return idx
}

func cellLink(cell CellData) string {
	if cell.Hyperlink != "" {
		return cell.Hyperlink
	}
	for _, run := range cell.Runs {
		if run.LinkURI != "" {
			return run.LinkURI
		}
	}
	if cell.Formula != "" {
		if m := hyperlinkFormulaRegex.FindStringSubmatch(cell.Formula); m != nil {
			return m[1]
		}
	}
	return ""
}

// CellLink returns the link anchored at (row, col), or "".
func (idx *LinkIndex) CellLink(row, col int) string {
	return idx.byCell[[2]int{row, col}]
}

// RowLink returns the first link found anywhere in the row, or "". Used as
// a fallback when the program cell itself carries no link.
func (idx *LinkIndex) RowLink(row int) string {
	return idx.byRow[row]
}

// Hidden reports whether the row is hidden by the user or a filter.
func (idx *LinkIndex) Hidden(row int) bool {
	return idx.hidden[row]
}

// ResolveLink returns the cell link for (row, col), falling back to the
// first link in the row.
func (idx *LinkIndex) ResolveLink(row, col int) string {
	if url := idx.CellLink(row, col); url != "" {
		return url
	}
	return idx.RowLink(row)
}
