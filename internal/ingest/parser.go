package ingest

import (
	"fmt"
	"strings"

	"github.com/edupricing/availability-go/internal/stringutil"
)

// Fixed fallback columns for the standard layout, observed across years of
// hand-maintained sheets. Used only when the "horarios" header cannot be
// located.
const (
	defaultEscolarizadoCol      = 2
	defaultEjecutivoCol         = 3
	defaultPresencialHorarioCol = 7
	defaultMixtaHorarioCol      = 8
)

// Forward-scan windows for the standard layout heuristics.
const (
	yearRowScanWindow     = 6
	modalityRowScanWindow = 4
)

// Program-name cells that are structural labels, never real programs.
var skipProgramLabels = map[string]struct{}{
	"modular":      {},
	"longitudinal": {},
	"programa":     {},
	"programas":    {},
}

// truthyValues are the normalized cell texts that mark a program as
// offered. Anything else, including an empty or misspelled cell, silently
// counts as "not offered"; see Truthy.
var truthyValues = map[string]struct{}{
	"si":         {},
	"true":       {},
	"1":          {},
	"disponible": {},
	"activo":     {},
	"verdadero":  {},
}

// Truthy reports whether a raw cell value marks a program as offered.
// True for the literal boolean rendering, the known affirmative words
// (case/accent-insensitive), or any checkmark glyph. Everything else is
// false, with no warning: a typo in an availability cell silently reads as
// "not offered". That matches the sheets' historical behavior and the
// pricing UI relies on it, so it stays.
func Truthy(raw string) bool {
	if strings.ContainsAny(raw, "✓✔✅") {
		return true
	}
	_, ok := truthyValues[stringutil.Normalize(raw)]
	return ok
}

// ClassifyTab picks the parse strategy for a tab by its normalized name.
func ClassifyTab(name string) string {
	n := stringutil.Normalize(name)
	if n == "oferta general" {
		return ModeIgnored
	}
	if strings.Contains(n, "online") {
		return ModeOnline
	}
	return ModeStandard
}

// ParseTab applies the layout strategy selected by the tab name and returns
// the canonical entries plus the per-tab debug trace. Parsing never fails:
// layout heuristics that come up empty record a warning and yield zero
// entries for the tab.
func ParseTab(tab string, values [][]string, links *LinkIndex) ([]Entry, SheetDebug) {
	if links == nil {
		links = ExtractLinks(nil)
	}
	switch ClassifyTab(tab) {
	case ModeIgnored:
		return nil, SheetDebug{
			Plantel:  tab,
			Mode:     ModeIgnored,
			Warnings: []string{fmt.Sprintf("tab %q is ignored by name", tab)},
		}
	case ModeOnline:
		return parseOnline(tab, values, links)
	default:
		return parseStandard(tab, values, links)
	}
}

// cellAt returns the trimmed cell text at (row, col), or "" out of bounds.
func cellAt(values [][]string, row, col int) string {
	if row < 0 || row >= len(values) {
		return ""
	}
	if col < 0 || col >= len(values[row]) {
		return ""
	}
	return strings.TrimSpace(values[row][col])
}

func entryID(tab string, row, col int) string {
	slug := strings.ReplaceAll(stringutil.Normalize(tab), " ", "-")
	return fmt.Sprintf("%s-r%d-c%d", slug, row, col)
}

func sampleOf(entries []Entry) []Entry {
	if len(entries) > 3 {
		return entries[:3]
	}
	return entries
}

// --- online layout ---

type onlineHeader struct {
	row, col int
	label    string
}

// isOnlineSectionLabel classifies a cell as an online section header:
// text containing "online" together with "licenciatura" (undergraduate
// section) or "posgrados"/"maestria" (graduate section).
func isOnlineSectionLabel(normalized string) bool {
	if !strings.Contains(normalized, "online") {
		return false
	}
	return strings.Contains(normalized, "licenciatura") ||
		strings.Contains(normalized, "posgrados") ||
		strings.Contains(normalized, "maestria")
}

// parseOnline handles tabs listing online programs as labeled column
// sections. Each section header owns the cells below it in its own column,
// up to the next header anywhere in the sheet.
func parseOnline(tab string, values [][]string, links *LinkIndex) ([]Entry, SheetDebug) {
	debug := SheetDebug{Plantel: tab, Mode: ModeOnline, Warnings: []string{}}

	var headers []onlineHeader
	for row := range values {
		for col := range values[row] {
			n := stringutil.Normalize(values[row][col])
			if isOnlineSectionLabel(n) {
				headers = append(headers, onlineHeader{row: row, col: col, label: n})
			}
		}
	}
	// Row-major scan already yields (row, col) order.

	if len(headers) == 0 {
		debug.Warnings = append(debug.Warnings, "no online section headers found")
		return nil, debug
	}

	var entries []Entry
	for i, h := range headers {
		endRow := len(values)
		if i+1 < len(headers) {
			endRow = headers[i+1].row
		}
		for row := h.row + 1; row < endRow; row++ {
			if links.Hidden(row) {
				continue
			}
			text := cellAt(values, row, h.col)
			n := stringutil.Normalize(text)
			if n == "" || n == "programa" || n == "programas" || isOnlineSectionLabel(n) {
				continue
			}
			entries = append(entries, Entry{
				ID:        entryID(tab, row, h.col),
				Plantel:   tab,
				Programa:  stringutil.TitleCase(text),
				Modalidad: ModalidadOnline,
				Horario:   "",
				PlanURL:   links.ResolveLink(row, h.col),
				Activo:    true,
			})
		}
	}

	debug.Sample = sampleOf(entries)
	return entries, debug
}

// --- standard layout ---

// findHeaderRow returns the first row holding both a "c1" cell and a
// "2026" cell, the anchor for the standard layout.
func findHeaderRow(values [][]string) (int, bool) {
	for row := range values {
		hasC1, hasYear := false, false
		for col := range values[row] {
			n := stringutil.Normalize(values[row][col])
			if strings.Contains(n, "c1") {
				hasC1 = true
			}
			if strings.Contains(n, "2026") {
				hasYear = true
			}
		}
		if hasC1 && hasYear {
			return row, true
		}
	}
	return 0, false
}

// findRowContaining scans (from, from+window] for a row with a cell whose
// normalized text contains any of the given needles.
func findRowContaining(values [][]string, from, window int, needles ...string) (int, bool) {
	for row := from + 1; row <= from+window && row < len(values); row++ {
		for col := range values[row] {
			n := stringutil.Normalize(values[row][col])
			for _, needle := range needles {
				if strings.Contains(n, needle) {
					return row, true
				}
			}
		}
	}
	return 0, false
}

// findHorariosCol locates the literal "horarios" header between the layout
// anchor and the modality row. Returns the column, or -1.
func findHorariosCol(values [][]string, headerRow, modalityRow int) int {
	for row := headerRow; row <= modalityRow && row < len(values); row++ {
		for col := range values[row] {
			if stringutil.Normalize(values[row][col]) == "horarios" {
				return col
			}
		}
	}
	return -1
}

// rowHasHorarios reports whether any cell in the row equals "horarios",
// which terminates the data block.
func rowHasHorarios(values [][]string, row int) bool {
	for col := range values[row] {
		if stringutil.Normalize(values[row][col]) == "horarios" {
			return true
		}
	}
	return false
}

// firstColContaining returns the first column on the row whose cell text
// contains needle and lies strictly before limit (ignored when limit < 0).
func firstColContaining(values [][]string, row int, needle string, limit int) (int, bool) {
	if row < 0 || row >= len(values) {
		return 0, false
	}
	for col := range values[row] {
		if limit >= 0 && col >= limit {
			break
		}
		if strings.Contains(stringutil.Normalize(values[row][col]), needle) {
			return col, true
		}
	}
	return 0, false
}

// parseStandard handles the campus tabs with the year/modality header
// block. The header row anchors everything; the year and modality rows are
// discovered by bounded forward scans, each falling back with a warning
// when missing.
func parseStandard(tab string, values [][]string, links *LinkIndex) ([]Entry, SheetDebug) {
	debug := SheetDebug{Plantel: tab, Mode: ModeStandard, Warnings: []string{}}

	headerRow, ok := findHeaderRow(values)
	if !ok {
		debug.Warnings = append(debug.Warnings, "header row (c1 + 2026) not found")
		return nil, debug
	}
	debug.HeaderIndex = intPtr(headerRow)

	yearRow, ok := findRowContaining(values, headerRow, yearRowScanWindow, "2026")
	if !ok {
		debug.Warnings = append(debug.Warnings, "year row not found, reusing header row")
		yearRow = headerRow
	}
	debug.YearIndex = intPtr(yearRow)

	modalityRow, ok := findRowContaining(values, yearRow, modalityRowScanWindow, "escolarizado", "ejecutivo")
	if !ok {
		debug.Warnings = append(debug.Warnings, "modality row not found, using row after year row")
		modalityRow = yearRow + 1
	}
	debug.ModalidadIndex = intPtr(modalityRow)

	horariosCol := findHorariosCol(values, headerRow, modalityRow)

	escolarizadoCol, ok := firstColContaining(values, modalityRow, "escolarizado", horariosCol)
	if !ok {
		escolarizadoCol = defaultEscolarizadoCol
	}
	debug.EscolarizadoCol = intPtr(escolarizadoCol)

	ejecutivoCol, ok := firstColContaining(values, modalityRow, "ejecutivo", horariosCol)
	if !ok {
		ejecutivoCol = defaultEjecutivoCol
	}
	debug.EjecutivoCol = intPtr(ejecutivoCol)

	presencialHorarioCol := defaultPresencialHorarioCol
	mixtaHorarioCol := defaultMixtaHorarioCol
	if horariosCol >= 0 {
		presencialHorarioCol = horariosCol + 1
		mixtaHorarioCol = horariosCol + 2
	} else {
		debug.Warnings = append(debug.Warnings, "horarios header not found, using fixed schedule columns")
	}
	debug.HorarioCols = []int{presencialHorarioCol, mixtaHorarioCol}

	endRow := len(values)
	for row := modalityRow + 1; row < len(values); row++ {
		if rowHasHorarios(values, row) {
			endRow = row
			break
		}
	}

	var entries []Entry
	for row := modalityRow + 1; row < endRow; row++ {
		if links.Hidden(row) {
			continue
		}

		programCol := 1
		programa := cellAt(values, row, programCol)
		if programa == "" {
			programCol = 0
			programa = cellAt(values, row, programCol)
		}
		n := stringutil.Normalize(programa)
		if n == "" {
			continue
		}
		if _, skip := skipProgramLabels[n]; skip {
			continue
		}

		presencial := Truthy(cellAt(values, row, escolarizadoCol))
		mixta := Truthy(cellAt(values, row, ejecutivoCol))
		if !presencial && !mixta {
			continue
		}

		planURL := links.ResolveLink(row, programCol)
		if presencial {
			entries = append(entries, Entry{
				ID:        entryID(tab, row, escolarizadoCol),
				Plantel:   tab,
				Programa:  programa,
				Modalidad: ModalidadPresencial,
				Horario:   cellAt(values, row, presencialHorarioCol),
				PlanURL:   planURL,
				Activo:    true,
			})
		}
		if mixta {
			entries = append(entries, Entry{
				ID:        entryID(tab, row, ejecutivoCol),
				Plantel:   tab,
				Programa:  programa,
				Modalidad: ModalidadMixta,
				Horario:   cellAt(values, row, mixtaHorarioCol),
				PlanURL:   planURL,
				Activo:    true,
			})
		}
	}

	debug.Sample = sampleOf(entries)
	return entries, debug
}
