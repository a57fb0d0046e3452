package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/edupricing/availability-go/internal/ingest"
)

// Range conventions. Values use a generous bounded range; grid data reads
// whole columns because row metadata is only returned for complete rows.
const (
	valuesRange = "A1:AZ"
	gridRange   = "A:Z"
)

// gridFields trims the grid response to the link and hidden-row data the
// parser needs; a full grid for a large tab is megabytes of formatting.
const gridFields = "sheets.data(rowData.values(formattedValue,hyperlink,userEnteredValue,textFormatRuns),rowMetadata)"

// ListTabNames fetches the spreadsheet metadata and returns the sheet
// titles in their natural order.
func (c *Client) ListTabNames(ctx context.Context, token, spreadsheetID string) ([]string, error) {
	u := fmt.Sprintf("%s/%s?fields=%s",
		c.baseURL, url.PathEscape(spreadsheetID), url.QueryEscape("sheets.properties.title"))

	body, err := c.get(ctx, kindMetadata, u, token)
	if err != nil {
		return nil, err
	}

	var meta struct {
		Sheets []struct {
			Properties struct {
				Title string `json:"title"`
			} `json:"properties"`
		} `json:"sheets"`
	}
	if err := json.Unmarshal(body, &meta); err != nil {
		return nil, fmt.Errorf("decode spreadsheet metadata: %w", err)
	}

	titles := make([]string, 0, len(meta.Sheets))
	for _, s := range meta.Sheets {
		titles = append(titles, s.Properties.Title)
	}
	return titles, nil
}

// GetTabValues fetches the unformatted cell values of one tab as a 2-D
// string grid. Blank cells come back as empty strings; numbers and
// booleans are rendered to their canonical text so the parser sees one
// uniform type.
func (c *Client) GetTabValues(ctx context.Context, token, spreadsheetID, tab string) ([][]string, error) {
	rangeRef := fmt.Sprintf("%s!%s", tab, valuesRange)
	u := fmt.Sprintf("%s/%s/values/%s?valueRenderOption=UNFORMATTED_VALUE",
		c.baseURL, url.PathEscape(spreadsheetID), url.PathEscape(rangeRef))

	body, err := c.get(ctx, kindValues, u, token)
	if err != nil {
		return nil, err
	}

	var result struct {
		Values [][]any `json:"values"`
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&result); err != nil {
		return nil, fmt.Errorf("decode tab values for %q: %w", tab, err)
	}

	rows := make([][]string, len(result.Values))
	for i, row := range result.Values {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = cellString(v)
		}
		rows[i] = cells
	}
	return rows, nil
}

// cellString renders one unformatted cell value as text. Unformatted
// values arrive as strings, booleans or numbers; json.Number keeps 2026
// from turning into "2026.000000".
func cellString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	case json.Number:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// gridResponse mirrors the slice of the grid-data response selected by
// gridFields.
type gridResponse struct {
	Sheets []struct {
		Data []struct {
			RowData []struct {
				Values []struct {
					FormattedValue   string `json:"formattedValue"`
					Hyperlink        string `json:"hyperlink"`
					UserEnteredValue *struct {
						FormulaValue string `json:"formulaValue"`
					} `json:"userEnteredValue"`
					TextFormatRuns []struct {
						Format *struct {
							Link *struct {
								URI string `json:"uri"`
							} `json:"link"`
						} `json:"format"`
					} `json:"textFormatRuns"`
				} `json:"values"`
			} `json:"rowData"`
			RowMetadata []struct {
				HiddenByUser   bool `json:"hiddenByUser"`
				HiddenByFilter bool `json:"hiddenByFilter"`
			} `json:"rowMetadata"`
		} `json:"data"`
	} `json:"sheets"`
}

// GetTabLinks fetches the rich grid data of one tab: per-cell hyperlinks,
// rich-text run links, formulas, and per-row hidden flags.
func (c *Client) GetTabLinks(ctx context.Context, token, spreadsheetID, tab string) (*ingest.TabGrid, error) {
	rangeRef := fmt.Sprintf("%s!%s", tab, gridRange)
	u := fmt.Sprintf("%s/%s?ranges=%s&includeGridData=true&fields=%s",
		c.baseURL, url.PathEscape(spreadsheetID), url.QueryEscape(rangeRef), url.QueryEscape(gridFields))

	body, err := c.get(ctx, kindGrid, u, token)
	if err != nil {
		return nil, err
	}

	var result gridResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode tab grid for %q: %w", tab, err)
	}

	grid := &ingest.TabGrid{}
	if len(result.Sheets) == 0 || len(result.Sheets[0].Data) == 0 {
		return grid, nil
	}
	data := result.Sheets[0].Data[0]

	grid.Rows = make([][]ingest.CellData, len(data.RowData))
	for i, row := range data.RowData {
		cells := make([]ingest.CellData, len(row.Values))
		for j, v := range row.Values {
			cell := ingest.CellData{
				Formatted: v.FormattedValue,
				Hyperlink: v.Hyperlink,
			}
			if v.UserEnteredValue != nil {
				cell.Formula = v.UserEnteredValue.FormulaValue
			}
			for _, run := range v.TextFormatRuns {
				var uri string
				if run.Format != nil && run.Format.Link != nil {
					uri = run.Format.Link.URI
				}
				cell.Runs = append(cell.Runs, ingest.TextRun{LinkURI: uri})
			}
			cells[j] = cell
		}
		grid.Rows[i] = cells
	}

	grid.RowMeta = make([]ingest.RowMeta, len(data.RowMetadata))
	for i, meta := range data.RowMetadata {
		grid.RowMeta[i] = ingest.RowMeta{
			HiddenByUser:   meta.HiddenByUser,
			HiddenByFilter: meta.HiddenByFilter,
		}
	}

	return grid, nil
}
