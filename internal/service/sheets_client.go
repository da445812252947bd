package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"google.golang.org/api/sheets/v4"
)

// SheetSpec はシートの名前・見出し・行データ
type SheetSpec struct {
	Name    string     `json:"name"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// SpreadsheetInfo は作成したスプレッドシートの情報
type SpreadsheetInfo struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	URL      string `json:"url"`
	RowCount int    `json:"rowCount"`
}

const (
	minGridRows    = 100
	minGridColumns = 26
	defaultSheet   = "Sheet1"
)

// CreateSpreadsheet はスプレッドシートを作成し、値を書き込む
func (c *WorkspaceClient) CreateSpreadsheet(ctx context.Context, title string, spec SheetSpec) (*SpreadsheetInfo, error) {
	name := strings.TrimSpace(spec.Name)
	if name == "" {
		name = defaultSheet
	}
	rows, cols := gridSize(spec)

	created, err := c.sheets.Spreadsheets.Create(&sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{Title: title},
		Sheets: []*sheets.Sheet{{
			Properties: &sheets.SheetProperties{
				Title: name,
				GridProperties: &sheets.GridProperties{
					RowCount:    rows,
					ColumnCount: cols,
				},
			},
		}},
	}).Context(ctx).Do()
	observe("sheets.create", err)
	if err != nil {
		return nil, fmt.Errorf("failed to create spreadsheet: %w", err)
	}

	values := sheetValues(spec)
	if len(values) > 0 {
		_, err := c.sheets.Spreadsheets.Values.BatchUpdate(created.SpreadsheetId, &sheets.BatchUpdateValuesRequest{
			ValueInputOption: "RAW",
			Data: []*sheets.ValueRange{{
				Range:  a1Origin(name),
				Values: values,
			}},
		}).Context(ctx).Do()
		observe("sheets.values_update", err)
		if err != nil {
			return nil, fmt.Errorf("failed to write spreadsheet values: %w", err)
		}
	}

	url := created.SpreadsheetUrl
	if url == "" {
		url = fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/edit", created.SpreadsheetId)
	}

	log.Printf("スプレッドシート作成成功: %s (%d行)", title, len(values))
	return &SpreadsheetInfo{
		ID:       created.SpreadsheetId,
		Title:    title,
		URL:      url,
		RowCount: len(values),
	}, nil
}

// gridSize は max(行数+1, 100) × max(列数, 26) を返す
func gridSize(spec SheetSpec) (rows, cols int64) {
	width := len(spec.Headers)
	for _, row := range spec.Rows {
		if len(row) > width {
			width = len(row)
		}
	}

	rows = int64(len(spec.Rows) + 1)
	if rows < minGridRows {
		rows = minGridRows
	}
	cols = int64(width)
	if cols < minGridColumns {
		cols = minGridColumns
	}
	return rows, cols
}

func sheetValues(spec SheetSpec) [][]interface{} {
	var values [][]interface{}
	if len(spec.Headers) > 0 {
		values = append(values, toCells(spec.Headers))
	}
	for _, row := range spec.Rows {
		values = append(values, toCells(row))
	}
	return values
}

func toCells(row []string) []interface{} {
	cells := make([]interface{}, len(row))
	for i, v := range row {
		cells[i] = v
	}
	return cells
}

// a1Origin はシート名をクォートしたA1範囲を返す
func a1Origin(sheetName string) string {
	return "'" + strings.ReplaceAll(sheetName, "'", "''") + "'!A1"
}
