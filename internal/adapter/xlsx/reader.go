// Package xlsx loads observation workbooks exported from spreadsheet tools.
package xlsx

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/secchi-etl/internal/domain"
)

// Reader loads one worksheet into a domain.Table.
// It implements pipeline.Extractor.
type Reader struct {
	path   string
	sheet  string
	logger *slog.Logger
}

// NewReader creates a reader for the named sheet of the workbook at path. An
// empty sheet name selects the first sheet.
func NewReader(path, sheet string, logger *slog.Logger) *Reader {
	return &Reader{path: path, sheet: sheet, logger: logger}
}

// Extract reads the sheet. The first row is the header. Cells come back as
// displayed, so date cells should carry a yyyy-mm-dd number format. Rows with
// no cells at all are spreadsheet padding and are skipped; short rows are
// padded to the header width.
func (r *Reader) Extract(ctx context.Context) (domain.Table, error) {
	f, err := excelize.OpenFile(r.path)
	if err != nil {
		return domain.Table{}, &domain.ReadError{Path: r.path, Err: err}
	}
	defer f.Close()

	sheet := r.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return domain.Table{}, &domain.ReadError{Path: r.path, Err: domain.ErrEmptyInput}
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return domain.Table{}, &domain.ReadError{Path: r.path, Err: fmt.Errorf("sheet %q: %w", sheet, err)}
	}
	if err := ctx.Err(); err != nil {
		return domain.Table{}, err
	}
	if len(rows) == 0 || isBlank(rows[0]) {
		return domain.Table{}, &domain.ReadError{Path: r.path, Err: domain.ErrEmptyInput}
	}

	header := rows[0]
	table := domain.Table{Source: r.path, Header: header}
	for i, cells := range rows[1:] {
		line := i + 2
		if isBlank(cells) {
			continue
		}
		if len(cells) > len(header) {
			return domain.Table{}, &domain.ReadError{
				Path: r.path,
				Line: line,
				Err:  fmt.Errorf("row has %d cells, header has %d", len(cells), len(header)),
			}
		}
		fields := make([]string, len(header))
		copy(fields, cells)
		table.Rows = append(table.Rows, domain.Row{Line: line, Fields: fields})
	}

	r.logger.Info("input loaded", "path", r.path, "sheet", sheet, "columns", len(header), "rows", len(table.Rows))
	return table, nil
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
