package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/couchcryptid/secchi-etl/internal/domain"
)

const utf8BOM = "\ufeff"

// Reader loads a delimited observation file into a domain.Table.
// It implements pipeline.Extractor.
type Reader struct {
	path      string
	delimiter rune
	logger    *slog.Logger
}

// NewReader creates a reader for path. A zero delimiter means comma.
func NewReader(path string, delimiter rune, logger *slog.Logger) *Reader {
	if delimiter == 0 {
		delimiter = ','
	}
	return &Reader{path: path, delimiter: delimiter, logger: logger}
}

// Extract reads the whole file. Every record must have as many fields as the
// header; a ragged or badly quoted record fails with a *domain.ReadError
// carrying its line.
func (r *Reader) Extract(ctx context.Context) (domain.Table, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return domain.Table{}, &domain.ReadError{Path: r.path, Err: err}
	}
	defer f.Close()

	table, err := readTable(ctx, f, r.path, r.delimiter)
	if err != nil {
		return domain.Table{}, err
	}

	r.logger.Info("input loaded", "path", r.path, "columns", len(table.Header), "rows", len(table.Rows))
	return table, nil
}

func readTable(ctx context.Context, src io.Reader, path string, delimiter rune) (domain.Table, error) {
	cr := csv.NewReader(src)
	cr.Comma = delimiter

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return domain.Table{}, &domain.ReadError{Path: path, Err: domain.ErrEmptyInput}
	}
	if err != nil {
		return domain.Table{}, readError(path, err)
	}
	header[0] = strings.TrimPrefix(header[0], utf8BOM)

	table := domain.Table{Source: path, Header: header}
	for {
		if len(table.Rows)%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return domain.Table{}, err
			}
		}

		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.Table{}, readError(path, err)
		}
		line, _ := cr.FieldPos(0)
		table.Rows = append(table.Rows, domain.Row{Line: line, Fields: record})
	}
	return table, nil
}

// readError lifts the line number out of csv.ParseError.
func readError(path string, err error) error {
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		return &domain.ReadError{Path: path, Line: perr.StartLine, Err: perr.Err}
	}
	return &domain.ReadError{Path: path, Err: err}
}
