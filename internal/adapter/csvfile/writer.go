package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/couchcryptid/secchi-etl/internal/domain"
)

// nullToken is written for a mean that could not be computed.
const nullToken = "NA"

// Writer writes the region-year layer file.
// It implements pipeline.Loader.
type Writer struct {
	path    string
	columns domain.OutputColumns
	logger  *slog.Logger
}

// NewWriter creates a writer for the layer file at path.
func NewWriter(path string, columns domain.OutputColumns, logger *slog.Logger) *Writer {
	return &Writer{path: path, columns: columns, logger: logger}
}

// LoadBatch replaces the file at the configured path with a header row and one
// row per result. The file is written to a temporary sibling and renamed into
// place, so a failed run never leaves a half-written layer behind. Failures
// are reported as *domain.WriteError.
func (w *Writer) LoadBatch(ctx context.Context, results []domain.RegionYearMean) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := writeAtomic(w.path, w.columns, results); err != nil {
		return &domain.WriteError{Path: w.path, Err: err}
	}
	w.logger.Info("layer written", "path", w.path, "rows", len(results))
	return nil
}

func writeAtomic(path string, columns domain.OutputColumns, results []domain.RegionYearMean) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after a successful rename

	if err := encode(tmp, columns, results); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

func encode(f *os.File, columns domain.OutputColumns, results []domain.RegionYearMean) error {
	cw := csv.NewWriter(f)
	if err := cw.Write(columns.Header()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range results {
		if err := cw.Write(formatRow(r)); err != nil {
			return fmt.Errorf("write record %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatRow(r domain.RegionYearMean) []string {
	mean := nullToken
	if r.Mean.Valid {
		mean = strconv.FormatFloat(r.Mean.Value, 'f', 1, 64)
	}
	return []string{strconv.Itoa(r.RegionID), strconv.Itoa(r.Year), mean}
}
