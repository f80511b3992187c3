package csvfile

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/secchi-etl/internal/domain"
)

// ReadResults parses a layer file written by Writer. It is the inverse of
// LoadBatch and is used to validate existing outputs.
func ReadResults(ctx context.Context, path string, columns domain.OutputColumns) ([]domain.RegionYearMean, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &domain.ReadError{Path: path, Err: err}
	}
	defer f.Close()

	table, err := readTable(ctx, f, path, ',')
	if err != nil {
		return nil, err
	}

	want := columns.Header()
	if len(table.Header) != len(want) {
		return nil, &domain.SchemaError{Path: path, Missing: missingColumns(table.Header, want)}
	}
	for i := range want {
		if table.Header[i] != want[i] {
			return nil, &domain.SchemaError{Path: path, Missing: missingColumns(table.Header, want)}
		}
	}

	out := make([]domain.RegionYearMean, 0, len(table.Rows))
	for _, row := range table.Rows {
		r, err := parseResultRow(row.Fields)
		if err != nil {
			return nil, &domain.ReadError{Path: path, Line: row.Line, Err: err}
		}
		out = append(out, r)
	}
	return out, nil
}

func parseResultRow(fields []string) (domain.RegionYearMean, error) {
	region, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return domain.RegionYearMean{}, fmt.Errorf("region: %w", err)
	}
	year, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil {
		return domain.RegionYearMean{}, fmt.Errorf("year: %w", err)
	}
	r := domain.RegionYearMean{RegionID: region, Year: year}
	if raw := strings.TrimSpace(fields[2]); raw != nullToken {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return domain.RegionYearMean{}, fmt.Errorf("mean: %w", err)
		}
		r.Mean = domain.FloatOf(v)
	}
	return r, nil
}

// missingColumns lists expected names that are not in the header, or the
// whole expected header when the names exist but are out of order.
func missingColumns(header, want []string) []string {
	have := make(map[string]bool, len(header))
	for _, h := range header {
		have[h] = true
	}
	var missing []string
	for _, w := range want {
		if !have[w] {
			missing = append(missing, w)
		}
	}
	if len(missing) == 0 {
		return want
	}
	return missing
}
