package pipeline

import (
	"fmt"

	"github.com/couchcryptid/secchi-etl/internal/domain"
)

// Result is everything the in-memory stages produce from one loaded table.
type Result struct {
	RowsRead int
	Clean    domain.CleanResult
	Filtered []domain.CleanObservation
	Monthly  []domain.MonthlyMean
	Annual   []domain.RegionYearMean
}

// Transformer runs the pure stages: projection, cleaning, window filter and
// the two aggregation passes.
type Transformer struct {
	columns    domain.Columns
	dateLayout string
	window     domain.Window
}

// NewTransformer creates a Transformer. An empty dateLayout selects
// domain.DefaultDateLayout.
func NewTransformer(columns domain.Columns, dateLayout string, window domain.Window) *Transformer {
	if dateLayout == "" {
		dateLayout = domain.DefaultDateLayout
	}
	return &Transformer{columns: columns, dateLayout: dateLayout, window: window}
}

func (t *Transformer) Transform(table domain.Table) (Result, error) {
	if err := t.window.Validate(); err != nil {
		return Result{}, fmt.Errorf("window: %w", err)
	}
	obs, err := domain.Project(table, t.columns, t.dateLayout)
	if err != nil {
		return Result{}, fmt.Errorf("clean: %w", err)
	}
	clean := domain.Clean(obs)
	filtered := domain.Filter(clean.Observations, t.window)
	monthly, annual := domain.Aggregate(filtered)
	return Result{
		RowsRead: len(table.Rows),
		Clean:    clean,
		Filtered: filtered,
		Monthly:  monthly,
		Annual:   annual,
	}, nil
}
