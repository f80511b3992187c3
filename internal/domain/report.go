package domain

import (
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
)

// clock stamps run reports.
var clock = clockwork.NewRealClock()

// SetClock replaces the clock behind RunReport.GeneratedAt; nil restores the
// real clock.
func SetClock(c clockwork.Clock) {
	if c == nil {
		c = clockwork.NewRealClock()
	}
	clock = c
}

// RunReport records what each stage did to the data, for audit of the two
// deliberate drops and of the window filter.
type RunReport struct {
	RunID                string    `json:"run_id" yaml:"run_id"`
	Source               string    `json:"source" yaml:"source"`
	Output               string    `json:"output" yaml:"output"`
	Window               Window    `json:"window" yaml:"window"`
	RowsRead             int       `json:"rows_read" yaml:"rows_read"`
	DroppedMissingRegion int       `json:"dropped_missing_region" yaml:"dropped_missing_region"`
	DroppedDuplicates    int       `json:"dropped_duplicates" yaml:"dropped_duplicates"`
	FilteredOut          int       `json:"filtered_out" yaml:"filtered_out"`
	MonthlyGroups        int       `json:"monthly_groups" yaml:"monthly_groups"`
	OutputRows           int       `json:"output_rows" yaml:"output_rows"`
	NullMeans            int       `json:"null_means" yaml:"null_means"`
	GeneratedAt          time.Time `json:"generated_at" yaml:"generated_at"`
}

// Summarize builds the report for one run and stamps it with the package clock.
func Summarize(source, output string, w Window, rowsRead int, clean CleanResult, filtered []CleanObservation, monthly []MonthlyMean, annual []RegionYearMean) RunReport {
	nulls := 0
	for _, r := range annual {
		if !r.Mean.Valid {
			nulls++
		}
	}
	return RunReport{
		Source:               source,
		Output:               output,
		Window:               w,
		RowsRead:             rowsRead,
		DroppedMissingRegion: clean.DroppedMissingRegion,
		DroppedDuplicates:    clean.DroppedDuplicates,
		FilteredOut:          len(clean.Observations) - len(filtered),
		MonthlyGroups:        len(monthly),
		OutputRows:           len(annual),
		NullMeans:            nulls,
		GeneratedAt:          clock.Now().UTC(),
	}
}

// LayerFileName builds the file name the scoring toolbox registers layers
// under: "<prefix>_<layer>_<suffix>.csv", e.g. "cw_secchi_bhi2015.csv".
// Empty parts are skipped.
func LayerFileName(prefix, layer, suffix string) string {
	name := layer
	if prefix != "" {
		name = prefix + "_" + name
	}
	if suffix != "" {
		name = name + "_" + suffix
	}
	return fmt.Sprintf("%s.csv", name)
}
