// Command validate checks a written Secchi layer file against a fresh
// recomputation from the raw input. It reuses the job's configuration for
// column mapping and the time window, so run it with the same environment as
// the job.
//
// Usage:
//
//	go run ./cmd/validate -input data/secchi_data.csv -output data/layers/secchi.csv
package main

import (
	stdcmp "cmp"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/go-cmp/cmp"

	"github.com/couchcryptid/secchi-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/secchi-etl/internal/adapter/xlsx"
	"github.com/couchcryptid/secchi-etl/internal/config"
	"github.com/couchcryptid/secchi-etl/internal/domain"
	"github.com/couchcryptid/secchi-etl/internal/pipeline"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

type key struct{ region, year int }

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load config: %v\n", err)
		os.Exit(1)
	}

	input := flag.String("input", cfg.InputPath, "raw observation file (csv or xlsx)")
	output := flag.String("output", cfg.OutputPath, "layer file to validate")
	flag.Parse()

	if code := run(cfg, *input, *output); code != 0 {
		os.Exit(code)
	}
}

func run(cfg *config.Config, inputPath, outputPath string) int {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	fmt.Println("=== Secchi Layer Validation ===")
	fmt.Println()

	var extractor pipeline.Extractor = csvfile.NewReader(inputPath, cfg.InputDelimiter, logger)
	if strings.EqualFold(filepath.Ext(inputPath), ".xlsx") {
		extractor = xlsx.NewReader(inputPath, cfg.XLSXSheet, logger)
	}
	table, err := extractor.Extract(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load input: %v\n", err)
		return 1
	}
	res, err := pipeline.NewTransformer(cfg.Columns, cfg.DateLayout, cfg.Window).Transform(table)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: recompute: %v\n", err)
		return 1
	}

	written, err := csvfile.ReadResults(ctx, outputPath, cfg.OutputColumns)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load layer: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateUniqueKeys(written),
		validateWindow(written, cfg.Window),
		validateRounding(written),
		validateRecompute(written, res.Annual),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d input rows, %d monthly groups, %d recomputed, %d in layer\n",
		len(table.Rows), len(res.Monthly), len(res.Annual), len(written))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func validateUniqueKeys(rows []domain.RegionYearMean) *phase {
	p := &phase{name: "Layer: one row per (region, year)"}
	seen := make(map[key]bool, len(rows))
	for _, r := range rows {
		k := key{r.RegionID, r.Year}
		if seen[k] {
			p.errorf("duplicate row for region %d year %d", r.RegionID, r.Year)
		}
		seen[k] = true
	}
	return p
}

func validateWindow(rows []domain.RegionYearMean, w domain.Window) *phase {
	p := &phase{name: "Layer: years inside window"}
	for _, r := range rows {
		if r.Year < w.YearMin || r.Year > w.YearMax {
			p.errorf("region %d year %d outside %d-%d", r.RegionID, r.Year, w.YearMin, w.YearMax)
		}
	}
	return p
}

func validateRounding(rows []domain.RegionYearMean) *phase {
	p := &phase{name: "Layer: means rounded to one decimal"}
	for _, r := range rows {
		if !r.Mean.Valid {
			continue
		}
		if math.Abs(domain.RoundOneDecimal(r.Mean.Value)-r.Mean.Value) > 1e-9 {
			p.errorf("region %d year %d mean %v has more than one decimal", r.RegionID, r.Year, r.Mean.Value)
		}
	}
	return p
}

func validateRecompute(written, recomputed []domain.RegionYearMean) *phase {
	p := &phase{name: "Recompute: layer matches input"}
	want := make(map[key]domain.NullFloat, len(recomputed))
	for _, r := range recomputed {
		want[key{r.RegionID, r.Year}] = r.Mean
	}
	got := make(map[key]domain.NullFloat, len(written))
	for _, r := range written {
		got[key{r.RegionID, r.Year}] = r.Mean
	}

	for _, k := range sortedKeys(want) {
		w := want[k]
		g, ok := got[k]
		if !ok {
			p.errorf("region %d year %d missing from layer", k.region, k.year)
			continue
		}
		if diff := cmp.Diff(w, g); diff != "" {
			p.errorf("region %d year %d mean mismatch (-want +got):\n%s", k.region, k.year, diff)
		}
	}
	for _, k := range sortedKeys(got) {
		if _, ok := want[k]; !ok {
			p.errorf("region %d year %d not produced by recomputation", k.region, k.year)
		}
	}
	return p
}

func sortedKeys(m map[key]domain.NullFloat) []key {
	return slices.SortedFunc(maps.Keys(m), func(a, b key) int {
		return stdcmp.Or(stdcmp.Compare(a.region, b.region), stdcmp.Compare(a.year, b.year))
	})
}
