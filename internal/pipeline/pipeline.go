package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v2"

	"github.com/couchcryptid/secchi-etl/internal/domain"
	"github.com/couchcryptid/secchi-etl/internal/observability"
)

// Extractor loads the raw observation table.
type Extractor interface {
	Extract(ctx context.Context) (domain.Table, error)
}

// Loader writes the region-year layer.
type Loader interface {
	LoadBatch(ctx context.Context, results []domain.RegionYearMean) error
}

// Publisher sends the layer rows to a downstream consumer.
type Publisher interface {
	Publish(ctx context.Context, results []domain.RegionYearMean) error
}

// ChartRenderer draws diagnostic charts of a run.
type ChartRenderer interface {
	Render(monthly []domain.MonthlyMean, annual []domain.RegionYearMean) error
}

// Options configures the optional parts of a run. Publisher and Charts may be
// nil.
type Options struct {
	Columns    domain.Columns
	DateLayout string
	Window     domain.Window
	Output     string
	Publisher  Publisher
	Charts     ChartRenderer
}

// Pipeline runs extract, transform and load once.
type Pipeline struct {
	extractor   Extractor
	transformer *Transformer
	loader      Loader
	publisher   Publisher
	charts      ChartRenderer
	logger      *slog.Logger
	metrics     *observability.Metrics
	window      domain.Window
	output      string
}

// New creates a Pipeline with the given stages and observability.
func New(e Extractor, l Loader, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: NewTransformer(opts.Columns, opts.DateLayout, opts.Window),
		loader:      l,
		publisher:   opts.Publisher,
		charts:      opts.Charts,
		logger:      logger,
		metrics:     metrics,
		window:      opts.Window,
		output:      opts.Output,
	}
}

// Run executes one full pass and returns the run report. Any stage error
// aborts the run; nothing is written if the error happens before the load.
func (p *Pipeline) Run(ctx context.Context) (domain.RunReport, error) {
	start := time.Now()

	table, err := p.extractor.Extract(ctx)
	if err != nil {
		return domain.RunReport{}, fmt.Errorf("extract: %w", err)
	}
	p.logger.Debug("table extracted", "source", table.Source, "rows", len(table.Rows))
	p.metrics.RowsRead.Add(float64(len(table.Rows)))

	res, err := p.transformer.Transform(table)
	if err != nil {
		return domain.RunReport{}, err
	}
	p.recordDrops(res)

	if err := p.loader.LoadBatch(ctx, res.Annual); err != nil {
		return domain.RunReport{}, fmt.Errorf("load: %w", err)
	}

	if p.charts != nil {
		if err := p.charts.Render(res.Monthly, res.Annual); err != nil {
			p.logger.Warn("chart rendering failed", "error", err)
		}
	}

	if p.publisher != nil {
		if err := p.publisher.Publish(ctx, res.Annual); err != nil {
			return domain.RunReport{}, fmt.Errorf("publish: %w", err)
		}
		p.metrics.ResultsPublished.Add(float64(len(res.Annual)))
	}

	report := domain.Summarize(table.Source, p.output, p.window, res.RowsRead, res.Clean, res.Filtered, res.Monthly, res.Annual)
	report.RunID = uuid.NewString()
	p.metrics.MonthlyGroups.Set(float64(report.MonthlyGroups))
	p.metrics.OutputRows.Set(float64(report.OutputRows))
	p.metrics.NullMeans.Set(float64(report.NullMeans))
	p.metrics.RunDuration.Set(time.Since(start).Seconds())
	p.metrics.LastSuccess.SetToCurrentTime()

	p.logger.Info("pipeline finished",
		"run_id", report.RunID,
		"rows_read", report.RowsRead,
		"monthly_groups", report.MonthlyGroups,
		"output_rows", report.OutputRows,
		"null_means", report.NullMeans,
		"duration", time.Since(start),
	)
	return report, nil
}

// recordDrops logs and counts the rows removed on purpose.
func (p *Pipeline) recordDrops(res Result) {
	p.logger.Info("rows dropped", "reason", "missing_region", "count", res.Clean.DroppedMissingRegion)
	p.logger.Info("rows dropped", "reason", "duplicate", "count", res.Clean.DroppedDuplicates)
	filteredOut := len(res.Clean.Observations) - len(res.Filtered)
	p.logger.Info("rows outside window", "count", filteredOut,
		"months", p.window.Months, "year_min", p.window.YearMin, "year_max", p.window.YearMax)

	p.metrics.RowsDropped.WithLabelValues("missing_region").Add(float64(res.Clean.DroppedMissingRegion))
	p.metrics.RowsDropped.WithLabelValues("duplicate").Add(float64(res.Clean.DroppedDuplicates))
	p.metrics.RowsFilteredOut.Add(float64(filteredOut))
}

// WriteReport writes the run report, as YAML when path ends in .yaml or .yml
// and as indented JSON otherwise. Parent directories are created as needed.
func WriteReport(path string, report domain.RunReport) error {
	data, err := encodeReport(path, report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func encodeReport(path string, report domain.RunReport) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Marshal(report)
	default:
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}
}
