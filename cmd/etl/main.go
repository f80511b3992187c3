package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/couchcryptid/secchi-etl/internal/adapter/csvfile"
	kafkaadapter "github.com/couchcryptid/secchi-etl/internal/adapter/kafka"
	"github.com/couchcryptid/secchi-etl/internal/adapter/plot"
	"github.com/couchcryptid/secchi-etl/internal/adapter/xlsx"
	"github.com/couchcryptid/secchi-etl/internal/config"
	"github.com/couchcryptid/secchi-etl/internal/observability"
	"github.com/couchcryptid/secchi-etl/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	if err := run(cfg, logger); err != nil {
		logger.Error("pipeline failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.RunTimeout)
	defer cancel()

	opts := pipeline.Options{
		Columns:    cfg.Columns,
		DateLayout: cfg.DateLayout,
		Window:     cfg.Window,
		Output:     cfg.OutputPath,
	}

	if cfg.PlotsDir != "" {
		opts.Charts = plot.NewRenderer(cfg.PlotsDir, logger)
		logger.Info("chart rendering enabled", "dir", cfg.PlotsDir)
	}

	if cfg.KafkaEnabled {
		writer := kafkaadapter.NewWriter(cfg, logger)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		opts.Publisher = writer
		logger.Info("kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	p := pipeline.New(newExtractor(cfg, logger), csvfile.NewWriter(cfg.OutputPath, cfg.OutputColumns, logger), logger, metrics, opts)

	logger.Info("pipeline started", "input", cfg.InputPath, "output", cfg.OutputPath)
	report, err := p.Run(ctx)
	if err != nil {
		return err
	}

	if cfg.ReportPath != "" {
		if err := pipeline.WriteReport(cfg.ReportPath, report); err != nil {
			return err
		}
		logger.Info("run report written", "path", cfg.ReportPath)
	}

	if cfg.MetricsPath != "" {
		if err := metrics.WriteTextfile(cfg.MetricsPath); err != nil {
			logger.Warn("metrics export failed", "path", cfg.MetricsPath, "error", err)
		}
	}
	return nil
}

// newExtractor picks the workbook reader for .xlsx inputs and the delimited
// reader for everything else.
func newExtractor(cfg *config.Config, logger *slog.Logger) pipeline.Extractor {
	if strings.EqualFold(filepath.Ext(cfg.InputPath), ".xlsx") {
		return xlsx.NewReader(cfg.InputPath, cfg.XLSXSheet, logger)
	}
	return csvfile.NewReader(cfg.InputPath, cfg.InputDelimiter, logger)
}
