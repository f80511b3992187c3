package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/secchi-etl/internal/domain"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ".", cfg.DataDir)
	assert.Equal(t, "secchi_data.csv", cfg.InputPath)
	assert.Equal(t, filepath.Join("layers", "secchi.csv"), cfg.OutputPath)
	assert.Equal(t, ',', cfg.InputDelimiter)
	assert.Equal(t, "2006-01-02", cfg.DateLayout)
	assert.Equal(t, domain.DefaultColumns(), cfg.Columns)
	assert.Equal(t, domain.DefaultOutputColumns(), cfg.OutputColumns)
	assert.Equal(t, domain.DefaultWindow(), cfg.Window)
	assert.Empty(t, cfg.PlotsDir)
	assert.Empty(t, cfg.ReportPath)
	assert.Empty(t, cfg.MetricsPath)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "secchi-layer", cfg.KafkaTopic)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 5*time.Minute, cfg.RunTimeout)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("DATA_DIR", "/data")
	t.Setenv("INPUT_PATH", "/data/in.tsv")
	t.Setenv("OUTPUT_PATH", "/data/out.csv")
	t.Setenv("INPUT_DELIMITER", `\t`)
	t.Setenv("XLSX_SHEET", "obs")
	t.Setenv("DATE_LAYOUT", "02/01/2006")
	t.Setenv("COL_REGION", "rgn")
	t.Setenv("COL_VALUE", "depth")
	t.Setenv("OUTPUT_REGION_COLUMN", "region_id")
	t.Setenv("OUTPUT_VALUE_COLUMN", "mean_secchi")
	t.Setenv("MONTHS", "5, 6,7")
	t.Setenv("YEAR_MIN", "2000")
	t.Setenv("YEAR_MAX", "2020")
	t.Setenv("PLOTS_DIR", "/data/plots")
	t.Setenv("REPORT_PATH", "/data/report.json")
	t.Setenv("METRICS_PATH", "/data/secchi.prom")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_TOPIC", "layers")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("RUN_TIMEOUT", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/data/in.tsv", cfg.InputPath)
	assert.Equal(t, "/data/out.csv", cfg.OutputPath)
	assert.Equal(t, '\t', cfg.InputDelimiter)
	assert.Equal(t, "obs", cfg.XLSXSheet)
	assert.Equal(t, "02/01/2006", cfg.DateLayout)
	assert.Equal(t, "rgn", cfg.Columns.Region)
	assert.Equal(t, "depth", cfg.Columns.Value)
	assert.Equal(t, "year", cfg.Columns.Year)
	assert.Equal(t, domain.OutputColumns{Region: "region_id", Year: "year", Value: "mean_secchi"}, cfg.OutputColumns)
	assert.Equal(t, domain.Window{Months: []int{5, 6, 7}, YearMin: 2000, YearMax: 2020}, cfg.Window)
	assert.Equal(t, "/data/plots", cfg.PlotsDir)
	assert.Equal(t, "/data/report.json", cfg.ReportPath)
	assert.Equal(t, "/data/secchi.prom", cfg.MetricsPath)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "layers", cfg.KafkaTopic)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.RunTimeout)
}

func TestLoad_DataDirDrivesPaths(t *testing.T) {
	t.Setenv("DATA_DIR", "/srv/bhi")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("/srv/bhi", "secchi_data.csv"), cfg.InputPath)
	assert.Equal(t, filepath.Join("/srv/bhi", "layers", "secchi.csv"), cfg.OutputPath)
}

func TestLoad_LayerFileName(t *testing.T) {
	t.Setenv("DATA_DIR", "/srv/bhi")
	t.Setenv("LAYER_PREFIX", "cw")
	t.Setenv("LAYER_SUFFIX", "bhi2015")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("/srv/bhi", "layers", "cw_secchi_bhi2015.csv"), cfg.OutputPath)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"bad months", map[string]string{"MONTHS": "6,seven"}, "MONTHS"},
		{"month out of range", map[string]string{"MONTHS": "0"}, "MONTHS"},
		{"bad year", map[string]string{"YEAR_MIN": "twenty"}, "YEAR_MIN"},
		{"inverted years", map[string]string{"YEAR_MIN": "2016", "YEAR_MAX": "2010"}, "YEAR_MAX"},
		{"bad delimiter", map[string]string{"INPUT_DELIMITER": ";;"}, "INPUT_DELIMITER"},
		{"quote delimiter", map[string]string{"INPUT_DELIMITER": `"`}, "INPUT_DELIMITER"},
		{"bad timeout", map[string]string{"RUN_TIMEOUT": "soon"}, "RUN_TIMEOUT"},
		{"negative timeout", map[string]string{"RUN_TIMEOUT": "-1s"}, "RUN_TIMEOUT"},
		{"same input and output", map[string]string{"INPUT_PATH": "a.csv", "OUTPUT_PATH": "./a.csv"}, "OUTPUT_PATH"},
		{"kafka without brokers", map[string]string{"KAFKA_ENABLED": "true", "KAFKA_BROKERS": " , "}, "KAFKA_BROKERS"},
		{"kafka without topic", map[string]string{"KAFKA_ENABLED": "true", "KAFKA_TOPIC": " "}, "KAFKA_TOPIC"},
		{"bad log level", map[string]string{"LOG_LEVEL": "verbose"}, "LOG_LEVEL"},
		{"bad log format", map[string]string{"LOG_FORMAT": "xml"}, "LOG_FORMAT"},
		{"region and value columns collide", map[string]string{"OUTPUT_REGION_COLUMN": "secchi"}, "OUTPUT_VALUE_COLUMN"},
		{"region column is year", map[string]string{"OUTPUT_REGION_COLUMN": "year"}, "OUTPUT_REGION_COLUMN"},
		{"value column is year", map[string]string{"OUTPUT_VALUE_COLUMN": "year"}, "OUTPUT_VALUE_COLUMN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
