package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/go-playground/validator/v10"

	"github.com/couchcryptid/secchi-etl/internal/domain"
)

// Config holds all job settings, populated from environment variables.
type Config struct {
	DataDir        string
	InputPath      string `validate:"required"`
	OutputPath     string `validate:"required"`
	LayerPrefix    string
	LayerSuffix    string
	InputDelimiter rune
	XLSXSheet      string
	DateLayout     string

	Columns       domain.Columns
	OutputColumns domain.OutputColumns
	Window        domain.Window

	// Optional sinks; empty paths disable them.
	PlotsDir    string
	ReportPath  string
	MetricsPath string

	// Kafka publishing of result rows.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string `validate:"required_if=KafkaEnabled true"`

	LogLevel   string `validate:"oneof=debug info warn warning error"`
	LogFormat  string `validate:"oneof=json text"`
	RunTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	dataDir := sharedcfg.EnvOrDefault("DATA_DIR", ".")

	delimiter, err := parseDelimiter(sharedcfg.EnvOrDefault("INPUT_DELIMITER", ","))
	if err != nil {
		return nil, err
	}

	window, err := parseWindow()
	if err != nil {
		return nil, err
	}

	runTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("RUN_TIMEOUT", "5m"))
	if err != nil || runTimeout <= 0 {
		return nil, errors.New("invalid RUN_TIMEOUT")
	}

	defCols := domain.DefaultColumns()
	defOut := domain.DefaultOutputColumns()

	cfg := &Config{
		DataDir:        dataDir,
		InputPath:      sharedcfg.EnvOrDefault("INPUT_PATH", filepath.Join(dataDir, "secchi_data.csv")),
		LayerPrefix:    sharedcfg.EnvOrDefault("LAYER_PREFIX", ""),
		LayerSuffix:    sharedcfg.EnvOrDefault("LAYER_SUFFIX", "2016"),
		InputDelimiter: delimiter,
		XLSXSheet:      sharedcfg.EnvOrDefault("XLSX_SHEET", ""),
		DateLayout:     sharedcfg.EnvOrDefault("DATE_LAYOUT", domain.DefaultDateLayout),
		Columns: domain.Columns{
			Region: sharedcfg.EnvOrDefault("COL_REGION", defCols.Region),
			Value:  sharedcfg.EnvOrDefault("COL_VALUE", defCols.Value),
			Year:   sharedcfg.EnvOrDefault("COL_YEAR", defCols.Year),
			Month:  sharedcfg.EnvOrDefault("COL_MONTH", defCols.Month),
			Lat:    sharedcfg.EnvOrDefault("COL_LAT", defCols.Lat),
			Lon:    sharedcfg.EnvOrDefault("COL_LON", defCols.Lon),
			Date:   sharedcfg.EnvOrDefault("COL_DATE", defCols.Date),
		},
		OutputColumns: domain.OutputColumns{
			Region: sharedcfg.EnvOrDefault("OUTPUT_REGION_COLUMN", defOut.Region),
			Year:   defOut.Year,
			Value:  sharedcfg.EnvOrDefault("OUTPUT_VALUE_COLUMN", defOut.Value),
		},
		Window:       window,
		PlotsDir:     sharedcfg.EnvOrDefault("PLOTS_DIR", ""),
		ReportPath:   sharedcfg.EnvOrDefault("REPORT_PATH", ""),
		MetricsPath:  sharedcfg.EnvOrDefault("METRICS_PATH", ""),
		KafkaEnabled: sharedcfg.EnvOrDefault("KAFKA_ENABLED", "false") == "true",
		KafkaBrokers: sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   strings.TrimSpace(sharedcfg.EnvOrDefault("KAFKA_TOPIC", "secchi-layer")),
		LogLevel:     sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:    sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		RunTimeout:   runTimeout,
	}
	cfg.OutputPath = outputPath(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	if filepath.Clean(cfg.InputPath) == filepath.Clean(cfg.OutputPath) {
		return nil, errors.New("OUTPUT_PATH must differ from INPUT_PATH")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if err := checkOutputColumns(cfg.OutputColumns); err != nil {
		return nil, err
	}

	return cfg, nil
}

// checkOutputColumns rejects output header names that collide, since the
// layer header and the published JSON object both key on them.
func checkOutputColumns(c domain.OutputColumns) error {
	if c.Region == c.Value {
		return fmt.Errorf("OUTPUT_REGION_COLUMN and OUTPUT_VALUE_COLUMN are both %q", c.Region)
	}
	if c.Region == c.Year {
		return fmt.Errorf("invalid OUTPUT_REGION_COLUMN: %q is the year column", c.Region)
	}
	if c.Value == c.Year {
		return fmt.Errorf("invalid OUTPUT_VALUE_COLUMN: %q is the year column", c.Value)
	}
	return nil
}

// envNames maps validated fields back to the variables that set them.
var envNames = map[string]string{
	"InputPath":  "INPUT_PATH",
	"OutputPath": "OUTPUT_PATH",
	"KafkaTopic": "KAFKA_TOPIC",
	"LogLevel":   "LOG_LEVEL",
	"LogFormat":  "LOG_FORMAT",
}

// validate checks the struct tags and reports the first failure by its
// environment variable name.
func validate(cfg *Config) error {
	err := validator.New().Struct(cfg)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	name, ok := envNames[fe.StructField()]
	if !ok {
		name = fe.StructField()
	}
	if fe.Tag() == "required" || fe.Tag() == "required_if" {
		return fmt.Errorf("%s is required", name)
	}
	return fmt.Errorf("invalid %s: %q not allowed", name, fe.Value())
}

// outputPath resolves OUTPUT_PATH, falling back to the toolbox layer file name
// when LAYER_PREFIX is set.
func outputPath(cfg *Config) string {
	if p := sharedcfg.EnvOrDefault("OUTPUT_PATH", ""); p != "" {
		return p
	}
	name := "secchi.csv"
	if cfg.LayerPrefix != "" {
		name = domain.LayerFileName(cfg.LayerPrefix, "secchi", cfg.LayerSuffix)
	}
	return filepath.Join(cfg.DataDir, "layers", name)
}

func parseDelimiter(s string) (rune, error) {
	if s == `\t` || s == "tab" {
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) || r == utf8.RuneError || r == '"' || r == '\r' || r == '\n' {
		return 0, errors.New("invalid INPUT_DELIMITER: must be a single character")
	}
	return r, nil
}

func parseWindow() (domain.Window, error) {
	def := domain.DefaultWindow()

	months, err := parseMonths(sharedcfg.EnvOrDefault("MONTHS", ""))
	if err != nil {
		return domain.Window{}, err
	}
	if months == nil {
		months = def.Months
	}

	yearMin, err := parseYear("YEAR_MIN", def.YearMin)
	if err != nil {
		return domain.Window{}, err
	}
	yearMax, err := parseYear("YEAR_MAX", def.YearMax)
	if err != nil {
		return domain.Window{}, err
	}

	w := domain.Window{Months: months, YearMin: yearMin, YearMax: yearMax}
	if err := w.Validate(); err != nil {
		return domain.Window{}, fmt.Errorf("invalid MONTHS/YEAR_MIN/YEAR_MAX: %w", err)
	}
	return w, nil
}

func parseMonths(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	months := make([]int, 0, len(parts))
	for _, p := range parts {
		m, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || m < 1 || m > 12 {
			return nil, fmt.Errorf("invalid MONTHS: %q is not a month 1-12", p)
		}
		months = append(months, m)
	}
	return months, nil
}

func parseYear(key string, fallback int) (int, error) {
	s := sharedcfg.EnvOrDefault(key, "")
	if s == "" {
		return fallback, nil
	}
	y, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q is not a year", key, s)
	}
	return y, nil
}
