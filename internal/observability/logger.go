package observability

import (
	"log/slog"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/secchi-etl/internal/config"
)

// NewLogger builds the job logger from LOG_LEVEL and LOG_FORMAT and installs it,
// job attribute included, as the slog default.
func NewLogger(cfg *config.Config) *slog.Logger {
	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat).With("job", "secchi-etl")
	slog.SetDefault(logger)
	return logger
}
