package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/secchi-etl/internal/config"
	"github.com/couchcryptid/secchi-etl/internal/domain"
)

// layerName tags every message so consumers sharing a topic can route by layer.
const layerName = "secchi"

const (
	publishAttempts = 4
	initialBackoff  = 200 * time.Millisecond
	maxBackoff      = 5 * time.Second
)

// messageWriter is the subset of *kafkago.Writer used here.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes layer rows to a Kafka topic.
// It implements pipeline.Publisher.
type Writer struct {
	writer  messageWriter
	columns domain.OutputColumns
	clock   clockwork.Clock
	logger  *slog.Logger
	backoff time.Duration
}

// NewWriter creates a Kafka producer for the configured topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{
		writer:  w,
		columns: cfg.OutputColumns,
		clock:   clockwork.NewRealClock(),
		logger:  logger,
		backoff: initialBackoff,
	}
}

// Publish sends every result as one batch, keyed "<region>-<year>".
func (w *Writer) Publish(ctx context.Context, results []domain.RegionYearMean) error {
	if len(results) == 0 {
		return nil
	}
	publishedAt := w.clock.Now().UTC()
	msgs := make([]kafkago.Message, len(results))
	for i := range results {
		msg, err := serializeToMessage(results[i], w.columns, publishedAt)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writeWithRetry(ctx, msgs); err != nil {
		return err
	}
	w.logger.Info("layer published", "messages", len(msgs))
	return nil
}

// writeWithRetry retries transient broker failures with exponential backoff.
// The batch is all-or-nothing from the caller's view.
func (w *Writer) writeWithRetry(ctx context.Context, msgs []kafkago.Message) error {
	backoff := w.backoff
	var err error
	for attempt := 1; attempt <= publishAttempts; attempt++ {
		if err = w.writer.WriteMessages(ctx, msgs...); err == nil {
			return nil
		}
		if attempt == publishAttempts || ctx.Err() != nil {
			break
		}
		w.logger.Warn("publish failed, retrying", "error", err, "attempt", attempt, "backoff", backoff)
		if !retry.SleepWithContext(ctx, backoff) {
			break
		}
		backoff = retry.NextBackoff(backoff, maxBackoff)
	}
	return fmt.Errorf("publish layer rows: %w", err)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage encodes one result as a JSON object using the output
// column names, so a message carries the same fields as a layer file row.
func serializeToMessage(r domain.RegionYearMean, columns domain.OutputColumns, publishedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(map[string]any{
		columns.Region: r.RegionID,
		columns.Year:   r.Year,
		columns.Value:  r.Mean,
	})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize layer row: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(strconv.Itoa(r.RegionID) + "-" + strconv.Itoa(r.Year)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "layer", Value: []byte(layerName)},
			{Key: "processed_at", Value: []byte(publishedAt.Format(time.RFC3339))},
		},
	}, nil
}
