package datasource

import (
	"context"
	"errors"
	"strconv"

	"go.uber.org/zap"

	"attendance/internal/enrich"
	"attendance/internal/models"
	"attendance/pkg/attendance"
)

// Loader installs a validated record set. The attendance controller is the
// usual implementation; it reports its own load failures.
type Loader interface {
	Load(records []models.Record) error
}

type bootstrapConfig struct {
	pipeline *enrich.Pipeline[models.Record]
	logger   *zap.Logger
}

type BootstrapOption func(*bootstrapConfig)

// WithEnrichment runs p over the valid records before they are loaded.
func WithEnrichment(p *enrich.Pipeline[models.Record]) BootstrapOption {
	return func(c *bootstrapConfig) { c.pipeline = p }
}

func WithBootstrapLogger(l *zap.Logger) BootstrapOption {
	return func(c *bootstrapConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// Bootstrap performs the one-shot initial load: fetch, decode, report each
// rejected record, enrich, and hand the rest to loader. A fetch or parse
// failure is reported and leaves the store as it was; there is no retry.
func Bootstrap(ctx context.Context, src Source, loader Loader, reporter attendance.Reporter, opts ...BootstrapOption) ([]models.Record, error) {
	cfg := bootstrapConfig{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	data, format, err := src.Fetch(ctx)
	if err != nil {
		reporter.Report(attendance.Report{
			Kind:    attendance.KindNetwork,
			Message: err.Error(),
			Context: map[string]string{"op": "fetch", "source": src.String()},
		})
		return nil, err
	}

	records, invalid, err := Decode(data, format)
	if err != nil {
		var pe *ParseError
		kind := attendance.KindParse
		if !errors.As(err, &pe) {
			kind = attendance.KindUnknown
		}
		reporter.Report(attendance.Report{
			Kind:    kind,
			Message: err.Error(),
			Context: map[string]string{"op": "decode", "source": src.String(), "format": format},
		})
		return nil, err
	}
	for _, bad := range invalid {
		reporter.Report(attendance.Report{
			Kind:    attendance.KindInvalidData,
			Message: bad.Error(),
			Context: map[string]string{"op": "decode", "source": src.String(), "index": strconv.Itoa(bad.Index)},
		})
	}

	if cfg.pipeline != nil && len(records) > 0 {
		items := make([]*models.Record, len(records))
		for i := range records {
			items[i] = &records[i]
		}
		cfg.pipeline.Run(ctx, items)
	}

	if err := loader.Load(records); err != nil {
		return nil, err
	}
	cfg.logger.Info("dataset loaded",
		zap.String("source", src.String()),
		zap.Int("records", len(records)),
		zap.Int("rejected", len(invalid)))
	return records, nil
}
