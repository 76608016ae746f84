package service

import (
	"context"

	"go.uber.org/zap"

	"attendance/internal/models"
)

// Dispatcher applies commands to a Handler.
type Dispatcher struct {
	handler Handler
	logger  *zap.Logger
}

func NewDispatcher(handler Handler, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{handler: handler, logger: logger}
}

// Run handles commands until the channel is closed or ctx is done. Unknown
// location names are reported by the handler itself, so they are not
// logged again here.
func (d *Dispatcher) Run(ctx context.Context, commands <-chan *models.Command) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd, ok := <-commands:
			if !ok {
				return nil
			}
			d.Dispatch(cmd)
		}
	}
}

// Dispatch applies a single command.
func (d *Dispatcher) Dispatch(cmd *models.Command) {
	switch cmd.Action {
	case models.ActionCheckIn:
		if snap, err := d.handler.OnCheckIn(cmd.Name); err == nil {
			d.logger.Debug("check-in applied", zap.String("name", snap.Name), zap.Int("visits", snap.VisitCount))
		}
	case models.ActionSelect:
		_, _ = d.handler.OnMarkerSelect(cmd.Name)
	default:
		d.logger.Warn("ignoring command with unknown action",
			zap.String("action", string(cmd.Action)),
			zap.String("name", cmd.Name))
	}
}
