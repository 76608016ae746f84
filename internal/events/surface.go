// Package events forwards check-ins out of the process. A Surface is bound
// to every location like any display surface, but instead of drawing it
// queues a VisitEvent that a worker delivers to a Sink: the Kafka event
// topic or the visit log.
package events

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"attendance/internal/models"
	"attendance/internal/storage"
	"attendance/pkg/attendance"
	"attendance/pkg/kafkaclient"
)

const (
	defaultQueueSize = 256
	drainTimeout     = 5 * time.Second
)

// Sink delivers one event. It is only ever called from the worker.
type Sink interface {
	Send(ctx context.Context, ev models.VisitEvent) error
}

type SinkFunc func(ctx context.Context, ev models.VisitEvent) error

func (f SinkFunc) Send(ctx context.Context, ev models.VisitEvent) error { return f(ctx, ev) }

// Surface queues an event on every counter update. The controller calls it
// while holding its lock, so UpdateCounter never blocks: a full queue drops
// the event and reports it.
type Surface struct {
	name     string
	sink     Sink
	queue    chan models.VisitEvent
	logger   *zap.Logger
	reporter attendance.Reporter
}

type Option func(*Surface)

// WithReporter sends dropped and undeliverable events to r. Without one
// they are only logged.
func WithReporter(r attendance.Reporter) Option {
	return func(s *Surface) { s.reporter = r }
}

func NewSurface(name string, sink Sink, queueSize int, logger *zap.Logger, opts ...Option) *Surface {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Surface{
		name:   name,
		sink:   sink,
		queue:  make(chan models.VisitEvent, queueSize),
		logger: logger.With(zap.String("sink", name)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewEventSurface publishes visit events as JSON keyed by location name.
func NewEventSurface(p *kafkaclient.Publisher, logger *zap.Logger, opts ...Option) *Surface {
	return NewSurface("kafka:"+p.Topic(), SinkFunc(func(ctx context.Context, ev models.VisitEvent) error {
		return p.PublishJSON(ctx, ev.Name, ev)
	}), defaultQueueSize, logger, opts...)
}

// NewLogSurface appends visit events to log.
func NewLogSurface(log storage.VisitLog, logger *zap.Logger, opts ...Option) *Surface {
	return NewSurface("visitlog", SinkFunc(log.Append), defaultQueueSize, logger, opts...)
}

func (s *Surface) UpdateCounter(snap models.Snapshot) {
	ev := models.NewVisitEvent(snap)
	select {
	case s.queue <- ev:
	default:
		s.fail("event queue full, dropping visit", ev, nil)
	}
}

func (s *Surface) UpdatePopup(models.Snapshot) {}

func (s *Surface) HighlightOnMap(models.Snapshot) {}

// Pending reports how many events are waiting for the worker.
func (s *Surface) Pending() int { return len(s.queue) }

// Run delivers queued events until ctx is done, then tries to flush what is
// left within a short grace period. It always returns nil so that one
// failing sink does not stop the process.
func (s *Surface) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			s.drain(ctx)
			return nil
		case ev := <-s.queue:
			s.send(ctx, ev)
		}
	}
}

func (s *Surface) drain(parent context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), drainTimeout)
	defer cancel()
	for {
		select {
		case ev := <-s.queue:
			s.send(ctx, ev)
		default:
			return
		}
	}
}

func (s *Surface) send(ctx context.Context, ev models.VisitEvent) {
	if err := s.sink.Send(ctx, ev); err != nil {
		s.fail("failed to deliver visit event", ev, err)
	}
}

// fail reports a lost event once: to the reporter when there is one,
// otherwise to the log.
func (s *Surface) fail(msg string, ev models.VisitEvent, err error) {
	if s.reporter != nil {
		rep := attendance.Report{
			Kind:    attendance.KindDelivery,
			Message: msg,
			Context: map[string]string{
				"sink":   s.name,
				"name":   ev.Name,
				"id":     ev.ID.String(),
				"visits": strconv.Itoa(ev.VisitCount),
			},
		}
		if err != nil {
			rep.Message = msg + ": " + err.Error()
		}
		s.reporter.Report(rep)
		return
	}
	fields := []zap.Field{
		zap.String("name", ev.Name),
		zap.String("id", ev.ID.String()),
		zap.Int("visits", ev.VisitCount),
	}
	if err != nil {
		s.logger.Error(msg, append(fields, zap.Error(err))...)
		return
	}
	s.logger.Warn(msg, fields...)
}

var _ attendance.Surface = (*Surface)(nil)
