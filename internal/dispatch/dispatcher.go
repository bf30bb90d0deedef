// Package dispatch performs the side effects of domain events outside the
// core: core mutators return events, the dispatcher fans them out to the
// notification sink and the log. Nothing in internal/core imports this
// package.
package dispatch

import (
	"context"

	"fiscal-engine/internal/core"

	"go.uber.org/zap"
)

// NotificationSink is the external collaborator that alerts a tenant when a
// fiscal sequence is close to exhaustion.
type NotificationSink interface {
	NotifyLowCapacity(ctx context.Context, ev core.SequenceLowCapacity) error
}

// Dispatcher routes domain events to their subscribers. Dispatch is
// best-effort: a failing sink is logged, never propagated back into the
// domain operation that produced the event.
type Dispatcher struct {
	log  *zap.Logger
	sink NotificationSink
}

// New constructs a Dispatcher. sink may be nil when no notification
// collaborator is wired (events are still logged).
func New(log *zap.Logger, sink NotificationSink) *Dispatcher {
	return &Dispatcher{log: log, sink: sink}
}

// Dispatch handles a batch of events from one domain operation.
func (d *Dispatcher) Dispatch(ctx context.Context, events []core.Event) {
	for _, ev := range events {
		d.log.Info("domain event",
			zap.String("event", ev.EventName()),
			zap.String("event_id", ev.EventID()),
			zap.Any("payload", ev),
		)

		lowCap, ok := ev.(core.SequenceLowCapacity)
		if !ok || d.sink == nil {
			continue
		}
		if err := d.sink.NotifyLowCapacity(ctx, lowCap); err != nil {
			d.log.Error("low-capacity notification failed",
				zap.String("event_id", ev.EventID()),
				zap.Int("sequence_id", lowCap.SequenceID),
				zap.Error(err),
			)
		}
	}
}

// LogSink is a NotificationSink that only logs; the default wiring until a
// real channel (mail, webhook) is attached by the host application.
type LogSink struct {
	Log *zap.Logger
}

func (s LogSink) NotifyLowCapacity(_ context.Context, ev core.SequenceLowCapacity) error {
	s.Log.Warn("fiscal sequence low on capacity",
		zap.Int("tenant_id", ev.TenantID),
		zap.String("document_type", ev.DocumentTypeCode),
		zap.String("prefix", ev.NumberPrefix),
		zap.Int64("remaining", ev.Remaining),
	)
	return nil
}
