package runtime

import (
	"context"
	"group-lab/contract"
	"group-lab/domain/event"
	"log/slog"
	"time"
)

// Fanout delivers domain events to permanent sinks and to the sinks of the
// observers watching the event's group.
//
// Delivery is best effort and synchronous: no retry, no durability. A failing
// sink is logged and the remaining sinks still receive the event.
type Fanout struct {
	log         *slog.Logger
	registry    contract.IRegistry
	permanent   []contract.EventSink
	sinkTimeout time.Duration
}

func NewFanout(log *slog.Logger, registry contract.IRegistry, sinkTimeout time.Duration, sinks ...contract.EventSink) *Fanout {
	return &Fanout{log: log, registry: registry, permanent: sinks, sinkTimeout: sinkTimeout}
}

func (f *Fanout) Publish(ctx context.Context, events ...event.DomainEvent) {
	for _, evt := range events {
		for _, sink := range f.permanent {
			f.deliver(ctx, sink, evt)
		}
		for _, sink := range f.registry.GetSinksForGroup(evt.GroupID()) {
			f.deliver(ctx, sink, evt)
		}
	}
}

func (f *Fanout) deliver(ctx context.Context, sink contract.EventSink, evt event.DomainEvent) {
	if f.sinkTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.sinkTimeout)
		defer cancel()
	}
	if err := sink.Consume(ctx, evt); err != nil {
		f.log.Warn("Sink failed to consume event",
			"event", evt.Name(),
			"group_id", evt.GroupID(),
			"error", err)
	}
}
