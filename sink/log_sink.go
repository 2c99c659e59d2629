package sink

import (
	"context"
	"group-lab/domain/event"
	"log/slog"
)

// LogSink writes every domain event to the structured log.
type LogSink struct {
	log *slog.Logger
}

func NewLogSink(log *slog.Logger) LogSink {
	return LogSink{log: log}
}

func (l LogSink) Consume(_ context.Context, e event.DomainEvent) error {
	attrs := []any{"event", e.Name(), "group", e.GroupID()}
	switch evt := e.(type) {
	case event.MemberJoined:
		attrs = append(attrs, "user", evt.Username, "role", evt.Role)
	case event.MemberPromoted:
		attrs = append(attrs, "user_id", evt.UserID, "promoter_id", evt.Promoter)
	case event.MemberDemoted:
		attrs = append(attrs, "user_id", evt.UserID, "actor_id", evt.Actor)
	case event.MemberRemoved:
		attrs = append(attrs, "user_id", evt.UserID, "remover_id", evt.Remover)
	case event.MessagePosted:
		attrs = append(attrs, "author", evt.Author, "seq", evt.Seq)
	}
	l.log.Info("Domain event", attrs...)
	return nil
}
