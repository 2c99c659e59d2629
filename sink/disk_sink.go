package sink

import (
	"context"
	"fmt"
	"group-lab/domain/event"
	"group-lab/repositories"
	"log/slog"
)

// DiskSink persists posted messages so that history survives the process.
type DiskSink struct {
	repository repositories.IMessageRepository
	log        *slog.Logger
}

func NewDiskSink(repository repositories.IMessageRepository, log *slog.Logger) DiskSink {
	return DiskSink{repository: repository, log: log}
}

func (d DiskSink) Consume(_ context.Context, e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.MessagePosted:
		if err := d.repository.StoreMessage(toDiskMessage(evt)); err != nil {
			return fmt.Errorf("store message %s: %w", evt.ID, err)
		}
		return nil
	default:
		d.log.Debug(fmt.Sprintf("Not persisted event : %s", e.Name()))
		return nil
	}
}

func toDiskMessage(evt event.MessagePosted) repositories.DiskMessage {
	return repositories.DiskMessage{
		ID:       evt.ID,
		Group:    evt.Group,
		Seq:      evt.Seq,
		AuthorID: evt.AuthorID,
		Author:   evt.Author,
		Content:  evt.Content,
		At:       evt.At,
	}
}
