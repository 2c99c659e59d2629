// Package projection builds local timelines from observed events.
// Handles ordering and deduplication.
// Does not emit events.
package projection

import (
	"context"
	"group-lab/domain"
	"group-lab/domain/event"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Timeline holds the messages an observer received for one or more groups.
// It satisfies contract.EventSink so it can be passed to GroupService.Watch.
type Timeline struct {
	Owner string

	mu       sync.Mutex
	seen     map[uuid.UUID]struct{}
	messages []posted
}

type posted struct {
	group uuid.UUID
	seq   int
	msg   domain.Message
}

func NewTimeline(owner string) *Timeline {
	return &Timeline{
		Owner: owner,
		seen:  make(map[uuid.UUID]struct{}),
	}
}

func (t *Timeline) Consume(_ context.Context, e event.DomainEvent) error {
	evt, ok := e.(event.MessagePosted)
	if !ok {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, dup := t.seen[evt.ID]; dup {
		return nil
	}
	t.seen[evt.ID] = struct{}{}
	t.messages = append(t.messages, posted{group: evt.Group, seq: evt.Seq, msg: fromEvent(evt)})
	// Events of one group may arrive out of order when replayed
	sort.SliceStable(t.messages, func(i, j int) bool {
		a, b := t.messages[i], t.messages[j]
		if a.group == b.group {
			return a.seq < b.seq
		}
		return a.msg.SentAt.Before(b.msg.SentAt)
	})
	return nil
}

// Messages returns a copy of the timeline.
func (t *Timeline) Messages() []domain.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]domain.Message, 0, len(t.messages))
	for _, p := range t.messages {
		out = append(out, p.msg)
	}
	return out
}

// Group returns the messages received for one group, in log order.
func (t *Timeline) Group(groupID uuid.UUID) []domain.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []domain.Message
	for _, p := range t.messages {
		if p.group == groupID {
			out = append(out, p.msg)
		}
	}
	return out
}

func fromEvent(evt event.MessagePosted) domain.Message {
	return domain.Message{
		ID:         evt.ID,
		SenderID:   evt.AuthorID,
		SenderName: evt.Author,
		Text:       evt.Content,
		SentAt:     evt.At,
	}
}
