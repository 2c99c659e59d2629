package domain

import (
	"fmt"
	"group-lab/errors"
	"time"

	"github.com/google/uuid"
)

const CallDuration = time.Minute

// ContactBook is an insertion-ordered set of user IDs.
type ContactBook struct {
	order []uuid.UUID
	index map[uuid.UUID]struct{}
}

func NewContactBook() *ContactBook {
	return &ContactBook{index: make(map[uuid.UUID]struct{})}
}

// Add records id once; adding a known id is a no-op.
func (c *ContactBook) Add(id uuid.UUID) {
	if _, ok := c.index[id]; ok {
		return
	}
	c.index[id] = struct{}{}
	c.order = append(c.order, id)
}

// Clone returns an independent copy; a nil book clones to an empty one.
func (c *ContactBook) Clone() *ContactBook {
	out := NewContactBook()
	for _, id := range c.List() {
		out.Add(id)
	}
	return out
}

func (c *ContactBook) Contains(id uuid.UUID) bool {
	if c == nil {
		return false
	}
	_, ok := c.index[id]
	return ok
}

func (c *ContactBook) List() []uuid.UUID {
	if c == nil {
		return nil
	}
	out := make([]uuid.UUID, len(c.order))
	copy(out, c.order)
	return out
}

func (c *ContactBook) Len() int {
	if c == nil {
		return 0
	}
	return len(c.order)
}

type Call struct {
	CallerID   uuid.UUID
	ReceiverID uuid.UUID
	StartedAt  time.Time
	EndsAt     time.Time
}

// PlaceCall connects two users only when each one lists the other as a contact.
func PlaceCall(caller, receiver *User, now time.Time) (Call, error) {
	if !receiver.Contacts.Contains(caller.ID) || !caller.Contacts.Contains(receiver.ID) {
		return Call{}, fmt.Errorf("%w: %s and %s", errors.ErrNotMutualContacts, caller.Username, receiver.Username)
	}
	return Call{
		CallerID:   caller.ID,
		ReceiverID: receiver.ID,
		StartedAt:  now,
		EndsAt:     now.Add(CallDuration),
	}, nil
}
