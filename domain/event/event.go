// Package event defines the facts a Group records once an operation succeeded.
// Events only carry identifiers and copies of values, never live entities.
package event

import (
	"time"

	"github.com/google/uuid"
)

type DomainEvent interface {
	GroupID() uuid.UUID
	Name() string
}

type MemberJoined struct {
	Group    uuid.UUID
	UserID   uuid.UUID
	Username string
	Role     string
	At       time.Time
}

func (e MemberJoined) GroupID() uuid.UUID { return e.Group }
func (e MemberJoined) Name() string       { return "member_joined" }

type MemberPromoted struct {
	Group    uuid.UUID
	UserID   uuid.UUID
	Promoter uuid.UUID
}

func (e MemberPromoted) GroupID() uuid.UUID { return e.Group }
func (e MemberPromoted) Name() string       { return "member_promoted" }

type MemberDemoted struct {
	Group  uuid.UUID
	UserID uuid.UUID
	Actor  uuid.UUID
}

func (e MemberDemoted) GroupID() uuid.UUID { return e.Group }
func (e MemberDemoted) Name() string       { return "member_demoted" }

type MemberRemoved struct {
	Group   uuid.UUID
	UserID  uuid.UUID
	Remover uuid.UUID
}

func (e MemberRemoved) GroupID() uuid.UUID { return e.Group }
func (e MemberRemoved) Name() string       { return "member_removed" }

// MessagePosted carries Seq, which strictly increases within a group and orders
// the stored log.
type MessagePosted struct {
	ID       uuid.UUID
	Group    uuid.UUID
	Seq      int
	AuthorID uuid.UUID
	Author   string
	Content  string
	At       time.Time
}

func (e MessagePosted) GroupID() uuid.UUID { return e.Group }
func (e MessagePosted) Name() string       { return "message_posted" }
