package domain

import (
	"group-lab/domain/event"
	"time"

	"github.com/google/uuid"
)

const NoDescription = "no description provided"

type Membership struct {
	User *User
	Role Role
}

// Group owns a membership mapping keyed by user ID and an append-only
// message log. Operations either fully succeed or leave the group untouched.
// A Group is not safe for concurrent use.
type Group struct {
	ID           uuid.UUID
	Name         string
	Creator      *User
	MinAgeToJoin *int
	CreatedAt    time.Time

	members  map[uuid.UUID]*Membership
	order    []uuid.UUID
	messages []Message
	nextSeq  int
	contacts *ContactBook
	outbox   []event.DomainEvent
}

// NewGroup creates a group whose creator is its first member, as admin.
// A nil minAgeToJoin means no age restriction.
func NewGroup(name string, creator *User, minAgeToJoin *int, now time.Time) *Group {
	g := &Group{
		ID:           uuid.New(),
		Name:         name,
		Creator:      creator,
		MinAgeToJoin: minAgeToJoin,
		CreatedAt:    now,
		members:      make(map[uuid.UUID]*Membership),
		contacts:     NewContactBook(),
	}
	g.insert(creator, RoleAdmin)
	return g
}

// GroupState is the persisted form of a group.
type GroupState struct {
	ID           uuid.UUID
	Name         string
	Creator      *User
	MinAgeToJoin *int
	CreatedAt    time.Time
	Members      []Membership
	Messages     []Message
	Contacts     []uuid.UUID
	// NextSeq is the sequence number of the next posted message. It never
	// falls below the length of Messages.
	NextSeq int
}

// RestoreGroup rebuilds a group from persisted state. Memberships are taken
// as they are, including roles no operation would assign, and no event is
// recorded.
func RestoreGroup(state GroupState) *Group {
	g := &Group{
		ID:           state.ID,
		Name:         state.Name,
		Creator:      state.Creator,
		MinAgeToJoin: state.MinAgeToJoin,
		CreatedAt:    state.CreatedAt,
		members:      make(map[uuid.UUID]*Membership),
		contacts:     NewContactBook(),
	}
	for _, m := range state.Members {
		g.insert(m.User, m.Role)
	}
	for _, id := range state.Contacts {
		g.contacts.Add(id)
	}
	g.messages = append(g.messages, state.Messages...)
	g.nextSeq = max(state.NextSeq, len(g.messages))
	return g
}

// State returns the persisted form of the group.
func (g *Group) State() GroupState {
	return GroupState{
		ID:           g.ID,
		Name:         g.Name,
		Creator:      g.Creator,
		MinAgeToJoin: g.MinAgeToJoin,
		CreatedAt:    g.CreatedAt,
		Members:      g.Members(),
		Messages:     g.Messages(),
		Contacts:     g.Contacts(),
		NextSeq:      g.nextSeq,
	}
}

func (g *Group) insert(user *User, role Role) {
	if _, ok := g.members[user.ID]; ok {
		return
	}
	g.members[user.ID] = &Membership{User: user, Role: role}
	g.order = append(g.order, user.ID)
}

func (g *Group) delete(id uuid.UUID) {
	delete(g.members, id)
	for i, memberID := range g.order {
		if memberID == id {
			g.order = append(g.order[:i], g.order[i+1:]...)
			return
		}
	}
}

func (g *Group) isCreator(u *User) bool {
	return g.Creator != nil && u != nil && g.Creator.ID == u.ID
}

// RoleOf returns the role of a member and whether the user is a member.
func (g *Group) RoleOf(id uuid.UUID) (Role, bool) {
	m, ok := g.members[id]
	if !ok {
		return "", false
	}
	return m.Role, true
}

func (g *Group) IsMember(id uuid.UUID) bool {
	_, ok := g.members[id]
	return ok
}

func (g *Group) Size() int { return len(g.order) }

// Members returns memberships in insertion order.
func (g *Group) Members() []Membership {
	out := make([]Membership, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, *g.members[id])
	}
	return out
}

// Messages returns the log in append order.
func (g *Group) Messages() []Message {
	out := make([]Message, len(g.messages))
	copy(out, g.messages)
	return out
}

// Contacts lists every user that ever joined, in join order.
func (g *Group) Contacts() []uuid.UUID { return g.contacts.List() }

// AddMember admits user with role. The age threshold is checked first, then
// duplicate membership.
func (g *Group) AddMember(user *User, role Role, now time.Time) (Outcome, error) {
	if !role.Assignable() {
		return failed(KindInvalidRole, "Role %s cannot be assigned in group %s.", role, g.Name)
	}
	if g.MinAgeToJoin != nil && user.Age(now) < *g.MinAgeToJoin {
		return failed(KindAgeRestriction,
			"User %s cannot join group %s: age is below %d.", user.Username, g.Name, *g.MinAgeToJoin)
	}
	if g.IsMember(user.ID) {
		return failed(KindAlreadyMember, "User %s is already a member of group %s.", user.Username, g.Name)
	}
	g.insert(user, role)
	g.contacts.Add(user.ID)
	g.record(event.MemberJoined{Group: g.ID, UserID: user.ID, Username: user.Username, Role: role.String(), At: now})
	return succeeded("User %s added to group %s as %s.", user.Username, g.Name, role)
}

// PromoteToAdmin requires user to hold the member role and promoter to be the
// creator or an admin.
func (g *Group) PromoteToAdmin(promoter, user *User) (Outcome, error) {
	target, ok := g.members[user.ID]
	promoterRole, _ := g.RoleOf(promoter.ID)
	if !ok || target.Role != RoleMember || !(g.isCreator(promoter) || promoterRole == RoleAdmin) {
		return failed(KindPermissionDenied,
			"%s is not allowed to promote user %s to admin.", promoter.Username, user.Username)
	}
	target.Role = RoleAdmin
	g.record(event.MemberPromoted{Group: g.ID, UserID: user.ID, Promoter: promoter.ID})
	return succeeded("User %s was promoted to admin in group %s.", user.Username, g.Name)
}

// DemoteToMember is reserved to the creator; admins cannot demote each other.
func (g *Group) DemoteToMember(actor, user *User) (Outcome, error) {
	target, ok := g.members[user.ID]
	if !ok || target.Role != RoleAdmin || !g.isCreator(actor) {
		return failed(KindPermissionDenied,
			"%s is not allowed to demote user %s to member.", actor.Username, user.Username)
	}
	target.Role = RoleMember
	g.record(event.MemberDemoted{Group: g.ID, UserID: user.ID, Actor: actor.ID})
	return succeeded("User %s was demoted to member in group %s.", user.Username, g.Name)
}

// RemoveMember lets the creator remove anyone, themselves included, and an
// admin remove non-admins.
func (g *Group) RemoveMember(remover, user *User) (Outcome, error) {
	target, ok := g.members[user.ID]
	if !ok {
		return failed(KindNotFound, "User %s not found in group %s.", user.Username, g.Name)
	}
	var by string
	switch removerRole, _ := g.RoleOf(remover.ID); {
	case g.isCreator(remover):
		by = "creator"
	case removerRole == RoleAdmin && target.Role != RoleAdmin:
		by = "admin"
	default:
		return failed(KindPermissionDenied, "%s is not allowed to remove user %s.", remover.Username, user.Username)
	}
	g.delete(user.ID)
	g.record(event.MemberRemoved{Group: g.ID, UserID: user.ID, Remover: remover.ID})
	return succeeded("User %s removed from group %s (removed by %s %s).", user.Username, g.Name, by, remover.Username)
}

// SendMessage appends a message from a member whose role is not banned.
func (g *Group) SendMessage(sender *User, text string, now time.Time) (Outcome, error) {
	role, ok := g.RoleOf(sender.ID)
	if !ok || role == RoleBanned {
		return failed(KindNotAuthorized, "%s cannot send a message to group %s.", sender.Username, g.Name)
	}
	msg := Message{
		ID:         uuid.New(),
		SenderID:   sender.ID,
		SenderName: sender.Username,
		Text:       text,
		SentAt:     now,
	}
	seq := g.nextSeq
	g.nextSeq++
	g.messages = append(g.messages, msg)
	g.record(event.MessagePosted{
		ID:       msg.ID,
		Group:    g.ID,
		Seq:      seq,
		AuthorID: sender.ID,
		Author:   sender.Username,
		Content:  text,
		At:       now,
	})
	return succeeded("%s sent a message to group %s: %s", sender.Username, g.Name, text)
}

type UserInfo struct {
	Username    string
	Age         int
	Location    string
	Description string
}

// UserInfo looks a member up by display name. Names are not unique: the
// first match in membership order wins.
func (g *Group) UserInfo(username string, now time.Time) (UserInfo, Outcome, error) {
	for _, id := range g.order {
		u := g.members[id].User
		if u.Username != username {
			continue
		}
		description := u.Description
		if description == "" {
			description = NoDescription
		}
		info := UserInfo{
			Username:    u.Username,
			Age:         u.Age(now),
			Location:    u.LocationLine(),
			Description: description,
		}
		o, err := succeeded("User %s found in group %s.", username, g.Name)
		return info, o, err
	}
	o, err := failed(KindNotFound, "User %s not found in group %s.", username, g.Name)
	return UserInfo{}, o, err
}

func (g *Group) record(e event.DomainEvent) {
	g.outbox = append(g.outbox, e)
}

// PendingEvents returns the recorded events without clearing them.
func (g *Group) PendingEvents() []event.DomainEvent {
	out := make([]event.DomainEvent, len(g.outbox))
	copy(out, g.outbox)
	return out
}

// FlushEvents returns the recorded events and empties the outbox.
func (g *Group) FlushEvents() []event.DomainEvent {
	events := g.outbox
	g.outbox = nil
	return events
}
