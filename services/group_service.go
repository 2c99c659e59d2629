package services

import (
	"context"
	"fmt"
	"group-lab/contract"
	"group-lab/domain"
	"group-lab/domain/event"
	"group-lab/errors"
	"group-lab/moderation"
	"group-lab/repositories"
	"group-lab/runtime"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

const defaultSearchLimit = 20

type IGroupService interface {
	CreateGroup(ctx context.Context, creatorID uuid.UUID, req CreateGroupRequest) (*domain.Group, error)
	Join(ctx context.Context, groupID, userID uuid.UUID, role domain.Role) (domain.Outcome, error)
	Promote(ctx context.Context, groupID, promoterID, userID uuid.UUID) (domain.Outcome, error)
	Demote(ctx context.Context, groupID, actorID, userID uuid.UUID) (domain.Outcome, error)
	Remove(ctx context.Context, groupID, removerID, userID uuid.UUID) (domain.Outcome, error)
	PostMessage(ctx context.Context, groupID, senderID uuid.UUID, text string) (domain.Outcome, error)
	UserInfo(groupID uuid.UUID, username string) (domain.UserInfo, domain.Outcome, error)
	ShowInfo(groupID uuid.UUID) (domain.Report, error)
	ListGroups() []GroupSummary
	Messages(groupID uuid.UUID, cursor *string) ([]domain.Message, *string, error)
	SearchMessages(ctx context.Context, groupID uuid.UUID, query string) ([]repositories.SearchHit, error)
	Watch(observerID string, groupID uuid.UUID, sink contract.EventSink) error
	Unwatch(observerID string, groupID uuid.UUID)
	Load() error
}

type GroupSummary struct {
	ID      uuid.UUID
	Name    string
	Creator string
	Size    int
}

type GroupOption func(*GroupService)

// WithClock sets the clock used for ages and message timestamps.
func WithClock(now func() time.Time) GroupOption {
	return func(s *GroupService) { s.now = now }
}

// WithModerator censors message text before it is posted.
func WithModerator(moderator *moderation.Moderator) GroupOption {
	return func(s *GroupService) { s.moderator = moderator }
}

func WithSearchLimit(limit int) GroupOption {
	return func(s *GroupService) { s.searchLimit = limit }
}

// GroupService serialises every operation on the groups it owns. A
// successful operation persists the group snapshot, then publishes the
// events the group recorded. Publication is best effort. Groups hold the
// live users, so their fields are only read inside users.ReadProfiles.
type GroupService struct {
	mu          sync.Mutex
	groups      map[uuid.UUID]*domain.Group
	order       []uuid.UUID
	users       UserProvider
	groupRepo   repositories.IGroupRepository
	messageRepo repositories.IMessageRepository
	index       repositories.IMessageIndex
	registry    contract.IRegistry
	fanout      *runtime.Fanout
	moderator   *moderation.Moderator
	log         *slog.Logger
	now         func() time.Time
	searchLimit int
}

func NewGroupService(
	log *slog.Logger,
	users UserProvider,
	groupRepo repositories.IGroupRepository,
	messageRepo repositories.IMessageRepository,
	index repositories.IMessageIndex,
	registry contract.IRegistry,
	fanout *runtime.Fanout,
	opts ...GroupOption,
) *GroupService {
	s := &GroupService{
		groups:      make(map[uuid.UUID]*domain.Group),
		users:       users,
		groupRepo:   groupRepo,
		messageRepo: messageRepo,
		index:       index,
		registry:    registry,
		fanout:      fanout,
		log:         log,
		now:         time.Now,
		searchLimit: defaultSearchLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *GroupService) CreateGroup(ctx context.Context, creatorID uuid.UUID, req CreateGroupRequest) (*domain.Group, error) {
	if err := ValidateCreateGroup(req); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
	}
	creator, err := s.users.GetUser(creatorID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	group := domain.NewGroup(req.Name, creator, req.MinAgeToJoin, s.now())
	if err := s.groupRepo.SaveGroup(toDiskGroup(group.State())); err != nil {
		return nil, fmt.Errorf("failed to save group %s: %w", group.Name, err)
	}
	s.groups[group.ID] = group
	s.order = append(s.order, group.ID)
	s.publish(ctx, group)
	s.users.ReadProfiles(func() {
		s.log.Info("Group created", "group_id", group.ID, "name", group.Name, "creator", creator.Username)
	})
	return group, nil
}

func (s *GroupService) Join(ctx context.Context, groupID, userID uuid.UUID, role domain.Role) (domain.Outcome, error) {
	return s.apply(ctx, groupID, []uuid.UUID{userID}, func(g *domain.Group, u []*domain.User) (domain.Outcome, error) {
		return g.AddMember(u[0], role, s.now())
	})
}

func (s *GroupService) Promote(ctx context.Context, groupID, promoterID, userID uuid.UUID) (domain.Outcome, error) {
	return s.apply(ctx, groupID, []uuid.UUID{promoterID, userID}, func(g *domain.Group, u []*domain.User) (domain.Outcome, error) {
		return g.PromoteToAdmin(u[0], u[1])
	})
}

func (s *GroupService) Demote(ctx context.Context, groupID, actorID, userID uuid.UUID) (domain.Outcome, error) {
	return s.apply(ctx, groupID, []uuid.UUID{actorID, userID}, func(g *domain.Group, u []*domain.User) (domain.Outcome, error) {
		return g.DemoteToMember(u[0], u[1])
	})
}

func (s *GroupService) Remove(ctx context.Context, groupID, removerID, userID uuid.UUID) (domain.Outcome, error) {
	return s.apply(ctx, groupID, []uuid.UUID{removerID, userID}, func(g *domain.Group, u []*domain.User) (domain.Outcome, error) {
		return g.RemoveMember(u[0], u[1])
	})
}

// PostMessage appends text to the group log, censored first when a
// moderator is configured.
func (s *GroupService) PostMessage(ctx context.Context, groupID, senderID uuid.UUID, text string) (domain.Outcome, error) {
	if s.moderator != nil {
		censored, words := s.moderator.Censor(text)
		if len(words) > 0 {
			s.log.Info("Message censored", "group_id", groupID, "sender_id", senderID, "words", words)
		}
		text = censored
	}
	return s.apply(ctx, groupID, []uuid.UUID{senderID}, func(g *domain.Group, u []*domain.User) (domain.Outcome, error) {
		return g.SendMessage(u[0], text, s.now())
	})
}

func (s *GroupService) UserInfo(groupID uuid.UUID, username string) (domain.UserInfo, domain.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	group, err := s.group(groupID)
	if err != nil {
		return domain.UserInfo{}, domain.Outcome{}, err
	}
	var info domain.UserInfo
	var outcome domain.Outcome
	s.users.ReadProfiles(func() {
		info, outcome, err = group.UserInfo(username, s.now())
	})
	return info, outcome, err
}

func (s *GroupService) ShowInfo(groupID uuid.UUID) (domain.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	group, err := s.group(groupID)
	if err != nil {
		return domain.Report{}, err
	}
	var report domain.Report
	s.users.ReadProfiles(func() { report = group.ShowInfo() })
	return report, nil
}

// ListGroups returns groups in creation order.
func (s *GroupService) ListGroups() []GroupSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	var summaries []GroupSummary
	s.users.ReadProfiles(func() {
		summaries = lo.Map(s.order, func(id uuid.UUID, _ int) GroupSummary {
			g := s.groups[id]
			creator := ""
			if g.Creator != nil {
				creator = g.Creator.Username
			}
			return GroupSummary{ID: g.ID, Name: g.Name, Creator: creator, Size: g.Size()}
		})
	})
	return summaries
}

// Messages pages through the stored history of a group, newest first.
// A nil cursor starts from the latest message; a nil returned cursor means
// there is nothing older.
func (s *GroupService) Messages(groupID uuid.UUID, cursor *string) ([]domain.Message, *string, error) {
	s.mu.Lock()
	_, err := s.group(groupID)
	s.mu.Unlock()
	if err != nil {
		return nil, nil, err
	}
	stored, next, err := s.messageRepo.GetMessages(groupID, cursor)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read messages of group %s: %w", groupID, err)
	}
	return lo.Map(stored, func(m repositories.DiskMessage, _ int) domain.Message {
		return fromDiskMessage(m)
	}), next, nil
}

func (s *GroupService) SearchMessages(ctx context.Context, groupID uuid.UUID, query string) ([]repositories.SearchHit, error) {
	s.mu.Lock()
	_, err := s.group(groupID)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", errors.ErrInvalidPayload)
	}
	return s.index.Search(ctx, groupID, query, s.searchLimit)
}

// Watch registers sink to receive the events of a group.
func (s *GroupService) Watch(observerID string, groupID uuid.UUID, sink contract.EventSink) error {
	s.mu.Lock()
	_, err := s.group(groupID)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.registry.Subscribe(observerID, groupID, sink)
	return nil
}

func (s *GroupService) Unwatch(observerID string, groupID uuid.UUID) {
	s.registry.Unsubscribe(observerID, groupID)
}

// Load restores every stored group. Users must be loaded beforehand.
func (s *GroupService) Load() error {
	stored, err := s.groupRepo.ListGroups()
	if err != nil {
		return fmt.Errorf("failed to list groups: %w", err)
	}
	sort.SliceStable(stored, func(i, j int) bool { return stored[i].CreatedAt.Before(stored[j].CreatedAt) })
	groups := make([]*domain.Group, 0, len(stored))
	for _, d := range stored {
		group, err := s.restore(d)
		if err != nil {
			return fmt.Errorf("failed to restore group %s: %w", d.ID, err)
		}
		groups = append(groups, group)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups = make(map[uuid.UUID]*domain.Group, len(groups))
	s.order = nil
	for _, g := range groups {
		s.groups[g.ID] = g
		s.order = append(s.order, g.ID)
	}
	s.log.Debug("Groups loaded", "count", len(groups))
	return nil
}

func (s *GroupService) restore(d repositories.DiskGroup) (*domain.Group, error) {
	creator, err := s.users.GetUser(d.CreatorID)
	if err != nil {
		return nil, err
	}
	members := make([]domain.Membership, 0, len(d.Members))
	for _, m := range d.Members {
		user, err := s.users.GetUser(m.UserID)
		if err != nil {
			return nil, err
		}
		members = append(members, domain.Membership{User: user, Role: domain.Role(m.Role)})
	}
	stored, err := s.messageRepo.AllMessages(d.ID)
	if err != nil {
		return nil, err
	}
	// A message the disk sink failed to store may have taken a seq that is
	// not on disk. Reusing it is harmless; reusing a stored one is not.
	nextSeq := 0
	if len(stored) > 0 {
		nextSeq = lo.MaxBy(stored, func(a, b repositories.DiskMessage) bool { return a.Seq > b.Seq }).Seq + 1
	}
	return domain.RestoreGroup(domain.GroupState{
		ID:           d.ID,
		Name:         d.Name,
		Creator:      creator,
		MinAgeToJoin: d.MinAgeToJoin,
		CreatedAt:    d.CreatedAt,
		Members:      members,
		Messages:     lo.Map(stored, func(m repositories.DiskMessage, _ int) domain.Message { return fromDiskMessage(m) }),
		Contacts:     d.Contacts,
		NextSeq:      nextSeq,
	}), nil
}

type operation func(g *domain.Group, users []*domain.User) (domain.Outcome, error)

// apply resolves the group and users, runs op and, when op succeeded,
// persists the group and publishes its events. A failed save puts the group
// back in the state it had before op.
func (s *GroupService) apply(ctx context.Context, groupID uuid.UUID, userIDs []uuid.UUID, op operation) (domain.Outcome, error) {
	users := make([]*domain.User, 0, len(userIDs))
	for _, id := range userIDs {
		user, err := s.users.GetUser(id)
		if err != nil {
			return domain.Outcome{}, err
		}
		users = append(users, user)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	group, err := s.group(groupID)
	if err != nil {
		return domain.Outcome{}, err
	}
	prev := group.State()
	var outcome domain.Outcome
	s.users.ReadProfiles(func() { outcome, err = op(group, users) })
	if err != nil {
		s.log.Debug("Operation rejected", "group_id", groupID, "kind", outcome.Kind, "status", outcome.Status)
		return outcome, err
	}
	if changesMembership(group) {
		if err := s.groupRepo.SaveGroup(toDiskGroup(group.State())); err != nil {
			dropped := group.FlushEvents()
			s.groups[groupID] = domain.RestoreGroup(prev)
			s.log.Error("Group not saved, operation rolled back", "group_id", groupID, "events", len(dropped), "error", err)
			return domain.Outcome{}, fmt.Errorf("failed to save group %s: %w", group.Name, err)
		}
	}
	s.publish(ctx, group)
	return outcome, nil
}

// changesMembership reports whether the pending events touch the snapshot.
// Messages are persisted by their own sink.
func changesMembership(g *domain.Group) bool {
	return lo.ContainsBy(g.PendingEvents(), func(e event.DomainEvent) bool {
		_, isMessage := e.(event.MessagePosted)
		return !isMessage
	})
}

func (s *GroupService) publish(ctx context.Context, g *domain.Group) {
	if events := g.FlushEvents(); len(events) > 0 {
		s.fanout.Publish(ctx, events...)
	}
}

func (s *GroupService) group(id uuid.UUID) (*domain.Group, error) {
	group, ok := s.groups[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrGroupNotFound, id)
	}
	return group, nil
}

func toDiskGroup(state domain.GroupState) repositories.DiskGroup {
	var creatorID uuid.UUID
	if state.Creator != nil {
		creatorID = state.Creator.ID
	}
	return repositories.DiskGroup{
		ID:           state.ID,
		Name:         state.Name,
		CreatorID:    creatorID,
		MinAgeToJoin: state.MinAgeToJoin,
		CreatedAt:    state.CreatedAt,
		Members: lo.Map(state.Members, func(m domain.Membership, _ int) repositories.DiskMember {
			return repositories.DiskMember{UserID: m.User.ID, Role: m.Role.String()}
		}),
		Contacts: state.Contacts,
	}
}

func fromDiskMessage(m repositories.DiskMessage) domain.Message {
	return domain.Message{
		ID:         m.ID,
		SenderID:   m.AuthorID,
		SenderName: m.Author,
		Text:       m.Content,
		SentAt:     m.At,
	}
}
