package services

import (
	"fmt"
	"group-lab/domain"
	"group-lab/errors"
	"group-lab/repositories"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// UserProvider resolves users by identity. GroupService depends on it
// instead of the whole user service. Fields of a returned user may only be
// read inside ReadProfiles.
type UserProvider interface {
	GetUser(id uuid.UUID) (*domain.User, error)
	ReadProfiles(fn func())
}

type IUserService interface {
	UserProvider
	Register(req RegisterUserRequest) (*domain.User, error)
	ListUsers() []*domain.User
	UpdateProfile(id uuid.UUID, update domain.ProfileUpdate) (*domain.User, error)
	ChangeUsername(id uuid.UUID, username string) error
	SetDescription(id uuid.UUID, description string) error
	AddContact(id, contactID uuid.UUID) error
	Call(callerID, receiverID uuid.UUID) (domain.Call, error)
	Load() error
}

// UserService owns the live User entities. Groups hold pointers to them,
// so a profile change is visible in every group the user belongs to.
// Changes are written under profiles, which other services hold for reading.
type UserService struct {
	mu         sync.Mutex
	profiles   sync.RWMutex
	users      map[uuid.UUID]*domain.User
	order      []uuid.UUID
	repository repositories.IUserRepository
	log        *slog.Logger
	now        func() time.Time
}

func NewUserService(repository repositories.IUserRepository, log *slog.Logger) *UserService {
	return &UserService{
		users:      make(map[uuid.UUID]*domain.User),
		repository: repository,
		log:        log,
		now:        time.Now,
	}
}

// WithClock replaces the clock used to validate birthdates and place calls.
func (s *UserService) WithClock(now func() time.Time) *UserService {
	s.now = now
	return s
}

func (s *UserService) Register(req RegisterUserRequest) (*domain.User, error) {
	if err := ValidateRegister(req, s.now()); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidUser, err)
	}
	user := domain.NewUser(req.Username, req.Birthdate, req.Location, req.Phone)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.repository.CreateUser(toDiskUser(user)); err != nil {
		return nil, err
	}
	s.add(user)
	s.log.Debug("User registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

func (s *UserService) GetUser(id uuid.UUID) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(id)
}

// ReadProfiles runs fn while no profile can change.
func (s *UserService) ReadProfiles(fn func()) {
	s.profiles.RLock()
	defer s.profiles.RUnlock()
	fn()
}

// ListUsers returns users in registration order.
func (s *UserService) ListUsers() []*domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo.Map(s.order, func(id uuid.UUID, _ int) *domain.User { return s.users[id] })
}

func (s *UserService) UpdateProfile(id uuid.UUID, update domain.ProfileUpdate) (*domain.User, error) {
	if update.Username != nil {
		if err := validateUsername(*update.Username); err != nil {
			return nil, err
		}
	}
	if update.Phone != nil {
		if err := validate.Var(*update.Phone, "e164"); err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrInvalidUser, err)
		}
	}
	if update.Birthdate != nil && update.Birthdate.After(s.now()) {
		return nil, fmt.Errorf("%w: birthdate in the future", errors.ErrInvalidUser)
	}
	return s.mutate(id, func(u *domain.User) error {
		u.UpdateProfile(update)
		return nil
	})
}

func (s *UserService) ChangeUsername(id uuid.UUID, username string) error {
	if err := validateUsername(username); err != nil {
		return err
	}
	_, err := s.mutate(id, func(u *domain.User) error {
		u.ChangeUsername(username)
		return nil
	})
	return err
}

func (s *UserService) SetDescription(id uuid.UUID, description string) error {
	_, err := s.mutate(id, func(u *domain.User) error {
		u.SetDescription(description)
		return nil
	})
	return err
}

// AddContact records contactID in the contact book of id. The relation is
// one-way; a call needs both directions.
func (s *UserService) AddContact(id, contactID uuid.UUID) error {
	_, err := s.mutate(id, func(u *domain.User) error {
		contact, err := s.get(contactID)
		if err != nil {
			return err
		}
		u.Contacts = u.Contacts.Clone()
		u.AddContact(contact)
		return nil
	})
	return err
}

func (s *UserService) Call(callerID, receiverID uuid.UUID) (domain.Call, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	caller, err := s.get(callerID)
	if err != nil {
		return domain.Call{}, err
	}
	receiver, err := s.get(receiverID)
	if err != nil {
		return domain.Call{}, err
	}
	call, err := domain.PlaceCall(caller, receiver, s.now())
	if err != nil {
		return domain.Call{}, err
	}
	s.log.Info("Call placed", "caller", caller.Username, "receiver", receiver.Username, "ends_at", call.EndsAt)
	return call, nil
}

// Load replaces the in-memory users with the stored ones.
func (s *UserService) Load() error {
	stored, err := s.repository.ListUsers()
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = make(map[uuid.UUID]*domain.User, len(stored))
	s.order = nil
	for _, d := range stored {
		s.add(fromDiskUser(d))
	}
	s.log.Debug("Users loaded", "count", len(stored))
	return nil
}

func (s *UserService) add(user *domain.User) {
	s.users[user.ID] = user
	s.order = append(s.order, user.ID)
}

func (s *UserService) get(id uuid.UUID) (*domain.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrUserNotFound, id)
	}
	return user, nil
}

// mutate applies fn to a copy of the user and swaps it in once saved, so a
// failed save leaves the live user untouched. fn must clone any shared
// field it changes in place.
func (s *UserService) mutate(id uuid.UUID, fn func(u *domain.User) error) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, err := s.get(id)
	if err != nil {
		return nil, err
	}
	next := *user
	if err := fn(&next); err != nil {
		return nil, err
	}
	if err := s.repository.SaveUser(toDiskUser(&next)); err != nil {
		return nil, fmt.Errorf("failed to save user %s: %w", id, err)
	}
	s.profiles.Lock()
	assignProfile(user, next)
	s.profiles.Unlock()
	return user, nil
}

// assignProfile copies every field but the ID, which is read without locks.
func assignProfile(dst *domain.User, src domain.User) {
	dst.Username = src.Username
	dst.Birthdate = src.Birthdate
	dst.Location = src.Location
	dst.Phone = src.Phone
	dst.Description = src.Description
	dst.Contacts = src.Contacts
}

func toDiskUser(u *domain.User) repositories.DiskUser {
	return repositories.DiskUser{
		ID:          u.ID,
		Username:    u.Username,
		Birthdate:   u.Birthdate,
		Location:    u.Location,
		Phone:       u.Phone,
		Description: u.Description,
		Contacts:    u.Contacts.List(),
	}
}

func fromDiskUser(d repositories.DiskUser) *domain.User {
	contacts := domain.NewContactBook()
	for _, id := range d.Contacts {
		contacts.Add(id)
	}
	return &domain.User{
		ID:          d.ID,
		Username:    d.Username,
		Birthdate:   d.Birthdate,
		Location:    d.Location,
		Phone:       d.Phone,
		Description: d.Description,
		Contacts:    contacts,
	}
}
