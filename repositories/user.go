//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"fmt"
	"group-lab/errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IUserRepository interface {
	CreateUser(user DiskUser) error
	SaveUser(user DiskUser) error
	GetUser(id uuid.UUID) (DiskUser, error)
	ListUsers() ([]DiskUser, error)
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) IUserRepository {
	return &UserRepository{db: db}
}

// DiskUser is the stored representation of a domain user.
type DiskUser struct {
	ID          uuid.UUID
	Username    string
	Birthdate   time.Time
	Location    string
	Phone       *string
	Description string
	Contacts    []uuid.UUID
}

const userPrefix = "user:"

func userKey(id uuid.UUID) []byte {
	return []byte(userPrefix + id.String())
}

// CreateUser persists a new user and fails if the ID is already taken.
func (u UserRepository) CreateUser(user DiskUser) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return u.db.Update(func(txn *badger.Txn) error {
		key := userKey(user.ID)
		if _, err = txn.Get(key); err == nil {
			return errors.ErrUserAlreadyExists
		}
		return txn.Set(key, data)
	})
}

// SaveUser overwrites the stored user.
func (u UserRepository) SaveUser(user DiskUser) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return u.db.Update(func(txn *badger.Txn) error {
		return txn.Set(userKey(user.ID), data)
	})
}

func (u UserRepository) GetUser(id uuid.UUID) (DiskUser, error) {
	var user DiskUser
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(id))
		if err == badger.ErrKeyNotFound {
			return fmt.Errorf("%w: %s", errors.ErrUserNotFound, id)
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &user)
		})
	})
	if err != nil {
		return DiskUser{}, err
	}
	return user, nil
}

func (u UserRepository) ListUsers() ([]DiskUser, error) {
	var users []DiskUser
	err := u.db.View(func(txn *badger.Txn) error {
		prefix := []byte(userPrefix)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var user DiskUser
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &user)
			})
			if err != nil {
				return err
			}
			users = append(users, user)
		}
		return nil
	})
	return users, err
}
