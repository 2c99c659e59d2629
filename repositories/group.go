//go:generate go run go.uber.org/mock/mockgen -source=group.go -destination=../mocks/mock_group_repository.go -package=mocks
package repositories

import (
	"fmt"
	"group-lab/errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IGroupRepository interface {
	SaveGroup(group DiskGroup) error
	GetGroup(id uuid.UUID) (DiskGroup, error)
	ListGroups() ([]DiskGroup, error)
}

type GroupRepository struct {
	db *badger.DB
}

func NewGroupRepository(db *badger.DB) GroupRepository {
	return GroupRepository{db: db}
}

// DiskGroup is a group snapshot without its messages, which live under
// their own keys.
type DiskGroup struct {
	ID           uuid.UUID
	Name         string
	CreatorID    uuid.UUID
	MinAgeToJoin *int
	CreatedAt    time.Time
	Members      []DiskMember
	Contacts     []uuid.UUID
}

type DiskMember struct {
	UserID uuid.UUID
	Role   string
}

const groupPrefix = "group:"

func groupKey(id uuid.UUID) []byte {
	return []byte(groupPrefix + id.String())
}

func (g GroupRepository) SaveGroup(group DiskGroup) error {
	data, err := json.Marshal(group)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return g.db.Update(func(txn *badger.Txn) error {
		return txn.Set(groupKey(group.ID), data)
	})
}

func (g GroupRepository) GetGroup(id uuid.UUID) (DiskGroup, error) {
	var group DiskGroup
	err := g.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(groupKey(id))
		if err == badger.ErrKeyNotFound {
			return fmt.Errorf("%w: %s", errors.ErrGroupNotFound, id)
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &group)
		})
	})
	if err != nil {
		return DiskGroup{}, err
	}
	return group, nil
}

// ListGroups returns every stored group, ordered by ID.
func (g GroupRepository) ListGroups() ([]DiskGroup, error) {
	var groups []DiskGroup
	err := g.db.View(func(txn *badger.Txn) error {
		prefix := []byte(groupPrefix)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var group DiskGroup
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &group)
			})
			if err != nil {
				return err
			}
			groups = append(groups, group)
		}
		return nil
	})
	return groups, err
}
