//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

type IMessageRepository interface {
	StoreMessage(message DiskMessage) error
	GetMessages(groupID uuid.UUID, cursor *string) ([]DiskMessage, *string, error)
	AllMessages(groupID uuid.UUID) ([]DiskMessage, error)
}

type MessageRepository struct {
	db            *badger.DB
	log           *slog.Logger
	limitMessages *int
}

func NewMessageRepository(db *badger.DB, log *slog.Logger, limitMessages *int) MessageRepository {
	return MessageRepository{db: db, log: log, limitMessages: limitMessages}
}

type DiskMessage struct {
	ID       uuid.UUID
	Group    uuid.UUID
	Seq      int
	AuthorID uuid.UUID
	Author   string
	Content  string
	At       time.Time
}

func messagePrefix(groupID uuid.UUID) string {
	return fmt.Sprintf("msg:%s:", groupID)
}

// StoreMessage persists a message in BadgerDB.
// The key is formatted as "msg:{group_id}:{seq_padded}:{uuid}" so that a
// lexicographical scan returns messages in the order they were appended to
// the group log, whatever their timestamps.
func (m MessageRepository) StoreMessage(message DiskMessage) error {
	key := fmt.Sprintf("%s%019d:%s", messagePrefix(message.Group), message.Seq, message.ID)
	bytes, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
}

// GetMessages pages through a group's messages, newest first.
// The returned cursor is the key suffix of the last message of the page; it
// is nil once the oldest message has been returned.
func (m MessageRepository) GetMessages(groupID uuid.UUID, cursor *string) ([]DiskMessage, *string, error) {
	var byteMessages [][]byte
	var lastKey string
	exhausted := true
	err := m.db.View(func(txn *badger.Txn) error {
		prefixStr := messagePrefix(groupID)
		prefix := []byte(prefixStr)
		prefixLen := len(prefixStr)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		var seekKey []byte
		switch cursor {
		case nil:
			// Past the highest possible sequence, then walk backwards
			seekKey = append([]byte(prefixStr), []byte("9999999999999999999;")...)
		default:
			seekKey = append([]byte(prefixStr), []byte(*cursor)...)
		}

		it.Seek(seekKey)

		if cursor != nil && it.ValidForPrefix(prefix) && string(it.Item().Key()[prefixLen:]) == *cursor {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			if m.limitMessages != nil && len(byteMessages) == *m.limitMessages {
				m.log.Debug(fmt.Sprintf("Maximum of %d message reached", *m.limitMessages))
				exhausted = false
				break
			}
			item := it.Item()
			lastKey = string(item.KeyCopy(nil)[prefixLen:])
			err := item.Value(func(value []byte) error {
				byteMessages = append(byteMessages, append([]byte(nil), value...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	diskMessages, err := decodeMessages(byteMessages)
	if err != nil {
		return nil, nil, err
	}
	if exhausted || len(diskMessages) == 0 {
		return diskMessages, nil, nil
	}
	return diskMessages, lo.ToPtr(lastKey), nil
}

// AllMessages returns every message of a group in append order.
func (m MessageRepository) AllMessages(groupID uuid.UUID) ([]DiskMessage, error) {
	var byteMessages [][]byte
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(messagePrefix(groupID))
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			value, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			byteMessages = append(byteMessages, value)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return decodeMessages(byteMessages)
}

func decodeMessages(raw [][]byte) ([]DiskMessage, error) {
	messages := make([]DiskMessage, 0, len(raw))
	for _, b := range raw {
		var message DiskMessage
		if err := json.Unmarshal(b, &message); err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, nil
}
