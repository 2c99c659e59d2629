//go:generate go run go.uber.org/mock/mockgen -source=message_index.go -destination=../mocks/mock_message_index.go -package=mocks
package repositories

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/google/uuid"
)

const (
	fieldGroup    = "group"
	fieldAuthor   = "author"
	fieldContent  = "content"
	fieldLanguage = "lang"
	fieldAt       = "at"
)

type IMessageIndex interface {
	Index(message IndexedMessage) error
	IndexBatch(messages []IndexedMessage) error
	Search(ctx context.Context, groupID uuid.UUID, query string, limit int) ([]SearchHit, error)
}

type IndexedMessage struct {
	ID       uuid.UUID
	Group    uuid.UUID
	Author   string
	Content  string
	Language string
	At       time.Time
}

type SearchHit struct {
	MessageID uuid.UUID
	Author    string
	Content   string
	Language  string
	At        time.Time
	Score     float64
}

// MessageIndex is a full-text index of group messages backed by bluge.
type MessageIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewMessageIndex(writer *bluge.Writer, log *slog.Logger) MessageIndex {
	return MessageIndex{writer: writer, log: log}
}

// Index adds or replaces the document of a message.
func (m MessageIndex) Index(message IndexedMessage) error {
	doc := toDocument(message)
	return m.writer.Update(doc.ID(), doc)
}

// IndexBatch applies all documents in a single bluge batch.
func (m MessageIndex) IndexBatch(messages []IndexedMessage) error {
	if len(messages) == 0 {
		return nil
	}
	batch := bluge.NewBatch()
	for _, message := range messages {
		doc := toDocument(message)
		batch.Update(doc.ID(), doc)
	}
	if err := m.writer.Batch(batch); err != nil {
		return fmt.Errorf("index batch of %d messages: %w", len(messages), err)
	}
	return nil
}

func toDocument(message IndexedMessage) *bluge.Document {
	return bluge.NewDocument(message.ID.String()).
		AddField(bluge.NewKeywordField(fieldGroup, message.Group.String()).StoreValue()).
		AddField(bluge.NewKeywordField(fieldAuthor, message.Author).StoreValue()).
		AddField(bluge.NewTextField(fieldContent, message.Content).StoreValue()).
		AddField(bluge.NewKeywordField(fieldLanguage, message.Language).StoreValue()).
		AddField(bluge.NewKeywordField(fieldAt, message.At.UTC().Format(time.RFC3339Nano)).StoreValue())
}

// Search runs a match query on message content, restricted to one group.
// Hits are ordered by relevance.
func (m MessageIndex) Search(ctx context.Context, groupID uuid.UUID, query string, limit int) ([]SearchHit, error) {
	reader, err := m.writer.Reader()
	if err != nil {
		return nil, fmt.Errorf("index reader: %w", err)
	}
	defer func() {
		if err := reader.Close(); err != nil {
			m.log.Warn("Failed to close index reader", "error", err)
		}
	}()

	q := bluge.NewBooleanQuery().
		AddMust(bluge.NewTermQuery(groupID.String()).SetField(fieldGroup)).
		AddMust(bluge.NewMatchQuery(query).SetField(fieldContent))
	request := bluge.NewTopNSearch(limit, q)

	iterator, err := reader.Search(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	var hits []SearchHit
	match, err := iterator.Next()
	for err == nil && match != nil {
		hit := SearchHit{Score: match.Score}
		var visitErr error
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "_id":
				hit.MessageID, visitErr = uuid.ParseBytes(value)
			case fieldAuthor:
				hit.Author = string(value)
			case fieldContent:
				hit.Content = string(value)
			case fieldLanguage:
				hit.Language = string(value)
			case fieldAt:
				hit.At, visitErr = time.Parse(time.RFC3339Nano, string(value))
			}
			return visitErr == nil
		})
		if err != nil {
			return nil, err
		}
		if visitErr != nil {
			return nil, visitErr
		}
		hits = append(hits, hit)
		match, err = iterator.Next()
	}
	if err != nil {
		return nil, err
	}
	return hits, nil
}
