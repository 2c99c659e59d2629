package sink

import (
	"context"
	"fmt"
	"group-lab/domain/event"
	"group-lab/repositories"
	"log/slog"
	"sync"
	"time"

	"github.com/abadojack/whatlanggo"
)

// IndexSink buffers posted messages and hands them to the full-text index
// in batches. A batch is flushed once it holds maxBatch messages or when
// bufferTimeout elapsed since its first message.
type IndexSink struct {
	mu            sync.Mutex
	timer         *time.Timer
	index         repositories.IMessageIndex
	log           *slog.Logger
	pending       []repositories.IndexedMessage
	maxBatch      int
	bufferTimeout time.Duration
}

func NewIndexSink(index repositories.IMessageIndex, log *slog.Logger, maxBatch int, bufferTimeout time.Duration) *IndexSink {
	if maxBatch < 1 {
		maxBatch = 1
	}
	return &IndexSink{
		index:         index,
		log:           log,
		maxBatch:      maxBatch,
		bufferTimeout: bufferTimeout,
	}
}

func (s *IndexSink) Consume(_ context.Context, e event.DomainEvent) error {
	evt, ok := e.(event.MessagePosted)
	if !ok {
		return nil
	}

	s.mu.Lock()
	s.pending = append(s.pending, toIndexedMessage(evt))

	// First message of a new batch arms the timer so a slow group is
	// still searchable.
	if len(s.pending) == 1 && s.timer == nil && s.maxBatch > 1 {
		s.timer = time.AfterFunc(s.bufferTimeout, func() {
			if err := s.Flush(); err != nil {
				s.log.Error("Index flush on timeout failed", "error", err)
			}
		})
	}
	isFull := len(s.pending) >= s.maxBatch
	s.mu.Unlock()

	if isFull {
		return s.Flush()
	}
	return nil
}

// Flush indexes every buffered message.
func (s *IndexSink) Flush() error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if len(s.pending) == 0 {
		s.mu.Unlock()
		return nil
	}
	batch := s.pending
	s.pending = make([]repositories.IndexedMessage, 0, s.maxBatch)
	s.mu.Unlock()

	if err := s.index.IndexBatch(batch); err != nil {
		return fmt.Errorf("failed to index batch: %w", err)
	}
	s.log.Debug("Messages indexed", "count", len(batch))
	return nil
}

func toIndexedMessage(evt event.MessagePosted) repositories.IndexedMessage {
	return repositories.IndexedMessage{
		ID:       evt.ID,
		Group:    evt.Group,
		Author:   evt.Author,
		Content:  evt.Content,
		Language: DetectLanguage(evt.Content),
		At:       evt.At,
	}
}

// DetectLanguage returns the ISO 639-1 code of text, or "und" when no
// language could be detected.
func DetectLanguage(text string) string {
	info := whatlanggo.Detect(text)
	if code := info.Lang.Iso6391(); code != "" {
		return code
	}
	return "und"
}
