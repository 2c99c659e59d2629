package repositories

import (
	"context"
	"log/slog"
	"testing"

	"github.com/blugelabs/bluge"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestMessageIndex_Search_Restricted_To_Group(t *testing.T) {
	req := require.New(t)
	writer, err := bluge.OpenWriter(bluge.DefaultConfig(t.TempDir()))
	req.NoError(err)
	defer writer.Close()
	index := NewMessageIndex(writer, slog.Default())
	team, family := uuid.New(), uuid.New()
	hello := IndexedMessage{ID: uuid.New(), Group: team, Author: "User1", Content: "Hello, how are you?", Language: "en", At: at}

	req.NoError(index.Index(hello))
	req.NoError(index.Index(IndexedMessage{ID: uuid.New(), Group: team, Author: "Admin", Content: "Meeting at noon", At: at}))
	req.NoError(index.Index(IndexedMessage{ID: uuid.New(), Group: family, Author: "Mom", Content: "hello kids", At: at}))

	hits, err := index.Search(context.Background(), team, "hello", 10)

	req.NoError(err)
	req.Len(hits, 1)
	req.Equal(hello.ID, hits[0].MessageID)
	req.Equal("User1", hits[0].Author)
	req.Equal("Hello, how are you?", hits[0].Content)
	req.Equal("en", hits[0].Language)
	req.True(at.Equal(hits[0].At))
}

func TestMessageIndex_Search_No_Hit(t *testing.T) {
	req := require.New(t)
	writer, err := bluge.OpenWriter(bluge.DefaultConfig(t.TempDir()))
	req.NoError(err)
	defer writer.Close()
	index := NewMessageIndex(writer, slog.Default())

	hits, err := index.Search(context.Background(), uuid.New(), "anything", 10)

	req.NoError(err)
	req.Empty(hits)
}

func TestMessageIndex_IndexBatch(t *testing.T) {
	req := require.New(t)
	writer, err := bluge.OpenWriter(bluge.DefaultConfig(t.TempDir()))
	req.NoError(err)
	defer writer.Close()
	index := NewMessageIndex(writer, slog.Default())
	team := uuid.New()

	req.NoError(index.IndexBatch(nil))
	req.NoError(index.IndexBatch([]IndexedMessage{
		{ID: uuid.New(), Group: team, Author: "User1", Content: "release notes are ready", At: at},
		{ID: uuid.New(), Group: team, Author: "User2", Content: "notes reviewed", At: at},
		{ID: uuid.New(), Group: team, Author: "Admin", Content: "lunch?", At: at},
	}))

	hits, err := index.Search(context.Background(), team, "notes", 10)

	req.NoError(err)
	req.Len(hits, 2)
}
