package repositories

import (
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func openBadger(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).
		WithLoggingLevel(badger.ERROR).
		WithValueLogFileSize(16 << 20))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

var at = time.Date(2023, 12, 3, 0, 40, 58, 0, time.UTC)

func Test_Record_And_Get_Messages_Newest_First(t *testing.T) {
	req := require.New(t)
	db := openBadger(t)
	repository := NewMessageRepository(db, logs.GetLoggerFromLevel(slog.LevelDebug), nil)
	group := uuid.New()
	content := "this message will self destruct in 5 seconds"
	diskMessages := []DiskMessage{
		{uuid.New(), group, 0, uuid.New(), "Alice", content, at},
		{uuid.New(), group, 1, uuid.New(), "Bob", content, at.Add(1 * time.Minute)},
		{uuid.New(), group, 2, uuid.New(), "Clara", content, at.Add(2 * time.Minute)},
	}
	for _, dm := range diskMessages {
		req.NoError(repository.StoreMessage(dm))
	}

	// When fetching messages
	fetched, cursor, err := repository.GetMessages(group, nil)

	// Then the newest comes first and nothing is left
	req.NoError(err)
	req.Nil(cursor)
	req.Equal([]DiskMessage{diskMessages[2], diskMessages[1], diskMessages[0]}, fetched)
}

func Test_AllMessages_Keeps_Append_Order(t *testing.T) {
	req := require.New(t)
	db := openBadger(t)
	repository := NewMessageRepository(db, slog.Default(), lo.ToPtr(1))
	group := uuid.New()
	// Same timestamp for every message: only the sequence orders them
	for i := 0; i < 12; i++ {
		req.NoError(repository.StoreMessage(DiskMessage{
			ID: uuid.New(), Group: group, Seq: i, Author: fmt.Sprintf("user_%d", i), At: at,
		}))
	}
	// Another group is not mixed in
	req.NoError(repository.StoreMessage(DiskMessage{ID: uuid.New(), Group: uuid.New(), Author: "intruder", At: at}))

	all, err := repository.AllMessages(group)

	req.NoError(err)
	req.Len(all, 12)
	for i, m := range all {
		req.Equal(fmt.Sprintf("user_%d", i), m.Author)
	}
}

func Test_MessageRepository_Pagination(t *testing.T) {
	req := require.New(t)
	db := openBadger(t)
	repo := NewMessageRepository(db, slog.Default(), lo.ToPtr(4))
	group := uuid.New()

	// 10 messages, oldest first
	for i := 1; i <= 10; i++ {
		req.NoError(repo.StoreMessage(DiskMessage{
			ID:      uuid.New(),
			Group:   group,
			Seq:     i - 1,
			Author:  fmt.Sprintf("user_%d", i),
			Content: fmt.Sprintf("Message %d", i),
			At:      at.Add(time.Duration(i) * time.Minute),
		}))
	}

	// --- PAGE 1 ---
	msgs1, cursor1, err := repo.GetMessages(group, nil)
	req.NoError(err)
	req.Len(msgs1, 4)
	req.Equal("user_10", msgs1[0].Author)
	req.Equal("user_7", msgs1[3].Author)
	req.NotNil(cursor1)

	// --- PAGE 2 ---
	msgs2, cursor2, err := repo.GetMessages(group, cursor1)
	req.NoError(err)
	req.Len(msgs2, 4)
	req.Equal("user_6", msgs2[0].Author)
	req.Equal("user_3", msgs2[3].Author)
	req.NotNil(cursor2)

	// --- PAGE 3 (end) ---
	msgs3, cursor3, err := repo.GetMessages(group, cursor2)
	req.NoError(err)
	req.Len(msgs3, 2)
	req.Equal("user_2", msgs3[0].Author)
	req.Equal("user_1", msgs3[1].Author)
	req.Nil(cursor3)
}

func Test_GetMessages_Empty_Group(t *testing.T) {
	req := require.New(t)
	repo := NewMessageRepository(openBadger(t), slog.Default(), lo.ToPtr(4))

	msgs, cursor, err := repo.GetMessages(uuid.New(), nil)

	req.NoError(err)
	req.Empty(msgs)
	req.Nil(cursor)
}
