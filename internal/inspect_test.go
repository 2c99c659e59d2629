package internal

import (
	"group-lab/repositories"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestScanPrefix_Maps_Stored_Entries(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLogger(nil))
	req.NoError(err)
	defer db.Close()

	userID, groupID := uuid.New(), uuid.New()
	at := time.Date(2023, 12, 3, 0, 40, 58, 0, time.UTC)
	req.NoError(repositories.NewUserRepository(db).CreateUser(repositories.DiskUser{ID: userID, Username: "Admin", Location: "City A"}))
	req.NoError(repositories.NewGroupRepository(db).SaveGroup(repositories.DiskGroup{
		ID: groupID, Name: "Team", CreatorID: userID, CreatedAt: at,
		Members: []repositories.DiskMember{{UserID: userID, Role: "admin"}},
	}))
	req.NoError(repositories.NewMessageRepository(db, nil, nil).StoreMessage(repositories.DiskMessage{
		ID: uuid.New(), Group: groupID, Seq: 0, AuthorID: userID, Author: "Admin", Content: "hello", At: at,
	}))
	req.NoError(db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte("other:key"), []byte("raw"))
	}))

	users, err := ScanPrefix(db, "user:", nil)
	req.NoError(err)
	req.Len(users, 1)
	req.Equal("USER", users[0].Type)
	req.Equal("Admin, City A, 0 contact(s)", users[0].Detail)

	groups, err := ScanPrefix(db, "group:", nil)
	req.NoError(err)
	req.Len(groups, 1)
	req.Equal("Team, 1 member(s)", groups[0].Detail)

	messages, err := ScanPrefix(db, "msg:", nil)
	req.NoError(err)
	req.Len(messages, 1)
	req.Equal("MESSAGE", messages[0].Type)
	req.Equal("00:40:58", messages[0].Timestamp)
	req.Equal("#0 Admin: hello", messages[0].Detail)

	others, err := ScanPrefix(db, "other:", nil)
	req.NoError(err)
	req.Equal("RAW", others[0].Type)
	req.Equal("Size: 3 bytes", others[0].Detail)
}
