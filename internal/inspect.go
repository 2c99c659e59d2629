package internal

import (
	"fmt"
	"group-lab/repositories"
	"strconv"
	"strings"

	"github.com/dgraph-io/badger/v4"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type InspectRow struct {
	Key       string
	Type      string
	Timestamp string
	EntityID  string
	Namespace string
	Detail    string
}

type RowMapper func(key string, val []byte) InspectRow

// ScanPrefix maps every badger entry whose key starts with prefix.
func ScanPrefix(db *badger.DB, prefix string, mapper RowMapper) ([]InspectRow, error) {
	if mapper == nil {
		mapper = DefaultMapper
	}
	var rows []InspectRow
	err := db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			item := it.Item()
			if err := item.Value(func(val []byte) error {
				rows = append(rows, mapper(string(item.Key()), val))
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	return rows, err
}

// DefaultMapper decodes user, group and message entries. Unknown keys or
// undecodable values are shown raw.
func DefaultMapper(key string, val []byte) InspectRow {
	parts := strings.Split(key, ":")
	row := InspectRow{
		Key:       key,
		Type:      "RAW",
		Timestamp: "--:--:--",
		EntityID:  "--------",
		Namespace: "-",
		Detail:    "Size: " + strconv.Itoa(len(val)) + " bytes",
	}

	switch parts[0] {
	case "user":
		var u repositories.DiskUser
		if json.Unmarshal(val, &u) != nil {
			return row
		}
		row.Type = "USER"
		row.EntityID = short(u.ID.String())
		row.Detail = fmt.Sprintf("%s, %s, %d contact(s)", u.Username, u.Location, len(u.Contacts))
	case "group":
		var g repositories.DiskGroup
		if json.Unmarshal(val, &g) != nil {
			return row
		}
		row.Type = "GROUP"
		row.Timestamp = g.CreatedAt.Format("15:04:05")
		row.EntityID = short(g.ID.String())
		row.Detail = fmt.Sprintf("%s, %d member(s)", g.Name, len(g.Members))
	case "msg":
		var m repositories.DiskMessage
		if len(parts) < 4 || json.Unmarshal(val, &m) != nil {
			return row
		}
		row.Type = "MESSAGE"
		row.Timestamp = m.At.Format("15:04:05")
		row.Namespace = short(parts[1])
		row.EntityID = short(parts[3])
		row.Detail = fmt.Sprintf("#%d %s: %s", m.Seq, m.Author, m.Content)
	}
	return row
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
