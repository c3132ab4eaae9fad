package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"realtime-lab/domain"
)

// UnreadRepository stores ledger snapshots. Keys are
// "unread:{user_id}:{scope_key}"; the scope key itself may contain a
// colon ("chat:42"), so parsing splits on the first two separators only.
type UnreadRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewUnreadRepository(db *badger.DB, log *slog.Logger) UnreadRepository {
	return UnreadRepository{db: db, log: log}
}

func (r UnreadRepository) SaveAll(counters map[domain.UserID]map[string]domain.UnreadCounter) error {
	return r.db.Update(func(txn *badger.Txn) error {
		for userID, scopes := range counters {
			for scopeKey, counter := range scopes {
				key := fmt.Sprintf("unread:%s:%s", userID, scopeKey)
				bytes, err := json.Marshal(counter)
				if err != nil {
					return err
				}
				if err := txn.Set([]byte(key), bytes); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (r UnreadRepository) LoadAll() (map[domain.UserID]map[string]domain.UnreadCounter, error) {
	counters := make(map[domain.UserID]map[string]domain.UnreadCounter)
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte("unread:")
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			parts := strings.SplitN(string(item.Key()), ":", 3)
			if len(parts) != 3 {
				r.log.Warn("Skipping malformed unread key", "key", string(item.Key()))
				continue
			}
			userID, scopeKey := domain.UserID(parts[1]), parts[2]

			var counter domain.UnreadCounter
			err := item.Value(func(value []byte) error {
				return json.Unmarshal(value, &counter)
			})
			if err != nil {
				return err
			}
			if counters[userID] == nil {
				counters[userID] = make(map[string]domain.UnreadCounter)
			}
			counters[userID][scopeKey] = counter
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return counters, nil
}
