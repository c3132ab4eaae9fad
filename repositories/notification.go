package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"realtime-lab/domain"
)

// listLimit caps List to the most recent records, matching what a
// client's notification panel actually renders.
const listLimit = 50

type NotificationRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewNotificationRepository(db *badger.DB, log *slog.Logger) NotificationRepository {
	return NotificationRepository{db: db, log: log}
}

// Store persists a notification record.
// The key is formatted as "notif:{user_id}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding
//     (lexicographical order).
//  2. Prevent data loss by using UUID as a collision disconnector if two
//     records arrive at the same nanosecond.
func (r NotificationRepository) Store(n domain.Notification) error {
	key := fmt.Sprintf("notif:%s:%019d:%s", n.UserID, n.CreatedAt.UnixNano(), n.ID)
	bytes, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
}

// List returns the user's most recent notifications, newest first.
// Thanks to the padded timestamp in the key a reverse prefix scan comes
// out already sorted.
func (r NotificationRepository) List(userID domain.UserID) ([]domain.Notification, error) {
	var notifications []domain.Notification
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte(fmt.Sprintf("notif:%s:", userID))
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// Seek past the newest possible key for this user
		seekKey := append(append([]byte{}, prefix...), []byte("9999999999999999999")...)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if len(notifications) == listLimit {
				r.log.Debug(fmt.Sprintf("Maximum of %d notifications reached", listLimit))
				break
			}
			err := it.Item().Value(func(value []byte) error {
				var n domain.Notification
				if err := json.Unmarshal(value, &n); err != nil {
					return err
				}
				notifications = append(notifications, n)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkRead flips the read flag of one notification owned by the user.
// Returns how many records changed: an unknown id, a foreign owner, or
// an already-read record all flip zero rows and are not errors.
func (r NotificationRepository) MarkRead(userID domain.UserID, id uuid.UUID) (int, error) {
	return r.markMatching(userID, func(n domain.Notification) bool {
		return n.ID == id
	})
}

// MarkAllRead flips every unread notification of the user and returns
// the number of records changed.
func (r NotificationRepository) MarkAllRead(userID domain.UserID) (int, error) {
	return r.markMatching(userID, func(domain.Notification) bool {
		return true
	})
}

func (r NotificationRepository) markMatching(userID domain.UserID, match func(domain.Notification) bool) (int, error) {
	changed := 0
	err := r.db.Update(func(txn *badger.Txn) error {
		prefix := []byte(fmt.Sprintf("notif:%s:", userID))
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			var n domain.Notification
			err := item.Value(func(value []byte) error {
				return json.Unmarshal(value, &n)
			})
			if err != nil {
				return err
			}
			if n.Read || !match(n) {
				continue
			}
			n.Read = true
			bytes, err := json.Marshal(n)
			if err != nil {
				return err
			}
			if err := txn.Set(item.KeyCopy(nil), bytes); err != nil {
				return err
			}
			changed++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return changed, nil
}
