package repositories

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"realtime-lab/domain"
)

// MembershipRepository holds durable chat membership. Live room
// subscriptions in the registry are rebuilt on every reconnect; this
// record is what they are rebuilt from.
type MembershipRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMembershipRepository(db *badger.DB, log *slog.Logger) MembershipRepository {
	return MembershipRepository{db: db, log: log}
}

func memberKey(chatID string, userID domain.UserID) []byte {
	return []byte(fmt.Sprintf("member:%s:%s", chatID, userID))
}

func (r MembershipRepository) AddMember(chatID string, userID domain.UserID) error {
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(memberKey(chatID, userID), []byte{})
	})
}

func (r MembershipRepository) RemoveMember(chatID string, userID domain.UserID) error {
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(memberKey(chatID, userID))
	})
}

func (r MembershipRepository) Members(chatID string) ([]domain.UserID, error) {
	var members []domain.UserID
	err := r.db.View(func(txn *badger.Txn) error {
		prefixStr := fmt.Sprintf("member:%s:", chatID)
		prefix := []byte(prefixStr)
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			members = append(members, domain.UserID(strings.TrimPrefix(key, prefixStr)))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return members, nil
}
