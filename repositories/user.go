package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"

	"github.com/dgraph-io/badger/v4"

	"realtime-lab/domain"
)

// UserRepository is the identity directory the notification policy
// queries for role broadcasts. Records are written by the account
// system upstream; the realtime layer only reads them.
type UserRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewUserRepository(db *badger.DB, log *slog.Logger) UserRepository {
	return UserRepository{db: db, log: log}
}

func userKey(id domain.UserID) []byte {
	return []byte(fmt.Sprintf("account:%s", id))
}

func (r UserRepository) Save(user domain.User) error {
	bytes, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(userKey(user.ID), bytes)
	})
}

// UsersWithRoles returns every user carrying at least one of the given
// roles. Full scan over the account prefix; the directory is small.
func (r UserRepository) UsersWithRoles(roles ...domain.Role) ([]domain.User, error) {
	var users []domain.User
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte("account:")
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var user domain.User
			err := it.Item().Value(func(value []byte) error {
				return json.Unmarshal(value, &user)
			})
			if err != nil {
				return err
			}
			if hasAnyRole(user, roles) {
				users = append(users, user)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

func hasAnyRole(user domain.User, roles []domain.Role) bool {
	for _, role := range roles {
		if slices.Contains(user.Roles, role) {
			return true
		}
	}
	return false
}
