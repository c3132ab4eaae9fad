package repositories

import (
	"log/slog"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"realtime-lab/domain"
)

func TestUserRepository_UsersWithRoles(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	repository := NewUserRepository(db, slog.Default())

	users := []domain.User{
		{ID: "alice", Name: "Alice", Roles: []domain.Role{domain.RoleAdmin}},
		{ID: "bob", Name: "Bob", Roles: []domain.Role{domain.RoleDeveloper}},
		{ID: "clara", Name: "Clara", Roles: []domain.Role{domain.RoleReporter}},
		{ID: "dave", Name: "Dave", Roles: []domain.Role{domain.RoleAdmin, domain.RoleDeveloper}},
	}
	for _, user := range users {
		req.NoError(repository.Save(user))
	}

	// Dave carries both roles but must appear once
	matched, err := repository.UsersWithRoles(domain.RoleAdmin, domain.RoleDeveloper)
	req.NoError(err)

	ids := make([]domain.UserID, 0, len(matched))
	for _, user := range matched {
		ids = append(ids, user.ID)
	}
	req.ElementsMatch([]domain.UserID{"alice", "bob", "dave"}, ids)
}

func TestUserRepository_Save_Overwrites(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	repository := NewUserRepository(db, slog.Default())

	req.NoError(repository.Save(domain.User{ID: "alice", Roles: []domain.Role{domain.RoleReporter}}))
	req.NoError(repository.Save(domain.User{ID: "alice", Roles: []domain.Role{domain.RoleAdmin}}))

	admins, err := repository.UsersWithRoles(domain.RoleAdmin)
	req.NoError(err)
	req.Len(admins, 1)

	reporters, err := repository.UsersWithRoles(domain.RoleReporter)
	req.NoError(err)
	req.Empty(reporters)
}
