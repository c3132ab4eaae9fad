package runtime

import (
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"realtime-lab/domain"
)

func TestRouter_Resolve_UnionWithoutDuplicates(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())
	router := NewRouter(registry)

	// Given an admin who is also a developer, plus a plain developer
	adminConn := domain.ConnectionID(uuid.NewString())
	devConn := domain.ConnectionID(uuid.NewString())
	_, err := registry.Add("alice", []domain.Role{domain.RoleAdmin, domain.RoleDeveloper}, adminConn)
	req.NoError(err)
	_, err = registry.Add("bob", []domain.Role{domain.RoleDeveloper}, devConn)
	req.NoError(err)

	// When resolving a target spanning both role rooms
	resolved := router.Resolve(domain.ToRoles(domain.RoleAdmin, domain.RoleDeveloper))

	// Then alice appears once despite matching both rooms
	req.Len(resolved, 2)
	req.Contains(resolved, adminConn)
	req.Contains(resolved, devConn)
}

func TestRouter_Resolve_EmptyRoom(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())
	router := NewRouter(registry)

	req.Empty(router.Resolve(domain.ToChat("nobody-here")))
	req.Empty(router.Resolve(domain.ToUser("ghost")))
}

func TestRouter_Resolve_Everyone(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())
	router := NewRouter(registry)

	first := domain.ConnectionID(uuid.NewString())
	second := domain.ConnectionID(uuid.NewString())
	_, err := registry.Add("alice", nil, first)
	req.NoError(err)
	_, err = registry.Add("bob", nil, second)
	req.NoError(err)

	resolved := router.Resolve(domain.ToEveryone())
	req.ElementsMatch([]domain.ConnectionID{first, second}, resolved)
}

func TestRouter_Resolve_ObservesCurrentState(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())
	router := NewRouter(registry)

	connID := domain.ConnectionID(uuid.NewString())
	_, err := registry.Add("alice", nil, connID)
	req.NoError(err)
	req.Len(router.Resolve(domain.ToUser("alice")), 1)

	// No caching: a removal is visible on the next resolve
	registry.Remove(connID)
	req.Empty(router.Resolve(domain.ToUser("alice")))
}
