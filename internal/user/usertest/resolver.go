// Package usertest provides identity fixtures for tests.
package usertest

import (
	"context"
	"sync"

	"github.com/nekogravitycat/room-rental-backend/internal/user"
)

// Resolver resolves identities from a fixed table.
type Resolver struct {
	mu    sync.RWMutex
	roles map[string]user.Role
}

func NewResolver() *Resolver {
	return &Resolver{roles: map[string]user.Role{}}
}

// Add registers id with role and returns id.
func (r *Resolver) Add(id string, role user.Role) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.roles[id] = role
	return id
}

func (r *Resolver) Resolve(_ context.Context, id string) (*user.Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	role, ok := r.roles[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return &user.Identity{ID: id, Role: role}, nil
}
