package user

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nekogravitycat/room-rental-backend/internal/auth"
)

type memRepo struct {
	mu    sync.Mutex
	users map[string]*User
	seq   int
}

func newMemRepo() *memRepo {
	return &memRepo{users: map[string]*User{}}
}

func (m *memRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memRepo) GetByID(_ context.Context, id string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memRepo) Create(_ context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	u.ID = "user-" + strconv.Itoa(m.seq)
	u.CreatedAt = time.Now().UTC()
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memRepo) UpdateLastLogin(_ context.Context, id string, t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	u.LastLoginAt = &t
	return nil
}

func (m *memRepo) List(_ context.Context, _ UserFilter) ([]*User, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*User
	for _, u := range m.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (m *memRepo) Update(_ context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; !ok {
		return ErrNotFound
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func newTestService() (Service, *memRepo) {
	repo := newMemRepo()
	return NewService(repo, auth.NewBcryptPasswordHasher(4), zap.NewNop()), repo
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	u, err := svc.Register(ctx, "  Alice@Campus.edu ", "password123", "Alice")
	require.NoError(t, err)
	assert.Equal(t, "alice@campus.edu", u.Email)
	assert.Equal(t, RoleUser, u.Role)
	assert.True(t, u.IsActive)

	_, err = svc.Register(ctx, "alice@campus.edu", "password123", "Alice again")
	assert.ErrorIs(t, err, ErrEmailAlreadyUsed)

	_, err = svc.Register(ctx, "bob@campus.edu", "short", "Bob")
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	_, err = svc.Register(ctx, "   ", "password123", "")
	assert.ErrorIs(t, err, ErrEmailRequired)

	logged, err := svc.Login(ctx, "ALICE@campus.edu", "password123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, logged.ID)
	assert.NotNil(t, logged.LastLoginAt)

	_, err = svc.Login(ctx, "alice@campus.edu", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@campus.edu", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdateAndResolve(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	u, err := svc.Register(ctx, "org@campus.edu", "password123", "Org")
	require.NoError(t, err)

	organizer := RoleOrganizer
	updated, err := svc.Update(ctx, u.ID, UpdateUserRequest{Role: &organizer})
	require.NoError(t, err)
	assert.Equal(t, RoleOrganizer, updated.Role)

	id, err := svc.Resolve(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, RoleOrganizer, id.Role)

	bogus := Role("superuser")
	_, err = svc.Update(ctx, u.ID, UpdateUserRequest{Role: &bogus})
	assert.ErrorIs(t, err, ErrInvalidRole)

	inactive := false
	_, err = svc.Update(ctx, u.ID, UpdateUserRequest{IsActive: &inactive})
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, u.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Login(ctx, "org@campus.edu", "password123")
	assert.ErrorIs(t, err, ErrInactiveUser)

	_, err = svc.Resolve(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
