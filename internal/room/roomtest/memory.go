// Package roomtest provides an in-memory room repository for tests.
package roomtest

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/nekogravitycat/room-rental-backend/internal/room"
)

// Memory is a room.Repository backed by a map.
type Memory struct {
	mu    sync.Mutex
	rooms map[string]*room.Room
	seq   int

	// InUse marks rooms that Delete must refuse.
	InUse map[string]bool
}

func NewMemory() *Memory {
	return &Memory{
		rooms: map[string]*room.Room{},
		InUse: map[string]bool{},
	}
}

func (m *Memory) Create(_ context.Context, r *room.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	r.ID = "room-" + strconv.Itoa(m.seq)
	// Creation order is observable through CreatedAt.
	r.CreatedAt = time.Date(2026, 1, 1, 0, 0, m.seq, 0, time.UTC)
	r.UpdatedAt = r.CreatedAt
	m.rooms[r.ID] = clone(r)
	return nil
}

func (m *Memory) GetByID(_ context.Context, id string) (*room.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rooms[id]
	if !ok {
		return nil, room.ErrNotFound
	}
	return clone(r), nil
}

func (m *Memory) List(_ context.Context, filter room.Filter) ([]*room.Room, int, error) {
	all := m.matching(func(r *room.Room) bool {
		if filter.OwnerID != "" && r.OwnerID != filter.OwnerID {
			return false
		}
		if filter.Status != "" && r.Status != filter.Status {
			return false
		}
		return r.Capacity >= filter.MinCapacity
	})

	page, size := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 20
	}
	start := (page - 1) * size
	if start > len(all) {
		start = len(all)
	}
	end := start + size
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], len(all), nil
}

func (m *Memory) ListByOwner(_ context.Context, ownerID string) ([]*room.Room, error) {
	return m.matching(func(r *room.Room) bool { return r.OwnerID == ownerID }), nil
}

func (m *Memory) ListEnabled(_ context.Context, minCapacity int) ([]*room.Room, error) {
	return m.matching(func(r *room.Room) bool {
		return r.Status == room.StatusEnabled && r.Capacity >= minCapacity
	}), nil
}

func (m *Memory) UpdateStatus(_ context.Context, r *room.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.rooms[r.ID]
	if !ok {
		return room.ErrNotFound
	}
	stored.Status = r.Status
	stored.DisabledReason = r.DisabledReason
	stored.UpdatedAt = stored.UpdatedAt.Add(time.Second)
	r.UpdatedAt = stored.UpdatedAt
	return nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rooms[id]; !ok {
		return room.ErrNotFound
	}
	if m.InUse[id] {
		return room.ErrRoomInUse
	}
	delete(m.rooms, id)
	return nil
}

func (m *Memory) matching(keep func(*room.Room) bool) []*room.Room {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*room.Room
	for _, r := range m.rooms {
		if keep(r) {
			out = append(out, clone(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func clone(r *room.Room) *room.Room {
	cp := *r
	return &cp
}
