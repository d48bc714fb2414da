// Package rentaltest provides an in-memory rental repository for tests.
package rentaltest

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/nekogravitycat/room-rental-backend/internal/rental"
)

// Memory is a rental.Repository backed by a map.
// WithRoomLock serializes callers per room like the row lock in Postgres.
type Memory struct {
	mu      sync.Mutex
	rentals map[string]*rental.Rental
	seq     int

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

func NewMemory() *Memory {
	return &Memory{
		rentals: map[string]*rental.Rental{},
		locks:   map[string]*sync.Mutex{},
	}
}

// Put stores r as is, assigning an ID when empty. Useful for seeding terminal states.
func (m *Memory) Put(r *rental.Rental) *rental.Rental {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r.ID == "" {
		m.seq++
		r.ID = "rental-" + strconv.Itoa(m.seq)
	}
	m.rentals[r.ID] = clone(r)
	return r
}

func (m *Memory) Create(_ context.Context, r *rental.Rental) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	r.ID = "rental-" + strconv.Itoa(m.seq)
	r.CreatedAt = time.Date(2026, 1, 1, 0, 0, m.seq, 0, time.UTC)
	r.UpdatedAt = r.CreatedAt
	m.rentals[r.ID] = clone(r)
	return nil
}

func (m *Memory) GetByID(_ context.Context, id string) (*rental.Rental, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rentals[id]
	if !ok {
		return nil, rental.ErrNotFound
	}
	return clone(r), nil
}

func (m *Memory) List(ctx context.Context, filter rental.Filter) ([]*rental.Rental, int, error) {
	all, _ := m.ListAll(ctx, filter)

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

func (m *Memory) ListAll(_ context.Context, filter rental.Filter) ([]*rental.Rental, error) {
	return m.matching(func(r *rental.Rental) bool {
		if filter.RoomID != "" && r.RoomID != filter.RoomID {
			return false
		}
		if filter.RenterID != "" && r.RenterID != filter.RenterID {
			return false
		}
		if filter.Status != "" && r.Status != filter.Status {
			return false
		}
		if filter.StartTime != nil && !r.EndTime.After(*filter.StartTime) {
			return false
		}
		if filter.EndTime != nil && !r.StartTime.Before(*filter.EndTime) {
			return false
		}
		return true
	}), nil
}

func (m *Memory) ListApproved(_ context.Context, roomID string, start, end time.Time) ([]*rental.Rental, error) {
	return m.matching(func(r *rental.Rental) bool {
		if roomID != "" && r.RoomID != roomID {
			return false
		}
		return r.Status == rental.StatusApproved && rental.Overlaps(start, end, r.StartTime, r.EndTime)
	}), nil
}

func (m *Memory) Transition(_ context.Context, r *rental.Rental, from rental.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.rentals[r.ID]
	if !ok {
		return rental.ErrNotFound
	}
	if stored.Status != from {
		return rental.ErrStatusChanged
	}
	stored.Status = r.Status
	stored.AdminNotes = r.AdminNotes
	stored.TotalCostCents = r.TotalCostCents
	stored.UpdatedAt = stored.UpdatedAt.Add(time.Second)
	r.UpdatedAt = stored.UpdatedAt
	return nil
}

func (m *Memory) WithRoomLock(_ context.Context, roomID string, fn func(tx rental.Repository) error) error {
	lock := m.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()
	return fn(m)
}

func (m *Memory) roomLock(roomID string) *sync.Mutex {
	m.locksMu.Lock()
	defer m.locksMu.Unlock()

	l, ok := m.locks[roomID]
	if !ok {
		l = &sync.Mutex{}
		m.locks[roomID] = l
	}
	return l
}

func (m *Memory) matching(keep func(*rental.Rental) bool) []*rental.Rental {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*rental.Rental
	for _, r := range m.rentals {
		if keep(r) {
			out = append(out, clone(r))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.Before(out[j].StartTime)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func clone(r *rental.Rental) *rental.Rental {
	cp := *r
	return &cp
}
