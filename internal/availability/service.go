// Package availability answers which rooms are free for a time range.
package availability

import (
	"context"
	"time"

	"github.com/nekogravitycat/room-rental-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/room-rental-backend/internal/rental"
	"github.com/nekogravitycat/room-rental-backend/internal/room"
)

var ErrInvalidRange = apperror.Invalid("end time must be after start time")

type RoomLister interface {
	GetByID(ctx context.Context, id string) (*room.Room, error)
	ListEnabled(ctx context.Context, minCapacity int) ([]*room.Room, error)
}

type BookingLister interface {
	ListApproved(ctx context.Context, roomID string, start, end time.Time) ([]*rental.Rental, error)
}

// Schedule is a room's free time within a queried range.
type Schedule struct {
	RoomID    string
	From      time.Time
	To        time.Time
	FreeSlots []rental.TimeSlot
}

type Service interface {
	// GetAvailableRooms returns enabled rooms with capacity >= minCapacity whose
	// window contains [start, end) and which have no approved rental overlapping it.
	GetAvailableRooms(ctx context.Context, start, end time.Time, minCapacity int) ([]*room.Room, error)
	RoomSchedule(ctx context.Context, roomID string, from, to time.Time) (*Schedule, error)
}

type service struct {
	rooms    RoomLister
	bookings BookingLister
}

func NewService(rooms RoomLister, bookings BookingLister) Service {
	return &service{rooms: rooms, bookings: bookings}
}

func (s *service) GetAvailableRooms(ctx context.Context, start, end time.Time, minCapacity int) ([]*room.Room, error) {
	if !end.After(start) {
		return nil, ErrInvalidRange
	}
	if minCapacity < 0 {
		minCapacity = 0
	}

	candidates, err := s.rooms.ListEnabled(ctx, minCapacity)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return []*room.Room{}, nil
	}

	// One query for all rooms instead of one per candidate.
	approved, err := s.bookings.ListApproved(ctx, "", start, end)
	if err != nil {
		return nil, err
	}
	byRoom := make(map[string][]*rental.Rental)
	for _, r := range approved {
		byRoom[r.RoomID] = append(byRoom[r.RoomID], r)
	}

	available := make([]*room.Room, 0, len(candidates))
	for _, rm := range candidates {
		if w := rm.Window(); w.IsSet() && !w.Contains(start, end) {
			continue
		}
		if rental.FindConflict(byRoom[rm.ID], start, end, "") != nil {
			continue
		}
		available = append(available, rm)
	}
	return available, nil
}

func (s *service) RoomSchedule(ctx context.Context, roomID string, from, to time.Time) (*Schedule, error) {
	if !to.After(from) {
		return nil, ErrInvalidRange
	}

	rm, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	schedule := &Schedule{RoomID: rm.ID, From: from, To: to, FreeSlots: []rental.TimeSlot{}}
	if !rm.IsEnabled() {
		return schedule, nil
	}

	start, end, ok := rm.Window().Clip(from, to)
	if !ok {
		return schedule, nil
	}

	approved, err := s.bookings.ListApproved(ctx, rm.ID, start, end)
	if err != nil {
		return nil, err
	}
	if free := rental.CalculateFreeSlots(start, end, approved); free != nil {
		schedule.FreeSlots = free
	}
	return schedule, nil
}
