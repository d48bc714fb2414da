package room

import (
	"time"

	"github.com/nekogravitycat/room-rental-backend/internal/pkg/apperror"
)

var (
	ErrNotFound        = apperror.NotFound("room not found")
	ErrNotOrganizer    = apperror.Forbidden("Only organizers can create rooms")
	ErrCapacityInvalid = apperror.Invalid("capacity must be at least 1")
	ErrInvalidWindow   = apperror.Invalid("end time must be after start time")
	ErrNameRequired    = apperror.Invalid("name cannot be empty")
	ErrNegativeRate    = apperror.Invalid("hourly rate cannot be negative")
	ErrReasonRequired  = apperror.Invalid("a reason is required to disable a room")
	ErrRoomInUse       = apperror.Conflict("room has rentals")
	ErrPermission      = apperror.Forbidden("only the room organizer or an admin can manage this room")
)

type Status string

const (
	StatusEnabled  Status = "enabled"
	StatusDisabled Status = "disabled"
)

// Room is a bookable physical space owned by an organizer.
type Room struct {
	ID      string
	OwnerID string
	Name    string
	Address string

	// Capacity is at least 1.
	Capacity int
	Status   Status

	// Either bound may be nil. When both are set, AvailabilityEnd is after AvailabilityStart.
	AvailabilityStart *time.Time
	AvailabilityEnd   *time.Time

	HourlyRateCents *int64
	DisabledReason  *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (r *Room) IsEnabled() bool {
	return r.Status == StatusEnabled
}

// Window returns the room's availability window.
func (r *Room) Window() Window {
	return Window{Start: r.AvailabilityStart, End: r.AvailabilityEnd}
}

// Window is an optional interval outside of which a room cannot be booked.
// A nil bound leaves that side open.
type Window struct {
	Start *time.Time
	End   *time.Time
}

// IsSet reports whether at least one bound is present.
func (w Window) IsSet() bool {
	return w.Start != nil || w.End != nil
}

// Contains reports whether [start, end] lies entirely within the window.
// Intervals crossing a bound are not contained.
func (w Window) Contains(start, end time.Time) bool {
	if w.Start != nil && start.Before(*w.Start) {
		return false
	}
	if w.End != nil && end.After(*w.End) {
		return false
	}
	return true
}

// Clip narrows [from, to) to the window. ok is false when nothing remains.
func (w Window) Clip(from, to time.Time) (time.Time, time.Time, bool) {
	if w.Start != nil && from.Before(*w.Start) {
		from = *w.Start
	}
	if w.End != nil && to.After(*w.End) {
		to = *w.End
	}
	return from, to, from.Before(to)
}

// Filter defines parameters for listing rooms.
type Filter struct {
	OwnerID     string
	Status      Status
	MinCapacity int
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}
