package rental

import (
	"time"

	"github.com/nekogravitycat/room-rental-backend/internal/pkg/apperror"
)

var (
	ErrNotFound          = apperror.NotFound("rental not found")
	ErrRoomDisabled      = apperror.Invalid("room is disabled")
	ErrStartTimePast     = apperror.Invalid("cannot book in the past")
	ErrInvalidTimeRange  = apperror.Invalid("end time must be after start time")
	ErrInvalidAttendees  = apperror.Invalid("expected attendees must be at least 1")
	ErrExceedsCapacity   = apperror.Invalid("exceeds room capacity")
	ErrOutsideWindow     = apperror.Invalid("room not available during requested window")
	ErrConflict          = apperror.Conflict("room is already booked for this time")
	ErrNotPending        = apperror.Invalid("rental is not pending")
	ErrNotCancellable    = apperror.Invalid("only approved rentals can be cancelled")
	ErrApproveForbidden  = apperror.Forbidden("only the room organizer or an admin can approve")
	ErrRejectForbidden   = apperror.Forbidden("only the room organizer or an admin can reject")
	ErrViewForbidden     = apperror.Forbidden("permission denied")
)

// ErrStatusChanged is returned by Repository.Transition when the stored status
// no longer matches the expected one.
var ErrStatusChanged = apperror.Conflict("rental status changed concurrently")

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

// Rental is a time-bounded booking request against a room.
type Rental struct {
	ID       string
	RoomID   string
	RenterID string

	// [StartTime, EndTime) with EndTime after StartTime.
	StartTime time.Time
	EndTime   time.Time

	Purpose           *string
	ExpectedAttendees *int
	Status            Status
	AdminNotes        *string

	// TotalCostCents is set at approval when the room has an hourly rate.
	TotalCostCents *int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Duration returns the rented length of time.
func (r *Rental) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}

// IsBinding reports whether the rental excludes others from its interval.
func (r *Rental) IsBinding() bool {
	return r.Status == StatusApproved
}

// TimeSlot is a free interval [StartTime, EndTime).
type TimeSlot struct {
	StartTime time.Time
	EndTime   time.Time
}

type Filter struct {
	RoomID    string
	RenterID  string
	Status    Status
	StartTime *time.Time // Rentals ending after this time
	EndTime   *time.Time // Rentals starting before this time
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// CostCents returns hourlyRateCents × duration in hours, rounded to the nearest cent.
func CostCents(hourlyRateCents int64, start, end time.Time) int64 {
	d := end.Sub(start)
	hours := int64(d / time.Hour)
	seconds := int64((d % time.Hour) / time.Second)
	return hourlyRateCents*hours + (hourlyRateCents*seconds+1800)/3600
}
