package rental

import (
	"time"

	"github.com/nekogravitycat/room-rental-backend/internal/room"
)

// ValidateRequest checks a proposed booking against the room's static constraints.
// Checks run in a fixed order and the first failure is returned.
func ValidateRequest(rm *room.Room, start, end time.Time, expectedAttendees *int, now time.Time) error {
	if !rm.IsEnabled() {
		return ErrRoomDisabled
	}
	if start.Before(now) {
		return ErrStartTimePast
	}
	if !end.After(start) {
		return ErrInvalidTimeRange
	}
	if expectedAttendees != nil {
		if *expectedAttendees > rm.Capacity {
			return ErrExceedsCapacity
		}
		if *expectedAttendees < 1 {
			return ErrInvalidAttendees
		}
	}
	if w := rm.Window(); w.IsSet() && !w.Contains(start, end) {
		return ErrOutsideWindow
	}
	return nil
}
