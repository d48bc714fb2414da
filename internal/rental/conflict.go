package rental

import (
	"context"
	"sort"
	"time"
)

// Overlaps reports whether [a1, a2) and [b1, b2) intersect.
func Overlaps(a1, a2, b1, b2 time.Time) bool {
	return a1.Before(b2) && b1.Before(a2)
}

// FindConflict returns the first binding rental overlapping [start, end), skipping excludeID.
func FindConflict(existing []*Rental, start, end time.Time, excludeID string) *Rental {
	for _, r := range existing {
		if r.ID == excludeID || !r.IsBinding() {
			continue
		}
		if Overlaps(start, end, r.StartTime, r.EndTime) {
			return r
		}
	}
	return nil
}

// detectConflict loads the room's approved rentals around [start, end) and checks them.
func detectConflict(ctx context.Context, repo Repository, roomID string, start, end time.Time, excludeID string) (*Rental, error) {
	approved, err := repo.ListApproved(ctx, roomID, start, end)
	if err != nil {
		return nil, err
	}
	return FindConflict(approved, start, end, excludeID), nil
}

// CalculateFreeSlots returns the parts of [from, to) not covered by any binding rental.
// Rentals may be unsorted and may overlap each other.
func CalculateFreeSlots(from, to time.Time, rentals []*Rental) []TimeSlot {
	if !from.Before(to) {
		return nil
	}

	busy := make([]TimeSlot, 0, len(rentals))
	for _, r := range rentals {
		if !r.IsBinding() || !Overlaps(from, to, r.StartTime, r.EndTime) {
			continue
		}
		busy = append(busy, TimeSlot{StartTime: r.StartTime, EndTime: r.EndTime})
	}
	sort.Slice(busy, func(i, j int) bool { return busy[i].StartTime.Before(busy[j].StartTime) })

	var free []TimeSlot
	cursor := from
	for _, b := range busy {
		if b.StartTime.After(cursor) {
			free = append(free, TimeSlot{StartTime: cursor, EndTime: b.StartTime})
		}
		if b.EndTime.After(cursor) {
			cursor = b.EndTime
		}
	}
	if cursor.Before(to) {
		free = append(free, TimeSlot{StartTime: cursor, EndTime: to})
	}
	return free
}
