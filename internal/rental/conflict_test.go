package rental

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var base = time.Date(2026, 11, 2, 9, 0, 0, 0, time.UTC)

func at(h float64) time.Time {
	return base.Add(time.Duration(h * float64(time.Hour)))
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name           string
		a1, a2, b1, b2 float64
		want           bool
	}{
		{"disjoint", 0, 1, 2, 3, false},
		{"adjacent", 0, 1, 1, 2, false},
		{"partial", 0, 2, 1, 3, true},
		{"contained", 0, 4, 1, 2, true},
		{"identical", 1, 2, 1, 2, true},
		{"reversed adjacent", 1, 2, 0, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(at(tt.a1), at(tt.a2), at(tt.b1), at(tt.b2)))
			assert.Equal(t, tt.want, Overlaps(at(tt.b1), at(tt.b2), at(tt.a1), at(tt.a2)))
		})
	}
}

func TestFindConflict(t *testing.T) {
	existing := []*Rental{
		{ID: "pending", Status: StatusPending, StartTime: at(0), EndTime: at(2)},
		{ID: "rejected", Status: StatusRejected, StartTime: at(0), EndTime: at(2)},
		{ID: "approved", Status: StatusApproved, StartTime: at(3), EndTime: at(5)},
	}

	assert.Nil(t, FindConflict(existing, at(0), at(2), ""))
	assert.Nil(t, FindConflict(existing, at(2), at(3), ""))

	got := FindConflict(existing, at(4), at(6), "")
	if assert.NotNil(t, got) {
		assert.Equal(t, "approved", got.ID)
	}

	assert.Nil(t, FindConflict(existing, at(4), at(6), "approved"))
}

func TestCalculateFreeSlots(t *testing.T) {
	approved := func(s, e float64) *Rental {
		return &Rental{Status: StatusApproved, StartTime: at(s), EndTime: at(e)}
	}

	tests := []struct {
		name     string
		from, to float64
		rentals  []*Rental
		want     [][2]float64
	}{
		{
			name: "empty day",
			from: 0, to: 8,
			want: [][2]float64{{0, 8}},
		},
		{
			name: "unsorted and overlapping",
			from: 0, to: 8,
			rentals: []*Rental{approved(5, 6), approved(1, 3), approved(2, 4)},
			want:    [][2]float64{{0, 1}, {4, 5}, {6, 8}},
		},
		{
			name: "rental straddles bounds",
			from: 1, to: 5,
			rentals: []*Rental{approved(0, 2), approved(4, 9)},
			want:    [][2]float64{{2, 4}},
		},
		{
			name: "non binding ignored",
			from: 0, to: 2,
			rentals: []*Rental{{Status: StatusPending, StartTime: at(0), EndTime: at(2)}},
			want:    [][2]float64{{0, 2}},
		},
		{
			name: "fully booked",
			from: 0, to: 2,
			rentals: []*Rental{approved(0, 1), approved(1, 2)},
		},
		{
			name: "empty range",
			from: 3, to: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateFreeSlots(at(tt.from), at(tt.to), tt.rentals)
			var want []TimeSlot
			for _, w := range tt.want {
				want = append(want, TimeSlot{StartTime: at(w[0]), EndTime: at(w[1])})
			}
			assert.Equal(t, want, got)
		})
	}
}
