package room

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWindowContains(t *testing.T) {
	base := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	start := base.AddDate(0, 0, 5)
	end := base.AddDate(0, 0, 10)
	w := Window{Start: &start, End: &end}

	tests := []struct {
		name       string
		w          Window
		from, to   time.Time
		wantInside bool
	}{
		{"no window", Window{}, base, base.Add(time.Hour), true},
		{"inside", w, start.Add(time.Hour), start.Add(3 * time.Hour), true},
		{"exactly the window", w, start, end, true},
		{"before window", w, base.AddDate(0, 0, 3), base.AddDate(0, 0, 3).Add(2 * time.Hour), false},
		{"crosses start", w, start.Add(-time.Hour), start.Add(time.Hour), false},
		{"crosses end", w, end.Add(-time.Hour), end.Add(time.Hour), false},
		{"open end, after start", Window{Start: &start}, end.AddDate(1, 0, 0), end.AddDate(1, 0, 1), true},
		{"open start, before end", Window{End: &end}, base, base.Add(time.Hour), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantInside, tt.w.Contains(tt.from, tt.to))
		})
	}
}

func TestWindowClip(t *testing.T) {
	start := time.Date(2026, 11, 1, 9, 0, 0, 0, time.UTC)
	end := time.Date(2026, 11, 1, 18, 0, 0, 0, time.UTC)
	w := Window{Start: &start, End: &end}

	from, to, ok := w.Clip(start.Add(-3*time.Hour), end.Add(3*time.Hour))
	assert.True(t, ok)
	assert.Equal(t, start, from)
	assert.Equal(t, end, to)

	_, _, ok = w.Clip(end.Add(time.Hour), end.Add(2*time.Hour))
	assert.False(t, ok)
}
