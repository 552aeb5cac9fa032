package checkin

import (
	"testing"
	"time"

	"coachsync/wellness-app/internal/domain"

	"github.com/stretchr/testify/assert"
)

// Due date Sunday 2025-01-12; the anchor week runs Monday 2025-01-06 through
// Sunday. A friday->monday window resolves to Fri 2025-01-03 10:00 through
// Mon 2025-01-06 22:00 (start shifted back across the week boundary).
var spanningWindow = domain.CheckInWindow{
	Enabled:   true,
	StartDay:  "friday",
	StartTime: "10:00",
	EndDay:    "monday",
	EndTime:   "22:00",
}

var dueSunday = time.Date(2025, 1, 12, 23, 59, 59, 0, time.UTC)

func TestClassifyDisabled(t *testing.T) {
	w := domain.CheckInWindow{Enabled: false}
	got := Classify(w, dueSunday, time.Date(2025, 1, 5, 12, 0, 0, 0, time.UTC))
	assert.Equal(t, WindowDisabled, got)
}

func TestClassifySpanningWeekBoundary(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want WindowStatus
	}{
		{"before start", time.Date(2025, 1, 3, 9, 59, 0, 0, time.UTC), WindowBefore},
		{"at start", time.Date(2025, 1, 3, 10, 0, 0, 0, time.UTC), WindowWithin},
		{"mid window", time.Date(2025, 1, 5, 12, 0, 0, 0, time.UTC), WindowWithin},
		{"just before end", time.Date(2025, 1, 6, 21, 59, 0, 0, time.UTC), WindowWithin},
		{"at end", time.Date(2025, 1, 6, 22, 0, 0, 0, time.UTC), WindowAfter},
		{"well after", time.Date(2025, 1, 9, 0, 0, 0, 0, time.UTC), WindowAfter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(spanningWindow, dueSunday, tt.now))
		})
	}
}

func TestClassifySameWeekWindow(t *testing.T) {
	w := domain.CheckInWindow{
		Enabled:   true,
		StartDay:  "monday",
		StartTime: "08:00",
		EndDay:    "wednesday",
		EndTime:   "20:00",
	}

	assert.Equal(t, WindowWithin, Classify(w, dueSunday, time.Date(2025, 1, 7, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, WindowAfter, Classify(w, dueSunday, time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)))
}

func TestClassifyMalformedWindowIsDisabled(t *testing.T) {
	tests := []domain.CheckInWindow{
		{Enabled: true, StartDay: "someday", StartTime: "10:00", EndDay: "monday", EndTime: "22:00"},
		{Enabled: true, StartDay: "friday", StartTime: "25:00", EndDay: "monday", EndTime: "22:00"},
		{Enabled: true, StartDay: "friday", StartTime: "10:00", EndDay: "monday", EndTime: "22"},
	}
	for _, w := range tests {
		assert.Equal(t, WindowDisabled, Classify(w, dueSunday, time.Now().UTC()))
	}
}

func TestClassifyWeekdayCaseInsensitive(t *testing.T) {
	w := domain.CheckInWindow{
		Enabled:   true,
		StartDay:  " Friday ",
		StartTime: "10:00",
		EndDay:    "MONDAY",
		EndTime:   "22:00",
	}
	assert.Equal(t, WindowWithin, Classify(w, dueSunday, time.Date(2025, 1, 5, 12, 0, 0, 0, time.UTC)))
}

func TestWeekAnchorIsMonday(t *testing.T) {
	// Any day of the week anchors to the same Monday.
	monday := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	for d := 0; d < 7; d++ {
		assert.Equal(t, monday, weekAnchor(monday.AddDate(0, 0, d).Add(15*time.Hour)))
	}
}
