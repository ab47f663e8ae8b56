package tracking

import (
	"testing"
	"time"

	"github.com/andy/workbench/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "00:00"},
		{59 * time.Second, "00:00"},
		{90 * time.Minute, "01:30"},
		{90*time.Minute + 59*time.Second, "01:30"},
		{30 * time.Hour, "30:00"},
		{125*time.Hour + 5*time.Minute, "125:05"},
		{-time.Minute, "00:00"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatElapsed(tt.in))
		})
	}
}

func TestFormatElapsedMillis(t *testing.T) {
	assert.Equal(t, "01:30", FormatElapsedMillis(5400000))
}

func TestFormatElapsed_OpenLogRoundTrip(t *testing.T) {
	start := time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC)
	log := domain.NewTimeLog(domain.PrintJobSubject(3), 1, start)

	got := FormatElapsed(domain.Elapsed(log, start.Add(5400000*time.Millisecond)))

	assert.Equal(t, "01:30", got)
}

func TestIsSameCalendarDay(t *testing.T) {
	a := time.Date(2024, 1, 1, 0, 0, 1, 0, time.Local)
	b := time.Date(2024, 1, 1, 23, 59, 59, 0, time.Local)
	c := time.Date(2024, 1, 2, 0, 0, 0, 0, time.Local)
	d := time.Date(2023, 1, 1, 12, 0, 0, 0, time.Local)

	assert.True(t, IsSameCalendarDay(a, b))
	assert.False(t, IsSameCalendarDay(b, c))
	assert.False(t, IsSameCalendarDay(a, d))
}
