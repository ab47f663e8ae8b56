package tracking

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingNotifier struct {
	calls []time.Duration
}

func (c *countingNotifier) Chime(elapsed time.Duration) {
	c.calls = append(c.calls, elapsed)
}

// tickFrom simulates a one-second timer from elapsed start for n ticks
func tickFrom(c *Chime, start time.Duration, n int) int {
	wall := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	fired := 0
	for i := 0; i < n; i++ {
		d := time.Duration(i) * time.Second
		if c.Check(start+d, wall.Add(d)) {
			fired++
		}
	}
	return fired
}

func TestChime_OncePerBoundary(t *testing.T) {
	n := &countingNotifier{}
	c := NewChime(n)

	// 14:50 -> 15:59 crosses the :15 boundary and stays on it for a minute
	fired := tickFrom(c, 14*time.Minute+50*time.Second, 70)

	assert.Equal(t, 1, fired)
	assert.Len(t, n.calls, 1)
	assert.Equal(t, 15*time.Minute, n.calls[0])
}

func TestChime_RepeatedChecksWithinDebounce(t *testing.T) {
	c := NewChime(nil)
	wall := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	elapsed := time.Hour

	assert.True(t, c.Check(elapsed, wall))
	for i := 1; i < 10; i++ {
		assert.False(t, c.Check(elapsed, wall.Add(time.Duration(i)*time.Second)))
	}
}

func TestChime_EveryQuarterOverAnHour(t *testing.T) {
	n := &countingNotifier{}
	c := NewChime(n)

	fired := tickFrom(c, 0, int((61 * time.Minute).Seconds()))

	// :15, :30, :45 and 1:00; the 00:00 minute right after start never chimes
	assert.Equal(t, 4, fired)
}

func TestChime_IgnoresShortRuns(t *testing.T) {
	c := NewChime(nil)
	assert.False(t, c.Check(5*time.Second, time.Now()))
}

func TestChime_ResetAllowsNewLog(t *testing.T) {
	c := NewChime(nil)
	now := time.Now()
	assert.True(t, c.Check(15*time.Minute, now))

	c.Reset()

	assert.True(t, c.Check(15*time.Minute, now.Add(20*time.Second)))
}

func TestBellNotifier(t *testing.T) {
	var buf bytes.Buffer
	BellNotifier{W: &buf}.Chime(time.Minute)
	assert.Equal(t, "\a", buf.String())
}

func TestNotifierFunc(t *testing.T) {
	var got time.Duration
	NotifierFunc(func(d time.Duration) { got = d }).Chime(3 * time.Second)
	assert.Equal(t, 3*time.Second, got)
}
