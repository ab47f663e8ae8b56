package tracking

import (
	"io"
	"time"
)

const (
	quarterHour = 15 * time.Minute

	// DefaultDebounce is the minimum gap between two chimes
	DefaultDebounce = 10 * time.Second
	// DefaultMinElapsed keeps a freshly started log from chiming at 00:00
	DefaultMinElapsed = 10 * time.Second
)

// Notifier is told when a running log crosses a quarter hour
type Notifier interface {
	Chime(elapsed time.Duration)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(elapsed time.Duration)

func (f NotifierFunc) Chime(elapsed time.Duration) { f(elapsed) }

// BellNotifier rings the terminal bell
type BellNotifier struct {
	W io.Writer
}

func (b BellNotifier) Chime(time.Duration) {
	_, _ = io.WriteString(b.W, "\a")
}

// Chime fires its notifier once per quarter-hour boundary of a running log.
// It is driven by a periodic tick and is not safe for concurrent use.
type Chime struct {
	notifier   Notifier
	debounce   time.Duration
	minElapsed time.Duration

	lastFired   time.Time
	lastQuarter int64
}

// NewChime returns a chime with the default debounce and minimum elapsed time
func NewChime(n Notifier) *Chime {
	return &Chime{
		notifier:   n,
		debounce:   DefaultDebounce,
		minElapsed: DefaultMinElapsed,
	}
}

// Check is called on every tick with the log's elapsed time. It fires when
// the HH:MM clock shows :00, :15, :30 or :45, the log has run for at least
// minElapsed, this quarter has not fired yet and the last firing is at least
// debounce old.
func (c *Chime) Check(elapsed time.Duration, now time.Time) bool {
	if elapsed < c.minElapsed {
		return false
	}
	if !onQuarter(FormatElapsed(elapsed)) {
		return false
	}
	quarter := int64(elapsed / quarterHour)
	if quarter == c.lastQuarter {
		return false
	}
	if !c.lastFired.IsZero() && now.Sub(c.lastFired) < c.debounce {
		return false
	}

	c.lastFired = now
	c.lastQuarter = quarter
	if c.notifier != nil {
		c.notifier.Chime(elapsed)
	}
	return true
}

// Reset forgets previous firings, for when a new log starts
func (c *Chime) Reset() {
	c.lastFired = time.Time{}
	c.lastQuarter = 0
}

func onQuarter(hhmm string) bool {
	switch hhmm[len(hhmm)-2:] {
	case "00", "15", "30", "45":
		return true
	}
	return false
}
