// Package pricing turns tracked time and rate configuration into money.
//
// Two rounding rules live side by side here and must not be unified:
// hourly amounts round half away from zero to the cent, while the print job
// cost layers always round up to the next cent.
package pricing

import (
	"errors"
	"math"
	"time"

	"github.com/andy/workbench/internal/domain"
)

// ErrTierMismatch is returned when hour groups and rates are not paired one to one
var ErrTierMismatch = errors.New("hour groups and rates must have the same length")

// TotalDuration sums end - start over finished logs. Open logs, logs whose
// end time is the Unix epoch and logs that end before they start are skipped.
func TotalDuration(logs []*domain.TimeLog) time.Duration {
	var total time.Duration
	for _, l := range logs {
		if l == nil || l.EndTime == nil {
			continue
		}
		if l.EndTime.Unix() == 0 {
			continue
		}
		if !l.EndTime.After(l.StartTime) {
			continue
		}
		total += l.EndTime.Sub(l.StartTime)
	}
	return total
}

// TotalHours returns the finished hours, floored to a whole hour
func TotalHours(logs []*domain.TimeLog) int {
	return int(TotalDuration(logs) / time.Hour)
}

// ExactHours returns the finished hours as a real number
func ExactHours(logs []*domain.TimeLog) float64 {
	return float64(TotalDuration(logs)) / float64(time.Hour)
}

// Amount multiplies hours by an hourly rate, rounded to the cent
func Amount(hours, rate float64) float64 {
	return roundCents(hours * rate)
}

// AmountForLogs prices the exact finished hours of the logs. A nil rate bills nothing.
func AmountForLogs(logs []*domain.TimeLog, rate *float64) float64 {
	return Amount(ExactHours(logs), RateOrZero(rate))
}

// RateOrZero dereferences an optional rate
func RateOrZero(rate *float64) float64 {
	if rate == nil {
		return 0
	}
	return *rate
}

// AmountAcrossTiers prices each hour group at the rate with the same index and
// returns the rounded sum.
func AmountAcrossTiers(hourGroups, rates []float64) (float64, error) {
	if len(hourGroups) != len(rates) {
		return 0, ErrTierMismatch
	}
	var sum float64
	for i := range hourGroups {
		sum += Amount(hourGroups[i], rates[i])
	}
	return roundCents(sum), nil
}

// roundCents rounds half away from zero
func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// ceilCents rounds up to the next cent. The scaled value is snapped to a
// millionth of a cent first so 1230.0000000000002 stays 12.30.
func ceilCents(v float64) float64 {
	scaled := v * 100
	snapped := math.Round(scaled*1e6) / 1e6
	return math.Ceil(snapped) / 100
}
