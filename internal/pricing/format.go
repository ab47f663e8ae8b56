package pricing

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// moneyFormat groups thousands with a dot and uses a decimal comma
const moneyFormat = "#.###,##"

// DefaultCurrency is prefixed by FormatCurrency
const DefaultCurrency = "€"

// FormatMoney formats an amount with exactly two decimals, e.g. 1234.5 -> "1.234,50"
func FormatMoney(amount float64) string {
	return humanize.FormatFloat(moneyFormat, amount)
}

// FormatCurrency formats an amount for display, e.g. "€1.234,56"
func FormatCurrency(amount float64) string {
	return FormatCurrencyWith(DefaultCurrency, amount)
}

// FormatCurrencyWith formats an amount with the given currency symbol
func FormatCurrencyWith(symbol string, amount float64) string {
	if amount < 0 {
		return "-" + symbol + FormatMoney(-amount)
	}
	return symbol + FormatMoney(amount)
}

// FormatDurationHuman renders "8h 30m", or "1d 6h (15m) (30,25h)" from 24 hours on
func FormatDurationHuman(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := int(d / time.Hour)
	minutes := int(d/time.Minute) % 60
	if hours >= 24 {
		return fmt.Sprintf("%dd %dh (%dm) (%sh)",
			hours/24,
			hours%24,
			minutes,
			FormatMoney(d.Hours()),
		)
	}
	return fmt.Sprintf("%dh %dm", hours, minutes)
}
