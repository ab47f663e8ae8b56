package pricing

import (
	"testing"
	"time"

	"github.com/andy/workbench/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func closedLog(start, end time.Time) *domain.TimeLog {
	l := domain.NewTimeLog(domain.ProjectSubject(1), 1, start)
	l.EndTime = &end
	return l
}

func openLog(start time.Time) *domain.TimeLog {
	return domain.NewTimeLog(domain.ProjectSubject(1), 1, start)
}

func TestTotalDuration_SkipsUnfinishedLogs(t *testing.T) {
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	epoch := time.Unix(0, 0)

	logs := []*domain.TimeLog{
		closedLog(base, base.Add(2*time.Hour)),
		openLog(base.Add(3 * time.Hour)),
		closedLog(base, epoch),
		closedLog(base, base.Add(-time.Minute)),
		nil,
		closedLog(base.Add(4*time.Hour), base.Add(4*time.Hour+30*time.Minute)),
	}

	assert.Equal(t, 2*time.Hour+30*time.Minute, TotalDuration(logs))
}

func TestTotalDuration_OnlyOpenLogs(t *testing.T) {
	now := time.Now()
	logs := []*domain.TimeLog{openLog(now.Add(-time.Hour)), openLog(now.Add(-2 * time.Hour))}
	assert.Zero(t, TotalDuration(logs))
	assert.Zero(t, TotalHours(logs))
}

func TestHours_WorkingDay(t *testing.T) {
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local)
	end := time.Date(2024, 1, 1, 17, 30, 0, 0, time.Local)
	logs := []*domain.TimeLog{closedLog(start, end)}

	assert.Equal(t, 8.5, ExactHours(logs))
	assert.Equal(t, 8, TotalHours(logs))
	assert.Equal(t, "8h 30m", FormatDurationHuman(TotalDuration(logs)))
}

func TestAmount(t *testing.T) {
	tests := []struct {
		name  string
		hours float64
		rate  float64
		want  float64
	}{
		{"whole hours", 10, 5.0, 50},
		{"zero rate bills nothing", 10, 0, 0},
		{"half cent rounds up", 1, 0.125, 0.13},
		{"below half rounds down", 1, 0.124, 0.12},
		{"negative half rounds away from zero", 1, -0.125, -0.13},
		{"fractional hours", 1.5, 40, 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Amount(tt.hours, tt.rate), 1e-9)
		})
	}
}

func TestAmountForLogs(t *testing.T) {
	base := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)
	logs := []*domain.TimeLog{
		closedLog(base, base.Add(90*time.Minute)),
		openLog(base.Add(5 * time.Hour)),
	}

	rate := 40.0
	assert.InDelta(t, 60.0, AmountForLogs(logs, &rate), 1e-9)
	assert.Zero(t, AmountForLogs(logs, nil))
}

func TestAmountAcrossTiers(t *testing.T) {
	got, err := AmountAcrossTiers([]float64{10, 5}, []float64{20, 10})
	require.NoError(t, err)
	assert.InDelta(t, 250.0, got, 1e-9)

	got, err = AmountAcrossTiers(nil, nil)
	require.NoError(t, err)
	assert.Zero(t, got)
}

func TestAmountAcrossTiers_Mismatch(t *testing.T) {
	_, err := AmountAcrossTiers([]float64{10, 5, 1}, []float64{20, 10})
	assert.ErrorIs(t, err, ErrTierMismatch)
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "1.234,50", FormatMoney(1234.5))
	assert.Equal(t, "0,00", FormatMoney(0))
	assert.Equal(t, "1.234.567,89", FormatMoney(1234567.89))
	assert.Equal(t, "50,00", FormatMoney(Amount(10, 5)))
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "€1.234,56", FormatCurrency(1234.56))
	assert.Equal(t, "-€5,00", FormatCurrency(-5))
	assert.Equal(t, "$12,00", FormatCurrencyWith("$", 12))
}

func TestFormatDurationHuman(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0h 0m"},
		{45 * time.Minute, "0h 45m"},
		{23*time.Hour + 59*time.Minute, "23h 59m"},
		{24 * time.Hour, "1d 0h (0m) (24,00h)"},
		{30*time.Hour + 15*time.Minute, "1d 6h (15m) (30,25h)"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDurationHuman(tt.in))
		})
	}
}
