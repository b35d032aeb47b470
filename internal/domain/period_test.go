package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCurrentPeriod_Monthly(t *testing.T) {
	tests := []struct {
		name      string
		anchor    time.Time
		now       time.Time
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			"mid-month anchor, later same month",
			date(2025, time.March, 15),
			date(2025, time.March, 20),
			date(2025, time.March, 15),
			date(2025, time.April, 15),
		},
		{
			"now before anchor day rolls back a month",
			date(2025, time.March, 15),
			date(2025, time.June, 10),
			date(2025, time.May, 15),
			date(2025, time.June, 15),
		},
		{
			"now exactly on a renewal boundary starts a new window",
			date(2025, time.March, 15),
			date(2025, time.June, 15),
			date(2025, time.June, 15),
			date(2025, time.July, 15),
		},
		{
			"31st anchor clamps to end of February",
			date(2025, time.January, 31),
			date(2025, time.February, 10),
			date(2025, time.January, 31),
			date(2025, time.February, 28),
		},
		{
			"31st anchor window starting in February",
			date(2025, time.January, 31),
			date(2025, time.March, 10),
			date(2025, time.February, 28),
			date(2025, time.March, 31),
		},
		{
			"31st anchor in leap year February",
			date(2024, time.January, 31),
			date(2024, time.March, 10),
			date(2024, time.February, 29),
			date(2024, time.March, 31),
		},
		{
			"year boundary",
			date(2024, time.December, 20),
			date(2025, time.January, 5),
			date(2024, time.December, 20),
			date(2025, time.January, 20),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := CurrentPeriod(tt.anchor, BillingMonthly, tt.now)

			assert.Equal(t, tt.wantStart, w.Start)
			assert.Equal(t, tt.wantEnd, w.End)
			// Monthly renewal is the end of the current window.
			assert.Equal(t, tt.wantEnd, w.NextRenewal)

			// The window must contain now.
			assert.False(t, w.Start.After(tt.now), "start %v after now %v", w.Start, tt.now)
			assert.True(t, w.End.After(tt.now), "end %v not after now %v", w.End, tt.now)
		})
	}
}

func TestCurrentPeriod_YearlyStillRollsMonthly(t *testing.T) {
	anchor := date(2024, time.May, 10)
	now := date(2025, time.August, 1)

	w := CurrentPeriod(anchor, BillingYearly, now)

	// Usage windows are monthly even on yearly billing.
	assert.Equal(t, date(2025, time.July, 10), w.Start)
	assert.Equal(t, date(2025, time.August, 10), w.End)

	// The renewal shown to the user is the subscription anniversary.
	assert.Equal(t, date(2026, time.May, 10), w.NextRenewal)
}

func TestCurrentPeriod_YearlyRenewalAfterNow(t *testing.T) {
	anchor := date(2024, time.May, 10)
	now := date(2025, time.May, 20)

	w := CurrentPeriod(anchor, BillingYearly, now)

	assert.True(t, w.NextRenewal.After(now))
	assert.Equal(t, date(2026, time.May, 10), w.NextRenewal)
}

func TestAddMonthsClamped(t *testing.T) {
	tests := []struct {
		name string
		from time.Time
		n    int
		want time.Time
	}{
		{"plain month", date(2025, time.March, 15), 1, date(2025, time.April, 15)},
		{"jan 31 clamps to feb 28", date(2025, time.January, 31), 1, date(2025, time.February, 28)},
		{"jan 31 leap year", date(2024, time.January, 31), 1, date(2024, time.February, 29)},
		{"jan 31 to march keeps day", date(2025, time.January, 31), 2, date(2025, time.March, 31)},
		{"year rollover", date(2025, time.November, 30), 3, date(2026, time.February, 28)},
		{"negative step", date(2025, time.March, 31), -1, date(2025, time.February, 28)},
		{"zero", date(2025, time.March, 31), 0, date(2025, time.March, 31)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, addMonthsClamped(tt.from, tt.n))
		})
	}
}

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 28, daysInMonth(2025, time.February))
	assert.Equal(t, 29, daysInMonth(2024, time.February))
	assert.Equal(t, 31, daysInMonth(2025, time.December))
	assert.Equal(t, 30, daysInMonth(2025, time.April))
}
