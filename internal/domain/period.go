// Package domain contains core business types and interfaces.
//
// This file implements the renewal clock: pure functions computing the
// billing window containing a point in time and the next renewal date.
// Windows roll monthly from the subscription anchor regardless of the
// billing period; yearly plans only differ in how the allotment is
// normalized (see SubscriptionPlan.MonthlyAllotment) and in the renewal
// date shown to the user.
package domain

import "time"

// PeriodWindow describes the billing window containing a reference time.
type PeriodWindow struct {
	Start       time.Time
	End         time.Time
	NextRenewal time.Time
}

// CurrentPeriod computes the window containing now for a subscription
// anchored at anchor. The window starts on the anchor's day-of-month,
// clamped to the last day of months too short to contain it (an anchor
// on the 31st starts the February window on the 28th or 29th).
//
// For yearly billing the usage window still rolls monthly; only
// NextRenewal differs, pointing at the next subscription anniversary.
func CurrentPeriod(anchor time.Time, period BillingPeriod, now time.Time) PeriodWindow {
	months := (now.Year()-anchor.Year())*12 + int(now.Month()) - int(anchor.Month())
	start := addMonthsClamped(anchor, months)
	if start.After(now) {
		months--
		start = addMonthsClamped(anchor, months)
	}
	end := addMonthsClamped(anchor, months+1)

	next := end
	if period == BillingYearly {
		years := months / 12
		next = addMonthsClamped(anchor, (years+1)*12)
		if !next.After(now) {
			next = addMonthsClamped(anchor, (years+2)*12)
		}
	}

	return PeriodWindow{Start: start, End: end, NextRenewal: next}
}

// addMonthsClamped shifts t forward by n months, keeping the anchor
// day-of-month where it exists and clamping to the month's last day
// where it does not. time.AddDate is unsuitable here because it
// normalizes Jan 31 + 1 month to Mar 2/3 instead of Feb 28/29.
func addMonthsClamped(t time.Time, n int) time.Time {
	year := t.Year()
	month := int(t.Month()) + n
	// Normalize month into [1, 12].
	year += (month - 1) / 12
	month = (month-1)%12 + 1
	if month < 1 {
		month += 12
		year--
	}

	day := t.Day()
	if last := daysInMonth(year, time.Month(month)); day > last {
		day = last
	}

	return time.Date(year, time.Month(month), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// daysInMonth returns the number of days in the given month.
func daysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
