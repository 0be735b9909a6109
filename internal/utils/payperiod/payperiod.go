// Package payperiod computes biweekly pay-period windows and aggregates
// worked-hours summaries over time entries. All functions are pure; callers
// supply the entries snapshot and the anchor date.
package payperiod

import (
	"math"
	"time"

	"github.com/CareTrackHQ/caretrack_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DefaultAnchor is the epoch Sunday that period boundaries are anchored to
// when the deployment does not configure its own pay cycle start.
var DefaultAnchor = time.Date(2024, time.January, 7, 0, 0, 0, 0, time.UTC)

const periodDays = 14

// dateFormat is the inclusive date-string format used in summaries.
const dateFormat = "2006-01-02"

// Window returns the 14-day pay period containing reference, shifted by
// offset whole periods (negative offsets step into the past). Start is the
// period's first day at 00:00:00 UTC; End is Start + 13 days, the last
// included day at 00:00:00 UTC. Boundaries are stable for a fixed anchor
// regardless of when the function is called.
func Window(offset int, reference time.Time, anchor time.Time) (start, end time.Time) {
	refDate := toUTCDate(reference)
	anchorDate := toUTCDate(anchor)

	daysSince := int(refDate.Sub(anchorDate).Hours() / 24)
	period := floorDiv(daysSince, periodDays)

	start = anchorDate.AddDate(0, 0, (period+offset)*periodDays)
	end = start.AddDate(0, 0, periodDays-1)
	return start, end
}

// CurrentWindow is Window with offset relative to now.
func CurrentWindow(offset int, anchor time.Time) (time.Time, time.Time) {
	return Window(offset, time.Now().UTC(), anchor)
}

// Summarize aggregates the entries whose clock-in falls inside
// [periodStart, periodEnd] (inclusive dates) and whose clock-out is set.
// Active entries and entries outside the window are excluded entirely. The
// result is independent of the input ordering.
func Summarize(entries []domain.TimeEntry, periodStart, periodEnd time.Time) domain.PayPeriodSummary {
	windowEnd := toUTCDate(periodEnd).AddDate(0, 0, 1) // exclusive upper bound
	windowStart := toUTCDate(periodStart)

	totalMinutes := int64(0)
	days := make(map[string]struct{})
	count := 0

	for _, e := range entries {
		if e.ClockOut == nil {
			continue
		}
		clockIn := e.ClockIn.UTC()
		if clockIn.Before(windowStart) || !clockIn.Before(windowEnd) {
			continue
		}
		if e.DurationMinutes != nil {
			totalMinutes += int64(*e.DurationMinutes)
		}
		days[clockIn.Format(dateFormat)] = struct{}{}
		count++
	}

	return domain.PayPeriodSummary{
		TotalHours:   decimal.NewFromInt(totalMinutes).Div(decimal.NewFromInt(60)),
		DaysWorked:   len(days),
		EntriesCount: count,
		PeriodStart:  windowStart.Format(dateFormat),
		PeriodEnd:    toUTCDate(periodEnd).Format(dateFormat),
	}
}

// DurationMinutes derives the stored whole-minute duration of a closed entry.
func DurationMinutes(clockIn, clockOut time.Time) int {
	return int(math.Round(clockOut.Sub(clockIn).Minutes()))
}

// ElapsedMinutes reports whole minutes elapsed since clock-in. Display-only;
// the authoritative duration is derived and stored at clock-out.
func ElapsedMinutes(clockIn, now time.Time) int {
	m := int(now.Sub(clockIn).Minutes())
	if m < 0 {
		return 0
	}
	return m
}

func toUTCDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
