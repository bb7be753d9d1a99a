package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// monthEndsBetween returns the last calendar day of every month, in
// ascending order, that falls inside [start, end]. A window touching no
// month end yields nil.
func monthEndsBetween(start, end time.Time) []time.Time {
	var ends []time.Time
	cursor := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, start.Location())
	for !cursor.After(end) {
		next := cursor.AddDate(0, 1, 0)
		lastDay := next.AddDate(0, 0, -1)
		if !lastDay.Before(start) && !lastDay.After(end) {
			ends = append(ends, lastDay)
		}
		cursor = next
	}
	return ends
}

// AccrualPeriod is one month-end slice of an accrual window, carrying the
// share of the total amount apportioned to it. End doubles as the date the
// adjustment is recorded on: accrual adjustments always land on the last
// day of their month.
type AccrualPeriod struct {
	Start  time.Time
	End    time.Time
	Amount decimal.Decimal
}

// SplitByMonth divides total across the calendar month ends inside
// [start, end], weighting each period by its day count at a daily rate of
// total / window days. Each period's amount is rounded to the currency's
// decimal places; the final period takes total minus the running sum
// instead, so the amounts always sum to total exactly regardless of
// rounding. A window containing no month end returns nil.
func SplitByMonth(start, end time.Time, total decimal.Decimal, currency Currency) []AccrualPeriod {
	ends := monthEndsBetween(start, end)
	if len(ends) == 0 {
		return nil
	}

	totalDays := decimal.NewFromInt(int64(end.Sub(start).Hours()/24) + 1)
	dailyRate := total.Div(totalDays)

	periods := make([]AccrualPeriod, 0, len(ends))
	running := decimal.Zero
	for i, monthEnd := range ends {
		periodStart := time.Date(monthEnd.Year(), monthEnd.Month(), 1, 0, 0, 0, 0, monthEnd.Location())
		if periodStart.Before(start) {
			periodStart = start
		}

		var amount decimal.Decimal
		if i == len(ends)-1 {
			// Assign the final period directly so the sum is exact.
			amount = total.Sub(running)
		} else {
			days := int64(monthEnd.Sub(periodStart).Hours()/24) + 1
			amount = RoundAt(dailyRate.Mul(decimal.NewFromInt(days)), currency)
			running = running.Add(amount)
		}

		periods = append(periods, AccrualPeriod{Start: periodStart, End: monthEnd, Amount: amount})
	}

	return periods
}
