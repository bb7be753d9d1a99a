package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseHistoryPriceRecord records the daily rate actually incurred over a
// closed date window. Every completed variable-expense spec appends one,
// init specs included, so estimation always reads observed spend.
type ExpenseHistoryPriceRecord struct {
	Start     time.Time
	End       time.Time
	DailyRate decimal.Decimal
}

// overlapDays returns the number of days r shares with [start, end].
func (r ExpenseHistoryPriceRecord) overlapDays(start, end time.Time) int64 {
	lo := r.Start
	if start.After(lo) {
		lo = start
	}
	hi := r.End
	if end.Before(hi) {
		hi = end
	}
	if hi.Before(lo) {
		return 0
	}
	return int64(hi.Sub(lo).Hours()/24) + 1
}

// ExpenseHistory accumulates the price records observed for one expense
// account across the fold, plus the date its VariableExpenseInit ran.
type ExpenseHistory struct {
	InitDate     *time.Time
	PriceRecords []ExpenseHistoryPriceRecord
}

// Init marks the history as initialized as of the given date. Returns
// VariableExpenseDoubleInitError if already initialized.
func (h *ExpenseHistory) Init(account Account, at time.Time) error {
	if h.InitDate != nil {
		return &VariableExpenseDoubleInitError{Account: account, InitDate: *h.InitDate}
	}
	h.InitDate = &at
	return nil
}

// Record appends an observed price record for a closed accrual window.
func (h *ExpenseHistory) Record(start, end time.Time, dailyRate decimal.Decimal) {
	h.PriceRecords = append(h.PriceRecords, ExpenseHistoryPriceRecord{Start: start, End: end, DailyRate: dailyRate})
}

// DailyAverageOverWindow computes the effective daily accrual rate over
// [windowStart, windowEnd] by summing the contributions of all overlapping
// price records, weighted by overlap days. Days not covered by any record
// count as zero. Returns VariableExpenseNotEnoughHistoricalDataError when
// the overlapping records sum to zero (no overlap, or only zero rates).
func (h *ExpenseHistory) DailyAverageOverWindow(account Account, windowStart, windowEnd time.Time) (decimal.Decimal, error) {
	totalDays := int64(windowEnd.Sub(windowStart).Hours()/24) + 1
	if totalDays <= 0 {
		return decimal.Zero, &InvalidArgumentsForAccountingLogicError{
			Logic:  LogicVariableExpense.String(),
			Reason: "window end precedes window start",
		}
	}

	totalAmount := decimal.Zero
	for _, rec := range h.PriceRecords {
		overlap := rec.overlapDays(windowStart, windowEnd)
		if overlap <= 0 {
			continue
		}
		totalAmount = totalAmount.Add(rec.DailyRate.Mul(decimal.NewFromInt(overlap)))
	}

	if totalAmount.IsZero() {
		return decimal.Zero, &VariableExpenseNotEnoughHistoricalDataError{
			Account:     account,
			WindowStart: windowStart,
			WindowEnd:   windowEnd,
		}
	}

	return totalAmount.Div(decimal.NewFromInt(totalDays)), nil
}
