package ledger

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestExpenseHistory_InitOnceOnly(t *testing.T) {
	h := &ExpenseHistory{}
	account := Expense("Utilities", GeneralAdministrativeExpenses)

	err := h.Init(account, mustDate("2024-01-01"))
	assert.NoError(t, err)

	err = h.Init(account, mustDate("2024-02-01"))
	assert.Error(t, err)
	var doubleInit *VariableExpenseDoubleInitError
	assert.True(t, errors.As(err, &doubleInit))
}

func TestExpenseHistory_DailyAverageOverWindow_FullOverlap(t *testing.T) {
	h := &ExpenseHistory{}
	account := Expense("Utilities", GeneralAdministrativeExpenses)
	h.Record(mustDate("2024-01-01"), mustDate("2024-01-31"), mustDec("9.677419"))

	rate, err := h.DailyAverageOverWindow(account, mustDate("2024-01-01"), mustDate("2024-01-31"))
	assert.NoError(t, err)
	assert.True(t, rate.Sub(mustDec("9.677419")).Abs().LessThan(mustDec("0.0001")), "got %s", rate)
}

func TestExpenseHistory_DailyAverageOverWindow_UncoveredDaysCountAsZero(t *testing.T) {
	h := &ExpenseHistory{}
	account := Expense("Utilities", GeneralAdministrativeExpenses)
	// Only the first 10 days of a 20-day window have an observed record;
	// the remaining 10 contribute nothing.
	h.Record(mustDate("2024-01-01"), mustDate("2024-01-10"), mustDec("20.00"))

	rate, err := h.DailyAverageOverWindow(account, mustDate("2024-01-01"), mustDate("2024-01-20"))
	assert.NoError(t, err)
	// (10 * 20) / 20 = 10
	assert.True(t, rate.Equal(mustDec("10")), "got %s", rate)
}

func TestExpenseHistory_DailyAverageOverWindow_WeightsRecordsByOverlap(t *testing.T) {
	h := &ExpenseHistory{}
	account := Expense("Utilities", GeneralAdministrativeExpenses)
	h.Record(mustDate("2024-01-01"), mustDate("2024-01-10"), mustDec("10.00"))
	h.Record(mustDate("2024-01-11"), mustDate("2024-01-31"), mustDec("20.00"))

	rate, err := h.DailyAverageOverWindow(account, mustDate("2024-01-06"), mustDate("2024-01-15"))
	assert.NoError(t, err)
	// 5 days at 10 + 5 days at 20 over a 10-day window = 15.
	assert.True(t, rate.Equal(mustDec("15")), "got %s", rate)
}

func TestExpenseHistory_DailyAverageOverWindow_NoOverlapFails(t *testing.T) {
	h := &ExpenseHistory{}
	account := Expense("Utilities", GeneralAdministrativeExpenses)
	h.Record(mustDate("2024-06-01"), mustDate("2024-06-30"), mustDec("5.00"))

	_, err := h.DailyAverageOverWindow(account, mustDate("2024-01-01"), mustDate("2024-01-31"))
	assert.Error(t, err)
	var notEnough *VariableExpenseNotEnoughHistoricalDataError
	assert.True(t, errors.As(err, &notEnough))
}
