package ledger

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"
)

func TestSplitByMonth_ExactSumAcrossFullYear(t *testing.T) {
	periods := SplitByMonth(mustDate("2024-01-01"), mustDate("2024-12-31"), mustDec("1200.00"), usd)
	assert.Equal(t, 12, len(periods))

	sum := decimal.Zero
	for _, p := range periods {
		sum = sum.Add(p.Amount)
	}
	assert.True(t, sum.Equal(mustDec("1200.00")), "sum %s should equal 1200.00", sum)

	// Day-weighted: a 31-day month of a 366-day year carries 1200*31/366.
	assert.True(t, periods[0].Amount.Equal(mustDec("101.64")), "got %s", periods[0].Amount)
	assert.True(t, periods[1].Amount.Equal(mustDec("95.08")), "got %s", periods[1].Amount)
	assert.True(t, periods[0].End.Equal(mustDate("2024-01-31")))
	assert.True(t, periods[11].End.Equal(mustDate("2024-12-31")))
}

func TestSplitByMonth_NoMonthEndReturnsEmpty(t *testing.T) {
	assert.Equal(t, 0, len(SplitByMonth(mustDate("2024-03-15"), mustDate("2024-03-15"), mustDec("50.00"), usd)))
	assert.Equal(t, 0, len(SplitByMonth(mustDate("2024-01-05"), mustDate("2024-01-20"), mustDec("50.00"), usd)))
}

func TestSplitByMonth_ThreeFullMonths(t *testing.T) {
	periods := SplitByMonth(mustDate("2024-01-01"), mustDate("2024-03-31"), mustDec("900.00"), usd)
	assert.Equal(t, 3, len(periods))

	// 91 accrual days at 900/91 per day, rounded per month, residual last.
	assert.True(t, periods[0].Amount.Equal(mustDec("306.59")), "got %s", periods[0].Amount)
	assert.True(t, periods[1].Amount.Equal(mustDec("286.81")), "got %s", periods[1].Amount)
	assert.True(t, periods[2].Amount.Equal(mustDec("306.60")), "got %s", periods[2].Amount)
	assert.True(t, periods[0].End.Equal(mustDate("2024-01-31")))
	assert.True(t, periods[1].End.Equal(mustDate("2024-02-29")))
	assert.True(t, periods[2].End.Equal(mustDate("2024-03-31")))
}

func TestSplitByMonth_TrailingPartialMonthFoldsIntoLastPeriod(t *testing.T) {
	// Mar 1-15 touch no month end inside the window, so their share lands
	// in the final (February) residual.
	periods := SplitByMonth(mustDate("2024-01-15"), mustDate("2024-03-15"), mustDec("900.00"), usd)
	assert.Equal(t, 2, len(periods))
	assert.True(t, periods[0].Start.Equal(mustDate("2024-01-15")))
	assert.True(t, periods[0].End.Equal(mustDate("2024-01-31")))
	assert.True(t, periods[0].Amount.Equal(mustDec("250.82")), "got %s", periods[0].Amount)
	assert.True(t, periods[1].End.Equal(mustDate("2024-02-29")))
	assert.True(t, periods[1].Amount.Equal(mustDec("649.18")), "got %s", periods[1].Amount)
}

func TestSplitByMonth_LastPeriodAbsorbsRoundingResidual(t *testing.T) {
	periods := SplitByMonth(mustDate("2024-01-01"), mustDate("2024-02-29"), mustDec("100.00"), usd)
	assert.Equal(t, 2, len(periods))
	assert.True(t, periods[0].Amount.Equal(mustDec("51.67")), "got %s", periods[0].Amount)
	assert.True(t, periods[1].Amount.Equal(mustDec("48.33")), "got %s", periods[1].Amount)
}

func TestSplitByMonth_JPYZeroExponent(t *testing.T) {
	jpy := LookupCurrency("JPY")
	periods := SplitByMonth(mustDate("2024-01-01"), mustDate("2024-03-31"), mustDec("1000"), jpy)
	sum := decimal.Zero
	for _, p := range periods {
		assert.True(t, p.Amount.Equal(p.Amount.Round(0)), "JPY amounts must be whole, got %s", p.Amount)
		sum = sum.Add(p.Amount)
	}
	assert.True(t, sum.Equal(mustDec("1000")), "sum %s should equal 1000 exactly", sum)
}
