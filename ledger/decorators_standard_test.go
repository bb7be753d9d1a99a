package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"
)

func baseSpec(amount string) DecoratedTransactionSpec {
	return DecoratedTransactionSpec{
		TransactionSpec: TransactionSpec{
			ID:             1,
			AccrualStart:   mustDate("2024-06-01"),
			PaymentDate:    mustDate("2024-06-01"),
			Amount:         mustDec(amount),
			Commodity:      NewCommodity("USD"),
			BackingAccount: BackingAccount{Cash: checking()},
		},
	}
}

func TestPaymentFeeDecorator_AppendsFeeTransaction(t *testing.T) {
	d := PaymentFeeDecorator{Fee: mustDec("2.50")}
	spec, err := d.Apply(context.Background(), baseSpec("-100.00"))
	assert.NoError(t, err)
	assert.Equal(t, 1, len(spec.ExtTransactions))

	txn := spec.ExtTransactions[0]
	assertBalanced(t, []Transaction{txn})
	for _, p := range txn.Postings {
		if p.Account.Name == "PaymentFees" {
			assert.True(t, p.Amount.Equal(mustDec("2.50")))
		}
		if p.Account.Name == "Checking" {
			assert.True(t, p.Amount.Equal(mustDec("-2.50")))
		}
	}
}

func TestVatKoreaAwaitingInvoice_SplitsCoreAndVat(t *testing.T) {
	d := VatKoreaAwaitingInvoice()
	spec, err := d.Apply(context.Background(), baseSpec("-110.00"))
	assert.NoError(t, err)
	assert.Equal(t, 1, len(spec.ExtTransactions))
	assertBalanced(t, spec.ExtTransactions)

	// core = -110 / 1.1 = -100; vat = -110 - (-100) = -10
	assert.True(t, spec.Amount.Equal(mustDec("-100")), "got %s", spec.Amount)
	assert.Equal(t, 1, len(spec.Annotations))
}

func TestVatKoreaRecoverable_AddsInvoiceClearingTransaction(t *testing.T) {
	invoiceDate := mustDate("2024-07-15")
	d := VatKoreaRecoverable(invoiceDate)
	spec, err := d.Apply(context.Background(), baseSpec("-110.00"))
	assert.NoError(t, err)
	assert.Equal(t, 2, len(spec.ExtTransactions))
	assertBalanced(t, spec.ExtTransactions)

	clearing := spec.ExtTransactions[1]
	assert.True(t, clearing.Date.Equal(invoiceDate))
	var sawPayable bool
	for _, p := range clearing.Postings {
		if p.Account.Name == "VatPayable" {
			sawPayable = true
		}
	}
	// amountVat is negative (expense), so the clearing target is VatPayable.
	assert.True(t, sawPayable)
}

func TestVatKoreaRecoverable_PositiveAmountTargetsReceivable(t *testing.T) {
	invoiceDate := mustDate("2024-07-15")
	d := VatKoreaRecoverable(invoiceDate)
	spec, err := d.Apply(context.Background(), baseSpec("110.00"))
	assert.NoError(t, err)
	clearing := spec.ExtTransactions[1]
	var sawReceivable bool
	for _, p := range clearing.Postings {
		if p.Account.Name == "VatReceivable" {
			sawReceivable = true
		}
	}
	assert.True(t, sawReceivable)
}

func TestVatKoreaUnrecoverable_LeavesAmountUnchanged(t *testing.T) {
	d := VatKoreaUnrecoverable()
	spec, err := d.Apply(context.Background(), baseSpec("-110.00"))
	assert.NoError(t, err)
	assert.True(t, spec.Amount.Equal(mustDec("-110.00")))
	assert.Equal(t, 0, len(spec.ExtTransactions))
	assert.Equal(t, 1, len(spec.Annotations))
}

func TestVatKoreaReverseChargeExempt_LeavesAmountUnchanged(t *testing.T) {
	d := VatKoreaReverseChargeExempt()
	spec, err := d.Apply(context.Background(), baseSpec("-110.00"))
	assert.NoError(t, err)
	assert.True(t, spec.Amount.Equal(mustDec("-110.00")))
	assert.Equal(t, 0, len(spec.ExtTransactions))
}

// stubRateSource is a minimal RateSource stub so decorator tests don't need
// a full rates.Graph: it applies a single fixed multiplier regardless of
// date or currency pair, which is all these unit tests need to exercise.
type stubRateSource struct {
	rate decimal.Decimal
}

func (f *stubRateSource) Convert(_ context.Context, _ time.Time, fromCurrency, toCurrency string, amount decimal.Decimal) (decimal.Decimal, error) {
	return amount.Mul(f.rate), nil
}

func TestCardFxByFeeDecorator_ConvertsAndBooksFeeAboveThreshold(t *testing.T) {
	eur := NewCommodity("EUR")
	rates := &stubRateSource{rate: mustDec("1.10")}
	d := CardFxByFeeDecorator{FeePercent: mustDec("3"), MainCommodity: eur, Rates: rates}

	spec := baseSpec("-100.00")
	decorated, err := d.Apply(context.Background(), spec)
	assert.NoError(t, err)

	// converted = -100 * 1.10 = -110; fee = 110 * 3% = 3.30
	assert.True(t, decorated.Amount.Equal(mustDec("-110.00")), "got %s", decorated.Amount)
	assert.Equal(t, 1, len(decorated.ExtTransactions))
	assertBalanced(t, decorated.ExtTransactions)

	for _, p := range decorated.ExtTransactions[0].Postings {
		if p.Account.Name == "ForeignTransactionFee" {
			assert.True(t, p.Amount.Equal(mustDec("3.30")), "got %s", p.Amount)
		}
	}
}

func TestCardFxByFeeDecorator_SkipsFeeBelowThreshold(t *testing.T) {
	eur := NewCommodity("EUR")
	rates := &stubRateSource{rate: mustDec("1.10")}
	d := CardFxByFeeDecorator{FeePercent: mustDec("0"), MainCommodity: eur, Rates: rates}

	decorated, err := d.Apply(context.Background(), baseSpec("-100.00"))
	assert.NoError(t, err)
	assert.Equal(t, 0, len(decorated.ExtTransactions))
}

func TestCardFxBySettleDecorator_ConvertsAtSettleDateRate(t *testing.T) {
	eur := NewCommodity("EUR")
	rates := &stubRateSource{rate: mustDec("0.90")}
	d := CardFxBySettleDecorator{ToCurrency: "EUR", SettleDate: mustDate("2024-06-05"), MainCommodity: eur, Rates: rates}

	decorated, err := d.Apply(context.Background(), baseSpec("-100.00"))
	assert.NoError(t, err)
	assert.True(t, decorated.Amount.Equal(mustDec("-90.00")), "got %s", decorated.Amount)
	assert.Equal(t, 0, len(decorated.ExtTransactions))
	assert.Equal(t, 1, len(decorated.Annotations))
}

func TestWithholdingTaxDecorator_GrossesUpAndBooksWithheldAmount(t *testing.T) {
	d := WithholdingTaxDecorator{Percent: mustDec("10")}
	decorated, err := d.Apply(context.Background(), baseSpec("-90.00"))
	assert.NoError(t, err)

	// pre = -90 / (1 - 0.10) = -100; withheld = -100 - (-90) = -10
	assert.True(t, decorated.Amount.Equal(mustDec("-100")), "got %s", decorated.Amount)
	assertBalanced(t, decorated.ExtTransactions)
	assert.Equal(t, 1, len(decorated.Annotations))
}

func TestWithholdingTaxDecorator_HundredPercentFails(t *testing.T) {
	d := WithholdingTaxDecorator{Percent: mustDec("100")}
	_, err := d.Apply(context.Background(), baseSpec("-90.00"))
	assert.Error(t, err)
	var divByZero *DivisionByZeroError
	assert.True(t, errors.As(err, &divByZero))
}
