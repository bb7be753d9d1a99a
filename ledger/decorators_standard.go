package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentFeeDecorator appends a transaction debiting the backing account
// and crediting the standard PaymentFees expense account by a fixed fee.
type PaymentFeeDecorator struct {
	Fee decimal.Decimal
}

func (d PaymentFeeDecorator) Apply(_ context.Context, spec DecoratedTransactionSpec) (DecoratedTransactionSpec, error) {
	currency := spec.Commodity.CurrencyValue()
	spec.ExtTransactions = append(spec.ExtTransactions, Transaction{
		SpecID: spec.ID,
		Date:   spec.PaymentDate,
		Postings: []TransactionPosting{
			NewPosting(spec.BackingAccount.Account(), d.Fee.Neg(), currency),
			NewPosting(PaymentFeesAccount, d.Fee, currency),
		},
		Comment: "Payment fee",
	})
	return spec, nil
}

// vatKoreaMode discriminates the four VAT Korea decorator behaviors.
type vatKoreaMode int

const (
	vatKoreaAwaitingInvoice vatKoreaMode = iota
	vatKoreaRecoverable
	vatKoreaUnrecoverable
	vatKoreaReverseChargeExempt
)

// VatKoreaDecorator implements the four Korean-VAT decorator variants.
// Construct via the VatKorea* helpers below.
type VatKoreaDecorator struct {
	mode        vatKoreaMode
	invoiceDate time.Time
}

// VatKoreaAwaitingInvoice splits the spec amount into core/VAT and defers
// the VAT into a pending-receipt liability.
func VatKoreaAwaitingInvoice() VatKoreaDecorator {
	return VatKoreaDecorator{mode: vatKoreaAwaitingInvoice}
}

// VatKoreaRecoverable is VatKoreaAwaitingInvoice plus a second transaction
// at invoiceDate clearing the pending receipt into VatReceivable/VatPayable.
func VatKoreaRecoverable(invoiceDate time.Time) VatKoreaDecorator {
	return VatKoreaDecorator{mode: vatKoreaRecoverable, invoiceDate: invoiceDate}
}

// VatKoreaUnrecoverable leaves the amount unchanged, annotating only.
func VatKoreaUnrecoverable() VatKoreaDecorator {
	return VatKoreaDecorator{mode: vatKoreaUnrecoverable}
}

// VatKoreaReverseChargeExempt leaves the amount unchanged, annotating only.
func VatKoreaReverseChargeExempt() VatKoreaDecorator {
	return VatKoreaDecorator{mode: vatKoreaReverseChargeExempt}
}

var vatDivisor = decimal.NewFromFloat(1.1)

func (d VatKoreaDecorator) Apply(_ context.Context, spec DecoratedTransactionSpec) (DecoratedTransactionSpec, error) {
	switch d.mode {
	case vatKoreaUnrecoverable:
		spec.Annotations = append(spec.Annotations, AnnotationVatKoreaUnrecoverable)
		return spec, nil
	case vatKoreaReverseChargeExempt:
		spec.Annotations = append(spec.Annotations, AnnotationVatKoreaReverseChargeExempt)
		return spec, nil
	}

	// IMPORTANT: if this transaction is an expense, the amount is negative.
	currency := spec.Commodity.CurrencyValue()
	amountTotal := spec.Amount
	amountCore := amountTotal.Div(vatDivisor)
	amountVat := amountTotal.Sub(amountCore)

	spec.ExtTransactions = append(spec.ExtTransactions, Transaction{
		SpecID: spec.ID,
		Date:   spec.PaymentDate,
		Postings: []TransactionPosting{
			NewPosting(spec.BackingAccount.Account(), amountVat, currency),
			NewPosting(VatPendingReceiptAccount, amountVat.Neg(), currency),
		},
		Comment: "VAT awaiting invoice",
	})

	if d.mode == vatKoreaRecoverable {
		target := VatPayableAccount
		if amountVat.IsPositive() {
			target = VatReceivableAccount
		}
		spec.ExtTransactions = append(spec.ExtTransactions, Transaction{
			SpecID: spec.ID,
			Date:   d.invoiceDate,
			Postings: []TransactionPosting{
				NewPosting(VatPendingReceiptAccount, amountVat, currency),
				NewPosting(target, amountVat.Neg(), currency),
			},
			Comment: "VAT invoice received",
		})
	}

	spec.Amount = amountCore
	spec.Annotations = append(spec.Annotations, AnnotationVatKorea)
	return spec, nil
}

// feeThreshold is the absolute converted fee at or below which Card FX by
// Fee skips emitting a side transaction.
var feeThreshold = decimal.NewFromFloat(0.01)

// CardFxByFeeDecorator converts the spec amount to the main commodity at
// the payment-date rate and, if the resulting foreign transaction fee
// exceeds a threshold, books it against the standard fee account.
type CardFxByFeeDecorator struct {
	FeePercent    decimal.Decimal
	MainCommodity Commodity
	Rates         RateSource
}

func (d CardFxByFeeDecorator) Apply(ctx context.Context, spec DecoratedTransactionSpec) (DecoratedTransactionSpec, error) {
	sourceCommodity := spec.Commodity
	convertedAmount, err := d.Rates.Convert(ctx, spec.PaymentDate, sourceCommodity.ISOSymbol(), d.MainCommodity.ISOSymbol(), spec.Amount)
	if err != nil {
		return DecoratedTransactionSpec{}, err
	}

	foreignTransactionFee := convertedAmount.Abs().Mul(d.FeePercent).Div(decimal.NewFromInt(100))
	mainCurrency := d.MainCommodity.CurrencyValue()
	if foreignTransactionFee.Abs().GreaterThan(feeThreshold) {
		spec.ExtTransactions = append(spec.ExtTransactions, Transaction{
			SpecID: spec.ID,
			Date:   spec.PaymentDate,
			Postings: []TransactionPosting{
				NewPosting(spec.BackingAccount.Account(), foreignTransactionFee.Neg(), mainCurrency),
				NewPosting(ForeignTransactionFeeAccount, foreignTransactionFee, mainCurrency),
			},
			Comment: "Foreign transaction fee",
		})
	}

	spec.Amount = convertedAmount
	spec.Commodity = d.MainCommodity
	spec.Annotations = append(spec.Annotations, AnnotationCardFxByFee)
	return spec, nil
}

// CardFxBySettleDecorator converts the spec amount using the rate on a
// settlement date distinct from the payment date, with no side
// transaction. Settlement-date and payment-date rates are assumed
// reconciled elsewhere.
type CardFxBySettleDecorator struct {
	ToCurrency    string
	SettleDate    time.Time
	MainCommodity Commodity
	Rates         RateSource
}

func (d CardFxBySettleDecorator) Apply(ctx context.Context, spec DecoratedTransactionSpec) (DecoratedTransactionSpec, error) {
	convertedAmount, err := d.Rates.Convert(ctx, d.SettleDate, spec.Commodity.ISOSymbol(), d.ToCurrency, spec.Amount)
	if err != nil {
		return DecoratedTransactionSpec{}, err
	}
	spec.Amount = convertedAmount
	spec.Commodity = d.MainCommodity
	spec.Annotations = append(spec.Annotations, AnnotationCardFxBySettle)
	return spec, nil
}

// WithholdingTaxDecorator grosses up a post-withholding amount to its
// pre-withholding value and books the withheld amount against the
// standard ForeignWithholdingTax account.
type WithholdingTaxDecorator struct {
	Percent decimal.Decimal
}

func (d WithholdingTaxDecorator) Apply(_ context.Context, spec DecoratedTransactionSpec) (DecoratedTransactionSpec, error) {
	// IMPORTANT: if this transaction is an expense, the amount is negative.
	amountPostWithholding := spec.Amount
	divisor := decimal.NewFromInt(1).Sub(d.Percent.Div(decimal.NewFromInt(100)))
	if divisor.IsZero() {
		return DecoratedTransactionSpec{}, &DivisionByZeroError{Context: "withholding tax percent of 100"}
	}
	amountPreWithholding := amountPostWithholding.Div(divisor)
	withholdingAmount := amountPreWithholding.Sub(amountPostWithholding)

	currency := spec.Commodity.CurrencyValue()
	spec.ExtTransactions = append(spec.ExtTransactions, Transaction{
		SpecID: spec.ID,
		Date:   spec.PaymentDate,
		Postings: []TransactionPosting{
			NewPosting(spec.BackingAccount.Account(), withholdingAmount.Neg(), currency),
			NewPosting(ForeignWithholdingTaxAccount, withholdingAmount, currency),
		},
		Comment: "Foreign withholding tax",
	})

	spec.Amount = amountPreWithholding
	spec.Annotations = append(spec.Annotations, AnnotationForeignWithholdingTax(int(d.Percent.IntPart())))
	return spec, nil
}
