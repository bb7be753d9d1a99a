package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// SpecID is the opaque identifier a spec source assigns to each
// TransactionSpec, threaded through to every Transaction it produces so
// consumers can trace postings back to their originating spec.
type SpecID uint64

// TransactionPosting is one leg of a balanced Transaction.
type TransactionPosting struct {
	Account Account
	// SourceAccount marks a "linked" posting: a hint for downstream
	// cash-flow classification that this posting's economic nature should
	// be derived from SourceAccount rather than Account. It never affects
	// balance.
	SourceAccount *Account
	Amount        decimal.Decimal
	Currency      Currency
	CustomTags    map[string]string
}

// NewPosting constructs a plain, unlinked posting.
func NewPosting(account Account, amount decimal.Decimal, currency Currency) TransactionPosting {
	return TransactionPosting{Account: account, Amount: amount, Currency: currency}
}

// LinkedPosting constructs a posting linked to a source account for
// downstream cash-flow tracing.
func LinkedPosting(account, source Account, amount decimal.Decimal, currency Currency) TransactionPosting {
	return TransactionPosting{Account: account, SourceAccount: &source, Amount: amount, Currency: currency}
}

// NonCashReclassificationPosting constructs a posting tagged to indicate
// downstream cash-flow reports must exclude it from cash movement.
func NonCashReclassificationPosting(account Account, amount decimal.Decimal, currency Currency) TransactionPosting {
	return TransactionPosting{
		Account:    account,
		Amount:     amount,
		Currency:   currency,
		CustomTags: map[string]string{"s": "non_cash_reclassification"},
	}
}

// Transaction is a dated, balanced journal entry produced by the fold.
type Transaction struct {
	SpecID   SpecID
	Date     time.Time
	Postings []TransactionPosting
	Comment  string
}

// Balances reports whether the signed sum of postings per currency is
// zero, within tolerance.
func (t Transaction) Balances(tolerance decimal.Decimal) bool {
	sums := make(map[string]decimal.Decimal)
	for _, p := range t.Postings {
		sums[p.Currency.Symbol] = sums[p.Currency.Symbol].Add(p.Amount)
	}
	for _, sum := range sums {
		if !IsZeroWithin(sum, tolerance) {
			return false
		}
	}
	return true
}

// Residuals returns the per-currency imbalance, for error reporting.
func (t Transaction) Residuals() map[string]decimal.Decimal {
	sums := make(map[string]decimal.Decimal)
	for _, p := range t.Postings {
		sums[p.Currency.Symbol] = sums[p.Currency.Symbol].Add(p.Amount)
	}
	return sums
}

// Assertion asserts a point-in-time account balance.
type Assertion struct {
	Date     time.Time
	Account  Account
	Balance  decimal.Decimal
	Currency Currency
}

// TransactionLabel carries the payee/description pair surfaced via
// FinancialRecords.LabelLookup.
type TransactionLabel struct {
	Payee       string
	Description string
}
