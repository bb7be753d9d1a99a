package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Decorator transforms a DecoratedTransactionSpec before the spec
// processor sees it. Decorators compose left-to-right: the list order on a
// TransactionSpec defines the order they are folded in. A decorator may
// fail, which aborts the whole spec's processing.
type Decorator interface {
	Apply(ctx context.Context, spec DecoratedTransactionSpec) (DecoratedTransactionSpec, error)
}

// RateSource resolves a currency conversion rate for a given date, used by
// the FX decorators. It is backed by the temporal forward-fill price graph
// in package rates.
type RateSource interface {
	// Convert converts amount from fromCurrency to toCurrency using the
	// most recent rate on or before date.
	Convert(ctx context.Context, date time.Time, fromCurrency, toCurrency string, amount decimal.Decimal) (decimal.Decimal, error)
}

// Decorate lifts a TransactionSpec into its decorated form and left-folds
// its ordered decorators over it, in the order they appear on the spec.
func Decorate(ctx context.Context, spec TransactionSpec) (DecoratedTransactionSpec, error) {
	decorated := DecoratedTransactionSpec{TransactionSpec: spec}
	for _, d := range spec.Decorators {
		var err error
		decorated, err = d.Apply(ctx, decorated)
		if err != nil {
			return DecoratedTransactionSpec{}, err
		}
	}
	return decorated, nil
}
