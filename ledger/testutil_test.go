package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// mustDate parses "2006-01-02" dates for test fixtures, consistent across
// this package's test files.
func mustDate(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

// mustDec parses decimal literals for test fixtures.
func mustDec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

var usd = LookupCurrency("USD")
