package ledger

import "github.com/shopspring/decimal"

// Epsilon is the tolerance used when comparing amounts that should be
// "close enough" to zero to treat as equal. It is the default
// Config.Tolerance, which the exact-amount reimbursement pop, the
// per-transaction balance check and reimbursable-debit tracing use.
var Epsilon = decimal.New(1, -9)

// AmountEqual reports whether a and b are equal within tolerance.
func AmountEqual(a, b, tolerance decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(tolerance)
}

// IsZeroWithin reports whether d is within tolerance of zero.
func IsZeroWithin(d, tolerance decimal.Decimal) bool {
	return d.Abs().LessThanOrEqual(tolerance)
}

// RoundAt rounds d to the given currency's decimal exponent.
func RoundAt(d decimal.Decimal, currency Currency) decimal.Decimal {
	return d.Round(currency.Exponent)
}
