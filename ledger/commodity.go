package ledger

import "github.com/shopspring/decimal"

// Currency is a minimal ISO-4217-like currency descriptor: a symbol plus
// the number of decimal places ("exponent") it is conventionally quoted
// to. USD has exponent 2 ("cents"); JPY has exponent 0.
type Currency struct {
	Symbol   string
	Exponent int32
}

// knownCurrencies seeds the common currencies this module's fixtures and
// tests exercise. Callers needing an unlisted currency construct a Currency
// literal directly; there is no global registry to mutate.
var knownCurrencies = map[string]Currency{
	"USD": {Symbol: "USD", Exponent: 2},
	"EUR": {Symbol: "EUR", Exponent: 2},
	"GBP": {Symbol: "GBP", Exponent: 2},
	"KRW": {Symbol: "KRW", Exponent: 0},
	"JPY": {Symbol: "JPY", Exponent: 0},
}

// LookupCurrency returns the known Currency for an ISO symbol, defaulting
// to exponent 2 (the common case) if the symbol is unrecognized.
func LookupCurrency(symbol string) Currency {
	if c, ok := knownCurrencies[symbol]; ok {
		return c
	}
	return Currency{Symbol: symbol, Exponent: 2}
}

// Commodity is the capability set a spec's amount is denominated in: an
// ISO symbol, the Currency it resolves to, and the smallest amount that
// should be treated as non-zero for that currency (its precision cutoff).
type Commodity interface {
	ISOSymbol() string
	CurrencyValue() Currency
	PrecisionCutoff() decimal.Decimal
}

// StandardCommodity is the common Commodity implementation: precision
// cutoff derived mechanically from the currency's decimal exponent (one
// unit at that exponent, e.g. 0.01 for USD, 1 for JPY).
type StandardCommodity struct {
	Currency Currency
}

func (c StandardCommodity) ISOSymbol() string       { return c.Currency.Symbol }
func (c StandardCommodity) CurrencyValue() Currency { return c.Currency }
func (c StandardCommodity) PrecisionCutoff() decimal.Decimal {
	return decimal.New(1, -c.Currency.Exponent)
}

// NewCommodity constructs a StandardCommodity for the given ISO symbol.
func NewCommodity(symbol string) StandardCommodity {
	return StandardCommodity{Currency: LookupCurrency(symbol)}
}
