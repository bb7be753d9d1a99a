package rates

import (
	"context"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"
)

func date(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestGraph_DirectConversion(t *testing.T) {
	g := NewGraph()
	g.AddPrice(date("2024-01-01"), "USD", "EUR", dec("0.9"))

	out, err := g.Convert(context.Background(), date("2024-06-01"), "USD", "EUR", dec("100"))
	assert.NoError(t, err)
	assert.True(t, out.Equal(dec("90")), "got %s", out)
}

func TestGraph_AutoInverse(t *testing.T) {
	g := NewGraph()
	g.AddPrice(date("2024-01-01"), "USD", "EUR", dec("0.5"))

	out, err := g.Convert(context.Background(), date("2024-06-01"), "EUR", "USD", dec("10"))
	assert.NoError(t, err)
	assert.True(t, out.Equal(dec("20")), "got %s", out)
}

func TestGraph_ForwardFillUsesMostRecentQuoteOnOrBefore(t *testing.T) {
	g := NewGraph()
	g.AddPrice(date("2024-01-01"), "USD", "EUR", dec("0.9"))
	g.AddPrice(date("2024-03-01"), "USD", "EUR", dec("0.95"))

	out, err := g.Convert(context.Background(), date("2024-02-01"), "USD", "EUR", dec("100"))
	assert.NoError(t, err)
	assert.True(t, out.Equal(dec("90")), "got %s (expected Jan quote, not Mar)", out)

	out, err = g.Convert(context.Background(), date("2024-04-01"), "USD", "EUR", dec("100"))
	assert.NoError(t, err)
	assert.True(t, out.Equal(dec("95")), "got %s (expected Mar quote)", out)
}

func TestGraph_NoQuoteBeforeDateFails(t *testing.T) {
	g := NewGraph()
	g.AddPrice(date("2024-03-01"), "USD", "EUR", dec("0.9"))

	_, err := g.Convert(context.Background(), date("2024-01-01"), "USD", "EUR", dec("100"))
	assert.Error(t, err)
}

func TestGraph_PathThroughIntermediateCurrency(t *testing.T) {
	g := NewGraph()
	g.AddPrice(date("2024-01-01"), "USD", "EUR", dec("0.9"))
	g.AddPrice(date("2024-01-01"), "EUR", "KRW", dec("1400"))

	out, err := g.Convert(context.Background(), date("2024-06-01"), "USD", "KRW", dec("10"))
	assert.NoError(t, err)
	// 10 USD -> 9 EUR -> 12600 KRW
	assert.True(t, out.Equal(dec("12600")), "got %s", out)
}

func TestGraph_NoPathFails(t *testing.T) {
	g := NewGraph()
	g.AddPrice(date("2024-01-01"), "USD", "EUR", dec("0.9"))

	_, err := g.Convert(context.Background(), date("2024-06-01"), "USD", "JPY", dec("100"))
	assert.Error(t, err)
}

func TestGraph_SameCurrencyIsIdentity(t *testing.T) {
	g := NewGraph()
	out, err := g.Convert(context.Background(), date("2024-06-01"), "USD", "USD", dec("42"))
	assert.NoError(t, err)
	assert.True(t, out.Equal(dec("42")))
}
