// Package rates implements a temporal, forward-fill currency price graph:
// a RateSource backing the FX decorators in package ledger. Prices are
// directed edges between currency nodes, automatically inverted so a
// USD→EUR quote also serves EUR→USD conversions, and path-found through
// intermediate currencies when no direct quote exists for a date.
package rates

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Edge is a directed price quote between two currency symbols, valid from
// Date onward until superseded by a later quote on the same pair.
type Edge struct {
	From   string
	To     string
	Date   time.Time
	Weight decimal.Decimal
}

// Graph is a directed multigraph of currency price edges. A query on date
// d forward-fills: per currency pair, the most recent quote on or before d
// wins.
type Graph struct {
	edges map[string][]*Edge
}

// NewGraph creates an empty price graph.
func NewGraph() *Graph {
	return &Graph{edges: make(map[string][]*Edge)}
}

// AddPrice records a price quote fromCurrency→toCurrency valid from date
// onward, and its automatically-inferred inverse.
func (g *Graph) AddPrice(date time.Time, fromCurrency, toCurrency string, rate decimal.Decimal) {
	g.addEdge(&Edge{From: fromCurrency, To: toCurrency, Date: date, Weight: rate})
	if !rate.IsZero() {
		g.addEdge(&Edge{From: toCurrency, To: fromCurrency, Date: date, Weight: decimal.NewFromInt(1).Div(rate)})
	}
}

func (g *Graph) addEdge(edge *Edge) {
	g.edges[edge.From] = append(g.edges[edge.From], edge)
}

// effectiveEdges returns, for each currency reachable one hop from `from`,
// the most recent quote on or before date.
func (g *Graph) effectiveEdges(from string, date time.Time) []*Edge {
	latest := make(map[string]*Edge)
	var order []string
	for _, edge := range g.edges[from] {
		if edge.Date.After(date) {
			continue
		}
		if prev, ok := latest[edge.To]; ok {
			if edge.Date.After(prev.Date) {
				latest[edge.To] = edge
			}
			continue
		}
		latest[edge.To] = edge
		order = append(order, edge.To)
	}
	out := make([]*Edge, 0, len(order))
	for _, to := range order {
		out = append(out, latest[to])
	}
	return out
}

// findPath performs a breadth-first search for a conversion path from
// fromCurrency to toCurrency using, per hop, the latest quote on or before
// date.
func (g *Graph) findPath(fromCurrency, toCurrency string, date time.Time) ([]*Edge, error) {
	if fromCurrency == toCurrency {
		return []*Edge{}, nil
	}

	type queueItem struct {
		node  string
		edges []*Edge
	}

	queue := []queueItem{{node: fromCurrency}}
	visited := map[string]bool{fromCurrency: true}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		for _, edge := range g.effectiveEdges(item.node, date) {
			if edge.To == toCurrency {
				return append(append([]*Edge{}, item.edges...), edge), nil
			}
			if visited[edge.To] {
				continue
			}
			visited[edge.To] = true
			queue = append(queue, queueItem{node: edge.To, edges: append(append([]*Edge{}, item.edges...), edge)})
		}
	}

	return nil, fmt.Errorf("no price path found from %s to %s on %s", fromCurrency, toCurrency, date.Format("2006-01-02"))
}

// Convert implements ledger.RateSource: it converts amount from
// fromCurrency to toCurrency using the most recent quote(s) on or before
// date, path-finding through intermediate currencies if needed.
func (g *Graph) Convert(_ context.Context, date time.Time, fromCurrency, toCurrency string, amount decimal.Decimal) (decimal.Decimal, error) {
	if fromCurrency == toCurrency {
		return amount, nil
	}

	path, err := g.findPath(fromCurrency, toCurrency, date)
	if err != nil {
		return decimal.Zero, err
	}

	result := amount
	for _, edge := range path {
		if edge.Weight.IsZero() {
			return decimal.Zero, fmt.Errorf("invalid zero-weight price edge in conversion path: %s->%s", edge.From, edge.To)
		}
		result = result.Mul(edge.Weight)
	}
	return result, nil
}
