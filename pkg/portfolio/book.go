// Package portfolio groups per-symbol ledgers into a book sharing one
// pool of capital.
package portfolio

import (
	"fmt"
	"sort"

	"quantfolio/pkg/commission"
	"quantfolio/pkg/ledger"
)

// Book owns one ledger.Position per symbol, seeded by splitting a total
// fund across allocation weights. Positions for different symbols are
// independent; the book itself never trades.
type Book struct {
	fund        float64
	allocations map[string]float64
	positions   map[string]*ledger.Position
}

// New seeds a book: each symbol's position starts with fund×weight of
// free cash. Weights must be positive; they may sum below 1, leaving
// the remainder as fixed cash the statistics layer adds back.
func New(fund float64, allocations map[string]float64, opts ...ledger.Option) (*Book, error) {
	if fund <= 0 {
		return nil, fmt.Errorf("portfolio: fund must be positive, got %v", fund)
	}
	if len(allocations) == 0 {
		return nil, fmt.Errorf("portfolio: no allocations given")
	}
	var total float64
	positions := make(map[string]*ledger.Position, len(allocations))
	for symbol, w := range allocations {
		if w <= 0 {
			return nil, fmt.Errorf("portfolio: allocation for %s must be positive, got %v", symbol, w)
		}
		total += w
		positions[symbol] = ledger.NewPosition(fund*w, opts...)
	}
	if total > 1+ledger.Tolerance {
		return nil, fmt.Errorf("portfolio: allocations sum to %v, cannot exceed 1", total)
	}
	allocs := make(map[string]float64, len(allocations))
	for s, w := range allocations {
		allocs[s] = w
	}
	return &Book{fund: fund, allocations: allocs, positions: positions}, nil
}

// Fund returns the total capital the book was seeded with.
func (b *Book) Fund() float64 { return b.fund }

// FixedCash returns the capital never allocated to any symbol.
func (b *Book) FixedCash() float64 {
	allocated := 0.0
	for _, w := range b.allocations {
		allocated += w
	}
	return b.fund * (1 - allocated)
}

// Symbols returns the book's symbols in stable order.
func (b *Book) Symbols() []string {
	symbols := make([]string, 0, len(b.positions))
	for s := range b.positions {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols
}

// Position returns the ledger for a symbol, nil when unknown.
func (b *Book) Position(symbol string) *ledger.Position {
	return b.positions[symbol]
}

// Positions returns the symbol→ledger mapping backing the book.
func (b *Book) Positions() map[string]*ledger.Position {
	return b.positions
}

// Rebalance drains every position's free cash and redeposits it by the
// given weights. Inventories are untouched, so this only moves capital
// that is not currently held in any asset.
func (b *Book) Rebalance(weights map[string]float64) error {
	for symbol := range weights {
		if _, ok := b.positions[symbol]; !ok {
			return fmt.Errorf("portfolio: rebalance references unknown symbol %s", symbol)
		}
	}
	var pool, total float64
	for _, pos := range b.positions {
		pool += pos.ExtractFund()
	}
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return fmt.Errorf("portfolio: rebalance weights sum to %v", total)
	}
	for symbol, w := range weights {
		b.positions[symbol].DepositFund(pool * w / total)
	}
	return nil
}

// SetCommission swaps the commission model on every position.
func (b *Book) SetCommission(m commission.Model) {
	for _, pos := range b.positions {
		pos.SetCommission(m)
	}
}

// UpdateBaseRate updates the conversion rate for one symbol.
func (b *Book) UpdateBaseRate(symbol string, rate float64) error {
	pos, ok := b.positions[symbol]
	if !ok {
		return fmt.Errorf("portfolio: unknown symbol %s", symbol)
	}
	pos.UpdateBaseRate(rate)
	return nil
}
