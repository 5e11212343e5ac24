package commission

import (
	"fmt"
	"math"
	"sort"
)

// Model prices the fee charged for executing a trade. Implementations
// must return a non-negative fee that depends only on the execution
// price and the absolute traded amount.
type Model interface {
	Calculate(price, amount float64) float64
}

// Percentage charges a flat fraction of the traded notional.
type Percentage struct {
	pct float64
}

// NewPercentage constructs a percentage scheme. The rate must sit in
// [0, 1): a rate of 1 or more would consume the whole notional.
func NewPercentage(pct float64) (*Percentage, error) {
	if pct < 0 || pct >= 1 {
		return nil, fmt.Errorf("commission: percentage must be in [0,1), got %v", pct)
	}
	return &Percentage{pct: pct}, nil
}

// MustPercentage is NewPercentage that panics on an invalid rate.
func MustPercentage(pct float64) *Percentage {
	m, err := NewPercentage(pct)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *Percentage) Calculate(price, amount float64) float64 {
	return price * math.Abs(amount) * m.pct
}

// Rate returns the configured fraction of notional.
func (m *Percentage) Rate() float64 { return m.pct }

// Flat charges a fixed fee per executed trade regardless of size.
type Flat struct {
	fee float64
}

func NewFlat(fee float64) (*Flat, error) {
	if fee < 0 {
		return nil, fmt.Errorf("commission: flat fee must be non-negative, got %v", fee)
	}
	return &Flat{fee: fee}, nil
}

func (m *Flat) Calculate(price, amount float64) float64 {
	if math.Abs(amount) == 0 {
		return 0
	}
	return m.fee
}

// Tier is one bracket of a tiered scheme: the rate applies when the
// traded notional is at least MinNotional.
type Tier struct {
	MinNotional float64
	Rate        float64
}

// Tiered selects a percentage rate by the notional of the trade,
// mirroring volume-tiered maker/taker schedules.
type Tiered struct {
	tiers []Tier
}

// NewTiered constructs a tiered scheme. At least one tier with
// MinNotional 0 is required so every trade maps to a rate.
func NewTiered(tiers []Tier) (*Tiered, error) {
	if len(tiers) == 0 {
		return nil, fmt.Errorf("commission: tiered scheme needs at least one tier")
	}
	sorted := make([]Tier, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinNotional < sorted[j].MinNotional })
	if sorted[0].MinNotional != 0 {
		return nil, fmt.Errorf("commission: tiered scheme needs a base tier at notional 0")
	}
	for _, t := range sorted {
		if t.Rate < 0 || t.Rate >= 1 {
			return nil, fmt.Errorf("commission: tier rate must be in [0,1), got %v", t.Rate)
		}
	}
	return &Tiered{tiers: sorted}, nil
}

func (m *Tiered) Calculate(price, amount float64) float64 {
	notional := price * math.Abs(amount)
	rate := m.tiers[0].Rate
	for _, t := range m.tiers {
		if notional >= t.MinNotional {
			rate = t.Rate
		}
	}
	return notional * rate
}
