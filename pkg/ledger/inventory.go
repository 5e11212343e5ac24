package ledger

import (
	"fmt"
	"math"
)

// Tolerance is the absolute precision used when comparing amounts and
// exposures. Values closer than this are treated as equal so rounding
// noise never triggers a trade.
const Tolerance = 1e-6

func closeEnough(a, b float64) bool {
	return math.Abs(a-b) <= Tolerance
}

// Inventory tracks the single average-cost lot of one symbol. There is
// at most one open lot at a time; entries fold into a size-weighted
// average price rather than queueing distinct fills. Direction may only
// change while the lot is empty.
type Inventory struct {
	size  float64 // unsigned lot size, 0 when empty
	avgPx float64 // volume-weighted average entry price
	long  bool
}

// NewInventory returns an empty long-direction inventory.
func NewInventory() *Inventory {
	return &Inventory{long: true}
}

// IsLong reports the current direction flag.
func (v *Inventory) IsLong() bool { return v.long }

// Empty reports whether no lot is open.
func (v *Inventory) Empty() bool { return v.size == 0 }

// GoLong sets the direction to long. The lot must be empty.
func (v *Inventory) GoLong() error {
	if v.size != 0 {
		return fmt.Errorf("%w: direction change with open lot", ErrInvalidState)
	}
	v.long = true
	return nil
}

// GoShort sets the direction to short. The lot must be empty.
func (v *Inventory) GoShort() error {
	if v.size != 0 {
		return fmt.Errorf("%w: direction change with open lot", ErrInvalidState)
	}
	v.long = false
	return nil
}

// Amount returns the signed held amount: 0 when empty, positive when
// long, negative when short.
func (v *Inventory) Amount() float64 {
	if v.size == 0 {
		return 0
	}
	if v.long {
		return v.size
	}
	return -v.size
}

// Price returns the average entry price, 0 when empty.
func (v *Inventory) Price() float64 {
	if v.size == 0 {
		return 0
	}
	return v.avgPx
}

// Entry opens or grows the lot and returns the traded notional. A
// growing lot recomputes the size-weighted average price.
func (v *Inventory) Entry(amount, price float64) (float64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("%w: entry amount %v", ErrInvalidArgument, amount)
	}
	if price <= 0 {
		return 0, fmt.Errorf("%w: entry price %v", ErrInvalidArgument, price)
	}
	if v.size == 0 {
		v.size, v.avgPx = amount, price
	} else {
		total := v.size + amount
		v.avgPx = (v.size*v.avgPx + amount*price) / total
		v.size = total
	}
	return amount * price, nil
}

// ExitResult carries the realized outcome of an Exit.
type ExitResult struct {
	RealizedPerUnit float64 // amount × pct / 100
	RealizedPct     float64 // move against average entry, in percent
	AvgPrice        float64 // average entry price at the moment of exit
	Notional        float64 // amount × exit price
}

// Exit shrinks or empties the lot and realizes profit against the
// average entry price. The amount may not exceed the held size beyond
// Tolerance; an exit within Tolerance of the full size empties the lot
// so the direction becomes resettable.
func (v *Inventory) Exit(amount, price float64) (ExitResult, error) {
	if amount <= 0 {
		return ExitResult{}, fmt.Errorf("%w: exit amount %v", ErrInvalidArgument, amount)
	}
	if price <= 0 {
		return ExitResult{}, fmt.Errorf("%w: exit price %v", ErrInvalidArgument, price)
	}
	if v.size == 0 {
		return ExitResult{}, fmt.Errorf("%w: exit on empty lot", ErrInvalidState)
	}
	if amount > v.size+Tolerance {
		return ExitResult{}, fmt.Errorf("%w: exit %v exceeds held %v", ErrInsufficientInventory, amount, v.size)
	}

	avg := v.avgPx
	var pct float64
	if v.long {
		pct = (price - avg) / avg * 100
	} else {
		pct = (avg - price) / avg * 100
	}
	res := ExitResult{
		RealizedPerUnit: amount * pct / 100,
		RealizedPct:     pct,
		AvgPrice:        avg,
		Notional:        amount * price,
	}
	if closeEnough(amount, v.size) {
		v.size, v.avgPx = 0, 0
	} else {
		v.size -= amount
	}
	return res, nil
}
