package ledger

import "time"

// transition enumerates the ten exposure rebalance cases, keyed by the
// sign of the old nominal exposure, the sign of the target, and their
// relative magnitude on the same side.
type transition int

const (
	transNone transition = iota
	longToFlat
	longIncrease
	longDecrease
	longToShort
	flatToLong
	flatToShort
	shortToFlat
	shortDecrease
	shortIncrease
	shortToLong
)

func classify(oldExp, newExp float64) transition {
	switch {
	case closeEnough(oldExp, newExp):
		return transNone
	case oldExp > 0:
		switch {
		case closeEnough(newExp, 0):
			return longToFlat
		case newExp > 0 && newExp > oldExp:
			return longIncrease
		case newExp > 0 && newExp < oldExp:
			return longDecrease
		case newExp < 0:
			return longToShort
		}
	case closeEnough(oldExp, 0):
		switch {
		case newExp > 0:
			return flatToLong
		case newExp < 0:
			return flatToShort
		}
	case oldExp < 0:
		switch {
		case closeEnough(newExp, 0):
			return shortToFlat
		case newExp < 0 && newExp > oldExp:
			return shortDecrease
		case newExp < 0 && newExp < oldExp:
			return shortIncrease
		case newExp > 0:
			return shortToLong
		}
	}
	return transNone
}

// leg is one primitive call derived from a rebalance.
type leg struct {
	trade  Trade
	amount float64
}

// plan derives the primitive legs for a transition. amount is the
// signed held amount, exposure the effective exposure measured at trade
// time, nav the gross value at the trade price. Sign-flip transitions
// produce two legs: flatten the old side, then open the new one.
func plan(t transition, newExp, amount, exposure, nav, price float64) []leg {
	switch t {
	case longToFlat:
		return []leg{{TradeClose, amount}}
	case longIncrease:
		return []leg{{TradeLong, nav * (newExp - exposure) / price}}
	case longDecrease:
		return []leg{{TradeClose, nav * (newExp - exposure) / price}}
	case longToShort:
		return []leg{
			{TradeClose, amount},
			{TradeShort, nav * newExp / price},
		}
	case flatToLong:
		return []leg{{TradeLong, nav * newExp / price}}
	case flatToShort:
		return []leg{{TradeShort, nav * newExp / price}}
	case shortToFlat:
		return []leg{{TradeCover, amount}}
	case shortDecrease:
		return []leg{{TradeCover, nav * (exposure - newExp) / price}}
	case shortIncrease:
		return []leg{{TradeShort, nav * (exposure - newExp) / price}}
	case shortToLong:
		return []leg{
			{TradeCover, amount},
			{TradeLong, nav * newExp / price},
		}
	default:
		return nil
	}
}

// Allocate rebalances the position to a new nominal exposure at the
// given price, emitting zero, one or two trade primitives. The amount
// changed is sized against the exposure measured at trade time, not the
// previously recorded target, because price drift since the last
// rebalance changes the effective exposure. Targets within Tolerance of
// the current nominal exposure are a no-op. On success the nominal
// exposure is unconditionally set to the new target.
func (p *Position) Allocate(newExposure, price float64, ts time.Time, notes string) error {
	oldExposure := p.strategyExposure
	amount := p.inv.Amount()
	exposure := CalExposure(p.fund, amount, price)
	nav := CalNAV(p.fund, amount, price)

	t := classify(oldExposure, newExposure)
	if t == transNone {
		return nil
	}
	for _, l := range plan(t, newExposure, amount, exposure, nav, price) {
		var err error
		switch l.trade {
		case TradeLong:
			err = p.Long(l.amount, price, ts, notes)
		case TradeShort:
			err = p.Short(l.amount, price, ts, notes)
		case TradeClose:
			err = p.Close(l.amount, price, ts, notes)
		case TradeCover:
			err = p.Cover(l.amount, price, ts, notes)
		}
		if err != nil {
			return err
		}
	}
	p.strategyExposure = newExposure
	return nil
}
