package ledger

import (
	"fmt"
	"math"
	"time"

	"quantfolio/pkg/commission"
)

// Trade tags the direction of a ledger action.
type Trade string

const (
	TradeLong  Trade = "LONG"
	TradeShort Trade = "SHORT"
	TradeClose Trade = "CLOSE"
	TradeCover Trade = "COVER"
)

// TradeRecord is one executed action in the trade log. Amount is signed
// by convention: LONG and COVER positive, SHORT and CLOSE negative.
type TradeRecord struct {
	Timestamp time.Time `json:"timestamp"`
	Amount    float64   `json:"amount"`
	Fee       float64   `json:"fee"`
	Price     float64   `json:"price"`
	Trade     Trade     `json:"trade"`
	Notes     string    `json:"notes,omitempty"`
}

// ProfitRecord is one realized close/cover in the trade-profit log. The
// Trade tag names the side of the round trip being closed: closes of
// longs are tagged LONG, covers of shorts SHORT.
type ProfitRecord struct {
	Timestamp       time.Time `json:"timestamp"`
	Amount          float64   `json:"amount"`
	ExitPrice       float64   `json:"exit_price"`
	EnterPrice      float64   `json:"enter_price"`
	RealizedProfit  float64   `json:"realized_profit"`
	RealizedPerUnit float64   `json:"realized_profit_pt"`
	RealizedPct     float64   `json:"realized_profit_pct"`
	Trade           Trade     `json:"trade"`
}

// BalanceRecord is one end-of-period snapshot in the balance log.
type BalanceRecord struct {
	Timestamp        time.Time `json:"timestamp"`
	Fund             float64   `json:"fund"`
	Amount           float64   `json:"amount"`
	StrategyExposure float64   `json:"strategy_exposure"`
	Exposure         float64   `json:"exposure"`
	Fee              float64   `json:"fee"`
	BaseRate         float64   `json:"base_rate"`
	Price            float64   `json:"price"`
	GAV              float64   `json:"gav"`
	NAV              float64   `json:"nav"`
}

// Summary is a point-in-time scalar snapshot of a position.
type Summary struct {
	Fund             float64 `json:"fund"`
	Amount           float64 `json:"amount"`
	StrategyExposure float64 `json:"strategy_exposure"`
	Fee              float64 `json:"fee"`
	BaseRate         float64 `json:"base_rate"`
}

// Position is the authoritative per-symbol ledger. It owns the free
// cash, the cumulative fee, an average-cost Inventory, a commission
// model and three append-only logs. Fund and fee are only mutated
// through the four trade primitives and ExtractFund/DepositFund.
//
// A Position is not safe for concurrent use; trade replay is strictly
// sequential per symbol.
type Position struct {
	strategyExposure float64
	baseRate         float64
	fund             float64
	fee              float64
	leverage         float64
	strictCash       bool

	inv  *Inventory
	comm commission.Model

	tradeLog    []TradeRecord
	tradeProfit []ProfitRecord
	balanceLog  []BalanceRecord
}

// Option tweaks a Position at construction time.
type Option func(*Position)

// WithCommission swaps the default percentage commission model.
func WithCommission(m commission.Model) Option {
	return func(p *Position) { p.comm = m }
}

// WithBaseRate sets the initial quote-to-base conversion rate.
func WithBaseRate(r float64) Option {
	return func(p *Position) { p.baseRate = r }
}

// WithLeverage sets the leverage multiplier recorded on the position.
func WithLeverage(l float64) Option {
	return func(p *Position) { p.leverage = l }
}

// WithStrictCash makes Long fail with ErrInsufficientFunds when the
// notional plus fee exceeds the free fund.
func WithStrictCash() Option {
	return func(p *Position) { p.strictCash = true }
}

// NewPosition seeds a ledger with the given free cash.
func NewPosition(fund float64, opts ...Option) *Position {
	p := &Position{
		baseRate: 1,
		fund:     fund,
		leverage: 1,
		inv:      NewInventory(),
		comm:     commission.MustPercentage(0.001),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CalNAV values a holding: cash plus signed amount at price.
func CalNAV(cash, amount, price float64) float64 {
	return cash + amount*price
}

// CalExposure measures the fraction of NAV attributable to the held
// asset at the given price. Exposure drifts with price, so it is always
// recomputed at trade time instead of trusting the last recorded
// target. Zero when flat or when the NAV is non-positive.
func CalExposure(cash, amount, price float64) float64 {
	if amount == 0 {
		return 0
	}
	nav := CalNAV(cash, amount, price)
	if nav <= 0 {
		return 0
	}
	return 1 - cash/nav
}

// Fund returns the free cash, negative while margined.
func (p *Position) Fund() float64 { return p.fund }

// Fee returns the cumulative commission paid.
func (p *Position) Fee() float64 { return p.fee }

// BaseRate returns the current quote-to-base conversion rate.
func (p *Position) BaseRate() float64 { return p.baseRate }

// Leverage returns the leverage multiplier.
func (p *Position) Leverage() float64 { return p.leverage }

// StrategyExposure returns the last nominal exposure target applied.
func (p *Position) StrategyExposure() float64 { return p.strategyExposure }

// Amount returns the signed held amount.
func (p *Position) Amount() float64 { return p.inv.Amount() }

// EntryPrice returns the average entry price of the open lot.
func (p *Position) EntryPrice() float64 { return p.inv.Price() }

// GAV is the gross asset value at price: fund + amount × price.
func (p *Position) GAV(price float64) float64 {
	return CalNAV(p.fund, p.Amount(), price)
}

// NAV is the net asset value at price: GAV minus cumulative fee.
func (p *Position) NAV(price float64) float64 {
	return p.GAV(price) - p.fee
}

// EnoughAmount reports whether the held inventory covers amount.
func (p *Position) EnoughAmount(amount float64) bool {
	return math.Abs(amount) <= math.Abs(p.Amount())+Tolerance
}

// EnoughCash reports whether the free fund covers cash.
func (p *Position) EnoughCash(cash float64) bool {
	return cash <= p.fund+Tolerance
}

// UpdateBaseRate replaces the conversion rate used for realized profit
// on subsequent closes and covers. Already-logged profits keep the rate
// in force at their exit.
func (p *Position) UpdateBaseRate(rate float64) { p.baseRate = rate }

// SetCommission replaces the commission model.
func (p *Position) SetCommission(m commission.Model) { p.comm = m }

// ExtractFund drains the free cash and returns it, leaving the
// inventory untouched.
func (p *Position) ExtractFund() float64 {
	fund := p.fund
	p.fund = 0
	return fund
}

// DepositFund sets the free cash, leaving the inventory untouched.
func (p *Position) DepositFund(fund float64) { p.fund = fund }

// Summary returns the scalar snapshot of the ledger.
func (p *Position) Summary() Summary {
	return Summary{
		Fund:             p.fund,
		Amount:           p.Amount(),
		StrategyExposure: p.strategyExposure,
		Fee:              p.fee,
		BaseRate:         p.baseRate,
	}
}

// Long enters or grows a long lot: fund pays the notional, fee accrues.
func (p *Position) Long(amount, price float64, ts time.Time, notes string) error {
	amount = math.Abs(amount)
	if !p.inv.Empty() && !p.inv.IsLong() {
		return fmt.Errorf("%w: long while short lot open", ErrInvalidState)
	}
	if p.strictCash && !p.EnoughCash(amount*price+p.comm.Calculate(price, amount)) {
		return fmt.Errorf("%w: long %v at %v", ErrInsufficientFunds, amount, price)
	}
	if p.inv.Amount() == 0 {
		if err := p.inv.GoLong(); err != nil {
			return err
		}
	}
	notional, err := p.inv.Entry(amount, price)
	if err != nil {
		return err
	}
	fee := p.comm.Calculate(price, amount)
	p.fund -= math.Abs(notional)
	p.fee += fee
	p.tradeLog = append(p.tradeLog, TradeRecord{
		Timestamp: ts, Amount: amount, Fee: fee, Price: price, Trade: TradeLong, Notes: notes,
	})
	return nil
}

// Short enters or grows a short lot: the sale proceeds credit the fund.
func (p *Position) Short(amount, price float64, ts time.Time, notes string) error {
	amount = math.Abs(amount)
	if !p.inv.Empty() && p.inv.IsLong() {
		return fmt.Errorf("%w: short while long lot open", ErrInvalidState)
	}
	if p.inv.Amount() == 0 {
		if err := p.inv.GoShort(); err != nil {
			return err
		}
	}
	notional, err := p.inv.Entry(amount, price)
	if err != nil {
		return err
	}
	fee := p.comm.Calculate(price, amount)
	p.fund += math.Abs(notional)
	p.fee += fee
	p.tradeLog = append(p.tradeLog, TradeRecord{
		Timestamp: ts, Amount: -amount, Fee: fee, Price: price, Trade: TradeShort, Notes: notes,
	})
	return nil
}

// Close exits part or all of a long lot and realizes profit against the
// lot's average entry price with the base rate in force right now.
func (p *Position) Close(amount, price float64, ts time.Time, notes string) error {
	amount = math.Abs(amount)
	if !p.inv.Empty() && !p.inv.IsLong() {
		return fmt.Errorf("%w: close on short lot", ErrInvalidState)
	}
	res, err := p.inv.Exit(amount, price)
	if err != nil {
		return err
	}
	fee := p.comm.Calculate(price, amount)
	p.fund += math.Abs(res.Notional)
	p.fee += fee
	p.tradeLog = append(p.tradeLog, TradeRecord{
		Timestamp: ts, Amount: -amount, Fee: fee, Price: price, Trade: TradeClose, Notes: notes,
	})
	p.tradeProfit = append(p.tradeProfit, ProfitRecord{
		Timestamp:       ts,
		Amount:          amount,
		ExitPrice:       price,
		EnterPrice:      res.AvgPrice,
		RealizedProfit:  res.RealizedPerUnit * p.baseRate * price,
		RealizedPerUnit: res.RealizedPerUnit,
		RealizedPct:     res.RealizedPct,
		Trade:           TradeLong,
	})
	return nil
}

// Cover exits part or all of a short lot; buying back debits the fund.
func (p *Position) Cover(amount, price float64, ts time.Time, notes string) error {
	amount = math.Abs(amount)
	if !p.inv.Empty() && p.inv.IsLong() {
		return fmt.Errorf("%w: cover on long lot", ErrInvalidState)
	}
	res, err := p.inv.Exit(amount, price)
	if err != nil {
		return err
	}
	fee := p.comm.Calculate(price, amount)
	p.fund -= math.Abs(res.Notional)
	p.fee += fee
	p.tradeLog = append(p.tradeLog, TradeRecord{
		Timestamp: ts, Amount: amount, Fee: fee, Price: price, Trade: TradeCover, Notes: notes,
	})
	p.tradeProfit = append(p.tradeProfit, ProfitRecord{
		Timestamp:       ts,
		Amount:          -amount,
		ExitPrice:       price,
		EnterPrice:      res.AvgPrice,
		RealizedProfit:  res.RealizedPerUnit * p.baseRate * price,
		RealizedPerUnit: res.RealizedPerUnit,
		RealizedPct:     res.RealizedPct,
		Trade:           TradeShort,
	})
	return nil
}

// EndDate appends one balance snapshot at the given mark price. One
// record per call, keyed by timestamp; callers must keep timestamps
// monotonically non-decreasing.
func (p *Position) EndDate(ts time.Time, price float64) {
	amount := p.Amount()
	p.balanceLog = append(p.balanceLog, BalanceRecord{
		Timestamp:        ts,
		Fund:             p.fund,
		Amount:           amount,
		StrategyExposure: p.strategyExposure,
		Exposure:         CalExposure(p.fund, amount, price),
		Fee:              p.fee,
		BaseRate:         p.baseRate,
		Price:            price,
		GAV:              p.GAV(price),
		NAV:              p.NAV(price),
	})
}

// TradeLog returns the executed actions in order.
func (p *Position) TradeLog() []TradeRecord { return p.tradeLog }

// TradeProfit returns the realized close/cover records in order.
func (p *Position) TradeProfit() []ProfitRecord { return p.tradeProfit }

// BalanceLog returns the end-of-period snapshots in order.
func (p *Position) BalanceLog() []BalanceRecord { return p.balanceLog }
