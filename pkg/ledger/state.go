package ledger

// PositionState is the serializable image of a Position. The commission
// model is deliberately not part of it; restored positions keep (or are
// given) a model at construction time.
type PositionState struct {
	StrategyExposure float64         `msgpack:"strategy_exposure" json:"strategy_exposure"`
	BaseRate         float64         `msgpack:"base_rate" json:"base_rate"`
	Fund             float64         `msgpack:"fund" json:"fund"`
	Fee              float64         `msgpack:"fee" json:"fee"`
	Leverage         float64         `msgpack:"leverage" json:"leverage"`
	LotSize          float64         `msgpack:"lot_size" json:"lot_size"`
	LotAvgPrice      float64         `msgpack:"lot_avg_price" json:"lot_avg_price"`
	IsLong           bool            `msgpack:"is_long" json:"is_long"`
	TradeLog         []TradeRecord   `msgpack:"trade_log" json:"trade_log"`
	TradeProfit      []ProfitRecord  `msgpack:"trade_profit" json:"trade_profit"`
	BalanceLog       []BalanceRecord `msgpack:"balance_log" json:"balance_log"`
}

// State captures the full serializable image of the position.
func (p *Position) State() PositionState {
	return PositionState{
		StrategyExposure: p.strategyExposure,
		BaseRate:         p.baseRate,
		Fund:             p.fund,
		Fee:              p.fee,
		Leverage:         p.leverage,
		LotSize:          p.inv.size,
		LotAvgPrice:      p.inv.avgPx,
		IsLong:           p.inv.long,
		TradeLog:         append([]TradeRecord(nil), p.tradeLog...),
		TradeProfit:      append([]ProfitRecord(nil), p.tradeProfit...),
		BalanceLog:       append([]BalanceRecord(nil), p.balanceLog...),
	}
}

// FromState rebuilds a position from a serialized image.
func FromState(st PositionState, opts ...Option) *Position {
	p := NewPosition(st.Fund, opts...)
	p.strategyExposure = st.StrategyExposure
	p.baseRate = st.BaseRate
	p.fee = st.Fee
	p.leverage = st.Leverage
	p.inv.size = st.LotSize
	p.inv.avgPx = st.LotAvgPrice
	p.inv.long = st.IsLong
	p.tradeLog = append([]TradeRecord(nil), st.TradeLog...)
	p.tradeProfit = append([]ProfitRecord(nil), st.TradeProfit...)
	p.balanceLog = append([]BalanceRecord(nil), st.BalanceLog...)
	return p
}
