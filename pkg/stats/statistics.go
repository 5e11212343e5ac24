package stats

import (
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"quantfolio/pkg/ledger"
)

// Config carries the replay bounds the summaries are reported against.
type Config struct {
	Fund         float64
	StartTime    time.Time
	EndTime      time.Time
	RiskFreeRate float64
}

// Point is one observation of a portfolio value series.
type Point struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// SymbolProfit is a realized-trade record annotated with its symbol.
type SymbolProfit struct {
	Symbol string
	ledger.ProfitRecord
}

// Statistics aggregates a symbol→Position mapping into portfolio level
// series and summary tables. It reads the positions' logs and holds no
// ledger state of its own; Calculate must run after every position has
// finished its replay.
type Statistics struct {
	cfg       Config
	positions map[string]*ledger.Position
	fixedCash float64

	equity      []Point
	gav         []Point
	tradeProfit []SymbolProfit
	totalFee    float64
}

// New constructs an aggregator over finished positions. fixedCash is
// capital never allocated to any symbol, added to every series point.
func New(cfg Config, positions map[string]*ledger.Position, fixedCash float64) *Statistics {
	return &Statistics{cfg: cfg, positions: positions, fixedCash: fixedCash}
}

// Calculate builds the portfolio NAV and GAV series over the union of
// all positions' balance-log timestamps and merges the realized-trade
// logs. A position missing an observation at some timestamp contributes
// its most recent earlier snapshot (forward fill), or nothing before
// its first one.
func (s *Statistics) Calculate() error {
	if len(s.positions) == 0 {
		return fmt.Errorf("stats: no positions to aggregate")
	}

	stampSet := make(map[time.Time]struct{})
	for _, pos := range s.positions {
		for _, rec := range pos.BalanceLog() {
			stampSet[rec.Timestamp] = struct{}{}
		}
	}
	if len(stampSet) == 0 {
		return fmt.Errorf("stats: positions have no balance snapshots")
	}
	stamps := make([]time.Time, 0, len(stampSet))
	for ts := range stampSet {
		stamps = append(stamps, ts)
	}
	sort.Slice(stamps, func(i, j int) bool { return stamps[i].Before(stamps[j]) })

	s.equity = make([]Point, len(stamps))
	s.gav = make([]Point, len(stamps))
	for i, ts := range stamps {
		s.equity[i] = Point{Timestamp: ts, Value: s.fixedCash}
		s.gav[i] = Point{Timestamp: ts, Value: s.fixedCash}
	}
	for _, pos := range s.positions {
		log := pos.BalanceLog()
		idx := 0
		var last *ledger.BalanceRecord
		for i, ts := range stamps {
			for idx < len(log) && !log[idx].Timestamp.After(ts) {
				last = &log[idx]
				idx++
			}
			if last == nil {
				continue
			}
			s.equity[i].Value += last.NAV
			s.gav[i].Value += last.GAV
		}
	}

	s.tradeProfit = s.tradeProfit[:0]
	s.totalFee = 0
	for symbol, pos := range s.positions {
		for _, rec := range pos.TradeProfit() {
			s.tradeProfit = append(s.tradeProfit, SymbolProfit{Symbol: symbol, ProfitRecord: rec})
		}
		s.totalFee += pos.Fee()
	}
	sort.SliceStable(s.tradeProfit, func(i, j int) bool {
		return s.tradeProfit[i].Timestamp.Before(s.tradeProfit[j].Timestamp)
	})
	return nil
}

// Equity returns the portfolio NAV series.
func (s *Statistics) Equity() []Point { return s.equity }

// GAV returns the portfolio gross asset value series.
func (s *Statistics) GAV() []Point { return s.gav }

// TradeProfit returns all realized trades across symbols in time order.
func (s *Statistics) TradeProfit() []SymbolProfit { return s.tradeProfit }

func (s *Statistics) values(points []Point) []float64 {
	vals := make([]float64, len(points))
	for i, p := range points {
		vals[i] = p.Value
	}
	return vals
}

// Row is one entry of an ordered key→value report table.
type Row struct {
	Key   string
	Value any
}

// NAVSummary returns the ordered portfolio performance table.
func (s *Statistics) NAVSummary() []Row {
	equity := s.values(s.equity)
	gav := s.values(s.gav)
	last := equity[len(equity)-1]
	lastGav := gav[len(gav)-1]
	fund := s.cfg.Fund
	return []Row{
		{"Initial Capital", fund},
		{"Ending Capital", last},
		{"Trade Start", s.cfg.StartTime},
		{"Trade End", s.cfg.EndTime},
		{"Trade Days", s.cfg.EndTime.Sub(s.cfg.StartTime)},
		{"Gross Profit", lastGav - fund},
		{"Gross Profit %", (lastGav - fund) / fund * 100},
		{"Net Profit", last - fund},
		{"Net Profit %", (last - fund) / fund * 100},
		{"Maximum Drawdown %", MaxDrawdown(equity) * 100},
		{"Annual Return %", AnnualizedReturn(equity, fund) * 100},
		{"Sharpe Ratio", SharpeRatio(equity, s.cfg.RiskFreeRate)},
		{"Trading Fee", s.totalFee},
	}
}

// TradeStats is the win/loss breakdown of one trade partition.
type TradeStats struct {
	Total         int
	AvgProfit     float64
	AvgProfitPct  float64
	Winning       int
	WinningPct    float64
	WinningAvg    float64
	WinningAvgPct float64
	Losing        int
	LosingPct     float64
	LosingAvg     float64
	LosingAvgPct  float64
}

// TradeSummary partitions the realized trades into all/long/short and
// reports counts, mean profits and win rates per partition. A trade
// counts as winning when its realized percentage is strictly positive.
func (s *Statistics) TradeSummary() map[string]TradeStats {
	long := make([]SymbolProfit, 0, len(s.tradeProfit))
	short := make([]SymbolProfit, 0, len(s.tradeProfit))
	for _, tp := range s.tradeProfit {
		switch tp.Trade {
		case ledger.TradeLong:
			long = append(long, tp)
		case ledger.TradeShort:
			short = append(short, tp)
		}
	}
	return map[string]TradeStats{
		"All":   calcTrades(s.tradeProfit),
		"Long":  calcTrades(long),
		"Short": calcTrades(short),
	}
}

func calcTrades(trades []SymbolProfit) TradeStats {
	ts := TradeStats{Total: len(trades)}
	if len(trades) == 0 {
		return ts
	}
	var profits, pcts, winP, winPct, loseP, losePct []float64
	for _, t := range trades {
		profits = append(profits, t.RealizedProfit)
		pcts = append(pcts, t.RealizedPct)
		if t.RealizedPct > 0 {
			winP = append(winP, t.RealizedProfit)
			winPct = append(winPct, t.RealizedPct)
		} else {
			loseP = append(loseP, t.RealizedProfit)
			losePct = append(losePct, t.RealizedPct)
		}
	}
	ts.AvgProfit = stat.Mean(profits, nil)
	ts.AvgProfitPct = stat.Mean(pcts, nil)
	ts.Winning = len(winP)
	ts.WinningPct = float64(len(winP)) / float64(len(trades)) * 100
	ts.Losing = len(loseP)
	ts.LosingPct = float64(len(loseP)) / float64(len(trades)) * 100
	if len(winP) > 0 {
		ts.WinningAvg = stat.Mean(winP, nil)
		ts.WinningAvgPct = stat.Mean(winPct, nil)
	}
	if len(loseP) > 0 {
		ts.LosingAvg = stat.Mean(loseP, nil)
		ts.LosingAvgPct = stat.Mean(losePct, nil)
	}
	return ts
}

// MonthlyReturn is the month-over-month change of the NAV series.
type MonthlyReturn struct {
	Year   int
	Month  time.Month
	Return float64
}

// MonthlyReturns resamples the NAV series to one observation per
// calendar month (the last of each month) and reports the change from
// the previous month's close. The first month, having no predecessor,
// compares its close against its own first observation.
func (s *Statistics) MonthlyReturns() []MonthlyReturn {
	if len(s.equity) == 0 {
		return nil
	}
	type bucket struct {
		year        int
		month       time.Month
		first, last float64
	}
	var buckets []bucket
	for _, p := range s.equity {
		y, m := p.Timestamp.Year(), p.Timestamp.Month()
		if n := len(buckets); n > 0 && buckets[n-1].year == y && buckets[n-1].month == m {
			buckets[n-1].last = p.Value
			continue
		}
		buckets = append(buckets, bucket{year: y, month: m, first: p.Value, last: p.Value})
	}
	out := make([]MonthlyReturn, len(buckets))
	for i, b := range buckets {
		r := MonthlyReturn{Year: b.year, Month: b.month}
		if i == 0 {
			r.Return = b.last/b.first - 1
		} else {
			r.Return = b.last/buckets[i-1].last - 1
		}
		out[i] = r
	}
	return out
}
