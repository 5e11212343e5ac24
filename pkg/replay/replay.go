// Package replay drives ordered price/decision series through per-symbol
// position ledgers and aggregates the results.
package replay

import (
	"context"
	"fmt"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/mr"

	"quantfolio/pkg/ledger"
	"quantfolio/pkg/portfolio"
	"quantfolio/pkg/stats"
)

// Tick is one observation of a symbol's price series. BaseRate, when
// positive, updates the position's conversion rate before the exposure
// decision is applied.
type Tick struct {
	Timestamp time.Time
	Price     float64
	BaseRate  float64
}

// Feeder yields sequential ticks for a symbol.
type Feeder interface {
	Next(ctx context.Context, symbol string) (*Tick, bool, error)
}

// Strategy maps a tick into a target exposure in [-1, 1], signed by
// direction. The position is read-only input: strategies may inspect
// it but must never trade through it.
type Strategy interface {
	Decide(ctx context.Context, symbol string, tick *Tick, pos *ledger.Position) (float64, error)
}

// Recorder receives ledger output as it is produced. Implementations
// mirror the logs to a durable store; the engine does not depend on
// their success ordering beyond sequential-per-symbol delivery.
type Recorder interface {
	RecordTrade(ctx context.Context, symbol string, rec ledger.TradeRecord) error
	RecordBalance(ctx context.Context, symbol string, rec ledger.BalanceRecord) error
}

// Engine replays one feeder per symbol against a book's positions.
// Symbols replay in parallel: each position is owned by exactly one
// worker for the whole run, and aggregation waits for every symbol.
type Engine struct {
	Book         *portfolio.Book
	Feeders      map[string]Feeder
	Strategy     Strategy
	Recorder     Recorder
	RiskFreeRate float64

	// Start/End pin the reporting window; when zero the window is
	// taken from the first and last observed timestamps.
	Start time.Time
	End   time.Time
}

// Result summarizes a finished replay.
type Result struct {
	Steps        map[string]int
	Stats        *stats.Statistics
	NAVSummary   []stats.Row
	TradeSummary map[string]stats.TradeStats
	Equity       []stats.Point
}

// Run replays every symbol to exhaustion, then aggregates. The replay
// window is taken from the first and last observed timestamps.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	if e.Book == nil || e.Strategy == nil || len(e.Feeders) == 0 {
		return nil, fmt.Errorf("replay: engine not fully configured")
	}
	for _, symbol := range e.Book.Symbols() {
		if _, ok := e.Feeders[symbol]; !ok {
			return nil, fmt.Errorf("replay: no feeder for symbol %s", symbol)
		}
	}

	res := &Result{Steps: make(map[string]int, len(e.Feeders))}
	steps := make(map[string]*symbolRun, len(e.Feeders))
	jobs := make([]func() error, 0, len(e.Feeders))
	for _, symbol := range e.Book.Symbols() {
		run := &symbolRun{
			symbol:   symbol,
			feeder:   e.Feeders[symbol],
			pos:      e.Book.Position(symbol),
			strategy: e.Strategy,
			recorder: e.Recorder,
		}
		steps[symbol] = run
		jobs = append(jobs, func() error { return run.replay(ctx) })
	}
	if err := mr.Finish(jobs...); err != nil {
		return nil, err
	}

	start, end := e.Start, e.End
	for symbol, run := range steps {
		res.Steps[symbol] = run.steps
		if run.steps == 0 {
			continue
		}
		if e.Start.IsZero() && (start.IsZero() || run.first.Before(start)) {
			start = run.first
		}
		if e.End.IsZero() && run.last.After(end) {
			end = run.last
		}
	}

	st := stats.New(stats.Config{
		Fund:         e.Book.Fund(),
		StartTime:    start,
		EndTime:      end,
		RiskFreeRate: e.RiskFreeRate,
	}, e.Book.Positions(), e.Book.FixedCash())
	if err := st.Calculate(); err != nil {
		return nil, err
	}
	res.Stats = st
	res.NAVSummary = st.NAVSummary()
	res.TradeSummary = st.TradeSummary()
	res.Equity = st.Equity()
	logx.WithContext(ctx).Infof("replay finished: %d symbols, %s to %s",
		len(e.Feeders), start.Format(time.DateOnly), end.Format(time.DateOnly))
	return res, nil
}

// symbolRun owns one position for the duration of its replay.
type symbolRun struct {
	symbol   string
	feeder   Feeder
	pos      *ledger.Position
	strategy Strategy
	recorder Recorder

	steps       int
	first, last time.Time
	tradeSeen   int
	balanceSeen int
}

func (r *symbolRun) replay(ctx context.Context) error {
	for {
		tick, ok, err := r.feeder.Next(ctx, r.symbol)
		if err != nil {
			return fmt.Errorf("replay %s: feed: %w", r.symbol, err)
		}
		if !ok {
			return nil
		}
		if r.steps == 0 {
			r.first = tick.Timestamp
		}
		r.last = tick.Timestamp
		r.steps++

		if tick.BaseRate > 0 {
			r.pos.UpdateBaseRate(tick.BaseRate)
		}
		target, err := r.strategy.Decide(ctx, r.symbol, tick, r.pos)
		if err != nil {
			return fmt.Errorf("replay %s: decide: %w", r.symbol, err)
		}
		if err := r.pos.Allocate(target, tick.Price, tick.Timestamp, ""); err != nil {
			return fmt.Errorf("replay %s: allocate to %v: %w", r.symbol, target, err)
		}
		r.pos.EndDate(tick.Timestamp, tick.Price)

		if err := r.flush(ctx); err != nil {
			return err
		}
	}
}

// flush forwards log entries appended since the last step.
func (r *symbolRun) flush(ctx context.Context) error {
	if r.recorder == nil {
		return nil
	}
	trades := r.pos.TradeLog()
	for ; r.tradeSeen < len(trades); r.tradeSeen++ {
		if err := r.recorder.RecordTrade(ctx, r.symbol, trades[r.tradeSeen]); err != nil {
			return fmt.Errorf("replay %s: record trade: %w", r.symbol, err)
		}
	}
	balances := r.pos.BalanceLog()
	for ; r.balanceSeen < len(balances); r.balanceSeen++ {
		if err := r.recorder.RecordBalance(ctx, r.symbol, balances[r.balanceSeen]); err != nil {
			return fmt.Errorf("replay %s: record balance: %w", r.symbol, err)
		}
	}
	return nil
}
