package replay

import (
	"context"
	"time"
)

// SeriesFeeder emits ticks from a static price series with synthetic
// daily timestamps, handy for tests and quick experiments.
type SeriesFeeder struct {
	symbol string
	prices []float64
	start  time.Time
	step   time.Duration
	idx    int
}

// NewSeriesFeeder builds a feeder over prices starting at start, one
// tick per step. A zero step defaults to one day.
func NewSeriesFeeder(symbol string, prices []float64, start time.Time, step time.Duration) *SeriesFeeder {
	if step == 0 {
		step = 24 * time.Hour
	}
	return &SeriesFeeder{symbol: symbol, prices: prices, start: start, step: step}
}

func (f *SeriesFeeder) Next(ctx context.Context, symbol string) (*Tick, bool, error) {
	if f.idx >= len(f.prices) {
		return nil, false, nil
	}
	tick := &Tick{
		Timestamp: f.start.Add(time.Duration(f.idx) * f.step),
		Price:     f.prices[f.idx],
	}
	f.idx++
	return tick, true, nil
}
