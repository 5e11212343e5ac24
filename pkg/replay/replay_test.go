package replay

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quantfolio/pkg/commission"
	"quantfolio/pkg/ledger"
	"quantfolio/pkg/portfolio"
)

var day0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// captureRecorder collects forwarded log entries. Symbols replay in
// parallel, so it locks.
type captureRecorder struct {
	mu       sync.Mutex
	trades   map[string][]ledger.TradeRecord
	balances map[string][]ledger.BalanceRecord
}

func newCaptureRecorder() *captureRecorder {
	return &captureRecorder{
		trades:   make(map[string][]ledger.TradeRecord),
		balances: make(map[string][]ledger.BalanceRecord),
	}
}

func (c *captureRecorder) RecordTrade(ctx context.Context, symbol string, rec ledger.TradeRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.trades[symbol] = append(c.trades[symbol], rec)
	return nil
}

func (c *captureRecorder) RecordBalance(ctx context.Context, symbol string, rec ledger.BalanceRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.balances[symbol] = append(c.balances[symbol], rec)
	return nil
}

func TestEngine_Run(t *testing.T) {
	book, err := portfolio.New(10000,
		map[string]float64{"BTC": 0.5, "ETH": 0.3},
		ledger.WithCommission(commission.MustPercentage(0)))
	require.NoError(t, err)

	rec := newCaptureRecorder()
	engine := &Engine{
		Book: book,
		Feeders: map[string]Feeder{
			"BTC": NewSeriesFeeder("BTC", []float64{100, 110, 121}, day0, 0),
			"ETH": NewSeriesFeeder("ETH", []float64{50, 50}, day0, 0),
		},
		Strategy: &ScheduleStrategy{Targets: map[string][]float64{
			"BTC": {0.5, 0.5, 0},
			"ETH": {-0.5},
		}},
		Recorder: rec,
	}

	res, err := engine.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"BTC": 3, "ETH": 2}, res.Steps)

	// BTC: long 25 @100, hold, close @121. ETH: short 30 @50, hold.
	btc := book.Position("BTC")
	assert.InDelta(t, 0, btc.Amount(), ledger.Tolerance)
	assert.InDelta(t, 5525, btc.Fund(), ledger.Tolerance)
	eth := book.Position("ETH")
	assert.InDelta(t, -30, eth.Amount(), ledger.Tolerance)

	require.Len(t, res.Equity, 3)
	assert.InDelta(t, 10000, res.Equity[0].Value, ledger.Tolerance)
	assert.InDelta(t, 10250, res.Equity[1].Value, ledger.Tolerance)
	assert.InDelta(t, 10525, res.Equity[2].Value, ledger.Tolerance, "ETH forward-fills its last snapshot")

	// Recorder saw every appended log entry exactly once.
	assert.Len(t, rec.trades["BTC"], 2)
	assert.Len(t, rec.trades["ETH"], 1)
	assert.Equal(t, ledger.TradeLong, rec.trades["BTC"][0].Trade)
	assert.Equal(t, ledger.TradeClose, rec.trades["BTC"][1].Trade)
	assert.Len(t, rec.balances["BTC"], 3)
	assert.Len(t, rec.balances["ETH"], 2)

	rows := make(map[string]any)
	for _, r := range res.NAVSummary {
		rows[r.Key] = r.Value
	}
	assert.InDelta(t, 525, rows["Net Profit"].(float64), ledger.Tolerance)
	assert.Equal(t, day0, rows["Trade Start"])
	assert.Equal(t, day0.Add(48*time.Hour), rows["Trade End"])
}

func TestEngine_WindowOverride(t *testing.T) {
	book, err := portfolio.New(1000, map[string]float64{"BTC": 1})
	require.NoError(t, err)

	start := day0.Add(-30 * 24 * time.Hour)
	end := day0.Add(30 * 24 * time.Hour)
	engine := &Engine{
		Book:     book,
		Feeders:  map[string]Feeder{"BTC": NewSeriesFeeder("BTC", []float64{100, 101}, day0, 0)},
		Strategy: &ScheduleStrategy{},
		Start:    start,
		End:      end,
	}
	res, err := engine.Run(context.Background())
	require.NoError(t, err)

	rows := make(map[string]any)
	for _, r := range res.NAVSummary {
		rows[r.Key] = r.Value
	}
	assert.Equal(t, start, rows["Trade Start"], "explicit window wins over observed stamps")
	assert.Equal(t, end, rows["Trade End"])
}

func TestEngine_Misconfigured(t *testing.T) {
	_, err := (&Engine{}).Run(context.Background())
	assert.Error(t, err)

	book, err := portfolio.New(1000, map[string]float64{"BTC": 0.5, "ETH": 0.5})
	require.NoError(t, err)
	engine := &Engine{
		Book:     book,
		Feeders:  map[string]Feeder{"BTC": NewSeriesFeeder("BTC", []float64{100}, day0, 0)},
		Strategy: &ScheduleStrategy{},
	}
	_, err = engine.Run(context.Background())
	assert.ErrorContains(t, err, "no feeder for symbol ETH")
}

func TestThresholdStrategy(t *testing.T) {
	s := &ThresholdStrategy{ThresholdPct: 1, Exposure: 0.5}
	pos := ledger.NewPosition(1000)
	ctx := context.Background()

	decide := func(price float64) float64 {
		t.Helper()
		got, err := s.Decide(ctx, "BTC", &Tick{Timestamp: day0, Price: price}, pos)
		require.NoError(t, err)
		return got
	}

	assert.Zero(t, decide(100), "first tick only primes the reference")
	assert.Equal(t, 0.5, decide(101.5), "rise above threshold goes long")
	assert.Zero(t, decide(101), "small move holds the current target")
	assert.Equal(t, -0.5, decide(99), "drop below threshold goes short")
}

func TestThresholdStrategy_Validate(t *testing.T) {
	assert.Error(t, (&ThresholdStrategy{ThresholdPct: 0, Exposure: 0.5}).Validate())
	assert.Error(t, (&ThresholdStrategy{ThresholdPct: 1, Exposure: 1.5}).Validate())
	assert.NoError(t, (&ThresholdStrategy{ThresholdPct: 1, Exposure: 1}).Validate())
}

func TestScheduleStrategy_HoldsLastTarget(t *testing.T) {
	s := &ScheduleStrategy{Targets: map[string][]float64{"BTC": {0.3, -0.3}}}
	pos := ledger.NewPosition(1000)
	ctx := context.Background()
	tick := &Tick{Timestamp: day0, Price: 100}

	for _, want := range []float64{0.3, -0.3, -0.3, -0.3} {
		got, err := s.Decide(ctx, "BTC", tick, pos)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	got, err := s.Decide(ctx, "ETH", tick, pos)
	require.NoError(t, err)
	assert.Zero(t, got, "unknown symbol holds the position's target")
}

func TestCSVFeeder(t *testing.T) {
	const data = `timestamp,close
2024-01-01T00:00:00Z,100.5
2024-01-02,101
1704240000,102.25
`
	f, err := NewCSVFeeder("BTC", strings.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, 3, f.Len())

	ctx := context.Background()
	tick, ok, err := f.Next(ctx, "BTC")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), tick.Timestamp)
	assert.Equal(t, 100.5, tick.Price)

	tick, _, _ = f.Next(ctx, "BTC")
	assert.Equal(t, 101.0, tick.Price)
	tick, _, _ = f.Next(ctx, "BTC")
	assert.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), tick.Timestamp)
	assert.Equal(t, 102.25, tick.Price)

	_, ok, err = f.Next(ctx, "BTC")
	require.NoError(t, err)
	assert.False(t, ok, "exhausted feeder reports done")
}

func TestCSVFeeder_BadRow(t *testing.T) {
	_, err := NewCSVFeeder("BTC", strings.NewReader("2024-01-01,100\nnot-a-date,101\n"))
	assert.ErrorContains(t, err, "row 2")
}

func TestCSVFeeder_ShortRow(t *testing.T) {
	// Only row 0 gets header tolerance; a truncated row mid-file is data
	// loss, not a header.
	_, err := NewCSVFeeder("BTC", strings.NewReader("2024-01-01,100\n101\n2024-01-03,102\n"))
	assert.ErrorContains(t, err, "row 2")

	f, err := NewCSVFeeder("BTC", strings.NewReader("timestamp\n2024-01-01,100\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, f.Len(), "single-column header row is skipped")
}

func TestParseStrategyConfig(t *testing.T) {
	cfg, err := ParseStrategyConfig([]byte(`
kind: threshold
threshold:
  threshold_pct: 2
  exposure: 0.8
`))
	require.NoError(t, err)
	s, err := cfg.Build()
	require.NoError(t, err)
	ts, ok := s.(*ThresholdStrategy)
	require.True(t, ok)
	assert.Equal(t, 2.0, ts.ThresholdPct)
	assert.Equal(t, 0.8, ts.Exposure)

	_, err = ParseStrategyConfig([]byte("kind: martingale\n"))
	assert.ErrorContains(t, err, "unknown strategy kind")

	_, err = ParseStrategyConfig([]byte("kind: schedule\n"))
	assert.Error(t, err, "schedule without targets")
}
