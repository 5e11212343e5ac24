package portfolio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quantfolio/pkg/commission"
	"quantfolio/pkg/ledger"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestNew_SeedsByWeight(t *testing.T) {
	book, err := New(100000, map[string]float64{"BTC": 0.5, "ETH": 0.3})
	require.NoError(t, err)

	assert.Equal(t, 100000.0, book.Fund())
	assert.Equal(t, []string{"BTC", "ETH"}, book.Symbols())
	assert.Equal(t, 50000.0, book.Position("BTC").Fund())
	assert.Equal(t, 30000.0, book.Position("ETH").Fund())
	assert.InDelta(t, 20000.0, book.FixedCash(), ledger.Tolerance)
	assert.Nil(t, book.Position("XRP"))
}

func TestNew_Invalid(t *testing.T) {
	_, err := New(0, map[string]float64{"BTC": 0.5})
	assert.Error(t, err)

	_, err = New(1000, nil)
	assert.Error(t, err)

	_, err = New(1000, map[string]float64{"BTC": -0.1})
	assert.Error(t, err)

	_, err = New(1000, map[string]float64{"BTC": 0.7, "ETH": 0.5})
	assert.Error(t, err, "weights cannot sum above 1")
}

func TestRebalance_MovesOnlyFreeCash(t *testing.T) {
	noFee := ledger.WithCommission(commission.MustPercentage(0))
	book, err := New(10000, map[string]float64{"BTC": 0.5, "ETH": 0.5}, noFee)
	require.NoError(t, err)

	// Tie up part of BTC's cash in inventory first.
	require.NoError(t, book.Position("BTC").Long(10, 100, t0, ""))

	require.NoError(t, book.Rebalance(map[string]float64{"BTC": 1, "ETH": 1}))

	// Pool was 4000 + 5000; inventory stays with BTC.
	assert.InDelta(t, 4500.0, book.Position("BTC").Fund(), ledger.Tolerance)
	assert.InDelta(t, 4500.0, book.Position("ETH").Fund(), ledger.Tolerance)
	assert.InDelta(t, 10.0, book.Position("BTC").Amount(), ledger.Tolerance)

	err = book.Rebalance(map[string]float64{"XRP": 1})
	assert.Error(t, err, "unknown symbol must fail before draining anything")
}

func TestUpdateBaseRate(t *testing.T) {
	book, err := New(1000, map[string]float64{"BTC": 1})
	require.NoError(t, err)

	require.NoError(t, book.UpdateBaseRate("BTC", 7.3))
	assert.Equal(t, 7.3, book.Position("BTC").BaseRate())
	assert.Error(t, book.UpdateBaseRate("ETH", 1))
}

func TestSnapshot_RoundTrip(t *testing.T) {
	noFee := ledger.WithCommission(commission.MustPercentage(0))
	book, err := New(10000, map[string]float64{"BTC": 0.6, "ETH": 0.2}, noFee)
	require.NoError(t, err)
	require.NoError(t, book.Position("BTC").Allocate(0.5, 100, t0, ""))
	require.NoError(t, book.Position("ETH").Allocate(-0.25, 40, t0, ""))
	book.Position("BTC").EndDate(t0, 100)

	data, err := book.Snapshot().Encode()
	require.NoError(t, err)

	snap, err := DecodeSnapshot(data)
	require.NoError(t, err)
	restored, err := Restore(snap, noFee)
	require.NoError(t, err)

	assert.Equal(t, book.Fund(), restored.Fund())
	assert.Equal(t, book.Symbols(), restored.Symbols())
	for _, symbol := range book.Symbols() {
		orig, got := book.Position(symbol), restored.Position(symbol)
		assert.Equal(t, orig.Fund(), got.Fund(), symbol)
		assert.Equal(t, orig.Amount(), got.Amount(), symbol)
		assert.Equal(t, orig.EntryPrice(), got.EntryPrice(), symbol)
		assert.Equal(t, orig.StrategyExposure(), got.StrategyExposure(), symbol)
		assert.Equal(t, len(orig.TradeLog()), len(got.TradeLog()), symbol)
		assert.Equal(t, len(orig.BalanceLog()), len(got.BalanceLog()), symbol)
	}

	// A restored book keeps trading from where it stopped.
	require.NoError(t, restored.Position("BTC").Allocate(0, 100, t0, ""))
	assert.InDelta(t, 0, restored.Position("BTC").Amount(), ledger.Tolerance)
}

func TestSnapshot_RestoreInvalid(t *testing.T) {
	_, err := Restore(nil)
	assert.Error(t, err)

	_, err = Restore(&Snapshot{Fund: 100})
	assert.Error(t, err, "snapshot without positions")
}
