package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quantfolio/pkg/stats"
)

func TestWriteReadRun(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)

	rep := &RunReport{
		Timestamp: time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC),
		Symbols:   []string{"BTC", "ETH"},
		Steps:     map[string]int{"BTC": 3, "ETH": 2},
		NAVSummary: map[string]any{
			"Net Profit": 525.0,
		},
		TradeSummary: map[string]stats.TradeStats{
			"All": {Total: 3, Winning: 2},
		},
		Equity: []stats.Point{
			{Timestamp: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Value: 10000},
		},
		Notes: "smoke run",
	}
	path, err := w.WriteRun(rep)
	require.NoError(t, err)
	assert.Equal(t, "run_20240301_123000_001.json", filepath.Base(path))

	got, err := ReadRun(path)
	require.NoError(t, err)
	assert.Equal(t, rep.Symbols, got.Symbols)
	assert.Equal(t, rep.Steps, got.Steps)
	assert.Equal(t, 525.0, got.NAVSummary["Net Profit"])
	assert.Equal(t, 3, got.TradeSummary["All"].Total)
	assert.Equal(t, "smoke run", got.Notes)
	require.Len(t, got.Equity, 1)
	assert.Equal(t, 10000.0, got.Equity[0].Value)
}

func TestWriteRun_SequenceAndDefaults(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)
	w.nowFn = func() time.Time { return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC) }

	p1, err := w.WriteRun(&RunReport{})
	require.NoError(t, err)
	p2, err := w.WriteRun(&RunReport{})
	require.NoError(t, err)
	assert.NotEqual(t, p1, p2, "sequence disambiguates same-second runs")

	got, err := ReadRun(p1)
	require.NoError(t, err)
	assert.False(t, got.Timestamp.IsZero(), "zero timestamp gets stamped at write time")

	_, err = w.WriteRun(nil)
	assert.Error(t, err)
}

func TestListRuns(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)
	w.nowFn = func() time.Time { return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC) }

	runs, err := ListRuns(dir)
	require.NoError(t, err)
	assert.Empty(t, runs)

	for i := 0; i < 3; i++ {
		_, err := w.WriteRun(&RunReport{})
		require.NoError(t, err)
	}
	runs, err = ListRuns(dir)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Less(t, runs[0], runs[2], "lexical order is chronological")
}

func TestReadRun_Missing(t *testing.T) {
	_, err := ReadRun(filepath.Join(t.TempDir(), "run_nope.json"))
	assert.Error(t, err)
}
