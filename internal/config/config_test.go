package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quantfolio/pkg/replay"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "strategy.yaml", `
kind: threshold
threshold:
  threshold_pct: 2.0
  exposure: 0.8
`)
	main := writeFile(t, dir, "quantfolio.yaml", `
Fund: 50000
Allocations:
  BTC: 0.6
  ETH: 0.2
Series:
  BTC: data/btc.csv
  ETH: data/eth.csv
StartTime: 2024-01-01
EndTime: 2024-06-30T00:00:00Z
Strategy:
  File: strategy.yaml
`)

	cfg, err := Load(main)
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.Env, "env defaults to test")
	assert.True(t, cfg.IsTestEnv())
	assert.Equal(t, 50000.0, cfg.Fund)
	assert.Equal(t, 0.001, cfg.CommissionPct)
	assert.Equal(t, 0.03, cfg.RiskFreeRate)
	assert.Equal(t, "journal", cfg.JournalDir)
	assert.Equal(t, main, cfg.MainPath())

	// Relative series paths resolve against the config file's directory.
	assert.Equal(t, filepath.Join(dir, "data", "btc.csv"), cfg.Series["BTC"])

	window, err := cfg.Window()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), window[0])
	assert.Equal(t, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), window[1])

	s, err := cfg.BuildStrategy()
	require.NoError(t, err)
	ts, ok := s.(*replay.ThresholdStrategy)
	require.True(t, ok, "hydrated strategy section")
	assert.Equal(t, 2.0, ts.ThresholdPct)
	assert.Equal(t, 0.8, ts.Exposure)
}

func TestLoad_DefaultStrategy(t *testing.T) {
	dir := t.TempDir()
	main := writeFile(t, dir, "quantfolio.yaml", `
Allocations:
  BTC: 1
Series:
  BTC: btc.csv
`)
	cfg, err := Load(main)
	require.NoError(t, err)

	s, err := cfg.BuildStrategy()
	require.NoError(t, err)
	ts, ok := s.(*replay.ThresholdStrategy)
	require.True(t, ok)
	assert.Equal(t, 1.0, ts.ThresholdPct)
	assert.Equal(t, 0.5, ts.Exposure)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Fund:        1000,
			Allocations: map[string]float64{"BTC": 0.5},
			Series:      map[string]string{"BTC": "btc.csv"},
		}
	}

	require.NoError(t, base().Validate())

	c := base()
	c.Fund = 0
	assert.Error(t, c.Validate())

	c = base()
	c.Allocations = nil
	assert.Error(t, c.Validate())

	c = base()
	c.Allocations["BTC"] = -0.5
	assert.Error(t, c.Validate())

	c = base()
	c.Allocations = map[string]float64{"BTC": 0.7, "ETH": 0.5}
	c.Series["ETH"] = "eth.csv"
	assert.Error(t, c.Validate(), "weights cannot exceed 1")

	c = base()
	c.Allocations["ETH"] = 0.2
	assert.ErrorContains(t, c.Validate(), "no price series for allocated symbol ETH")

	c = base()
	c.CommissionPct = 1
	assert.Error(t, c.Validate())
}

func TestWindow(t *testing.T) {
	c := &Config{}
	window, err := c.Window()
	require.NoError(t, err)
	assert.True(t, window[0].IsZero())
	assert.True(t, window[1].IsZero())

	c = &Config{StartTime: "2024-06-30", EndTime: "2024-01-01"}
	_, err = c.Window()
	assert.ErrorContains(t, err, "precedes")

	c = &Config{StartTime: "yesterday"}
	_, err = c.Window()
	assert.Error(t, err)
}
