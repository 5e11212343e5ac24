package config

import (
	"fmt"
	"os"

	"quantfolio/pkg/replay"
)

// loadStrategy hydrates the strategy section from a YAML file.
func loadStrategy(path string) (*replay.StrategyConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read strategy %s: %w", path, err)
	}
	return replay.ParseStrategyConfig(data)
}

// BuildStrategy returns the configured strategy, defaulting to a 1%
// threshold at half exposure when no section file is given.
func (c *Config) BuildStrategy() (replay.Strategy, error) {
	if c.Strategy.Value == nil {
		return &replay.ThresholdStrategy{ThresholdPct: 1.0, Exposure: 0.5}, nil
	}
	return c.Strategy.Value.Build()
}
