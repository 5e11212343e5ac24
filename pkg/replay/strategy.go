package replay

import (
	"context"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"quantfolio/pkg/ledger"
)

// ThresholdStrategy moves to a long exposure when price rises by more
// than ThresholdPct versus the previous tick, to a short exposure when
// it falls by more, and otherwise holds the current target. The first
// tick of each symbol only primes the reference price.
type ThresholdStrategy struct {
	ThresholdPct float64 `yaml:"threshold_pct"`
	Exposure     float64 `yaml:"exposure"`

	mu   sync.Mutex
	prev map[string]float64
}

func (s *ThresholdStrategy) Decide(ctx context.Context, symbol string, tick *Tick, pos *ledger.Position) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.prev == nil {
		s.prev = make(map[string]float64)
	}
	last, seen := s.prev[symbol]
	s.prev[symbol] = tick.Price
	if !seen || last == 0 {
		return pos.StrategyExposure(), nil
	}
	pct := (tick.Price - last) / last * 100
	switch {
	case pct >= s.ThresholdPct:
		return s.Exposure, nil
	case pct <= -s.ThresholdPct:
		return -s.Exposure, nil
	default:
		return pos.StrategyExposure(), nil
	}
}

// Validate checks the configured thresholds.
func (s *ThresholdStrategy) Validate() error {
	if s.ThresholdPct <= 0 {
		return fmt.Errorf("replay config: threshold_pct must be positive, got %v", s.ThresholdPct)
	}
	if s.Exposure <= 0 || s.Exposure > 1 {
		return fmt.Errorf("replay config: exposure must be in (0,1], got %v", s.Exposure)
	}
	return nil
}

// ScheduleStrategy replays a preset exposure sequence per symbol; once
// a sequence is exhausted the last target is held. Useful for replaying
// recorded decision series.
type ScheduleStrategy struct {
	Targets map[string][]float64 `yaml:"targets"`

	mu  sync.Mutex
	pos map[string]int
}

func (s *ScheduleStrategy) Decide(ctx context.Context, symbol string, tick *Tick, pos *ledger.Position) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seq, ok := s.Targets[symbol]
	if !ok || len(seq) == 0 {
		return pos.StrategyExposure(), nil
	}
	if s.pos == nil {
		s.pos = make(map[string]int)
	}
	i := s.pos[symbol]
	if i >= len(seq) {
		return seq[len(seq)-1], nil
	}
	s.pos[symbol] = i + 1
	return seq[i], nil
}

// StrategyConfig selects and parameterizes a strategy from a YAML
// section file.
type StrategyConfig struct {
	Kind      string             `yaml:"kind"` // threshold | schedule
	Threshold *ThresholdStrategy `yaml:"threshold,omitempty"`
	Schedule  *ScheduleStrategy  `yaml:"schedule,omitempty"`
}

// ParseStrategyConfig reads a strategy section from YAML bytes.
func ParseStrategyConfig(data []byte) (*StrategyConfig, error) {
	var cfg StrategyConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("replay config: unmarshal strategy: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the selected strategy section.
func (c *StrategyConfig) Validate() error {
	switch c.Kind {
	case "threshold":
		if c.Threshold == nil {
			return fmt.Errorf("replay config: threshold section missing")
		}
		return c.Threshold.Validate()
	case "schedule":
		if c.Schedule == nil || len(c.Schedule.Targets) == 0 {
			return fmt.Errorf("replay config: schedule section missing or empty")
		}
		return nil
	default:
		return fmt.Errorf("replay config: unknown strategy kind %q", c.Kind)
	}
}

// Build returns the configured strategy.
func (c *StrategyConfig) Build() (Strategy, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	switch c.Kind {
	case "threshold":
		return c.Threshold, nil
	default:
		return c.Schedule, nil
	}
}
