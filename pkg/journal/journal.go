// Package journal persists replay run reports to disk as JSON files.
package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"quantfolio/pkg/stats"
)

// RunReport captures the outcome of one replay run for audit and
// offline rendering.
type RunReport struct {
	Timestamp    time.Time                   `json:"timestamp"`
	Symbols      []string                    `json:"symbols"`
	Steps        map[string]int              `json:"steps"`
	NAVSummary   map[string]any              `json:"nav_summary"`
	TradeSummary map[string]stats.TradeStats `json:"trade_summary"`
	Equity       []stats.Point               `json:"equity"`
	Monthly      []stats.MonthlyReturn       `json:"monthly_returns,omitempty"`
	Notes        string                      `json:"notes,omitempty"`
}

// Writer persists run reports to a directory, one JSON file per run.
type Writer struct {
	dir   string
	seq   int
	nowFn func() time.Time
}

// NewWriter constructs a journal writer rooted at dir.
func NewWriter(dir string) *Writer {
	if dir == "" {
		dir = "journal"
	}
	_ = os.MkdirAll(dir, 0o755)
	return &Writer{dir: dir, nowFn: time.Now}
}

// WriteRun writes a run report to a timestamped JSON file and returns
// its path.
func (w *Writer) WriteRun(rep *RunReport) (string, error) {
	if rep == nil {
		return "", fmt.Errorf("journal: nil report")
	}
	if rep.Timestamp.IsZero() {
		rep.Timestamp = w.nowFn()
	}
	w.seq++
	name := fmt.Sprintf("run_%s_%03d.json", rep.Timestamp.UTC().Format("20060102_150405"), w.seq)
	path := filepath.Join(w.dir, name)
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// ReadRun loads a previously written run report.
func ReadRun(path string) (*RunReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("journal: read %s: %w", path, err)
	}
	var rep RunReport
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("journal: decode %s: %w", path, err)
	}
	return &rep, nil
}

// ListRuns returns run report paths under dir in lexical (and therefore
// chronological) order.
func ListRuns(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "run_*.json"))
	if err != nil {
		return nil, fmt.Errorf("journal: list %s: %w", dir, err)
	}
	return matches, nil
}
