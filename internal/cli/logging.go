// Package cli holds shared helpers for the runner binaries.
package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"quantfolio/internal/config"
	"quantfolio/pkg/stats"
)

// ConfigSummaryLines returns human readable lines describing the loaded
// run config.
func ConfigSummaryLines(cfg *config.Config) []string {
	if cfg == nil {
		return []string{"Configuration: <nil>"}
	}
	symbols := make([]string, 0, len(cfg.Allocations))
	for s := range cfg.Allocations {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	lines := []string{
		fmt.Sprintf("Environment: %s", cfg.Env),
		fmt.Sprintf("Fund: %.2f", cfg.Fund),
		fmt.Sprintf("Symbols: %s", strings.Join(symbols, ", ")),
		fmt.Sprintf("Commission: %.4f%%", cfg.CommissionPct*100),
		fmt.Sprintf("Risk-free rate: %.2f%%", cfg.RiskFreeRate*100),
		fmt.Sprintf("Postgres: %s", presence(cfg.Postgres.DSN != "")),
		fmt.Sprintf("Journal dir: %s", cfg.JournalDir),
		strategyLine(cfg),
	}
	return lines
}

// LogConfigSummary emits the configuration summary using logx.
func LogConfigSummary(cfg *config.Config) {
	logx.Info("configuration summary")
	for _, line := range ConfigSummaryLines(cfg) {
		logx.Infof("config • %s", line)
	}
}

// PrintNAVSummary renders the ordered performance table to stdout.
func PrintNAVSummary(rows []stats.Row) {
	for _, row := range rows {
		fmt.Printf("%-22s %v\n", row.Key, row.Value)
	}
}

// PrintTradeSummary renders the per-partition trade breakdown.
func PrintTradeSummary(parts map[string]stats.TradeStats) {
	for _, name := range []string{"All", "Long", "Short"} {
		ts := parts[name]
		fmt.Printf("%s trades: %d (win %.1f%%), avg P/L %.4f (%.2f%%)\n",
			name, ts.Total, ts.WinningPct, ts.AvgProfit, ts.AvgProfitPct)
	}
}

func presence(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func strategyLine(cfg *config.Config) string {
	switch {
	case strings.TrimSpace(cfg.Strategy.File) != "":
		return fmt.Sprintf("Strategy: %s", cfg.Strategy.File)
	case cfg.Strategy.Value != nil:
		return "Strategy: inline"
	default:
		return "Strategy: default threshold"
	}
}
