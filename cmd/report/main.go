// Command report re-renders previously journaled replay runs.
package main

import (
	"flag"
	"fmt"
	"log"
	"sort"

	"quantfolio/pkg/journal"
	"quantfolio/pkg/stats"
)

var (
	dir  = flag.String("dir", "journal", "journal directory")
	last = flag.Bool("last", true, "render only the most recent run")
)

func main() {
	flag.Parse()

	paths, err := journal.ListRuns(*dir)
	if err != nil {
		log.Fatalf("list runs: %v", err)
	}
	if len(paths) == 0 {
		log.Fatalf("no run reports under %s", *dir)
	}
	if *last {
		paths = paths[len(paths)-1:]
	}
	for _, path := range paths {
		rep, err := journal.ReadRun(path)
		if err != nil {
			log.Fatalf("read run: %v", err)
		}
		render(path, rep)
	}
}

func render(path string, rep *journal.RunReport) {
	fmt.Printf("== %s (%s)\n", path, rep.Timestamp.Format("2006-01-02 15:04:05"))

	keys := make([]string, 0, len(rep.NAVSummary))
	for k := range rep.NAVSummary {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("%-22s %v\n", k, rep.NAVSummary[k])
	}
	for _, name := range []string{"All", "Long", "Short"} {
		ts, ok := rep.TradeSummary[name]
		if !ok {
			continue
		}
		fmt.Printf("%s trades: %d (win %.1f%%), avg P/L %.4f (%.2f%%)\n",
			name, ts.Total, ts.WinningPct, ts.AvgProfit, ts.AvgProfitPct)
	}
	if len(rep.Equity) > 0 {
		values := make([]float64, len(rep.Equity))
		for i, p := range rep.Equity {
			values[i] = p.Value
		}
		fmt.Printf("observations: %d, max drawdown: %.2f%%\n",
			len(values), stats.MaxDrawdown(values)*100)
	}
	for _, m := range rep.Monthly {
		fmt.Printf("%d-%02d: %+.2f%%\n", m.Year, int(m.Month), m.Return*100)
	}
}
