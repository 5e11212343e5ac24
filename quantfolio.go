package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"quantfolio/internal/cli"
	"quantfolio/internal/config"
	"quantfolio/internal/persistence"
	"quantfolio/internal/svc"
	"quantfolio/pkg/commission"
	"quantfolio/pkg/journal"
	"quantfolio/pkg/ledger"
	"quantfolio/pkg/portfolio"
	"quantfolio/pkg/replay"
)

var configFile = flag.String("f", "etc/quantfolio.yaml", "the config file")

func main() {
	flag.Parse()

	cfg := config.MustLoad(*configFile)
	cli.LogConfigSummary(cfg)

	runID := time.Now().UTC().Format("20060102T150405Z")
	ctx := svc.NewServiceContext(cfg, runID)

	res, book, err := run(context.Background(), ctx)
	if err != nil {
		log.Fatalf("replay: %v", err)
	}

	cli.PrintNAVSummary(res.NAVSummary)
	cli.PrintTradeSummary(res.TradeSummary)

	navRows := make(map[string]any, len(res.NAVSummary))
	for _, row := range res.NAVSummary {
		navRows[row.Key] = row.Value
	}
	path, err := ctx.Journal.WriteRun(&journal.RunReport{
		Symbols:      book.Symbols(),
		Steps:        res.Steps,
		NAVSummary:   navRows,
		TradeSummary: res.TradeSummary,
		Equity:       res.Equity,
		Monthly:      res.Stats.MonthlyReturns(),
	})
	if err != nil {
		log.Fatalf("write run report: %v", err)
	}
	fmt.Printf("run report written to %s\n", path)

	if rec, ok := ctx.Recorder.(*persistence.Service); ok {
		if err := rec.SaveBook(context.Background(), book); err != nil {
			log.Fatalf("save book: %v", err)
		}
	}
}

func run(ctx context.Context, s *svc.ServiceContext) (*replay.Result, *portfolio.Book, error) {
	cfg := s.Config

	comm, err := commission.NewPercentage(cfg.CommissionPct)
	if err != nil {
		return nil, nil, err
	}
	book, err := portfolio.New(cfg.Fund, cfg.Allocations, ledger.WithCommission(comm))
	if err != nil {
		return nil, nil, err
	}

	feeders := make(map[string]replay.Feeder, len(cfg.Series))
	for symbol, path := range cfg.Series {
		feeder, err := replay.NewCSVFeederFromFile(symbol, path)
		if err != nil {
			return nil, nil, err
		}
		feeders[symbol] = feeder
	}
	strategy, err := cfg.BuildStrategy()
	if err != nil {
		return nil, nil, err
	}
	window, err := cfg.Window()
	if err != nil {
		return nil, nil, err
	}

	engine := &replay.Engine{
		Book:         book,
		Feeders:      feeders,
		Strategy:     strategy,
		Recorder:     s.Recorder,
		RiskFreeRate: cfg.RiskFreeRate,
		Start:        window[0],
		End:          window[1],
	}
	res, err := engine.Run(ctx)
	if err != nil {
		return nil, nil, err
	}
	return res, book, nil
}
