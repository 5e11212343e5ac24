// Package persistence mirrors replay output to the Postgres repos.
package persistence

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"quantfolio/internal/repo"
	"quantfolio/pkg/ledger"
	"quantfolio/pkg/portfolio"
	"quantfolio/pkg/replay"
)

var _ replay.Recorder = (*Service)(nil)

// Service implements the replay Recorder hooks over the repository set,
// scoping everything it writes to one run ID.
type Service struct {
	runID string
	repos *repo.Set
}

// New constructs a persistence service for a run.
func New(runID string, repos *repo.Set) *Service {
	return &Service{runID: runID, repos: repos}
}

// RecordTrade mirrors one executed trade to the run_trades table.
func (s *Service) RecordTrade(ctx context.Context, symbol string, rec ledger.TradeRecord) error {
	return s.repos.Trades.Insert(ctx, s.runID, symbol, rec)
}

// RecordBalance mirrors one balance snapshot to the run_balances table.
func (s *Service) RecordBalance(ctx context.Context, symbol string, rec ledger.BalanceRecord) error {
	return s.repos.Balances.Insert(ctx, s.runID, symbol, rec)
}

// SaveBook persists the final book image under this run's ID so a later
// session can resume from it.
func (s *Service) SaveBook(ctx context.Context, book *portfolio.Book) error {
	if err := s.repos.Books.SaveSnapshot(ctx, "book", s.runID, book.Snapshot()); err != nil {
		return err
	}
	logx.WithContext(ctx).Infof("persisted book snapshot for run %s", s.runID)
	return nil
}

// LoadBook restores the book image saved under key.
func (s *Service) LoadBook(ctx context.Context, key string, opts ...ledger.Option) (*portfolio.Book, error) {
	snap, err := s.repos.Books.LoadSnapshot(ctx, "book", key)
	if err != nil {
		return nil, err
	}
	return portfolio.Restore(snap, opts...)
}
