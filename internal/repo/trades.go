package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/zeromicro/go-zero/core/stores/sqlx"

	"quantfolio/pkg/ledger"
)

// TradeRow mirrors the run_trades table.
type TradeRow struct {
	RunID     string    `db:"run_id"`
	Symbol    string    `db:"symbol"`
	Timestamp time.Time `db:"ts"`
	Amount    float64   `db:"amount"`
	Fee       float64   `db:"fee"`
	Price     float64   `db:"price"`
	Trade     string    `db:"trade"`
	Notes     string    `db:"notes"`
}

// TradesRepo persists and reads back per-run trade logs.
type TradesRepo interface {
	Insert(ctx context.Context, runID, symbol string, rec ledger.TradeRecord) error
	// BySymbol returns a symbol's trades ordered by timestamp ascending.
	BySymbol(ctx context.Context, runID, symbol string) ([]TradeRow, error)
}

type tradesRepo struct {
	conn sqlx.SqlConn
}

func newTradesRepo(deps Dependencies) TradesRepo {
	return &tradesRepo{conn: deps.DBConn}
}

func (r *tradesRepo) Insert(ctx context.Context, runID, symbol string, rec ledger.TradeRecord) error {
	const query = `
INSERT INTO run_trades (run_id, symbol, ts, amount, fee, price, trade, notes)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.conn.ExecCtx(ctx, query,
		runID, symbol, rec.Timestamp, rec.Amount, rec.Fee, rec.Price, string(rec.Trade), rec.Notes)
	if err != nil {
		return fmt.Errorf("repo: insert trade %s/%s: %w", runID, symbol, err)
	}
	return nil
}

func (r *tradesRepo) BySymbol(ctx context.Context, runID, symbol string) ([]TradeRow, error) {
	const query = `
SELECT run_id, symbol, ts, amount, fee, price, trade, notes
FROM run_trades
WHERE run_id = $1 AND symbol = $2
ORDER BY ts ASC`
	var rows []TradeRow
	if err := r.conn.QueryRowsCtx(ctx, &rows, query, runID, symbol); err != nil {
		return nil, fmt.Errorf("repo: query trades %s/%s: %w", runID, symbol, err)
	}
	return rows, nil
}
