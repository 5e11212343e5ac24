package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/zeromicro/go-zero/core/stores/sqlx"

	"quantfolio/pkg/ledger"
)

// BalanceRow mirrors the run_balances table.
type BalanceRow struct {
	RunID            string    `db:"run_id"`
	Symbol           string    `db:"symbol"`
	Timestamp        time.Time `db:"ts"`
	Fund             float64   `db:"fund"`
	Amount           float64   `db:"amount"`
	StrategyExposure float64   `db:"strategy_exposure"`
	Exposure         float64   `db:"exposure"`
	Fee              float64   `db:"fee"`
	BaseRate         float64   `db:"base_rate"`
	Price            float64   `db:"price"`
	GAV              float64   `db:"gav"`
	NAV              float64   `db:"nav"`
}

// BalancesRepo persists and reads back per-run balance snapshots.
type BalancesRepo interface {
	Insert(ctx context.Context, runID, symbol string, rec ledger.BalanceRecord) error
	// BySymbol returns a symbol's snapshots ordered by timestamp ascending.
	BySymbol(ctx context.Context, runID, symbol string) ([]BalanceRow, error)
}

type balancesRepo struct {
	conn sqlx.SqlConn
}

func newBalancesRepo(deps Dependencies) BalancesRepo {
	return &balancesRepo{conn: deps.DBConn}
}

func (r *balancesRepo) Insert(ctx context.Context, runID, symbol string, rec ledger.BalanceRecord) error {
	const query = `
INSERT INTO run_balances
    (run_id, symbol, ts, fund, amount, strategy_exposure, exposure, fee, base_rate, price, gav, nav)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.conn.ExecCtx(ctx, query,
		runID, symbol, rec.Timestamp, rec.Fund, rec.Amount, rec.StrategyExposure,
		rec.Exposure, rec.Fee, rec.BaseRate, rec.Price, rec.GAV, rec.NAV)
	if err != nil {
		return fmt.Errorf("repo: insert balance %s/%s: %w", runID, symbol, err)
	}
	return nil
}

func (r *balancesRepo) BySymbol(ctx context.Context, runID, symbol string) ([]BalanceRow, error) {
	const query = `
SELECT run_id, symbol, ts, fund, amount, strategy_exposure, exposure, fee, base_rate, price, gav, nav
FROM run_balances
WHERE run_id = $1 AND symbol = $2
ORDER BY ts ASC`
	var rows []BalanceRow
	if err := r.conn.QueryRowsCtx(ctx, &rows, query, runID, symbol); err != nil {
		return nil, fmt.Errorf("repo: query balances %s/%s: %w", runID, symbol, err)
	}
	return rows, nil
}
