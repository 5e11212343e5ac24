package repo

import (
	"context"
	"fmt"

	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS run_trades (
    id       BIGSERIAL PRIMARY KEY,
    run_id   TEXT NOT NULL,
    symbol   TEXT NOT NULL,
    ts       TIMESTAMPTZ NOT NULL,
    amount   DOUBLE PRECISION NOT NULL,
    fee      DOUBLE PRECISION NOT NULL,
    price    DOUBLE PRECISION NOT NULL,
    trade    TEXT NOT NULL,
    notes    TEXT NOT NULL DEFAULT ''
)`,
	`CREATE INDEX IF NOT EXISTS idx_run_trades_run_symbol_ts ON run_trades (run_id, symbol, ts)`,
	`CREATE TABLE IF NOT EXISTS run_balances (
    id                BIGSERIAL PRIMARY KEY,
    run_id            TEXT NOT NULL,
    symbol            TEXT NOT NULL,
    ts                TIMESTAMPTZ NOT NULL,
    fund              DOUBLE PRECISION NOT NULL,
    amount            DOUBLE PRECISION NOT NULL,
    strategy_exposure DOUBLE PRECISION NOT NULL,
    exposure          DOUBLE PRECISION NOT NULL,
    fee               DOUBLE PRECISION NOT NULL,
    base_rate         DOUBLE PRECISION NOT NULL,
    price             DOUBLE PRECISION NOT NULL,
    gav               DOUBLE PRECISION NOT NULL,
    nav               DOUBLE PRECISION NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_run_balances_run_symbol_ts ON run_balances (run_id, symbol, ts)`,
	`CREATE TABLE IF NOT EXISTS book_snapshots (
    kind       TEXT NOT NULL,
    key        TEXT NOT NULL,
    data       BYTEA NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (kind, key)
)`,
}

// EnsureSchema creates the persistence tables when they do not exist.
func EnsureSchema(ctx context.Context, conn sqlx.SqlConn) error {
	for _, stmt := range schema {
		if _, err := conn.ExecCtx(ctx, stmt); err != nil {
			return fmt.Errorf("repo: ensure schema: %w", err)
		}
	}
	return nil
}
