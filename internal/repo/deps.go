// Package repo persists replay output — trade logs, balance snapshots
// and whole-book images — to Postgres.
package repo

import (
	"errors"

	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

// Dependencies bundles the shared infrastructure repositories need.
type Dependencies struct {
	DBConn sqlx.SqlConn
}

// Set exposes strongly typed repositories to application logic.
type Set struct {
	Trades   TradesRepo
	Balances BalancesRepo
	Books    BooksRepo
}

// New constructs the repository set, validating required dependencies.
func New(deps Dependencies) (*Set, error) {
	if deps.DBConn == nil {
		return nil, errors.New("repo: missing DBConn dependency")
	}
	return &Set{
		Trades:   newTradesRepo(deps),
		Balances: newBalancesRepo(deps),
		Books:    newBooksRepo(deps),
	}, nil
}
