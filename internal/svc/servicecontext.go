// Package svc wires configuration into the collaborators a run needs.
package svc

import (
	"context"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx driver
	"github.com/zeromicro/go-zero/core/stores/sqlx"

	"quantfolio/internal/config"
	"quantfolio/internal/persistence"
	"quantfolio/internal/repo"
	"quantfolio/pkg/journal"
	"quantfolio/pkg/replay"
)

// ServiceContext bundles everything the runner binaries share. Repos
// and Recorder stay nil when no Postgres DSN is configured; the replay
// then runs fully in-memory.
type ServiceContext struct {
	Config   *config.Config
	DBConn   sqlx.SqlConn
	Repos    *repo.Set
	Recorder replay.Recorder
	Journal  *journal.Writer
}

// NewServiceContext builds the context for one run identified by runID.
func NewServiceContext(cfg *config.Config, runID string) *ServiceContext {
	svc := &ServiceContext{
		Config:  cfg,
		Journal: journal.NewWriter(cfg.JournalDir),
	}

	if cfg.Postgres.DSN != "" {
		conn := sqlx.NewSqlConn("pgx", cfg.Postgres.DSN)
		if err := repo.EnsureSchema(context.Background(), conn); err != nil {
			log.Fatalf("ensure schema: %v", err)
		}
		repos, err := repo.New(repo.Dependencies{DBConn: conn})
		if err != nil {
			log.Fatalf("build repos: %v", err)
		}
		svc.DBConn = conn
		svc.Repos = repos
		svc.Recorder = persistence.New(runID, repos)
	}
	return svc
}
