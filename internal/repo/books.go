package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/zeromicro/go-zero/core/stores/sqlx"

	"quantfolio/pkg/portfolio"
)

// ErrSnapshotNotFound reports a missing book snapshot.
var ErrSnapshotNotFound = errors.New("repo: book snapshot not found")

// BooksRepo stores msgpack-encoded book snapshots keyed by kind and
// key so a later session can resume a book where it stopped.
type BooksRepo interface {
	portfolio.Store
}

type booksRepo struct {
	conn sqlx.SqlConn
}

func newBooksRepo(deps Dependencies) BooksRepo {
	return &booksRepo{conn: deps.DBConn}
}

func (r *booksRepo) SaveSnapshot(ctx context.Context, kind, key string, snap *portfolio.Snapshot) error {
	data, err := snap.Encode()
	if err != nil {
		return err
	}
	const query = `
INSERT INTO book_snapshots (kind, key, data, updated_at)
VALUES ($1, $2, $3, NOW())
ON CONFLICT (kind, key) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`
	if _, err := r.conn.ExecCtx(ctx, query, kind, key, data); err != nil {
		return fmt.Errorf("repo: save snapshot %s/%s: %w", kind, key, err)
	}
	return nil
}

func (r *booksRepo) LoadSnapshot(ctx context.Context, kind, key string) (*portfolio.Snapshot, error) {
	const query = `SELECT data FROM book_snapshots WHERE kind = $1 AND key = $2`
	var data []byte
	if err := r.conn.QueryRowCtx(ctx, &data, query, kind, key); err != nil {
		if errors.Is(err, sqlx.ErrNotFound) || errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s/%s", ErrSnapshotNotFound, kind, key)
		}
		return nil, fmt.Errorf("repo: load snapshot %s/%s: %w", kind, key, err)
	}
	return portfolio.DecodeSnapshot(data)
}
