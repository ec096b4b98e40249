// Package repositories opens the wallet database and vends its repositories.
package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/chainprofile/internal/client/migrations"
	"github.com/dmitrijs2005/chainprofile/internal/client/repositories/keys"
	"github.com/dmitrijs2005/chainprofile/internal/client/repositories/settings"
	"github.com/dmitrijs2005/chainprofile/internal/filex"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

type Repositories struct {
	Keys     keys.Repository
	Settings settings.Repository

	db *sql.DB
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}
	return nil
}

// InitDatabase opens the SQLite file at dsn (":memory:" works for tests) and
// applies the embedded migrations.
func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		path, err := filex.EnsureParentDir(dsn)
		if err != nil {
			return nil, err
		}
		dsn = path
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// one connection keeps ":memory:" databases alive and serializes writers
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Repositories{
		Keys:     keys.NewSQLiteRepository(db),
		Settings: settings.NewSQLiteRepository(db),
		db:       db,
	}, nil
}

// DB exposes the handle for callers that need a transaction spanning
// several repositories.
func (r *Repositories) DB() *sql.DB {
	return r.db
}

func (r *Repositories) Close() error {
	return r.db.Close()
}
