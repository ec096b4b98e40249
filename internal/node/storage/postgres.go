package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/chainprofile/internal/dbx"
	"github.com/dmitrijs2005/chainprofile/internal/node/migrations"
	"github.com/dmitrijs2005/chainprofile/internal/node/repositories/accounts"
	"github.com/dmitrijs2005/chainprofile/internal/node/repositories/blocks"
	"github.com/dmitrijs2005/chainprofile/internal/node/repositories/profiles"
	"github.com/dmitrijs2005/chainprofile/internal/node/repositories/transactions"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

var (
	sqlOpen = sql.Open

	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return goose.UpContext(ctx, db, dir, opts...)
	}
)

// PostgresManager vends PostgreSQL-backed repositories.
type PostgresManager struct {
	db *sql.DB
}

func NewPostgresManager(dsn string) (*PostgresManager, error) {
	db, err := sqlOpen("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	return &PostgresManager{db: db}, nil
}

// NewPostgresManagerFromDB wraps an already opened handle.
func NewPostgresManagerFromDB(db *sql.DB) *PostgresManager {
	return &PostgresManager{db: db}
}

func (m *PostgresManager) Accounts() accounts.Repository { return txRepos{m.db}.Accounts() }

func (m *PostgresManager) Profiles() profiles.Repository { return txRepos{m.db}.Profiles() }

func (m *PostgresManager) Transactions() transactions.Repository {
	return txRepos{m.db}.Transactions()
}

func (m *PostgresManager) Blocks() blocks.Repository { return txRepos{m.db}.Blocks() }

// txOptions gives every transaction a single snapshot, so admission reads an
// account and its pending totals from the same state.
var txOptions = &sql.TxOptions{Isolation: sql.LevelRepeatableRead}

func (m *PostgresManager) InTx(ctx context.Context, fn func(ctx context.Context, r Repositories) error) error {
	return dbx.WithTx(ctx, m.db, txOptions, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, txRepos{tx})
	})
}

// RunMigrations applies the embedded goose migrations.
func (m *PostgresManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, m.db, "."); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}
	return nil
}

func (m *PostgresManager) Close() error {
	return m.db.Close()
}

type txRepos struct {
	db dbx.DBTX
}

func (r txRepos) Accounts() accounts.Repository { return accounts.NewPostgresRepository(r.db) }

func (r txRepos) Profiles() profiles.Repository { return profiles.NewPostgresRepository(r.db) }

func (r txRepos) Transactions() transactions.Repository {
	return transactions.NewPostgresRepository(r.db)
}

func (r txRepos) Blocks() blocks.Repository { return blocks.NewPostgresRepository(r.db) }
