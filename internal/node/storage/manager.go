// Package storage wires the node repositories to a backend: PostgreSQL when
// a DSN is configured, process memory otherwise.
package storage

import (
	"context"

	"github.com/dmitrijs2005/chainprofile/internal/node/repositories/accounts"
	"github.com/dmitrijs2005/chainprofile/internal/node/repositories/blocks"
	"github.com/dmitrijs2005/chainprofile/internal/node/repositories/profiles"
	"github.com/dmitrijs2005/chainprofile/internal/node/repositories/transactions"
)

// Repositories gives access to every repository bound to one handle, either
// the backend itself or an open transaction.
type Repositories interface {
	Accounts() accounts.Repository
	Profiles() profiles.Repository
	Transactions() transactions.Repository
	Blocks() blocks.Repository
}

// Manager is a Repositories bound to the backend that can also open
// transactions. fn's repositories see and write only through the
// transaction; it commits when fn returns nil.
type Manager interface {
	Repositories
	InTx(ctx context.Context, fn func(ctx context.Context, r Repositories) error) error
	RunMigrations(ctx context.Context) error
	Close() error
}

// New opens the backend selected by dsn and brings its schema up to date.
func New(ctx context.Context, dsn string) (Manager, error) {
	if dsn == "" {
		return NewMemoryManager(), nil
	}
	m, err := NewPostgresManager(dsn)
	if err != nil {
		return nil, err
	}
	if err := m.RunMigrations(ctx); err != nil {
		_ = m.Close()
		return nil, err
	}
	return m, nil
}
