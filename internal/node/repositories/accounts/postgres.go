package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/chainprofile/internal/chain"
	"github.com/dmitrijs2005/chainprofile/internal/common"
	"github.com/dmitrijs2005/chainprofile/internal/dbx"
	"github.com/dmitrijs2005/chainprofile/internal/node/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, address chain.Address) (*models.Account, error) {
	query := `SELECT balance, nonce FROM accounts WHERE address = $1`

	var balance, nonce int64
	err := r.db.QueryRowContext(ctx, query, address.Hex()).Scan(&balance, &nonce)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return &models.Account{Address: address, Balance: uint64(balance), Nonce: uint64(nonce)}, nil
}

func (r *PostgresRepository) Create(ctx context.Context, acct *models.Account) (bool, error) {
	query :=
		`INSERT INTO accounts (address, balance, nonce)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (address) DO NOTHING`

	res, err := r.db.ExecContext(ctx, query, acct.Address.Hex(), int64(acct.Balance), int64(acct.Nonce))
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	created, err := dbx.RowsAffectedOne(res)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return created, nil
}

func (r *PostgresRepository) Update(ctx context.Context, acct *models.Account) error {
	query := `UPDATE accounts SET balance = $2, nonce = $3 WHERE address = $1`

	res, err := r.db.ExecContext(ctx, query, acct.Address.Hex(), int64(acct.Balance), int64(acct.Nonce))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	ok, err := dbx.RowsAffectedOne(res)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if !ok {
		return common.ErrorNotFound
	}
	return nil
}
