package keys

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/chainprofile/internal/chain"
	"github.com/dmitrijs2005/chainprofile/internal/client/models"
	"github.com/dmitrijs2005/chainprofile/internal/common"
	"github.com/dmitrijs2005/chainprofile/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const selectColumns = `address, label, public_key, salt, nonce, ciphertext, created_at`

func (r *SQLiteRepository) Create(ctx context.Context, k *models.StoredKey) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO keys (address, label, public_key, salt, nonce, ciphertext, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, k.Address.Hex(), k.Label, k.PublicKey, k.Sealed.Salt, k.Sealed.Nonce, k.Sealed.Ciphertext, k.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert key %s: %w", k.Address.Hex(), err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, address chain.Address) (*models.StoredKey, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM keys WHERE address = ?`, address.Hex())
	k, err := scanKey(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key %s: %w", address.Hex(), err)
	}
	return k, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]*models.StoredKey, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM keys ORDER BY created_at, address`)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	defer rows.Close()

	var result []*models.StoredKey
	for rows.Next() {
		k, err := scanKey(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan key row: %w", err)
		}
		result = append(result, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate key rows: %w", err)
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanKey(s scanner) (*models.StoredKey, error) {
	var (
		k    models.StoredKey
		addr string
	)
	if err := s.Scan(&addr, &k.Label, &k.PublicKey, &k.Sealed.Salt, &k.Sealed.Nonce, &k.Sealed.Ciphertext, &k.CreatedAt); err != nil {
		return nil, err
	}
	a, err := chain.ParseAddress(addr)
	if err != nil {
		return nil, err
	}
	k.Address = a
	return &k, nil
}
