package blocks

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/chainprofile/internal/chain"
	"github.com/dmitrijs2005/chainprofile/internal/common"
	"github.com/dmitrijs2005/chainprofile/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Latest(ctx context.Context) (*chain.Block, error) {
	query :=
		`SELECT number, hash, parent_hash, tx_hashes, sealed_at FROM blocks
		 ORDER BY number DESC LIMIT 1`

	var (
		b            chain.Block
		number       int64
		hash, parent string
		txHashes     []byte
	)
	err := r.db.QueryRowContext(ctx, query).Scan(&number, &hash, &parent, &txHashes, &b.SealedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	b.Number = uint64(number)
	if b.Hash, err = chain.ParseHash(hash); err != nil {
		return nil, fmt.Errorf("block %d: %w", number, err)
	}
	if b.ParentHash, err = chain.ParseHash(parent); err != nil {
		return nil, fmt.Errorf("block %d: %w", number, err)
	}
	if err := json.Unmarshal(txHashes, &b.TxHashes); err != nil {
		return nil, fmt.Errorf("block %d: %w", number, err)
	}
	return &b, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, b *chain.Block) error {
	txHashes, err := json.Marshal(b.TxHashes)
	if err != nil {
		return fmt.Errorf("encode tx hashes: %w", err)
	}

	query :=
		`INSERT INTO blocks (number, hash, parent_hash, tx_hashes, sealed_at)
		 VALUES ($1, $2, $3, $4, $5)`

	_, err = r.db.ExecContext(ctx, query, int64(b.Number), b.Hash.Hex(), b.ParentHash.Hex(), txHashes, b.SealedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
