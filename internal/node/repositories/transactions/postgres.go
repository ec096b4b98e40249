package transactions

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/chainprofile/internal/chain"
	"github.com/dmitrijs2005/chainprofile/internal/common"
	"github.com/dmitrijs2005/chainprofile/internal/dbx"
	"github.com/dmitrijs2005/chainprofile/internal/node/models"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the PostgreSQL SQLSTATE for a duplicate key.
const uniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, tx *chain.Transaction) error {
	payload, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("encode transaction: %w", err)
	}

	query :=
		`INSERT INTO transactions (hash, sender, nonce, fee, payload)
		 VALUES ($1, $2, $3, $4, $5)`

	_, err = r.db.ExecContext(ctx, query, tx.Hash().Hex(), tx.From.Hex(), int64(tx.Nonce), int64(tx.Fee), payload)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: transaction %s already known", common.ErrNonceConflict, tx.Hash().Hex())
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

const selectColumns = `seq, payload, status, reason, block_number, logs, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*models.TxRecord, error) {
	var (
		rec         models.TxRecord
		payload     []byte
		status      sql.NullString
		reason      string
		blockNumber sql.NullInt64
		logs        []byte
		createdAt   time.Time
	)
	if err := row.Scan(&rec.Seq, &payload, &status, &reason, &blockNumber, &logs, &createdAt); err != nil {
		return nil, err
	}

	rec.Tx = &chain.Transaction{}
	if err := json.Unmarshal(payload, rec.Tx); err != nil {
		return nil, fmt.Errorf("decode transaction %d: %w", rec.Seq, err)
	}
	rec.CreatedAt = createdAt

	if status.Valid {
		rec.Receipt = &chain.Receipt{
			TxHash:      rec.Tx.Hash(),
			Status:      chain.ReceiptStatus(status.String),
			Reason:      reason,
			BlockNumber: uint64(blockNumber.Int64),
		}
		if len(logs) > 0 {
			if err := json.Unmarshal(logs, &rec.Receipt.Logs); err != nil {
				return nil, fmt.Errorf("decode logs %d: %w", rec.Seq, err)
			}
		}
	}
	return &rec, nil
}

func (r *PostgresRepository) Get(ctx context.Context, hash chain.Hash) (*models.TxRecord, error) {
	query := `SELECT ` + selectColumns + ` FROM transactions WHERE hash = $1`

	rec, err := scanRecord(r.db.QueryRowContext(ctx, query, hash.Hex()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return rec, nil
}

func (r *PostgresRepository) ListPending(ctx context.Context, limit int) ([]*models.TxRecord, error) {
	query := `SELECT ` + selectColumns + ` FROM transactions WHERE status IS NULL ORDER BY seq LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.TxRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) PendingStats(ctx context.Context, sender chain.Address) (models.PendingStats, error) {
	query := `SELECT COUNT(*), COALESCE(SUM(fee), 0) FROM transactions WHERE sender = $1 AND status IS NULL`

	var count, fees int64
	if err := r.db.QueryRowContext(ctx, query, sender.Hex()).Scan(&count, &fees); err != nil {
		return models.PendingStats{}, fmt.Errorf("db error: %w", err)
	}
	return models.PendingStats{Count: uint64(count), Fees: uint64(fees)}, nil
}

func (r *PostgresRepository) SetReceipt(ctx context.Context, rc *chain.Receipt) error {
	logs, err := json.Marshal(rc.Logs)
	if err != nil {
		return fmt.Errorf("encode logs: %w", err)
	}

	query :=
		`UPDATE transactions SET status = $2, reason = $3, block_number = $4, logs = $5
		 WHERE hash = $1 AND status IS NULL`

	res, err := r.db.ExecContext(ctx, query, rc.TxHash.Hex(), string(rc.Status), rc.Reason, int64(rc.BlockNumber), logs)
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
