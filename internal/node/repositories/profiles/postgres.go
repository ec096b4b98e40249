package profiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/chainprofile/internal/chain"
	"github.com/dmitrijs2005/chainprofile/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, address chain.Address) (chain.Profile, error) {
	query := `SELECT name, age, profession, bio FROM profiles WHERE address = $1`

	var (
		p   chain.Profile
		age int64
	)
	err := r.db.QueryRowContext(ctx, query, address.Hex()).Scan(&p.Name, &age, &p.Profession, &p.Bio)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return chain.Profile{}, nil
		}
		return chain.Profile{}, fmt.Errorf("db error: %w", err)
	}
	p.Age = uint32(age)
	return p, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, address chain.Address, p chain.Profile, blockNumber uint64) error {
	query :=
		`INSERT INTO profiles (address, name, age, profession, bio, block_number)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (address) DO UPDATE
		 SET name = EXCLUDED.name, age = EXCLUDED.age, profession = EXCLUDED.profession,
		     bio = EXCLUDED.bio, block_number = EXCLUDED.block_number`

	_, err := r.db.ExecContext(ctx, query, address.Hex(), p.Name, int64(p.Age), p.Profession, p.Bio, int64(blockNumber))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
