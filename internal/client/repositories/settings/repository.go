// Package settings is a small key/value table for wallet preferences.
package settings

import "context"

// Keys used by the wallet.
const (
	KeyDefaultAccount = "default_account"
)

type Repository interface {
	// Get returns (nil, nil) when key is not set.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
