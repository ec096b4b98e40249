// Package models holds the records the profile client keeps on disk.
package models

import (
	"time"

	"github.com/dmitrijs2005/chainprofile/internal/chain"
	"github.com/dmitrijs2005/chainprofile/internal/cryptox"
)

// StoredKey is a wallet account. The ed25519 seed is only kept sealed under
// the account password.
type StoredKey struct {
	Address   chain.Address
	Label     string
	PublicKey []byte
	Sealed    cryptox.Sealed
	CreatedAt time.Time
}
