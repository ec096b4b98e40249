package wallet

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/chainprofile/internal/chain"
	"github.com/dmitrijs2005/chainprofile/internal/client/models"
	"github.com/dmitrijs2005/chainprofile/internal/client/repositories/keys"
	"github.com/dmitrijs2005/chainprofile/internal/client/repositories/settings"
	"github.com/dmitrijs2005/chainprofile/internal/common"
	"github.com/dmitrijs2005/chainprofile/internal/cryptox"
	"github.com/dmitrijs2005/chainprofile/internal/dbx"
)

type Keystore struct {
	db  *sql.DB
	now func() time.Time
}

func NewKeystore(db *sql.DB) *Keystore {
	return &Keystore{db: db, now: time.Now}
}

func (k *Keystore) keysRepo() keys.Repository {
	return keys.NewSQLiteRepository(k.db)
}

func (k *Keystore) settingsRepo() settings.Repository {
	return settings.NewSQLiteRepository(k.db)
}

// Create generates a new account sealed under password and returns its
// address. The first account created becomes the default one.
func (k *Keystore) Create(ctx context.Context, label string, password []byte) (chain.Address, error) {
	if len(password) == 0 {
		return chain.Address{}, errors.New("password is empty")
	}

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return chain.Address{}, fmt.Errorf("generate key: %w", err)
	}
	defer common.WipeByteArray(priv)

	sealed, err := cryptox.Seal(password, priv.Seed())
	if err != nil {
		return chain.Address{}, fmt.Errorf("seal key: %w", err)
	}

	sk := &models.StoredKey{
		Address:   chain.AddressFromPublicKey(pub),
		Label:     label,
		PublicKey: pub,
		Sealed:    *sealed,
		CreatedAt: k.now(),
	}

	err = dbx.WithTx(ctx, k.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := keys.NewSQLiteRepository(tx).Create(ctx, sk); err != nil {
			return err
		}
		sr := settings.NewSQLiteRepository(tx)
		current, err := sr.Get(ctx, settings.KeyDefaultAccount)
		if err != nil {
			return err
		}
		if current == nil {
			return sr.Set(ctx, settings.KeyDefaultAccount, []byte(sk.Address.Hex()))
		}
		return nil
	})
	if err != nil {
		return chain.Address{}, err
	}
	return sk.Address, nil
}

func (k *Keystore) List(ctx context.Context) ([]*models.StoredKey, error) {
	return k.keysRepo().List(ctx)
}

// Default returns the default account, falling back to the oldest one when
// the setting is missing or points at a removed key.
func (k *Keystore) Default(ctx context.Context) (*models.StoredKey, error) {
	v, err := k.settingsRepo().Get(ctx, settings.KeyDefaultAccount)
	if err != nil {
		return nil, err
	}
	if v != nil {
		if addr, perr := chain.ParseAddress(string(v)); perr == nil {
			sk, err := k.keysRepo().Get(ctx, addr)
			if err == nil {
				return sk, nil
			}
			if !errors.Is(err, common.ErrorNotFound) {
				return nil, err
			}
		}
	}

	list, err := k.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrNoWallet
	}
	return list[0], nil
}

func (k *Keystore) SetDefault(ctx context.Context, address chain.Address) error {
	if _, err := k.keysRepo().Get(ctx, address); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("%w: %s", ErrNoWallet, address.Hex())
		}
		return err
	}
	return k.settingsRepo().Set(ctx, settings.KeyDefaultAccount, []byte(address.Hex()))
}

// Unlock opens the sealed seed of sk. The caller owns the returned key and
// should wipe it when done.
func (k *Keystore) Unlock(ctx context.Context, sk *models.StoredKey, password []byte) (ed25519.PrivateKey, error) {
	seed, err := cryptox.Open(password, &sk.Sealed)
	if err != nil {
		if errors.Is(err, cryptox.ErrWrongPassword) {
			return nil, ErrBadPassword
		}
		return nil, fmt.Errorf("open key %s: %w", sk.Address.Hex(), err)
	}
	defer common.WipeByteArray(seed)

	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("key %s: bad seed length %d", sk.Address.Hex(), len(seed))
	}
	key := ed25519.NewKeyFromSeed(seed)
	pub := key.Public().(ed25519.PublicKey)
	if chain.AddressFromPublicKey(pub) != sk.Address || !bytes.Equal(pub, sk.PublicKey) {
		common.WipeByteArray(key)
		return nil, fmt.Errorf("key %s does not match its address", sk.Address.Hex())
	}
	return key, nil
}
