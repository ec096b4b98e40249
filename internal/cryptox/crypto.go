// Package cryptox seals wallet secrets at rest: a password is stretched with
// Argon2id and the secret is encrypted with AES-256-GCM.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"

	"github.com/dmitrijs2005/chainprofile/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	SaltSize = 16
	KeySize  = 32
)

// ErrWrongPassword is returned by Open when authentication of the ciphertext
// fails, which in practice means the password was wrong.
var ErrWrongPassword = errors.New("wrong password")

// Sealed is an encrypted secret together with what is needed to open it.
type Sealed struct {
	Salt       []byte
	Nonce      []byte
	Ciphertext []byte
}

func DeriveMasterKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, KeySize)
}

// Seal encrypts secret under a key derived from password and a fresh salt.
func Seal(password, secret []byte) (*Sealed, error) {
	salt := common.GenerateRandByteArray(SaltSize)
	key := DeriveMasterKey(password, salt)
	defer common.WipeByteArray(key)

	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := common.GenerateRandByteArray(aesgcm.NonceSize())
	ciphertext := aesgcm.Seal(nil, nonce, secret, salt)

	return &Sealed{Salt: salt, Nonce: nonce, Ciphertext: ciphertext}, nil
}

// Open reverses Seal. The salt is bound as additional data, so a swapped salt
// fails the same way a wrong password does.
func Open(password []byte, s *Sealed) ([]byte, error) {
	if s == nil || len(s.Salt) == 0 || len(s.Nonce) == 0 {
		return nil, errors.New("incomplete sealed secret")
	}

	key := DeriveMasterKey(password, s.Salt)
	defer common.WipeByteArray(key)

	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(s.Nonce) != aesgcm.NonceSize() {
		return nil, errors.New("invalid nonce size")
	}

	plaintext, err := aesgcm.Open(nil, s.Nonce, s.Ciphertext, s.Salt)
	if err != nil {
		return nil, ErrWrongPassword
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
