package chain

import (
	"crypto/ed25519"
	"encoding/json"
	"fmt"
)

// MethodUpsert is the only state-changing method of the record store.
const MethodUpsert = "upsert"

var txDomain = []byte("chainprofile/tx/v1")

// Transaction is a signed call to the record store.
type Transaction struct {
	NetworkID string  `json:"network_id"`
	Nonce     uint64  `json:"nonce"`
	From      Address `json:"from"`
	To        Address `json:"to"`
	Method    string  `json:"method"`
	Args      Profile `json:"args"`
	Fee       uint64  `json:"fee"`
	PublicKey []byte  `json:"public_key,omitempty"`
	Signature []byte  `json:"signature,omitempty"`
}

type unsignedTransaction struct {
	NetworkID string  `json:"network_id"`
	Nonce     uint64  `json:"nonce"`
	From      Address `json:"from"`
	To        Address `json:"to"`
	Method    string  `json:"method"`
	Args      Profile `json:"args"`
	Fee       uint64  `json:"fee"`
}

// SigningHash is the digest covered by the signature. It doubles as the
// transaction hash.
func (tx *Transaction) SigningHash() Hash {
	payload, err := json.Marshal(unsignedTransaction{
		NetworkID: tx.NetworkID,
		Nonce:     tx.Nonce,
		From:      tx.From,
		To:        tx.To,
		Method:    tx.Method,
		Args:      tx.Args,
		Fee:       tx.Fee,
	})
	if err != nil {
		// only plain fields are marshaled
		panic(err)
	}
	return Keccak256(txDomain, payload)
}

func (tx *Transaction) Hash() Hash {
	return tx.SigningHash()
}

// Sign attaches the public key and signature produced by key.
func (tx *Transaction) Sign(key ed25519.PrivateKey) {
	h := tx.SigningHash()
	tx.PublicKey = append([]byte(nil), key.Public().(ed25519.PublicKey)...)
	tx.Signature = ed25519.Sign(key, h[:])
}

// VerifySignature checks that the signature is valid and that the signing key
// owns tx.From.
func (tx *Transaction) VerifySignature() error {
	if len(tx.PublicKey) != ed25519.PublicKeySize {
		return fmt.Errorf("%w: public key length %d", ErrBadSignature, len(tx.PublicKey))
	}
	if len(tx.Signature) != ed25519.SignatureSize {
		return fmt.Errorf("%w: signature length %d", ErrBadSignature, len(tx.Signature))
	}
	pub := ed25519.PublicKey(tx.PublicKey)
	if AddressFromPublicKey(pub) != tx.From {
		return ErrSenderMismatch
	}
	h := tx.SigningHash()
	if !ed25519.Verify(pub, h[:], tx.Signature) {
		return ErrBadSignature
	}
	return nil
}
