package rpc

import (
	"time"

	"github.com/dmitrijs2005/chainprofile/internal/chain"
)

type ChainInfoRequest struct{}

type ChainInfoResponse struct {
	NetworkID    string        `json:"network_id"`
	StoreAddress chain.Address `json:"store_address"`
	Fee          uint64        `json:"fee"`
	BlockHeight  uint64        `json:"block_height"`
}

type ChallengeRequest struct {
	Address chain.Address `json:"address"`
}

type ChallengeResponse struct {
	Challenge string    `json:"challenge"`
	ExpiresAt time.Time `json:"expires_at"`
}

type AuthenticateRequest struct {
	Address   chain.Address `json:"address"`
	Challenge string        `json:"challenge"`
	PublicKey []byte        `json:"public_key"`
	Signature []byte        `json:"signature"`
}

type AuthenticateResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type GetAccountRequest struct {
	Address chain.Address `json:"address"`
}

// GetAccountResponse reports the confirmed balance and the next nonce to use,
// which already counts pending transactions.
type GetAccountResponse struct {
	Address chain.Address `json:"address"`
	Balance uint64        `json:"balance"`
	Nonce   uint64        `json:"nonce"`
}

type SendTransactionRequest struct {
	Transaction *chain.Transaction `json:"transaction"`
}

type SendTransactionResponse struct {
	Hash chain.Hash `json:"hash"`
}

type GetReceiptRequest struct {
	Hash chain.Hash `json:"hash"`
}

// GetReceiptResponse has Found=false while the transaction is pending.
type GetReceiptResponse struct {
	Found   bool           `json:"found"`
	Receipt *chain.Receipt `json:"receipt,omitempty"`
}

type ReadProfileRequest struct {
	Address chain.Address `json:"address"`
}

type ReadProfileResponse struct {
	Profile chain.Profile `json:"profile"`
}
