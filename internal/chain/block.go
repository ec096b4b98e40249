package chain

import (
	"encoding/binary"
	"time"
)

// Block groups the transactions applied in one sealing round.
type Block struct {
	Number     uint64    `json:"number"`
	Hash       Hash      `json:"hash"`
	ParentHash Hash      `json:"parent_hash"`
	TxHashes   []Hash    `json:"tx_hashes"`
	SealedAt   time.Time `json:"sealed_at"`
}

// BlockHash commits to the block number, its parent and its transactions.
func BlockHash(number uint64, parent Hash, txs []Hash) Hash {
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], number)
	parts := make([][]byte, 0, len(txs)+2)
	parts = append(parts, n[:], parent[:])
	for i := range txs {
		parts = append(parts, txs[i][:])
	}
	return Keccak256(parts...)
}

// ChallengeMessage is the payload a wallet signs to prove account ownership.
func ChallengeMessage(challenge string) []byte {
	return []byte("chainprofile/login/v1:" + challenge)
}
