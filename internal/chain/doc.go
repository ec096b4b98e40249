// Package chain holds the ledger primitives shared by the node and the client:
// account addresses, Keccak-256 hashes, profile records, signed transactions,
// receipts and blocks.
//
// Addresses are the last 20 bytes of Keccak-256 over an ed25519 public key and
// are rendered in EIP-55 mixed-case checksum form. Transactions are signed over
// their SigningHash; the node verifies the signature and that the public key
// derives the sender address.
package chain
