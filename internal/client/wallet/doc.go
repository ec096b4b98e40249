// Package wallet is the signing environment of the profile client.
//
// Accounts are ed25519 keys kept in a local SQLite keystore, sealed under a
// per-account password. A Provider connects one account to a node: it checks
// the node is reachable and on the expected network, asks the user to approve
// the connection, unlocks the key and logs in with a signed challenge. Once
// connected it hands out a Transactor for signed upserts and a Viewer for
// free reads.
package wallet
