package wallet

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/chainprofile/internal/chain"
)

var (
	ErrNoWallet            = errors.New("no wallet account")
	ErrNodeUnavailable     = errors.New("node unavailable")
	ErrWrongNetwork        = errors.New("node is on another network")
	ErrRejected            = errors.New("rejected by user")
	ErrBadPassword         = errors.New("wrong wallet password")
	ErrConfirmationTimeout = errors.New("timed out waiting for confirmation")
	ErrNotConnected        = errors.New("wallet not connected")
)

// TxFailedError is returned by PendingTx.Wait when the transaction was
// included but not applied.
type TxFailedError struct {
	Receipt *chain.Receipt
}

func (e *TxFailedError) Error() string {
	return fmt.Sprintf("transaction %s failed: %s", e.Receipt.TxHash.Hex(), e.Receipt.Reason)
}
