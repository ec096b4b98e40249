package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/chainprofile/internal/chain"
	"github.com/dmitrijs2005/chainprofile/internal/client/wallet"
	"github.com/dmitrijs2005/chainprofile/internal/common"
)

// Every error returned by this package matches exactly one of these with
// errors.Is.
var (
	ErrNoProvider         = errors.New("no wallet available")
	ErrUserRejected       = errors.New("request rejected")
	ErrValidation         = errors.New("invalid input")
	ErrInvalidAddress     = errors.New("invalid address")
	ErrInsufficientFunds  = errors.New("insufficient funds to pay the fee")
	ErrMalformedArgument  = errors.New("malformed argument")
	ErrUnknownTransaction = errors.New("transaction failed")
)

var taxonomy = []error{
	ErrNoProvider,
	ErrUserRejected,
	ErrValidation,
	ErrInvalidAddress,
	ErrInsufficientFunds,
	ErrMalformedArgument,
	ErrUnknownTransaction,
}

// ValidationError reports a form field that failed local checks.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrValidation, e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Classify maps err into the taxonomy. The result matches one taxonomy
// sentinel and still wraps err. Classify(nil) is nil.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range taxonomy {
		if errors.Is(err, kind) {
			return err
		}
	}

	var failed *wallet.TxFailedError
	if errors.As(err, &failed) {
		switch failed.Receipt.Reason {
		case chain.ReasonInsufficientFunds:
			return fmt.Errorf("%w: %w", ErrInsufficientFunds, err)
		case chain.ReasonMalformedArgument:
			return fmt.Errorf("%w: %w", ErrMalformedArgument, err)
		}
		return fmt.Errorf("%w: %w", ErrUnknownTransaction, err)
	}

	switch {
	case errors.Is(err, wallet.ErrNoWallet),
		errors.Is(err, wallet.ErrNodeUnavailable),
		errors.Is(err, wallet.ErrWrongNetwork),
		errors.Is(err, wallet.ErrNotConnected),
		errors.Is(err, common.ErrorUnavailable):
		return fmt.Errorf("%w: %w", ErrNoProvider, err)

	case errors.Is(err, wallet.ErrRejected),
		errors.Is(err, wallet.ErrBadPassword):
		return fmt.Errorf("%w: %w", ErrUserRejected, err)

	case errors.Is(err, chain.ErrInvalidAddress):
		return fmt.Errorf("%w: %w", ErrInvalidAddress, err)

	case errors.Is(err, common.ErrInsufficientFunds):
		return fmt.Errorf("%w: %w", ErrInsufficientFunds, err)

	// a well-formed client only trips the node's argument checks with bad
	// call arguments
	case errors.Is(err, common.ErrInvalidArgument),
		errors.Is(err, chain.ErrMalformedArgument):
		return fmt.Errorf("%w: %w", ErrMalformedArgument, err)
	}

	return fmt.Errorf("%w: %w", ErrUnknownTransaction, err)
}

// Message renders a classified error for the status banner.
func Message(err error) string {
	var verr *ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &verr):
		return verr.Error()
	case errors.Is(err, ErrNoProvider):
		return fmt.Sprintf("%v (create an account with 'wallet new' and check the node is running on the configured network)", err)
	case errors.Is(err, ErrUnknownTransaction) && errors.Is(err, wallet.ErrConfirmationTimeout):
		return fmt.Sprintf("%v (it may still be included later)", err)
	case errors.Is(err, context.Canceled):
		return "canceled"
	}
	return err.Error()
}
