package chain

import "errors"

var (
	ErrInvalidAddress    = errors.New("invalid address")
	ErrInvalidHash       = errors.New("invalid hash")
	ErrBadSignature      = errors.New("bad signature")
	ErrSenderMismatch    = errors.New("public key does not match sender")
	ErrMalformedArgument = errors.New("malformed argument")
)
