package chain

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

// AddressLength is the number of bytes in an account address.
const AddressLength = 20

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// Address identifies an account on the ledger.
type Address [AddressLength]byte

// AddressFromPublicKey derives the account address owned by pub.
func AddressFromPublicKey(pub ed25519.PublicKey) Address {
	h := Keccak256(pub)
	var a Address
	copy(a[:], h[HashLength-AddressLength:])
	return a
}

// ParseAddress accepts a 0x-prefixed 40 character hex string. All-lower and
// all-upper forms are accepted as is; mixed case must carry a valid EIP-55
// checksum.
func ParseAddress(s string) (Address, error) {
	var a Address
	if !addressPattern.MatchString(s) {
		return a, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	b, err := hex.DecodeString(s[2:])
	if err != nil {
		return a, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	copy(a[:], b)

	body := s[2:]
	if strings.ToLower(body) != body && strings.ToUpper(body) != body {
		if a.Hex() != s {
			return Address{}, fmt.Errorf("%w: bad checksum %q", ErrInvalidAddress, s)
		}
	}
	return a, nil
}

// IsValidAddress reports whether s would be accepted by ParseAddress.
func IsValidAddress(s string) bool {
	_, err := ParseAddress(s)
	return err == nil
}

// Hex renders the address with its EIP-55 checksum.
func (a Address) Hex() string {
	buf := []byte(hex.EncodeToString(a[:]))
	h := Keccak256(buf)
	for i, c := range buf {
		if c < 'a' || c > 'f' {
			continue
		}
		nibble := h[i/2]
		if i%2 == 0 {
			nibble >>= 4
		} else {
			nibble &= 0x0f
		}
		if nibble >= 8 {
			buf[i] = c - ('a' - 'A')
		}
	}
	return "0x" + string(buf)
}

func (a Address) String() string {
	return a.Hex()
}

// Short renders the address as 0x1234…abcd for prompts.
func (a Address) Short() string {
	s := a.Hex()
	return s[:6] + "…" + s[len(s)-4:]
}

func (a Address) IsZero() bool {
	return a == Address{}
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.Hex()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
