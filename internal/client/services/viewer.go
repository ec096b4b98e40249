package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/chainprofile/internal/chain"
)

// Lookup is the outcome of a profile read. Found is false when the store
// holds no record for Address.
type Lookup struct {
	Address chain.Address
	Found   bool
	Profile chain.Profile
}

type ProfileViewer struct {
	viewer Viewer
}

func NewProfileViewer(v Viewer) *ProfileViewer {
	return &ProfileViewer{viewer: v}
}

// Load parses input as an address and reads its record. A malformed address
// fails with ErrInvalidAddress before any call is made.
func (v *ProfileViewer) Load(ctx context.Context, input string) (*Lookup, error) {
	address, err := v.Parse(input)
	if err != nil {
		return nil, err
	}
	return v.LoadAddress(ctx, address)
}

// Parse validates input as an account address.
func (v *ProfileViewer) Parse(input string) (chain.Address, error) {
	input = strings.TrimSpace(input)
	address, err := chain.ParseAddress(input)
	if err != nil {
		return chain.Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, input)
	}
	return address, nil
}

func (v *ProfileViewer) LoadAddress(ctx context.Context, address chain.Address) (*Lookup, error) {
	p, err := v.viewer.Read(ctx, address)
	if err != nil {
		return nil, Classify(err)
	}
	l := &Lookup{Address: address}
	if !p.IsEmpty() {
		l.Found = true
		l.Profile = p
	}
	return l, nil
}
