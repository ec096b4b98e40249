package state

import "github.com/dmitrijs2005/chainprofile/internal/chain"

// Event is an input to Reduce. Events that carry an Epoch belong to the
// session they were started in.
type Event interface {
	isEvent()
}

type Connected struct {
	Account chain.Address
}

type Disconnected struct{}

type FormEdited struct {
	Fields Fields
}

// ValidationFailed keeps the rejected input in the form as typed.
type ValidationFailed struct {
	Epoch  uint64
	Fields Fields
	Reason string
}

type SubmitStarted struct {
	Epoch  uint64
	Fields Fields
}

type SubmitAccepted struct {
	Epoch uint64
	Hash  chain.Hash
}

type SubmitConfirmed struct {
	Epoch uint64
	Hash  chain.Hash
}

type SubmitFailed struct {
	Epoch  uint64
	Reason string
}

type OwnLoading struct {
	Epoch uint64
}

type OwnLoaded struct {
	Epoch   uint64
	Profile chain.Profile
}

type OwnFailed struct {
	Epoch  uint64
	Reason string
}

type SearchStarted struct {
	Epoch   uint64
	Address chain.Address
}

type SearchLoaded struct {
	Epoch   uint64
	Address chain.Address
	Profile chain.Profile
}

// SearchFailed with a zero Address reports input that never reached the
// node, such as a malformed address.
type SearchFailed struct {
	Epoch   uint64
	Address chain.Address
	Reason  string
}

func (Connected) isEvent()        {}
func (Disconnected) isEvent()     {}
func (FormEdited) isEvent()       {}
func (ValidationFailed) isEvent() {}
func (SubmitStarted) isEvent()    {}
func (SubmitAccepted) isEvent()   {}
func (SubmitConfirmed) isEvent()  {}
func (SubmitFailed) isEvent()     {}
func (OwnLoading) isEvent()       {}
func (OwnLoaded) isEvent()        {}
func (OwnFailed) isEvent()        {}
func (SearchStarted) isEvent()    {}
func (SearchLoaded) isEvent()     {}
func (SearchFailed) isEvent()     {}
