// Package state holds the profile client's application state and the pure
// transition function that is the only way to change it.
package state

import "github.com/dmitrijs2005/chainprofile/internal/chain"

type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseSubmitting Phase = "submitting"
)

type Outcome string

const (
	OutcomeNone    Outcome = ""
	OutcomeSuccess Outcome = "success"
	OutcomeError   Outcome = "error"
)

// Session is the connected account. Epoch changes on every connect and
// disconnect; results of work started under an older epoch are dropped.
type Session struct {
	Connected bool
	Account   chain.Address
	Epoch     uint64
}

func (s Session) CanWrite() bool { return s.Connected }
func (s Session) CanRead() bool  { return s.Connected }

// Fields is the raw, unsanitized form input.
type Fields struct {
	Name       string
	Age        string
	Profession string
	Bio        string
}

type Form struct {
	Fields  Fields
	Phase   Phase
	Outcome Outcome
	Error   string
	// Hash of the transaction being confirmed, zero otherwise.
	Pending chain.Hash
}

// ProfileView is what a viewer shows for one address.
type ProfileView struct {
	Address chain.Address
	Loading bool
	Loaded  bool
	Found   bool
	Profile chain.Profile
	Error   string
}

type State struct {
	Session Session
	Form    Form
	Own     ProfileView
	Search  ProfileView
}

// Initial is the disconnected state.
func Initial() State {
	return State{Form: Form{Phase: PhaseIdle}}
}
