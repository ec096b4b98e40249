package state

import "github.com/dmitrijs2005/chainprofile/internal/chain"

// Reduce returns the state that follows s after e. It never mutates s.
func Reduce(s State, e Event) State {
	switch e := e.(type) {
	case Connected:
		return State{
			Session: Session{Connected: true, Account: e.Account, Epoch: s.Session.Epoch + 1},
			Form:    Form{Phase: PhaseIdle},
			Own:     ProfileView{Address: e.Account},
		}

	case Disconnected:
		next := Initial()
		next.Session.Epoch = s.Session.Epoch + 1
		return next

	case FormEdited:
		if s.Form.Phase == PhaseSubmitting {
			return s
		}
		s.Form.Fields = e.Fields
		return s

	case ValidationFailed:
		if stale(s, e.Epoch) {
			return s
		}
		s.Form = Form{Phase: PhaseIdle, Outcome: OutcomeError, Error: e.Reason, Fields: e.Fields}
		return s

	case SubmitStarted:
		if stale(s, e.Epoch) {
			return s
		}
		s.Form = Form{Phase: PhaseSubmitting, Fields: e.Fields}
		return s

	case SubmitAccepted:
		if stale(s, e.Epoch) || s.Form.Phase != PhaseSubmitting {
			return s
		}
		s.Form.Pending = e.Hash
		return s

	case SubmitConfirmed:
		if stale(s, e.Epoch) {
			return s
		}
		s.Form = Form{Phase: PhaseIdle, Outcome: OutcomeSuccess}
		return s

	case SubmitFailed:
		if stale(s, e.Epoch) {
			return s
		}
		s.Form.Phase = PhaseIdle
		s.Form.Outcome = OutcomeError
		s.Form.Error = e.Reason
		s.Form.Pending = chain.Hash{}
		return s

	case OwnLoading:
		if stale(s, e.Epoch) {
			return s
		}
		s.Own.Loading = true
		s.Own.Error = ""
		return s

	case OwnLoaded:
		if stale(s, e.Epoch) {
			return s
		}
		s.Own = loaded(s.Own.Address, e.Profile)
		return s

	case OwnFailed:
		if stale(s, e.Epoch) {
			return s
		}
		s.Own.Loading = false
		s.Own.Error = e.Reason
		return s

	case SearchStarted:
		if stale(s, e.Epoch) {
			return s
		}
		s.Search = ProfileView{Address: e.Address, Loading: true}
		return s

	case SearchLoaded:
		if stale(s, e.Epoch) || e.Address != s.Search.Address {
			return s
		}
		s.Search = loaded(e.Address, e.Profile)
		return s

	case SearchFailed:
		if stale(s, e.Epoch) {
			return s
		}
		if !e.Address.IsZero() && e.Address != s.Search.Address {
			return s
		}
		s.Search = ProfileView{Address: e.Address, Error: e.Reason}
		return s
	}
	return s
}

func stale(s State, epoch uint64) bool {
	return !s.Session.Connected || epoch != s.Session.Epoch
}

// loaded maps a read result to a view. An empty record is "no profile
// found", not an error.
func loaded(address chain.Address, p chain.Profile) ProfileView {
	v := ProfileView{Address: address, Loaded: true}
	if !p.IsEmpty() {
		v.Found = true
		v.Profile = p
	}
	return v
}
