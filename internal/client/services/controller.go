package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/chainprofile/internal/chain"
	"github.com/dmitrijs2005/chainprofile/internal/client/notify"
	"github.com/dmitrijs2005/chainprofile/internal/client/state"
	"github.com/dmitrijs2005/chainprofile/internal/logging"
)

var errNotConnected = fmt.Errorf("%w: connect a wallet first", ErrNoProvider)

// Controller owns the application state. Every change goes through
// state.Reduce under c.mu; status banners go to the notifier.
type Controller struct {
	sessions *SessionManager
	form     FormController
	notifier *notify.Notifier
	logger   logging.Logger

	mu      sync.Mutex
	st      state.State
	session *Session
}

func NewController(sm *SessionManager, n *notify.Notifier, l logging.Logger) *Controller {
	return &Controller{
		sessions: sm,
		notifier: n,
		logger:   l.With("module", "controller"),
		st:       state.Initial(),
	}
}

func (c *Controller) dispatch(e state.Event) {
	c.mu.Lock()
	c.st = state.Reduce(c.st, e)
	c.mu.Unlock()
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() state.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.st
}

func (c *Controller) current() (*Session, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session, c.st.Session.Epoch
}

func (c *Controller) fail(ctx context.Context, op string, err error) {
	c.logger.Debug(ctx, op+" failed", "error", err)
	c.notifier.Set(notify.KindError, Message(err))
}

// Connect opens a session and loads the connected account's profile.
func (c *Controller) Connect(ctx context.Context) error {
	sess, err := c.sessions.Connect(ctx)
	if err != nil {
		c.fail(ctx, "connect", err)
		return err
	}

	c.mu.Lock()
	c.session = sess
	c.st = state.Reduce(c.st, state.Connected{Account: sess.Account})
	c.mu.Unlock()

	c.notifier.Set(notify.KindSuccess, "connected as "+sess.Account.Hex())
	_ = c.RefreshOwn(ctx)
	return nil
}

// Disconnect drops the session and everything loaded under it.
func (c *Controller) Disconnect(ctx context.Context) {
	c.sessions.Disconnect(ctx)

	c.mu.Lock()
	c.session = nil
	c.st = state.Reduce(c.st, state.Disconnected{})
	c.mu.Unlock()

	c.notifier.Set(notify.KindInfo, "disconnected")
}

// Edit records form input without submitting it.
func (c *Controller) Edit(fields state.Fields) {
	c.dispatch(state.FormEdited{Fields: fields})
}

// Submit validates fields, upserts them and waits for confirmation. On
// success the form is cleared and the own profile is read again.
func (c *Controller) Submit(ctx context.Context, fields state.Fields) error {
	sess, epoch := c.current()
	if sess == nil {
		c.fail(ctx, "submit", errNotConnected)
		return errNotConnected
	}

	p, err := c.form.Validate(fields)
	if err != nil {
		c.dispatch(state.ValidationFailed{Epoch: epoch, Fields: fields, Reason: Message(err)})
		c.fail(ctx, "submit", err)
		return err
	}

	c.dispatch(state.SubmitStarted{Epoch: epoch, Fields: fields})
	c.notifier.Set(notify.KindInfo, "waiting for wallet approval")

	rc, err := c.form.Submit(ctx, sess.Transactor, p, func(h chain.Hash) {
		c.dispatch(state.SubmitAccepted{Epoch: epoch, Hash: h})
		c.notifier.Set(notify.KindInfo, "transaction "+h.Hex()+" sent, waiting for confirmation")
	})
	if err != nil {
		c.dispatch(state.SubmitFailed{Epoch: epoch, Reason: Message(err)})
		c.fail(ctx, "submit", err)
		return err
	}

	c.dispatch(state.SubmitConfirmed{Epoch: epoch, Hash: rc.TxHash})
	c.notifier.Set(notify.KindSuccess, fmt.Sprintf("profile saved in block %d", rc.BlockNumber))
	c.logger.Info(ctx, "profile updated", "hash", rc.TxHash.Hex(), "block", rc.BlockNumber)

	_ = c.refreshOwn(ctx, sess, epoch)
	return nil
}

// RefreshOwn reads the connected account's profile.
func (c *Controller) RefreshOwn(ctx context.Context) error {
	sess, epoch := c.current()
	if sess == nil {
		c.fail(ctx, "refresh", errNotConnected)
		return errNotConnected
	}
	return c.refreshOwn(ctx, sess, epoch)
}

func (c *Controller) refreshOwn(ctx context.Context, sess *Session, epoch uint64) error {
	c.dispatch(state.OwnLoading{Epoch: epoch})

	l, err := NewProfileViewer(sess.Viewer).LoadAddress(ctx, sess.Account)
	if err != nil {
		c.dispatch(state.OwnFailed{Epoch: epoch, Reason: Message(err)})
		c.fail(ctx, "refresh", err)
		return err
	}
	c.dispatch(state.OwnLoaded{Epoch: epoch, Profile: l.Profile})
	return nil
}

// Search reads the profile of the address typed by the user. Only the search
// view is touched.
func (c *Controller) Search(ctx context.Context, input string) (*Lookup, error) {
	sess, epoch := c.current()
	if sess == nil {
		c.fail(ctx, "search", errNotConnected)
		return nil, errNotConnected
	}

	viewer := NewProfileViewer(sess.Viewer)
	address, err := viewer.Parse(input)
	if err != nil {
		c.dispatch(state.SearchFailed{Epoch: epoch, Reason: Message(err)})
		c.fail(ctx, "search", err)
		return nil, err
	}

	c.dispatch(state.SearchStarted{Epoch: epoch, Address: address})
	l, err := viewer.LoadAddress(ctx, address)
	if err != nil {
		c.dispatch(state.SearchFailed{Epoch: epoch, Address: address, Reason: Message(err)})
		c.fail(ctx, "search", err)
		return nil, err
	}
	c.dispatch(state.SearchLoaded{Epoch: epoch, Address: address, Profile: l.Profile})
	return l, nil
}

// Balance reports the connected account's confirmed balance.
func (c *Controller) Balance(ctx context.Context) (chain.Address, uint64, error) {
	sess, _ := c.current()
	if sess == nil {
		c.fail(ctx, "balance", errNotConnected)
		return chain.Address{}, 0, errNotConnected
	}
	b, err := sess.Viewer.Balance(ctx, sess.Account)
	if err != nil {
		err = Classify(err)
		c.fail(ctx, "balance", err)
		return sess.Account, 0, err
	}
	return sess.Account, b, nil
}

// Status returns the current banner, if any.
func (c *Controller) Status() (notify.Message, bool) {
	return c.notifier.Current()
}
