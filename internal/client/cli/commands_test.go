package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/chainprofile/internal/chain"
	"github.com/dmitrijs2005/chainprofile/internal/client/models"
	"github.com/dmitrijs2005/chainprofile/internal/client/notify"
	"github.com/dmitrijs2005/chainprofile/internal/client/services"
	"github.com/dmitrijs2005/chainprofile/internal/client/state"
	"github.com/dmitrijs2005/chainprofile/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	acctA = chain.Address{19: 0x0a}
	acctB = chain.Address{19: 0x0b}
)

type fakeController struct {
	st        state.State
	status    *notify.Message
	submitted []state.Fields
	err       error
	lookup    *services.Lookup
	searched  []string
}

func (f *fakeController) Connect(ctx context.Context) error {
	f.st = state.Reduce(f.st, state.Connected{Account: acctA})
	return f.err
}

func (f *fakeController) Disconnect(ctx context.Context) {
	f.st = state.Reduce(f.st, state.Disconnected{})
}

func (f *fakeController) Submit(ctx context.Context, fields state.Fields) error {
	f.submitted = append(f.submitted, fields)
	return f.err
}

func (f *fakeController) RefreshOwn(ctx context.Context) error {
	if f.err != nil {
		return f.err
	}
	f.st = state.Reduce(f.st, state.OwnLoaded{Epoch: f.st.Session.Epoch, Profile: chain.Profile{Name: "Ann", Age: 30, Profession: "Engineer", Bio: "Hi"}})
	return nil
}

func (f *fakeController) Search(ctx context.Context, input string) (*services.Lookup, error) {
	f.searched = append(f.searched, input)
	if f.err != nil {
		return nil, f.err
	}
	ep := f.st.Session.Epoch
	f.st = state.Reduce(f.st, state.SearchStarted{Epoch: ep, Address: acctB})
	f.st = state.Reduce(f.st, state.SearchLoaded{Epoch: ep, Address: acctB})
	return &services.Lookup{Address: acctB}, nil
}

func (f *fakeController) Balance(ctx context.Context) (chain.Address, uint64, error) {
	return acctA, 79, f.err
}

func (f *fakeController) Snapshot() state.State { return f.st }

func (f *fakeController) Status() (notify.Message, bool) {
	if f.status == nil {
		return notify.Message{}, false
	}
	return *f.status, true
}

type fakeKeystore struct {
	keys       []*models.StoredKey
	def        chain.Address
	created    []string
	password   []byte
	createErr  error
	setDefault []chain.Address
}

func (f *fakeKeystore) Create(ctx context.Context, label string, password []byte) (chain.Address, error) {
	if f.createErr != nil {
		return chain.Address{}, f.createErr
	}
	f.created = append(f.created, label)
	f.password = append([]byte(nil), password...)
	return acctA, nil
}

func (f *fakeKeystore) List(ctx context.Context) ([]*models.StoredKey, error) {
	return f.keys, nil
}

func (f *fakeKeystore) Default(ctx context.Context) (*models.StoredKey, error) {
	for _, k := range f.keys {
		if k.Address == f.def {
			return k, nil
		}
	}
	return nil, errors.New("no default")
}

func (f *fakeKeystore) SetDefault(ctx context.Context, address chain.Address) error {
	f.setDefault = append(f.setDefault, address)
	return nil
}

func newTestApp(ctrl *fakeController, ks *fakeKeystore, input string) *App {
	return &App{
		logger:     logging.Nop{},
		controller: ctrl,
		keystore:   ks,
		reader:     bufio.NewReader(strings.NewReader(input)),
		out:        io.Discard,
	}
}

func stubPasswords(t *testing.T, pws ...string) {
	t.Helper()
	orig := getPassword
	getPassword = func(io.Writer, string) ([]byte, error) {
		if len(pws) == 0 {
			return nil, io.EOF
		}
		pw := pws[0]
		pws = pws[1:]
		return []byte(pw), nil
	}
	t.Cleanup(func() { getPassword = orig })
}

func TestWalletNew(t *testing.T) {
	out := capturePrint(t)
	stubPasswords(t, "pw", "pw")
	ks := &fakeKeystore{}
	a := newTestApp(&fakeController{}, ks, " main \n")

	require.NoError(t, a.WalletNew(context.Background()))
	assert.Equal(t, []string{"main"}, ks.created)
	assert.Equal(t, []byte("pw"), ks.password)
	assert.Contains(t, *out, "Created account "+acctA.Hex())
}

func TestWalletNew_PasswordMismatch(t *testing.T) {
	capturePrint(t)
	stubPasswords(t, "pw", "other")
	ks := &fakeKeystore{}
	a := newTestApp(&fakeController{}, ks, "main\n")

	require.ErrorIs(t, a.WalletNew(context.Background()), errPasswordMismatch)
	assert.Empty(t, ks.created)
}

func TestWalletList(t *testing.T) {
	out := capturePrint(t)
	created := time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC)
	ks := &fakeKeystore{
		keys: []*models.StoredKey{
			{Address: acctA, Label: "main", CreatedAt: created},
			{Address: acctB, Label: "spare", CreatedAt: created},
		},
		def: acctB,
	}
	a := newTestApp(&fakeController{}, ks, "")

	require.NoError(t, a.WalletList(context.Background()))
	require.Len(t, *out, 2)
	assert.True(t, strings.HasPrefix((*out)[0], "  "+acctA.Hex()))
	assert.True(t, strings.HasPrefix((*out)[1], "* "+acctB.Hex()))
	assert.Contains(t, (*out)[1], "2026-01-02 03:04")
}

func TestWalletList_Empty(t *testing.T) {
	out := capturePrint(t)
	a := newTestApp(&fakeController{}, &fakeKeystore{}, "")

	require.NoError(t, a.WalletList(context.Background()))
	assert.Contains(t, (*out)[0], "wallet new")
}

func TestWalletUse(t *testing.T) {
	capturePrint(t)
	ks := &fakeKeystore{}
	a := newTestApp(&fakeController{}, ks, "")

	require.Error(t, a.WalletUse(context.Background(), "nope"))
	require.NoError(t, a.WalletUse(context.Background(), acctB.Hex()))
	assert.Equal(t, []chain.Address{acctB}, ks.setDefault)
}

func TestSubmit_ReadsFourFields(t *testing.T) {
	capturePrint(t)
	ctrl := &fakeController{}
	a := newTestApp(ctrl, &fakeKeystore{}, "  Ann \n30\nEngineer\nline one\nline two\n\n")

	require.NoError(t, a.Submit(context.Background()))
	require.Len(t, ctrl.submitted, 1)
	assert.Equal(t, state.Fields{
		Name:       "  Ann ",
		Age:        "30",
		Profession: "Engineer",
		Bio:        "line one\nline two",
	}, ctrl.submitted[0])
}

func TestSubmit_InputEndsEarly(t *testing.T) {
	capturePrint(t)
	ctrl := &fakeController{}
	a := newTestApp(ctrl, &fakeKeystore{}, "Ann\n")

	require.Error(t, a.Submit(context.Background()))
	assert.Empty(t, ctrl.submitted)
}

func TestMe_PrintsProfile(t *testing.T) {
	out := capturePrint(t)
	ctrl := &fakeController{}
	a := newTestApp(ctrl, &fakeKeystore{}, "")
	require.NoError(t, a.Connect(context.Background()))

	require.NoError(t, a.Me(context.Background()))
	joined := strings.Join(*out, "\n")
	assert.Contains(t, joined, "Name:       Ann")
	assert.Contains(t, joined, "Age:        30")
}

func TestSearch_NoProfileFound(t *testing.T) {
	out := capturePrint(t)
	ctrl := &fakeController{}
	a := newTestApp(ctrl, &fakeKeystore{}, "")
	require.NoError(t, a.Connect(context.Background()))

	require.NoError(t, a.Search(context.Background(), acctB.Hex()))
	assert.Contains(t, *out, "No profile found for "+acctB.Hex())
}

func TestSearch_ErrorNotPrintedTwice(t *testing.T) {
	out := capturePrint(t)
	ctrl := &fakeController{err: services.ErrInvalidAddress}
	a := newTestApp(ctrl, &fakeKeystore{}, "")

	require.ErrorIs(t, a.Search(context.Background(), "bad"), services.ErrInvalidAddress)
	assert.Empty(t, *out)
}

func TestBalanceAndStatus(t *testing.T) {
	out := capturePrint(t)
	ctrl := &fakeController{}
	a := newTestApp(ctrl, &fakeKeystore{}, "")

	require.NoError(t, a.Status(context.Background()))
	ctrl.status = &notify.Message{Kind: notify.KindSuccess, Text: "profile saved"}
	require.NoError(t, a.Status(context.Background()))
	require.NoError(t, a.Balance(context.Background()))

	assert.Equal(t, []string{
		"No status",
		"[success] profile saved",
		acctA.Hex() + " balance: 79",
	}, *out)
}

func TestPrompt(t *testing.T) {
	ctrl := &fakeController{}
	a := newTestApp(ctrl, &fakeKeystore{}, "")
	assert.Equal(t, "(disconnected)", a.prompt())
	assert.False(t, a.isConnected())

	require.NoError(t, a.Connect(context.Background()))
	ctrl.status = &notify.Message{Kind: notify.KindError, Text: "x"}
	assert.Equal(t, "("+acctA.Short()+") [error]", a.prompt())
	assert.True(t, a.isConnected())

	require.NoError(t, a.Disconnect(context.Background()))
	assert.False(t, a.isConnected())
}

func TestPrintStatus_IgnoresExpiry(t *testing.T) {
	out := capturePrint(t)
	printStatus(nil)
	printStatus(&notify.Message{Kind: notify.KindInfo, Text: "hi"})
	assert.Equal(t, []string{"[info] hi"}, *out)
}

func TestApp_CloseRunsClosersOnce(t *testing.T) {
	calls := 0
	a := newTestApp(&fakeController{}, &fakeKeystore{}, "")
	a.closers = []func() error{
		func() error { calls++; return nil },
		func() error { calls++; return errors.New("ignored") },
	}
	a.Close()
	a.Close()
	assert.Equal(t, 2, calls)
}

func TestApprover(t *testing.T) {
	tx := &chain.Transaction{From: acctA, To: acctB, Method: chain.MethodUpsert, Args: chain.Profile{Name: "Ann", Age: 30, Bio: "Hi"}, Nonce: 2, Fee: 21}
	key := &models.StoredKey{Address: acctA, Label: "main"}

	var out bytes.Buffer
	ap := &promptApprover{reader: rdr("y\nn\n"), out: &out}
	ok, err := ap.ApproveConnect(context.Background(), key)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = ap.ApproveTransaction(context.Background(), tx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, out.String(), "fee:     21")
	assert.Contains(t, out.String(), "nonce:   2")

	auto := &promptApprover{reader: rdr(""), out: io.Discard, autoApprove: true}
	ok, err = auto.ApproveConnect(context.Background(), key)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = auto.ApproveTransaction(context.Background(), tx)
	require.NoError(t, err)
	assert.True(t, ok)

	stubPasswords(t, "pw")
	pw, err := auto.Password(context.Background(), acctA)
	require.NoError(t, err)
	assert.Equal(t, []byte("pw"), pw)
}
