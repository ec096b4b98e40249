package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dmitrijs2005/chainprofile/internal/chain"
	"github.com/dmitrijs2005/chainprofile/internal/client/client"
	"github.com/dmitrijs2005/chainprofile/internal/client/config"
	"github.com/dmitrijs2005/chainprofile/internal/client/models"
	"github.com/dmitrijs2005/chainprofile/internal/client/notify"
	"github.com/dmitrijs2005/chainprofile/internal/client/repositories"
	"github.com/dmitrijs2005/chainprofile/internal/client/services"
	"github.com/dmitrijs2005/chainprofile/internal/client/state"
	"github.com/dmitrijs2005/chainprofile/internal/client/wallet"
	"github.com/dmitrijs2005/chainprofile/internal/logging"
)

// controller is the part of services.Controller the commands use.
type controller interface {
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context)
	Submit(ctx context.Context, fields state.Fields) error
	RefreshOwn(ctx context.Context) error
	Search(ctx context.Context, input string) (*services.Lookup, error)
	Balance(ctx context.Context) (chain.Address, uint64, error)
	Snapshot() state.State
	Status() (notify.Message, bool)
}

type keystore interface {
	Create(ctx context.Context, label string, password []byte) (chain.Address, error)
	List(ctx context.Context) ([]*models.StoredKey, error)
	Default(ctx context.Context) (*models.StoredKey, error)
	SetDefault(ctx context.Context, address chain.Address) error
}

type App struct {
	config     *config.Config
	logger     logging.Logger
	controller controller
	keystore   keystore
	reader     *bufio.Reader
	out        io.Writer
	closers    []func() error
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	level := slog.LevelWarn
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := logging.NewText(os.Stderr, level)

	repos, err := repositories.InitDatabase(ctx, c.WalletPath)
	if err != nil {
		logger.Error(ctx, "error initializing wallet database", "path", c.WalletPath, "error", err)
		return nil, err
	}

	nodeClient, err := client.NewGRPCClient(c.NodeAddr, client.CallTimeout(c.RequestTimeout))
	if err != nil {
		_ = repos.Close()
		return nil, err
	}

	reader := bufio.NewReader(os.Stdin)
	ks := wallet.NewKeystore(repos.DB())
	approver := &promptApprover{reader: reader, out: os.Stdout, autoApprove: c.AutoApprove}
	provider := wallet.NewProvider(nodeClient, ks, approver, wallet.Options{
		NetworkID:           c.NetworkID,
		StoreAddress:        c.Store(),
		ReceiptPollInterval: c.ReceiptPollInterval,
		ConfirmationTimeout: c.ConfirmationTimeout,
	}, logger)

	n := notify.New(c.StatusTTL, nil)
	n.OnChange(printStatus)

	return &App{
		config:     c,
		logger:     logger,
		controller: services.NewController(services.NewSessionManager(services.WalletSigner(provider)), n, logger),
		keystore:   ks,
		reader:     reader,
		out:        os.Stdout,
		closers:    []func() error{nodeClient.Close, repos.Close},
	}, nil
}

// printStatus shows a banner as soon as it is set; expiry is silent.
func printStatus(m *notify.Message) {
	if m == nil {
		return
	}
	printlnFn(fmt.Sprintf("[%s] %s", m.Kind, m.Text))
}

// Run starts the REPL and blocks until the user leaves.
func (a *App) Run(ctx context.Context) {
	defer a.Close()
	printlnFn("chainprofile client (type 'help' for commands)")
	runREPL(ctx, a, a.prompt, a.reader)
}

func (a *App) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.logger.Warn(context.Background(), "close failed", "error", err)
		}
	}
	a.closers = nil
}

func (a *App) isConnected() bool {
	return a.controller.Snapshot().Session.Connected
}

func (a *App) prompt() string {
	s := a.controller.Snapshot()
	p := "(disconnected)"
	if s.Session.Connected {
		p = "(" + s.Session.Account.Short() + ")"
	}
	if m, ok := a.controller.Status(); ok {
		p += " [" + string(m.Kind) + "]"
	}
	return p
}
