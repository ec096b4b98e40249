// Package node wires the ledger node together: storage, services, the gRPC
// endpoint, the block producer and the metrics endpoint.
package node

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/chainprofile/internal/logging"
	"github.com/dmitrijs2005/chainprofile/internal/node/archive"
	"github.com/dmitrijs2005/chainprofile/internal/node/config"
	"github.com/dmitrijs2005/chainprofile/internal/node/events"
	"github.com/dmitrijs2005/chainprofile/internal/node/metrics"
	"github.com/dmitrijs2005/chainprofile/internal/node/services"
	"github.com/dmitrijs2005/chainprofile/internal/node/storage"
	"github.com/prometheus/client_golang/prometheus"

	gs "github.com/dmitrijs2005/chainprofile/internal/node/grpc"
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	store     storage.Manager
	publisher events.Publisher
	registry  *prometheus.Registry

	authService   *services.AuthService
	ledgerService *services.LedgerService
	producer      *services.BlockProducer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := logging.NewJSON(os.Stdout, level)

	store, err := storage.New(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	var publisher events.Publisher = events.Nop{}
	if c.NATSURL != "" {
		p, err := events.NewNATSPublisher(c.NATSURL, c.NATSSubject)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		publisher = p
	}

	var archiver archive.Archiver = archive.Nop{}
	if c.S3Bucket != "" {
		a, err := archive.NewS3Archiver(ctx, archive.Options{
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
			AccessKey:    c.S3AccessKey,
			SecretKey:    c.S3SecretKey,
		})
		if err != nil {
			_ = publisher.Close()
			_ = store.Close()
			return nil, err
		}
		archiver = a
	}

	registry := prometheus.NewRegistry()
	recorder := metrics.NewCollector(registry)

	as := services.NewAuthService(store, services.AuthConfig{
		SecretKey:      []byte(c.SecretKey),
		TokenTTL:       c.AccessTokenValidityDuration,
		ChallengeTTL:   c.ChallengeValidityDuration,
		GenesisBalance: c.GenesisBalance,
	})
	ls := services.NewLedgerService(store, services.LedgerConfig{
		NetworkID:    c.NetworkID,
		StoreAddress: c.Store(),
		Fee:          c.Fee,
	}, recorder)
	bp := services.NewBlockProducer(store, services.ProducerConfig{
		Interval: c.BlockInterval,
		MaxTxs:   c.MaxBlockTxs,
	}, publisher, archiver, recorder, logger)

	return &App{
		config:        c,
		logger:        logger,
		store:         store,
		publisher:     publisher,
		registry:      registry,
		authService:   as,
		ledgerService: ls,
		producer:      bp,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s, err := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.authService, app.ledgerService,
		app.config.SecretKey, gs.RateLimit{PerSecond: app.config.RateLimit, Burst: app.config.RateBurst})
	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return
	}
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startMetricsServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if app.config.MetricsAddr == "" {
		return
	}
	if err := metrics.NewServer(app.config.MetricsAddr, app.registry, app.logger).Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until a signal arrives or one of the components fails, then
// waits for all of them to stop and releases the backends.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "network", app.config.NetworkID, "store", app.config.Store().Hex())

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		_ = app.producer.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		app.startMetricsServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.publisher.Close(); err != nil {
		app.logger.Warn(context.Background(), "close publisher", "error", err)
	}
	if err := app.store.Close(); err != nil {
		app.logger.Warn(context.Background(), "close storage", "error", err)
	}
	app.logger.Info(context.Background(), "App stopped")
}
