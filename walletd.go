package walletd

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/lnwallet/walletd/build"
	"github.com/lnwallet/walletd/chain"
	"github.com/lnwallet/walletd/channels"
	"github.com/lnwallet/walletd/config"
	"github.com/lnwallet/walletd/events"
	"github.com/lnwallet/walletd/invoices"
	"github.com/lnwallet/walletd/lnd"
	"github.com/lnwallet/walletd/mempool"
	"github.com/lnwallet/walletd/postgresql"
	"github.com/lnwallet/walletd/rates"
	"github.com/lnwallet/walletd/secrets"
	"github.com/lnwallet/walletd/wallet"
)

const defaultTargetConf = 6

// App owns the whole service stack: the secret store, the config change
// bus, the connection manager and the domain services on top of it. One App
// means one live node connection.
type App struct {
	Bus         *events.Bus
	Credentials *secrets.CredentialStore
	Manager     *lnd.ConnectionManager
	Wallet      *wallet.Service
	Channels    *channels.Service
	Invoices    *invoices.Service
	Rates       *rates.Client

	pool   *pgxpool.Pool
	cancel context.CancelFunc
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	log.Printf(`Starting walletd, tag='%s', revision='%s'`, build.GetTag(), build.GetRevision())

	var pool *pgxpool.Pool
	var store secrets.Store
	if cfg.DatabaseUrl != "" {
		var err error
		pool, err = postgresql.PgConnect(cfg.DatabaseUrl)
		if err != nil {
			return nil, fmt.Errorf("pgConnect() error: %w", err)
		}

		store = postgresql.NewSecretStore(pool)
	} else {
		log.Printf("no DATABASE_URL set, credentials are kept in memory only")
		store = secrets.NewMemoryStore()
	}

	if cfg.SecretKey != "" {
		encrypted, err := secrets.NewEncryptedStore(store, cfg.SecretKey)
		if err != nil {
			return nil, err
		}
		store = encrypted
	} else {
		log.Printf("no SECRET_KEY set, secrets are stored in the clear")
	}

	feeStrategy, err := chain.ParseFeeStrategy(cfg.FeeStrategy)
	if err != nil {
		return nil, err
	}

	var feeEstimator chain.FeeEstimator
	if cfg.MempoolApiBaseUrl != "" {
		mempoolClient, err := mempool.NewMempoolClient(cfg.MempoolApiBaseUrl)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize mempool client: %w", err)
		}

		log.Printf("using mempool api for fee estimation: %v, fee strategy: %v",
			cfg.MempoolApiBaseUrl, cfg.FeeStrategy)
		feeEstimator = chain.NewCachedFeeEstimator(mempoolClient)
	} else {
		feeEstimator = chain.NewDefaultFeeEstimator(defaultTargetConf)
	}

	var ratesClient *rates.Client
	if cfg.RatesApiBaseUrl != "" {
		ratesClient, err = rates.NewClient(cfg.RatesApiBaseUrl)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize rates client: %w", err)
		}
	}

	bus := events.NewBus()
	credentialStore := secrets.NewCredentialStore(store, bus)
	manager := lnd.NewConnectionManager(credentialStore)

	ctx, cancel := context.WithCancel(ctx)
	go manager.Start(ctx, bus)

	return &App{
		Bus:         bus,
		Credentials: credentialStore,
		Manager:     manager,
		Wallet:      wallet.NewService(manager, feeEstimator, feeStrategy),
		Channels:    channels.NewService(manager),
		Invoices:    invoices.NewService(manager),
		Rates:       ratesClient,
		pool:        pool,
		cancel:      cancel,
	}, nil
}

// Each confirm-then-act flow gets its own state machine instance; the
// machine owns its data exclusively.

func (a *App) NewOpener() *channels.Opener {
	return channels.NewOpener(a.Manager)
}

func (a *App) NewCloser() *channels.Closer {
	return channels.NewCloser(a.Manager)
}

func (a *App) NewPayer() *invoices.Payer {
	return invoices.NewPayer(a.Manager)
}

func (a *App) Close() {
	a.cancel()
	a.Manager.Close()
	if a.pool != nil {
		a.pool.Close()
	}
}

// Main runs the stack until the context is canceled.
func Main(ctx context.Context, cfg *config.Config) error {
	app, err := NewApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	<-ctx.Done()
	return nil
}
