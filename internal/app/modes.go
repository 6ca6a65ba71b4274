package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/ocobot/internal/action"
	"github.com/alanyoungcy/ocobot/internal/bot"
	"github.com/alanyoungcy/ocobot/internal/crypto"
	"github.com/alanyoungcy/ocobot/internal/domain"
	"github.com/alanyoungcy/ocobot/internal/exchange"
	"github.com/alanyoungcy/ocobot/internal/platform/binance"
	"github.com/alanyoungcy/ocobot/internal/server"
	"github.com/alanyoungcy/ocobot/internal/server/handler"
	"github.com/alanyoungcy/ocobot/internal/server/ws"
	"github.com/alanyoungcy/ocobot/internal/service"
	"github.com/alanyoungcy/ocobot/internal/strategy"
	"github.com/alanyoungcy/ocobot/internal/trade"
)

const shutdownTimeout = 10 * time.Second

// TradeMode runs the bot loop for the configured symbol. The HTTP server and
// the WebSocket hub run alongside it when enabled. The loop ending for any
// reason, action.ErrExit included, stops the other goroutines; losing the
// trading lock stops the loop with domain.ErrLockLost.
func (a *App) TradeMode(ctx context.Context, deps *Dependencies) error {
	cfg := a.cfg
	symbol := cfg.Trade.Symbol

	var lockLost <-chan struct{}
	if deps.LockManager != nil {
		unlock, lost, err := deps.LockManager.Acquire(ctx, "ocobot:"+symbol, cfg.Redis.LockTTL.Duration)
		if err != nil {
			return fmt.Errorf("app: trade lock: %w", err)
		}
		defer unlock()
		lockLost = lost
	}

	tradeBot, err := a.buildBot(deps)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return tradeBot.Start(gctx, bot.NewQuantity(cfg.Trade.InitialQuantity.Decimal))
	})

	// Another instance may trade once the lock is gone, so stop trading too.
	if lockLost != nil {
		g.Go(func() error {
			select {
			case <-lockLost:
				return fmt.Errorf("app: trade lock: %w", domain.ErrLockLost)
			case <-gctx.Done():
				return nil
			}
		})
	}

	if cfg.Server.Enabled {
		a.startHTTPServer(gctx, g, deps)
	}

	a.logger.InfoContext(ctx, "trade mode running",
		slog.String("symbol", symbol),
		slog.String("account", cfg.Binance.Account),
		slog.Any("strategies", cfg.Trade.Strategies),
	)
	return g.Wait()
}

// buildBot assembles the exchange client, the trade client decorators, the
// strategy supplier, the two limits and the observers.
func (a *App) buildBot(deps *Dependencies) (*bot.Bot, error) {
	cfg := a.cfg

	ex, err := a.exchangeClient()
	if err != nil {
		return nil, err
	}

	var client trade.Client = trade.NewBasicClient(ex, trade.Config{
		Symbol: cfg.Trade.Symbol,
		Coefficients: trade.Coefficients{
			SellRaise:    cfg.Trade.SellRaise.Decimal,
			SellDecrease: cfg.Trade.SellDecrease.Decimal,
			BuyRaise:     cfg.Trade.BuyRaise.Decimal,
			BuyDecrease:  cfg.Trade.BuyDecrease.Decimal,
		},
		PriceDigits: int32(cfg.Trade.PriceDigits),
		Poll: trade.PollConfig{
			Interval:    cfg.Trade.PollInterval.Duration,
			MaxAttempts: int64(cfg.Trade.PollMaxAttempts),
		},
	})
	if deps.OrderStore != nil {
		client = trade.NewJournalingClient(client, deps.OrderStore, cfg.Trade.Symbol, a.logger)
	}
	client = trade.NewLoggingClient(trade.NewRecoveringClient(client), a.logger)

	cycle, err := strategy.NewDefaultRegistry(client, a.logger).Cycle(cfg.Trade.Strategies)
	if err != nil {
		return nil, fmt.Errorf("app: strategies: %w", err)
	}
	selections := action.NewCounter(0)
	supplier := strategy.NewLoggingSupplier(strategy.NewCountingSupplier(cycle, selections), a.logger)

	onExpiration, err := action.Parse(cfg.Limits.ExpirationAction, cfg.Limits.ExpirationSleep.Duration)
	if err != nil {
		return nil, fmt.Errorf("app: expiration action: %w", err)
	}
	strategyChanges := action.NewLimit(int64(cfg.Limits.StrategyChanges),
		action.NewLogging(action.NewSleep(cfg.Limits.Cooldown.Duration), a.logger))
	expiration := action.NewLimit(int64(cfg.Limits.Expirations), action.NewLogging(onExpiration, a.logger))

	observer := bot.MultiObserver{
		service.MetricsObserver{Selections: selections},
		service.NewJournal(cfg.Trade.Symbol, deps.RunStore, deps.StateCache, deps.SignalBus, deps.AuditStore, a.logger),
		service.NewAlerts(cfg.Trade.Symbol, deps.Notifier, a.logger),
	}

	return bot.New(supplier, strategyChanges, expiration, observer, a.logger), nil
}

// exchangeClient resolves the API secret and returns the Binance client
// wrapped with retry and logging.
func (a *App) exchangeClient() (exchange.Client, error) {
	bc := a.cfg.Binance

	secret, err := crypto.LoadSecret(crypto.SecretConfig{
		RawSecret:           bc.APISecret,
		EncryptedSecretPath: bc.EncryptedSecretPath,
		Password:            bc.SecretPassword,
	})
	if err != nil {
		return nil, fmt.Errorf("app: load api secret: %w", err)
	}

	bin, err := binance.NewClient(binance.Config{
		BaseURL:    bc.BaseURL,
		Account:    binance.Account(strings.ToLower(strings.TrimSpace(bc.Account))),
		RecvWindow: bc.RecvWindow.Duration,
		Timeout:    bc.Timeout.Duration,
	}, &crypto.HMACAuth{Key: bc.APIKey, Secret: secret})
	if err != nil {
		return nil, fmt.Errorf("app: binance client: %w", err)
	}

	return exchange.NewLoggingClient(exchange.NewRetryClient(bin), a.logger), nil
}

// ArchiveMode copies runs and orders older than the retention window to
// object storage once, then returns.
func (a *App) ArchiveMode(ctx context.Context, deps *Dependencies) error {
	if deps.Archiver == nil {
		return fmt.Errorf("app: archive mode requires s3 and postgres")
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -a.cfg.Archive.RetentionDays)
	a.logger.InfoContext(ctx, "archiving",
		slog.Time("before", cutoff),
		slog.String("bucket", a.cfg.S3.Bucket),
	)

	runs, err := deps.Archiver.ArchiveRuns(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("app: archive runs: %w", err)
	}
	orders, err := deps.Archiver.ArchiveOrders(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("app: archive orders: %w", err)
	}

	a.logger.InfoContext(ctx, "archive complete",
		slog.Int64("runs", runs),
		slog.Int64("orders", orders),
	)
	return nil
}

// ServerMode serves the read-only HTTP API and WebSocket stream until ctx is
// cancelled.
func (a *App) ServerMode(ctx context.Context, deps *Dependencies) error {
	g, gctx := errgroup.WithContext(ctx)
	a.startHTTPServer(gctx, g, deps)
	a.logger.InfoContext(ctx, "server mode running", slog.Int("port", a.cfg.Server.Port))
	return g.Wait()
}

// startHTTPServer launches the HTTP server, and the WebSocket hub when a
// signal bus is configured, as part of g.
func (a *App) startHTTPServer(ctx context.Context, g *errgroup.Group, deps *Dependencies) {
	cfg := a.cfg

	handlers := server.Handlers{
		Health: handler.NewHealthHandler(),
		Status: handler.NewStatusHandler(cfg.Mode, cfg.Trade.Symbol, deps.StateCache, a.logger),
	}
	if deps.RunStore != nil {
		handlers.Runs = handler.NewRunHandler(deps.RunStore, a.logger)
	}
	if deps.OrderStore != nil {
		handlers.Orders = handler.NewOrderHandler(deps.OrderStore, a.logger)
	}

	var hub *ws.Hub
	if deps.SignalBus != nil {
		hub = ws.NewHub(deps.SignalBus, a.logger, ws.Config{
			Channels:    []string{service.ChannelRuns},
			Mode:        cfg.Mode,
			Symbol:      cfg.Trade.Symbol,
			CheckOrigin: originChecker(cfg.Server.CORSOrigins),
		})
		g.Go(func() error { return hub.Run(ctx) })
	}

	srv := server.NewServer(server.Config{
		Port:        cfg.Server.Port,
		CORSOrigins: cfg.Server.CORSOrigins,
		APIKey:      cfg.Server.APIKey,
		RateLimit:   cfg.Server.RateLimit,
		RateWindow:  cfg.Server.RateWindow.Duration,
	}, handlers, hub, deps.RateLimiter, a.logger)

	g.Go(func() error { return srv.Run(ctx, shutdownTimeout) })
}

// originChecker accepts WebSocket upgrades from the configured CORS origins.
// Requests without an Origin header, and any origin when "*" is listed, are
// accepted.
func originChecker(origins []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || slices.Contains(origins, "*") {
			return true
		}
		return slices.Contains(origins, origin)
	}
}
