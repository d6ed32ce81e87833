package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/devnet"
	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/journal"
	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/metrics"
	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/model"
	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/repository/clickhouse"
	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/transport"
	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type config struct {
	HubDomain        uint32        `long:"hub-domain" env:"ESCROW_HUB_DOMAIN" description:"hub domain id" default:"1"`
	ChainID          uint64        `long:"chain-id" env:"ESCROW_CHAIN_ID" description:"chain id bound into shipping signatures" default:"31337"`
	Owner            string        `long:"owner" env:"ESCROW_OWNER" description:"owner address of the hub and satellites" required:"true"`
	AllowedSigner    string        `long:"allowed-signer" env:"ESCROW_ALLOWED_SIGNER" description:"shipping oracle address" required:"true"`
	FeePercent       string        `long:"fee-percent" env:"ESCROW_FEE_PERCENT" description:"initial protocol fee in percent" default:"1"`
	FeeDelay         time.Duration `long:"fee-delay" env:"ESCROW_FEE_DELAY" description:"timelock between preparing and implementing a fee" default:"168h"`
	Satellites       []string      `long:"satellite" env:"ESCROW_SATELLITES" env-delim:"," description:"satellite as domain or domain:payout-token, repeatable"`
	Liquidity        string        `long:"satellite-liquidity" env:"ESCROW_SATELLITE_LIQUIDITY" description:"liquidity minted to each satellite" default:"1000000000000000000000"`
	ArmFloat         string        `long:"arm-float" env:"ESCROW_ARM_FLOAT" description:"hub-side float of each satellite arm" default:"1000000000000000000000"`
	PoolDepth        string        `long:"pool-depth" env:"ESCROW_POOL_DEPTH" description:"depth of each side of a payout token pool" default:"1000000000000000000000000"`
	DeliveryInterval time.Duration `long:"delivery-interval" env:"ESCROW_DELIVERY_INTERVAL" description:"bridge delivery interval" default:"500ms"`
	MaxAttempts      int           `long:"max-attempts" env:"ESCROW_MAX_ATTEMPTS" description:"deliveries before a message is dead-lettered" default:"5"`
	HTTPAddr         string        `long:"http-addr" env:"ESCROW_HTTP_ADDR" description:"address of the query API" default:":8080"`
	MetricsAddr      string        `long:"metrics-addr" env:"ESCROW_METRICS_ADDR" description:"address for metrics server" default:":2112"`
	ClickhouseDSN    string        `long:"clickhouse-dsn" env:"ESCROW_CLICKHOUSE_DSN" description:"ClickHouse DSN, enables the event journal"`
	JournalFlushSize int           `long:"journal-flush-size" env:"ESCROW_JOURNAL_FLUSH_SIZE" description:"events per journal insert" default:"500"`
	JournalBuffer    int           `long:"journal-buffer" env:"ESCROW_JOURNAL_BUFFER" description:"events held in memory before new ones are dropped" default:"10000"`
	JournalInterval  time.Duration `long:"journal-flush-interval" env:"ESCROW_JOURNAL_FLUSH_INTERVAL" description:"journal flush interval" default:"1s"`
}

func main() {
	cfg := config{}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()

	if _, err := flags.ParseArgs(&cfg, os.Args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		logger.Fatal("failed to parse flags", zap.Error(err))
	}

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("escrow node failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	netCfg, err := cfg.devnet()
	if err != nil {
		return err
	}

	startMetricsServer(ctx, cfg.MetricsAddr, logger)

	var (
		opts   []devnet.Option
		events transport.Journal
	)
	if cfg.ClickhouseDSN != "" {
		repo, err := clickhouse.NewRepository(cfg.ClickhouseDSN, metrics.NewClickhouseRepository())
		if err != nil {
			return fmt.Errorf("init repository: %w", err)
		}
		defer func() {
			if err := repo.Close(); err != nil {
				logger.Error("failed to close repository", zap.Error(err))
			}
		}()

		writer := journal.NewWriter(journal.Config{
			FlushSize:     cfg.JournalFlushSize,
			FlushInterval: cfg.JournalInterval,
			BufferSize:    cfg.JournalBuffer,
		}, repo, metrics.NewJournal(), logger)
		writer.Start(ctx)
		defer writer.Stop()

		opts = append(opts, devnet.WithEventSink(writer))
		events = repo
	}

	d, err := devnet.New(ctx, netCfg, logger, opts...)
	if err != nil {
		return fmt.Errorf("init devnet: %w", err)
	}

	handler := transport.NewHandler(d.Hub, model.Domain(cfg.HubDomain), events, logger)
	startHTTPServer(ctx, cfg.HTTPAddr, handler.Router(), logger)

	logger.Info("escrow node started",
		zap.Uint32("hub_domain", cfg.HubDomain),
		zap.Int("satellites", len(netCfg.Satellites)),
		zap.Bool("journal", cfg.ClickhouseDSN != ""),
	)
	if err := d.Run(ctx, cfg.DeliveryInterval); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func startMetricsServer(ctx context.Context, addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	startHTTPServer(ctx, addr, mux, logger)
}

func startHTTPServer(ctx context.Context, addr string, handler http.Handler, logger *zap.Logger) {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("starting http server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", zap.String("addr", addr), zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown http server", zap.String("addr", addr), zap.Error(err))
		}
	}()
}
