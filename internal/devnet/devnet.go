// Package devnet assembles a hub and its satellites on one in-memory bridge
// network, each domain with its own ledger and swap router.
package devnet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/bridge"
	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/clock"
	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/hub"
	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/ledger"
	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/metrics"
	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/model"
	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/satellite"
	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/swap"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"go.uber.org/zap"
)

var ErrUnknownDomain = errors.New("unknown domain")

type SatelliteConfig struct {
	Domain model.Domain
	// PayoutToken is paid to sellers on this domain. Anything but the native
	// token gets a native/PayoutToken pool seeded with PoolDepth of each side.
	PayoutToken common.Address
	// Liquidity is minted to the satellite in native and PayoutToken.
	Liquidity *uint256.Int
	// ArmFloat is minted to the satellite's arm account on the hub ledger and
	// funds the pays it forwards.
	ArmFloat  *uint256.Int
	PoolDepth *uint256.Int
}

type Config struct {
	HubDomain     model.Domain
	ChainID       uint64
	Owner         common.Address
	AllowedSigner common.Address
	Fee           *uint256.Int
	FeeDelay      time.Duration
	Satellites    []SatelliteConfig

	MaxAttempts int
	Redelivery  bool
	// ShuffleSeed reorders deliveries when non-zero.
	ShuffleSeed int64
}

// Satellite is one satellite domain with its ledger and router.
type Satellite struct {
	*satellite.Satellite
	Ledger *ledger.Memory
	Router *swap.Router
	Sender *bridge.BreakerSender
}

type Devnet struct {
	logger *zap.Logger
	cfg    Config

	Network    *bridge.Network
	Hub        *hub.Hub
	HubLedger  *ledger.Memory
	HubSender  *bridge.BreakerSender
	Satellites map[model.Domain]*Satellite
}

type options struct {
	clock  clock.Clock
	events hub.EventSink
}

type Option func(*options)

func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithEventSink sends hub and satellite events to sink.
func WithEventSink(sink hub.EventSink) Option {
	return func(o *options) { o.events = sink }
}

// Address derives the deterministic account of a named role on domain.
func Address(role string, domain model.Domain) common.Address {
	return common.BytesToAddress(crypto.Keccak256([]byte(fmt.Sprintf("devnet/%s/%d", role, domain))))
}

// Executor is the bridge executor every devnet contract trusts.
var Executor = Address("executor", 0)

// New builds the network and registers every satellite with the hub: arms,
// native settlement bindings, accepted tokens and pool liquidity.
func New(ctx context.Context, cfg Config, logger *zap.Logger, opts ...Option) (*Devnet, error) {
	o := options{clock: clock.System{}}
	for _, opt := range opts {
		opt(&o)
	}

	netOpts := []bridge.Option{bridge.WithMetrics(metrics.NewBridge())}
	if cfg.MaxAttempts > 0 {
		netOpts = append(netOpts, bridge.WithMaxAttempts(cfg.MaxAttempts))
	}
	if cfg.Redelivery {
		netOpts = append(netOpts, bridge.WithRedelivery())
	}
	if cfg.ShuffleSeed != 0 {
		netOpts = append(netOpts, bridge.WithShuffle(cfg.ShuffleSeed))
	}

	d := &Devnet{
		logger:     logger,
		cfg:        cfg,
		Network:    bridge.NewNetwork(Executor, logger.Named("bridge"), netOpts...),
		HubLedger:  ledger.NewMemory(),
		Satellites: make(map[model.Domain]*Satellite, len(cfg.Satellites)),
	}

	hubAddr := Address("hub", cfg.HubDomain)
	d.HubSender = bridge.NewBreakerSender(d.Network.Endpoint(cfg.HubDomain), bridge.DefaultBreakerSettings("hub"), logger)
	hubOpts := []hub.Option{hub.WithClock(o.clock)}
	if o.events != nil {
		hubOpts = append(hubOpts, hub.WithEventSink(o.events))
	}
	h, err := hub.New(hub.Config{
		Domain:        cfg.HubDomain,
		ChainID:       cfg.ChainID,
		Address:       hubAddr,
		Owner:         cfg.Owner,
		AllowedSigner: cfg.AllowedSigner,
		Executor:      Executor,
		InitialFee:    cfg.Fee,
		FeeDelay:      cfg.FeeDelay,
	}, d.HubLedger, d.HubSender, metrics.NewHub(cfg.HubDomain), logger, hubOpts...)
	if err != nil {
		return nil, fmt.Errorf("create hub: %w", err)
	}
	d.Hub = h
	if err := d.Network.Attach(cfg.HubDomain, hubAddr, h); err != nil {
		return nil, fmt.Errorf("attach hub: %w", err)
	}

	for _, sc := range cfg.Satellites {
		if err := d.addSatellite(ctx, sc, o); err != nil {
			return nil, fmt.Errorf("satellite %d: %w", sc.Domain, err)
		}
	}
	return d, nil
}

func (d *Devnet) addSatellite(ctx context.Context, sc SatelliteConfig, o options) error {
	owner := d.cfg.Owner
	addr := Address("satellite", sc.Domain)
	mem := ledger.NewMemory()
	router := swap.NewRouter(mem, model.NativeToken, d.logger.Named("swap"))
	sender := bridge.NewBreakerSender(d.Network.Endpoint(sc.Domain), bridge.DefaultBreakerSettings(fmt.Sprintf("satellite-%d", sc.Domain)), d.logger)

	satOpts := []satellite.Option{satellite.WithClock(o.clock)}
	if o.events != nil {
		satOpts = append(satOpts, satellite.WithEventSink(o.events))
	}
	sat, err := satellite.New(satellite.Config{
		Domain:      sc.Domain,
		Address:     addr,
		Owner:       owner,
		HubDomain:   d.cfg.HubDomain,
		HubAddress:  d.Hub.Address(),
		Executor:    Executor,
		PayoutToken: sc.PayoutToken,
	}, mem, sender, router, metrics.NewSatellite(sc.Domain), d.logger, satOpts...)
	if err != nil {
		return err
	}
	if err := d.Network.Attach(sc.Domain, addr, sat); err != nil {
		return err
	}

	if sc.Liquidity != nil {
		mem.Mint(model.NativeToken, addr, sc.Liquidity)
		if sc.PayoutToken != model.NativeToken {
			mem.Mint(sc.PayoutToken, addr, sc.Liquidity)
		}
	}
	if sc.PayoutToken != model.NativeToken && sc.PoolDepth != nil {
		provider := Address("liquidity-provider", sc.Domain)
		mem.Mint(model.NativeToken, provider, sc.PoolDepth)
		mem.Mint(sc.PayoutToken, provider, sc.PoolDepth)
		if err := router.AddLiquidity(provider, model.NativeToken, sc.PayoutToken, sc.PoolDepth, sc.PoolDepth); err != nil {
			return fmt.Errorf("seed pool: %w", err)
		}
	}
	if sc.ArmFloat != nil {
		d.HubLedger.Mint(model.NativeToken, addr, sc.ArmFloat)
	}

	steps := []func() error{
		func() error { return d.Hub.AddArm(ctx, owner, sc.Domain, addr) },
		func() error {
			return d.Hub.BindSettlementToken(ctx, owner, sc.Domain, model.NativeToken, model.NativeToken)
		},
		func() error { return sat.BindHubToken(ctx, owner, model.NativeToken, model.NativeToken) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}

	d.Satellites[sc.Domain] = &Satellite{Satellite: sat, Ledger: mem, Router: router, Sender: sender}
	d.logger.Info("satellite registered",
		zap.Uint32("domain", uint32(sc.Domain)),
		zap.String("address", addr.Hex()),
		zap.String("payout_token", sc.PayoutToken.Hex()),
	)
	return nil
}

// Ledger returns the ledger of domain.
func (d *Devnet) Ledger(domain model.Domain) (*ledger.Memory, error) {
	if domain == d.cfg.HubDomain {
		return d.HubLedger, nil
	}
	s, ok := d.Satellites[domain]
	if !ok {
		return nil, fmt.Errorf("ledger of %d: %w", domain, ErrUnknownDomain)
	}
	return s.Ledger, nil
}

func (d *Devnet) Satellite(domain model.Domain) (*Satellite, error) {
	s, ok := d.Satellites[domain]
	if !ok {
		return nil, fmt.Errorf("satellite %d: %w", domain, ErrUnknownDomain)
	}
	return s, nil
}

// Drain delivers messages until none are in flight.
func (d *Devnet) Drain(ctx context.Context) error {
	return d.Network.Drain(ctx)
}

// Run delivers messages every interval until ctx is done.
func (d *Devnet) Run(ctx context.Context, interval time.Duration) error {
	return d.Network.Run(ctx, interval)
}
