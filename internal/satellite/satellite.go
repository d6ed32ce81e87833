// Package satellite is the per-domain relay: it executes settlements ordered
// by the hub and forwards payments collected on its domain.
package satellite

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/clock"
	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/message"
	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/model"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"
)

const (
	bpsDenominator = 10_000
	// DefaultMaxSlippageBps is 3%.
	DefaultMaxSlippageBps = 300
)

type Config struct {
	Domain model.Domain
	// Address is the satellite's account: liquidity holder and bridge endpoint.
	Address    common.Address
	Owner      common.Address
	HubDomain  model.Domain
	HubAddress common.Address
	Executor   common.Address
	// PayoutToken is what sellers on this domain are paid in.
	PayoutToken    common.Address
	MaxSlippageBps uint64
}

type PayStatus uint8

const (
	PayPending PayStatus = iota + 1
	PayAccepted
	PayRejected
)

func (s PayStatus) String() string {
	switch s {
	case PayPending:
		return "pending"
	case PayAccepted:
		return "accepted"
	case PayRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Pay is a buyer payment collected here and forwarded to the hub.
type Pay struct {
	Key       common.Hash
	ProductID model.ProductID
	Buyer     common.Address
	Token     common.Address
	Total     *uint256.Int
	Status    PayStatus
	Reason    string
}

func (p Pay) Clone() Pay {
	p.Total = p.Total.Clone()
	return p
}

type Satellite struct {
	logger  *zap.Logger
	ledger  Ledger
	bridge  Bridge
	swapper Swapper
	metrics Metrics
	events  EventSink
	clock   clock.Clock

	domain      model.Domain
	address     common.Address
	hubDomain   model.Domain
	hubAddress  common.Address
	executor    common.Address
	payoutToken common.Address
	slippageBps uint64

	mu sync.Mutex

	owner       common.Address
	accepted    map[common.Address]struct{}
	hubTokens   map[common.Address]common.Address
	settlements map[common.Hash]message.Receipt
	// swapped holds payout swapped for a settlement whose seller transfer
	// has not gone through yet.
	swapped   map[common.Hash]*uint256.Int
	pays      map[common.Hash]*Pay
	latestPay map[payIdent]common.Hash
	paySeq    uint64
}

type Option func(*Satellite)

func WithClock(c clock.Clock) Option {
	return func(s *Satellite) { s.clock = c }
}

func WithEventSink(sink EventSink) Option {
	return func(s *Satellite) { s.events = sink }
}

// New builds a satellite accepting its payout token and the native currency.
func New(cfg Config, ledger Ledger, bridge Bridge, swapper Swapper, metrics Metrics, logger *zap.Logger, opts ...Option) (*Satellite, error) {
	if !cfg.Domain.Valid() || !cfg.HubDomain.Valid() || cfg.Domain == cfg.HubDomain {
		return nil, model.ErrDomain
	}
	if model.IsZeroAddress(cfg.Address) || model.IsZeroAddress(cfg.Owner) || model.IsZeroAddress(cfg.HubAddress) {
		return nil, errors.New("satellite address, owner and hub address are required")
	}
	if ledger == nil || bridge == nil || swapper == nil || metrics == nil {
		return nil, errors.New("satellite ledger, bridge, swapper and metrics are required")
	}
	slippage := cfg.MaxSlippageBps
	if slippage == 0 {
		slippage = DefaultMaxSlippageBps
	}
	if slippage >= bpsDenominator {
		return nil, errors.New("max slippage must be below 10000 bps")
	}

	s := &Satellite{
		logger:      logger.Named("satellite").With(zap.Uint32("domain", uint32(cfg.Domain))),
		ledger:      ledger,
		bridge:      bridge,
		swapper:     swapper,
		metrics:     metrics,
		events:      nopSink{},
		clock:       clock.System{},
		domain:      cfg.Domain,
		address:     cfg.Address,
		hubDomain:   cfg.HubDomain,
		hubAddress:  cfg.HubAddress,
		executor:    cfg.Executor,
		payoutToken: cfg.PayoutToken,
		slippageBps: slippage,
		owner:       cfg.Owner,
		accepted:    make(map[common.Address]struct{}),
		hubTokens:   make(map[common.Address]common.Address),
		settlements: make(map[common.Hash]message.Receipt),
		swapped:     make(map[common.Hash]*uint256.Int),
		pays:        make(map[common.Hash]*Pay),
		latestPay:   make(map[payIdent]common.Hash),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.accepted[model.NativeToken] = struct{}{}
	s.accepted[cfg.PayoutToken] = struct{}{}
	return s, nil
}

func (s *Satellite) Domain() model.Domain {
	return s.domain
}

func (s *Satellite) Address() common.Address {
	return s.address
}

// AcceptToken allows token as a settlement token on this domain.
func (s *Satellite) AcceptToken(_ context.Context, caller, token common.Address) (err error) {
	started := time.Now()
	defer func() { s.observe("accept_token", started, err) }()
	s.mu.Lock()
	defer s.mu.Unlock()

	if caller != s.owner {
		return model.ErrOwner
	}
	if _, ok := s.accepted[token]; ok {
		return model.ErrTokenExists
	}
	s.accepted[token] = struct{}{}
	return nil
}

func (s *Satellite) RemoveToken(_ context.Context, caller, token common.Address) (err error) {
	started := time.Now()
	defer func() { s.observe("remove_token", started, err) }()
	s.mu.Lock()
	defer s.mu.Unlock()

	if caller != s.owner {
		return model.ErrOwner
	}
	if _, ok := s.accepted[token]; !ok {
		return model.ErrNotExists
	}
	delete(s.accepted, token)
	return nil
}

// BindHubToken records localToken as this domain's equivalent of hubToken.
func (s *Satellite) BindHubToken(_ context.Context, caller, hubToken, localToken common.Address) (err error) {
	started := time.Now()
	defer func() { s.observe("bind_hub_token", started, err) }()
	s.mu.Lock()
	defer s.mu.Unlock()

	if caller != s.owner {
		return model.ErrOwner
	}
	if _, ok := s.accepted[localToken]; !ok {
		return model.ErrSettlementToken
	}
	s.hubTokens[hubToken] = localToken
	return nil
}

func (s *Satellite) IsAccepted(token common.Address) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.accepted[token]
	return ok
}

// LocalToken is the token hubToken is paid in on this domain.
func (s *Satellite) LocalToken(hubToken common.Address) (common.Address, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.localToken(hubToken)
}

// Settlement returns the stored outcome of the settlement with key.
func (s *Satellite) Settlement(key common.Hash) (message.Receipt, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.settlements[key]
	if !ok {
		return message.Receipt{}, false
	}
	r.Amount = r.Amount.Clone()
	return r, true
}

func (s *Satellite) Pay(key common.Hash) (Pay, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pays[key]
	if !ok {
		return Pay{}, false
	}
	return p.Clone(), true
}

func (s *Satellite) localToken(hubToken common.Address) (common.Address, bool) {
	if local, ok := s.hubTokens[hubToken]; ok {
		return local, true
	}
	if hubToken == model.NativeToken {
		return model.NativeToken, true
	}
	return common.Address{}, false
}

func (s *Satellite) observe(operation string, started time.Time, err error) {
	s.metrics.ObserveOperation(operation, err, started)
	if err != nil {
		s.logger.Debug("operation rejected", zap.String("operation", operation), zap.Error(err))
	}
}

func (s *Satellite) event(typ model.EventType) model.Event {
	return model.NewEvent(s.domain, typ, s.clock.Now())
}

type nopSink struct{}

func (nopSink) Record(context.Context, model.Event) {}
