// Package hub is the authoritative ledger: registries, product catalogue,
// fee governance and the escrow payment state machine.
package hub

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/clock"
	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/model"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"
)

// DefaultFeeDelay is the fee governance timelock.
const DefaultFeeDelay = 7 * 24 * time.Hour

type Config struct {
	Domain model.Domain
	// ChainID is the domain identifier bound into shipping signatures.
	ChainID uint64
	// Address is the hub's own account: escrow holder and bridge endpoint.
	Address       common.Address
	Owner         common.Address
	AllowedSigner common.Address
	// Executor is the only bridge executor whose deliveries are accepted.
	Executor   common.Address
	InitialFee *uint256.Int
	FeeDelay   time.Duration
}

type bindingKey struct {
	domain model.Domain
	token  common.Address
}

// Hub serializes every operation behind one mutex: an operation runs to
// completion before the next one observes any of its effects.
type Hub struct {
	logger  *zap.Logger
	ledger  Ledger
	bridge  Bridge
	metrics Metrics
	events  EventSink
	clock   clock.Clock

	domain   model.Domain
	chainID  uint64
	address  common.Address
	executor common.Address
	feeDelay time.Duration

	mu sync.Mutex

	owner         common.Address
	allowedSigner common.Address
	fee           *uint256.Int
	pendingFee    *model.PendingFee

	arms        map[model.Domain]common.Address
	tokens      map[common.Address]struct{}
	tokenOrder  []common.Address
	bindings    map[bindingKey]common.Address
	whitelist   map[common.Address]bool
	products    map[model.ProductID]model.Product
	productIDs  []model.ProductID
	nonces      map[common.Address]uint64
	payments    map[model.PaymentID]*model.Payment
	paymentSeq  uint64
	paymentKeys map[common.Hash]model.PaymentID
	inboundPays map[common.Hash]inboundPay

	feesAccrued     map[common.Address]*uint256.Int
	shippingAccrued map[common.Address]*uint256.Int
}

type Option func(*Hub)

func WithClock(c clock.Clock) Option {
	return func(h *Hub) { h.clock = c }
}

func WithEventSink(sink EventSink) Option {
	return func(h *Hub) { h.events = sink }
}

// New builds a hub with the native currency pre-registered as a settlement token.
func New(cfg Config, ledger Ledger, bridge Bridge, metrics Metrics, logger *zap.Logger, opts ...Option) (*Hub, error) {
	if !cfg.Domain.Valid() {
		return nil, model.ErrDomain
	}
	if model.IsZeroAddress(cfg.Owner) || model.IsZeroAddress(cfg.Address) {
		return nil, errors.New("hub owner and address are required")
	}
	if ledger == nil || bridge == nil {
		return nil, errors.New("hub ledger and bridge are required")
	}
	if metrics == nil {
		return nil, errors.New("hub metrics is required")
	}
	fee := new(uint256.Int)
	if cfg.InitialFee != nil {
		if cfg.InitialFee.Gt(model.MaxFee) {
			return nil, model.ErrFee
		}
		fee = cfg.InitialFee.Clone()
	}
	feeDelay := cfg.FeeDelay
	if feeDelay == 0 {
		feeDelay = DefaultFeeDelay
	}

	h := &Hub{
		logger:          logger.Named("hub").With(zap.Uint32("domain", uint32(cfg.Domain))),
		ledger:          ledger,
		bridge:          bridge,
		metrics:         metrics,
		events:          nopSink{},
		clock:           clock.System{},
		domain:          cfg.Domain,
		chainID:         cfg.ChainID,
		address:         cfg.Address,
		executor:        cfg.Executor,
		feeDelay:        feeDelay,
		owner:           cfg.Owner,
		allowedSigner:   cfg.AllowedSigner,
		fee:             fee,
		arms:            make(map[model.Domain]common.Address),
		tokens:          make(map[common.Address]struct{}),
		bindings:        make(map[bindingKey]common.Address),
		whitelist:       make(map[common.Address]bool),
		products:        make(map[model.ProductID]model.Product),
		nonces:          make(map[common.Address]uint64),
		payments:        make(map[model.PaymentID]*model.Payment),
		paymentKeys:     make(map[common.Hash]model.PaymentID),
		inboundPays:     make(map[common.Hash]inboundPay),
		feesAccrued:     make(map[common.Address]*uint256.Int),
		shippingAccrued: make(map[common.Address]*uint256.Int),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.addToken(model.NativeToken)
	return h, nil
}

func (h *Hub) Domain() model.Domain {
	return h.domain
}

func (h *Hub) Address() common.Address {
	return h.address
}

func (h *Hub) requireOwner(caller common.Address) error {
	if caller != h.owner {
		return model.ErrOwner
	}
	return nil
}

func (h *Hub) observe(operation string, started time.Time, err error) {
	h.metrics.ObserveOperation(operation, err, started)
	if err != nil {
		h.logger.Debug("operation rejected", zap.String("operation", operation), zap.Error(err))
	}
}

func (h *Hub) record(ctx context.Context, e model.Event) {
	h.events.Record(ctx, e)
}

func (h *Hub) event(typ model.EventType) model.Event {
	return model.NewEvent(h.domain, typ, h.clock.Now())
}

type nopSink struct{}

func (nopSink) Record(context.Context, model.Event) {}
