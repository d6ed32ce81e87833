// Package bridge is the crosschain transport: narrow Sender/Handler interfaces,
// an in-memory at-least-once network and a circuit-breaking sender.
package bridge

import (
	"context"
	"encoding/binary"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/clock"
	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/model"
	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/pkg/workerpool"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

const (
	defaultMaxAttempts = 5
	defaultWorkers     = 4
	defaultCapacity    = 10_000
	maxDrainRounds     = 64
)

type endpoint struct {
	address common.Address
	handler Handler
}

// Network delivers envelopes between attached domains. Delivery is
// asynchronous, at-least-once and, with WithShuffle, unordered.
type Network struct {
	logger      *zap.Logger
	executor    common.Address
	metrics     Metrics
	maxAttempts int
	workers     int
	capacity    int
	redeliver   bool
	rnd         *rand.Rand

	mu        sync.Mutex
	endpoints map[model.Domain]endpoint
	pending   []Envelope
	dead      []Envelope
	seq       uint64
}

type Option func(*Network)

func WithMetrics(m Metrics) Option {
	return func(n *Network) { n.metrics = m }
}

// WithRedelivery delivers every envelope a second time.
func WithRedelivery() Option {
	return func(n *Network) { n.redeliver = true }
}

// WithShuffle reorders each delivery round.
func WithShuffle(seed int64) Option {
	return func(n *Network) { n.rnd = rand.New(rand.NewSource(seed)) }
}

func WithMaxAttempts(attempts int) Option {
	return func(n *Network) { n.maxAttempts = attempts }
}

func WithWorkers(workers int) Option {
	return func(n *Network) { n.workers = workers }
}

func WithCapacity(capacity int) Option {
	return func(n *Network) { n.capacity = capacity }
}

// NewNetwork builds a network whose deliveries are signed by executor.
func NewNetwork(executor common.Address, logger *zap.Logger, opts ...Option) *Network {
	n := &Network{
		logger:      logger,
		executor:    executor,
		metrics:     nopMetrics{},
		maxAttempts: defaultMaxAttempts,
		workers:     defaultWorkers,
		capacity:    defaultCapacity,
		endpoints:   make(map[model.Domain]endpoint),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *Network) Executor() common.Address {
	return n.executor
}

// Attach registers the contract at address on domain as the receiver of
// envelopes addressed to it.
func (n *Network) Attach(domain model.Domain, address common.Address, handler Handler) error {
	if !domain.Valid() {
		return fmt.Errorf("attach domain %d: %w", domain, model.ErrDomain)
	}
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.endpoints[domain]; ok {
		return fmt.Errorf("domain %d already attached", domain)
	}
	n.endpoints[domain] = endpoint{address: address, handler: handler}
	return nil
}

// Endpoint returns the Sender used by the contract attached on origin.
func (n *Network) Endpoint(origin model.Domain) Sender {
	return &endpointSender{network: n, origin: origin}
}

func (n *Network) Pending() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.pending)
}

// DeadLetters returns envelopes that exhausted their delivery attempts.
func (n *Network) DeadLetters() []Envelope {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Envelope, len(n.dead))
	copy(out, n.dead)
	return out
}

func (n *Network) enqueue(origin, destination model.Domain, recipient common.Address, payload []byte) (common.Hash, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	src, ok := n.endpoints[origin]
	if !ok {
		return common.Hash{}, fmt.Errorf("origin %d: %w", origin, ErrUnknownDomain)
	}
	if _, ok := n.endpoints[destination]; !ok {
		return common.Hash{}, fmt.Errorf("destination %d: %w", destination, ErrUnknownDomain)
	}
	if len(n.pending) >= n.capacity {
		return common.Hash{}, ErrQueueFull
	}

	n.seq++
	var seq [8]byte
	binary.BigEndian.PutUint64(seq[:], n.seq)
	env := Envelope{
		ID:           crypto.Keccak256Hash(src.address.Bytes(), seq[:]),
		Executor:     n.executor,
		Origin:       origin,
		OriginSender: src.address,
		Destination:  destination,
		Recipient:    recipient,
		Payload:      append([]byte(nil), payload...),
	}
	n.pending = append(n.pending, env)
	return env.ID, nil
}

// Flush delivers everything queued at the time of the call. Messages sent by
// handlers during the flush wait for the next round.
func (n *Network) Flush(ctx context.Context) (int, error) {
	n.mu.Lock()
	round := n.pending
	n.pending = nil
	if n.redeliver {
		for _, env := range round {
			if !env.Redelivered {
				dup := env
				dup.Redelivered = true
				round = append(round, dup)
			}
		}
	}
	if n.rnd != nil {
		n.rnd.Shuffle(len(round), func(i, j int) { round[i], round[j] = round[j], round[i] })
	}
	n.mu.Unlock()

	if len(round) == 0 {
		return 0, nil
	}

	err := workerpool.Process(ctx, n.workers, round,
		func(env Envelope) model.Domain { return env.Destination },
		func(ctx context.Context, env Envelope) error {
			if ctx.Err() != nil {
				n.requeue(env)
				return nil
			}
			n.deliver(ctx, env)
			return nil
		})
	if err != nil {
		return len(round), fmt.Errorf("flush deliveries: %w", err)
	}
	return len(round), nil
}

// Drain flushes until the queue is empty.
func (n *Network) Drain(ctx context.Context) error {
	for i := 0; i < maxDrainRounds; i++ {
		delivered, err := n.Flush(ctx)
		if err != nil {
			return err
		}
		if delivered == 0 {
			return nil
		}
	}
	return fmt.Errorf("network not drained after %d rounds", maxDrainRounds)
}

// Run flushes every interval until ctx is done.
func (n *Network) Run(ctx context.Context, interval time.Duration) error {
	return clock.Every(ctx, interval, func(ctx context.Context) {
		if _, err := n.Flush(ctx); err != nil && ctx.Err() == nil {
			n.logger.Error("flush failed", zap.Error(err))
		}
	})
}

func (n *Network) deliver(ctx context.Context, env Envelope) {
	n.mu.Lock()
	dst, ok := n.endpoints[env.Destination]
	n.mu.Unlock()

	logger := n.logger.With(
		zap.String("id", env.ID.Hex()),
		zap.Uint32("origin", uint32(env.Origin)),
		zap.Uint32("destination", uint32(env.Destination)),
		zap.Int("attempt", env.Attempt),
	)

	if !ok || dst.address != env.Recipient {
		logger.Warn("no recipient at destination, dead-lettering", zap.String("recipient", env.Recipient.Hex()))
		n.deadLetter(env)
		return
	}

	started := time.Now()
	err := dst.handler.Receive(ctx, env)
	n.metrics.ObserveDelivery(env.Destination, err, env.Redelivered, started)
	if err == nil {
		return
	}

	env.Attempt++
	if env.Attempt >= n.maxAttempts {
		logger.Warn("delivery failed, dead-lettering", zap.Error(err))
		n.deadLetter(env)
		return
	}
	logger.Debug("delivery failed, retrying", zap.Error(err))
	n.requeue(env)
}

func (n *Network) requeue(env Envelope) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pending = append(n.pending, env)
}

func (n *Network) deadLetter(env Envelope) {
	n.metrics.ObserveDeadLetter(env.Destination)
	n.mu.Lock()
	defer n.mu.Unlock()
	n.dead = append(n.dead, env)
}

type endpointSender struct {
	network *Network
	origin  model.Domain
}

func (s *endpointSender) Send(_ context.Context, destination model.Domain, recipient common.Address, payload []byte) (common.Hash, error) {
	id, err := s.network.enqueue(s.origin, destination, recipient, payload)
	s.network.metrics.ObserveSend(s.origin, destination, err)
	if err != nil {
		return common.Hash{}, fmt.Errorf("send to domain %d: %w: %w", destination, ErrDeliveryUnconfirmed, err)
	}
	return id, nil
}

type nopMetrics struct{}

func (nopMetrics) ObserveSend(model.Domain, model.Domain, error)        {}
func (nopMetrics) ObserveDelivery(model.Domain, error, bool, time.Time) {}
func (nopMetrics) ObserveDeadLetter(model.Domain)                       {}
