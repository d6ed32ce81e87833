// Package transport exposes the escrow read API over HTTP.
package transport

import (
	"errors"
	"net/http"
	"sort"
	"strconv"

	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/model"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

var errBadAddress = errors.New("invalid address")

// Handler serves read-only views of the hub state.
type Handler struct {
	logger  *zap.Logger
	hub     Hub
	domain  model.Domain
	journal Journal
}

// NewHandler builds a handler for the hub on domain. journal may be nil, in
// which case payment events are not served.
func NewHandler(hub Hub, domain model.Domain, journal Journal, logger *zap.Logger) *Handler {
	return &Handler{
		logger:  logger.Named("http"),
		hub:     hub,
		domain:  domain,
		journal: journal,
	}
}

// Router returns the gin engine wrapped in a permissive CORS handler.
func (h *Handler) Router() http.Handler {
	engine := gin.New()
	engine.Use(gin.Recovery())
	h.Register(engine)
	return cors.Default().Handler(engine)
}

func (h *Handler) Register(r gin.IRouter) {
	r.GET("/healthz", h.health)

	v1 := r.Group("/v1")
	v1.GET("/products", h.products)
	v1.GET("/products/:id", h.product)
	v1.GET("/settlement-tokens", h.settlementTokens)
	v1.GET("/arms/:domain", h.arm)
	v1.GET("/bindings/:domain/:token", h.binding)
	v1.GET("/whitelist/:address", h.whitelist)
	v1.GET("/fee", h.fee)
	v1.GET("/nonces/:buyer", h.nonce)
	v1.GET("/signer", h.signer)
	v1.GET("/payments/:id", h.payment)
	v1.GET("/payments/:id/events", h.paymentEvents)
	v1.GET("/events/counts", h.eventCounts)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "domain": uint32(h.domain)})
}

func (h *Handler) products(c *gin.Context) {
	ids := h.hub.ProductIDs()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]productView, 0, len(ids))
	for _, id := range ids {
		if p, ok := h.hub.Product(id); ok {
			out = append(out, newProductView(p))
		}
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) product(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "invalid product id")
		return
	}
	p, ok := h.hub.Product(model.ProductID(id))
	if !ok {
		notFound(c, "product not found")
		return
	}
	c.JSON(http.StatusOK, newProductView(p))
}

func (h *Handler) settlementTokens(c *gin.Context) {
	tokens := h.hub.SettlementTokens()
	out := make([]string, 0, len(tokens))
	for _, token := range tokens {
		out = append(out, token.Hex())
	}
	sort.Strings(out)
	c.JSON(http.StatusOK, out)
}

func (h *Handler) arm(c *gin.Context) {
	domain, ok := domainParam(c)
	if !ok {
		return
	}
	arm, ok := h.hub.Arm(domain)
	if !ok {
		notFound(c, "no arm for domain")
		return
	}
	c.JSON(http.StatusOK, gin.H{"domain": uint32(domain), "arm": arm.Hex()})
}

func (h *Handler) binding(c *gin.Context) {
	domain, ok := domainParam(c)
	if !ok {
		return
	}
	hubToken, err := parseAddress(c.Param("token"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	local, ok := h.hub.Binding(domain, hubToken)
	if !ok {
		notFound(c, "token not bound on domain")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"domain":      uint32(domain),
		"hub_token":   hubToken.Hex(),
		"local_token": local.Hex(),
	})
}

func (h *Handler) whitelist(c *gin.Context) {
	addr, err := parseAddress(c.Param("address"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"address": addr.Hex(), "whitelisted": h.hub.IsWhitelisted(addr)})
}

func (h *Handler) fee(c *gin.Context) {
	fee := h.hub.Fee()
	out := feeView{Fee: dec(fee), Percent: model.FormatFeePercent(fee)}
	if pending, ok := h.hub.PendingFee(); ok {
		out.Pending = &pendingFeeView{
			Fee:           dec(pending.NewFee),
			Percent:       model.FormatFeePercent(pending.NewFee),
			EarliestApply: pending.EarliestApply,
		}
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) nonce(c *gin.Context) {
	buyer, err := parseAddress(c.Param("buyer"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"buyer": buyer.Hex(), "nonce": h.hub.Nonce(buyer)})
}

func (h *Handler) signer(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"allowed_signer": h.hub.AllowedSigner().Hex()})
}

func (h *Handler) payment(c *gin.Context) {
	id, ok := paymentParam(c)
	if !ok {
		return
	}
	p, ok := h.hub.Payment(id)
	if !ok {
		notFound(c, "payment not found")
		return
	}
	c.JSON(http.StatusOK, newPaymentView(p))
}

func (h *Handler) paymentEvents(c *gin.Context) {
	if h.journal == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "event journal disabled"})
		return
	}
	id, ok := paymentParam(c)
	if !ok {
		return
	}
	events, err := h.journal.EventsByPayment(c.Request.Context(), h.domain, id)
	if err != nil {
		h.logger.Error("load payment events", zap.Uint64("payment_id", uint64(id)), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	out := make([]eventView, 0, len(events))
	for _, e := range events {
		out = append(out, newEventView(e))
	}
	c.JSON(http.StatusOK, out)
}

// eventCounts reports journal rows per event type. ?domain= narrows it to
// one domain, all domains are counted otherwise.
func (h *Handler) eventCounts(c *gin.Context) {
	if h.journal == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "event journal disabled"})
		return
	}
	var domain model.Domain
	if raw := c.Query("domain"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || v == 0 {
			badRequest(c, "invalid domain")
			return
		}
		domain = model.Domain(v)
	}
	counts, err := h.journal.CountEventsByType(c.Request.Context(), domain)
	if err != nil {
		h.logger.Error("count events", zap.Uint32("domain", uint32(domain)), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	out := make(map[string]uint64, len(counts))
	for typ, n := range counts {
		out[string(typ)] = n
	}
	c.JSON(http.StatusOK, out)
}

func domainParam(c *gin.Context) (model.Domain, bool) {
	v, err := strconv.ParseUint(c.Param("domain"), 10, 32)
	if err != nil || v == 0 {
		badRequest(c, "invalid domain")
		return 0, false
	}
	return model.Domain(v), true
}

func paymentParam(c *gin.Context) (model.PaymentID, bool) {
	v, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "invalid payment id")
		return 0, false
	}
	return model.PaymentID(v), true
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, errBadAddress
	}
	return common.HexToAddress(s), nil
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func notFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, gin.H{"error": msg})
}
