package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"shoestore/internal/domain"
	"shoestore/internal/pricing"
	"shoestore/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const cartCacheTTL = 10 * time.Second

type Handler struct {
	carts    *services.CartManager
	checkout *services.CheckoutService
	coupons  *services.CouponValidator
	orders   *services.OrderService
	shipping pricing.ShippingRule
	rdb      *redis.Client
	logger   *zap.Logger
}

func NewHandler(
	carts *services.CartManager,
	checkout *services.CheckoutService,
	coupons *services.CouponValidator,
	orders *services.OrderService,
	shipping pricing.ShippingRule,
	rdb *redis.Client,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		carts:    carts,
		checkout: checkout,
		coupons:  coupons,
		orders:   orders,
		shipping: shipping,
		rdb:      rdb,
		logger:   logger,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/cart", h.GetCart)
	r.POST("/cart/items", h.AddItem)
	r.PATCH("/cart/items/:id", h.UpdateQuantity)
	r.DELETE("/cart/items/:id", h.RemoveItem)
	r.DELETE("/cart", h.ClearCart)
	r.POST("/cart/coupon", h.PreviewCoupon)
	r.POST("/checkout", h.Checkout)
	r.GET("/orders/:id", h.GetOrder)
	r.PATCH("/orders/:id/status", h.UpdateOrderStatus)
}

// userID resolves the shopper from the identity header. Guest carts are out
// of scope: no identity means no cart.
func userID(c *gin.Context) (uint64, bool) {
	raw := c.GetHeader("X-User-ID")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return 0, false
	}
	return id, true
}

func cartCacheKey(uid uint64) string {
	return "cart:user:" + strconv.FormatUint(uid, 10)
}

func (h *Handler) GetCart(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if h.rdb != nil {
		if b, err := h.rdb.Get(ctx, cartCacheKey(uid)).Result(); err == nil {
			c.Data(http.StatusOK, "application/json", []byte(b))
			return
		}
	}

	cart, err := h.carts.Cart(ctx, uid)
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := h.cartResponse(cart, nil)
	if h.rdb != nil {
		if data, err := json.Marshal(resp); err == nil {
			h.rdb.Set(ctx, cartCacheKey(uid), data, cartCacheTTL)
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) AddItem(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	cart, err := h.carts.Cart(ctx, uid)
	if err != nil {
		h.writeError(c, err)
		return
	}

	line, err := cart.AddItem(ctx, req.ShoeID, req.Size, req.Color, req.Quantity)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.invalidateCartCache(uid)
	c.JSON(http.StatusCreated, gin.H{"line": line, "totals": pricing.Price(cart.Lines(), nil, h.shipping)})
}

func (h *Handler) UpdateQuantity(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	lineID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid line id"})
		return
	}
	var req UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	cart, err := h.carts.Cart(ctx, uid)
	if err != nil {
		h.writeError(c, err)
		return
	}

	line, err := cart.UpdateQuantity(ctx, lineID, req.Quantity)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.invalidateCartCache(uid)
	c.JSON(http.StatusOK, gin.H{"line": line, "totals": pricing.Price(cart.Lines(), nil, h.shipping)})
}

func (h *Handler) RemoveItem(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	lineID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid line id"})
		return
	}

	ctx := c.Request.Context()
	cart, err := h.carts.Cart(ctx, uid)
	if err != nil {
		h.writeError(c, err)
		return
	}

	if err := cart.RemoveItem(ctx, lineID); err != nil {
		h.writeError(c, err)
		return
	}

	h.invalidateCartCache(uid)
	c.JSON(http.StatusOK, h.cartResponse(cart, nil))
}

func (h *Handler) ClearCart(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	cart, err := h.carts.Cart(ctx, uid)
	if err != nil {
		h.writeError(c, err)
		return
	}

	if err := cart.Clear(ctx); err != nil {
		h.writeError(c, err)
		return
	}

	h.invalidateCartCache(uid)
	c.JSON(http.StatusOK, h.cartResponse(cart, nil))
}

// PreviewCoupon validates a code against the current subtotal without
// consuming usage. The applied coupon is ephemeral; checkout re-validates.
func (h *Handler) PreviewCoupon(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	var req ApplyCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	cart, err := h.carts.Cart(ctx, uid)
	if err != nil {
		h.writeError(c, err)
		return
	}

	applied, err := h.coupons.Validate(ctx, req.Code, cart.Subtotal())
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.cartResponse(cart, applied))
}

func (h *Handler) Checkout(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	// The body is optional; checkout without a coupon sends nothing.
	var req CheckoutRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	order, err := h.checkout.Commit(c.Request.Context(), uid, req.CouponCode)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.invalidateCartCache(uid)
	c.JSON(http.StatusCreated, order)
}

func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.orders.GetOrderByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.orders.UpdateStatus(c.Request.Context(), c.Param("id"), domain.OrderStatus(req.Status))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) cartResponse(cart *services.Cart, applied *domain.AppliedCoupon) CartResponse {
	lines := cart.Lines()
	return CartResponse{
		Lines:  lines,
		Coupon: applied,
		Totals: pricing.Price(lines, applied, h.shipping),
	}
}

func (h *Handler) invalidateCartCache(uid uint64) {
	if h.rdb != nil {
		h.rdb.Del(context.Background(), cartCacheKey(uid))
	}
}

// writeError maps the domain error taxonomy onto HTTP. Validation and
// conflict errors are user-recoverable; transient and fatal ones also get
// logged, since a silently failing stock or coupon operation is worse than
// an honest error.
func (h *Handler) writeError(c *gin.Context, err error) {
	var stockErr *domain.StockExceededError
	var couponErr *domain.CouponRejectionError
	var conflictErr *domain.CartConflictError
	var transientErr *domain.TransientError
	var fatalErr *domain.FatalCommitError

	switch {
	case errors.As(err, &stockErr):
		c.JSON(http.StatusConflict, gin.H{"error": stockErr.Error(), "available": stockErr.Available})
	case errors.As(err, &couponErr):
		body := gin.H{"error": couponErr.Error(), "reason": couponErr.Reason}
		if couponErr.Reason == domain.CouponBelowMinimumSpend {
			body["minSpend"] = couponErr.MinSpend
		}
		c.JSON(http.StatusUnprocessableEntity, body)
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, gin.H{"error": conflictErr.Error(), "shortages": conflictErr.Shortages})
	case errors.Is(err, domain.ErrNoCart):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrLineNotFound), errors.Is(err, domain.ErrOrderNotFound), errors.Is(err, domain.ErrShoeNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrEmptyCart), errors.Is(err, domain.ErrInvalidTransition):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.As(err, &transientErr):
		h.logger.Warn("transient failure", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": transientErr.Error()})
	case errors.As(err, &fatalErr):
		h.logger.Error("fatal commit failure", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fatalErr.Error()})
	default:
		h.logger.Error("unhandled error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
