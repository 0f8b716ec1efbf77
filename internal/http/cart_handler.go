package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/middleware"
)

// ProductLookup resolves a product id to the snapshot the cart stores.
type ProductLookup interface {
	Snapshot(ctx context.Context, id int64) (cart.ProductSnapshot, error)
}

type CartHandler struct {
	products ProductLookup
	timeout  time.Duration
	logger   *zap.Logger
}

func NewCartHandler(products ProductLookup, timeout time.Duration, logger *zap.Logger) *CartHandler {
	return &CartHandler{products: products, timeout: timeout, logger: logger}
}

type cartView struct {
	Items []cart.LineItem `json:"items"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

func (v cartView) MarshalJSON() ([]byte, error) {
	type plain cartView
	return json.Marshal(struct {
		plain
		Total json.Number `json:"total"`
	}{plain(v), cart.Number(v.Total)})
}

func viewOf(c *cart.Cart) cartView {
	items := c.Items()
	count := 0
	for _, it := range items {
		count += it.Quantity
	}
	return cartView{Items: items, Total: c.Total(), Count: count}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	s := middleware.GetSession(r.Context())
	writeJSON(w, http.StatusOK, viewOf(s.Cart))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	s := middleware.GetSession(r.Context())

	var body struct {
		ProductID int64 `json:"productId"`
	}
	if err := decodeJSON(w, r, &body); err != nil || body.ProductID <= 0 {
		writeError(w, r, http.StatusBadRequest, "productId is required")
		return
	}

	ctx, cancel := context.WithTimeout(upstreamCtx(r.Context(), s), h.timeout)
	defer cancel()

	snap, err := h.products.Snapshot(ctx, body.ProductID)
	if err != nil {
		h.logger.Warn("product lookup failed", zap.Int64("product_id", body.ProductID), zap.Error(err))
		writeUpstreamError(w, r, err, "failed to load product")
		return
	}

	if err := s.Cart.AddItem(snap); err != nil {
		h.writeCartError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(s.Cart))
}

func (h *CartHandler) IncreaseQuantity(w http.ResponseWriter, r *http.Request) {
	h.mutateAt(w, r, (*cart.Cart).IncreaseQuantity)
}

func (h *CartHandler) DecreaseQuantity(w http.ResponseWriter, r *http.Request) {
	h.mutateAt(w, r, (*cart.Cart).DecreaseQuantity)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	h.mutateAt(w, r, (*cart.Cart).RemoveItem)
}

func (h *CartHandler) mutateAt(w http.ResponseWriter, r *http.Request, op func(*cart.Cart, int) error) {
	s := middleware.GetSession(r.Context())

	index, ok := urlInt(r, "index")
	if !ok {
		writeError(w, r, http.StatusBadRequest, "index must be an integer")
		return
	}
	if err := op(s.Cart, index); err != nil {
		h.writeCartError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(s.Cart))
}

func (h *CartHandler) UpdateCart(w http.ResponseWriter, r *http.Request) {
	s := middleware.GetSession(r.Context())

	var items []cart.LineItem
	if err := decodeJSON(w, r, &items); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json")
		return
	}
	if err := s.Cart.UpdateCart(items); err != nil {
		h.writeCartError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(s.Cart))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	s := middleware.GetSession(r.Context())
	s.Cart.ClearCart()
	writeJSON(w, http.StatusOK, viewOf(s.Cart))
}

func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	s := middleware.GetSession(r.Context())

	ctx, cancel := context.WithTimeout(upstreamCtx(r.Context(), s), h.timeout)
	defer cancel()

	conf, err := s.Checkout(ctx)
	if err != nil {
		if errors.Is(err, cart.ErrEmptyCart) {
			writeError(w, r, http.StatusConflict, err.Error())
			return
		}
		writeUpstreamError(w, r, err, "checkout failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "checkout completed",
		"confirmation": conf,
	})
}

func (h *CartHandler) writeCartError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, cart.ErrIndexOutOfRange):
		writeError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, cart.ErrOutOfStock), errors.Is(err, cart.ErrStockLimit):
		writeError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, cart.ErrInvalidProduct), errors.Is(err, cart.ErrInvalidItems):
		writeError(w, r, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("cart operation failed", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
