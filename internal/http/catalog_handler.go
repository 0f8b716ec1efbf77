package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/middleware"
)

type CatalogService interface {
	List(ctx context.Context) ([]catalog.Product, error)
	Get(ctx context.Context, id int64) (catalog.Product, error)
	Search(ctx context.Context, query string) ([]catalog.Product, error)
	Create(ctx context.Context, in catalog.ProductInput) (catalog.Product, error)
	Update(ctx context.Context, id int64, in catalog.ProductInput) (catalog.Product, error)
	Delete(ctx context.Context, id int64) error
	ReduceStock(ctx context.Context, id int64, quantity int) (catalog.Product, error)
	BuyNow(ctx context.Context, id int64) (catalog.Product, error)
}

type CatalogHandler struct {
	svc     CatalogService
	timeout time.Duration
	logger  *zap.Logger
}

func NewCatalogHandler(svc CatalogService, timeout time.Duration, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{svc: svc, timeout: timeout, logger: logger}
}

func (h *CatalogHandler) ctx(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(upstreamCtx(r.Context(), middleware.GetSession(r.Context())), h.timeout)
}

func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()

	products, err := h.svc.List(ctx)
	if err != nil {
		h.logger.Warn("list products failed", zap.Error(err))
		writeUpstreamError(w, r, err, "failed to load products")
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()

	products, err := h.svc.Search(ctx, r.URL.Query().Get("query"))
	if err != nil {
		h.logger.Warn("search products failed", zap.Error(err))
		writeUpstreamError(w, r, err, "search failed")
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlInt64(r, "id")
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid product id")
		return
	}

	ctx, cancel := h.ctx(r)
	defer cancel()

	p, err := h.svc.Get(ctx, id)
	if err != nil {
		writeUpstreamError(w, r, err, "failed to load product")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *CatalogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in catalog.ProductInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := h.ctx(r)
	defer cancel()

	p, err := h.svc.Create(ctx, in)
	if err != nil {
		h.writeWriteError(w, r, err, "failed to create product")
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *CatalogHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlInt64(r, "id")
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid product id")
		return
	}
	var in catalog.ProductInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := h.ctx(r)
	defer cancel()

	p, err := h.svc.Update(ctx, id, in)
	if err != nil {
		h.writeWriteError(w, r, err, "failed to update product")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *CatalogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlInt64(r, "id")
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid product id")
		return
	}

	ctx, cancel := h.ctx(r)
	defer cancel()

	if err := h.svc.Delete(ctx, id); err != nil {
		h.writeWriteError(w, r, err, "failed to delete product")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) ReduceStock(w http.ResponseWriter, r *http.Request) {
	id, ok := urlInt64(r, "id")
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid product id")
		return
	}
	qty, err := strconv.Atoi(r.URL.Query().Get("quantity"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "quantity must be an integer")
		return
	}

	ctx, cancel := h.ctx(r)
	defer cancel()

	p, err := h.svc.ReduceStock(ctx, id, qty)
	if err != nil {
		h.writeWriteError(w, r, err, "failed to reduce stock")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Buy lets any shopper buy one unit of a product without the cart.
func (h *CatalogHandler) Buy(w http.ResponseWriter, r *http.Request) {
	id, ok := urlInt64(r, "id")
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid product id")
		return
	}

	ctx, cancel := h.ctx(r)
	defer cancel()

	p, err := h.svc.BuyNow(ctx, id)
	if err != nil {
		h.writeWriteError(w, r, err, "purchase failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "purchased",
		"product": p,
	})
}

func (h *CatalogHandler) writeWriteError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	switch {
	case errors.Is(err, catalog.ErrDuplicateName), errors.Is(err, catalog.ErrOutOfStock):
		writeError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, catalog.ErrInvalidQuantity):
		writeError(w, r, http.StatusBadRequest, err.Error())
	default:
		h.logger.Warn(msg, zap.Error(err))
		writeUpstreamError(w, r, err, msg)
	}
}
