package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
)

var (
	ErrDuplicateName   = errors.New("a product with this name already exists")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrOutOfStock      = errors.New("product out of stock")
)

// Store is the product backend's write side.
type Store interface {
	List(ctx context.Context) ([]Product, error)
	Create(ctx context.Context, in ProductInput) (Product, error)
	Update(ctx context.Context, id int64, in ProductInput) (Product, error)
	ReduceStock(ctx context.Context, id int64, quantity int) (Product, error)
	Delete(ctx context.Context, id int64) error
}

// Searcher is the read side served by the search backend.
type Searcher interface {
	List(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id int64) (Product, error)
	Search(ctx context.Context, query string) ([]Product, error)
}

type Service struct {
	store  Store
	search Searcher
	logger *zap.Logger
}

func NewService(store Store, search Searcher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, search: search, logger: logger}
}

func (s *Service) List(ctx context.Context) ([]Product, error) {
	ps, err := s.search.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return withDefaults(ps), nil
}

func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	p, err := s.search.Get(ctx, id)
	if err != nil {
		return Product{}, fmt.Errorf("get product %d: %w", id, err)
	}
	return p.withDefaults(), nil
}

// Search runs a text query. A blank query lists everything.
func (s *Service) Search(ctx context.Context, query string) ([]Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.List(ctx)
	}
	ps, err := s.search.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search products %q: %w", query, err)
	}
	return withDefaults(ps), nil
}

func (s *Service) Create(ctx context.Context, in ProductInput) (Product, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return Product{}, err
	}

	existing, err := s.store.List(ctx)
	if err != nil {
		return Product{}, fmt.Errorf("create product: %w", err)
	}
	for _, p := range existing {
		if strings.EqualFold(strings.TrimSpace(p.Name), in.Name) {
			return Product{}, fmt.Errorf("%w: %q", ErrDuplicateName, in.Name)
		}
	}

	if in.ImageURL == "" {
		in.ImageURL = DefaultImageURL
	}
	p, err := s.store.Create(ctx, in)
	if err != nil {
		return Product{}, fmt.Errorf("create product: %w", err)
	}
	s.logger.Info("product created", zap.Int64("product_id", p.ID), zap.String("name", p.Name))
	return p.withDefaults(), nil
}

func (s *Service) Update(ctx context.Context, id int64, in ProductInput) (Product, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return Product{}, err
	}
	if in.ImageURL == "" {
		in.ImageURL = DefaultImageURL
	}
	p, err := s.store.Update(ctx, id, in)
	if err != nil {
		return Product{}, fmt.Errorf("update product %d: %w", id, err)
	}
	s.logger.Info("product updated", zap.Int64("product_id", id))
	return p.withDefaults(), nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	s.logger.Info("product deleted", zap.Int64("product_id", id))
	return nil
}

func (s *Service) ReduceStock(ctx context.Context, id int64, quantity int) (Product, error) {
	if quantity < 1 {
		return Product{}, ErrInvalidQuantity
	}
	p, err := s.store.ReduceStock(ctx, id, quantity)
	if err != nil {
		return Product{}, fmt.Errorf("reduce stock of product %d: %w", id, err)
	}
	return p.withDefaults(), nil
}

// BuyNow sells a single unit straight from the product page, bypassing the
// cart.
func (s *Service) BuyNow(ctx context.Context, id int64) (Product, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if p.Stock < 1 {
		return Product{}, fmt.Errorf("%w: product %d", ErrOutOfStock, id)
	}
	p, err = s.ReduceStock(ctx, id, 1)
	if err != nil {
		return Product{}, err
	}
	s.logger.Info("product bought", zap.Int64("product_id", id), zap.Int("stock_left", p.Stock))
	return p, nil
}

// Snapshot fetches the current product record for add-to-cart.
func (s *Service) Snapshot(ctx context.Context, id int64) (cart.ProductSnapshot, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return cart.ProductSnapshot{}, err
	}
	return p.Snapshot(), nil
}

func withDefaults(ps []Product) []Product {
	out := make([]Product, len(ps))
	for i, p := range ps {
		out[i] = p.withDefaults()
	}
	return out
}
