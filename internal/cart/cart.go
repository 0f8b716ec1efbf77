package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Submitter sends a checkout to the order-processing backend.
type Submitter interface {
	SubmitCheckout(ctx context.Context, items []LineItem) (Confirmation, error)
}

// Cart is the shopping cart aggregate. Every exported method runs to
// completion under the cart's lock, and total always equals the sum of
// price*quantity over items when the lock is released.
type Cart struct {
	mu    sync.Mutex
	items []LineItem
	total decimal.Decimal

	submitter Submitter
	logger    *zap.Logger
}

func New(submitter Submitter, logger *zap.Logger) *Cart {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cart{
		items:     []LineItem{},
		total:     decimal.Zero,
		submitter: submitter,
		logger:    logger,
	}
}

// AddItem puts one unit of p in the cart, inserting a new line or
// incrementing the existing one up to the stock captured at insertion.
func (c *Cart) AddItem(p ProductSnapshot) error {
	if p.Stock < 0 {
		return fmt.Errorf("%w: negative stock %d for product %d", ErrInvalidProduct, p.Stock, p.ID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexOf(p.ID); i >= 0 {
		it := &c.items[i]
		if it.Quantity >= it.Stock {
			return &StockLimitError{ProductID: it.ID, Stock: it.Stock}
		}
		it.Quantity++
		c.recalculate()
		return nil
	}

	if p.Stock == 0 {
		return fmt.Errorf("%w: product %d", ErrOutOfStock, p.ID)
	}

	c.items = append(c.items, LineItem{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Quantity: 1,
		Stock:    p.Stock,
	})
	c.recalculate()
	return nil
}

func (c *Cart) IncreaseQuantity(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.inRange(index) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	it := &c.items[index]
	if it.Quantity >= it.Stock {
		return &StockLimitError{ProductID: it.ID, Stock: it.Stock}
	}
	it.Quantity++
	c.recalculate()
	return nil
}

// DecreaseQuantity removes one unit from the line at index. A line at
// quantity 1 is left alone; use RemoveItem to drop it.
func (c *Cart) DecreaseQuantity(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.inRange(index) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	it := &c.items[index]
	if it.Quantity <= 1 {
		return nil
	}
	it.Quantity--
	c.recalculate()
	return nil
}

func (c *Cart) RemoveItem(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.inRange(index) {
		c.logger.Warn("remove item: invalid index",
			zap.Int("index", index),
			zap.Int("items", len(c.items)),
		)
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	c.items = append(c.items[:index:index], c.items[index+1:]...)
	c.recalculate()
	return nil
}

// UpdateCart replaces the whole item sequence, e.g. when restoring a
// previously fetched cart. Lists with duplicate ids or a quantity below 1
// are rejected and the cart is left unchanged.
func (c *Cart) UpdateCart(items []LineItem) error {
	seen := make(map[int64]struct{}, len(items))
	for _, it := range items {
		if it.Quantity < 1 {
			return fmt.Errorf("%w: product %d has quantity %d", ErrInvalidItems, it.ID, it.Quantity)
		}
		if _, dup := seen[it.ID]; dup {
			return fmt.Errorf("%w: duplicate product %d", ErrInvalidItems, it.ID)
		}
		seen[it.ID] = struct{}{}
	}

	next := make([]LineItem, len(items))
	copy(next, items)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = next
	c.recalculate()
	return nil
}

func (c *Cart) ClearCart() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = []LineItem{}
	c.total = decimal.Zero
}

// Items returns a copy of the current lines.
func (c *Cart) Items() []LineItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Submission is what a successful checkout sent upstream.
type Submission struct {
	Items        []LineItem
	Total        decimal.Decimal
	Confirmation Confirmation
}

// Submit sends a copy of the current lines and returns exactly that copy
// with its total. The cart is never modified here: on success the caller
// decides what to remove, on failure the same lines can be submitted again.
func (c *Cart) Submit(ctx context.Context) (Submission, error) {
	c.mu.Lock()
	items := c.snapshot()
	total := c.total
	c.mu.Unlock()

	if len(items) == 0 {
		return Submission{}, ErrEmptyCart
	}
	if c.submitter == nil {
		return Submission{}, fmt.Errorf("checkout: no submitter configured")
	}

	conf, err := c.submitter.SubmitCheckout(ctx, items)
	if err != nil {
		c.logger.Error("checkout failed", zap.Int("items", len(items)), zap.Error(err))
		return Submission{}, fmt.Errorf("checkout: %w", err)
	}
	return Submission{Items: items, Total: total, Confirmation: conf}, nil
}

func (c *Cart) Checkout(ctx context.Context) (Confirmation, error) {
	sub, err := c.Submit(ctx)
	if err != nil {
		return nil, err
	}
	return sub.Confirmation, nil
}

// RemoveSubmitted takes the submitted units out of the cart. Lines added
// after the submission stay, and a line increased meanwhile keeps the
// extra units.
func (c *Cart) RemoveSubmitted(submitted []LineItem) {
	sent := make(map[int64]int, len(submitted))
	for _, it := range submitted {
		sent[it.ID] += it.Quantity
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	kept := make([]LineItem, 0, len(c.items))
	for _, it := range c.items {
		it.Quantity -= sent[it.ID]
		if it.Quantity > 0 {
			kept = append(kept, it)
		}
	}
	c.items = kept
	c.recalculate()
}

func (c *Cart) snapshot() []LineItem {
	out := make([]LineItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) indexOf(productID int64) int {
	for i := range c.items {
		if c.items[i].ID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) inRange(index int) bool {
	return index >= 0 && index < len(c.items)
}

func (c *Cart) recalculate() {
	total := decimal.Zero
	for _, it := range c.items {
		total = total.Add(it.Subtotal())
	}
	c.total = total
}
