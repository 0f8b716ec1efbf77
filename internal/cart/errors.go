package cart

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfStock      = errors.New("product out of stock")
	ErrStockLimit      = errors.New("stock limit reached")
	ErrIndexOutOfRange = errors.New("cart index out of range")
	ErrInvalidProduct  = errors.New("invalid product")
	ErrInvalidItems    = errors.New("invalid cart items")
	ErrEmptyCart       = errors.New("cart is empty")
)

// StockLimitError reports an increment refused because the line already
// holds every unit that was in stock when it was added.
type StockLimitError struct {
	ProductID int64
	Stock     int
}

func (e *StockLimitError) Error() string {
	return fmt.Sprintf("cannot add more than %d units of product %d", e.Stock, e.ProductID)
}

func (e *StockLimitError) Unwrap() error {
	return ErrStockLimit
}
