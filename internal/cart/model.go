package cart

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Number renders an amount as a bare JSON number, the form the upstream
// backends and the browser expect for money.
func Number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

// ProductSnapshot is the part of a product record the cart copies at insertion time.
type ProductSnapshot struct {
	ID    int64           `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
}

// LineItem is one product entry in the cart. Price and Stock do not follow
// later changes to the product.
type LineItem struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name,omitempty"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Stock    int             `json:"stock"`
}

func (p ProductSnapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID    int64       `json:"id"`
		Name  string      `json:"name"`
		Price json.Number `json:"price"`
		Stock int         `json:"stock"`
	}{p.ID, p.Name, Number(p.Price), p.Stock})
}

func (it LineItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID       int64       `json:"id"`
		Name     string      `json:"name,omitempty"`
		Price    json.Number `json:"price"`
		Quantity int         `json:"quantity"`
		Stock    int         `json:"stock"`
	}{it.ID, it.Name, Number(it.Price), it.Quantity, it.Stock})
}

func (it LineItem) Subtotal() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// Confirmation is the opaque payload returned by a successful checkout.
type Confirmation = json.RawMessage
