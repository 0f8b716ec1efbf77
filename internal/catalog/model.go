package catalog

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
)

// DefaultImageURL is shown for products saved without an image.
const DefaultImageURL = "https://vscda.org/wp-content/uploads/2017/03/300x300.png"

type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	ImageURL    string          `json:"imageUrl"`
}

// ProductInput is the admin create/update form.
type ProductInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	ImageURL    string          `json:"imageUrl"`
}

type productJSON struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       json.Number `json:"price"`
	Stock       int         `json:"stock"`
	ImageURL    string      `json:"imageUrl"`
}

func (p Product) MarshalJSON() ([]byte, error) {
	return json.Marshal(productJSON{p.ID, p.Name, p.Description, cart.Number(p.Price), p.Stock, p.ImageURL})
}

func (in ProductInput) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name        string      `json:"name"`
		Description string      `json:"description"`
		Price       json.Number `json:"price"`
		Stock       int         `json:"stock"`
		ImageURL    string      `json:"imageUrl"`
	}{in.Name, in.Description, cart.Number(in.Price), in.Stock, in.ImageURL})
}

func (p Product) withDefaults() Product {
	if p.ImageURL == "" {
		p.ImageURL = DefaultImageURL
	}
	return p
}

// Snapshot is the view of p the cart keeps.
func (p Product) Snapshot() cart.ProductSnapshot {
	return cart.ProductSnapshot{ID: p.ID, Name: p.Name, Price: p.Price, Stock: p.Stock}
}
