package clients

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/catalog"
)

// ProductsClient talks to the product backend's CRUD endpoints.
type ProductsClient struct{ c *Client }

func NewProductsClient(c *Client) *ProductsClient { return &ProductsClient{c: c} }

func productPath(id int64) string {
	return "/api/products/" + strconv.FormatInt(id, 10)
}

func (pc *ProductsClient) List(ctx context.Context) ([]catalog.Product, error) {
	var out []catalog.Product
	if _, err := pc.c.doJSON(ctx, http.MethodGet, "/api/products", "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (pc *ProductsClient) Create(ctx context.Context, in catalog.ProductInput) (catalog.Product, error) {
	var out catalog.Product
	_, err := pc.c.doJSON(ctx, http.MethodPost, "/api/products", "", in, &out)
	return out, err
}

func (pc *ProductsClient) Update(ctx context.Context, id int64, in catalog.ProductInput) (catalog.Product, error) {
	var out catalog.Product
	_, err := pc.c.doJSON(ctx, http.MethodPut, productPath(id), "", in, &out)
	return out, err
}

func (pc *ProductsClient) ReduceStock(ctx context.Context, id int64, quantity int) (catalog.Product, error) {
	q := url.Values{}
	q.Set("quantity", strconv.Itoa(quantity))

	var out catalog.Product
	_, err := pc.c.doJSON(ctx, http.MethodPut, productPath(id)+"/reduce-stock", q.Encode(), nil, &out)
	return out, err
}

func (pc *ProductsClient) Delete(ctx context.Context, id int64) error {
	_, err := pc.c.doJSON(ctx, http.MethodDelete, productPath(id), "", nil, nil)
	return err
}
