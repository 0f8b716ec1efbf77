package clients

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/catalog"
)

// SearchClient reads the catalog through the search backend.
type SearchClient struct{ c *Client }

func NewSearchClient(c *Client) *SearchClient { return &SearchClient{c: c} }

const searchBase = "/api/search/products"

func (sc *SearchClient) List(ctx context.Context) ([]catalog.Product, error) {
	var out []catalog.Product
	if _, err := sc.c.doJSON(ctx, http.MethodGet, searchBase, "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (sc *SearchClient) Get(ctx context.Context, id int64) (catalog.Product, error) {
	var out catalog.Product
	_, err := sc.c.doJSON(ctx, http.MethodGet, searchBase+"/"+strconv.FormatInt(id, 10), "", nil, &out)
	return out, err
}

func (sc *SearchClient) Search(ctx context.Context, query string) ([]catalog.Product, error) {
	q := url.Values{}
	q.Set("query", query)

	var out []catalog.Product
	if _, err := sc.c.doJSON(ctx, http.MethodGet, searchBase+"/search", q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
