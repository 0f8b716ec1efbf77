package clients

import (
	"context"
	"net/http"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
)

const checkoutPath = "/api/products/checkout"

// CheckoutClient submits carts to the product backend. It satisfies
// cart.Submitter.
type CheckoutClient struct{ c *Client }

func NewCheckoutClient(c *Client) *CheckoutClient { return &CheckoutClient{c: c} }

func (cc *CheckoutClient) SubmitCheckout(ctx context.Context, items []cart.LineItem) (cart.Confirmation, error) {
	var conf cart.Confirmation
	if _, err := cc.c.doJSON(ctx, http.MethodPost, checkoutPath, "", items, &conf); err != nil {
		return nil, err
	}
	return conf, nil
}
