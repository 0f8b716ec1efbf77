package catalog

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/validation"
)

var (
	minPrice       = decimal.RequireFromString("0.01")
	imageURLFormat = regexp.MustCompile(`^https?://.+`)
)

// Normalize trims text fields.
func (in ProductInput) Normalize() ProductInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	return in
}

func (in ProductInput) Validate() error {
	v := validation.Errors{}
	if strings.TrimSpace(in.Name) == "" {
		v["name"] = "required"
	}
	if strings.TrimSpace(in.Description) == "" {
		v["description"] = "required"
	}
	if in.Price.LessThan(minPrice) {
		v["price"] = "must be at least 0.01"
	}
	if in.Stock < 0 {
		v["stock"] = "must not be negative"
	}
	if u := strings.TrimSpace(in.ImageURL); u != "" && !imageURLFormat.MatchString(u) {
		v["imageUrl"] = "must be an http or https URL"
	}
	return v.Err()
}
