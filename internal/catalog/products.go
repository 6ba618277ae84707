package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"
	pkgerrors "github.com/shophub/storefront/pkg/errors"
	"github.com/shophub/storefront/pkg/enums"
)

// Product is one catalog entry as returned by the external service.
type Product struct {
	ID          int             `json:"id"`
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
	Rating      Rating          `json:"rating"`
}

// Rating carries the catalog's aggregate review score.
type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

// GetAllProducts fetches the full catalog.
func (c *Client) GetAllProducts(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := c.do(ctx, "get_products", http.MethodGet, "/products", nil, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetProductByID fetches a single product.
func (c *Client) GetProductByID(ctx context.Context, id int) (*Product, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id must be positive")
	}
	var product Product
	if err := c.do(ctx, "get_product", http.MethodGet, "/products/"+strconv.Itoa(id), nil, nil, &product); err != nil {
		return nil, err
	}
	if product.ID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %d not found", id))
	}
	return &product, nil
}

// GetProductsByCategory fetches every product within a category.
func (c *Client) GetProductsByCategory(ctx context.Context, category string) ([]Product, error) {
	if category == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category is required")
	}
	var products []Product
	path := "/products/category/" + url.PathEscape(category)
	if err := c.do(ctx, "get_products_by_category", http.MethodGet, path, nil, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetCategories fetches the list of category names.
func (c *Client) GetCategories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := c.do(ctx, "get_categories", http.MethodGet, "/products/categories", nil, nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// GetLimitedProducts fetches at most limit products.
func (c *Client) GetLimitedProducts(ctx context.Context, limit int) ([]Product, error) {
	if limit <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "limit must be positive")
	}
	query := url.Values{"limit": []string{strconv.Itoa(limit)}}
	var products []Product
	if err := c.do(ctx, "get_limited_products", http.MethodGet, "/products", query, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetSortedProducts fetches the catalog sorted server-side by id.
func (c *Client) GetSortedProducts(ctx context.Context, order enums.SortOrder) ([]Product, error) {
	if !order.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid sort order %q", order))
	}
	query := url.Values{"sort": []string{order.String()}}
	var products []Product
	if err := c.do(ctx, "get_sorted_products", http.MethodGet, "/products", query, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}
