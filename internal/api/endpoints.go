package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

func (c *HTTPClient) GetProducts(ctx context.Context) (Response, error) {
	return c.request(ctx, http.MethodGet, "/products/products/", "", nil)
}

func (c *HTTPClient) CreateProduct(ctx context.Context, token string, body ProductBody) (Response, error) {
	if body.IsActive == nil {
		active := true
		body.IsActive = &active
	}
	return c.request(ctx, http.MethodPost, "/products/products/", token, body)
}

func (c *HTTPClient) UpdateProduct(ctx context.Context, token, id string, body ProductBody) (Response, error) {
	path := fmt.Sprintf("/products/products/%s/", url.PathEscape(id))
	return c.request(ctx, http.MethodPatch, path, token, body)
}

func (c *HTTPClient) DeleteProduct(ctx context.Context, token, id string) (Response, error) {
	path := fmt.Sprintf("/products/products/%s/", url.PathEscape(id))
	return c.request(ctx, http.MethodDelete, path, token, nil)
}

func (c *HTTPClient) CreateVariant(ctx context.Context, token string, body VariantBody) (Response, error) {
	return c.request(ctx, http.MethodPost, "/products/variants/", token, body)
}

func (c *HTTPClient) UpdateVariant(ctx context.Context, token, id string, body VariantPatch) (Response, error) {
	path := fmt.Sprintf("/products/variants/%s/", url.PathEscape(id))
	return c.request(ctx, http.MethodPatch, path, token, body)
}

func (c *HTTPClient) GetCategories(ctx context.Context) (Response, error) {
	return c.request(ctx, http.MethodGet, "/products/products/categories/", "", nil)
}

func (c *HTTPClient) CreateCategory(ctx context.Context, token string, body CategoryBody) (Response, error) {
	return c.request(ctx, http.MethodPost, "/products/categories/", token, body)
}

func (c *HTTPClient) UpdateCategory(ctx context.Context, token, id string, body CategoryBody) (Response, error) {
	path := fmt.Sprintf("/products/categories/%s/", url.PathEscape(id))
	return c.request(ctx, http.MethodPatch, path, token, body)
}

func (c *HTTPClient) DeleteCategory(ctx context.Context, token, id string) (Response, error) {
	path := fmt.Sprintf("/products/categories/%s/", url.PathEscape(id))
	return c.request(ctx, http.MethodDelete, path, token, nil)
}

func (c *HTTPClient) GetStock(ctx context.Context, token string) (Response, error) {
	return c.request(ctx, http.MethodGet, "/inventory/stock/", token, nil)
}

func (c *HTTPClient) AdjustStock(ctx context.Context, token, stockID string, adjustment int, reason string) (Response, error) {
	if reason == "" {
		reason = "Manual adjustment"
	}
	path := fmt.Sprintf("/inventory/stock/%s/adjust/", url.PathEscape(stockID))
	return c.request(ctx, http.MethodPost, path, token, adjustBody{
		Adjustment: adjustment,
		Reason:     reason,
	})
}

func (c *HTTPClient) UpdateStockThreshold(ctx context.Context, token, stockID string, threshold int) (Response, error) {
	path := fmt.Sprintf("/inventory/stock/%s/", url.PathEscape(stockID))
	return c.request(ctx, http.MethodPatch, path, token, thresholdBody{
		LowStockThreshold: threshold,
	})
}
