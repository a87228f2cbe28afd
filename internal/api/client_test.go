package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

// MockRoundTripper allows us to mock the HTTP response
type MockRoundTripper func(req *http.Request) (*http.Response, error)

func (f MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
	}
}

func newTestClient(rt MockRoundTripper) *HTTPClient {
	c := NewClient("http://127.0.0.1:8000/api")
	c.http.Transport = rt
	return c
}

func TestHTTPClient_GetProducts(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		c := newTestClient(func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "GET", req.Method)
			assert.Equal(t, "http://127.0.0.1:8000/api/products/products/", req.URL.String())
			assert.Empty(t, req.Header.Get("Authorization"))
			return jsonResponse(http.StatusOK, `[{"id": 1, "name": "iPhone"}]`), nil
		})

		res, err := c.GetProducts(context.Background())
		assert.NoError(t, err)
		assert.Empty(t, res.Error)
		assert.Equal(t, http.StatusOK, res.Status)
		assert.JSONEq(t, `[{"id": 1, "name": "iPhone"}]`, string(res.Data))
	})

	t.Run("Network error", func(t *testing.T) {
		c := newTestClient(func(req *http.Request) (*http.Response, error) {
			return nil, errors.New("connection refused")
		})

		_, err := c.GetProducts(context.Background())
		assert.Error(t, err)
	})

	t.Run("Non-JSON body degrades to empty data", func(t *testing.T) {
		c := newTestClient(func(req *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, `<html>oops</html>`), nil
		})

		res, err := c.GetProducts(context.Background())
		assert.NoError(t, err)
		assert.Nil(t, res.Data)
	})
}

func TestHTTPClient_CreateProduct(t *testing.T) {
	t.Run("Renames fields and defaults is_active", func(t *testing.T) {
		c := newTestClient(func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "POST", req.Method)
			assert.Equal(t, "Token admin-token", req.Header.Get("Authorization"))

			var sent map[string]any
			assert.NoError(t, json.NewDecoder(req.Body).Decode(&sent))
			assert.Equal(t, 999.0, sent["base_price"])
			assert.Equal(t, true, sent["is_active"])
			_, hasCamel := sent["basePrice"]
			assert.False(t, hasCamel)

			return jsonResponse(http.StatusCreated, `{"id": 7, "name": "iPhone"}`), nil
		})

		res, err := c.CreateProduct(context.Background(), "admin-token", ProductBody{
			Name:      "iPhone",
			BasePrice: 999,
			Category:  "Smartphones",
		})
		assert.NoError(t, err)
		assert.Empty(t, res.Error)
		assert.Equal(t, http.StatusCreated, res.Status)
	})

	t.Run("Structured validation error", func(t *testing.T) {
		c := newTestClient(func(req *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusBadRequest, `{"detail": "name already exists"}`), nil
		})

		res, err := c.CreateProduct(context.Background(), "tok", ProductBody{Name: "dup"})
		assert.NoError(t, err)
		assert.Equal(t, "name already exists", res.Error)
		assert.Equal(t, http.StatusBadRequest, res.Status)
		assert.Nil(t, res.Data)
	})

	t.Run("Unstructured error falls back to status text", func(t *testing.T) {
		c := newTestClient(func(req *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusInternalServerError, `boom`), nil
		})

		res, err := c.CreateProduct(context.Background(), "tok", ProductBody{Name: "x"})
		assert.NoError(t, err)
		assert.Equal(t, http.StatusText(http.StatusInternalServerError), res.Error)
	})
}

func TestHTTPClient_AdjustStock(t *testing.T) {
	t.Run("Sends adjustment with default reason", func(t *testing.T) {
		c := newTestClient(func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "POST", req.Method)
			assert.Equal(t, "http://127.0.0.1:8000/api/inventory/stock/42/adjust/", req.URL.String())

			var sent map[string]any
			assert.NoError(t, json.NewDecoder(req.Body).Decode(&sent))
			assert.Equal(t, -3.0, sent["adjustment"])
			assert.Equal(t, "Manual adjustment", sent["reason"])

			return jsonResponse(http.StatusOK, `{"id": 42, "quantity": 7}`), nil
		})

		res, err := c.AdjustStock(context.Background(), "tok", "42", -3, "")
		assert.NoError(t, err)
		assert.Empty(t, res.Error)
	})
}

func TestHTTPClient_UpdateStockThreshold(t *testing.T) {
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "PATCH", req.Method)
		assert.Equal(t, "http://127.0.0.1:8000/api/inventory/stock/42/", req.URL.String())

		var sent map[string]any
		assert.NoError(t, json.NewDecoder(req.Body).Decode(&sent))
		assert.Equal(t, 25.0, sent["low_stock_threshold"])

		return jsonResponse(http.StatusOK, `{"id": 42, "low_stock_threshold": 25}`), nil
	})

	res, err := c.UpdateStockThreshold(context.Background(), "tok", "42", 25)
	assert.NoError(t, err)
	assert.Empty(t, res.Error)
}

func TestHTTPClient_UpdateVariant(t *testing.T) {
	t.Run("Partial patch omits nil fields", func(t *testing.T) {
		c := newTestClient(func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "PATCH", req.Method)
			assert.Equal(t, "http://127.0.0.1:8000/api/products/variants/v-1/", req.URL.String())

			var sent map[string]any
			assert.NoError(t, json.NewDecoder(req.Body).Decode(&sent))
			assert.Equal(t, map[string]any{"stock": 12.0}, sent)

			return jsonResponse(http.StatusOK, `{"id": "v-1", "stock": 12}`), nil
		})

		stock := 12
		res, err := c.UpdateVariant(context.Background(), "tok", "v-1", VariantPatch{Stock: &stock})
		assert.NoError(t, err)
		assert.Empty(t, res.Error)
	})
}
