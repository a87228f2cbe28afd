package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Panharith2006/electric-store-system/internal/logger"
)

const requestTimeout = 15 * time.Second

// Response is the backend's reply envelope. Error is set for HTTP-level
// failures with a response (4xx/5xx); transport failures surface as Go
// errors from the client methods instead.
type Response struct {
	Data   json.RawMessage
	Error  string
	Status int
}

// Client is the backend contract the stores depend on. Implemented by
// *HTTPClient and by test doubles.
type Client interface {
	GetProducts(ctx context.Context) (Response, error)
	CreateProduct(ctx context.Context, token string, body ProductBody) (Response, error)
	UpdateProduct(ctx context.Context, token, id string, body ProductBody) (Response, error)
	DeleteProduct(ctx context.Context, token, id string) (Response, error)
	CreateVariant(ctx context.Context, token string, body VariantBody) (Response, error)
	UpdateVariant(ctx context.Context, token, id string, body VariantPatch) (Response, error)
	GetCategories(ctx context.Context) (Response, error)
	CreateCategory(ctx context.Context, token string, body CategoryBody) (Response, error)
	UpdateCategory(ctx context.Context, token, id string, body CategoryBody) (Response, error)
	DeleteCategory(ctx context.Context, token, id string) (Response, error)
	GetStock(ctx context.Context, token string) (Response, error)
	AdjustStock(ctx context.Context, token, stockID string, adjustment int, reason string) (Response, error)
	UpdateStockThreshold(ctx context.Context, token, stockID string, threshold int) (Response, error)
}

var _ Client = (*HTTPClient)(nil)

// HTTPClient talks to the electric-store backend REST API.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewClient builds an HTTPClient for the given API base URL, e.g.
// "http://127.0.0.1:8000/api".
func NewClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   requestTimeout,
			Transport: &logger.Transport{},
		},
	}
}

func (c *HTTPClient) request(ctx context.Context, method, path, token string, body any) (Response, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return Response{}, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return Response{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return Response{
			Error:  errorMessage(raw, resp),
			Status: resp.StatusCode,
		}, nil
	}

	// Non-JSON success bodies degrade to empty data rather than errors.
	var data json.RawMessage
	if len(bytes.TrimSpace(raw)) > 0 && json.Valid(raw) {
		data = json.RawMessage(raw)
	}
	return Response{Data: data, Status: resp.StatusCode}, nil
}

// errorMessage surfaces a structured error body if present, falling
// back to the HTTP status text.
func errorMessage(raw []byte, resp *http.Response) string {
	var body struct {
		Error   string `json:"error"`
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		for _, msg := range []string{body.Error, body.Detail, body.Message} {
			if msg != "" {
				return msg
			}
		}
	}
	if resp.Status != "" {
		return resp.Status
	}
	return fmt.Sprintf("HTTP %d", resp.StatusCode)
}
