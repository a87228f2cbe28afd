// Package apitest provides a testify mock of api.Client for store
// tests. Expectations return an api.Response and an error, matching
// the real client's transport-vs-envelope error split.
package apitest

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Panharith2006/electric-store-system/internal/api"
)

type MockClient struct {
	mock.Mock
}

var _ api.Client = (*MockClient)(nil)

func (m *MockClient) GetProducts(ctx context.Context) (api.Response, error) {
	args := m.Called(ctx)
	return args.Get(0).(api.Response), args.Error(1)
}

func (m *MockClient) CreateProduct(ctx context.Context, token string, body api.ProductBody) (api.Response, error) {
	args := m.Called(ctx, token, body)
	return args.Get(0).(api.Response), args.Error(1)
}

func (m *MockClient) UpdateProduct(ctx context.Context, token, id string, body api.ProductBody) (api.Response, error) {
	args := m.Called(ctx, token, id, body)
	return args.Get(0).(api.Response), args.Error(1)
}

func (m *MockClient) DeleteProduct(ctx context.Context, token, id string) (api.Response, error) {
	args := m.Called(ctx, token, id)
	return args.Get(0).(api.Response), args.Error(1)
}

func (m *MockClient) CreateVariant(ctx context.Context, token string, body api.VariantBody) (api.Response, error) {
	args := m.Called(ctx, token, body)
	return args.Get(0).(api.Response), args.Error(1)
}

func (m *MockClient) UpdateVariant(ctx context.Context, token, id string, body api.VariantPatch) (api.Response, error) {
	args := m.Called(ctx, token, id, body)
	return args.Get(0).(api.Response), args.Error(1)
}

func (m *MockClient) GetCategories(ctx context.Context) (api.Response, error) {
	args := m.Called(ctx)
	return args.Get(0).(api.Response), args.Error(1)
}

func (m *MockClient) CreateCategory(ctx context.Context, token string, body api.CategoryBody) (api.Response, error) {
	args := m.Called(ctx, token, body)
	return args.Get(0).(api.Response), args.Error(1)
}

func (m *MockClient) UpdateCategory(ctx context.Context, token, id string, body api.CategoryBody) (api.Response, error) {
	args := m.Called(ctx, token, id, body)
	return args.Get(0).(api.Response), args.Error(1)
}

func (m *MockClient) DeleteCategory(ctx context.Context, token, id string) (api.Response, error) {
	args := m.Called(ctx, token, id)
	return args.Get(0).(api.Response), args.Error(1)
}

func (m *MockClient) GetStock(ctx context.Context, token string) (api.Response, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(api.Response), args.Error(1)
}

func (m *MockClient) AdjustStock(ctx context.Context, token, stockID string, adjustment int, reason string) (api.Response, error) {
	args := m.Called(ctx, token, stockID, adjustment, reason)
	return args.Get(0).(api.Response), args.Error(1)
}

func (m *MockClient) UpdateStockThreshold(ctx context.Context, token, stockID string, threshold int) (api.Response, error) {
	args := m.Called(ctx, token, stockID, threshold)
	return args.Get(0).(api.Response), args.Error(1)
}

// OK wraps a JSON body into a successful Response.
func OK(body string) api.Response {
	return api.Response{Data: []byte(body), Status: 200}
}

// Fail builds a backend rejection with the given status and message.
func Fail(status int, msg string) api.Response {
	return api.Response{Error: msg, Status: status}
}
