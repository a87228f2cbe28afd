package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Panharith2006/electric-store-system/internal/api/apitest"
	"github.com/Panharith2006/electric-store-system/internal/category"
	"github.com/Panharith2006/electric-store-system/internal/product"
	"github.com/Panharith2006/electric-store-system/internal/signal"
	"github.com/Panharith2006/electric-store-system/internal/stock"
)

func newManager(mc *apitest.MockClient, bus *signal.Bus) *Manager {
	return NewManager(
		product.NewStore(mc, bus, nil),
		category.NewStore(mc, bus, nil),
		stock.NewStore(mc, bus),
		bus,
		"tok-abc",
		time.Hour,
	)
}

func stubBackend(mc *apitest.MockClient) {
	mc.On("GetProducts", mock.Anything).
		Return(apitest.OK(`[{"id": 1, "name": "iPhone", "category": "Smartphones"}]`), nil)
	mc.On("GetCategories", mock.Anything).Return(apitest.OK(`[]`), nil)
	mc.On("GetStock", mock.Anything, "tok-abc").Return(apitest.OK(`[]`), nil)
}

func TestManagerStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mc := new(apitest.MockClient)
	bus := signal.NewBus(nil)
	m := newManager(mc, bus)
	stubBackend(mc)

	m.Start(ctx)

	assert.Len(t, m.products.Products(), 1)
	counts := make(map[string]int)
	for _, c := range m.categories.Categories() {
		counts[c.Name] = c.ProductCount
	}
	assert.Equal(t, 1, counts["Smartphones"])
	assert.NotEmpty(t, m.stock.Items())
}

func TestManagerReactsToEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mc := new(apitest.MockClient)
	bus := signal.NewBus(nil)
	m := newManager(mc, bus)
	stubBackend(mc)

	m.Start(ctx)
	baseline := len(mc.Calls)

	bus.Publish(signal.StockChanged)

	assert.Eventually(t, func() bool {
		return len(mc.Calls) > baseline
	}, time.Second, 10*time.Millisecond, "stock change event should trigger a refetch")
}

func TestManagerCoalescesBursts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mc := new(apitest.MockClient)
	bus := signal.NewBus(nil)
	m := newManager(mc, bus)
	stubBackend(mc)

	m.Start(ctx)

	// The limiter admits one reactive refetch per window; the burst
	// collapses into a single round of backend calls.
	for i := 0; i < 10; i++ {
		bus.Publish(signal.CategoriesChanged)
	}

	assert.Eventually(t, func() bool {
		n := 0
		for _, call := range mc.Calls {
			if call.Method == "GetCategories" {
				n++
			}
		}
		return n == 2 // initial load plus one coalesced refetch
	}, time.Second, 10*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	n := 0
	for _, call := range mc.Calls {
		if call.Method == "GetCategories" {
			n++
		}
	}
	assert.Equal(t, 2, n)
}
