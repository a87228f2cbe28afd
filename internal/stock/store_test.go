package stock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Panharith2006/electric-store-system/internal/api"
	"github.com/Panharith2006/electric-store-system/internal/api/apitest"
	"github.com/Panharith2006/electric-store-system/internal/mutation"
	"github.com/Panharith2006/electric-store-system/internal/signal"
)

const stockJSON = `[
	{"id": 1, "quantity": 5, "low_stock_threshold": 10,
	 "variant_details": {"id": "42-a", "storage": "128GB", "product": {"id": 42, "name": "iPhone"}}},
	{"id": 2, "quantity": 0,
	 "variant_details": {"id": "42-b", "storage": "256GB", "product": {"id": 42, "name": "iPhone"}}},
	{"id": 3, "quantity": 50,
	 "variant_details": {"id": "9-a", "product": {"id": 9, "name": "MacBook"}}}
]`

func seeded(t *testing.T, mc *apitest.MockClient, bus *signal.Bus) *Store {
	t.Helper()
	s := NewStore(mc, bus)
	mc.On("GetStock", mock.Anything, "tok-abc").Return(apitest.OK(stockJSON), nil).Once()
	mc.On("GetProducts", mock.Anything).Return(apitest.OK(`[]`), nil).Once()
	assert.NoError(t, s.Fetch(context.Background(), "tok-abc"))
	return s
}

func TestStoreFetch(t *testing.T) {
	ctx := context.Background()

	t.Run("normalizes and merges catalog", func(t *testing.T) {
		mc := new(apitest.MockClient)
		s := NewStore(mc, signal.NewBus(nil))

		mc.On("GetStock", mock.Anything, "tok-abc").Return(apitest.OK(stockJSON), nil)
		mc.On("GetProducts", mock.Anything).
			Return(apitest.OK(`[{"id": 7, "name": "Charger"}]`), nil)

		assert.NoError(t, s.Fetch(ctx, "tok-abc"))

		items := s.Items()
		assert.Len(t, items, 4)
		assert.Equal(t, "synthetic-7", items[3].ID)
		assert.False(t, s.Loading())
	})

	t.Run("product merge failure degrades to stock only", func(t *testing.T) {
		mc := new(apitest.MockClient)
		s := NewStore(mc, signal.NewBus(nil))

		mc.On("GetStock", mock.Anything, "tok-abc").Return(apitest.OK(stockJSON), nil)
		mc.On("GetProducts", mock.Anything).Return(api.Response{}, errors.New("connection refused"))

		assert.NoError(t, s.Fetch(ctx, "tok-abc"))
		assert.Len(t, s.Items(), 3)
	})

	t.Run("stale overlapping fetch is discarded", func(t *testing.T) {
		mc := new(apitest.MockClient)
		s := NewStore(mc, signal.NewBus(nil))

		slowStarted := make(chan struct{})
		release := make(chan struct{})
		mc.On("GetStock", mock.Anything, "tok-abc").
			Return(apitest.OK(`[{"id": 1, "quantity": 5, "variant_details": {"id": "stale-v"}}]`), nil).
			Once().
			Run(func(mock.Arguments) {
				close(slowStarted)
				<-release
			})
		mc.On("GetStock", mock.Anything, "tok-abc").
			Return(apitest.OK(`[{"id": 2, "quantity": 9, "variant_details": {"id": "fresh-v"}}]`), nil).
			Once()
		mc.On("GetProducts", mock.Anything).Return(apitest.OK(`[]`), nil)

		done := make(chan struct{})
		go func() {
			defer close(done)
			assert.NoError(t, s.Fetch(ctx, "tok-abc"))
		}()

		<-slowStarted
		assert.NoError(t, s.Fetch(ctx, "tok-abc"))
		close(release)

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("slow fetch never returned")
		}

		items := s.Items()
		assert.Len(t, items, 1)
		assert.Equal(t, "fresh-v", items[0].VariantID)
		assert.Equal(t, 9, items[0].TotalStock)
	})

	t.Run("fetch failure clears loading", func(t *testing.T) {
		mc := new(apitest.MockClient)
		s := NewStore(mc, signal.NewBus(nil))

		mc.On("GetStock", mock.Anything, "tok-abc").Return(api.Response{}, errors.New("timeout"))

		assert.Error(t, s.Fetch(ctx, "tok-abc"))
		assert.False(t, s.Loading())
	})
}

func TestStoreAdjust(t *testing.T) {
	ctx := context.Background()

	t.Run("real record goes through the adjust endpoint", func(t *testing.T) {
		mc := new(apitest.MockClient)
		bus := signal.NewBus(nil)
		var published int
		bus.Subscribe(func(ev signal.Event) {
			if ev.Type == signal.StockChanged {
				published++
			}
		})
		s := seeded(t, mc, bus)

		mc.On("AdjustStock", mock.Anything, "tok-abc", "1", 5, "Restock").
			Return(apitest.OK(`{"id": 1}`), nil)
		mc.On("GetStock", mock.Anything, "tok-abc").Return(apitest.OK(stockJSON), nil)
		mc.On("GetProducts", mock.Anything).Return(apitest.OK(`[]`), nil)

		res := s.Adjust(ctx, "tok-abc", "1", 5, "Restock")

		assert.Equal(t, mutation.Applied, res.Outcome)
		assert.Equal(t, 1, published)
		mc.AssertExpectations(t)
	})

	t.Run("synthetic record writes the variant instead", func(t *testing.T) {
		mc := new(apitest.MockClient)
		s := NewStore(mc, signal.NewBus(nil))
		s.items = []Item{{ID: "synthetic-42-b", VariantID: "42-b", TotalStock: 3}}

		mc.On("UpdateVariant", mock.Anything, "tok-abc", "42-b", mock.MatchedBy(func(p api.VariantPatch) bool {
			return p.Stock != nil && *p.Stock == 8
		})).Return(apitest.OK(`{}`), nil)
		mc.On("GetStock", mock.Anything, "tok-abc").Return(apitest.OK(`[]`), nil)
		mc.On("GetProducts", mock.Anything).Return(apitest.OK(`[]`), nil)

		res := s.Adjust(ctx, "tok-abc", "synthetic-42-b", 5, "Restock")

		assert.Equal(t, mutation.Applied, res.Outcome)
		mc.AssertExpectations(t)
	})

	t.Run("synthetic decrement clamps at zero", func(t *testing.T) {
		mc := new(apitest.MockClient)
		s := NewStore(mc, signal.NewBus(nil))
		s.items = []Item{{ID: "synthetic-42-b", VariantID: "42-b", TotalStock: 3}}

		mc.On("UpdateVariant", mock.Anything, "tok-abc", "42-b", mock.MatchedBy(func(p api.VariantPatch) bool {
			return p.Stock != nil && *p.Stock == 0
		})).Return(apitest.OK(`{}`), nil)
		mc.On("GetStock", mock.Anything, "tok-abc").Return(apitest.OK(`[]`), nil)
		mc.On("GetProducts", mock.Anything).Return(apitest.OK(`[]`), nil)

		res := s.Adjust(ctx, "tok-abc", "synthetic-42-b", -10, "Shrinkage")
		assert.Equal(t, mutation.Applied, res.Outcome)
	})

	t.Run("rejection triggers compensating refetch", func(t *testing.T) {
		mc := new(apitest.MockClient)
		s := seeded(t, mc, signal.NewBus(nil))

		mc.On("AdjustStock", mock.Anything, "tok-abc", "1", -100, "Oops").
			Return(apitest.Fail(400, "insufficient stock"), nil)
		mc.On("GetStock", mock.Anything, "tok-abc").Return(apitest.OK(stockJSON), nil).Once()
		mc.On("GetProducts", mock.Anything).Return(apitest.OK(`[]`), nil).Once()

		s.ApplyLocalAdjustment("1", -100)
		res := s.Adjust(ctx, "tok-abc", "1", -100, "Oops")

		assert.Equal(t, mutation.Rejected, res.Outcome)
		assert.Equal(t, "insufficient stock", res.Reason)
		// The optimistic decrement was rolled back by the refetch.
		assert.Equal(t, 5, s.Items()[0].TotalStock)
		mc.AssertExpectations(t)
	})

	t.Run("guest adjust rejected", func(t *testing.T) {
		mc := new(apitest.MockClient)
		s := NewStore(mc, signal.NewBus(nil))

		res := s.Adjust(ctx, "", "1", 5, "Restock")
		assert.Equal(t, mutation.Rejected, res.Outcome)
		mc.AssertExpectations(t)
	})
}

func TestStoreUpdateThreshold(t *testing.T) {
	ctx := context.Background()

	t.Run("updates in place", func(t *testing.T) {
		mc := new(apitest.MockClient)
		s := seeded(t, mc, signal.NewBus(nil))

		mc.On("UpdateStockThreshold", mock.Anything, "tok-abc", "1", 20).
			Return(apitest.OK(`{"id": 1}`), nil)

		res := s.UpdateThreshold(ctx, "tok-abc", "1", 20)

		assert.Equal(t, mutation.Applied, res.Outcome)
		assert.Equal(t, 20, s.Items()[0].LowStockThreshold)
	})

	t.Run("rejection leaves threshold", func(t *testing.T) {
		mc := new(apitest.MockClient)
		s := seeded(t, mc, signal.NewBus(nil))

		mc.On("UpdateStockThreshold", mock.Anything, "tok-abc", "1", -1).
			Return(apitest.Fail(400, "threshold must be positive"), nil)

		res := s.UpdateThreshold(ctx, "tok-abc", "1", -1)

		assert.Equal(t, mutation.Rejected, res.Outcome)
		assert.Equal(t, 10, s.Items()[0].LowStockThreshold)
	})

	t.Run("synthetic record rejected", func(t *testing.T) {
		mc := new(apitest.MockClient)
		s := NewStore(mc, signal.NewBus(nil))

		res := s.UpdateThreshold(ctx, "tok-abc", "synthetic-42-b", 20)
		assert.Equal(t, mutation.Rejected, res.Outcome)
		mc.AssertExpectations(t)
	})
}

func TestStoreApplyLocalAdjustment(t *testing.T) {
	t.Run("clamps total and available independently", func(t *testing.T) {
		s := NewStore(new(apitest.MockClient), signal.NewBus(nil))
		s.items = []Item{{ID: "1", TotalStock: 5, Available: 2}}

		s.ApplyLocalAdjustment("1", -4)

		item := s.Items()[0]
		assert.Equal(t, 1, item.TotalStock)
		assert.Equal(t, 0, item.Available)
	})

	t.Run("synthetic id matches by variant", func(t *testing.T) {
		s := NewStore(new(apitest.MockClient), signal.NewBus(nil))
		s.items = []Item{{ID: "real-1", VariantID: "42-b", TotalStock: 3, Available: 3}}

		s.ApplyLocalAdjustment("synthetic-42-b", 2)

		assert.Equal(t, 5, s.Items()[0].TotalStock)
	})
}

func TestStoreCounts(t *testing.T) {
	mc := new(apitest.MockClient)
	s := seeded(t, mc, signal.NewBus(nil))

	assert.Equal(t, 55, s.TotalStock())
	assert.Equal(t, 1, s.LowStockCount())
	assert.Equal(t, 1, s.OutOfStockCount())

	t.Run("low stock reclassifies to out of stock", func(t *testing.T) {
		s.ApplyLocalAdjustment("1", -5)

		assert.Equal(t, 0, s.LowStockCount())
		assert.Equal(t, 2, s.OutOfStockCount())
		assert.Equal(t, 50, s.TotalStock())
	})
}
