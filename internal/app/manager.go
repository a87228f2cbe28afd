package app

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Panharith2006/electric-store-system/internal/category"
	"github.com/Panharith2006/electric-store-system/internal/logger"
	"github.com/Panharith2006/electric-store-system/internal/product"
	"github.com/Panharith2006/electric-store-system/internal/signal"
	"github.com/Panharith2006/electric-store-system/internal/stock"
)

// Manager drives the stores: an initial load, a periodic poll, and
// reactive refetches when a change event lands on the bus. Reactive
// refetches are rate limited per event type so a burst of mutations
// coalesces into one round trip.
type Manager struct {
	products   *product.Store
	categories *category.Store
	stock      *stock.Store
	bus        *signal.Bus
	token      string
	interval   time.Duration
	limits     map[signal.EventType]*rate.Limiter
}

func NewManager(
	products *product.Store,
	categories *category.Store,
	stockStore *stock.Store,
	bus *signal.Bus,
	token string,
	interval time.Duration,
) *Manager {
	limits := make(map[signal.EventType]*rate.Limiter)
	for _, t := range []signal.EventType{
		signal.ProductsChanged, signal.CategoriesChanged, signal.StockChanged,
	} {
		limits[t] = rate.NewLimiter(rate.Every(2*time.Second), 1)
	}
	return &Manager{
		products:   products,
		categories: categories,
		stock:      stockStore,
		bus:        bus,
		token:      token,
		interval:   interval,
		limits:     limits,
	}
}

// Start performs the initial load, subscribes to the change bus, and
// launches the polling loop. It returns after the initial load; the
// loop and subscription live until ctx is cancelled.
func (m *Manager) Start(ctx context.Context) {
	m.refreshAll(ctx)

	cancel := m.bus.Subscribe(func(ev signal.Event) {
		if !m.limits[ev.Type].Allow() {
			return
		}
		go m.handle(ctx, ev.Type)
	})

	go func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		defer cancel()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.refreshAll(ctx)
			}
		}
	}()
}

func (m *Manager) refreshAll(ctx context.Context) {
	if err := m.products.Refresh(ctx); err != nil {
		logger.FromCtx(ctx).Warn("product refresh failed", zap.Error(err))
	}
	if err := m.categories.Refresh(ctx); err != nil {
		logger.FromCtx(ctx).Warn("category refresh failed", zap.Error(err))
	}
	m.categories.Recount(m.products.Products())
	if err := m.stock.Fetch(ctx, m.token); err != nil {
		logger.FromCtx(ctx).Warn("stock fetch failed", zap.Error(err))
	}
}

func (m *Manager) handle(ctx context.Context, t signal.EventType) {
	switch t {
	case signal.ProductsChanged:
		if err := m.products.Refresh(ctx); err != nil {
			logger.FromCtx(ctx).Warn("product refresh failed", zap.Error(err))
			return
		}
		m.categories.Recount(m.products.Products())
		if err := m.stock.Fetch(ctx, m.token); err != nil {
			logger.FromCtx(ctx).Warn("stock fetch failed", zap.Error(err))
		}
	case signal.CategoriesChanged:
		if err := m.categories.Refresh(ctx); err != nil {
			logger.FromCtx(ctx).Warn("category refresh failed", zap.Error(err))
		}
	case signal.StockChanged:
		if err := m.stock.Fetch(ctx, m.token); err != nil {
			logger.FromCtx(ctx).Warn("stock fetch failed", zap.Error(err))
		}
	}
}
