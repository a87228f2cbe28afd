package stock

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/Panharith2006/electric-store-system/internal/api"
	"github.com/Panharith2006/electric-store-system/internal/auth"
	"github.com/Panharith2006/electric-store-system/internal/logger"
	"github.com/Panharith2006/electric-store-system/internal/mutation"
	"github.com/Panharith2006/electric-store-system/internal/product"
	"github.com/Panharith2006/electric-store-system/internal/signal"
	"github.com/Panharith2006/electric-store-system/internal/utils"
)

// Store holds the inventory view. It is always rebuilt from the
// backend; nothing here is persisted locally, because stock numbers go
// stale faster than any snapshot is worth.
type Store struct {
	mu      sync.RWMutex
	items   []Item
	loading bool
	client  api.Client
	bus     *signal.Bus

	fetchSeq atomic.Uint64
}

func NewStore(client api.Client, bus *signal.Bus) *Store {
	return &Store{client: client, bus: bus}
}

// Items returns a copy of the current inventory view.
func (s *Store) Items() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Loading reports whether a fetch is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Fetch rebuilds the inventory view: stock rows from the backend plus
// synthetic entries for catalog products without rows. A failed
// product merge degrades to the stock-only result. Overlapping fetches
// resolve to the most recently started one.
func (s *Store) Fetch(ctx context.Context, token string) error {
	seq := s.fetchSeq.Add(1)

	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	resp, err := s.client.GetStock(ctx, token)
	if err != nil {
		return fmt.Errorf("fetch stock: %w", err)
	}
	if resp.Error != "" {
		return fmt.Errorf("fetch stock: %s", resp.Error)
	}
	raw, err := api.DecodeList(resp.Data)
	if err != nil {
		return fmt.Errorf("fetch stock: %w", err)
	}
	now := time.Now()
	items := NormalizeList(raw, now)
	items = s.mergeCatalog(ctx, items, now)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.fetchSeq.Load() {
		logger.FromCtx(ctx).Debug("discarding stale stock fetch",
			zap.Uint64("seq", seq),
		)
		return nil
	}
	s.items = items
	return nil
}

func (s *Store) mergeCatalog(ctx context.Context, items []Item, now time.Time) []Item {
	resp, err := s.client.GetProducts(ctx)
	if err != nil {
		logger.FromCtx(ctx).Warn("stock merge skipped, product fetch failed", zap.Error(err))
		return items
	}
	if resp.Error != "" {
		logger.FromCtx(ctx).Warn("stock merge skipped, product fetch rejected",
			zap.String("reason", resp.Error),
		)
		return items
	}
	raw, err := api.DecodeList(resp.Data)
	if err != nil {
		logger.FromCtx(ctx).Warn("stock merge skipped, malformed product payload", zap.Error(err))
		return items
	}
	return MergeProducts(items, product.NormalizeList(raw), now)
}

// Adjust applies a delta to one stock record. Synthetic items have no
// record to adjust, so their variant's stock is written directly,
// clamped at zero. On success the whole view is refetched so reserved
// and available come back consistent; on failure a compensating
// refetch clears any optimistic local adjustment the caller applied.
func (s *Store) Adjust(ctx context.Context, token, stockID string, adjustment int, reason string) mutation.Result {
	if !auth.Usable(token) {
		return mutation.Reject("authentication required")
	}

	var resp api.Response
	var err error
	if strings.HasPrefix(stockID, syntheticPrefix) {
		variantID := strings.TrimPrefix(stockID, syntheticPrefix)
		newStock := 0
		if item, ok := s.byVariant(variantID); ok {
			newStock = item.TotalStock + adjustment
		} else {
			newStock = adjustment
		}
		if newStock < 0 {
			newStock = 0
		}
		resp, err = s.client.UpdateVariant(ctx, token, variantID, api.VariantPatch{
			Stock: utils.IntPtr(newStock),
		})
	} else {
		resp, err = s.client.AdjustStock(ctx, token, stockID, adjustment, reason)
	}

	if err != nil {
		s.compensate(ctx, token, stockID)
		return mutation.Result{Outcome: mutation.Rejected, Err: err}
	}
	if resp.Error != "" {
		s.compensate(ctx, token, stockID)
		return mutation.Reject(resp.Error)
	}

	if err := s.Fetch(ctx, token); err != nil {
		logger.FromCtx(ctx).Warn("refetch after stock adjustment failed",
			zap.String("stock_id", stockID),
			zap.Error(err),
		)
	}
	s.bus.Publish(signal.StockChanged)
	return mutation.AppliedResult()
}

func (s *Store) compensate(ctx context.Context, token, stockID string) {
	if err := s.Fetch(ctx, token); err != nil {
		logger.FromCtx(ctx).Warn("compensating stock refetch failed",
			zap.String("stock_id", stockID),
			zap.Error(err),
		)
	}
}

// UpdateThreshold sets a stock record's low-stock threshold. Synthetic
// items have no record; the change is rejected for them.
func (s *Store) UpdateThreshold(ctx context.Context, token, stockID string, threshold int) mutation.Result {
	if !auth.Usable(token) {
		return mutation.Reject("authentication required")
	}
	if strings.HasPrefix(stockID, syntheticPrefix) {
		return mutation.Reject("no stock record to update")
	}

	resp, err := s.client.UpdateStockThreshold(ctx, token, stockID, threshold)
	if err != nil {
		return mutation.Result{Outcome: mutation.Rejected, Err: err}
	}
	if resp.Error != "" {
		return mutation.Reject(resp.Error)
	}

	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ID == stockID {
			s.items[i].LowStockThreshold = threshold
			break
		}
	}
	s.mu.Unlock()
	s.bus.Publish(signal.StockChanged)
	return mutation.AppliedResult()
}

// ApplyLocalAdjustment moves the view immediately while a backend
// adjustment is in flight. Total and available clamp at zero
// independently. Synthetic ids also match on the underlying variant.
func (s *Store) ApplyLocalAdjustment(stockID string, adjustment int) {
	variantID := ""
	if strings.HasPrefix(stockID, syntheticPrefix) {
		variantID = strings.TrimPrefix(stockID, syntheticPrefix)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID != stockID && (variantID == "" || s.items[i].VariantID != variantID) {
			continue
		}
		s.items[i].TotalStock = clamp(s.items[i].TotalStock + adjustment)
		s.items[i].Available = clamp(s.items[i].Available + adjustment)
	}
}

// TotalStock sums units across the whole inventory.
func (s *Store) TotalStock() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, item := range s.items {
		total += item.TotalStock
	}
	return total
}

// LowStockCount counts items at or below their threshold but not yet
// empty. An item never counts as both low and out of stock.
func (s *Store) LowStockCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, item := range s.items {
		if item.TotalStock > 0 && item.TotalStock <= item.LowStockThreshold {
			n++
		}
	}
	return n
}

// OutOfStockCount counts items with no units left.
func (s *Store) OutOfStockCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, item := range s.items {
		if item.TotalStock == 0 {
			n++
		}
	}
	return n
}

func (s *Store) byVariant(variantID string) (Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.items {
		if item.VariantID == variantID {
			return item, true
		}
	}
	return Item{}, false
}

func clamp(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
