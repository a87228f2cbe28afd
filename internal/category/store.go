package category

import (
	"context"
	"encoding/json"
	"errors"
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
)

const snapshotKey = "categories-storage"

// Snapshot persists categories between runs. Implemented by
// *cache.Cache.
type Snapshot interface {
	SaveState(name string, payload []byte) error
	LoadState(name string) ([]byte, bool, error)
}

// defaults seeds a fresh store so the storefront has navigation before
// the first successful fetch.
func defaults() []Category {
	names := []string{
		"Smartphones", "Laptops", "Tablets", "Smartwatches",
		"Headphones", "Cameras", "TVs", "Gaming",
	}
	out := make([]Category, 0, len(names))
	for _, name := range names {
		out = append(out, Category{ID: strings.ToLower(name), Name: name})
	}
	return out
}

// Store holds the category list. Unlike the product store, every
// mutation here lands locally even when the backend refuses it: the
// category surface is navigation, and a divergent local entry is less
// harmful than a missing one. The next refresh restores backend truth.
type Store struct {
	mu     sync.RWMutex
	items  []Category
	client api.Client
	bus    *signal.Bus
	snap   Snapshot

	fetchSeq atomic.Uint64
}

func NewStore(client api.Client, bus *signal.Bus, snap Snapshot) *Store {
	s := &Store{client: client, bus: bus, snap: snap}
	if !s.rehydrate() {
		s.items = defaults()
	}
	return s
}

func (s *Store) rehydrate() bool {
	if s.snap == nil {
		return false
	}
	payload, ok, err := s.snap.LoadState(snapshotKey)
	if err != nil {
		logger.L().Warn("failed to load category snapshot", zap.Error(err))
		return false
	}
	if !ok {
		return false
	}
	var items []Category
	if err := json.Unmarshal(payload, &items); err != nil {
		logger.L().Warn("discarding corrupt category snapshot", zap.Error(err))
		return false
	}
	s.items = items
	return true
}

func (s *Store) persistLocked() {
	if s.snap == nil {
		return
	}
	payload, err := json.Marshal(s.items)
	if err != nil {
		return
	}
	if err := s.snap.SaveState(snapshotKey, payload); err != nil {
		logger.L().Warn("failed to persist category snapshot", zap.Error(err))
	}
}

// Categories returns a copy of the current list.
func (s *Store) Categories() []Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Category, len(s.items))
	copy(out, s.items)
	return out
}

// Refresh replaces the list with the backend's. An empty backend
// result keeps the current list, so the seed survives a bare backend.
// Overlapping refreshes resolve to the most recently started one.
func (s *Store) Refresh(ctx context.Context) error {
	seq := s.fetchSeq.Add(1)

	resp, err := s.client.GetCategories(ctx)
	if err != nil {
		return fmt.Errorf("fetch categories: %w", err)
	}
	if resp.Error != "" {
		return fmt.Errorf("fetch categories: %s", resp.Error)
	}
	raw, err := api.DecodeList(resp.Data)
	if err != nil {
		return fmt.Errorf("fetch categories: %w", err)
	}
	items := NormalizeList(raw)
	if len(items) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.fetchSeq.Load() {
		return nil
	}
	// Keep the locally derived counts for names that survived.
	counts := make(map[string]int, len(s.items))
	for _, c := range s.items {
		counts[c.Name] = c.ProductCount
	}
	for i := range items {
		if n, ok := counts[items[i].Name]; ok && items[i].ProductCount == 0 {
			items[i].ProductCount = n
		}
	}
	s.items = items
	s.persistLocked()
	return nil
}

// Add creates a category. Any backend failure still lands the entry
// locally under a generated id.
func (s *Store) Add(ctx context.Context, token string, p Payload) (Category, mutation.Result) {
	defer s.bus.Publish(signal.CategoriesChanged)

	if auth.Usable(token) {
		resp, err := s.client.CreateCategory(ctx, token, api.CategoryBody{
			Name:        p.Name,
			Description: p.Description,
		})
		switch {
		case err != nil:
			logger.FromCtx(ctx).Warn("category create unreachable, keeping local copy", zap.Error(err))
			return s.addLocal(p), mutation.LocalOnly(err)
		case resp.Error != "":
			logger.FromCtx(ctx).Warn("category create rejected, keeping local copy",
				zap.String("reason", resp.Error),
			)
			return s.addLocal(p), mutation.LocalOnly(errors.New(resp.Error))
		}
		created, ok := Normalize(resp.Data)
		if !ok || created.ID == "" {
			created = Category{ID: localID(), Name: p.Name, Description: p.Description}
		}
		if created.Name == "" {
			created.Name = p.Name
		}
		s.mu.Lock()
		s.items = append(s.items, created)
		s.persistLocked()
		s.mu.Unlock()
		return created, mutation.AppliedResult()
	}
	return s.addLocal(p), mutation.LocalOnly(nil)
}

// Update renames a category. Backend failures still apply the change
// locally.
func (s *Store) Update(ctx context.Context, token, id string, p Payload) (Category, mutation.Result) {
	defer s.bus.Publish(signal.CategoriesChanged)

	if _, ok := s.get(id); !ok {
		return Category{}, mutation.Reject("category not found")
	}

	res := mutation.AppliedResult()
	if !auth.Usable(token) || strings.HasPrefix(id, "category-") {
		res = mutation.LocalOnly(nil)
	} else {
		resp, err := s.client.UpdateCategory(ctx, token, id, api.CategoryBody{
			Name:        p.Name,
			Description: p.Description,
		})
		switch {
		case err != nil:
			logger.FromCtx(ctx).Warn("category update unreachable, keeping local copy",
				zap.String("category_id", id),
				zap.Error(err),
			)
			res = mutation.LocalOnly(err)
		case resp.Error != "":
			logger.FromCtx(ctx).Warn("category update rejected, keeping local copy",
				zap.String("category_id", id),
				zap.String("reason", resp.Error),
			)
			res = mutation.LocalOnly(errors.New(resp.Error))
		}
	}

	s.mu.Lock()
	var updated Category
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Name = p.Name
			s.items[i].Description = p.Description
			updated = s.items[i]
			break
		}
	}
	s.persistLocked()
	s.mu.Unlock()
	return updated, res
}

// Delete removes a category locally on every path.
func (s *Store) Delete(ctx context.Context, token, id string) mutation.Result {
	defer s.bus.Publish(signal.CategoriesChanged)

	res := mutation.AppliedResult()
	switch {
	case !auth.Usable(token), strings.HasPrefix(id, "category-"):
		res = mutation.LocalOnly(nil)
	default:
		resp, err := s.client.DeleteCategory(ctx, token, id)
		if err != nil {
			logger.FromCtx(ctx).Warn("category delete unreachable, removing local copy",
				zap.String("category_id", id),
				zap.Error(err),
			)
			res = mutation.LocalOnly(err)
		} else if resp.Error != "" {
			res = mutation.LocalOnly(errors.New(resp.Error))
		}
	}

	s.mu.Lock()
	kept := s.items[:0]
	for _, c := range s.items {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	s.items = kept
	s.persistLocked()
	s.mu.Unlock()
	return res
}

// Recount recomputes every category's product count from the catalog
// by exact name match. Linear in categories times products; both lists
// are storefront sized (hundreds, not millions), so no index is kept.
func (s *Store) Recount(products []product.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		n := 0
		for _, p := range products {
			if p.Category == s.items[i].Name {
				n++
			}
		}
		s.items[i].ProductCount = n
	}
	s.persistLocked()
}

func (s *Store) get(id string) (Category, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.items {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

func (s *Store) addLocal(p Payload) Category {
	created := Category{ID: localID(), Name: p.Name, Description: p.Description}
	s.mu.Lock()
	s.items = append(s.items, created)
	s.persistLocked()
	s.mu.Unlock()
	return created
}

func localID() string {
	return fmt.Sprintf("category-%d", time.Now().UnixNano())
}
