package product

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
	"github.com/Panharith2006/electric-store-system/internal/signal"
	"github.com/Panharith2006/electric-store-system/internal/utils"
)

const snapshotKey = "products-storage"

// Snapshot persists the catalog between runs. Implemented by
// *cache.Cache. A nil Snapshot disables persistence.
type Snapshot interface {
	SaveState(name string, payload []byte) error
	LoadState(name string) ([]byte, bool, error)
}

// Store holds the catalog and applies mutations optimistically: writes
// go to the backend when a usable token is available, and fall back to
// local-only state when it is not or when the backend is unreachable.
// Backend validation rejections leave the catalog untouched.
type Store struct {
	mu     sync.RWMutex
	items  []Product
	client api.Client
	bus    *signal.Bus
	snap   Snapshot

	// fetchSeq orders concurrent refreshes: a fetch result is only
	// applied while its sequence number is still the latest, so a slow
	// first response can never overwrite a newer one.
	fetchSeq atomic.Uint64
}

func NewStore(client api.Client, bus *signal.Bus, snap Snapshot) *Store {
	s := &Store{client: client, bus: bus, snap: snap}
	s.rehydrate()
	return s
}

func (s *Store) rehydrate() {
	if s.snap == nil {
		return
	}
	payload, ok, err := s.snap.LoadState(snapshotKey)
	if err != nil {
		logger.L().Warn("failed to load product snapshot", zap.Error(err))
		return
	}
	if !ok {
		return
	}
	var items []Product
	if err := json.Unmarshal(payload, &items); err != nil {
		logger.L().Warn("discarding corrupt product snapshot", zap.Error(err))
		return
	}
	s.items = items
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
		logger.L().Warn("failed to persist product snapshot", zap.Error(err))
	}
}

// Products returns a copy of the current catalog.
func (s *Store) Products() []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Product, len(s.items))
	copy(out, s.items)
	return out
}

// Get returns the product with the given id.
func (s *Store) Get(id string) (Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.items {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// Refresh replaces the catalog with the backend's current listing.
// When refreshes overlap, only the most recently started one wins;
// stale responses are discarded.
func (s *Store) Refresh(ctx context.Context) error {
	seq := s.fetchSeq.Add(1)

	resp, err := s.client.GetProducts(ctx)
	if err != nil {
		return fmt.Errorf("fetch products: %w", err)
	}
	if resp.Error != "" {
		return fmt.Errorf("fetch products: %s", resp.Error)
	}
	raw, err := api.DecodeList(resp.Data)
	if err != nil {
		return fmt.Errorf("fetch products: %w", err)
	}
	items := NormalizeList(raw)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.fetchSeq.Load() {
		logger.FromCtx(ctx).Debug("discarding stale product fetch",
			zap.Uint64("seq", seq),
		)
		return nil
	}
	s.items = items
	s.persistLocked()
	return nil
}

// Add creates a product. Without a usable token the product exists
// locally only, under a generated local id. Backend validation
// rejections leave the catalog unchanged.
func (s *Store) Add(ctx context.Context, token string, p Payload) (Product, mutation.Result) {
	defer s.bus.Publish(signal.ProductsChanged)

	if !auth.Usable(token) {
		return s.addLocal(p), mutation.LocalOnly(nil)
	}

	resp, err := s.client.CreateProduct(ctx, token, productBody(p))
	if err != nil {
		logger.FromCtx(ctx).Warn("product create unreachable, keeping local copy", zap.Error(err))
		return s.addLocal(p), mutation.LocalOnly(err)
	}
	if resp.Error != "" {
		return Product{}, mutation.Reject(resp.Error)
	}

	var m map[string]any
	if err := json.Unmarshal(resp.Data, &m); err != nil || m == nil {
		m = map[string]any{}
	}
	created := merge(m, p)
	if created.ID == "" {
		created.ID = localID()
	}

	created.Variants = s.createVariants(ctx, token, created.ID, p.Variants)

	s.mu.Lock()
	s.items = append(s.items, created)
	s.persistLocked()
	s.mu.Unlock()
	return created, mutation.AppliedResult()
}

// Update patches an existing product. The backend response wins over
// the submitted payload field by field; new variants on the payload
// are created and existing ones patched as a best effort.
func (s *Store) Update(ctx context.Context, token, id string, p Payload) (Product, mutation.Result) {
	defer s.bus.Publish(signal.ProductsChanged)

	if _, ok := s.Get(id); !ok {
		return Product{}, mutation.Reject("product not found")
	}

	if !auth.Usable(token) || strings.HasPrefix(id, "product-") {
		return s.updateLocal(id, p), mutation.LocalOnly(nil)
	}

	resp, err := s.client.UpdateProduct(ctx, token, id, productBody(p))
	if err != nil {
		logger.FromCtx(ctx).Warn("product update unreachable, keeping local copy",
			zap.String("product_id", id),
			zap.Error(err),
		)
		return s.updateLocal(id, p), mutation.LocalOnly(err)
	}
	if resp.Error != "" {
		return Product{}, mutation.Reject(resp.Error)
	}

	var m map[string]any
	if err := json.Unmarshal(resp.Data, &m); err != nil || m == nil {
		m = map[string]any{}
	}
	updated := merge(m, p)
	if updated.ID == "" {
		updated.ID = id
	}
	updated.Variants = s.syncVariants(ctx, token, updated.ID, p.Variants)

	s.mu.Lock()
	replaced := false
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i] = updated
			replaced = true
			break
		}
	}
	if !replaced {
		s.items = append(s.items, updated)
	}
	s.persistLocked()
	s.mu.Unlock()
	return updated, mutation.AppliedResult()
}

// Delete removes a product. The local copy is removed on every path:
// a delete the backend could not perform still hides the product here,
// and the next refresh restores backend truth if they disagree.
func (s *Store) Delete(ctx context.Context, token, id string) mutation.Result {
	defer s.bus.Publish(signal.ProductsChanged)

	res := mutation.AppliedResult()
	switch {
	case !auth.Usable(token), strings.HasPrefix(id, "product-"):
		res = mutation.LocalOnly(nil)
	default:
		resp, err := s.client.DeleteProduct(ctx, token, id)
		if err != nil {
			logger.FromCtx(ctx).Warn("product delete unreachable, removing local copy",
				zap.String("product_id", id),
				zap.Error(err),
			)
			res = mutation.LocalOnly(err)
		} else if resp.Error != "" {
			res = mutation.LocalOnly(errors.New(resp.Error))
		}
	}

	s.mu.Lock()
	kept := s.items[:0]
	for _, p := range s.items {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.items = kept
	s.persistLocked()
	s.mu.Unlock()
	return res
}

func (s *Store) addLocal(p Payload) Product {
	created := fromPayload(localID(), p)
	s.mu.Lock()
	s.items = append(s.items, created)
	s.persistLocked()
	s.mu.Unlock()
	return created
}

func (s *Store) updateLocal(id string, p Payload) Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			updated := fromPayload(id, p)
			if updated.Rating == 0 {
				updated.Rating = s.items[i].Rating
			}
			s.items[i] = updated
			s.persistLocked()
			return updated
		}
	}
	return Product{}
}

// createVariants pushes the payload's variants to the backend under
// derived ids. Failures are logged and the variant kept locally: the
// product itself was already accepted.
func (s *Store) createVariants(ctx context.Context, token, productID string, variants []Variant) []Variant {
	out := make([]Variant, 0, len(variants))
	for _, v := range variants {
		created := s.createVariant(ctx, token, productID, v)
		out = append(out, created)
	}
	return out
}

// syncVariants creates variants that only exist locally and patches
// the rest, best effort.
func (s *Store) syncVariants(ctx context.Context, token, productID string, variants []Variant) []Variant {
	out := make([]Variant, 0, len(variants))
	for _, v := range variants {
		if v.ID == "" || strings.HasPrefix(v.ID, "variant-") {
			out = append(out, s.createVariant(ctx, token, productID, v))
			continue
		}
		patch := api.VariantPatch{
			Price:  utils.Float64Ptr(v.Price),
			Stock:  utils.IntPtr(v.Stock),
			Images: v.Images,
		}
		if v.Storage != "" {
			patch.Storage = utils.StrPtr(v.Storage)
		}
		if v.Color != "" {
			patch.Color = utils.StrPtr(v.Color)
		}
		if resp, err := s.client.UpdateVariant(ctx, token, v.ID, patch); err != nil {
			logger.FromCtx(ctx).Warn("variant update failed",
				zap.String("variant_id", v.ID),
				zap.Error(err),
			)
		} else if resp.Error != "" {
			logger.FromCtx(ctx).Warn("variant update rejected",
				zap.String("variant_id", v.ID),
				zap.String("reason", resp.Error),
			)
		}
		out = append(out, v)
	}
	return out
}

func (s *Store) createVariant(ctx context.Context, token, productID string, v Variant) Variant {
	// A real backend id survives the create; only local placeholders
	// get a derived one.
	if v.ID == "" || strings.HasPrefix(v.ID, "variant-") {
		v.ID = DeriveVariantID(productID, v.Storage, v.Color)
	}
	sku := v.SKU
	if sku == "" {
		sku = v.ID
	}
	body := api.VariantBody{
		ID:      v.ID,
		Product: productID,
		Storage: v.Storage,
		Color:   v.Color,
		Price:   v.Price,
		Stock:   v.Stock,
		Images:  v.Images,
		SKU:     sku,
	}
	if resp, err := s.client.CreateVariant(ctx, token, body); err != nil {
		logger.FromCtx(ctx).Warn("variant create failed",
			zap.String("variant_id", v.ID),
			zap.Error(err),
		)
	} else if resp.Error != "" {
		logger.FromCtx(ctx).Warn("variant create rejected",
			zap.String("variant_id", v.ID),
			zap.String("reason", resp.Error),
		)
	}
	return v
}

// DeriveVariantID builds a stable variant id from its product and
// configuration. Missing parts fall back to "v" and a timestamp so the
// id stays unique.
func DeriveVariantID(productID, storage, color string) string {
	if storage == "" {
		storage = "v"
	}
	if color == "" {
		color = fmt.Sprintf("%d", time.Now().UnixMilli())
	}
	id := fmt.Sprintf("%s-%s-%s", productID, storage, color)
	id = strings.Join(strings.Fields(id), "-")
	return strings.ToLower(id)
}

func localID() string {
	return fmt.Sprintf("product-%d", time.Now().UnixNano())
}

func productBody(p Payload) api.ProductBody {
	base := p.BasePrice
	if base == 0 {
		base = p.Price
	}
	return api.ProductBody{
		Name:        p.Name,
		Description: p.Description,
		BasePrice:   base,
		Category:    p.Category,
		Brand:       p.Brand,
		Image:       p.Image,
	}
}
