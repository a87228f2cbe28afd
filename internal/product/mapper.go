package product

import (
	"encoding/json"

	"github.com/Panharith2006/electric-store-system/internal/utils"
)

// Normalization from backend payloads. The backend is inconsistent
// about field names across endpoints, so every field is resolved
// through an ordered list of alternates.

// Normalize maps one raw backend product object into a Product. The
// second return is false when the payload is not a JSON object.
func Normalize(raw json.RawMessage) (Product, bool) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil || m == nil {
		return Product{}, false
	}
	return NormalizeMap(m), true
}

// NormalizeMap maps an already-decoded backend product object.
func NormalizeMap(m map[string]any) Product {
	price, _ := utils.FieldNumber(m, "price", "base_price")
	rating, _ := utils.FieldNumber(m, "rating")

	p := Product{
		ID:          utils.FieldString(m, "id", "pk", "sku", "slug", "name"),
		Name:        utils.FieldString(m, "name", "title"),
		Description: utils.FieldString(m, "description"),
		Price:       price,
		BasePrice:   price,
		Category:    utils.FieldString(m, "category", "category_name"),
		Brand:       utils.FieldString(m, "brand", "brand_name"),
		Image:       utils.FieldString(m, "image", "thumbnail"),
		Rating:      rating,
		Variants:    normalizeVariants(utils.FieldSlice(m, "variants")),
	}

	if inStock, ok := utils.FieldBool(m, "in_stock"); ok {
		p.InStock = inStock
	} else {
		total, _ := utils.FieldNumber(m, "total_stock")
		p.InStock = total > 0
	}
	return p
}

// NormalizeList maps a decoded collection, dropping entries that are
// not objects.
func NormalizeList(items []json.RawMessage) []Product {
	out := make([]Product, 0, len(items))
	for _, raw := range items {
		if p, ok := Normalize(raw); ok {
			out = append(out, p)
		}
	}
	return out
}

func normalizeVariants(items []any) []Variant {
	out := make([]Variant, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		price, _ := utils.FieldNumber(m, "effective_price", "price", "list_price")
		stock, _ := utils.FieldNumber(m, "stock", "quantity")
		threshold, _ := utils.FieldNumber(m, "low_stock_threshold")

		out = append(out, Variant{
			ID:                utils.FieldString(m, "id", "sku", "name"),
			Name:              utils.FieldString(m, "name"),
			Price:             price,
			Stock:             int(stock),
			Images:            utils.StringList(m["images"]),
			SKU:               utils.FieldString(m, "sku"),
			Storage:           utils.FieldString(m, "storage"),
			Color:             utils.FieldString(m, "color"),
			LowStockThreshold: int(threshold),
		})
	}
	return out
}

// merge builds the store record for a freshly created or updated
// product: backend fields win, missing ones fall back to what the
// caller submitted.
func merge(m map[string]any, p Payload) Product {
	out := NormalizeMap(m)

	if out.Name == "" {
		out.Name = p.Name
	}
	if out.Description == "" {
		out.Description = p.Description
	}
	if out.Price == 0 {
		if p.Price != 0 {
			out.Price = p.Price
		} else {
			out.Price = p.BasePrice
		}
		out.BasePrice = out.Price
	}
	if out.Category == "" {
		out.Category = p.Category
	}
	if out.Brand == "" {
		out.Brand = p.Brand
	}
	if out.Image == "" {
		out.Image = p.Image
	}
	if len(out.Variants) == 0 {
		out.Variants = p.Variants
	}
	return out
}

// fromPayload builds a local-only record when the backend is out of
// the loop entirely.
func fromPayload(id string, p Payload) Product {
	base := p.BasePrice
	if base == 0 {
		base = p.Price
	}
	price := p.Price
	if price == 0 {
		price = p.BasePrice
	}
	return Product{
		ID:          id,
		Name:        p.Name,
		Description: p.Description,
		Price:       price,
		BasePrice:   base,
		Category:    p.Category,
		Brand:       p.Brand,
		Image:       p.Image,
		InStock:     p.InStock,
		Rating:      p.Rating,
		Variants:    p.Variants,
	}
}
