package stock

import (
	"encoding/json"
	"time"

	"github.com/Panharith2006/electric-store-system/internal/product"
	"github.com/Panharith2006/electric-store-system/internal/utils"
)

const defaultThreshold = 10

// Normalize maps one raw backend stock row into an Item. The backend
// embeds the variant either as a "variant_details" object, a "variant"
// object, or a bare "variant" id; all three shapes land here.
func Normalize(raw json.RawMessage, now time.Time) (Item, bool) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil || m == nil {
		return Item{}, false
	}

	variant := utils.FieldMap(m, "variant_details")
	if variant == nil {
		variant = utils.FieldMap(m, "variant")
	}
	parent := utils.FieldMap(variant, "product")

	variantID := utils.FieldString(variant, "id")
	if variantID == "" {
		variantID = utils.Stringify(m["variant"])
	}

	productName := utils.FieldString(m, "product_name")
	if productName == "" {
		productName = utils.FieldString(parent, "name")
	}
	if productName == "" {
		productName = "Unknown"
	}

	variantName := joinName(utils.FieldString(variant, "storage"), utils.FieldString(variant, "color"))

	sku := utils.FieldString(variant, "id")
	if sku == "" {
		sku = utils.Stringify(m["variant"])
	}

	price, _ := utils.FieldNumber(variant, "effective_price", "price")
	if price == 0 {
		if p, ok := utils.FieldNumber(m, "price"); ok {
			price = p
		}
	}

	total, ok := utils.FieldNumber(m, "quantity")
	if !ok {
		total, _ = utils.FieldNumber(variant, "stock")
	}
	reserved, _ := utils.FieldNumber(m, "reserved_quantity")
	available, ok := utils.FieldNumber(m, "available_quantity")
	if !ok {
		available = total - reserved
	}

	images := utils.StringList(variant["images"])
	thumbnail := ""
	if len(images) > 0 {
		thumbnail = images[0]
	} else {
		thumbnail = utils.FieldString(parent, "image")
	}

	threshold, ok := utils.FieldNumber(m, "low_stock_threshold")
	if !ok {
		threshold = defaultThreshold
	}

	return Item{
		ID:                utils.FieldString(m, "id", "pk"),
		VariantID:         variantID,
		ProductID:         utils.FieldString(parent, "id"),
		ProductName:       productName,
		VariantName:       variantName,
		SKU:               sku,
		Category:          utils.FieldString(parent, "category"),
		Price:             price,
		Images:            images,
		Thumbnail:         thumbnail,
		TotalStock:        int(total),
		Available:         int(available),
		Reserved:          int(reserved),
		LowStockThreshold: int(threshold),
		LastRestocked:     restockedAt(m, now),
	}, true
}

// NormalizeList maps a decoded collection, dropping non-objects.
func NormalizeList(items []json.RawMessage, now time.Time) []Item {
	out := make([]Item, 0, len(items))
	for _, raw := range items {
		if item, ok := Normalize(raw, now); ok {
			out = append(out, item)
		}
	}
	return out
}

// MergeProducts appends synthetic entries for catalog products the
// stock listing does not cover yet: one per unseen variant, and one
// per variant-less product that has no row at all.
func MergeProducts(items []Item, products []product.Product, now time.Time) []Item {
	seenVariants := make(map[string]bool, len(items))
	seenProducts := make(map[string]bool, len(items))
	for _, item := range items {
		seenVariants[item.VariantID] = true
		seenProducts[item.ProductID] = true
	}

	for _, p := range products {
		if len(p.Variants) == 0 {
			if p.ID == "" || seenProducts[p.ID] {
				continue
			}
			items = append(items, Item{
				ID:                syntheticPrefix + p.ID,
				VariantID:         p.ID,
				ProductID:         p.ID,
				ProductName:       p.Name,
				VariantName:       "Default",
				Category:          p.Category,
				Price:             p.Price,
				Thumbnail:         p.Image,
				LowStockThreshold: defaultThreshold,
				LastRestocked:     now,
			})
			continue
		}

		for _, v := range p.Variants {
			vid := v.ID
			if vid == "" {
				vid = v.SKU
			}
			if vid == "" || seenVariants[vid] {
				continue
			}
			seenVariants[vid] = true

			sku := v.SKU
			if sku == "" {
				sku = vid
			}
			price := v.Price
			if price == 0 {
				price = p.Price
			}
			thumbnail := p.Image
			if len(v.Images) > 0 {
				thumbnail = v.Images[0]
			}
			threshold := v.LowStockThreshold
			if threshold == 0 {
				threshold = defaultThreshold
			}
			items = append(items, Item{
				ID:                syntheticPrefix + vid,
				VariantID:         vid,
				ProductID:         p.ID,
				ProductName:       p.Name,
				VariantName:       joinName(v.Storage, v.Color),
				SKU:               sku,
				Category:          p.Category,
				Price:             price,
				Images:            v.Images,
				Thumbnail:         thumbnail,
				LowStockThreshold: threshold,
				LastRestocked:     now,
			})
		}
	}
	return items
}

func joinName(storage, color string) string {
	switch {
	case storage != "" && color != "":
		return storage + " " + color
	case storage != "":
		return storage
	case color != "":
		return color
	default:
		return "Default"
	}
}

func restockedAt(m map[string]any, now time.Time) time.Time {
	if raw := utils.FieldString(m, "last_restocked_at", "last_restocked"); raw != "" {
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			return ts
		}
	}
	return now
}
