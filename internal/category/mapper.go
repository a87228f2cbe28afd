package category

import (
	"encoding/json"

	"github.com/Panharith2006/electric-store-system/internal/utils"
)

// Normalize maps one raw backend category object into a Category.
func Normalize(raw json.RawMessage) (Category, bool) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil || m == nil {
		return Category{}, false
	}
	return NormalizeMap(m), true
}

func NormalizeMap(m map[string]any) Category {
	count, _ := utils.FieldNumber(m, "product_count")
	return Category{
		ID:           utils.FieldString(m, "id", "pk", "slug", "name"),
		Name:         utils.FieldString(m, "name", "title"),
		Description:  utils.FieldString(m, "description"),
		ProductCount: int(count),
	}
}

// NormalizeList maps a decoded collection, dropping non-objects.
func NormalizeList(items []json.RawMessage) []Category {
	out := make([]Category, 0, len(items))
	for _, raw := range items {
		if c, ok := Normalize(raw); ok {
			out = append(out, c)
		}
	}
	return out
}
