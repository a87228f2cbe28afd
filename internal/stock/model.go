package stock

import "time"

// Item is one inventory row as the admin views see it: a stock record
// joined with its variant and product details. Items whose ID carries
// the "synthetic-" prefix have no backend stock record yet; they were
// synthesized from the catalog so new products show up in inventory
// before their first stock import.
type Item struct {
	ID                string    `json:"id"`
	VariantID         string    `json:"variantId"`
	ProductID         string    `json:"productId"`
	ProductName       string    `json:"productName"`
	VariantName       string    `json:"variantName"`
	SKU               string    `json:"sku"`
	Category          string    `json:"category"`
	Price             float64   `json:"price"`
	Images            []string  `json:"images,omitempty"`
	Thumbnail         string    `json:"thumbnail,omitempty"`
	TotalStock        int       `json:"totalStock"`
	Available         int       `json:"available"`
	Reserved          int       `json:"reserved"`
	LowStockThreshold int       `json:"lowStockThreshold"`
	LastRestocked     time.Time `json:"lastRestocked"`
}

const syntheticPrefix = "synthetic-"

// Synthetic reports whether the item has no backing stock record.
func (i Item) Synthetic() bool {
	return len(i.ID) > len(syntheticPrefix) && i.ID[:len(syntheticPrefix)] == syntheticPrefix
}
