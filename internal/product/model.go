package product

// Variant is a purchasable configuration of a Product (e.g. a
// storage+color combination) with its own price and stock count. A
// variant belongs to exactly one product.
type Variant struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Price             float64  `json:"price"`
	Stock             int      `json:"stock"`
	Images            []string `json:"images,omitempty"`
	SKU               string   `json:"sku,omitempty"`
	Storage           string   `json:"storage,omitempty"`
	Color             string   `json:"color,omitempty"`
	LowStockThreshold int      `json:"lowStockThreshold,omitempty"`
}

// Product is the store's canonical catalog record, normalized from
// whichever payload shape the backend produced it in.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	BasePrice   float64   `json:"basePrice"`
	Category    string    `json:"category"`
	Brand       string    `json:"brand"`
	Image       string    `json:"image,omitempty"`
	InStock     bool      `json:"inStock"`
	Rating      float64   `json:"rating"`
	Variants    []Variant `json:"variants"`
}

// Payload is the caller-supplied product data for Add/Update: a
// Product without an identity.
type Payload struct {
	Name        string
	Description string
	Price       float64
	BasePrice   float64
	Category    string
	Brand       string
	Image       string
	InStock     bool
	Rating      float64
	Variants    []Variant
}
