package api

// Wire payloads. Field names follow the backend's snake_case schema;
// callers work with the stores' camelCase models and map on the way in.

type ProductBody struct {
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	BasePrice    float64 `json:"base_price"`
	Category     string  `json:"category"`
	Brand        string  `json:"brand"`
	Image        string  `json:"image,omitempty"`
	IsActive     *bool   `json:"is_active,omitempty"`
	InitialStock *int    `json:"initial_stock,omitempty"`
}

type VariantBody struct {
	ID      string   `json:"id"`
	Product string   `json:"product"`
	Storage string   `json:"storage"`
	Color   string   `json:"color"`
	Price   float64  `json:"price"`
	Stock   int      `json:"stock"`
	Images  []string `json:"images"`
	SKU     string   `json:"sku"`
}

// VariantPatch is a partial variant update; nil fields are omitted.
type VariantPatch struct {
	Storage *string  `json:"storage,omitempty"`
	Color   *string  `json:"color,omitempty"`
	Price   *float64 `json:"price,omitempty"`
	Stock   *int     `json:"stock,omitempty"`
	Images  []string `json:"images,omitempty"`
}

type CategoryBody struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type adjustBody struct {
	Adjustment int    `json:"adjustment"`
	Reason     string `json:"reason"`
}

type thresholdBody struct {
	LowStockThreshold int `json:"low_stock_threshold"`
}
