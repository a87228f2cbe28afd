package category

// Category groups products for storefront navigation. ProductCount is
// derived locally from the catalog, not trusted from the backend.
type Category struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	ProductCount int    `json:"productCount"`
}

// Payload is the caller-supplied category data for Add/Update.
type Payload struct {
	Name        string
	Description string
}
