package entities

type MenuItemResponse struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category"`
	PriceCents  int    `json:"price_cents"`
	Available   bool   `json:"available"`
}
