package models

import "time"

// Sale is an append-only ledger entry recorded at sell time.
// ProductID is nil when the product has since been deleted.
type Sale struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	ProductID *int64    `json:"product_id"`
	Quantity  int64     `json:"qty"`
	Total     float64   `json:"total"`
	CreatedAt time.Time `json:"date"`
}
