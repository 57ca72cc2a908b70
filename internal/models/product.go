package models

import "time"

// Product represents a stock item owned by one user.
// Quantity is only ever changed by the sell transaction.
type Product struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Color     string    `json:"color"`
	Price     float64   `json:"price"`
	Quantity  int64     `json:"qty"`
	Image     string    `json:"img,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
