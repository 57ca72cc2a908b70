package models

import "time"

// Expense represents an expense or invoice. The only mutation the
// public contract allows is the one-way is_paid transition.
type Expense struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	Motif     string     `json:"motif"`
	Amount    float64    `json:"amount"`
	DueDate   *time.Time `json:"due_date"`
	IsPaid    bool       `json:"is_paid"`
	Image     string     `json:"img,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
