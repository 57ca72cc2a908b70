package models

// Bilan is the computed financial summary for one user:
// revenue from sales, total expenses, current stock valuation
// and the resulting net balance.
type Bilan struct {
	Revenue    float64 `json:"revenue"`
	Expenses   float64 `json:"expenses"`
	StockValue float64 `json:"stock_value"`
	Net        float64 `json:"net"`
}
