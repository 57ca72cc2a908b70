// Package report renders a user's books as an XML document.
package report

import (
	"fmt"
	"time"

	"github.com/beevik/etree"

	"github.com/kamdem/boutique-service/internal/models"
)

const dateFormat = "2006-01-02 15:04:05"

// Build produces the export document: catalog, sale ledger, expenses
// and the bilan, in one tree.
func Build(email string, products []models.Product, sales []models.Sale, expenses []models.Expense, bilan *models.Bilan) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("boutique")
	root.CreateAttr("owner", email)
	root.CreateAttr("generated_at", time.Now().UTC().Format(dateFormat))

	prodsEl := root.CreateElement("products")
	for _, p := range products {
		el := prodsEl.CreateElement("product")
		el.CreateAttr("id", fmt.Sprintf("%d", p.ID))
		el.CreateElement("name").SetText(p.Name)
		if p.Category != "" {
			el.CreateElement("category").SetText(p.Category)
		}
		if p.Color != "" {
			el.CreateElement("color").SetText(p.Color)
		}
		el.CreateElement("price").SetText(formatAmount(p.Price))
		el.CreateElement("quantity").SetText(fmt.Sprintf("%d", p.Quantity))
	}

	salesEl := root.CreateElement("sales")
	for _, s := range sales {
		el := salesEl.CreateElement("sale")
		el.CreateAttr("id", fmt.Sprintf("%d", s.ID))
		if s.ProductID != nil {
			el.CreateElement("product_id").SetText(fmt.Sprintf("%d", *s.ProductID))
		}
		el.CreateElement("quantity").SetText(fmt.Sprintf("%d", s.Quantity))
		el.CreateElement("total").SetText(formatAmount(s.Total))
		el.CreateElement("date").SetText(s.CreatedAt.Format(dateFormat))
	}

	expensesEl := root.CreateElement("expenses")
	for _, e := range expenses {
		el := expensesEl.CreateElement("expense")
		el.CreateAttr("id", fmt.Sprintf("%d", e.ID))
		el.CreateElement("motif").SetText(e.Motif)
		el.CreateElement("amount").SetText(formatAmount(e.Amount))
		if e.DueDate != nil {
			el.CreateElement("due_date").SetText(e.DueDate.Format("2006-01-02"))
		}
		el.CreateElement("paid").SetText(fmt.Sprintf("%t", e.IsPaid))
	}

	bilanEl := root.CreateElement("bilan")
	bilanEl.CreateElement("revenue").SetText(formatAmount(bilan.Revenue))
	bilanEl.CreateElement("expenses").SetText(formatAmount(bilan.Expenses))
	bilanEl.CreateElement("stock_value").SetText(formatAmount(bilan.StockValue))
	bilanEl.CreateElement("net").SetText(formatAmount(bilan.Net))

	doc.Indent(2)
	return doc.WriteToBytes()
}

func formatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
