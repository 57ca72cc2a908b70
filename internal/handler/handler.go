package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/kamdem/boutique-service/internal/apperr"
	"github.com/kamdem/boutique-service/internal/middleware"
	"github.com/kamdem/boutique-service/internal/report"
	"github.com/kamdem/boutique-service/internal/service"
)

type Handler struct {
	svc *service.Service
	log *logrus.Logger
}

func NewHandler(svc *service.Service, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup handles user registration
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperr.Validation("invalid request body"))
		return
	}

	token, err := h.svc.Signup(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "account created", "token": token})
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperr.Validation("invalid request body"))
		return
	}

	token, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged in", "token": token})
}

type productRequest struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Color    string  `json:"color"`
	Price    float64 `json:"price"`
	Quantity int64   `json:"qty"`
	Image    string  `json:"img"`
}

// CreateProduct handles catalog additions
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	ident := middleware.IdentityFromContext(r.Context())
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperr.Validation("invalid request body"))
		return
	}

	product, err := h.svc.CreateProduct(r.Context(), ident.UserID, service.ProductInput{
		Name:     req.Name,
		Category: req.Category,
		Color:    req.Color,
		Price:    req.Price,
		Quantity: req.Quantity,
		Image:    req.Image,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// ListProducts returns the caller's catalog
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ident := middleware.IdentityFromContext(r.Context())
	products, err := h.svc.ListProducts(r.Context(), ident.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

type sellRequest struct {
	Quantity int64 `json:"qty"`
}

// Sell handles the stock decrement plus sale append
func (h *Handler) Sell(w http.ResponseWriter, r *http.Request) {
	ident := middleware.IdentityFromContext(r.Context())
	productID, err := pathID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	// A missing body means "sell one", like an empty qty field.
	var req sellRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		h.writeError(w, apperr.Validation("invalid request body"))
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	sale, newQuantity, err := h.svc.Sell(r.Context(), ident.UserID, productID, req.Quantity)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":     true,
		"newQty": newQuantity,
		"total":  sale.Total,
	})
}

// ListSales returns the caller's sale ledger
func (h *Handler) ListSales(w http.ResponseWriter, r *http.Request) {
	ident := middleware.IdentityFromContext(r.Context())
	sales, err := h.svc.ListSales(r.Context(), ident.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sales)
}

type expenseRequest struct {
	Motif   string  `json:"motif"`
	Amount  float64 `json:"amount"`
	DueDate string  `json:"due_date"`
	Image   string  `json:"img"`
}

// CreateExpense handles expense/invoice creation
func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	ident := middleware.IdentityFromContext(r.Context())
	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperr.Validation("invalid request body"))
		return
	}

	var dueDate *time.Time
	if req.DueDate != "" {
		parsed, err := time.Parse("2006-01-02", req.DueDate)
		if err != nil {
			h.writeError(w, apperr.Validation("due_date must be YYYY-MM-DD"))
			return
		}
		dueDate = &parsed
	}

	expense, err := h.svc.CreateExpense(r.Context(), ident.UserID, service.ExpenseInput{
		Motif:   req.Motif,
		Amount:  req.Amount,
		DueDate: dueDate,
		Image:   req.Image,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, expense)
}

// ListExpenses returns the caller's expenses
func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	ident := middleware.IdentityFromContext(r.Context())
	expenses, err := h.svc.ListExpenses(r.Context(), ident.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, expenses)
}

// PayExpense marks an expense paid
func (h *Handler) PayExpense(w http.ResponseWriter, r *http.Request) {
	ident := middleware.IdentityFromContext(r.Context())
	expenseID, err := pathID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.svc.PayExpense(r.Context(), ident.UserID, expenseID); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Bilan returns the caller's financial summary
func (h *Handler) Bilan(w http.ResponseWriter, r *http.Request) {
	ident := middleware.IdentityFromContext(r.Context())
	bilan, err := h.svc.Bilan(r.Context(), ident.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bilan)
}

// Export returns the caller's books as an XML document
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	ident := middleware.IdentityFromContext(r.Context())
	ctx := r.Context()

	products, err := h.svc.ListProducts(ctx, ident.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	sales, err := h.svc.ListSales(ctx, ident.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	expenses, err := h.svc.ListExpenses(ctx, ident.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	bilan, err := h.svc.Bilan(ctx, ident.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	doc, err := report.Build(ident.Email, products, sales, expenses, bilan)
	if err != nil {
		h.writeError(w, apperr.Storage(err))
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	w.Write(doc)
}

// Health is the liveness probe
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid id")
	}
	return id, nil
}
