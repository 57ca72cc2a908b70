package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/kamdem/boutique-service/internal/apperr"
	"github.com/kamdem/boutique-service/internal/models"
)

// Repository provides database operations
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser creates a new user in the database
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO boutique.users (email, password_hash)
		VALUES ($1, $2)
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, user.Email, user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return apperr.Conflict("email already registered")
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindUserByEmail retrieves a user by email
func (r *Repository) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, email, password_hash, created_at
		FROM boutique.users
		WHERE email = $1`
	err := r.db.QueryRowContext(ctx, query, email).
		Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// CreateProduct creates a new product owned by product.UserID
func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO boutique.products (user_id, name, category, color, price, quantity, image)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query,
		product.UserID, product.Name, product.Category, product.Color,
		product.Price, product.Quantity, product.Image).
		Scan(&product.ID, &product.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// ListProducts returns all products owned by userID
func (r *Repository) ListProducts(ctx context.Context, userID int64) ([]models.Product, error) {
	query := `
		SELECT id, user_id, name, category, color, price, quantity, image, created_at
		FROM boutique.products
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Category, &p.Color,
			&p.Price, &p.Quantity, &p.Image, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// SellProduct atomically decrements stock and appends the sale record.
// The guard lives in the UPDATE itself: the decrement only applies when
// enough stock remains, so two concurrent sells cannot both pass a
// stale quantity check.
func (r *Repository) SellProduct(ctx context.Context, userID, productID, quantity int64) (*models.Sale, int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var newQuantity int64
	var price float64
	err = tx.QueryRowContext(ctx, `
		UPDATE boutique.products
		SET quantity = quantity - $1
		WHERE id = $2 AND user_id = $3 AND quantity >= $1
		RETURNING quantity, price`,
		quantity, productID, userID).
		Scan(&newQuantity, &price)
	if err == sql.ErrNoRows {
		// Either the product does not exist for this owner, or the
		// stock ran short. Tell the two apart without leaking
		// other tenants' rows.
		var exists bool
		probeErr := tx.QueryRowContext(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM boutique.products WHERE id = $1 AND user_id = $2
			)`, productID, userID).Scan(&exists)
		if probeErr != nil {
			return nil, 0, fmt.Errorf("failed to check product: %w", probeErr)
		}
		if !exists {
			return nil, 0, apperr.NotFound("product not found")
		}
		return nil, 0, apperr.ErrInsufficientStock
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to decrement stock: %w", err)
	}

	sale := &models.Sale{
		UserID:    userID,
		ProductID: &productID,
		Quantity:  quantity,
		Total:     price * float64(quantity),
	}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO boutique.sales (user_id, product_id, quantity, total)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		sale.UserID, productID, sale.Quantity, sale.Total).
		Scan(&sale.ID, &sale.CreatedAt)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to record sale: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, fmt.Errorf("failed to commit sale: %w", err)
	}
	return sale, newQuantity, nil
}

// ListSales returns all sales recorded for userID, newest first
func (r *Repository) ListSales(ctx context.Context, userID int64) ([]models.Sale, error) {
	query := `
		SELECT id, user_id, product_id, quantity, total, created_at
		FROM boutique.sales
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	defer rows.Close()

	sales := []models.Sale{}
	for rows.Next() {
		var s models.Sale
		if err := rows.Scan(&s.ID, &s.UserID, &s.ProductID, &s.Quantity, &s.Total, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		sales = append(sales, s)
	}
	return sales, rows.Err()
}

// CreateExpense creates a new expense owned by expense.UserID
func (r *Repository) CreateExpense(ctx context.Context, expense *models.Expense) error {
	query := `
		INSERT INTO boutique.expenses (user_id, motif, amount, due_date, is_paid, image)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query,
		expense.UserID, expense.Motif, expense.Amount, expense.DueDate,
		expense.IsPaid, expense.Image).
		Scan(&expense.ID, &expense.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}
	return nil
}

// ListExpenses returns all expenses owned by userID, newest first
func (r *Repository) ListExpenses(ctx context.Context, userID int64) ([]models.Expense, error) {
	query := `
		SELECT id, user_id, motif, amount, due_date, is_paid, image, created_at
		FROM boutique.expenses
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	expenses := []models.Expense{}
	for rows.Next() {
		var e models.Expense
		if err := rows.Scan(&e.ID, &e.UserID, &e.Motif, &e.Amount, &e.DueDate,
			&e.IsPaid, &e.Image, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// MarkExpensePaid flips is_paid to true. Paying an already-paid
// expense is a no-op; an id the caller does not own is not found.
func (r *Repository) MarkExpensePaid(ctx context.Context, userID, expenseID int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE boutique.expenses
		SET is_paid = TRUE
		WHERE id = $1 AND user_id = $2`,
		expenseID, userID)
	if err != nil {
		return fmt.Errorf("failed to mark expense paid: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to mark expense paid: %w", err)
	}
	if affected == 0 {
		return apperr.NotFound("expense not found")
	}
	return nil
}

// ComputeBilan aggregates the caller's books: revenue from sales,
// total expenses and stock valuation. Empty tables sum to zero.
func (r *Repository) ComputeBilan(ctx context.Context, userID int64) (*models.Bilan, error) {
	bilan := &models.Bilan{}

	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(total), 0)
		FROM boutique.sales
		WHERE user_id = $1`, userID).Scan(&bilan.Revenue)
	if err != nil {
		return nil, fmt.Errorf("failed to sum sales: %w", err)
	}

	err = r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM boutique.expenses
		WHERE user_id = $1`, userID).Scan(&bilan.Expenses)
	if err != nil {
		return nil, fmt.Errorf("failed to sum expenses: %w", err)
	}

	err = r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(price * quantity), 0)
		FROM boutique.products
		WHERE user_id = $1`, userID).Scan(&bilan.StockValue)
	if err != nil {
		return nil, fmt.Errorf("failed to sum stock value: %w", err)
	}

	bilan.Net = bilan.Revenue - bilan.Expenses
	return bilan, nil
}

// DueReminder is one unpaid expense whose due date is approaching,
// joined with the owner's email.
type DueReminder struct {
	Email   string
	Motif   string
	Amount  float64
	DueDate time.Time
}

// ListExpensesDueOn returns unpaid expenses due exactly on the given
// calendar day, across all users.
func (r *Repository) ListExpensesDueOn(ctx context.Context, day time.Time) ([]DueReminder, error) {
	query := `
		SELECT u.email, e.motif, e.amount, e.due_date
		FROM boutique.expenses e
		JOIN boutique.users u ON u.id = e.user_id
		WHERE NOT e.is_paid AND e.due_date = $1`
	rows, err := r.db.QueryContext(ctx, query, day.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to list due expenses: %w", err)
	}
	defer rows.Close()

	var reminders []DueReminder
	for rows.Next() {
		var d DueReminder
		if err := rows.Scan(&d.Email, &d.Motif, &d.Amount, &d.DueDate); err != nil {
			return nil, fmt.Errorf("failed to scan due expense: %w", err)
		}
		reminders = append(reminders, d)
	}
	return reminders, rows.Err()
}
