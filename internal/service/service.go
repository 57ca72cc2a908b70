package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/kamdem/boutique-service/internal/apperr"
	"github.com/kamdem/boutique-service/internal/auth"
	"github.com/kamdem/boutique-service/internal/config"
	"github.com/kamdem/boutique-service/internal/models"
)

// MinPasswordLength is the shortest password accepted at signup.
const MinPasswordLength = 6

// Store is the persistence surface the service needs. Implemented by
// *repository.Repository.
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	ListProducts(ctx context.Context, userID int64) ([]models.Product, error)
	SellProduct(ctx context.Context, userID, productID, quantity int64) (*models.Sale, int64, error)
	ListSales(ctx context.Context, userID int64) ([]models.Sale, error)
	CreateExpense(ctx context.Context, expense *models.Expense) error
	ListExpenses(ctx context.Context, userID int64) ([]models.Expense, error)
	MarkExpensePaid(ctx context.Context, userID, expenseID int64) error
	ComputeBilan(ctx context.Context, userID int64) (*models.Bilan, error)
}

// Service handles business logic
type Service struct {
	store  Store
	log    *logrus.Logger
	config *config.Config
}

// NewService initializes a new service
func NewService(store Store, log *logrus.Logger, cfg *config.Config) *Service {
	return &Service{store: store, log: log, config: cfg}
}

// Signup creates a new user with a hashed password and returns a
// signed token for the fresh session.
func (s *Service) Signup(ctx context.Context, email, password string) (string, error) {
	if email == "" || len(password) < MinPasswordLength {
		return "", apperr.Validation("email and a password of at least 6 characters are required")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", apperr.Storage(err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hashedPassword),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return "", err
	}

	token, err := auth.GenerateToken(s.config.JWTSecret, user.ID, user.Email, s.config.TokenTTL)
	if err != nil {
		return "", apperr.Storage(err)
	}

	s.log.Infof("User registered: %s", user.Email)
	return token, nil
}

// Login authenticates a user and returns a signed token. Unknown
// email and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", apperr.Validation("email and password are required")
	}

	user, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		return "", apperr.Auth("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", apperr.Auth("invalid credentials")
	}

	token, err := auth.GenerateToken(s.config.JWTSecret, user.ID, user.Email, s.config.TokenTTL)
	if err != nil {
		return "", apperr.Storage(err)
	}

	s.log.Infof("User logged in: %s", user.Email)
	return token, nil
}

// ProductInput carries the client-supplied fields of a new product.
type ProductInput struct {
	Name     string
	Category string
	Color    string
	Price    float64
	Quantity int64
	Image    string
}

// CreateProduct adds a product to the caller's catalog.
func (s *Service) CreateProduct(ctx context.Context, userID int64, in ProductInput) (*models.Product, error) {
	if in.Name == "" {
		return nil, apperr.Validation("product name is required")
	}
	if in.Price < 0 {
		return nil, apperr.Validation("price must not be negative")
	}
	if in.Quantity < 0 {
		return nil, apperr.Validation("quantity must not be negative")
	}

	product := &models.Product{
		UserID:   userID,
		Name:     in.Name,
		Category: in.Category,
		Color:    in.Color,
		Price:    in.Price,
		Quantity: in.Quantity,
		Image:    in.Image,
	}
	if err := s.store.CreateProduct(ctx, product); err != nil {
		return nil, err
	}

	s.log.Infof("Product created for user %d: %s", userID, product.Name)
	return product, nil
}

// ListProducts returns the caller's catalog.
func (s *Service) ListProducts(ctx context.Context, userID int64) ([]models.Product, error) {
	return s.store.ListProducts(ctx, userID)
}

// Sell decrements stock and appends the sale, atomically. Returns the
// sale record and the remaining quantity.
func (s *Service) Sell(ctx context.Context, userID, productID, quantity int64) (*models.Sale, int64, error) {
	if quantity <= 0 {
		return nil, 0, apperr.Validation("quantity must be positive")
	}

	sale, newQuantity, err := s.store.SellProduct(ctx, userID, productID, quantity)
	if err != nil {
		return nil, 0, err
	}

	s.log.Infof("Sale recorded for user %d: product %d x%d, total %.2f",
		userID, productID, quantity, sale.Total)
	return sale, newQuantity, nil
}

// ListSales returns the caller's sale ledger.
func (s *Service) ListSales(ctx context.Context, userID int64) ([]models.Sale, error) {
	return s.store.ListSales(ctx, userID)
}

// ExpenseInput carries the client-supplied fields of a new expense.
type ExpenseInput struct {
	Motif   string
	Amount  float64
	DueDate *time.Time
	Image   string
}

// CreateExpense adds an expense to the caller's ledger.
func (s *Service) CreateExpense(ctx context.Context, userID int64, in ExpenseInput) (*models.Expense, error) {
	if in.Motif == "" {
		return nil, apperr.Validation("motif is required")
	}
	if in.Amount < 0 {
		return nil, apperr.Validation("amount must not be negative")
	}

	expense := &models.Expense{
		UserID:  userID,
		Motif:   in.Motif,
		Amount:  in.Amount,
		DueDate: in.DueDate,
		Image:   in.Image,
	}
	if err := s.store.CreateExpense(ctx, expense); err != nil {
		return nil, err
	}

	s.log.Infof("Expense created for user %d: %s", userID, expense.Motif)
	return expense, nil
}

// ListExpenses returns the caller's expenses.
func (s *Service) ListExpenses(ctx context.Context, userID int64) ([]models.Expense, error) {
	return s.store.ListExpenses(ctx, userID)
}

// PayExpense marks an expense paid. The transition is one-way and
// paying twice has no further effect.
func (s *Service) PayExpense(ctx context.Context, userID, expenseID int64) error {
	if err := s.store.MarkExpensePaid(ctx, userID, expenseID); err != nil {
		return err
	}
	s.log.Infof("Expense %d marked paid for user %d", expenseID, userID)
	return nil
}

// Bilan computes the caller's financial summary.
func (s *Service) Bilan(ctx context.Context, userID int64) (*models.Bilan, error) {
	return s.store.ComputeBilan(ctx, userID)
}
