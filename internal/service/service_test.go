package service_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/kamdem/boutique-service/internal/apperr"
	"github.com/kamdem/boutique-service/internal/auth"
	"github.com/kamdem/boutique-service/internal/config"
	"github.com/kamdem/boutique-service/internal/models"
	"github.com/kamdem/boutique-service/internal/service"
)

// fakeStore is an in-memory Store with the same semantics as the
// Postgres repository: owner scoping everywhere and a conditional
// decrement in SellProduct.
type fakeStore struct {
	users    map[int64]*models.User
	products map[int64]*models.Product
	sales    []models.Sale
	expenses map[int64]*models.Expense
	nextID   int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    make(map[int64]*models.User),
		products: make(map[int64]*models.Product),
		expenses: make(map[int64]*models.Expense),
	}
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) CreateUser(_ context.Context, user *models.User) error {
	for _, u := range f.users {
		if u.Email == user.Email {
			return apperr.Conflict("email already registered")
		}
	}
	user.ID = f.id()
	user.CreatedAt = time.Now()
	f.users[user.ID] = user
	return nil
}

func (f *fakeStore) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperr.NotFound("user not found")
}

func (f *fakeStore) CreateProduct(_ context.Context, product *models.Product) error {
	product.ID = f.id()
	product.CreatedAt = time.Now()
	f.products[product.ID] = product
	return nil
}

func (f *fakeStore) ListProducts(_ context.Context, userID int64) ([]models.Product, error) {
	out := []models.Product{}
	for _, p := range f.products {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeStore) SellProduct(_ context.Context, userID, productID, quantity int64) (*models.Sale, int64, error) {
	p, ok := f.products[productID]
	if !ok || p.UserID != userID {
		return nil, 0, apperr.NotFound("product not found")
	}
	if p.Quantity < quantity {
		return nil, 0, apperr.ErrInsufficientStock
	}
	p.Quantity -= quantity
	pid := productID
	sale := models.Sale{
		ID:        f.id(),
		UserID:    userID,
		ProductID: &pid,
		Quantity:  quantity,
		Total:     p.Price * float64(quantity),
		CreatedAt: time.Now(),
	}
	f.sales = append(f.sales, sale)
	return &sale, p.Quantity, nil
}

func (f *fakeStore) ListSales(_ context.Context, userID int64) ([]models.Sale, error) {
	out := []models.Sale{}
	for _, s := range f.sales {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateExpense(_ context.Context, expense *models.Expense) error {
	expense.ID = f.id()
	expense.CreatedAt = time.Now()
	f.expenses[expense.ID] = expense
	return nil
}

func (f *fakeStore) ListExpenses(_ context.Context, userID int64) ([]models.Expense, error) {
	out := []models.Expense{}
	for _, e := range f.expenses {
		if e.UserID == userID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeStore) MarkExpensePaid(_ context.Context, userID, expenseID int64) error {
	e, ok := f.expenses[expenseID]
	if !ok || e.UserID != userID {
		return apperr.NotFound("expense not found")
	}
	e.IsPaid = true
	return nil
}

func (f *fakeStore) ComputeBilan(_ context.Context, userID int64) (*models.Bilan, error) {
	bilan := &models.Bilan{}
	for _, s := range f.sales {
		if s.UserID == userID {
			bilan.Revenue += s.Total
		}
	}
	for _, e := range f.expenses {
		if e.UserID == userID {
			bilan.Expenses += e.Amount
		}
	}
	for _, p := range f.products {
		if p.UserID == userID {
			bilan.StockValue += p.Price * float64(p.Quantity)
		}
	}
	bilan.Net = bilan.Revenue - bilan.Expenses
	return bilan, nil
}

type ServiceTestSuite struct {
	suite.Suite
	store *fakeStore
	svc   *service.Service
	cfg   *config.Config
	ctx   context.Context
}

func (s *ServiceTestSuite) SetupTest() {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	s.store = newFakeStore()
	s.cfg = &config.Config{JWTSecret: "test-secret", TokenTTL: time.Hour}
	s.svc = service.NewService(s.store, logger, s.cfg)
	s.ctx = context.Background()
}

func TestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}

// signup seeds an account and returns its id.
func (s *ServiceTestSuite) signup(email string) int64 {
	_, err := s.svc.Signup(s.ctx, email, "secret123")
	require.NoError(s.T(), err)
	u, err := s.store.FindUserByEmail(s.ctx, email)
	require.NoError(s.T(), err)
	return u.ID
}

func (s *ServiceTestSuite) TestSignupShortPassword() {
	_, err := s.svc.Signup(s.ctx, "a@b.cm", "12345")
	require.Error(s.T(), err)
	assert.Equal(s.T(), apperr.KindValidation, apperr.KindOf(err))
}

func (s *ServiceTestSuite) TestSignupMissingEmail() {
	_, err := s.svc.Signup(s.ctx, "", "secret123")
	require.Error(s.T(), err)
	assert.Equal(s.T(), apperr.KindValidation, apperr.KindOf(err))
}

func (s *ServiceTestSuite) TestSignupDuplicateEmail() {
	_, err := s.svc.Signup(s.ctx, "dup@b.cm", "secret123")
	require.NoError(s.T(), err)

	_, err = s.svc.Signup(s.ctx, "dup@b.cm", "another123")
	require.Error(s.T(), err)
	assert.Equal(s.T(), apperr.KindConflict, apperr.KindOf(err))
}

func (s *ServiceTestSuite) TestSignupIssuesValidToken() {
	token, err := s.svc.Signup(s.ctx, "a@b.cm", "secret123")
	require.NoError(s.T(), err)

	claims, err := auth.ParseToken(s.cfg.JWTSecret, token)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "a@b.cm", claims.Email)
	assert.Positive(s.T(), claims.UserID)
}

func (s *ServiceTestSuite) TestLoginSuccess() {
	s.signup("a@b.cm")

	token, err := s.svc.Login(s.ctx, "a@b.cm", "secret123")
	require.NoError(s.T(), err)

	claims, err := auth.ParseToken(s.cfg.JWTSecret, token)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "a@b.cm", claims.Email)
}

func (s *ServiceTestSuite) TestLoginWrongPassword() {
	s.signup("a@b.cm")

	_, err := s.svc.Login(s.ctx, "a@b.cm", "wrongpass")
	require.Error(s.T(), err)
	assert.Equal(s.T(), apperr.KindAuth, apperr.KindOf(err))
}

func (s *ServiceTestSuite) TestLoginUnknownEmail() {
	_, err := s.svc.Login(s.ctx, "nobody@b.cm", "secret123")
	require.Error(s.T(), err)
	assert.Equal(s.T(), apperr.KindAuth, apperr.KindOf(err))
}

func (s *ServiceTestSuite) TestCreateProductValidation() {
	userID := s.signup("a@b.cm")

	_, err := s.svc.CreateProduct(s.ctx, userID, service.ProductInput{Name: ""})
	assert.Equal(s.T(), apperr.KindValidation, apperr.KindOf(err))

	_, err = s.svc.CreateProduct(s.ctx, userID, service.ProductInput{Name: "Pagne", Price: -1})
	assert.Equal(s.T(), apperr.KindValidation, apperr.KindOf(err))

	_, err = s.svc.CreateProduct(s.ctx, userID, service.ProductInput{Name: "Pagne", Quantity: -1})
	assert.Equal(s.T(), apperr.KindValidation, apperr.KindOf(err))
}

func (s *ServiceTestSuite) TestSellDecrementsAndRecordsSale() {
	userID := s.signup("a@b.cm")
	product, err := s.svc.CreateProduct(s.ctx, userID, service.ProductInput{
		Name: "Pagne", Price: 1000, Quantity: 10,
	})
	require.NoError(s.T(), err)

	sale, newQty, err := s.svc.Sell(s.ctx, userID, product.ID, 3)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(7), newQty)
	assert.Equal(s.T(), 3000.0, sale.Total)

	sales, err := s.svc.ListSales(s.ctx, userID)
	require.NoError(s.T(), err)
	require.Len(s.T(), sales, 1)
	assert.Equal(s.T(), 3000.0, sales[0].Total)
}

func (s *ServiceTestSuite) TestSellInsufficientStockLeavesStateUntouched() {
	userID := s.signup("a@b.cm")
	product, err := s.svc.CreateProduct(s.ctx, userID, service.ProductInput{
		Name: "Pagne", Price: 1000, Quantity: 10,
	})
	require.NoError(s.T(), err)

	_, _, err = s.svc.Sell(s.ctx, userID, product.ID, 3)
	require.NoError(s.T(), err)

	// Quantity is now 7; asking for 11 must fail and change nothing.
	_, _, err = s.svc.Sell(s.ctx, userID, product.ID, 11)
	require.Error(s.T(), err)
	assert.ErrorIs(s.T(), err, apperr.ErrInsufficientStock)

	products, err := s.svc.ListProducts(s.ctx, userID)
	require.NoError(s.T(), err)
	require.Len(s.T(), products, 1)
	assert.Equal(s.T(), int64(7), products[0].Quantity)

	sales, err := s.svc.ListSales(s.ctx, userID)
	require.NoError(s.T(), err)
	assert.Len(s.T(), sales, 1)
}

func (s *ServiceTestSuite) TestSellUnknownProduct() {
	userID := s.signup("a@b.cm")
	_, _, err := s.svc.Sell(s.ctx, userID, 999, 1)
	require.Error(s.T(), err)
	assert.Equal(s.T(), apperr.KindNotFound, apperr.KindOf(err))
}

func (s *ServiceTestSuite) TestSellCrossTenantLooksAbsent() {
	ownerID := s.signup("a@b.cm")
	otherID := s.signup("b@b.cm")
	product, err := s.svc.CreateProduct(s.ctx, ownerID, service.ProductInput{
		Name: "Pagne", Price: 1000, Quantity: 10,
	})
	require.NoError(s.T(), err)

	_, _, err = s.svc.Sell(s.ctx, otherID, product.ID, 1)
	require.Error(s.T(), err)
	assert.Equal(s.T(), apperr.KindNotFound, apperr.KindOf(err))

	// Owner's stock is untouched.
	products, err := s.svc.ListProducts(s.ctx, ownerID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(10), products[0].Quantity)
}

func (s *ServiceTestSuite) TestSellNonPositiveQuantity() {
	userID := s.signup("a@b.cm")
	product, err := s.svc.CreateProduct(s.ctx, userID, service.ProductInput{
		Name: "Pagne", Price: 1000, Quantity: 10,
	})
	require.NoError(s.T(), err)

	_, _, err = s.svc.Sell(s.ctx, userID, product.ID, -2)
	assert.Equal(s.T(), apperr.KindValidation, apperr.KindOf(err))

	_, _, err = s.svc.Sell(s.ctx, userID, product.ID, 0)
	assert.Equal(s.T(), apperr.KindValidation, apperr.KindOf(err))
}

func (s *ServiceTestSuite) TestQuantityNeverNegative() {
	userID := s.signup("a@b.cm")
	product, err := s.svc.CreateProduct(s.ctx, userID, service.ProductInput{
		Name: "Pagne", Price: 500, Quantity: 5,
	})
	require.NoError(s.T(), err)

	for _, qty := range []int64{2, 2, 2, 1, 3} {
		s.svc.Sell(s.ctx, userID, product.ID, qty)
		products, err := s.svc.ListProducts(s.ctx, userID)
		require.NoError(s.T(), err)
		assert.GreaterOrEqual(s.T(), products[0].Quantity, int64(0))
	}
}

func (s *ServiceTestSuite) TestCreateExpenseValidation() {
	userID := s.signup("a@b.cm")

	_, err := s.svc.CreateExpense(s.ctx, userID, service.ExpenseInput{Motif: ""})
	assert.Equal(s.T(), apperr.KindValidation, apperr.KindOf(err))

	_, err = s.svc.CreateExpense(s.ctx, userID, service.ExpenseInput{Motif: "Loyer", Amount: -5})
	assert.Equal(s.T(), apperr.KindValidation, apperr.KindOf(err))
}

func (s *ServiceTestSuite) TestPayExpenseIdempotent() {
	userID := s.signup("a@b.cm")
	expense, err := s.svc.CreateExpense(s.ctx, userID, service.ExpenseInput{
		Motif: "Loyer", Amount: 25000,
	})
	require.NoError(s.T(), err)

	require.NoError(s.T(), s.svc.PayExpense(s.ctx, userID, expense.ID))
	require.NoError(s.T(), s.svc.PayExpense(s.ctx, userID, expense.ID))

	expenses, err := s.svc.ListExpenses(s.ctx, userID)
	require.NoError(s.T(), err)
	require.Len(s.T(), expenses, 1)
	assert.True(s.T(), expenses[0].IsPaid)
}

func (s *ServiceTestSuite) TestPayExpenseCrossTenant() {
	ownerID := s.signup("a@b.cm")
	otherID := s.signup("b@b.cm")
	expense, err := s.svc.CreateExpense(s.ctx, ownerID, service.ExpenseInput{
		Motif: "Loyer", Amount: 25000,
	})
	require.NoError(s.T(), err)

	err = s.svc.PayExpense(s.ctx, otherID, expense.ID)
	require.Error(s.T(), err)
	assert.Equal(s.T(), apperr.KindNotFound, apperr.KindOf(err))
}

func (s *ServiceTestSuite) TestBilanEmpty() {
	userID := s.signup("a@b.cm")

	bilan, err := s.svc.Bilan(s.ctx, userID)
	require.NoError(s.T(), err)
	assert.Zero(s.T(), bilan.Revenue)
	assert.Zero(s.T(), bilan.Expenses)
	assert.Zero(s.T(), bilan.StockValue)
	assert.Zero(s.T(), bilan.Net)
}

func (s *ServiceTestSuite) TestBilanAggregates() {
	userID := s.signup("a@b.cm")
	product, err := s.svc.CreateProduct(s.ctx, userID, service.ProductInput{
		Name: "Pagne", Price: 1000, Quantity: 10,
	})
	require.NoError(s.T(), err)

	_, _, err = s.svc.Sell(s.ctx, userID, product.ID, 3)
	require.NoError(s.T(), err)

	_, err = s.svc.CreateExpense(s.ctx, userID, service.ExpenseInput{
		Motif: "Transport", Amount: 500,
	})
	require.NoError(s.T(), err)

	bilan, err := s.svc.Bilan(s.ctx, userID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 3000.0, bilan.Revenue)
	assert.Equal(s.T(), 500.0, bilan.Expenses)
	assert.Equal(s.T(), 7000.0, bilan.StockValue)
	assert.Equal(s.T(), 2500.0, bilan.Net)
}

func (s *ServiceTestSuite) TestBilanScopedToOwner() {
	aID := s.signup("a@b.cm")
	bID := s.signup("b@b.cm")
	_, err := s.svc.CreateProduct(s.ctx, aID, service.ProductInput{
		Name: "Pagne", Price: 1000, Quantity: 2,
	})
	require.NoError(s.T(), err)

	bilan, err := s.svc.Bilan(s.ctx, bID)
	require.NoError(s.T(), err)
	assert.Zero(s.T(), bilan.StockValue)
}
