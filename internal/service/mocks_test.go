package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"mediarental-backend/internal/domain"
	"mediarental-backend/internal/repository"

	"github.com/stretchr/testify/mock"
)

// MockInventoryRepo
type MockInventoryRepo struct {
	mock.Mock
}

func (m *MockInventoryRepo) ListUnits(ctx context.Context, titleID, locationID int32) ([]domain.InventoryUnit, error) {
	args := m.Called(ctx, titleID, locationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InventoryUnit), args.Error(1)
}
func (m *MockInventoryRepo) CountUnits(ctx context.Context, titleID, locationID int32) (int, error) {
	args := m.Called(ctx, titleID, locationID)
	return args.Int(0), args.Error(1)
}
func (m *MockInventoryRepo) CreateUnits(ctx context.Context, titleID, locationID int32, count int) ([]int32, error) {
	args := m.Called(ctx, titleID, locationID, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int32), args.Error(1)
}
func (m *MockInventoryRepo) LockUnit(ctx context.Context, unitID int32) (*domain.InventoryUnit, error) {
	args := m.Called(ctx, unitID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InventoryUnit), args.Error(1)
}
func (m *MockInventoryRepo) ListRemovable(ctx context.Context, titleID, locationID int32, now time.Time, limit int) ([]repository.RemovableUnit, error) {
	args := m.Called(ctx, titleID, locationID, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.RemovableUnit), args.Error(1)
}
func (m *MockInventoryRepo) DeleteUnit(ctx context.Context, unitID int32) error {
	args := m.Called(ctx, unitID)
	return args.Error(0)
}
func (m *MockInventoryRepo) RetireUnit(ctx context.Context, unitID int32, at time.Time) error {
	args := m.Called(ctx, unitID, at)
	return args.Error(0)
}

// MockRentalRepo
type MockRentalRepo struct {
	mock.Mock
}

func (m *MockRentalRepo) Create(ctx context.Context, rental *domain.RentalAgreement) error {
	args := m.Called(ctx, rental)
	return args.Error(0)
}
func (m *MockRentalRepo) GetByID(ctx context.Context, id int32) (*domain.RentalAgreement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RentalAgreement), args.Error(1)
}
func (m *MockRentalRepo) ListOpenByTitle(ctx context.Context, titleID, locationID int32, since time.Time) ([]domain.RentalAgreement, error) {
	args := m.Called(ctx, titleID, locationID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RentalAgreement), args.Error(1)
}
func (m *MockRentalRepo) ListOpenByUnit(ctx context.Context, unitID int32, since time.Time) ([]domain.RentalAgreement, error) {
	args := m.Called(ctx, unitID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RentalAgreement), args.Error(1)
}
func (m *MockRentalRepo) ListOpenByCustomer(ctx context.Context, customerID, titleID int32, since time.Time) ([]domain.RentalAgreement, error) {
	args := m.Called(ctx, customerID, titleID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RentalAgreement), args.Error(1)
}
func (m *MockRentalRepo) MarkCompleted(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockRentalRepo) DeleteReserved(ctx context.Context, id int32) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}
func (m *MockRentalRepo) ListStaleReserved(ctx context.Context, createdBefore time.Time) ([]domain.RentalAgreement, error) {
	args := m.Called(ctx, createdBefore)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RentalAgreement), args.Error(1)
}

// MockInventoryPool
type MockInventoryPool struct {
	mock.Mock
}

func (m *MockInventoryPool) CheckAvailability(ctx context.Context, titleID, locationID int32, start, end time.Time) ([]domain.InventoryUnit, error) {
	args := m.Called(ctx, titleID, locationID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InventoryUnit), args.Error(1)
}
func (m *MockInventoryPool) NextAvailable(ctx context.Context, titleID, locationID int32) (*time.Time, error) {
	args := m.Called(ctx, titleID, locationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}
func (m *MockInventoryPool) Grow(ctx context.Context, titleID, locationID int32, count int) ([]int32, error) {
	args := m.Called(ctx, titleID, locationID, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int32), args.Error(1)
}
func (m *MockInventoryPool) Shrink(ctx context.Context, titleID, locationID int32, count int) (int, error) {
	args := m.Called(ctx, titleID, locationID, count)
	return args.Int(0), args.Error(1)
}
func (m *MockInventoryPool) CountUnits(ctx context.Context, titleID, locationID int32) (int, error) {
	args := m.Called(ctx, titleID, locationID)
	return args.Int(0), args.Error(1)
}

// MockDiscountResolver
type MockDiscountResolver struct {
	mock.Mock
}

func (m *MockDiscountResolver) ActiveDiscount(ctx context.Context, titleID int32) (*domain.Discount, error) {
	args := m.Called(ctx, titleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Discount), args.Error(1)
}
func (m *MockDiscountResolver) Apply(ctx context.Context, titleID int32, percentage float64, endDate time.Time) (*domain.Discount, domain.DiscountOutcome, error) {
	args := m.Called(ctx, titleID, percentage, endDate)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*domain.Discount), args.Get(1).(domain.DiscountOutcome), args.Error(2)
}
func (m *MockDiscountResolver) EffectiveRate(ctx context.Context, baseRateCents, titleID int32) (int32, *domain.Discount, error) {
	args := m.Called(ctx, baseRateCents, titleID)
	var d *domain.Discount
	if args.Get(1) != nil {
		d = args.Get(1).(*domain.Discount)
	}
	return args.Get(0).(int32), d, args.Error(2)
}
func (m *MockDiscountResolver) ListDiscounts(ctx context.Context, titleID int32) ([]domain.Discount, error) {
	args := m.Called(ctx, titleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Discount), args.Error(1)
}

// MockRentalLedger
type MockRentalLedger struct {
	mock.Mock
}

func (m *MockRentalLedger) HasActiveAgreement(ctx context.Context, customerID, titleID int32, start, end time.Time) (bool, error) {
	args := m.Called(ctx, customerID, titleID, start, end)
	return args.Bool(0), args.Error(1)
}
func (m *MockRentalLedger) Create(ctx context.Context, rental *domain.RentalAgreement) (int32, error) {
	args := m.Called(ctx, rental)
	return args.Get(0).(int32), args.Error(1)
}
func (m *MockRentalLedger) Delete(ctx context.Context, rentalID int32) (bool, error) {
	args := m.Called(ctx, rentalID)
	return args.Bool(0), args.Error(1)
}
func (m *MockRentalLedger) Get(ctx context.Context, rentalID int32) (*domain.RentalAgreement, error) {
	args := m.Called(ctx, rentalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RentalAgreement), args.Error(1)
}
func (m *MockRentalLedger) ListStaleReservations(ctx context.Context, olderThan time.Duration) ([]domain.RentalAgreement, error) {
	args := m.Called(ctx, olderThan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RentalAgreement), args.Error(1)
}

// MockPaymentRecorder
type MockPaymentRecorder struct {
	mock.Mock
}

func (m *MockPaymentRecorder) Record(ctx context.Context, customerID, agentID, rentalID, amountCents int32) (int32, error) {
	args := m.Called(ctx, customerID, agentID, rentalID, amountCents)
	return args.Get(0).(int32), args.Error(1)
}
func (m *MockPaymentRecorder) ForRental(ctx context.Context, rentalID int32) (*domain.Payment, error) {
	args := m.Called(ctx, rentalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

// mockRepos hands the mocks to code running inside fakeTx.
type mockRepos struct {
	inventory repository.InventoryRepository
	rentals   repository.RentalRepository
}

func (r *mockRepos) Inventory() repository.InventoryRepository { return r.inventory }
func (r *mockRepos) Rentals() repository.RentalRepository      { return r.rentals }
func (r *mockRepos) Payments() repository.PaymentRepository    { return nil }
func (r *mockRepos) Discounts() repository.DiscountRepository  { return nil }
func (r *mockRepos) Catalog() repository.CatalogRepository     { return nil }

type fakeTx struct {
	repos    repository.Repositories
	beginErr error
	calls    int
}

func (f *fakeTx) WithinTx(ctx context.Context, _ *sql.TxOptions, fn func(ctx context.Context, repos repository.Repositories) error) error {
	f.calls++
	if f.beginErr != nil {
		return f.beginErr
	}
	return fn(ctx, f.repos)
}

type stubClock struct {
	now time.Time
}

func (c *stubClock) Now() time.Time {
	return c.now
}

type stubIDs struct {
	n   int
	err error
}

func (g *stubIDs) New() (string, error) {
	if g.err != nil {
		return "", g.err
	}
	g.n++
	return fmt.Sprintf("01TESTREF%017d", g.n), nil
}
