package http

import (
	"context"
	"time"

	"mediarental-backend/internal/domain"

	"github.com/stretchr/testify/mock"
)

type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) RentTitle(ctx context.Context, req domain.RentRequest) (*domain.BookingResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookingResult), args.Error(1)
}
func (m *MockBookingService) EditCatalogItem(ctx context.Context, edit domain.CatalogEdit) (*domain.EditResult, error) {
	args := m.Called(ctx, edit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EditResult), args.Error(1)
}

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
