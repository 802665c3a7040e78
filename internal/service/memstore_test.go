package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"mediarental-backend/internal/domain"
	"mediarental-backend/internal/repository"
)

// memStore is an in-memory Repositories and Transactor. A failed WithinTx
// restores the state it started from.
type memStore struct {
	units      map[int32]domain.InventoryUnit
	rentals    map[int32]domain.RentalAgreement
	payments   map[int32]domain.Payment
	discounts  map[int32]domain.Discount
	titles     map[int32]domain.CatalogItem
	categories map[int32]int32
	cast       map[int32][]int32
	seq        int32

	paymentErr error
	castErr    error
	txCount    int
}

func newMemStore() *memStore {
	return &memStore{
		units:      map[int32]domain.InventoryUnit{},
		rentals:    map[int32]domain.RentalAgreement{},
		payments:   map[int32]domain.Payment{},
		discounts:  map[int32]domain.Discount{},
		titles:     map[int32]domain.CatalogItem{},
		categories: map[int32]int32{},
		cast:       map[int32][]int32{},
	}
}

func (s *memStore) nextID() int32 {
	s.seq++
	return s.seq
}

func (s *memStore) addTitle(id, rateCents int32) {
	s.titles[id] = domain.CatalogItem{TitleID: id, Title: fmt.Sprintf("Title %d", id), RentalRateCents: rateCents}
}

func (s *memStore) addUnits(titleID, locationID int32, n int) []int32 {
	ids, _ := s.Inventory().CreateUnits(context.Background(), titleID, locationID, n)
	return ids
}

func (s *memStore) addRental(r domain.RentalAgreement) int32 {
	r.ID = s.nextID()
	if r.State == "" {
		r.State = domain.RentalStateCompleted
	}
	s.rentals[r.ID] = r
	return r.ID
}

func (s *memStore) Inventory() repository.InventoryRepository { return memInventory{s} }
func (s *memStore) Rentals() repository.RentalRepository      { return memRentals{s} }
func (s *memStore) Payments() repository.PaymentRepository    { return memPayments{s} }
func (s *memStore) Discounts() repository.DiscountRepository  { return memDiscounts{s} }
func (s *memStore) Catalog() repository.CatalogRepository     { return memCatalog{s} }

func (s *memStore) WithinTx(ctx context.Context, _ *sql.TxOptions, fn func(ctx context.Context, repos repository.Repositories) error) error {
	s.txCount++
	saved := s.snapshot()
	if err := fn(ctx, s); err != nil {
		s.restore(saved)
		return err
	}
	return nil
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *memStore) snapshot() *memStore {
	c := &memStore{
		units:      copyMap(s.units),
		rentals:    copyMap(s.rentals),
		payments:   copyMap(s.payments),
		discounts:  copyMap(s.discounts),
		titles:     copyMap(s.titles),
		categories: copyMap(s.categories),
		cast:       make(map[int32][]int32, len(s.cast)),
		seq:        s.seq,
	}
	for k, v := range s.cast {
		c.cast[k] = append([]int32(nil), v...)
	}
	return c
}

func (s *memStore) restore(c *memStore) {
	s.units, s.rentals, s.payments = c.units, c.rentals, c.payments
	s.discounts, s.titles, s.categories, s.cast = c.discounts, c.titles, c.categories, c.cast
	s.seq = c.seq
}

func (s *memStore) unitsOf(titleID, locationID int32) []domain.InventoryUnit {
	var out []domain.InventoryUnit
	for _, u := range s.units {
		if u.TitleID == titleID && u.LocationID == locationID && !u.Retired() {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *memStore) rentalsWhere(keep func(domain.RentalAgreement) bool) []domain.RentalAgreement {
	var out []domain.RentalAgreement
	for _, r := range s.rentals {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DueTime.Equal(out[j].DueTime) {
			return out[i].ID < out[j].ID
		}
		return out[i].DueTime.Before(out[j].DueTime)
	})
	return out
}

func openSince(r domain.RentalAgreement, since time.Time) bool {
	return r.DueTime.After(since) && (r.ReturnTime == nil || r.ReturnTime.After(since))
}

type memInventory struct{ s *memStore }

func (m memInventory) ListUnits(_ context.Context, titleID, locationID int32) ([]domain.InventoryUnit, error) {
	return m.s.unitsOf(titleID, locationID), nil
}

func (m memInventory) CountUnits(_ context.Context, titleID, locationID int32) (int, error) {
	return len(m.s.unitsOf(titleID, locationID)), nil
}

func (m memInventory) CreateUnits(_ context.Context, titleID, locationID int32, count int) ([]int32, error) {
	ids := make([]int32, 0, count)
	for i := 0; i < count; i++ {
		id := m.s.nextID()
		m.s.units[id] = domain.InventoryUnit{ID: id, TitleID: titleID, LocationID: locationID}
		ids = append(ids, id)
	}
	return ids, nil
}

func (m memInventory) LockUnit(_ context.Context, unitID int32) (*domain.InventoryUnit, error) {
	u, ok := m.s.units[unitID]
	if !ok {
		return nil, fmt.Errorf("lock unit: %w", domain.ErrNotFound)
	}
	return &u, nil
}

func (m memInventory) ListRemovable(_ context.Context, titleID, locationID int32, now time.Time, limit int) ([]repository.RemovableUnit, error) {
	units := m.s.unitsOf(titleID, locationID)
	var out []repository.RemovableUnit
	for i := len(units) - 1; i >= 0 && len(out) < limit; i-- {
		u := units[i]
		active, history := false, false
		for _, r := range m.s.rentals {
			if r.UnitID != u.ID {
				continue
			}
			history = true
			if r.ReturnTime == nil && r.DueTime.After(now) {
				active = true
			}
		}
		if !active {
			out = append(out, repository.RemovableUnit{Unit: u, HasHistory: history})
		}
	}
	return out, nil
}

func (m memInventory) DeleteUnit(_ context.Context, unitID int32) error {
	delete(m.s.units, unitID)
	return nil
}

func (m memInventory) RetireUnit(_ context.Context, unitID int32, at time.Time) error {
	u := m.s.units[unitID]
	u.RetiredOn = &at
	m.s.units[unitID] = u
	return nil
}

type memRentals struct{ s *memStore }

func (m memRentals) Create(_ context.Context, rental *domain.RentalAgreement) error {
	window := domain.NewInterval(rental.StartTime, rental.DueTime)
	for _, r := range m.s.rentals {
		if r.UnitID == rental.UnitID && r.ReturnTime == nil && r.Occupied().Overlaps(window) {
			return fmt.Errorf("create rental: %w", domain.ErrUnitTaken)
		}
	}
	rental.ID = m.s.nextID()
	m.s.rentals[rental.ID] = *rental
	return nil
}

func (m memRentals) GetByID(_ context.Context, id int32) (*domain.RentalAgreement, error) {
	r, ok := m.s.rentals[id]
	if !ok {
		return nil, fmt.Errorf("get rental: %w", domain.ErrNotFound)
	}
	return &r, nil
}

func (m memRentals) ListOpenByTitle(_ context.Context, titleID, locationID int32, since time.Time) ([]domain.RentalAgreement, error) {
	return m.s.rentalsWhere(func(r domain.RentalAgreement) bool {
		u, ok := m.s.units[r.UnitID]
		return ok && u.TitleID == titleID && u.LocationID == locationID && openSince(r, since)
	}), nil
}

func (m memRentals) ListOpenByUnit(_ context.Context, unitID int32, since time.Time) ([]domain.RentalAgreement, error) {
	return m.s.rentalsWhere(func(r domain.RentalAgreement) bool {
		return r.UnitID == unitID && openSince(r, since)
	}), nil
}

func (m memRentals) ListOpenByCustomer(_ context.Context, customerID, titleID int32, since time.Time) ([]domain.RentalAgreement, error) {
	return m.s.rentalsWhere(func(r domain.RentalAgreement) bool {
		u, ok := m.s.units[r.UnitID]
		return ok && r.CustomerID == customerID && u.TitleID == titleID &&
			r.ReturnTime == nil && r.DueTime.After(since)
	}), nil
}

func (m memRentals) MarkCompleted(_ context.Context, id int32) error {
	r, ok := m.s.rentals[id]
	if !ok || r.State != domain.RentalStateReserved {
		return fmt.Errorf("complete rental: %w", domain.ErrNotFound)
	}
	r.State = domain.RentalStateCompleted
	m.s.rentals[id] = r
	return nil
}

func (m memRentals) DeleteReserved(_ context.Context, id int32) (bool, error) {
	r, ok := m.s.rentals[id]
	if !ok || r.State != domain.RentalStateReserved {
		return false, nil
	}
	delete(m.s.rentals, id)
	return true, nil
}

func (m memRentals) ListStaleReserved(_ context.Context, createdBefore time.Time) ([]domain.RentalAgreement, error) {
	paid := map[int32]bool{}
	for _, p := range m.s.payments {
		paid[p.RentalID] = true
	}
	return m.s.rentalsWhere(func(r domain.RentalAgreement) bool {
		return r.State == domain.RentalStateReserved && r.CreatedOn.Before(createdBefore) && !paid[r.ID]
	}), nil
}

type memPayments struct{ s *memStore }

func (m memPayments) Create(_ context.Context, payment *domain.Payment) error {
	if m.s.paymentErr != nil {
		return m.s.paymentErr
	}
	for _, p := range m.s.payments {
		if p.RentalID == payment.RentalID {
			return fmt.Errorf("create payment: %w", domain.ErrAlreadyPaid)
		}
	}
	payment.ID = m.s.nextID()
	m.s.payments[payment.ID] = *payment
	return nil
}

func (m memPayments) GetByRental(_ context.Context, rentalID int32) (*domain.Payment, error) {
	for _, p := range m.s.payments {
		if p.RentalID == rentalID {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("get payment: %w", domain.ErrNotFound)
}

type memDiscounts struct{ s *memStore }

func (m memDiscounts) Create(_ context.Context, d *domain.Discount) error {
	d.ID = m.s.nextID()
	m.s.discounts[d.ID] = *d
	return nil
}

func (m memDiscounts) Update(_ context.Context, d *domain.Discount) error {
	if _, ok := m.s.discounts[d.ID]; !ok {
		return fmt.Errorf("update discount: %w", domain.ErrNotFound)
	}
	m.s.discounts[d.ID] = *d
	return nil
}

func (m memDiscounts) GetActive(_ context.Context, titleID int32, asOf time.Time) (*domain.Discount, error) {
	list, _ := m.ListByTitle(context.Background(), titleID)
	today := domain.DateOf(asOf)
	for _, d := range list {
		if !d.EndDate.Before(today) {
			return &d, nil
		}
	}
	return nil, fmt.Errorf("get active discount: %w", domain.ErrNotFound)
}

func (m memDiscounts) ListByTitle(_ context.Context, titleID int32) ([]domain.Discount, error) {
	var out []domain.Discount
	for _, d := range m.s.discounts {
		if d.TitleID == titleID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].ID > out[j].ID
		}
		return out[i].StartDate.After(out[j].StartDate)
	})
	return out, nil
}

type memCatalog struct{ s *memStore }

func (m memCatalog) GetRentalRate(_ context.Context, titleID int32) (int32, error) {
	t, ok := m.s.titles[titleID]
	if !ok {
		return 0, fmt.Errorf("get rental rate: %w", domain.ErrNotFound)
	}
	return t.RentalRateCents, nil
}

func (m memCatalog) UpdateDetails(_ context.Context, item *domain.CatalogItem) error {
	if _, ok := m.s.titles[item.TitleID]; !ok {
		return fmt.Errorf("update title: %w", domain.ErrNotFound)
	}
	m.s.titles[item.TitleID] = *item
	return nil
}

func (m memCatalog) SetCategory(_ context.Context, titleID, categoryID int32) error {
	m.s.categories[titleID] = categoryID
	return nil
}

func (m memCatalog) ReplaceCast(_ context.Context, titleID int32, actorIDs []int32) error {
	if m.s.castErr != nil {
		return m.s.castErr
	}
	m.s.cast[titleID] = append([]int32(nil), actorIDs...)
	return nil
}
