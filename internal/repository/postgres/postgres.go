package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"mediarental-backend/internal/domain"
	"mediarental-backend/internal/logger"
	"mediarental-backend/internal/repository"

	"github.com/lib/pq"
)

//go:embed schema.sql
var schemaSQL string

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type repos struct {
	inventory repository.InventoryRepository
	rentals   repository.RentalRepository
	payments  repository.PaymentRepository
	discounts repository.DiscountRepository
	catalog   repository.CatalogRepository
}

func newRepos(q DBTX) *repos {
	return &repos{
		inventory: NewInventoryRepository(q),
		rentals:   NewRentalRepository(q),
		payments:  NewPaymentRepository(q),
		discounts: NewDiscountRepository(q),
		catalog:   NewCatalogRepository(q),
	}
}

func (r *repos) Inventory() repository.InventoryRepository { return r.inventory }
func (r *repos) Rentals() repository.RentalRepository      { return r.rentals }
func (r *repos) Payments() repository.PaymentRepository    { return r.payments }
func (r *repos) Discounts() repository.DiscountRepository  { return r.discounts }
func (r *repos) Catalog() repository.CatalogRepository     { return r.catalog }

// Store exposes the repositories on the pool connection and opens
// transactions that hand out the same repositories bound to the tx.
type Store struct {
	db *sql.DB
	*repos
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:    db,
		repos: newRepos(db),
	}
}

func (s *Store) WithinTx(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context, r repository.Repositories) error) error {
	return RunInTx(ctx, s.db, opts, func(ctx context.Context, tx DBTX) error {
		return fn(ctx, newRepos(tx))
	})
}

// ApplySchema creates the booking tables if they do not exist.
func (s *Store) ApplySchema(ctx context.Context) error {
	logger.Info("Applying database schema")
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

const (
	sqlStateUniqueViolation    = "23505"
	sqlStateExclusionViolation = "23P01"

	paymentsRentalUnique = "payments_rental_id_key"
)

// mapError translates driver errors into domain sentinels where the
// condition is a business outcome rather than a fault.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code == sqlStateExclusionViolation:
			return fmt.Errorf("%s: %w", op, domain.ErrUnitTaken)
		case pqErr.Code == sqlStateUniqueViolation && pqErr.Constraint == paymentsRentalUnique:
			return fmt.Errorf("%s: %w", op, domain.ErrAlreadyPaid)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
