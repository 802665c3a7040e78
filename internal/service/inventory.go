package service

import (
	"context"
	"time"

	"mediarental-backend/internal/domain"
	"mediarental-backend/internal/logger"
	"mediarental-backend/internal/repository"
)

type inventoryPool struct {
	inventory repository.InventoryRepository
	rentals   repository.RentalRepository
	tx        repository.Transactor
	clock     Clock
}

func NewInventoryPool(
	inventory repository.InventoryRepository,
	rentals repository.RentalRepository,
	tx repository.Transactor,
	clock Clock,
) InventoryPool {
	return &inventoryPool{
		inventory: inventory,
		rentals:   rentals,
		tx:        tx,
		clock:     clock,
	}
}

func (p *inventoryPool) CheckAvailability(ctx context.Context, titleID, locationID int32, start, end time.Time) ([]domain.InventoryUnit, error) {
	window := domain.NewInterval(start, end)
	if !window.Valid() {
		return nil, domain.NewValidationError("interval", "start must be before end")
	}

	units, err := p.inventory.ListUnits(ctx, titleID, locationID)
	if err != nil {
		return nil, domain.NewStorageError("list units", err)
	}
	free := make([]domain.InventoryUnit, 0, len(units))
	if len(units) == 0 {
		return free, nil
	}

	rentals, err := p.rentals.ListOpenByTitle(ctx, titleID, locationID, start)
	if err != nil {
		return nil, domain.NewStorageError("list rentals", err)
	}
	busy := make(map[int32]bool, len(rentals))
	for _, r := range rentals {
		if r.Occupied().Overlaps(window) {
			busy[r.UnitID] = true
		}
	}

	for _, u := range units {
		if !busy[u.ID] {
			free = append(free, u)
		}
	}
	logger.Debug("Checked availability", "titleID", titleID, "locationID", locationID,
		"units", len(units), "free", len(free))
	return free, nil
}

// NextAvailable is a heuristic: the earliest due time of an outstanding
// rental. It does not account for queued demand.
func (p *inventoryPool) NextAvailable(ctx context.Context, titleID, locationID int32) (*time.Time, error) {
	now := p.clock.Now()
	rentals, err := p.rentals.ListOpenByTitle(ctx, titleID, locationID, now)
	if err != nil {
		return nil, domain.NewStorageError("list rentals", err)
	}

	var next *time.Time
	for _, r := range rentals {
		if r.Returned() || !r.DueTime.After(now) {
			continue
		}
		if next == nil || r.DueTime.Before(*next) {
			due := r.DueTime
			next = &due
		}
	}
	return next, nil
}

func (p *inventoryPool) Grow(ctx context.Context, titleID, locationID int32, count int) ([]int32, error) {
	if count <= 0 {
		return nil, domain.NewValidationError("count", "must be positive")
	}
	ids, err := p.inventory.CreateUnits(ctx, titleID, locationID, count)
	if err != nil {
		return nil, domain.NewStorageError("grow inventory", err)
	}
	logger.Info("Inventory grown", "titleID", titleID, "locationID", locationID, "added", len(ids))
	return ids, nil
}

func (p *inventoryPool) Shrink(ctx context.Context, titleID, locationID int32, count int) (int, error) {
	if count <= 0 {
		return 0, domain.NewValidationError("count", "must be positive")
	}

	var removed int
	err := p.tx.WithinTx(ctx, nil, func(ctx context.Context, repos repository.Repositories) error {
		n, err := shrinkUnits(ctx, repos.Inventory(), p.clock.Now(), titleID, locationID, count)
		removed = n
		return err
	})
	if err != nil {
		return 0, domain.NewStorageError("shrink inventory", err)
	}
	logger.Info("Inventory shrunk", "titleID", titleID, "locationID", locationID,
		"requested", count, "removed", removed)
	return removed, nil
}

func (p *inventoryPool) CountUnits(ctx context.Context, titleID, locationID int32) (int, error) {
	n, err := p.inventory.CountUnits(ctx, titleID, locationID)
	if err != nil {
		return 0, domain.NewStorageError("count units", err)
	}
	return n, nil
}

// shrinkUnits removes up to count units that have nothing outstanding after
// now. Units with rental history are retired so their agreements and
// payments survive; the rest are deleted.
func shrinkUnits(ctx context.Context, inv repository.InventoryRepository, now time.Time, titleID, locationID int32, count int) (int, error) {
	candidates, err := inv.ListRemovable(ctx, titleID, locationID, now, count)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, c := range candidates {
		if removed == count {
			break
		}
		if c.HasHistory {
			err = inv.RetireUnit(ctx, c.Unit.ID, now)
		} else {
			err = inv.DeleteUnit(ctx, c.Unit.ID)
		}
		if err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// reconcileUnits grows or shrinks the pool on inv until it holds target
// units, or as close as shrinking allows.
func reconcileUnits(ctx context.Context, inv repository.InventoryRepository, now time.Time, titleID, locationID int32, target int) (domain.EditResult, error) {
	res := domain.EditResult{TitleID: titleID, LocationID: locationID}

	before, err := inv.CountUnits(ctx, titleID, locationID)
	if err != nil {
		return res, err
	}
	res.UnitsBefore = before
	res.UnitsAfter = before

	switch {
	case target > before:
		ids, err := inv.CreateUnits(ctx, titleID, locationID, target-before)
		if err != nil {
			return res, err
		}
		res.Added = len(ids)
	case target < before:
		want := before - target
		removed, err := shrinkUnits(ctx, inv, now, titleID, locationID, want)
		if err != nil {
			return res, err
		}
		res.Removed = removed
		res.Shortfall = want - removed
	}
	res.UnitsAfter = before + res.Added - res.Removed
	return res, nil
}
