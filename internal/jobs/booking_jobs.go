package jobs

import (
	"context"

	"mediarental-backend/internal/logger"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// RepairStaleReservations deletes RESERVED rentals that were never paid
// within the reservation TTL, freeing their units.
func (jr *JobRunner) RepairStaleReservations() {
	jr.runWithRecovery("RepairStaleReservations", func() {
		if _, err := jr.repairStaleReservations(context.Background()); err != nil {
			logger.Error("Failed to repair stale reservations", "error", err)
		}
	})
}

func (jr *JobRunner) repairStaleReservations(ctx context.Context) (int, error) {
	ttl := jr.config.Booking.ReservationTTL()
	stale, err := jr.ledger.ListStaleReservations(ctx, ttl)
	if err != nil {
		return 0, err
	}

	repaired := 0
	for _, r := range stale {
		deleted, err := jr.ledger.Delete(ctx, r.ID)
		if err != nil {
			logger.Error("Failed to delete stale reservation", "rental_id", r.ID, "booking_ref", r.BookingRef, "error", err)
			continue
		}
		if !deleted {
			// Paid between the listing and the delete.
			continue
		}
		repaired++
		logger.Warn("Deleted stale reservation",
			"rental_id", r.ID,
			"booking_ref", r.BookingRef,
			"unit_id", r.UnitID,
			"customer_id", r.CustomerID,
			"created_on", r.CreatedOn)
	}

	logger.Info("Stale reservations repaired", "found", len(stale), "deleted", repaired, "ttl", ttl)
	return repaired, nil
}

// ProbeDatabase pings the database and publishes the result as the gRPC
// health status.
func (jr *JobRunner) ProbeDatabase() {
	jr.runWithRecovery("ProbeDatabase", func() {
		jr.probeDatabase(context.Background())
	})
}

func (jr *JobRunner) probeDatabase(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	err := jr.db.Ping(ctx)
	if err != nil {
		status = healthpb.HealthCheckResponse_NOT_SERVING
		logger.Error("Database probe failed", "error", err)
	}
	if jr.health != nil {
		jr.health.SetServingStatus("", status)
	}
	return err == nil
}
