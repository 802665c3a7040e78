package jobs

import (
	"context"
	"time"

	"mediarental-backend/internal/config"
	"mediarental-backend/internal/logger"
	"mediarental-backend/internal/service"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const probeTimeout = 5 * time.Second

// Pinger is satisfied by the postgres store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthSetter is satisfied by the gRPC health server.
type HealthSetter interface {
	SetServingStatus(service string, status healthpb.HealthCheckResponse_ServingStatus)
}

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	ledger service.RentalLedger
	db     Pinger
	health HealthSetter
	config *config.Config
}

// NewJobRunner creates a new job runner. health may be nil when no gRPC
// server runs in the process.
func NewJobRunner(ledger service.RentalLedger, db Pinger, health HealthSetter, cfg *config.Config) *JobRunner {
	return &JobRunner{
		ledger: ledger,
		db:     db,
		health: health,
		config: cfg,
	}
}

func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	log := logger.WithComponent("jobs").With("job", jobName)
	defer func() {
		if r := recover(); r != nil {
			log.Error("Job panicked", "panic", r)
		}
	}()

	start := time.Now()
	log.Info("Starting job")
	jobFunc()
	log.Info("Job completed", "duration_ms", time.Since(start).Milliseconds())
}

// RunAll runs every job once (for manual execution)
func (jr *JobRunner) RunAll() {
	jr.ProbeDatabase()
	jr.RepairStaleReservations()
}
