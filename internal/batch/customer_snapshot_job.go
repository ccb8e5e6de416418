package batch

import (
	"context"
	"log/slog"
	"time"

	"customer-service/internal/domain/customer"
	"customer-service/internal/infrastructure/monitoring"
)

// CustomerSnapshotJob periodically refreshes the customers_total gauge
// from the repository so the metric survives restarts and out-of-band
// writes to the table.
type CustomerSnapshotJob struct {
	repo   customer.CustomerRepository
	logger *slog.Logger
}

func NewCustomerSnapshotJob(repo customer.CustomerRepository, logger *slog.Logger) *CustomerSnapshotJob {
	if repo == nil || logger == nil {
		panic("CustomerSnapshotJob dependencies cannot be nil")
	}
	return &CustomerSnapshotJob{
		repo:   repo,
		logger: logger.With("job", "CustomerSnapshot"),
	}
}

func (j *CustomerSnapshotJob) Run(ctx context.Context) error {
	startTime := time.Now()
	j.logger.DebugContext(ctx, "Starting customer count snapshot job.")

	count, err := j.repo.Count(ctx)
	if err != nil {
		monitoring.Business.SnapshotFailuresTotal.Inc()
		j.logger.ErrorContext(ctx, "Failed to count customers, gauge left unchanged.", slog.Any("error", err))
		return err
	}

	monitoring.Business.CustomersTotal.Set(float64(count))
	j.logger.InfoContext(ctx, "Customer count snapshot finished.",
		slog.Int64("count", count), slog.Duration("duration", time.Since(startTime)))
	return nil
}
