package sync

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/openledgerhq/txbridge/internal/ledger"
)

// dryRunClient wraps a LedgerClient and logs write operations instead of
// executing them. Reads pass through so window resolution stays realistic.
type dryRunClient struct {
	client  LedgerClient
	counter uint64
	logger  *slog.Logger
}

// newDryRunClient creates a new dryRunClient wrapping the given LedgerClient.
func newDryRunClient(client LedgerClient, logger *slog.Logger) *dryRunClient {
	return &dryRunClient{
		client: client,
		logger: logger,
	}
}

// BulkInsert logs the batch and reports every record as inserted.
func (d *dryRunClient) BulkInsert(
	_ context.Context,
	records []ledger.Transaction,
	source string,
	externalUserID string,
) (ledger.BulkResult, error) {
	d.logger.Info("[DRY-RUN] would bulk insert transactions",
		"count", len(records),
		"source", source,
		"external_user_id", externalUserID)

	for _, r := range records {
		d.logger.Info("[DRY-RUN] would insert transaction",
			"operation", r.Operation,
			"asset", r.Asset,
			"change_amount", r.ChangeAmount,
			"account", r.Account,
			"occurred_at", r.OccurredAt)
	}

	return ledger.BulkResult{Inserted: len(records)}, nil
}

// CreateSyncJob logs what would be created and returns a job with a fake ID.
func (d *dryRunClient) CreateSyncJob(
	_ context.Context,
	jobType ledger.JobType,
	startTime int64,
	endTime int64,
) (*ledger.SyncJob, error) {
	fakeID := d.nextFakeID("job")

	d.logger.Info("[DRY-RUN] would create sync job",
		"fake_id", fakeID,
		"job_type", jobType,
		"start_time", startTime,
		"end_time", endTime)

	return &ledger.SyncJob{
		EndTime:   endTime,
		ID:        fakeID,
		JobType:   jobType,
		StartTime: startTime,
		Status:    ledger.JobStatusRunning,
	}, nil
}

// FinalizeSyncJob logs what would be written and returns nil.
func (d *dryRunClient) FinalizeSyncJob(_ context.Context, jobID string, fin ledger.JobFinalization) error {
	d.logger.Info("[DRY-RUN] would finalize sync job",
		"job_id", jobID,
		"status", fin.Status,
		"records_processed", fin.RecordsProcessed,
		"records_inserted", fin.RecordsInserted,
		"records_duplicated", fin.RecordsDuplicated,
		"records_failed", fin.RecordsFailed)

	return nil
}

// LastResumableSyncJob delegates to the real client.
func (d *dryRunClient) LastResumableSyncJob(ctx context.Context, jobType ledger.JobType) (*ledger.SyncJob, error) {
	return d.client.LastResumableSyncJob(ctx, jobType)
}

// nextFakeID generates a unique fake ID for dry-run operations.
func (d *dryRunClient) nextFakeID(prefix string) string {
	n := atomic.AddUint64(&d.counter, 1)
	return fmt.Sprintf("dry-run-%s-%d", prefix, n)
}
