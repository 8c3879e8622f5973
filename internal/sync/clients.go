package sync

import (
	"context"

	"github.com/openledgerhq/txbridge/internal/exchange"
	"github.com/openledgerhq/txbridge/internal/ledger"
)

// HistoryClient defines the exchange operations required by the sync service.
type HistoryClient interface {
	// DepositHistory fetches one page of deposits for the inclusive
	// [startTime, endTime] range, ascending by insert time.
	DepositHistory(ctx context.Context, startTime int64, endTime int64, limit int) ([]exchange.Deposit, error)

	// WithdrawalHistory fetches one page of withdrawals for the inclusive
	// [startTime, endTime] range, ascending by apply time.
	WithdrawalHistory(ctx context.Context, startTime int64, endTime int64, limit int) ([]exchange.Withdrawal, error)
}

// LedgerClient defines the ledger operations required by the sync service.
type LedgerClient interface {
	// BulkInsert submits a batch of transactions and returns the store's
	// authoritative insert/duplicate/failure counts.
	BulkInsert(
		ctx context.Context,
		records []ledger.Transaction,
		source string,
		externalUserID string,
	) (ledger.BulkResult, error)

	// CreateSyncJob persists a new sync job in running status.
	CreateSyncJob(
		ctx context.Context,
		jobType ledger.JobType,
		startTime int64,
		endTime int64,
	) (*ledger.SyncJob, error)

	// FinalizeSyncJob writes the terminal state of a sync job.
	FinalizeSyncJob(ctx context.Context, jobID string, fin ledger.JobFinalization) error

	// LastResumableSyncJob returns the most recent resumable job of the given
	// type, or ledger.ErrNoSyncJob if none exists.
	LastResumableSyncJob(ctx context.Context, jobType ledger.JobType) (*ledger.SyncJob, error)
}
