package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/openledgerhq/txbridge/internal/exchange"
	"github.com/openledgerhq/txbridge/internal/ledger"
)

const (
	// defaultChunkSize bounds the worst-case upstream result set per chunk
	// and keeps a single chunk's retry blast radius small.
	defaultChunkSize = 7 * 24 * time.Hour

	// defaultLookback is the window for a first run with no prior job.
	defaultLookback = 90 * 24 * time.Hour

	// defaultPageLimit is the per-request record limit.
	defaultPageLimit = 500

	// defaultSource labels bulk-inserted records in the ledger.
	defaultSource = "exchange"
)

// Config holds the required configuration for creating a Service.
type Config struct {
	// ChunkSize is the maximum span of a single sub-window. Default is 7 days.
	ChunkSize time.Duration

	// DryRun indicates whether to skip writes to the ledger.
	DryRun bool

	// Exchange is the upstream history API client.
	Exchange HistoryClient

	// ExternalUserID identifies the owning user in the ledger.
	ExternalUserID string

	// Ledger is the downstream ledger API client.
	Ledger LedgerClient

	// Logger is the structured logger for the service.
	Logger *slog.Logger

	// Lookback is the window for a first run with no prior job. Default is
	// 90 days.
	Lookback time.Duration

	// PageLimit is the per-request record limit. Default is 500.
	PageLimit int

	// Source labels bulk-inserted records in the ledger. Default is
	// "exchange".
	Source string
}

// validate checks that all required Config fields are set.
func (c *Config) validate() error {
	var errs []error
	if c.Exchange == nil {
		errs = append(errs, errors.New("exchange client is required"))
	}
	if c.ExternalUserID == "" {
		errs = append(errs, errors.New("external user ID is required"))
	}
	if c.Ledger == nil {
		errs = append(errs, errors.New("ledger client is required"))
	}
	return errors.Join(errs...)
}

// Service orchestrates incremental history sync runs. Chunks are processed
// strictly sequentially, and pages within a chunk strictly sequentially; the
// pagination cursor derives from the last seen record, so there is no safe
// internal parallelism. Runs of the same job type must not overlap; callers
// enforce single-flight externally.
type Service struct {
	chunkSize      time.Duration
	dryRun         bool
	exchange       HistoryClient
	externalUserID string
	ledger         LedgerClient
	logger         *slog.Logger
	lookback       time.Duration
	now            func() time.Time
	pageLimit      int
	source         string
}

// New creates a new sync orchestration service.
func New(cfg Config) (*Service, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ledgerClient := cfg.Ledger
	if cfg.DryRun {
		ledgerClient = newDryRunClient(cfg.Ledger, logger)
	}

	chunkSize := cfg.ChunkSize
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}

	lookback := cfg.Lookback
	if lookback <= 0 {
		lookback = defaultLookback
	}

	pageLimit := cfg.PageLimit
	if pageLimit <= 0 {
		pageLimit = defaultPageLimit
	}

	source := cfg.Source
	if source == "" {
		source = defaultSource
	}

	return &Service{
		chunkSize:      chunkSize,
		dryRun:         cfg.DryRun,
		exchange:       cfg.Exchange,
		externalUserID: cfg.ExternalUserID,
		ledger:         ledgerClient,
		logger:         logger,
		lookback:       lookback,
		now:            time.Now,
		pageLimit:      pageLimit,
		source:         source,
	}, nil
}

// Run executes one sync run for the given job type. Both explicit bounds must
// be supplied to override the resolved window. The returned Result always
// carries the terminal status and counters; an error is returned only when
// the run could not be tracked at all.
func (s *Service) Run(
	ctx context.Context,
	jobType ledger.JobType,
	explicitStart *int64,
	explicitEnd *int64,
) (*Result, error) {
	if jobType != ledger.JobTypeDeposit && jobType != ledger.JobTypeWithdraw {
		return nil, fmt.Errorf("unknown job type %q", jobType)
	}

	window := s.resolveWindow(ctx, jobType, explicitStart, explicitEnd)

	// Running untracked is worse than not running: without a job row the run
	// would leave no resumption point and no audit trail.
	job, err := s.ledger.CreateSyncJob(ctx, jobType, window.Start, window.End)
	if err != nil {
		return nil, &LedgerError{Err: err, Op: "creating sync job"}
	}

	s.logger.Info("starting sync run",
		"job_id", job.ID,
		"job_type", jobType,
		"window_start", window.Start,
		"window_end", window.End,
		"dry_run", s.dryRun)

	counters := Counters{}
	var abortErr error

	for _, chunk := range splitWindow(window, s.chunkSize) {
		counters, abortErr = s.syncChunk(ctx, jobType, chunk, counters)
		if abortErr != nil {
			s.logger.Error("chunk aborted",
				"job_id", job.ID,
				"chunk_start", chunk.Start,
				"chunk_end", chunk.End,
				"error", abortErr)
			break
		}
	}

	status, errorMessage := deriveStatus(counters, abortErr)

	result := &Result{
		Counters: counters,
		DryRun:   s.dryRun,
		JobID:    job.ID,
		JobType:  jobType,
		Status:   status,
		Window:   window,
	}

	fin := ledger.JobFinalization{
		RecordsDuplicated: counters.Duplicated,
		RecordsFailed:     counters.Failed,
		RecordsInserted:   counters.Inserted,
		RecordsProcessed:  counters.Processed,
		Status:            status,
	}
	if errorMessage != "" {
		fin.ErrorMessage = &errorMessage
	}
	if status != ledger.JobStatusFailed {
		// One millisecond past the synchronized boundary: the next run starts
		// strictly after this window with no overlap and no gap.
		next := window.End + 1
		fin.NextStartTime = &next
		result.NextStartTime = &next
	}

	if err := s.ledger.FinalizeSyncJob(ctx, job.ID, fin); err != nil {
		// The result still stands; the next run may re-request this window
		// and the downstream dedup absorbs the duplicates.
		s.logger.Error("failed to finalize sync job",
			"job_id", job.ID,
			"error", &LedgerError{Err: err, Op: "finalizing sync job"})
	}

	s.logger.Info("sync run completed",
		"job_id", job.ID,
		"job_type", jobType,
		"status", status,
		"records_processed", counters.Processed,
		"records_inserted", counters.Inserted,
		"records_duplicated", counters.Duplicated,
		"records_failed", counters.Failed,
		"dry_run", s.dryRun)

	return result, nil
}

// syncChunk streams one chunk's pages through transform and bulk load.
func (s *Service) syncChunk(
	ctx context.Context,
	jobType ledger.JobType,
	chunk TimeWindow,
	counters Counters,
) (Counters, error) {
	if jobType == ledger.JobTypeDeposit {
		return syncChunkPages(ctx, s, chunk, counters, s.exchange.DepositHistory, exchange.Deposit.ToTransaction)
	}
	return syncChunkPages(ctx, s, chunk, counters, s.exchange.WithdrawalHistory, exchange.Withdrawal.ToTransaction)
}

// syncChunkPages folds every page of one chunk into the counters. Transform
// failures are counted per record and never abort; a failed bulk call counts
// the whole batch as failed and the run continues; only fetch errors abort.
func syncChunkPages[T record](
	ctx context.Context,
	s *Service,
	chunk TimeWindow,
	counters Counters,
	fetch pageFunc[T],
	transform func(T, string) (ledger.Transaction, error),
) (Counters, error) {
	err := forEachPage(ctx, chunk, s.pageLimit, fetch, func(page []T) error {
		records := make([]ledger.Transaction, 0, len(page))
		transformFailed := 0

		for _, raw := range page {
			tx, err := transform(raw, s.externalUserID)
			if err != nil {
				transformFailed++
				s.logger.Warn("record not transformable", "error", err)
				continue
			}
			records = append(records, tx)
		}

		counters = counters.addProcessed(len(page)).addFailed(transformFailed)

		if len(records) == 0 {
			return nil
		}

		result, err := s.ledger.BulkInsert(ctx, records, s.source, s.externalUserID)
		if err != nil {
			loadErr := &LoadError{Err: err, Records: len(records)}
			s.logger.Error("bulk insert failed, batch counted as failed", "error", loadErr)
			counters = counters.addFailed(loadErr.Records)
			return nil
		}

		counters = counters.addBatch(result)
		return nil
	})

	return counters, err
}

// deriveStatus computes the terminal status for a run. A run fails only when
// an abort occurred before any record was processed; progress plus any
// failure is partial.
func deriveStatus(counters Counters, abortErr error) (ledger.JobStatus, string) {
	switch {
	case abortErr != nil && counters.Processed == 0:
		return ledger.JobStatusFailed, abortErr.Error()
	case abortErr != nil || counters.Failed > 0:
		return ledger.JobStatusPartial, ""
	default:
		return ledger.JobStatusSuccess, ""
	}
}
