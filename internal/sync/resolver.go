package sync

import (
	"context"
	"errors"

	"github.com/openledgerhq/txbridge/internal/ledger"
)

// resolveWindow determines the range to synchronize for a job type. An
// explicit caller-supplied range always wins and is returned verbatim.
// Otherwise the window resumes from the last resumable job's nextStartTime,
// or falls back to the configured lookback on a first run. A ledger transport
// fault also falls back to the lookback: a bounded re-sync beats blocking
// synchronization, and the downstream dedup absorbs any overlap.
func (s *Service) resolveWindow(
	ctx context.Context,
	jobType ledger.JobType,
	explicitStart *int64,
	explicitEnd *int64,
) TimeWindow {
	if explicitStart != nil && explicitEnd != nil {
		return TimeWindow{End: *explicitEnd, Start: *explicitStart}
	}

	now := s.now().UnixMilli()

	job, err := s.ledger.LastResumableSyncJob(ctx, jobType)
	switch {
	case err == nil && job != nil && job.NextStartTime != nil:
		return TimeWindow{End: now, Start: *job.NextStartTime}
	case err != nil && !errors.Is(err, ledger.ErrNoSyncJob):
		s.logger.Warn("sync job lookup failed, using default lookback",
			"job_type", jobType,
			"error", err)
	}

	return TimeWindow{End: now, Start: now - s.lookback.Milliseconds()}
}
