// Package sync provides orchestration for incrementally synchronizing
// exchange transaction history into the ledger.
package sync

import (
	"github.com/openledgerhq/txbridge/internal/ledger"
)

// Counters accumulates record totals for one sync run. It is a value type;
// the add methods return a new value, leaving the receiver unchanged.
type Counters struct {
	// Duplicated is the total of store-reported duplicate rejections.
	Duplicated int

	// Failed is the total of transform failures, failed batches, and
	// store-reported per-record failures.
	Failed int

	// Inserted is the total of store-reported inserts.
	Inserted int

	// Processed is the total of upstream records seen.
	Processed int
}

// addBatch folds a bulk insert result into the counters.
func (c Counters) addBatch(r ledger.BulkResult) Counters {
	c.Duplicated += r.Duplicated
	c.Failed += r.Failed
	c.Inserted += r.Inserted
	return c
}

// addFailed records n failed records.
func (c Counters) addFailed(n int) Counters {
	c.Failed += n
	return c
}

// addProcessed records n upstream records seen.
func (c Counters) addProcessed(n int) Counters {
	c.Processed += n
	return c
}

// Result contains the outcome of a sync run.
type Result struct {
	// Counters holds the final record totals.
	Counters Counters

	// DryRun indicates this was a dry-run (no writes to the ledger).
	DryRun bool

	// JobID is the ledger-assigned sync job identifier.
	JobID string

	// JobType is the history category that was synchronized.
	JobType ledger.JobType

	// NextStartTime is the resumption point for the next run, in Unix
	// milliseconds. Present only for resumable terminal statuses.
	NextStartTime *int64

	// Status is the terminal run status.
	Status ledger.JobStatus

	// Window is the time range this run covered.
	Window TimeWindow
}
