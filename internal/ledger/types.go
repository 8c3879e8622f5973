// Package ledger provides a client for the downstream accounting ledger API.
package ledger

import "encoding/json"

const (
	// AccountFunding is the account bucket for internal transfer movements.
	AccountFunding = "funding"

	// AccountPrimary is the account bucket for external movements.
	AccountPrimary = "primary"
)

const (
	// JobTypeDeposit identifies deposit history synchronization.
	JobTypeDeposit JobType = "deposit"

	// JobTypeWithdraw identifies withdrawal history synchronization.
	JobTypeWithdraw JobType = "withdraw"
)

const (
	// JobStatusFailed marks a run that made no progress before aborting.
	JobStatusFailed JobStatus = "failed"

	// JobStatusPartial marks a run that made progress but had failures.
	JobStatusPartial JobStatus = "partial"

	// JobStatusRunning is the initial, transient run status.
	JobStatusRunning JobStatus = "running"

	// JobStatusSuccess marks a run that completed with zero failures.
	JobStatusSuccess JobStatus = "success"
)

const (
	// OperationDeposit marks a positive balance movement.
	OperationDeposit Operation = "deposit"

	// OperationWithdraw marks a negative balance movement.
	OperationWithdraw Operation = "withdraw"
)

// BulkResult contains the store-authoritative counts for a bulk insert.
type BulkResult struct {
	// Duplicated is the number of records rejected by the uniqueness constraint.
	Duplicated int `json:"duplicated"`

	// Failed is the number of records the store could not insert.
	Failed int `json:"failed"`

	// Inserted is the number of records newly inserted.
	Inserted int `json:"inserted"`
}

// JobFinalization contains the single terminal write for a sync job.
type JobFinalization struct {
	// ErrorMessage describes the aborting error. Set only when Status is failed.
	ErrorMessage *string `json:"errorMessage,omitempty"`

	// NextStartTime is the resumption point for the next run, in Unix
	// milliseconds. Set only for resumable terminal statuses.
	NextStartTime *int64 `json:"nextStartTime,omitempty"`

	// RecordsDuplicated is the total of store-reported duplicates.
	RecordsDuplicated int `json:"recordsDuplicated"`

	// RecordsFailed is the total of transform and load failures.
	RecordsFailed int `json:"recordsFailed"`

	// RecordsInserted is the total of store-reported inserts.
	RecordsInserted int `json:"recordsInserted"`

	// RecordsProcessed is the total of upstream records seen.
	RecordsProcessed int `json:"recordsProcessed"`

	// Status is the terminal run status.
	Status JobStatus `json:"status"`
}

// JobStatus represents the lifecycle state of a sync job.
type JobStatus string

// JobType represents the category of transaction history being synchronized.
type JobType string

// Operation represents the direction of a balance movement.
type Operation string

// SyncJob is one persisted synchronization run.
type SyncJob struct {
	// EndTime is the inclusive window end, in Unix milliseconds.
	EndTime int64 `json:"endTime"`

	// ErrorMessage describes the aborting error for failed runs.
	ErrorMessage string `json:"errorMessage,omitempty"`

	// ID is the store-assigned job identifier.
	ID string `json:"id"`

	// JobType is the history category this run synchronized.
	JobType JobType `json:"jobType"`

	// NextStartTime is the resumption point for the next run, in Unix
	// milliseconds. Present only on resumable terminal runs.
	NextStartTime *int64 `json:"nextStartTime,omitempty"`

	// RecordsDuplicated is the total of store-reported duplicates.
	RecordsDuplicated int `json:"recordsDuplicated"`

	// RecordsFailed is the total of transform and load failures.
	RecordsFailed int `json:"recordsFailed"`

	// RecordsInserted is the total of store-reported inserts.
	RecordsInserted int `json:"recordsInserted"`

	// RecordsProcessed is the total of upstream records seen.
	RecordsProcessed int `json:"recordsProcessed"`

	// StartTime is the inclusive window start, in Unix milliseconds.
	StartTime int64 `json:"startTime"`

	// Status is the current run status.
	Status JobStatus `json:"status"`
}

// Transaction is the canonical transaction record accepted by the ledger.
type Transaction struct {
	// Account is the canonical account bucket the movement belongs to.
	Account string `json:"account"`

	// Asset is the asset symbol.
	Asset string `json:"asset"`

	// ChangeAmount is the signed decimal amount as an exact string. It is
	// never parsed into floating point; downstream reconciliation depends on
	// exact precision.
	ChangeAmount string `json:"changeAmount"`

	// ExternalUserID identifies the owning user in the ledger.
	ExternalUserID string `json:"externalUserId"`

	// OccurredAt is the movement timestamp, in Unix milliseconds.
	OccurredAt int64 `json:"occurredAt"`

	// Operation is the movement direction.
	Operation Operation `json:"operation"`

	// RawPayload is the upstream record as received, for audit.
	RawPayload json.RawMessage `json:"rawPayload,omitempty"`

	// Remark is composed free text describing the movement.
	Remark string `json:"remark,omitempty"`
}

// bulkRequest is the request body for a bulk transaction insert.
type bulkRequest struct {
	// ExternalUserID identifies the owning user.
	ExternalUserID string `json:"externalUserId"`

	// Records contains the transactions to insert.
	Records []Transaction `json:"records"`

	// Source labels where the records came from.
	Source string `json:"source"`
}

// createJobRequest is the request body for creating a sync job.
type createJobRequest struct {
	// EndTime is the inclusive window end, in Unix milliseconds.
	EndTime int64 `json:"endTime"`

	// JobType is the history category for the run.
	JobType JobType `json:"jobType"`

	// StartTime is the inclusive window start, in Unix milliseconds.
	StartTime int64 `json:"startTime"`

	// Status is the initial run status.
	Status JobStatus `json:"status"`
}
