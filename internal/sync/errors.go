package sync

// FetchError indicates a history page request failed. It aborts the chunk and
// therefore the run; page fetches are never retried inline.
type FetchError struct {
	// Err is the underlying transport or API error.
	Err error
}

// Error returns the error message.
func (e *FetchError) Error() string {
	return "fetching history page: " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// LedgerError indicates a sync job write failed. Fatal at run creation;
// logged and tolerated at finalization.
type LedgerError struct {
	// Err is the underlying transport or API error.
	Err error

	// Op names the failed ledger operation.
	Op string
}

// Error returns the error message.
func (e *LedgerError) Error() string {
	return "ledger " + e.Op + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *LedgerError) Unwrap() error {
	return e.Err
}

// LoadError indicates a bulk insert call itself failed, as opposed to the
// store rejecting individual records. The batch counts as failed and the run
// continues.
type LoadError struct {
	// Err is the underlying transport or API error.
	Err error

	// Records is the size of the batch that was lost.
	Records int
}

// Error returns the error message.
func (e *LoadError) Error() string {
	return "bulk loading batch: " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *LoadError) Unwrap() error {
	return e.Err
}
