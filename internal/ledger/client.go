package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// ErrNoSyncJob indicates no resumable sync job exists for a job type.
var ErrNoSyncJob = errors.New("no resumable sync job")

// Client is a ledger API client.
type Client struct {
	// apiToken is the bearer token for authentication.
	apiToken string

	// baseURL is the base URL for API requests.
	baseURL string

	// httpClient is the HTTP client for making requests.
	httpClient *http.Client
}

// BulkInsert submits a batch of transactions and returns the store's counts.
// Deduplication is owned entirely by the ledger's uniqueness constraint; the
// returned counts are authoritative.
func (c *Client) BulkInsert(
	ctx context.Context,
	records []Transaction,
	source string,
	externalUserID string,
) (BulkResult, error) {
	reqURL := fmt.Sprintf("%s/v1/transactions/bulk", c.baseURL)

	body := bulkRequest{
		ExternalUserID: externalUserID,
		Records:        records,
		Source:         source,
	}

	var result BulkResult
	if err := c.doRequest(ctx, http.MethodPost, reqURL, body, &result); err != nil {
		return BulkResult{}, fmt.Errorf("bulk inserting transactions: %w", err)
	}

	return result, nil
}

// CreateSyncJob persists a new sync job in running status and returns it with
// its store-assigned ID.
func (c *Client) CreateSyncJob(
	ctx context.Context,
	jobType JobType,
	startTime int64,
	endTime int64,
) (*SyncJob, error) {
	reqURL := fmt.Sprintf("%s/v1/sync-jobs", c.baseURL)

	body := createJobRequest{
		EndTime:   endTime,
		JobType:   jobType,
		StartTime: startTime,
		Status:    JobStatusRunning,
	}

	var job SyncJob
	if err := c.doRequest(ctx, http.MethodPost, reqURL, body, &job); err != nil {
		return nil, fmt.Errorf("creating sync job: %w", err)
	}

	return &job, nil
}

// FinalizeSyncJob writes the terminal state of a sync job. The job is
// immutable once finalized.
func (c *Client) FinalizeSyncJob(ctx context.Context, jobID string, fin JobFinalization) error {
	reqURL := fmt.Sprintf("%s/v1/sync-jobs/%s", c.baseURL, jobID)

	if err := c.doRequest(ctx, http.MethodPatch, reqURL, fin, nil); err != nil {
		return fmt.Errorf("finalizing sync job %s: %w", jobID, err)
	}

	return nil
}

// LastResumableSyncJob returns the most recent success-or-partial job of the
// given type that carries a resumption point, or ErrNoSyncJob if none exists.
func (c *Client) LastResumableSyncJob(ctx context.Context, jobType JobType) (*SyncJob, error) {
	params := url.Values{}
	params.Set("jobType", string(jobType))

	reqURL := fmt.Sprintf("%s/v1/sync-jobs/last-successful?%s", c.baseURL, params.Encode())

	var job SyncJob
	if err := c.doRequest(ctx, http.MethodGet, reqURL, nil, &job); err != nil {
		var httpErr *statusError
		if errors.As(err, &httpErr) && httpErr.code == http.StatusNotFound {
			return nil, ErrNoSyncJob
		}
		return nil, fmt.Errorf("getting last resumable sync job: %w", err)
	}

	return &job, nil
}

// doRequest executes an HTTP request with authentication and JSON encoding.
func (c *Client) doRequest(ctx context.Context, method string, reqURL string, body any, result any) error {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		respBody, _ := io.ReadAll(resp.Body)
		return &statusError{body: string(respBody), code: resp.StatusCode}
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}

// statusError represents a non-2xx API response.
type statusError struct {
	// body is the response body.
	body string

	// code is the HTTP status code.
	code int
}

// Error returns the error message.
func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.code, e.body)
}

// NewClient creates a new ledger API client.
func NewClient(apiToken string, opts ...Option) (*Client, error) {
	if apiToken == "" {
		return nil, errors.New("API token is required")
	}

	o := defaultOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("applying option: %w", err)
		}
	}

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: o.timeout}
	}

	return &Client{
		apiToken:   apiToken,
		baseURL:    o.baseURL,
		httpClient: httpClient,
	}, nil
}
