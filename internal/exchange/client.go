package exchange

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client is an exchange account-history API client.
type Client struct {
	// apiKey is the API key sent with each request.
	apiKey string

	// baseURL is the base URL for API requests.
	baseURL string

	// httpClient is the HTTP client for making requests.
	httpClient *http.Client

	// now supplies the request timestamp for signing.
	now func() time.Time

	// secretKey signs request query strings.
	secretKey string
}

// DepositHistory fetches one page of deposit records for the inclusive
// [startTime, endTime] range, ascending by insert time. A page shorter than
// limit means the range is exhausted.
func (c *Client) DepositHistory(
	ctx context.Context,
	startTime int64,
	endTime int64,
	limit int,
) ([]Deposit, error) {
	raws, err := c.fetchHistoryPage(ctx, "/v1/capital/deposit/history", startTime, endTime, limit)
	if err != nil {
		return nil, err
	}

	deposits := make([]Deposit, 0, len(raws))
	for _, raw := range raws {
		var d Deposit
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("decoding deposit record: %w", err)
		}
		d.Raw = raw
		deposits = append(deposits, d)
	}

	return deposits, nil
}

// WithdrawalHistory fetches one page of withdrawal records for the inclusive
// [startTime, endTime] range, ascending by apply time. A page shorter than
// limit means the range is exhausted.
func (c *Client) WithdrawalHistory(
	ctx context.Context,
	startTime int64,
	endTime int64,
	limit int,
) ([]Withdrawal, error) {
	raws, err := c.fetchHistoryPage(ctx, "/v1/capital/withdraw/history", startTime, endTime, limit)
	if err != nil {
		return nil, err
	}

	withdrawals := make([]Withdrawal, 0, len(raws))
	for _, raw := range raws {
		var w Withdrawal
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, fmt.Errorf("decoding withdrawal record: %w", err)
		}
		w.Raw = raw
		withdrawals = append(withdrawals, w)
	}

	return withdrawals, nil
}

// fetchHistoryPage executes one signed history request and returns the raw
// records so callers can retain the original payloads.
func (c *Client) fetchHistoryPage(
	ctx context.Context,
	path string,
	startTime int64,
	endTime int64,
	limit int,
) ([]json.RawMessage, error) {
	params := url.Values{}
	params.Set("startTime", strconv.FormatInt(startTime, 10))
	params.Set("endTime", strconv.FormatInt(endTime, 10))
	params.Set("limit", strconv.Itoa(limit))
	params.Set("timestamp", strconv.FormatInt(c.now().UnixMilli(), 10))

	query := params.Encode()
	query += "&signature=" + c.sign(query)

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var raws []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raws); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return raws, nil
}

// sign returns the hex HMAC-SHA256 signature of the query string.
func (c *Client) sign(query string) string {
	mac := hmac.New(sha256.New, []byte(c.secretKey))
	mac.Write([]byte(query))
	return hex.EncodeToString(mac.Sum(nil))
}

// NewClient creates a new exchange API client.
func NewClient(apiKey string, secretKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("API key is required")
	}
	if secretKey == "" {
		return nil, errors.New("secret key is required")
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
		apiKey:     apiKey,
		baseURL:    o.baseURL,
		httpClient: httpClient,
		now:        time.Now,
		secretKey:  secretKey,
	}, nil
}
