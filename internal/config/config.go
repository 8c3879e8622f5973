// Package config provides configuration loading from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	// EnvDryRun skips ledger writes when set to "true".
	EnvDryRun = "DRY_RUN"

	// EnvExchangeAPIBaseURL is the base URL for the exchange API.
	EnvExchangeAPIBaseURL = "EXCHANGE_API_BASE_URL"

	// EnvExchangeAPIKeyParameter is the SSM parameter storing the exchange
	// API key.
	EnvExchangeAPIKeyParameter = "EXCHANGE_API_KEY_PARAMETER"

	// EnvExchangeAPISecretARN is the Secrets Manager ARN for the exchange
	// signing secret.
	EnvExchangeAPISecretARN = "EXCHANGE_API_SECRET_ARN"

	// EnvExternalUserID is the ledger user the synchronized records belong to.
	EnvExternalUserID = "EXTERNAL_USER_ID"

	// EnvLedgerAPIBaseURL is the base URL for the ledger API.
	EnvLedgerAPIBaseURL = "LEDGER_API_BASE_URL"

	// EnvLedgerAPIToken is the bearer token for the ledger API.
	EnvLedgerAPIToken = "LEDGER_API_TOKEN"

	// EnvLockTableName is the DynamoDB table for the per-job-type run lock.
	EnvLockTableName = "LOCK_TABLE_NAME"

	// EnvSyncChunkDays is the chunk span in days (default: 7).
	EnvSyncChunkDays = "SYNC_CHUNK_DAYS"

	// EnvSyncLookbackDays is the first-run lookback in days (default: 90).
	EnvSyncLookbackDays = "SYNC_LOOKBACK_DAYS"

	// EnvSyncPageLimit is the per-request record limit (default: 500).
	EnvSyncPageLimit = "SYNC_PAGE_LIMIT"

	// EnvSyncSource is the source label put on ledger records (default:
	// exchange).
	EnvSyncSource = "SYNC_SOURCE"
)

// Exchange holds exchange API configuration.
type Exchange struct {
	// APIBaseURL is the base URL for API requests.
	APIBaseURL string

	// APIKeyParameter is the SSM parameter storing the API key.
	APIKeyParameter string

	// APISecretARN is the Secrets Manager ARN storing the signing secret.
	APISecretARN string
}

// Ledger holds ledger API configuration.
type Ledger struct {
	// APIBaseURL is the base URL for API requests.
	APIBaseURL string

	// APIToken is the bearer token for authentication.
	APIToken string
}

// Lock holds run lock configuration.
type Lock struct {
	// TableName is the name of the DynamoDB lock table.
	TableName string
}

// Sync holds sync run configuration.
type Sync struct {
	// ChunkDays is the chunk span in days.
	ChunkDays int

	// DryRun indicates whether to skip ledger writes.
	DryRun bool

	// ExternalUserID is the ledger user the records belong to.
	ExternalUserID string

	// LookbackDays is the first-run lookback in days.
	LookbackDays int

	// PageLimit is the per-request record limit.
	PageLimit int

	// Source is the source label put on ledger records.
	Source string
}

// Settings holds all configuration for the application.
type Settings struct {
	// Exchange contains exchange API settings.
	Exchange Exchange

	// Ledger contains ledger API settings.
	Ledger Ledger

	// Lock contains run lock settings.
	Lock Lock

	// Sync contains sync run settings.
	Sync Sync
}

func (s *Settings) validate() error {
	var errs []error

	if s.Exchange.APIKeyParameter == "" {
		errs = append(errs, requiredError(EnvExchangeAPIKeyParameter))
	}
	if s.Exchange.APISecretARN == "" {
		errs = append(errs, requiredError(EnvExchangeAPISecretARN))
	}
	if s.Ledger.APIBaseURL == "" {
		errs = append(errs, requiredError(EnvLedgerAPIBaseURL))
	}
	if s.Ledger.APIToken == "" {
		errs = append(errs, requiredError(EnvLedgerAPIToken))
	}
	if s.Lock.TableName == "" {
		errs = append(errs, requiredError(EnvLockTableName))
	}
	if s.Sync.ExternalUserID == "" {
		errs = append(errs, requiredError(EnvExternalUserID))
	}
	if s.Sync.ChunkDays <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive", EnvSyncChunkDays))
	}
	if s.Sync.LookbackDays <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive", EnvSyncLookbackDays))
	}
	if s.Sync.PageLimit <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive", EnvSyncPageLimit))
	}

	return errors.Join(errs...)
}

// Load reads configuration from environment variables.
func Load() (*Settings, error) {
	chunkDays, err := envIntOrDefault(EnvSyncChunkDays, 7)
	if err != nil {
		return nil, err
	}

	lookbackDays, err := envIntOrDefault(EnvSyncLookbackDays, 90)
	if err != nil {
		return nil, err
	}

	pageLimit, err := envIntOrDefault(EnvSyncPageLimit, 500)
	if err != nil {
		return nil, err
	}

	cfg := &Settings{
		Exchange: Exchange{
			APIBaseURL:      envOrDefault(EnvExchangeAPIBaseURL, "https://api.chainvault.exchange"),
			APIKeyParameter: strings.TrimSpace(os.Getenv(EnvExchangeAPIKeyParameter)),
			APISecretARN:    strings.TrimSpace(os.Getenv(EnvExchangeAPISecretARN)),
		},
		Ledger: Ledger{
			APIBaseURL: strings.TrimSpace(os.Getenv(EnvLedgerAPIBaseURL)),
			APIToken:   strings.TrimSpace(os.Getenv(EnvLedgerAPIToken)),
		},
		Lock: Lock{
			TableName: strings.TrimSpace(os.Getenv(EnvLockTableName)),
		},
		Sync: Sync{
			ChunkDays:      chunkDays,
			DryRun:         strings.EqualFold(strings.TrimSpace(os.Getenv(EnvDryRun)), "true"),
			ExternalUserID: strings.TrimSpace(os.Getenv(EnvExternalUserID)),
			LookbackDays:   lookbackDays,
			PageLimit:      pageLimit,
			Source:         envOrDefault(EnvSyncSource, "exchange"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func envIntOrDefault(key string, defaultValue int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}

	return n, nil
}

func envOrDefault(key string, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func requiredError(envVar string) error {
	return fmt.Errorf("%s is required", envVar)
}
