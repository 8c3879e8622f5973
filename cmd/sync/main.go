// Package main provides the Lambda handler entry point for txbridge.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/ssm"

	"github.com/openledgerhq/txbridge/internal/config"
	"github.com/openledgerhq/txbridge/internal/exchange"
	"github.com/openledgerhq/txbridge/internal/ledger"
	"github.com/openledgerhq/txbridge/internal/storage"
	"github.com/openledgerhq/txbridge/internal/sync"
)

// Event is the Lambda invoke payload. All fields are optional; an empty event
// synchronizes both job types over their resolved windows.
type Event struct {
	// DryRun skips ledger writes for this invocation.
	DryRun bool `json:"dryRun"`

	// EndTime overrides the window end, in Unix milliseconds. Both bounds
	// must be supplied for the override to apply.
	EndTime *int64 `json:"endTime"`

	// JobTypes restricts the run to the listed types.
	JobTypes []string `json:"jobTypes"`

	// StartTime overrides the window start, in Unix milliseconds.
	StartTime *int64 `json:"startTime"`
}

// Response summarizes the invocation for the caller.
type Response struct {
	// Results contains one entry per executed sync run.
	Results []*sync.Result `json:"results"`

	// Skipped lists job types whose run lock was held.
	Skipped []string `json:"skipped,omitempty"`
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	lambda.Start(handler)
}

func handler(ctx context.Context, event Event) (*Response, error) {
	logger := slog.Default()

	settings, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	jobTypes, err := resolveJobTypes(event.JobTypes)
	if err != nil {
		return nil, err
	}

	if event.StartTime != nil && event.EndTime != nil {
		if _, err := sync.NewTimeWindow(*event.StartTime, *event.EndTime); err != nil {
			return nil, fmt.Errorf("invalid explicit window: %w", err)
		}
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	service, lock, err := buildService(ctx, settings, awsCfg, event.DryRun, logger)
	if err != nil {
		return nil, err
	}

	response := &Response{}

	for _, jobType := range jobTypes {
		if err := lock.Acquire(ctx, string(jobType)); err != nil {
			if errors.Is(err, storage.ErrLockHeld) {
				logger.Warn("run lock held, skipping job type", "job_type", jobType)
				response.Skipped = append(response.Skipped, string(jobType))
				continue
			}
			return nil, fmt.Errorf("acquiring run lock for %s: %w", jobType, err)
		}

		result, runErr := service.Run(ctx, jobType, event.StartTime, event.EndTime)

		if err := lock.Release(ctx, string(jobType)); err != nil {
			// The lease expires on its own; the next run is delayed, not blocked.
			logger.Error("failed to release run lock", "job_type", jobType, "error", err)
		}

		if runErr != nil {
			return nil, fmt.Errorf("running %s sync: %w", jobType, runErr)
		}

		response.Results = append(response.Results, result)
	}

	return response, nil
}

// buildService wires the AWS clients, credentials, and API clients into a
// sync service and its run lock.
func buildService(
	ctx context.Context,
	settings *config.Settings,
	awsCfg aws.Config,
	dryRun bool,
	logger *slog.Logger,
) (*sync.Service, *storage.RunLock, error) {
	parameterStore, err := storage.NewParameterStore(
		ssm.NewFromConfig(awsCfg),
		settings.Exchange.APIKeyParameter,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("creating parameter store: %w", err)
	}

	apiKey, err := parameterStore.Value(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("reading exchange API key: %w", err)
	}

	secretStore, err := storage.NewSecretStore(
		secretsmanager.NewFromConfig(awsCfg),
		settings.Exchange.APISecretARN,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("creating secret store: %w", err)
	}

	secretKey, err := secretStore.Secret(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("reading exchange signing secret: %w", err)
	}

	exchangeClient, err := exchange.NewClient(
		apiKey,
		secretKey,
		exchange.WithBaseURL(settings.Exchange.APIBaseURL),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("creating exchange client: %w", err)
	}

	ledgerClient, err := ledger.NewClient(
		settings.Ledger.APIToken,
		ledger.WithBaseURL(settings.Ledger.APIBaseURL),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("creating ledger client: %w", err)
	}

	lock, err := storage.NewRunLock(dynamodb.NewFromConfig(awsCfg), settings.Lock.TableName)
	if err != nil {
		return nil, nil, fmt.Errorf("creating run lock: %w", err)
	}

	service, err := sync.New(sync.Config{
		ChunkSize:      time.Duration(settings.Sync.ChunkDays) * 24 * time.Hour,
		DryRun:         settings.Sync.DryRun || dryRun,
		Exchange:       exchangeClient,
		ExternalUserID: settings.Sync.ExternalUserID,
		Ledger:         ledgerClient,
		Logger:         logger,
		Lookback:       time.Duration(settings.Sync.LookbackDays) * 24 * time.Hour,
		PageLimit:      settings.Sync.PageLimit,
		Source:         settings.Sync.Source,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating sync service: %w", err)
	}

	return service, lock, nil
}

// resolveJobTypes maps event job type names to their ledger values,
// defaulting to both types.
func resolveJobTypes(names []string) ([]ledger.JobType, error) {
	if len(names) == 0 {
		return []ledger.JobType{ledger.JobTypeDeposit, ledger.JobTypeWithdraw}, nil
	}

	jobTypes := make([]ledger.JobType, 0, len(names))
	for _, name := range names {
		switch ledger.JobType(name) {
		case ledger.JobTypeDeposit:
			jobTypes = append(jobTypes, ledger.JobTypeDeposit)
		case ledger.JobTypeWithdraw:
			jobTypes = append(jobTypes, ledger.JobTypeWithdraw)
		default:
			return nil, fmt.Errorf("unknown job type %q", name)
		}
	}

	return jobTypes, nil
}
