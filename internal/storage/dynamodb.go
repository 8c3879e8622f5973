// Package storage provides AWS-backed persistence for the sync service.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// defaultLeaseDuration bounds how long an abandoned lock blocks later runs.
// A lease outlives any plausible Lambda invocation, so expiry only ever
// releases locks left by a crashed run.
const defaultLeaseDuration = 30 * time.Minute

// ErrLockHeld indicates a run of the same job type currently holds the lock.
var ErrLockHeld = errors.New("sync run lock is held")

// DynamoDBAPI defines the DynamoDB operations used by the run lock.
type DynamoDBAPI interface {
	// DeleteItem removes an item from DynamoDB.
	DeleteItem(
		ctx context.Context,
		params *dynamodb.DeleteItemInput,
		optFns ...func(*dynamodb.Options),
	) (*dynamodb.DeleteItemOutput, error)

	// PutItem stores an item in DynamoDB.
	PutItem(
		ctx context.Context,
		params *dynamodb.PutItemInput,
		optFns ...func(*dynamodb.Options),
	) (*dynamodb.PutItemOutput, error)
}

// RunLock enforces single-flight sync runs per job type. Two runs of the same
// type would race on the resolver's last-window read, so the caller acquires
// the lock before running and releases it after.
type RunLock struct {
	// client is the DynamoDB API client.
	client DynamoDBAPI

	// leaseDuration is how long an acquired lock remains valid.
	leaseDuration time.Duration

	// now supplies the current time for lease comparisons.
	now func() time.Time

	// tableName is the name of the DynamoDB lock table.
	tableName string
}

// Acquire takes the lock for a job type. It returns ErrLockHeld when another
// run holds an unexpired lease.
func (l *RunLock) Acquire(ctx context.Context, jobType string) error {
	if jobType == "" {
		return errors.New("job type is required")
	}

	now := l.now()
	expiresAt := now.Add(l.leaseDuration)

	_, err := l.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(l.tableName),
		ConditionExpression: aws.String("attribute_not_exists(job_type) OR expires_at < :now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":now": &types.AttributeValueMemberN{Value: strconv.FormatInt(now.UnixMilli(), 10)},
		},
		Item: map[string]types.AttributeValue{
			"job_type":   &types.AttributeValueMemberS{Value: jobType},
			"expires_at": &types.AttributeValueMemberN{Value: strconv.FormatInt(expiresAt.UnixMilli(), 10)},
		},
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return ErrLockHeld
		}
		return fmt.Errorf("putting lock item to DynamoDB: %w", err)
	}

	return nil
}

// Release frees the lock for a job type.
func (l *RunLock) Release(ctx context.Context, jobType string) error {
	if jobType == "" {
		return errors.New("job type is required")
	}

	_, err := l.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(l.tableName),
		Key: map[string]types.AttributeValue{
			"job_type": &types.AttributeValueMemberS{Value: jobType},
		},
	})
	if err != nil {
		return fmt.Errorf("deleting lock item from DynamoDB: %w", err)
	}

	return nil
}

// RunLockOption configures a RunLock.
type RunLockOption func(*RunLock)

// WithLeaseDuration sets how long an acquired lock remains valid.
func WithLeaseDuration(d time.Duration) RunLockOption {
	return func(l *RunLock) {
		l.leaseDuration = d
	}
}

// NewRunLock creates a new DynamoDB-backed run lock.
func NewRunLock(client DynamoDBAPI, tableName string, opts ...RunLockOption) (*RunLock, error) {
	if client == nil {
		return nil, errors.New("dynamodb client is required")
	}
	if tableName == "" {
		return nil, errors.New("table name is required")
	}

	lock := &RunLock{
		client:        client,
		leaseDuration: defaultLeaseDuration,
		now:           time.Now,
		tableName:     tableName,
	}

	for _, opt := range opts {
		opt(lock)
	}

	return lock, nil
}
