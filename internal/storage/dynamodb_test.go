package storage

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"
)

type mockDynamoDBClient struct {
	deleteItemFunc func(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	putItemFunc    func(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

func (m *mockDynamoDBClient) DeleteItem(
	ctx context.Context,
	params *dynamodb.DeleteItemInput,
	optFns ...func(*dynamodb.Options),
) (*dynamodb.DeleteItemOutput, error) {
	if m.deleteItemFunc != nil {
		return m.deleteItemFunc(ctx, params, optFns...)
	}
	return &dynamodb.DeleteItemOutput{}, nil
}

func (m *mockDynamoDBClient) PutItem(
	ctx context.Context,
	params *dynamodb.PutItemInput,
	optFns ...func(*dynamodb.Options),
) (*dynamodb.PutItemOutput, error) {
	if m.putItemFunc != nil {
		return m.putItemFunc(ctx, params, optFns...)
	}
	return &dynamodb.PutItemOutput{}, nil
}

func TestNewRunLock(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		client    DynamoDBAPI
		errMsg    string
		tableName string
		wantErr   bool
	}{
		"valid inputs": {
			client:    &mockDynamoDBClient{},
			tableName: "sync-locks",
			wantErr:   false,
		},
		"nil client": {
			client:    nil,
			tableName: "sync-locks",
			wantErr:   true,
			errMsg:    "dynamodb client is required",
		},
		"empty table name": {
			client:    &mockDynamoDBClient{},
			tableName: "",
			wantErr:   true,
			errMsg:    "table name is required",
		},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			lock, err := NewRunLock(tc.client, tc.tableName)

			if tc.wantErr {
				require.Error(t, err)
				require.Contains(t, err.Error(), tc.errMsg)
				require.Nil(t, lock)
			} else {
				require.NoError(t, err)
				require.NotNil(t, lock)
			}
		})
	}
}

func TestRunLock_Acquire(t *testing.T) {
	t.Parallel()

	t.Run("writes a conditional lease", func(t *testing.T) {
		t.Parallel()

		now := time.UnixMilli(1_700_000_000_000)

		var captured *dynamodb.PutItemInput
		client := &mockDynamoDBClient{
			putItemFunc: func(_ context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
				captured = params
				return &dynamodb.PutItemOutput{}, nil
			},
		}

		lock, err := NewRunLock(client, "sync-locks", WithLeaseDuration(10*time.Minute))
		require.NoError(t, err)
		lock.now = func() time.Time { return now }

		require.NoError(t, lock.Acquire(context.Background(), "deposit"))

		require.NotNil(t, captured)
		require.Equal(t, "sync-locks", *captured.TableName)
		require.Contains(t, *captured.ConditionExpression, "attribute_not_exists(job_type)")

		jobType, ok := captured.Item["job_type"].(*types.AttributeValueMemberS)
		require.True(t, ok)
		require.Equal(t, "deposit", jobType.Value)

		expiresAt, ok := captured.Item["expires_at"].(*types.AttributeValueMemberN)
		require.True(t, ok)
		want := now.Add(10 * time.Minute).UnixMilli()
		require.Equal(t, strconv.FormatInt(want, 10), expiresAt.Value)
	})

	t.Run("maps conditional failure to ErrLockHeld", func(t *testing.T) {
		t.Parallel()

		client := &mockDynamoDBClient{
			putItemFunc: func(_ context.Context, _ *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
				return nil, &types.ConditionalCheckFailedException{}
			},
		}

		lock, err := NewRunLock(client, "sync-locks")
		require.NoError(t, err)

		err = lock.Acquire(context.Background(), "deposit")

		require.ErrorIs(t, err, ErrLockHeld)
	})

	t.Run("propagates other errors", func(t *testing.T) {
		t.Parallel()

		client := &mockDynamoDBClient{
			putItemFunc: func(_ context.Context, _ *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
				return nil, errors.New("throttled")
			},
		}

		lock, err := NewRunLock(client, "sync-locks")
		require.NoError(t, err)

		err = lock.Acquire(context.Background(), "deposit")

		require.Error(t, err)
		require.NotErrorIs(t, err, ErrLockHeld)
	})

	t.Run("requires a job type", func(t *testing.T) {
		t.Parallel()

		lock, err := NewRunLock(&mockDynamoDBClient{}, "sync-locks")
		require.NoError(t, err)

		require.Error(t, lock.Acquire(context.Background(), ""))
	})
}

func TestRunLock_Release(t *testing.T) {
	t.Parallel()

	var captured *dynamodb.DeleteItemInput
	client := &mockDynamoDBClient{
		deleteItemFunc: func(_ context.Context, params *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
			captured = params
			return &dynamodb.DeleteItemOutput{}, nil
		},
	}

	lock, err := NewRunLock(client, "sync-locks")
	require.NoError(t, err)

	require.NoError(t, lock.Release(context.Background(), "withdraw"))

	require.NotNil(t, captured)
	require.Equal(t, "sync-locks", *captured.TableName)

	jobType, ok := captured.Key["job_type"].(*types.AttributeValueMemberS)
	require.True(t, ok)
	require.Equal(t, "withdraw", jobType.Value)
}
