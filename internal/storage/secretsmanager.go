package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// SecretsManagerAPI defines the Secrets Manager operations used by the
// secret store.
type SecretsManagerAPI interface {
	// GetSecretValue retrieves a secret value.
	GetSecretValue(
		ctx context.Context,
		params *secretsmanager.GetSecretValueInput,
		optFns ...func(*secretsmanager.Options),
	) (*secretsmanager.GetSecretValueOutput, error)
}

// SecretStore reads the exchange signing secret from AWS Secrets Manager.
type SecretStore struct {
	// client is the Secrets Manager API client.
	client SecretsManagerAPI

	// secretARN is the ARN of the secret to read.
	secretARN string
}

// Secret returns the current secret value.
func (s *SecretStore) Secret(ctx context.Context) (string, error) {
	output, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(s.secretARN),
	})
	if err != nil {
		return "", fmt.Errorf("getting secret from Secrets Manager: %w", err)
	}

	if output.SecretString == nil || *output.SecretString == "" {
		return "", errors.New("secret has no string value")
	}

	return *output.SecretString, nil
}

// NewSecretStore creates a new Secrets Manager-backed secret store.
func NewSecretStore(client SecretsManagerAPI, secretARN string) (*SecretStore, error) {
	if client == nil {
		return nil, errors.New("secretsmanager client is required")
	}
	if secretARN == "" {
		return nil, errors.New("secret ARN is required")
	}

	return &SecretStore{
		client:    client,
		secretARN: secretARN,
	}, nil
}
