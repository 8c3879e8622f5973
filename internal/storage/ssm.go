package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// SSMAPI defines the SSM operations used by the parameter store.
type SSMAPI interface {
	// GetParameter retrieves a parameter from SSM.
	GetParameter(
		ctx context.Context,
		params *ssm.GetParameterInput,
		optFns ...func(*ssm.Options),
	) (*ssm.GetParameterOutput, error)
}

// ParameterStore reads credential material from AWS SSM Parameter Store.
type ParameterStore struct {
	// client is the SSM API client.
	client SSMAPI

	// parameterName is the name of the parameter to read.
	parameterName string
}

// Value returns the decrypted parameter value.
func (p *ParameterStore) Value(ctx context.Context) (string, error) {
	output, err := p.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(p.parameterName),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("getting parameter from SSM: %w", err)
	}

	if output.Parameter == nil || output.Parameter.Value == nil || *output.Parameter.Value == "" {
		return "", fmt.Errorf("parameter %s has no value", p.parameterName)
	}

	return *output.Parameter.Value, nil
}

// NewParameterStore creates a new SSM-backed parameter store.
func NewParameterStore(client SSMAPI, parameterName string) (*ParameterStore, error) {
	if client == nil {
		return nil, errors.New("ssm client is required")
	}
	if parameterName == "" {
		return nil, errors.New("parameter name is required")
	}

	return &ParameterStore{
		client:        client,
		parameterName: parameterName,
	}, nil
}
