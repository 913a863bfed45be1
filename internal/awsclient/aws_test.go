package awsclient

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockSecretsManager struct {
	mock.Mock
}

func (m *MockSecretsManager) GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*secretsmanager.GetSecretValueOutput)
	return out, args.Error(1)
}

func TestGetSecretString(t *testing.T) {
	client := new(MockSecretsManager)
	client.On("GetSecretValue", mock.Anything, mock.MatchedBy(func(in *secretsmanager.GetSecretValueInput) bool {
		return *in.SecretId == "chat/jwt"
	})).Return(&secretsmanager.GetSecretValueOutput{SecretString: aws.String("key")}, nil)

	value, err := GetSecretString(context.Background(), client, "chat/jwt")

	assert.NoError(t, err)
	assert.Equal(t, "key", value)
	client.AssertExpectations(t)
}

func TestGetSecretString_Errors(t *testing.T) {
	client := new(MockSecretsManager)
	client.On("GetSecretValue", mock.Anything, mock.Anything).Return(nil, errors.New("denied")).Once()
	client.On("GetSecretValue", mock.Anything, mock.Anything).Return(&secretsmanager.GetSecretValueOutput{}, nil).Once()

	_, err := GetSecretString(context.Background(), client, "chat/jwt")
	assert.ErrorContains(t, err, "denied")

	_, err = GetSecretString(context.Background(), client, "chat/jwt")
	assert.ErrorContains(t, err, "no string value")
}
