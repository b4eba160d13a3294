package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	SetJWTSecret("test-secret")

	token, err := GenerateToken("user123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	subject, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user123", subject)
}

func TestValidateRejectsGarbage(t *testing.T) {
	SetJWTSecret("test-secret")

	_, err := ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	SetJWTSecret("secret-one")
	token, err := GenerateToken("user123")
	require.NoError(t, err)

	SetJWTSecret("secret-two")
	_, err = ValidateToken(token)
	assert.Error(t, err)
}
