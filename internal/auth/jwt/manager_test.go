package jwt_test

import (
	"testing"
	"time"

	"github.com/maestranza/inventory-backend/internal/auth/jwt"
	"github.com/maestranza/inventory-backend/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(accessExpiry time.Duration) *jwt.Manager {
	return jwt.NewManager(&config.JWTConfig{
		Secret:        "test-secret-for-unit-tests-only",
		AccessExpiry:  accessExpiry,
		RefreshExpiry: 24 * time.Hour,
		Issuer:        "inventory-service-test",
	})
}

func TestGenerateAndValidateTokenPair(t *testing.T) {
	manager := newTestManager(15 * time.Minute)

	pair, err := manager.GenerateTokenPair(&jwt.UserInfo{
		ID:       "user-1",
		Username: "jperez",
		Name:     "Juan Perez",
		Role:     "supervisor",
	})
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	claims, err := manager.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "jperez", claims.Username)
	assert.Equal(t, "supervisor", claims.Role)

	refreshClaims, err := manager.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", refreshClaims.UserID)
}

func TestValidateAccessToken_Expired(t *testing.T) {
	manager := newTestManager(-1 * time.Minute)

	pair, err := manager.GenerateTokenPair(&jwt.UserInfo{ID: "user-1", Username: "jperez"})
	require.NoError(t, err)

	_, err = manager.ValidateAccessToken(pair.AccessToken)
	assert.Error(t, err)
}

func TestValidateAccessToken_WrongSecret(t *testing.T) {
	manager := newTestManager(15 * time.Minute)
	other := jwt.NewManager(&config.JWTConfig{
		Secret:        "a-different-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: 24 * time.Hour,
		Issuer:        "inventory-service-test",
	})

	pair, err := manager.GenerateTokenPair(&jwt.UserInfo{ID: "user-1", Username: "jperez"})
	require.NoError(t, err)

	_, err = other.ValidateAccessToken(pair.AccessToken)
	assert.Error(t, err)

	_, err = other.ValidateRefreshToken(pair.RefreshToken)
	assert.Error(t, err)
}

func TestValidateAccessToken_Garbage(t *testing.T) {
	manager := newTestManager(15 * time.Minute)

	_, err := manager.ValidateAccessToken("not-a-token")
	assert.Error(t, err)
}
