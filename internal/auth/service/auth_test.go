package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/maestranza/inventory-backend/internal/auth/jwt"
	"github.com/maestranza/inventory-backend/internal/auth/repository"
	"github.com/maestranza/inventory-backend/internal/auth/service"
	"github.com/maestranza/inventory-backend/pkg/config"
	apperrors "github.com/maestranza/inventory-backend/pkg/errors"
	"github.com/maestranza/inventory-backend/pkg/logger"
	"github.com/maestranza/inventory-backend/pkg/testutil"
)

var userColumns = []string{
	"id", "username", "email", "password_hash", "full_name", "role", "is_active", "created_at", "updated_at",
}

func newAuthService(t *testing.T) (*service.AuthService, sqlmock.Sqlmock) {
	t.Helper()

	mock := testutil.NewMockDB(t)
	t.Cleanup(func() { mock.Close() })

	users := repository.NewUserRepository(mock.DB)
	manager := jwt.NewManager(&config.JWTConfig{
		Secret:        "test-secret-for-unit-tests-only",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: 24 * time.Hour,
		Issuer:        "inventory-service-test",
	})

	return service.NewAuthService(users, manager, logger.New("test", "test")), mock.Mock
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func userRow(id, username, hash string, active bool) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(userColumns).
		AddRow(id, username, username+"@maestranza.cl", hash, "Juan Perez", "operator", active, now, now)
}

func TestLogin_Success(t *testing.T) {
	svc, mock := newAuthService(t)
	hash := hashPassword(t, "secreto123")

	mock.ExpectQuery("FROM users").
		WithArgs("jperez").
		WillReturnRows(userRow("user-1", "jperez", hash, true))

	resp, err := svc.Login(context.Background(), &service.LoginRequest{
		Username: "jperez",
		Password: "secreto123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, "jperez", resp.User.Username)
	assert.Equal(t, "operator", resp.User.Role)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, mock := newAuthService(t)
	hash := hashPassword(t, "secreto123")

	mock.ExpectQuery("FROM users").
		WithArgs("jperez").
		WillReturnRows(userRow("user-1", "jperez", hash, true))

	_, err := svc.Login(context.Background(), &service.LoginRequest{
		Username: "jperez",
		Password: "incorrecta",
	})
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "INVALID_CREDENTIALS", appErr.Code)
}

func TestLogin_UnknownUser(t *testing.T) {
	svc, mock := newAuthService(t)

	mock.ExpectQuery("FROM users").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(userColumns))

	_, err := svc.Login(context.Background(), &service.LoginRequest{
		Username: "ghost",
		Password: "whatever",
	})
	require.Error(t, err)

	// Unknown user and wrong password are indistinguishable to the caller
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "INVALID_CREDENTIALS", appErr.Code)
}

func TestLogin_DisabledAccount(t *testing.T) {
	svc, mock := newAuthService(t)
	hash := hashPassword(t, "secreto123")

	mock.ExpectQuery("FROM users").
		WithArgs("jperez").
		WillReturnRows(userRow("user-1", "jperez", hash, false))

	_, err := svc.Login(context.Background(), &service.LoginRequest{
		Username: "jperez",
		Password: "secreto123",
	})
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "UNAUTHORIZED", appErr.Code)
}

func TestRefresh_Success(t *testing.T) {
	svc, mock := newAuthService(t)
	hash := hashPassword(t, "secreto123")

	mock.ExpectQuery("FROM users").
		WithArgs("jperez").
		WillReturnRows(userRow("user-1", "jperez", hash, true))

	resp, err := svc.Login(context.Background(), &service.LoginRequest{
		Username: "jperez",
		Password: "secreto123",
	})
	require.NoError(t, err)

	mock.ExpectQuery("FROM users").
		WithArgs("user-1").
		WillReturnRows(userRow("user-1", "jperez", hash, true))

	pair, err := svc.Refresh(context.Background(), resp.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
}

func TestRefresh_InvalidToken(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.Refresh(context.Background(), "not-a-token")
	assert.Error(t, err)
}

func TestChangePassword(t *testing.T) {
	svc, mock := newAuthService(t)
	hash := hashPassword(t, "vieja123")

	mock.ExpectQuery("FROM users").
		WithArgs("user-1").
		WillReturnRows(userRow("user-1", "jperez", hash, true))
	mock.ExpectExec("UPDATE users").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := svc.ChangePassword(context.Background(), "user-1", "vieja123", "nueva456")
	require.NoError(t, err)
}

func TestChangePassword_WrongCurrent(t *testing.T) {
	svc, mock := newAuthService(t)
	hash := hashPassword(t, "vieja123")

	mock.ExpectQuery("FROM users").
		WithArgs("user-1").
		WillReturnRows(userRow("user-1", "jperez", hash, true))

	err := svc.ChangePassword(context.Background(), "user-1", "equivocada", "nueva456")
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "INVALID_CREDENTIALS", appErr.Code)
}
