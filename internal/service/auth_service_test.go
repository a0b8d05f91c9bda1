package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/enroll-leads-api/internal/models"
	appErrors "github.com/noah-isme/enroll-leads-api/pkg/errors"
)

type mockAdminRepo struct {
	admins map[string]*models.Admin
}

func newMockAdminRepo(t *testing.T, email, password string) *mockAdminRepo {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	admin := &models.Admin{ID: "admin-1", Email: email, PasswordHash: string(hash)}
	return &mockAdminRepo{admins: map[string]*models.Admin{admin.ID: admin}}
}

func (m *mockAdminRepo) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	for _, admin := range m.admins {
		if admin.Email == email {
			return admin, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAdminRepo) FindByID(ctx context.Context, id string) (*models.Admin, error) {
	if admin, ok := m.admins[id]; ok {
		return admin, nil
	}
	return nil, sql.ErrNoRows
}

func testAuthConfig() AuthConfig {
	return AuthConfig{Secret: "test-secret", Expiration: time.Hour, Issuer: "enroll-leads-api"}
}

func TestAuthServiceLoginAndValidate(t *testing.T) {
	repo := newMockAdminRepo(t, "admin@school.edu", "sw0rdfish")
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@school.edu", Password: "sw0rdfish"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "admin-1", resp.Admin.ID)

	claims, err := svc.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", claims.AdminID)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	repo := newMockAdminRepo(t, "admin@school.edu", "sw0rdfish")
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@school.edu", Password: "wrong"})
	assertAppErrorCode(t, err, appErrors.ErrInvalidCredentials.Code)
}

func TestAuthServiceLoginUnknownEmail(t *testing.T) {
	repo := newMockAdminRepo(t, "admin@school.edu", "sw0rdfish")
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "other@school.edu", Password: "sw0rdfish"})
	assertAppErrorCode(t, err, appErrors.ErrInvalidCredentials.Code)
}

func TestAuthServiceLoginInvalidPayload(t *testing.T) {
	repo := newMockAdminRepo(t, "admin@school.edu", "sw0rdfish")
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "not-an-email", Password: "sw0rdfish"})
	assertAppErrorCode(t, err, appErrors.ErrValidation.Code)
}

func TestAuthServiceValidateTokenWrongSecret(t *testing.T) {
	repo := newMockAdminRepo(t, "admin@school.edu", "sw0rdfish")
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@school.edu", Password: "sw0rdfish"})
	require.NoError(t, err)

	other := NewAuthService(repo, nil, nil, AuthConfig{Secret: "another-secret", Expiration: time.Hour})
	_, err = other.ValidateToken(resp.Token)
	assertAppErrorCode(t, err, appErrors.ErrUnauthorized.Code)
}

func TestAuthServiceValidateTokenExpired(t *testing.T) {
	repo := newMockAdminRepo(t, "admin@school.edu", "sw0rdfish")
	cfg := testAuthConfig()
	cfg.Expiration = -time.Minute
	svc := NewAuthService(repo, nil, nil, cfg)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@school.edu", Password: "sw0rdfish"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(resp.Token)
	assertAppErrorCode(t, err, appErrors.ErrUnauthorized.Code)
}

func TestAuthServiceGetAdmin(t *testing.T) {
	repo := newMockAdminRepo(t, "admin@school.edu", "sw0rdfish")
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	info, err := svc.GetAdmin(context.Background(), "admin-1")
	require.NoError(t, err)
	assert.Equal(t, "admin@school.edu", info.Email)
}

func TestAuthServiceGetAdminNotFound(t *testing.T) {
	repo := newMockAdminRepo(t, "admin@school.edu", "sw0rdfish")
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := svc.GetAdmin(context.Background(), "missing")
	assertAppErrorCode(t, err, appErrors.ErrUnauthorized.Code)
}
