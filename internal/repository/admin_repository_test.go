package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/enroll-leads-api/internal/models"
)

func TestAdminRepositoryFindByEmail(t *testing.T) {
	db, mock, cleanup := newLeadMock(t)
	defer cleanup()
	repo := NewAdminRepository(db)

	rows := sqlmock.NewRows([]string{"id", "email", "password_hash", "created_at"}).
		AddRow("admin-1", "admin@school.edu", "$2a$12$hash", time.Now())
	mock.ExpectQuery("SELECT id, email, password_hash, created_at FROM admins WHERE email").
		WithArgs("admin@school.edu").
		WillReturnRows(rows)

	admin, err := repo.FindByEmail(context.Background(), "admin@school.edu")
	require.NoError(t, err)
	assert.Equal(t, "admin-1", admin.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminRepositoryFindByEmailNotFound(t *testing.T) {
	db, mock, cleanup := newLeadMock(t)
	defer cleanup()
	repo := NewAdminRepository(db)

	mock.ExpectQuery("SELECT id, email, password_hash, created_at FROM admins WHERE email").
		WithArgs("missing@school.edu").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByEmail(context.Background(), "missing@school.edu")
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestAdminRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newLeadMock(t)
	defer cleanup()
	repo := NewAdminRepository(db)

	mock.ExpectExec("INSERT INTO admins").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	admin := &models.Admin{Email: "admin@school.edu", PasswordHash: "$2a$12$hash"}
	err := repo.Upsert(context.Background(), admin)
	require.NoError(t, err)
	assert.NotEmpty(t, admin.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
