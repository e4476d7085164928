package repository

import (
	"context"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal-api/internal/models"
)

func TestAuditRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewAuditRepository(db)

	mock.ExpectExec(`INSERT INTO audit_logs`).WillReturnResult(sqlmock.NewResult(1, 1))

	entry := &models.AuditLog{Action: models.AuditActionInviteIssue, Resource: "invite_code", IPAddress: "10.0.0.1"}
	require.NoError(t, repo.Create(context.Background(), entry))
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepositoryCreateError(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewAuditRepository(db)

	mock.ExpectExec(`INSERT INTO audit_logs`).WillReturnError(errors.New("disk full"))

	err := repo.Create(context.Background(), &models.AuditLog{Action: models.AuditActionExcuseReview, Resource: "attendance"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create audit log")
}
