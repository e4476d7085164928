package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal-api/internal/models"
)

var inviteRowColumns = []string{"id", "code", "school_id", "role", "class_id", "usage_limit", "times_used", "expires_at", "is_active", "created_by", "created_at"}

func TestInviteCodeRepositoryCreateDuplicate(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewInviteCodeRepository(db)

	mock.ExpectExec(`INSERT INTO invite_codes`).WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key"})

	err := repo.Create(context.Background(), &models.InviteCode{Code: "ABCD2345", SchoolID: "school-1", Role: models.RoleTeacher, UsageLimit: 1, IsActive: true})
	assert.ErrorIs(t, err, ErrDuplicateInviteCode)
}

func TestInviteCodeRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewInviteCodeRepository(db)

	mock.ExpectExec(`INSERT INTO invite_codes`).
		WithArgs(sqlmock.AnyArg(), "ABCD2345", "school-1", models.RoleTeacher, nil, 2, 0, nil, true, nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	invite := &models.InviteCode{Code: "ABCD2345", SchoolID: "school-1", Role: models.RoleTeacher, UsageLimit: 2, IsActive: true}
	require.NoError(t, repo.Create(context.Background(), invite))
	assert.NotEmpty(t, invite.ID)
	assert.False(t, invite.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInviteCodeRepositoryRedeemStudentWithClass(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewInviteCodeRepository(db)
	now := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE invite_codes SET times_used = times_used \+ 1\s+WHERE code = \$1 AND is_active = TRUE AND times_used < usage_limit AND \(expires_at IS NULL OR expires_at > \$2\)`).
		WithArgs("STUD2024", now).
		WillReturnRows(sqlmock.NewRows(inviteRowColumns).
			AddRow("inv-1", "STUD2024", "school-1", "student", "class-1", 30, 5, nil, true, "principal-1", now))
	mock.ExpectExec(`UPDATE profiles SET role = \$2, school_id = \$3 WHERE id = \$1`).
		WithArgs("user-9", models.RoleStudent, "school-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO class_students`).
		WithArgs("class-1", "user-9").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	invite, err := repo.Redeem(context.Background(), "STUD2024", "user-9", now)
	require.NoError(t, err)
	assert.Equal(t, 5, invite.TimesUsed)
	assert.Equal(t, models.RoleStudent, invite.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInviteCodeRepositoryRedeemExhausted(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewInviteCodeRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE invite_codes SET times_used = times_used \+ 1`).
		WillReturnRows(sqlmock.NewRows(inviteRowColumns))
	mock.ExpectRollback()

	_, err := repo.Redeem(context.Background(), "USED0001", "user-9", time.Now())
	assert.ErrorIs(t, err, ErrInviteNotRedeemable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInviteCodeRepositoryRedeemWithoutProfileRollsBack(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewInviteCodeRepository(db)
	now := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE invite_codes SET times_used = times_used \+ 1`).
		WithArgs("TEACH001", now).
		WillReturnRows(sqlmock.NewRows(inviteRowColumns).
			AddRow("inv-2", "TEACH001", "school-1", "teacher", nil, 3, 1, nil, true, "principal-1", now))
	mock.ExpectExec(`UPDATE profiles SET role = \$2, school_id = \$3 WHERE id = \$1`).
		WithArgs("ghost", models.RoleTeacher, "school-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.Redeem(context.Background(), "TEACH001", "ghost", now)
	assert.ErrorIs(t, err, ErrRedeemerNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInviteCodeRepositoryDeactivateIsScopedToSchool(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewInviteCodeRepository(db)

	mock.ExpectExec(`UPDATE invite_codes SET is_active = FALSE WHERE code = \$1 AND school_id = \$2`).
		WithArgs("ABCD2345", "school-2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	found, err := repo.Deactivate(context.Background(), "school-2", "ABCD2345")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInviteCodeRepositoryListActiveOnly(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewInviteCodeRepository(db)

	mock.ExpectQuery(`FROM invite_codes WHERE school_id = \$1 AND is_active = TRUE ORDER BY created_at DESC`).
		WithArgs("school-1").
		WillReturnRows(sqlmock.NewRows(inviteRowColumns).
			AddRow("inv-1", "ABCD2345", "school-1", "teacher", nil, 1, 0, nil, true, nil, time.Now()))

	invites, err := repo.ListBySchool(context.Background(), "school-1", true)
	require.NoError(t, err)
	assert.Len(t, invites, 1)
}

func TestInviteCodeRepositoryClassInSchool(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewInviteCodeRepository(db)

	mock.ExpectQuery(`FROM classes WHERE id = \$1 AND school_id = \$2`).
		WithArgs("class-1", "school-A").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.ClassInSchool(context.Background(), "class-1", "school-A")
	require.NoError(t, err)
	assert.True(t, ok)

	mock.ExpectQuery(`FROM classes`).WillReturnError(errors.New("timeout"))
	_, err = repo.ClassInSchool(context.Background(), "class-1", "school-A")
	assert.ErrorContains(t, err, "check class school")
}
