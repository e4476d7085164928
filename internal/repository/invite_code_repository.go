package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/school-portal-api/internal/models"
)

// ErrDuplicateInviteCode is returned when the generated code already exists.
var ErrDuplicateInviteCode = errors.New("invite code already exists")

// ErrInviteNotRedeemable is returned when the conditional increment matched no row.
var ErrInviteNotRedeemable = errors.New("invite code not redeemable")

// ErrRedeemerNotFound is returned when the redeeming user has no profile row.
var ErrRedeemerNotFound = errors.New("redeeming profile not found")

const uniqueViolation = "23505"

const inviteColumns = `id, code, school_id, role, class_id, usage_limit, times_used, expires_at, is_active, created_by, created_at`

// InviteCodeRepository persists invite codes.
type InviteCodeRepository struct {
	db *sqlx.DB
}

// NewInviteCodeRepository constructs an InviteCodeRepository.
func NewInviteCodeRepository(db *sqlx.DB) *InviteCodeRepository {
	return &InviteCodeRepository{db: db}
}

// Create inserts a new invite code.
func (r *InviteCodeRepository) Create(ctx context.Context, invite *models.InviteCode) error {
	if invite.ID == "" {
		invite.ID = uuid.NewString()
	}
	if invite.CreatedAt.IsZero() {
		invite.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO invite_codes (id, code, school_id, role, class_id, usage_limit, times_used, expires_at, is_active, created_by, created_at)
        VALUES (:id, :code, :school_id, :role, :class_id, :usage_limit, :times_used, :expires_at, :is_active, :created_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, invite); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return ErrDuplicateInviteCode
		}
		return fmt.Errorf("create invite code: %w", err)
	}
	return nil
}

// ClassInSchool reports whether the class belongs to the school.
func (r *InviteCodeRepository) ClassInSchool(ctx context.Context, classID, schoolID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM classes WHERE id = $1 AND school_id = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, classID, schoolID); err != nil {
		return false, fmt.Errorf("check class school: %w", err)
	}
	return exists, nil
}

// FindByCode fetches an invite code; sql.ErrNoRows is returned untouched.
func (r *InviteCodeRepository) FindByCode(ctx context.Context, code string) (*models.InviteCode, error) {
	query := fmt.Sprintf(`SELECT %s FROM invite_codes WHERE code = $1`, inviteColumns)
	var invite models.InviteCode
	if err := r.db.GetContext(ctx, &invite, query, code); err != nil {
		return nil, err
	}
	return &invite, nil
}

// ListBySchool returns the school's codes, newest first.
func (r *InviteCodeRepository) ListBySchool(ctx context.Context, schoolID string, activeOnly bool) ([]models.InviteCode, error) {
	query := fmt.Sprintf(`SELECT %s FROM invite_codes WHERE school_id = $1`, inviteColumns)
	if activeOnly {
		query += " AND is_active = TRUE"
	}
	query += " ORDER BY created_at DESC"
	invites := []models.InviteCode{}
	if err := r.db.SelectContext(ctx, &invites, query, schoolID); err != nil {
		return nil, fmt.Errorf("list invite codes: %w", err)
	}
	return invites, nil
}

// Deactivate switches the code off. Deactivating an inactive code is not an error;
// false is returned only when the school has no such code.
func (r *InviteCodeRepository) Deactivate(ctx context.Context, schoolID, code string) (bool, error) {
	const query = `UPDATE invite_codes SET is_active = FALSE WHERE code = $1 AND school_id = $2`
	res, err := r.db.ExecContext(ctx, query, code, schoolID)
	if err != nil {
		return false, fmt.Errorf("deactivate invite code: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deactivate invite code rows: %w", err)
	}
	return affected > 0, nil
}

// Redeem consumes one use of the code and applies it to the user in a single transaction.
// The usage check lives in the UPDATE predicate so concurrent redemptions cannot overshoot the limit.
func (r *InviteCodeRepository) Redeem(ctx context.Context, code, userID string, now time.Time) (*models.InviteCode, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin redeem invite: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			_ = tx.Rollback()
		}
	}()

	query := fmt.Sprintf(`UPDATE invite_codes SET times_used = times_used + 1
        WHERE code = $1 AND is_active = TRUE AND times_used < usage_limit AND (expires_at IS NULL OR expires_at > $2)
        RETURNING %s`, inviteColumns)
	var invite models.InviteCode
	if err := tx.GetContext(ctx, &invite, query, code, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInviteNotRedeemable
		}
		return nil, fmt.Errorf("increment invite usage: %w", err)
	}

	res, err := tx.ExecContext(ctx, `UPDATE profiles SET role = $2, school_id = $3 WHERE id = $1`, userID, invite.Role, invite.SchoolID)
	if err != nil {
		return nil, fmt.Errorf("apply invite role: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("apply invite role rows: %w", err)
	}
	if affected == 0 {
		return nil, ErrRedeemerNotFound
	}
	if invite.Role == models.RoleStudent && invite.ClassID != nil {
		if _, err := tx.ExecContext(ctx, `INSERT INTO class_students (class_id, student_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, *invite.ClassID, userID); err != nil {
			return nil, fmt.Errorf("enroll invited student: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit redeem invite: %w", err)
	}
	commit = true
	return &invite, nil
}
