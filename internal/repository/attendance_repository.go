package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-portal-api/internal/models"
)

const attendanceColumns = `a.id, a.student_id, a.lesson_id, a.date, a.status,
        l.subject_id, s.name AS subject_name, l.start_time AS lesson_start_time, l.end_time AS lesson_end_time,
        a.note, a.excuse_note, a.excuse_status, a.excuse_attachment_url, a.recorded_by, a.recorded_at`

const attendanceJoins = `FROM attendance a
        LEFT JOIN lessons l ON l.id = a.lesson_id
        LEFT JOIN subjects s ON s.id = l.subject_id`

// AttendanceRepository handles persistence for lesson attendance.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// ListByStudent returns a student's attendance in the inclusive date window.
func (r *AttendanceRepository) ListByStudent(ctx context.Context, filter models.AttendanceFilter) ([]models.Attendance, error) {
	query := fmt.Sprintf(`SELECT %s
        %s
        WHERE a.student_id = $1 AND a.date >= $2 AND a.date <= $3
        ORDER BY a.date ASC, l.start_time ASC`, attendanceColumns, attendanceJoins)
	rows := []models.Attendance{}
	if err := r.db.SelectContext(ctx, &rows, query, filter.StudentID, filter.From, filter.To); err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return rows, nil
}

// FindByID fetches a single attendance row; sql.ErrNoRows is returned untouched.
func (r *AttendanceRepository) FindByID(ctx context.Context, id string) (*models.Attendance, error) {
	query := fmt.Sprintf(`SELECT %s
        %s
        WHERE a.id = $1`, attendanceColumns, attendanceJoins)
	var row models.Attendance
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, err
	}
	return &row, nil
}

// Upsert records attendance for a student in a lesson on a date.
func (r *AttendanceRepository) Upsert(ctx context.Context, record *models.Attendance) (*models.Attendance, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.ExcuseStatus == "" {
		record.ExcuseStatus = models.ExcuseStatusNone
	}
	now := time.Now().UTC()
	record.RecordedAt = &now
	const query = `INSERT INTO attendance (id, student_id, lesson_id, date, status, note, excuse_status, recorded_by, recorded_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (student_id, lesson_id, date)
DO UPDATE SET status = EXCLUDED.status, note = EXCLUDED.note, recorded_by = EXCLUDED.recorded_by, recorded_at = EXCLUDED.recorded_at
RETURNING id, student_id, lesson_id, date, status, note, excuse_note, excuse_status, excuse_attachment_url, recorded_by, recorded_at`
	var stored models.Attendance
	if err := r.db.GetContext(ctx, &stored, query, record.ID, record.StudentID, record.LessonID, record.Date, record.Status, record.Note, record.ExcuseStatus, record.RecordedBy, record.RecordedAt); err != nil {
		return nil, fmt.Errorf("upsert attendance: %w", err)
	}
	return &stored, nil
}

// SubmitExcuse marks the excuse as pending review. Returns false when the row is absent,
// its status is not excusable or its excuse was already approved.
func (r *AttendanceRepository) SubmitExcuse(ctx context.Context, id, note string, attachmentURL *string) (bool, error) {
	const query = `UPDATE attendance SET excuse_status = $2, excuse_note = $3, excuse_attachment_url = $4
WHERE id = $1 AND excuse_status <> $5 AND status IN ($6, $7, $8)`
	res, err := r.db.ExecContext(ctx, query, id, models.ExcuseStatusPending, note, attachmentURL,
		models.ExcuseStatusApproved, models.AttendanceStatusAbsent, models.AttendanceStatusLate, models.AttendanceStatusLeftEarly)
	if err != nil {
		return false, fmt.Errorf("submit excuse: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("submit excuse rows: %w", err)
	}
	return affected > 0, nil
}

// ReviewExcuse resolves a pending excuse; approval also turns the status into excused.
// Returns false when the row is absent or has no pending excuse.
func (r *AttendanceRepository) ReviewExcuse(ctx context.Context, id string, approve bool) (bool, error) {
	outcome := models.ExcuseStatusRejected
	if approve {
		outcome = models.ExcuseStatusApproved
	}
	const query = `UPDATE attendance
SET excuse_status = $2, status = CASE WHEN $3 THEN $4 ELSE status END
WHERE id = $1 AND excuse_status = $5`
	res, err := r.db.ExecContext(ctx, query, id, outcome, approve, models.AttendanceStatusExcused, models.ExcuseStatusPending)
	if err != nil {
		return false, fmt.Errorf("review excuse: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("review excuse rows: %w", err)
	}
	return affected > 0, nil
}
