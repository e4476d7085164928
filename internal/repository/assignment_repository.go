package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-portal-api/internal/models"
)

// AssignmentRepository reads assignments and submissions.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs an AssignmentRepository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// ListByClasses returns assignments published to the classes, soonest due first.
func (r *AssignmentRepository) ListByClasses(ctx context.Context, classIDs []string) ([]models.Assignment, error) {
	if len(classIDs) == 0 {
		return []models.Assignment{}, nil
	}
	query, args, err := sqlx.In(`SELECT a.id, a.class_id, a.subject_id, s.name AS subject_name, a.title, a.description, a.due_date, a.created_at
        FROM assignments a
        JOIN subjects s ON s.id = a.subject_id
        WHERE a.class_id IN (?)
        ORDER BY a.due_date ASC NULLS LAST, a.created_at DESC`, classIDs)
	if err != nil {
		return nil, fmt.Errorf("build assignment query: %w", err)
	}
	rows := []models.Assignment{}
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return rows, nil
}

// SubmissionsByStudent returns the student's submissions keyed by assignment ID.
func (r *AssignmentRepository) SubmissionsByStudent(ctx context.Context, studentID string, assignmentIDs []string) (map[string]models.AssignmentSubmission, error) {
	result := make(map[string]models.AssignmentSubmission)
	if len(assignmentIDs) == 0 {
		return result, nil
	}
	query, args, err := sqlx.In(`SELECT id, assignment_id, student_id, submitted_at, grade, feedback
        FROM assignment_submissions
        WHERE student_id = ? AND assignment_id IN (?)`, studentID, assignmentIDs)
	if err != nil {
		return nil, fmt.Errorf("build submission query: %w", err)
	}
	var rows []models.AssignmentSubmission
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	for _, row := range rows {
		result[row.AssignmentID] = row
	}
	return result, nil
}
