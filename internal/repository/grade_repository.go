package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-portal-api/internal/models"
)

// GradeRepository reads grade rows.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository constructs a GradeRepository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

// ListByStudent returns a student's grades with the subject name resolved inline.
func (r *GradeRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Grade, error) {
	const query = `SELECT g.id, g.student_id, g.subject_id, s.name AS subject_name, g.score,
        COALESCE(g.weight, 1.0) AS weight, COALESCE(g.description, '') AS description, g.date
        FROM grades g
        JOIN subjects s ON s.id = g.subject_id
        WHERE g.student_id = $1
        ORDER BY g.date DESC`
	grades := []models.Grade{}
	if err := r.db.SelectContext(ctx, &grades, query, studentID); err != nil {
		return nil, fmt.Errorf("list grades: %w", err)
	}
	return grades, nil
}
