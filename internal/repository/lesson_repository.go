package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-portal-api/internal/models"
)

// LessonRepository reads the weekly lesson plan.
type LessonRepository struct {
	db *sqlx.DB
}

// NewLessonRepository constructs a LessonRepository.
func NewLessonRepository(db *sqlx.DB) *LessonRepository {
	return &LessonRepository{db: db}
}

// ListByClasses returns lessons of the classes ordered by day then start time.
func (r *LessonRepository) ListByClasses(ctx context.Context, classIDs []string) ([]models.LessonRow, error) {
	if len(classIDs) == 0 {
		return []models.LessonRow{}, nil
	}
	query, args, err := sqlx.In(`SELECT l.id, l.class_id, l.subject_id, s.name AS subject_name, t.full_name AS teacher_name,
        l.day_of_week, l.start_time, l.end_time, l.room, l.status
        FROM lessons l
        JOIN subjects s ON s.id = l.subject_id
        LEFT JOIN profiles t ON t.id = l.teacher_id
        WHERE l.class_id IN (?)
        ORDER BY l.day_of_week ASC, l.start_time ASC`, classIDs)
	if err != nil {
		return nil, fmt.Errorf("build lesson query: %w", err)
	}
	rows := []models.LessonRow{}
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	return rows, nil
}
