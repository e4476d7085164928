package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-portal-api/internal/models"
)

// ProfileRepository reads profiles and the relations between them.
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository constructs a ProfileRepository.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// FindByID fetches a single profile.
func (r *ProfileRepository) FindByID(ctx context.Context, id string) (*models.Profile, error) {
	const query = `SELECT id, full_name, email, role, school_id, avatar_url, created_at FROM profiles WHERE id = $1`
	var profile models.Profile
	if err := r.db.GetContext(ctx, &profile, query, id); err != nil {
		return nil, err
	}
	return &profile, nil
}

// ListChildren returns every student linked to the parent once, with the first of their classes by id.
func (r *ProfileRepository) ListChildren(ctx context.Context, parentID string) ([]models.Child, error) {
	const query = `SELECT p.id, p.full_name, p.email, p.role, p.school_id, p.avatar_url, p.created_at,
        cur.class_id, cur.class_name
        FROM parent_student ps
        JOIN profiles p ON p.id = ps.student_id
        LEFT JOIN LATERAL (
            SELECT cs.class_id, c.name AS class_name
            FROM class_students cs
            LEFT JOIN classes c ON c.id = cs.class_id
            WHERE cs.student_id = p.id
            ORDER BY cs.class_id
            LIMIT 1
        ) cur ON TRUE
        WHERE ps.parent_id = $1
        ORDER BY p.full_name ASC, p.id`
	children := []models.Child{}
	if err := r.db.SelectContext(ctx, &children, query, parentID); err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	return children, nil
}

// TeacherHasStudent reports whether the teacher has a lesson in any class of the student.
func (r *ProfileRepository) TeacherHasStudent(ctx context.Context, teacherID, studentID string) (bool, error) {
	const query = `SELECT EXISTS (
        SELECT 1 FROM class_students cs
        JOIN lessons l ON l.class_id = cs.class_id
        WHERE cs.student_id = $1 AND l.teacher_id = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, studentID, teacherID); err != nil {
		return false, fmt.Errorf("check teacher student: %w", err)
	}
	return exists, nil
}

// StudentInSchool reports whether the student profile belongs to the school.
func (r *ProfileRepository) StudentInSchool(ctx context.Context, studentID, schoolID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM profiles WHERE id = $1 AND role = $2 AND school_id = $3)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, studentID, models.RoleStudent, schoolID); err != nil {
		return false, fmt.Errorf("check student school: %w", err)
	}
	return exists, nil
}

// ClassIDsForStudent returns the classes the student is enrolled in.
func (r *ProfileRepository) ClassIDsForStudent(ctx context.Context, studentID string) ([]string, error) {
	const query = `SELECT class_id FROM class_students WHERE student_id = $1 ORDER BY class_id`
	ids := []string{}
	if err := r.db.SelectContext(ctx, &ids, query, studentID); err != nil {
		return nil, fmt.Errorf("list student classes: %w", err)
	}
	return ids, nil
}
