package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

type gradeReader interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.Grade, error)
}

type studentAccessVerifier interface {
	VerifyStudentAccess(ctx context.Context, claims *models.JWTClaims, studentID string) error
}

// GradeService builds a student's per-subject gradebook.
type GradeService struct {
	grades gradeReader
	guard  studentAccessVerifier
	cache  *CacheService
	logger *zap.Logger
}

// NewGradeService constructs a GradeService.
func NewGradeService(grades gradeReader, guard studentAccessVerifier, cache *CacheService, logger *zap.Logger) *GradeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{grades: grades, guard: guard, cache: cache, logger: logger}
}

// BySubject returns the student's grades grouped by subject and ordered by subject name.
// The boolean reports whether the result came from cache.
func (s *GradeService) BySubject(ctx context.Context, claims *models.JWTClaims, studentID string) (*models.StudentGrades, bool, error) {
	if err := s.guard.VerifyStudentAccess(ctx, claims, studentID); err != nil {
		return nil, false, err
	}

	result, hit, err := loadThrough(ctx, s.cache, CacheKey(FamilyGrades, studentID), func() (*models.StudentGrades, error) {
		grades, err := s.grades.ListByStudent(ctx, studentID)
		if err != nil {
			return nil, appErrors.Backend(err, "failed to load grades")
		}
		subjects := GroupGradesBySubject(grades)
		return &models.StudentGrades{
			StudentID:      studentID,
			OverallAverage: s.Overall(subjects),
			Subjects:       subjects,
		}, nil
	})
	if err != nil {
		s.logger.Error("load grades failed", zap.String("student_id", studentID), zap.Error(err))
		return nil, false, err
	}
	return result, hit, nil
}

// Overall averages the subject averages that have grades.
func (s *GradeService) Overall(subjects []models.SubjectGradeStats) float64 {
	return OverallAverage(subjects)
}
