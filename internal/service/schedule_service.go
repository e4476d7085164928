package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

type enrollmentReader interface {
	ClassIDsForStudent(ctx context.Context, studentID string) ([]string, error)
}

type lessonReader interface {
	ListByClasses(ctx context.Context, classIDs []string) ([]models.LessonRow, error)
}

// ScheduleService builds a student's weekly timetable.
type ScheduleService struct {
	enrollment enrollmentReader
	lessons    lessonReader
	guard      studentAccessVerifier
	cache      *CacheService
	logger     *zap.Logger
	now        func() time.Time
}

// NewScheduleService constructs a ScheduleService.
func NewScheduleService(enrollment enrollmentReader, lessons lessonReader, guard studentAccessVerifier, cache *CacheService, logger *zap.Logger) *ScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{enrollment: enrollment, lessons: lessons, guard: guard, cache: cache, logger: logger, now: time.Now}
}

// Week returns the timetable of the week containing date (YYYY-MM-DD, today when empty).
func (s *ScheduleService) Week(ctx context.Context, claims *models.JWTClaims, studentID, date string) (*models.WeekSchedule, bool, error) {
	anchor := s.now().UTC()
	if date != "" {
		parsed, err := time.Parse(calendarDateLayout, date)
		if err != nil {
			return nil, false, appErrors.Clone(appErrors.ErrValidation, "week must be in YYYY-MM-DD format")
		}
		anchor = parsed
	}
	if err := s.guard.VerifyStudentAccess(ctx, claims, studentID); err != nil {
		return nil, false, err
	}

	monday := WeekStart(anchor)
	weekKey := monday.Format(calendarDateLayout)
	return loadThrough(ctx, s.cache, CacheKey(FamilySchedule, studentID, weekKey), func() (*models.WeekSchedule, error) {
		classIDs, err := s.enrollment.ClassIDsForStudent(ctx, studentID)
		if err != nil {
			return nil, appErrors.Backend(err, "failed to load enrollment")
		}
		rows, err := s.lessons.ListByClasses(ctx, classIDs)
		if err != nil {
			return nil, appErrors.Backend(err, "failed to load lessons")
		}
		s.logger.Debug("week schedule built", zap.String("student_id", studentID), zap.String("week_start", weekKey), zap.Int("lessons", len(rows)))
		return &models.WeekSchedule{StudentID: studentID, WeekStart: weekKey, Days: MapWeek(rows, monday)}, nil
	})
}
