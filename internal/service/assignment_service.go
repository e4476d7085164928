package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

type assignmentReader interface {
	ListByClasses(ctx context.Context, classIDs []string) ([]models.Assignment, error)
	SubmissionsByStudent(ctx context.Context, studentID string, assignmentIDs []string) (map[string]models.AssignmentSubmission, error)
}

// AssignmentService lists a student's homework with its derived status.
type AssignmentService struct {
	enrollment  enrollmentReader
	assignments assignmentReader
	guard       studentAccessVerifier
	cache       *CacheService
	logger      *zap.Logger
	now         func() time.Time
}

// NewAssignmentService constructs an AssignmentService.
func NewAssignmentService(enrollment enrollmentReader, assignments assignmentReader, guard studentAccessVerifier, cache *CacheService, logger *zap.Logger) *AssignmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{enrollment: enrollment, assignments: assignments, guard: guard, cache: cache, logger: logger, now: time.Now}
}

// ForStudent returns the assignments of the student's classes paired with the student's submissions.
func (s *AssignmentService) ForStudent(ctx context.Context, claims *models.JWTClaims, studentID string) ([]models.StudentAssignment, bool, error) {
	if err := s.guard.VerifyStudentAccess(ctx, claims, studentID); err != nil {
		return nil, false, err
	}

	return loadThrough(ctx, s.cache, CacheKey(FamilyAssignments, studentID), func() ([]models.StudentAssignment, error) {
		classIDs, err := s.enrollment.ClassIDsForStudent(ctx, studentID)
		if err != nil {
			return nil, appErrors.Backend(err, "failed to load enrollment")
		}
		assignments, err := s.assignments.ListByClasses(ctx, classIDs)
		if err != nil {
			return nil, appErrors.Backend(err, "failed to load assignments")
		}
		ids := make([]string, len(assignments))
		for i, a := range assignments {
			ids[i] = a.ID
		}
		submissions, err := s.assignments.SubmissionsByStudent(ctx, studentID, ids)
		if err != nil {
			return nil, appErrors.Backend(err, "failed to load submissions")
		}

		now := s.now()
		out := make([]models.StudentAssignment, 0, len(assignments))
		for _, a := range assignments {
			item := models.StudentAssignment{Assignment: a, SubjectColor: SubjectColor(a.SubjectID)}
			if sub, ok := submissions[a.ID]; ok {
				sub := sub
				item.Submission = &sub
			}
			item.Status = AssignmentStatusFor(a, item.Submission, now)
			out = append(out, item)
		}
		return out, nil
	})
}

// AssignmentStatusFor derives the status: graded, then submitted, then overdue once the due date passed.
func AssignmentStatusFor(a models.Assignment, submission *models.AssignmentSubmission, now time.Time) models.AssignmentStatus {
	switch {
	case submission != nil && submission.Grade != nil:
		return models.AssignmentGraded
	case submission != nil:
		return models.AssignmentSubmitted
	case a.DueDate != nil && now.After(*a.DueDate):
		return models.AssignmentOverdue
	default:
		return models.AssignmentPending
	}
}
