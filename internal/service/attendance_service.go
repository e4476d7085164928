package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
	"github.com/noah-isme/school-portal-api/pkg/validation"
)

const (
	monthLayout       = "2006-01"
	maxAttendanceSpan = 366 * 24 * time.Hour
)

type attendanceStore interface {
	ListByStudent(ctx context.Context, filter models.AttendanceFilter) ([]models.Attendance, error)
	FindByID(ctx context.Context, id string) (*models.Attendance, error)
	Upsert(ctx context.Context, record *models.Attendance) (*models.Attendance, error)
	SubmitExcuse(ctx context.Context, id, note string, attachmentURL *string) (bool, error)
	ReviewExcuse(ctx context.Context, id string, approve bool) (bool, error)
}

type attendanceAccessGuard interface {
	studentAccessVerifier
	VerifyChildAccess(ctx context.Context, parentID, childID string) error
}

type cacheInvalidator interface {
	Invalidate(ctx context.Context, family, subject string) error
}

// RecordAttendanceRequest is the teacher-side attendance write.
type RecordAttendanceRequest struct {
	StudentID string  `json:"student_id" validate:"required"`
	LessonID  string  `json:"lesson_id" validate:"required"`
	Date      string  `json:"date" validate:"required,datetime=2006-01-02"`
	Status    string  `json:"status" validate:"required,attendance_status"`
	Note      *string `json:"note" validate:"omitempty,max=500"`
}

// SubmitExcuseRequest is a parent's justification for an absence or lateness.
type SubmitExcuseRequest struct {
	Note          string  `json:"note" validate:"required,notblank,max=1000"`
	AttachmentURL *string `json:"attachment_url" validate:"omitempty,url"`
}

// ReviewExcuseRequest carries a teacher's decision on a pending excuse.
type ReviewExcuseRequest struct {
	Approve *bool `json:"approve" validate:"required"`
}

// AttendanceService serves calendars, summaries and the excuse workflow.
type AttendanceService struct {
	store       attendanceStore
	guard       attendanceAccessGuard
	cache       *CacheService
	invalidator cacheInvalidator
	validator   *validation.Validator
	logger      *zap.Logger
}

// NewAttendanceService constructs an AttendanceService.
func NewAttendanceService(store attendanceStore, guard attendanceAccessGuard, cache *CacheService, invalidator cacheInvalidator, validate *validation.Validator, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{
		store:       store,
		guard:       guard,
		cache:       cache,
		invalidator: invalidator,
		validator:   validate,
		logger:      logger,
	}
}

// Month returns the calendar and stats of a student for a YYYY-MM month.
func (s *AttendanceService) Month(ctx context.Context, claims *models.JWTClaims, studentID, month string) (*models.AttendanceMonth, bool, error) {
	start, err := time.Parse(monthLayout, month)
	if err != nil {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "month must be in YYYY-MM format")
	}
	if err := s.guard.VerifyStudentAccess(ctx, claims, studentID); err != nil {
		return nil, false, err
	}

	end := start.AddDate(0, 1, -1)
	return loadThrough(ctx, s.cache, CacheKey(FamilyAttendanceMonth, studentID, month), func() (*models.AttendanceMonth, error) {
		records, err := s.store.ListByStudent(ctx, models.AttendanceFilter{StudentID: studentID, From: start, To: end})
		if err != nil {
			s.logger.Error("list attendance failed", zap.String("student_id", studentID), zap.Error(err))
			return nil, appErrors.Backend(err, "failed to load attendance")
		}
		return &models.AttendanceMonth{
			StudentID: studentID,
			Month:     month,
			Days:      BuildCalendar(records),
			Stats:     SummarizeAttendance(statusesOf(records)),
		}, nil
	})
}

// Range returns records and stats between two inclusive YYYY-MM-DD dates.
func (s *AttendanceService) Range(ctx context.Context, claims *models.JWTClaims, studentID, from, to string) (*models.AttendanceRange, error) {
	start, err := time.Parse(calendarDateLayout, from)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "from must be in YYYY-MM-DD format")
	}
	end, err := time.Parse(calendarDateLayout, to)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "to must be in YYYY-MM-DD format")
	}
	if end.Before(start) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "from must not be after to")
	}
	if end.Sub(start) > maxAttendanceSpan {
		return nil, appErrors.Clone(appErrors.ErrValidation, "range must not exceed one year")
	}
	if err := s.guard.VerifyStudentAccess(ctx, claims, studentID); err != nil {
		return nil, err
	}

	records, err := s.store.ListByStudent(ctx, models.AttendanceFilter{StudentID: studentID, From: start, To: end})
	if err != nil {
		s.logger.Error("list attendance failed", zap.String("student_id", studentID), zap.Error(err))
		return nil, appErrors.Backend(err, "failed to load attendance")
	}
	return &models.AttendanceRange{
		StudentID: studentID,
		From:      from,
		To:        to,
		Records:   records,
		Stats:     SummarizeAttendance(statusesOf(records)),
	}, nil
}

// Record stores attendance for a lesson. Only staff may write, and teachers only for their students.
func (s *AttendanceService) Record(ctx context.Context, claims *models.JWTClaims, req RecordAttendanceRequest) (*models.Attendance, error) {
	if claims == nil || claims.UserID == "" {
		return nil, appErrors.ErrAuthenticationRequired
	}
	if !claims.Role.Info().IsStaff {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only staff can record attendance")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}
	if err := s.guard.VerifyStudentAccess(ctx, claims, req.StudentID); err != nil {
		return nil, err
	}

	date, _ := time.Parse(calendarDateLayout, req.Date)
	recordedBy := claims.UserID
	stored, err := s.store.Upsert(ctx, &models.Attendance{
		StudentID:  req.StudentID,
		LessonID:   req.LessonID,
		Date:       date,
		Status:     models.AttendanceStatus(req.Status),
		Note:       req.Note,
		RecordedBy: &recordedBy,
	})
	if err != nil {
		return nil, appErrors.Backend(err, "failed to record attendance")
	}

	s.invalidate(ctx, req.StudentID)
	s.logger.Info("attendance recorded",
		zap.String("student_id", req.StudentID),
		zap.String("lesson_id", req.LessonID),
		zap.String("status", req.Status),
		zap.String("recorded_by", recordedBy),
	)
	return stored, nil
}

// SubmitExcuse lets a parent justify an absence, lateness or early leave of their child.
// A missing record and a foreign child both report access denied.
func (s *AttendanceService) SubmitExcuse(ctx context.Context, claims *models.JWTClaims, attendanceID string, req SubmitExcuseRequest) (*models.Attendance, error) {
	if claims == nil || claims.UserID == "" {
		return nil, appErrors.ErrAuthenticationRequired
	}
	if claims.Role != models.RoleParent {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only parents can submit excuses")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	record, err := s.store.FindByID(ctx, attendanceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrAccessDenied
		}
		return nil, appErrors.Backend(err, "failed to load attendance")
	}
	if err := s.guard.VerifyChildAccess(ctx, claims.UserID, record.StudentID); err != nil {
		return nil, err
	}
	if !record.Status.Excusable() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "only absences, late arrivals and early leaves can be excused")
	}
	if record.ExcuseStatus == models.ExcuseStatusApproved {
		return nil, appErrors.Clone(appErrors.ErrConflict, "excuse already approved")
	}

	updated, err := s.store.SubmitExcuse(ctx, attendanceID, req.Note, req.AttachmentURL)
	if err != nil {
		return nil, appErrors.Backend(err, "failed to submit excuse")
	}
	if !updated {
		return nil, appErrors.Clone(appErrors.ErrConflict, "excuse can no longer be submitted for this record")
	}

	record.ExcuseNote = &req.Note
	record.ExcuseAttachmentURL = req.AttachmentURL
	record.ExcuseStatus = models.ExcuseStatusPending
	s.invalidate(ctx, record.StudentID)
	s.logger.Info("excuse submitted", zap.String("attendance_id", attendanceID), zap.String("parent_id", claims.UserID))
	return record, nil
}

// ReviewExcuse approves or rejects a pending excuse. Approval marks the lesson excused.
func (s *AttendanceService) ReviewExcuse(ctx context.Context, claims *models.JWTClaims, attendanceID string, req ReviewExcuseRequest) (*models.Attendance, error) {
	if claims == nil || claims.UserID == "" {
		return nil, appErrors.ErrAuthenticationRequired
	}
	if !claims.Role.Info().IsStaff {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only staff can review excuses")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	record, err := s.store.FindByID(ctx, attendanceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "attendance record not found")
		}
		return nil, appErrors.Backend(err, "failed to load attendance")
	}
	if err := s.guard.VerifyStudentAccess(ctx, claims, record.StudentID); err != nil {
		return nil, err
	}

	approve := *req.Approve
	updated, err := s.store.ReviewExcuse(ctx, attendanceID, approve)
	if err != nil {
		return nil, appErrors.Backend(err, "failed to review excuse")
	}
	if !updated {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no pending excuse for this record")
	}

	if approve {
		record.ExcuseStatus = models.ExcuseStatusApproved
		record.Status = models.AttendanceStatusExcused
	} else {
		record.ExcuseStatus = models.ExcuseStatusRejected
	}
	s.invalidate(ctx, record.StudentID)
	s.logger.Info("excuse reviewed",
		zap.String("attendance_id", attendanceID),
		zap.String("reviewer_id", claims.UserID),
		zap.Bool("approved", approve),
	)
	return record, nil
}

func (s *AttendanceService) invalidate(ctx context.Context, studentID string) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Invalidate(ctx, FamilyAttendanceRecords, studentID); err != nil {
		s.logger.Warn("attendance cache invalidation failed", zap.String("student_id", studentID), zap.Error(err))
	}
}
