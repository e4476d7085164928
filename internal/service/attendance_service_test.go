package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

type fakeAttendanceStore struct {
	records      map[string]*models.Attendance
	listed       []models.AttendanceFilter
	upserted     *models.Attendance
	excuseCalls  int
	reviewCalls  int
	reviewResult bool
	// raced simulates a review that lands between FindByID and SubmitExcuse.
	raced map[string]bool
}

func newFakeAttendanceStore(records ...models.Attendance) *fakeAttendanceStore {
	store := &fakeAttendanceStore{records: make(map[string]*models.Attendance), reviewResult: true}
	for i := range records {
		r := records[i]
		store.records[r.ID] = &r
	}
	return store
}

func (f *fakeAttendanceStore) ListByStudent(_ context.Context, filter models.AttendanceFilter) ([]models.Attendance, error) {
	f.listed = append(f.listed, filter)
	out := []models.Attendance{}
	for _, r := range f.records {
		if r.StudentID == filter.StudentID && !r.Date.Before(filter.From) && !r.Date.After(filter.To) {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeAttendanceStore) FindByID(_ context.Context, id string) (*models.Attendance, error) {
	r, ok := f.records[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *r
	return &clone, nil
}

func (f *fakeAttendanceStore) Upsert(_ context.Context, record *models.Attendance) (*models.Attendance, error) {
	f.upserted = record
	stored := *record
	stored.ID = "att-new"
	return &stored, nil
}

func (f *fakeAttendanceStore) SubmitExcuse(_ context.Context, id, _ string, _ *string) (bool, error) {
	f.excuseCalls++
	r, ok := f.records[id]
	if !ok || f.raced[id] {
		return false, nil
	}
	return r.Status.Excusable() && r.ExcuseStatus != models.ExcuseStatusApproved, nil
}

func (f *fakeAttendanceStore) ReviewExcuse(_ context.Context, _ string, _ bool) (bool, error) {
	f.reviewCalls++
	return f.reviewResult, nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func attendanceFixture() *fakeAttendanceStore {
	return newFakeAttendanceStore(
		models.Attendance{ID: "a1", StudentID: "kid-1", Date: day(2024, 3, 4), Status: models.AttendanceStatusPresent},
		models.Attendance{ID: "a2", StudentID: "kid-1", Date: day(2024, 3, 4), Status: models.AttendanceStatusAbsent, ExcuseStatus: models.ExcuseStatusNone},
		models.Attendance{ID: "a3", StudentID: "kid-1", Date: day(2024, 3, 5), Status: models.AttendanceStatusLate, ExcuseStatus: models.ExcuseStatusPending},
		models.Attendance{ID: "a4", StudentID: "kid-1", Date: day(2024, 4, 1), Status: models.AttendanceStatusPresent},
		models.Attendance{ID: "a5", StudentID: "kid-2", Date: day(2024, 3, 4), Status: models.AttendanceStatusAbsent},
	)
}

func attendanceGuard() *stubGuard {
	return &stubGuard{allowed: map[string][]string{
		"kid-1": {"parent-1", "teacher-1"},
		"kid-2": {"parent-2"},
	}}
}

var (
	parentClaims  = &models.JWTClaims{UserID: "parent-1", Role: models.RoleParent}
	teacherClaims = &models.JWTClaims{UserID: "teacher-1", Role: models.RoleTeacher}
)

func TestAttendanceMonth(t *testing.T) {
	store := attendanceFixture()
	svc := NewAttendanceService(store, attendanceGuard(), nil, nil, nil, nil)

	month, hit, err := svc.Month(context.Background(), parentClaims, "kid-1", "2024-03")

	require.NoError(t, err)
	assert.False(t, hit)
	require.Len(t, store.listed, 1)
	assert.Equal(t, day(2024, 3, 1), store.listed[0].From)
	assert.Equal(t, day(2024, 3, 31), store.listed[0].To)
	require.Len(t, month.Days, 2)
	assert.Equal(t, models.DailyPartialAbsent, month.Days[0].Status)
	assert.Equal(t, models.DailyWasLate, month.Days[1].Status)
	assert.Equal(t, 3, month.Stats.TotalDays)
	assert.Equal(t, 1, month.Stats.LateDays)
}

func TestAttendanceMonthRejectsBadFormat(t *testing.T) {
	svc := NewAttendanceService(attendanceFixture(), attendanceGuard(), nil, nil, nil, nil)

	for _, month := range []string{"2024-13", "03-2024", "2024/03", ""} {
		_, _, err := svc.Month(context.Background(), parentClaims, "kid-1", month)
		assert.ErrorIs(t, err, appErrors.ErrValidation, month)
	}
}

func TestAttendanceMonthDeniesForeignChild(t *testing.T) {
	store := attendanceFixture()
	svc := NewAttendanceService(store, attendanceGuard(), nil, nil, nil, nil)

	_, _, err := svc.Month(context.Background(), parentClaims, "kid-2", "2024-03")

	assert.ErrorIs(t, err, appErrors.ErrAccessDenied)
	assert.Empty(t, store.listed)
}

func TestAttendanceRange(t *testing.T) {
	svc := NewAttendanceService(attendanceFixture(), attendanceGuard(), nil, nil, nil, nil)

	result, err := svc.Range(context.Background(), parentClaims, "kid-1", "2024-03-05", "2024-04-01")

	require.NoError(t, err)
	assert.Len(t, result.Records, 2)
	assert.Equal(t, 1, result.Stats.PresentDays)
	assert.InDelta(t, 50.0, result.Stats.AttendancePercentage, 1e-9)

	_, err = svc.Range(context.Background(), parentClaims, "kid-1", "2024-04-01", "2024-03-01")
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Range(context.Background(), parentClaims, "kid-1", "2022-01-01", "2024-01-01")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestRecordAttendance(t *testing.T) {
	store := attendanceFixture()
	rec := &recordingInvalidator{}
	svc := NewAttendanceService(store, attendanceGuard(), nil, DefaultInvalidationGraph(rec, nil), nil, nil)

	stored, err := svc.Record(context.Background(), teacherClaims, RecordAttendanceRequest{
		StudentID: "kid-1", LessonID: "lesson-1", Date: "2024-03-06", Status: "late",
	})

	require.NoError(t, err)
	assert.Equal(t, "att-new", stored.ID)
	require.NotNil(t, store.upserted.RecordedBy)
	assert.Equal(t, "teacher-1", *store.upserted.RecordedBy)
	assert.Equal(t, day(2024, 3, 6), store.upserted.Date)
	assert.Contains(t, rec.patterns, "attendance-month:kid-1:*")
}

func TestRecordAttendanceRejects(t *testing.T) {
	svc := NewAttendanceService(attendanceFixture(), attendanceGuard(), nil, nil, nil, nil)
	valid := RecordAttendanceRequest{StudentID: "kid-1", LessonID: "lesson-1", Date: "2024-03-06", Status: "present"}

	_, err := svc.Record(context.Background(), parentClaims, valid)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	bad := valid
	bad.Status = "asleep"
	_, err = svc.Record(context.Background(), teacherClaims, bad)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	other := valid
	other.StudentID = "kid-2"
	_, err = svc.Record(context.Background(), teacherClaims, other)
	assert.ErrorIs(t, err, appErrors.ErrAccessDenied)
}

func TestSubmitExcuse(t *testing.T) {
	store := attendanceFixture()
	svc := NewAttendanceService(store, attendanceGuard(), nil, nil, nil, nil)

	record, err := svc.SubmitExcuse(context.Background(), parentClaims, "a2", SubmitExcuseRequest{Note: "dentist"})

	require.NoError(t, err)
	assert.Equal(t, models.ExcuseStatusPending, record.ExcuseStatus)
	require.NotNil(t, record.ExcuseNote)
	assert.Equal(t, "dentist", *record.ExcuseNote)
	assert.Equal(t, 1, store.excuseCalls)
}

func TestSubmitExcuseHidesExistence(t *testing.T) {
	store := attendanceFixture()
	svc := NewAttendanceService(store, attendanceGuard(), nil, nil, nil, nil)
	req := SubmitExcuseRequest{Note: "sick"}

	_, missingErr := svc.SubmitExcuse(context.Background(), parentClaims, "nope", req)
	_, foreignErr := svc.SubmitExcuse(context.Background(), parentClaims, "a5", req)

	assert.ErrorIs(t, missingErr, appErrors.ErrAccessDenied)
	assert.ErrorIs(t, foreignErr, appErrors.ErrAccessDenied)
	assert.Equal(t, appErrors.FromError(missingErr).Message, appErrors.FromError(foreignErr).Message)
	assert.Zero(t, store.excuseCalls)
}

func TestSubmitExcuseRules(t *testing.T) {
	store := attendanceFixture()
	store.records["a6"] = &models.Attendance{ID: "a6", StudentID: "kid-1", Status: models.AttendanceStatusAbsent, ExcuseStatus: models.ExcuseStatusApproved}
	svc := NewAttendanceService(store, attendanceGuard(), nil, nil, nil, nil)
	req := SubmitExcuseRequest{Note: "sick"}

	_, err := svc.SubmitExcuse(context.Background(), parentClaims, "a1", req)
	assert.ErrorIs(t, err, appErrors.ErrValidation, "present lessons are not excusable")

	_, err = svc.SubmitExcuse(context.Background(), parentClaims, "a6", req)
	assert.ErrorIs(t, err, appErrors.ErrConflict)

	_, err = svc.SubmitExcuse(context.Background(), teacherClaims, "a2", req)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	_, err = svc.SubmitExcuse(context.Background(), parentClaims, "a2", SubmitExcuseRequest{Note: "  "})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.SubmitExcuse(context.Background(), nil, "a2", req)
	assert.ErrorIs(t, err, appErrors.ErrAuthenticationRequired)
}

func TestSubmitExcuseLosesToConcurrentApproval(t *testing.T) {
	store := attendanceFixture()
	store.raced = map[string]bool{"a2": true}
	svc := NewAttendanceService(store, attendanceGuard(), nil, nil, nil, nil)

	_, err := svc.SubmitExcuse(context.Background(), parentClaims, "a2", SubmitExcuseRequest{Note: "sick"})

	assert.ErrorIs(t, err, appErrors.ErrConflict)
	assert.Equal(t, 1, store.excuseCalls)
}

func TestReviewExcuse(t *testing.T) {
	store := attendanceFixture()
	svc := NewAttendanceService(store, attendanceGuard(), nil, nil, nil, nil)
	approve := true

	record, err := svc.ReviewExcuse(context.Background(), teacherClaims, "a3", ReviewExcuseRequest{Approve: &approve})

	require.NoError(t, err)
	assert.Equal(t, models.ExcuseStatusApproved, record.ExcuseStatus)
	assert.Equal(t, models.AttendanceStatusExcused, record.Status)
}

func TestReviewExcuseFailures(t *testing.T) {
	store := attendanceFixture()
	svc := NewAttendanceService(store, attendanceGuard(), nil, nil, nil, nil)
	reject := false

	_, err := svc.ReviewExcuse(context.Background(), teacherClaims, "missing", ReviewExcuseRequest{Approve: &reject})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = svc.ReviewExcuse(context.Background(), teacherClaims, "a3", ReviewExcuseRequest{})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.ReviewExcuse(context.Background(), parentClaims, "a3", ReviewExcuseRequest{Approve: &reject})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	store.reviewResult = false
	_, err = svc.ReviewExcuse(context.Background(), teacherClaims, "a2", ReviewExcuseRequest{Approve: &reject})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
