package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

type fakeEnrollment struct {
	classes map[string][]string
	err     error
}

func (f *fakeEnrollment) ClassIDsForStudent(_ context.Context, studentID string) ([]string, error) {
	return f.classes[studentID], f.err
}

type fakeLessons struct {
	rows    []models.LessonRow
	queried [][]string
}

func (f *fakeLessons) ListByClasses(_ context.Context, classIDs []string) ([]models.LessonRow, error) {
	f.queried = append(f.queried, classIDs)
	return f.rows, nil
}

func TestScheduleWeekNormalisesToMonday(t *testing.T) {
	lessons := &fakeLessons{rows: []models.LessonRow{
		{ID: "l1", SubjectID: "math", SubjectName: "Math", DayOfWeek: 0, StartTime: strPtr("09:00"), EndTime: strPtr("09:45")},
		{ID: "l2", SubjectID: "art", SubjectName: "Art", DayOfWeek: 2},
	}}
	enrollment := &fakeEnrollment{classes: map[string][]string{"kid-1": {"class-a"}}}
	guard := &stubGuard{allowed: map[string][]string{"kid-1": {"parent-1"}}}
	svc := NewScheduleService(enrollment, lessons, guard, nil, nil)

	week, _, err := svc.Week(context.Background(), parentClaims, "kid-1", "2024-01-04")

	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", week.WeekStart)
	assert.Equal(t, [][]string{{"class-a"}}, lessons.queried)
	require.Len(t, week.Days[7], 1)
	assert.Equal(t, time.Date(2024, 1, 7, 9, 0, 0, 0, time.UTC), week.Days[7][0].StartTime)
	require.Len(t, week.Days[2], 1)
	assert.Equal(t, time.Date(2024, 1, 2, 8, 45, 0, 0, time.UTC), week.Days[2][0].EndTime)
}

func TestScheduleWeekDefaultsToCurrentWeek(t *testing.T) {
	guard := &stubGuard{allowed: map[string][]string{"kid-1": {"kid-1"}}}
	svc := NewScheduleService(&fakeEnrollment{}, &fakeLessons{}, guard, nil, nil)
	svc.now = func() time.Time { return time.Date(2024, 5, 16, 12, 0, 0, 0, time.UTC) }

	week, _, err := svc.Week(context.Background(), &models.JWTClaims{UserID: "kid-1", Role: models.RoleStudent}, "kid-1", "")

	require.NoError(t, err)
	assert.Equal(t, "2024-05-13", week.WeekStart)
	assert.Empty(t, week.Days)
}

func TestScheduleWeekErrors(t *testing.T) {
	guard := &stubGuard{allowed: map[string][]string{"kid-1": {"parent-1"}}}
	svc := NewScheduleService(&fakeEnrollment{err: errors.New("boom")}, &fakeLessons{}, guard, nil, nil)

	_, _, err := svc.Week(context.Background(), parentClaims, "kid-1", "04/01/2024")
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, _, err = svc.Week(context.Background(), parentClaims, "kid-9", "")
	assert.ErrorIs(t, err, appErrors.ErrAccessDenied)

	_, _, err = svc.Week(context.Background(), parentClaims, "kid-1", "")
	assert.ErrorIs(t, err, appErrors.ErrBackend)
}
