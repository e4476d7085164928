package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLessonRepositoryListByClasses(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	rows := sqlmock.NewRows([]string{"id", "class_id", "subject_id", "subject_name", "teacher_name", "day_of_week", "start_time", "end_time", "room", "status"}).
		AddRow("l-1", "class-1", "sub-1", "Math", "Mr. K", 1, "08:00", "08:45", "101", nil).
		AddRow("l-2", "class-1", "sub-2", "Art", nil, 0, nil, nil, nil, nil)
	mock.ExpectQuery(`WHERE l.class_id IN \(\$1, \$2\)\s+ORDER BY l.day_of_week ASC, l.start_time ASC`).
		WithArgs("class-1", "class-2").
		WillReturnRows(rows)

	lessons, err := repo.ListByClasses(context.Background(), []string{"class-1", "class-2"})
	require.NoError(t, err)
	require.Len(t, lessons, 2)
	assert.Equal(t, 0, lessons[1].DayOfWeek)
	assert.Nil(t, lessons[1].StartTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepositoryNoClasses(t *testing.T) {
	db, _, cleanup := newMockDB(t)
	defer cleanup()

	lessons, err := NewLessonRepository(db).ListByClasses(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, lessons)
}

func TestGradeRepositoryListByStudent(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	mock.ExpectQuery(`COALESCE\(g.weight, 1.0\) AS weight`).
		WithArgs("kid-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "subject_id", "subject_name", "score", "weight", "description", "date"}).
			AddRow("g-1", "kid-1", "sub-1", "Math", 5.0, 1.0, "Quiz", time.Now()))

	grades, err := repo.ListByStudent(context.Background(), "kid-1")
	require.NoError(t, err)
	require.Len(t, grades, 1)
	assert.Equal(t, 5.0, grades[0].Score)
}

func TestAssignmentRepositorySubmissionsByStudent(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectQuery(`FROM assignment_submissions\s+WHERE student_id = \$1 AND assignment_id IN \(\$2, \$3\)`).
		WithArgs("kid-1", "as-1", "as-2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "assignment_id", "student_id", "submitted_at", "grade", "feedback"}).
			AddRow("sub-1", "as-2", "kid-1", time.Now(), 4.5, nil))

	subs, err := repo.SubmissionsByStudent(context.Background(), "kid-1", []string{"as-1", "as-2"})
	require.NoError(t, err)
	require.Contains(t, subs, "as-2")
	assert.Equal(t, 4.5, *subs["as-2"].Grade)
	assert.NotContains(t, subs, "as-1")
}
