package service

import (
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/school-portal-api/internal/models"
)

const (
	fallbackLessonStart = 8 * time.Hour
	fallbackLessonEnd   = 8*time.Hour + 45*time.Minute
)

// ISOWeekday converts a Sunday=0 day of week to Monday=1..Sunday=7.
func ISOWeekday(dow int) int {
	if dow == 0 {
		return 7
	}
	return dow
}

// WeekStart returns midnight of the Monday on or before t, in t's location.
func WeekStart(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := ISOWeekday(int(day.Weekday())) - 1
	return day.AddDate(0, 0, -offset)
}

// MapWeek places lesson rows into ISO weekday slots of the week beginning at weekStart.
// Clock strings are HH:MM or HH:MM:SS; missing or malformed values use the 08:00-08:45 slot.
// Rows keep their input order inside a day.
func MapWeek(rows []models.LessonRow, weekStart time.Time) map[int][]models.Lesson {
	week := make(map[int][]models.Lesson)
	for _, row := range rows {
		if row.DayOfWeek < 0 || row.DayOfWeek > 6 {
			continue
		}
		weekday := ISOWeekday(row.DayOfWeek)
		date := weekStart.AddDate(0, 0, weekday-1)
		day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, weekStart.Location())

		week[weekday] = append(week[weekday], models.Lesson{
			ID: row.ID,
			Subject: models.Subject{
				ID:          row.SubjectID,
				Name:        row.SubjectName,
				Color:       SubjectColor(row.SubjectID),
				TeacherName: row.TeacherName,
			},
			StartTime: day.Add(clockOffset(row.StartTime, fallbackLessonStart)),
			EndTime:   day.Add(clockOffset(row.EndTime, fallbackLessonEnd)),
			Room:      deref(row.Room),
			Status:    deref(row.Status),
		})
	}
	return week
}

func clockOffset(raw *string, fallback time.Duration) time.Duration {
	if raw == nil {
		return fallback
	}
	parts := strings.Split(strings.TrimSpace(*raw), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return fallback
	}

	limits := []int{23, 59, 59}
	units := []time.Duration{time.Hour, time.Minute, time.Second}
	var offset time.Duration
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > limits[i] {
			return fallback
		}
		offset += time.Duration(n) * units[i]
	}
	return offset
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
