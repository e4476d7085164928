package service

import (
	"context"
	"fmt"
	"time"

	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
	"github.com/noah-isme/school-portal-api/pkg/export"
)

var attendanceExportColumns = []string{"Date", "Day", "Subject", "Start", "End", "Status", "Excuse"}

// ExportMonth renders the month calendar of a student as a downloadable report.
func (s *AttendanceService) ExportMonth(ctx context.Context, claims *models.JWTClaims, studentID, month string, format export.Format) (*export.File, error) {
	calendar, _, err := s.Month(ctx, claims, studentID, month)
	if err != nil {
		return nil, err
	}

	file, err := export.Render(format, fmt.Sprintf("attendance-%s-%s", studentID, month), attendanceTable(calendar))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render attendance report")
	}
	return file, nil
}

func attendanceTable(calendar *models.AttendanceMonth) export.Table {
	title := calendar.Month
	if start, err := time.Parse(monthLayout, calendar.Month); err == nil {
		title = start.Format("January 2006")
	}

	rows := make([][]string, 0)
	for _, day := range calendar.Days {
		weekday := ""
		if parsed, err := time.Parse(calendarDateLayout, day.Date); err == nil {
			weekday = parsed.Weekday().String()
		}
		for _, entry := range day.Entries {
			excuse := ""
			if entry.ExcuseStatus != models.ExcuseStatusNone {
				excuse = string(entry.ExcuseStatus)
			}
			rows = append(rows, []string{
				day.Date,
				weekday,
				orDash(entry.SubjectName),
				deref(entry.LessonStartTime),
				deref(entry.LessonEndTime),
				string(entry.Status),
				excuse,
			})
		}
	}

	stats := calendar.Stats
	return export.Table{
		Title:   "Attendance " + title,
		Columns: attendanceExportColumns,
		Rows:    rows,
		Summary: [][2]string{
			{"Lessons", fmt.Sprint(stats.TotalDays)},
			{"Present", fmt.Sprint(stats.PresentDays)},
			{"Absent", fmt.Sprint(stats.AbsentDays)},
			{"Late", fmt.Sprint(stats.LateDays)},
			{"Excused", fmt.Sprint(stats.ExcusedDays)},
			{"Attendance", fmt.Sprintf("%.1f%%", stats.AttendancePercentage)},
		},
	}
}

func orDash(s *string) string {
	if v := deref(s); v != "" {
		return v
	}
	return "-"
}
