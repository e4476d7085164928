package service

import (
	"sort"

	"github.com/noah-isme/school-portal-api/internal/models"
)

const calendarDateLayout = "2006-01-02"

// ClassifyDay resolves the statuses recorded on one date into a calendar cell.
// Rules apply in order: all present, all absent, any late, any absent. Anything
// else, including mixed present and excused days, falls back to all present.
func ClassifyDay(statuses []models.AttendanceStatus) models.DailyAttendanceStatus {
	if len(statuses) == 0 {
		return models.DailyAllPresent
	}

	allPresent, allAbsent := true, true
	anyLate, anyAbsent := false, false
	for _, s := range statuses {
		if s != models.AttendanceStatusPresent {
			allPresent = false
		}
		if s != models.AttendanceStatusAbsent {
			allAbsent = false
		}
		switch s {
		case models.AttendanceStatusLate:
			anyLate = true
		case models.AttendanceStatusAbsent:
			anyAbsent = true
		}
	}

	switch {
	case allPresent:
		return models.DailyAllPresent
	case allAbsent:
		return models.DailyAllAbsent
	case anyLate:
		return models.DailyWasLate
	case anyAbsent:
		return models.DailyPartialAbsent
	default:
		return models.DailyAllPresent
	}
}

// SummarizeAttendance tallies statuses over a query window. Late and left early
// share the late bucket. Unrecognised statuses count toward TotalDays only.
func SummarizeAttendance(statuses []models.AttendanceStatus) models.AttendanceStats {
	stats := models.AttendanceStats{TotalDays: len(statuses)}
	for _, s := range statuses {
		switch s {
		case models.AttendanceStatusPresent:
			stats.PresentDays++
		case models.AttendanceStatusAbsent:
			stats.AbsentDays++
		case models.AttendanceStatusLate, models.AttendanceStatusLeftEarly:
			stats.LateDays++
		case models.AttendanceStatusExcused:
			stats.ExcusedDays++
		}
	}
	if stats.TotalDays > 0 {
		stats.AttendancePercentage = float64(stats.PresentDays) / float64(stats.TotalDays) * 100
	}
	return stats
}

// BuildCalendar groups records by calendar date and classifies each day.
// Days come out in ascending date order; entries keep their input order.
func BuildCalendar(records []models.Attendance) []models.CalendarDay {
	byDate := make(map[string][]models.Attendance)
	for _, r := range records {
		key := r.Date.Format(calendarDateLayout)
		byDate[key] = append(byDate[key], r)
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	days := make([]models.CalendarDay, 0, len(dates))
	for _, d := range dates {
		entries := byDate[d]
		days = append(days, models.CalendarDay{
			Date:    d,
			Status:  ClassifyDay(statusesOf(entries)),
			Entries: entries,
		})
	}
	return days
}

func statusesOf(records []models.Attendance) []models.AttendanceStatus {
	out := make([]models.AttendanceStatus, len(records))
	for i, r := range records {
		out[i] = r.Status
	}
	return out
}
