package models

import "time"

// AttendanceStatus represents the status recorded for a lesson.
type AttendanceStatus string

const (
	AttendanceStatusPresent   AttendanceStatus = "present"
	AttendanceStatusAbsent    AttendanceStatus = "absent"
	AttendanceStatusLate      AttendanceStatus = "late"
	AttendanceStatusLeftEarly AttendanceStatus = "left_early"
	AttendanceStatusExcused   AttendanceStatus = "excused"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent, AttendanceStatusLate, AttendanceStatusLeftEarly, AttendanceStatusExcused:
		return true
	default:
		return false
	}
}

// Excusable reports whether a parent may submit an excuse for the status.
func (s AttendanceStatus) Excusable() bool {
	return s == AttendanceStatusAbsent || s == AttendanceStatusLate || s == AttendanceStatusLeftEarly
}

// ExcuseStatus tracks the review state of a parent excuse.
type ExcuseStatus string

const (
	ExcuseStatusNone     ExcuseStatus = "none"
	ExcuseStatusPending  ExcuseStatus = "pending"
	ExcuseStatusApproved ExcuseStatus = "approved"
	ExcuseStatusRejected ExcuseStatus = "rejected"
)

// DailyAttendanceStatus is the single calendar-cell classification of a day.
type DailyAttendanceStatus string

const (
	DailyAllPresent    DailyAttendanceStatus = "all_present"
	DailyAllAbsent     DailyAttendanceStatus = "all_absent"
	DailyWasLate       DailyAttendanceStatus = "was_late"
	DailyPartialAbsent DailyAttendanceStatus = "partial_absent"
)

// Attendance is a lesson attendance row joined with lesson and subject data.
type Attendance struct {
	ID                  string           `db:"id" json:"id"`
	StudentID           string           `db:"student_id" json:"student_id"`
	LessonID            string           `db:"lesson_id" json:"lesson_id"`
	Date                time.Time        `db:"date" json:"date"`
	Status              AttendanceStatus `db:"status" json:"status"`
	SubjectID           *string          `db:"subject_id" json:"subject_id,omitempty"`
	SubjectName         *string          `db:"subject_name" json:"subject_name,omitempty"`
	LessonStartTime     *string          `db:"lesson_start_time" json:"lesson_start_time,omitempty"`
	LessonEndTime       *string          `db:"lesson_end_time" json:"lesson_end_time,omitempty"`
	Note                *string          `db:"note" json:"note,omitempty"`
	ExcuseNote          *string          `db:"excuse_note" json:"excuse_note,omitempty"`
	ExcuseStatus        ExcuseStatus     `db:"excuse_status" json:"excuse_status"`
	ExcuseAttachmentURL *string          `db:"excuse_attachment_url" json:"excuse_attachment_url,omitempty"`
	RecordedBy          *string          `db:"recorded_by" json:"recorded_by,omitempty"`
	RecordedAt          *time.Time       `db:"recorded_at" json:"recorded_at,omitempty"`
}

// AttendanceFilter scopes attendance range queries.
type AttendanceFilter struct {
	StudentID string
	From      time.Time
	To        time.Time
}

// AttendanceStats summarises a query window.
type AttendanceStats struct {
	TotalDays            int     `json:"total_days"`
	PresentDays          int     `json:"present_days"`
	AbsentDays           int     `json:"absent_days"`
	LateDays             int     `json:"late_days"`
	ExcusedDays          int     `json:"excused_days"`
	AttendancePercentage float64 `json:"attendance_percentage"`
}

// CalendarDay is one rendered calendar cell.
type CalendarDay struct {
	Date    string                `json:"date"`
	Status  DailyAttendanceStatus `json:"status"`
	Entries []Attendance          `json:"entries"`
}

// AttendanceMonth is the month calendar read model.
type AttendanceMonth struct {
	StudentID string          `json:"student_id"`
	Month     string          `json:"month"`
	Days      []CalendarDay   `json:"days"`
	Stats     AttendanceStats `json:"stats"`
}

// AttendanceRange is the custom-range read model.
type AttendanceRange struct {
	StudentID string          `json:"student_id"`
	From      string          `json:"from"`
	To        string          `json:"to"`
	Records   []Attendance    `json:"records"`
	Stats     AttendanceStats `json:"stats"`
}
