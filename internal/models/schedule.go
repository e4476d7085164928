package models

import "time"

// LessonRow is the raw lessons row joined with subject and teacher.
// DayOfWeek is 0-indexed with Sunday=0.
type LessonRow struct {
	ID          string  `db:"id"`
	ClassID     string  `db:"class_id"`
	SubjectID   string  `db:"subject_id"`
	SubjectName string  `db:"subject_name"`
	TeacherName *string `db:"teacher_name"`
	DayOfWeek   int     `db:"day_of_week"`
	StartTime   *string `db:"start_time"`
	EndTime     *string `db:"end_time"`
	Room        *string `db:"room"`
	Status      *string `db:"status"`
}

// Subject is the display form of a subject; Color is derived, never stored.
type Subject struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Color       uint32  `json:"color"`
	TeacherName *string `json:"teacher_name,omitempty"`
}

// Lesson is a concrete lesson instance within a week.
type Lesson struct {
	ID        string    `json:"id"`
	Subject   Subject   `json:"subject"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Room      string    `json:"room"`
	Status    string    `json:"status"`
}

// WeekSchedule maps ISO weekday (Monday=1..Sunday=7) to ordered lessons.
type WeekSchedule struct {
	StudentID string           `json:"student_id"`
	WeekStart string           `json:"week_start"`
	Days      map[int][]Lesson `json:"days"`
}
