package models

import "time"

// DefaultGradeWeight applies when a grade row carries no explicit weight.
const DefaultGradeWeight = 1.0

// Grade represents a single grade entry joined with its subject.
type Grade struct {
	ID          string    `db:"id" json:"id"`
	StudentID   string    `db:"student_id" json:"student_id"`
	SubjectID   string    `db:"subject_id" json:"subject_id"`
	SubjectName string    `db:"subject_name" json:"subject_name"`
	Score       float64   `db:"score" json:"score"`
	Weight      float64   `db:"weight" json:"weight"`
	Description string    `db:"description" json:"description"`
	Date        time.Time `db:"date" json:"date"`
}

// SubjectGradeStats groups a subject's grades with their weighted average.
type SubjectGradeStats struct {
	SubjectID    string  `json:"subject_id"`
	SubjectName  string  `json:"subject_name"`
	SubjectColor uint32  `json:"subject_color"`
	Average      float64 `json:"average"`
	Grades       []Grade `json:"grades"`
}

// StudentGrades is the per-student gradebook read model.
type StudentGrades struct {
	StudentID      string              `json:"student_id"`
	OverallAverage float64             `json:"overall_average"`
	Subjects       []SubjectGradeStats `json:"subjects"`
}
