package models

import "time"

// AssignmentStatus is the derived state of an assignment for one student.
type AssignmentStatus string

const (
	AssignmentPending   AssignmentStatus = "pending"
	AssignmentSubmitted AssignmentStatus = "submitted"
	AssignmentGraded    AssignmentStatus = "graded"
	AssignmentOverdue   AssignmentStatus = "overdue"
)

// Assignment represents homework published to a class.
type Assignment struct {
	ID          string     `db:"id" json:"id"`
	ClassID     string     `db:"class_id" json:"class_id"`
	SubjectID   string     `db:"subject_id" json:"subject_id"`
	SubjectName string     `db:"subject_name" json:"subject_name"`
	Title       string     `db:"title" json:"title"`
	Description *string    `db:"description" json:"description,omitempty"`
	DueDate     *time.Time `db:"due_date" json:"due_date,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// AssignmentSubmission is a student's hand-in for an assignment.
type AssignmentSubmission struct {
	ID           string    `db:"id" json:"id"`
	AssignmentID string    `db:"assignment_id" json:"assignment_id"`
	StudentID    string    `db:"student_id" json:"student_id"`
	SubmittedAt  time.Time `db:"submitted_at" json:"submitted_at"`
	Grade        *float64  `db:"grade" json:"grade,omitempty"`
	Feedback     *string   `db:"feedback" json:"feedback,omitempty"`
}

// StudentAssignment pairs an assignment with the student's submission.
type StudentAssignment struct {
	Assignment
	Submission   *AssignmentSubmission `json:"submission,omitempty"`
	Status       AssignmentStatus      `json:"status"`
	SubjectColor uint32                `json:"subject_color"`
}
