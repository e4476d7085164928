package models

import "time"

// Audit actions recorded for portal writes.
const (
	AuditActionAttendanceRecord = "ATTENDANCE_RECORD"
	AuditActionExcuseSubmit     = "EXCUSE_SUBMIT"
	AuditActionExcuseReview     = "EXCUSE_REVIEW"
	AuditActionInviteIssue      = "INVITE_ISSUE"
	AuditActionInviteRedeem     = "INVITE_REDEEM"
	AuditActionInviteDeactivate = "INVITE_DEACTIVATE"
)

// AuditLog is one entry of the write audit trail.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	Role       *Role     `db:"role" json:"role,omitempty"`
	SchoolID   *string   `db:"school_id" json:"school_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	Details    []byte    `db:"details" json:"details,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	RequestID  string    `db:"request_id" json:"request_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
