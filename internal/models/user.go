package models

import "time"

// Profile represents a row of the profiles table.
type Profile struct {
	ID        string    `db:"id" json:"id"`
	FullName  string    `db:"full_name" json:"full_name"`
	Email     *string   `db:"email" json:"email,omitempty"`
	Role      Role      `db:"role" json:"role"`
	SchoolID  *string   `db:"school_id" json:"school_id,omitempty"`
	AvatarURL *string   `db:"avatar_url" json:"avatar_url,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Child is a parent's linked student together with the current class.
type Child struct {
	Profile
	ClassID   *string `db:"class_id" json:"class_id,omitempty"`
	ClassName *string `db:"class_name" json:"class_name,omitempty"`
}
