package models

import "time"

// InviteCode grants a role (and optionally a class) on redemption.
type InviteCode struct {
	ID         string     `db:"id" json:"id"`
	Code       string     `db:"code" json:"code"`
	SchoolID   string     `db:"school_id" json:"school_id"`
	Role       Role       `db:"role" json:"role"`
	ClassID    *string    `db:"class_id" json:"class_id,omitempty"`
	UsageLimit int        `db:"usage_limit" json:"usage_limit"`
	TimesUsed  int        `db:"times_used" json:"times_used"`
	ExpiresAt  *time.Time `db:"expires_at" json:"expires_at,omitempty"`
	IsActive   bool       `db:"is_active" json:"is_active"`
	CreatedBy  *string    `db:"created_by" json:"created_by,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

// CanBeUsed reports whether the code is redeemable at the given instant.
func (c *InviteCode) CanBeUsed(now time.Time) bool {
	if c == nil || !c.IsActive {
		return false
	}
	if c.TimesUsed >= c.UsageLimit {
		return false
	}
	return c.ExpiresAt == nil || now.Before(*c.ExpiresAt)
}

// RemainingUses returns how many redemptions are left, never negative.
func (c *InviteCode) RemainingUses() int {
	if c == nil || c.TimesUsed >= c.UsageLimit {
		return 0
	}
	return c.UsageLimit - c.TimesUsed
}

// InviteRedemption describes the outcome of a successful redemption.
type InviteRedemption struct {
	Code     string  `json:"code"`
	UserID   string  `json:"user_id"`
	SchoolID string  `json:"school_id"`
	Role     Role    `json:"role"`
	ClassID  *string `json:"class_id,omitempty"`
}

// InviteCheck is the public view of a code shown before redemption.
type InviteCheck struct {
	Code          string         `json:"code"`
	Role          Role           `json:"role"`
	RoleInfo      RoleDescriptor `json:"role_info"`
	ClassID       *string        `json:"class_id,omitempty"`
	ExpiresAt     *time.Time     `json:"expires_at,omitempty"`
	RemainingUses int            `json:"remaining_uses"`
	CanRedeem     bool           `json:"can_redeem"`
}
