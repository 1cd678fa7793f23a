package models

import "time"

const (
	RoleMember       = "member"
	RoleCoach        = "coach"
	RoleReceptionist = "receptionist"
	RoleAdmin        = "admin"
)

// User is a single role-tagged record. Role-specific fields are nullable:
// TokenBalance is meaningful for members, HourlyRateTokens for coaches.
type User struct {
	ID               int64     `json:"id"`
	Email            string    `json:"email"`
	PasswordHash     string    `json:"-"`
	Role             string    `json:"role"`
	FullName         *string   `json:"full_name,omitempty"`
	TokenBalance     int       `json:"token_balance"`
	HourlyRateTokens *int      `json:"hourly_rate_tokens,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type Equipment struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Category         *string   `json:"category,omitempty"`
	TokenRatePerHour int       `json:"token_rate_per_hour"`
	IsActive         bool      `json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
}
