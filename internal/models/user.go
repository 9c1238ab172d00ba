package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// MinPasswordLength is the shortest accepted password
const MinPasswordLength = 6

// User is an operator account
type User struct {
	ID           string     `json:"id" db:"id"`
	WorkEmail    string     `json:"work_email" db:"work_email"`
	Username     string     `json:"username" db:"username"`
	PasswordHash string     `json:"-" db:"password_hash"`
	FullName     string     `json:"full_name" db:"full_name"`
	LastLogin    *time.Time `json:"last_login,omitempty" db:"last_login"`
	RefreshToken *string    `json:"-" db:"refresh_token"`
	ProfilePic   *string    `json:"profile_pic,omitempty" db:"profile_pic"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// NewUser creates a user with a lower-cased email; the password hash is set by the caller
func NewUser(email, username, fullName string) *User {
	now := Now()
	return &User{
		ID:        uuid.New().String(),
		WorkEmail: strings.ToLower(strings.TrimSpace(email)),
		Username:  strings.TrimSpace(username),
		FullName:  strings.TrimSpace(fullName),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate validates the user data
func (u *User) Validate() error {
	var errs []ValidationError

	if v := ValidateRequired(u.WorkEmail, "work_email"); v != nil {
		errs = append(errs, *v)
	} else {
		errs = collect(errs, ValidateEmail(u.WorkEmail, "work_email"))
	}

	if v := ValidateRequired(u.Username, "username"); v != nil {
		errs = append(errs, *v)
	} else {
		errs = collect(errs, ValidateStringLength(u.Username, "username", 0, 30))
	}

	errs = collect(errs, ValidateRequired(u.FullName, "full_name"))

	return NewValidationErrors("user", errs)
}

// RecordLogin stamps the last login time
func (u *User) RecordLogin(at time.Time) {
	u.LastLogin = &at
	u.UpdatedAt = at
}

// PublicProfile is the user view returned by the API
type PublicProfile struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	FullName   string    `json:"full_name"`
	WorkEmail  string    `json:"work_email"`
	ProfilePic *string   `json:"profile_pic,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// PublicProfile returns the user without credentials
func (u *User) PublicProfile() PublicProfile {
	return PublicProfile{
		ID:         u.ID,
		Username:   u.Username,
		FullName:   u.FullName,
		WorkEmail:  u.WorkEmail,
		ProfilePic: u.ProfilePic,
		CreatedAt:  u.CreatedAt,
	}
}
