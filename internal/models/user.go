package models

import (
	"strings"
	"time"
)

// Profile holds the personal details collected at first login.
type Profile struct {
	Email              string `json:"email" validate:"notblank"`
	FirstName          string `json:"first_name" validate:"notblank"`
	MiddleName         string `json:"middle_name"`
	LastName           string `json:"last_name" validate:"notblank"`
	PreferredFirstName string `json:"preferred_first_name"`
}

// Trimmed returns p with surrounding spaces removed from every field.
func (p Profile) Trimmed() Profile {
	return Profile{
		Email:              strings.TrimSpace(p.Email),
		FirstName:          strings.TrimSpace(p.FirstName),
		MiddleName:         strings.TrimSpace(p.MiddleName),
		LastName:           strings.TrimSpace(p.LastName),
		PreferredFirstName: strings.TrimSpace(p.PreferredFirstName),
	}
}

// User is an account. PasswordHash is whatever the configured hasher
// produced; OneTimePassword is set while an admin-issued reset is pending.
type User struct {
	Username        string
	PasswordHash    string
	Roles           RoleSet
	Profile         Profile
	SetupComplete   bool
	OneTimePassword string
	PasswordExpiry  *time.Time
}

// ResetPending reports whether a one-time password is set and still valid at now.
// An expired one-time password no longer blocks a regular password login.
func (u *User) ResetPending(now time.Time) bool {
	return u.OneTimePassword != "" && u.PasswordExpiry != nil && now.Before(*u.PasswordExpiry)
}

func (u *User) PreferredFirstNameOrDefault() string {
	if u.Profile.PreferredFirstName != "" {
		return u.Profile.PreferredFirstName
	}
	return u.Profile.FirstName
}

// FullName joins first, middle and last name, skipping empty parts.
func (u *User) FullName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{u.Profile.FirstName, u.Profile.MiddleName, u.Profile.LastName} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}
