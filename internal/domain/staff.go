package domain

import (
	"strings"
	"time"
)

// Staff represents a dashboard staff account. Sign-in is delegated to
// Google; the account row pins identity, role and encrypted provider
// tokens.
type Staff struct {
	ID                string
	GoogleID          string
	Email             string
	Name              string
	Role              string
	ProfilePictureURL string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	DeletedAt         *time.Time
}

const (
	RoleAuthor  = "author"
	RoleManager = "manager"
)

// NewStaff creates a new Staff instance with the default role.
func NewStaff(googleID, email string) *Staff {
	now := time.Now()
	return &Staff{
		GoogleID:  googleID,
		Email:     email,
		Role:      RoleAuthor,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate validates the staff account
func (s *Staff) Validate() error {
	if strings.TrimSpace(s.GoogleID) == "" {
		return NewValidationError("google_id", "is required")
	}
	if strings.TrimSpace(s.Email) == "" {
		return NewValidationError("email", "is required")
	}
	return nil
}
