package models

import (
	"database/sql"
	"time"
)

// Staff represents a dashboard staff account row. Sign-in is delegated
// to Google; the row carries the encrypted provider tokens.
type Staff struct {
	ID                    string         `db:"ID"` // ULID
	GoogleID              string         `db:"GOOGLE_ID"`
	Email                 string         `db:"EMAIL"`
	Name                  sql.NullString `db:"NAME"`
	Role                  string         `db:"ROLE"`
	ProfilePictureURL     sql.NullString `db:"PROFILE_PICTURE_URL"`
	EncryptedAccessToken  sql.NullString `db:"ENCRYPTED_ACCESS_TOKEN"`
	EncryptedRefreshToken sql.NullString `db:"ENCRYPTED_REFRESH_TOKEN"`
	TokenExpiresAt        sql.NullTime   `db:"TOKEN_EXPIRES_AT"`
	CreatedAt             time.Time      `db:"CREATED_AT"`
	UpdatedAt             time.Time      `db:"UPDATED_AT"`
	DeletedAt             sql.NullTime   `db:"DELETED_AT"`
}
