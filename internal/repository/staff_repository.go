package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bandbooster-authoring/internal/repository/models"

	"github.com/jmoiron/sqlx"
)

// StaffRepository defines the interface for staff account persistence.
// It works on the model level; the auth service owns the token handling.
type StaffRepository interface {
	CreateStaff(ctx context.Context, staff *models.Staff) error
	GetStaffByGoogleID(ctx context.Context, googleID string) (*models.Staff, error)
	GetStaffByID(ctx context.Context, staffID string) (*models.Staff, error)
	UpdateStaff(ctx context.Context, staff *models.Staff) error
}

type sqlxStaffRepository struct {
	db *sqlx.DB
}

func NewSQLXStaffRepository(db *sqlx.DB) StaffRepository {
	return &sqlxStaffRepository{db: db}
}

// CreateStaff inserts a new staff account.
func (r *sqlxStaffRepository) CreateStaff(ctx context.Context, staff *models.Staff) error {
	staff.CreatedAt = time.Now()
	staff.UpdatedAt = staff.CreatedAt

	query := `INSERT INTO staff (ID, GOOGLE_ID, EMAIL, NAME, ROLE, PROFILE_PICTURE_URL, ENCRYPTED_ACCESS_TOKEN, ENCRYPTED_REFRESH_TOKEN, TOKEN_EXPIRES_AT, CREATED_AT, UPDATED_AT)
	VALUES (:1, :2, :3, :4, :5, :6, :7, :8, :9, :10, :11)`

	_, err := r.db.ExecContext(ctx, query,
		staff.ID,
		staff.GoogleID,
		staff.Email,
		staff.Name,
		staff.Role,
		staff.ProfilePictureURL,
		staff.EncryptedAccessToken,
		staff.EncryptedRefreshToken,
		staff.TokenExpiresAt,
		staff.CreatedAt,
		staff.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create staff account: %w", err)
	}
	return nil
}

// GetStaffByGoogleID returns nil, nil when no account matches.
func (r *sqlxStaffRepository) GetStaffByGoogleID(ctx context.Context, googleID string) (*models.Staff, error) {
	var staff models.Staff
	query := `SELECT * FROM staff WHERE GOOGLE_ID = :1 AND DELETED_AT IS NULL`

	err := r.db.GetContext(ctx, &staff, query, googleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get staff by google_id: %w", err)
	}
	return &staff, nil
}

// GetStaffByID returns nil, nil when no account matches.
func (r *sqlxStaffRepository) GetStaffByID(ctx context.Context, staffID string) (*models.Staff, error) {
	var staff models.Staff
	query := `SELECT * FROM staff WHERE ID = :1 AND DELETED_AT IS NULL`

	err := r.db.GetContext(ctx, &staff, query, staffID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get staff by id: %w", err)
	}
	return &staff, nil
}

// UpdateStaff updates the profile and token columns of an account.
func (r *sqlxStaffRepository) UpdateStaff(ctx context.Context, staff *models.Staff) error {
	staff.UpdatedAt = time.Now()

	query := `UPDATE staff SET
		EMAIL = :1,
		NAME = :2,
		PROFILE_PICTURE_URL = :3,
		ENCRYPTED_ACCESS_TOKEN = :4,
		ENCRYPTED_REFRESH_TOKEN = :5,
		TOKEN_EXPIRES_AT = :6,
		UPDATED_AT = :7
	WHERE ID = :8 AND DELETED_AT IS NULL`

	result, err := r.db.ExecContext(ctx, query,
		staff.Email,
		staff.Name,
		staff.ProfilePictureURL,
		staff.EncryptedAccessToken,
		staff.EncryptedRefreshToken,
		staff.TokenExpiresAt,
		staff.UpdatedAt,
		staff.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update staff account: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
