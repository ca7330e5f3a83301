package integration

import (
	"database/sql"
	"fmt"
	"time"

	"bandbooster-authoring/internal/domain"
	"bandbooster-authoring/internal/dto"
	"bandbooster-authoring/internal/repository/models"
	"bandbooster-authoring/internal/util"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jmoiron/sqlx"
)

// createTestStaffDB inserts a staff row for testing. The models.Staff
// input should have its ID pre-filled, typically with util.NewULID().
func createTestStaffDB(db *sqlx.DB, staff models.Staff) (*models.Staff, error) {
	if db == nil {
		return nil, fmt.Errorf("database instance is nil")
	}
	if staff.ID == "" {
		return nil, fmt.Errorf("staff ID must be pre-filled")
	}
	if staff.CreatedAt.IsZero() {
		staff.CreatedAt = time.Now()
	}
	if staff.UpdatedAt.IsZero() {
		staff.UpdatedAt = time.Now()
	}

	_, err := db.Exec(
		`INSERT INTO staff (id, google_id, email, name, role, profile_picture_url, created_at, updated_at)
		 VALUES (:1, :2, :3, :4, :5, :6, :7, :8)`,
		staff.ID, staff.GoogleID, staff.Email, staff.Name, staff.Role,
		staff.ProfilePictureURL, staff.CreatedAt, staff.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert test staff: %w", err)
	}
	return &staff, nil
}

// generateTestStaffJWT signs a token for the given staff member using
// the global cfg's JWT secret.
func generateTestStaffJWT(staff *models.Staff, tokenType string, ttl time.Duration) (string, error) {
	if cfg == nil || cfg.Auth.JWTSecretKey == "" {
		return "", fmt.Errorf("JWT secret key is not configured in global cfg")
	}
	if staff == nil {
		return "", fmt.Errorf("staff cannot be nil")
	}

	issuedAt := time.Now()
	expiresAt := issuedAt.Add(ttl)

	claims := dto.AuthClaims{
		StaffID:   staff.ID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			Subject:   staff.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(cfg.Auth.JWTSecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signedToken, nil
}

func newTestStaff() models.Staff {
	staffID := util.NewULID()
	return models.Staff{
		ID:                staffID,
		GoogleID:          "googleid-" + staffID,
		Email:             "staff-" + staffID + "@example.com",
		Name:              sql.NullString{String: "Test Staff " + staffID, Valid: true},
		Role:              domain.RoleAuthor,
		ProfilePictureURL: sql.NullString{String: "http://example.com/picture-" + staffID + ".jpg", Valid: true},
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
}
