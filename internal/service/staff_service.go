package service

import (
	"context"
	"errors"
	"fmt"

	"bandbooster-authoring/internal/dto"
	"bandbooster-authoring/internal/repository"
)

var ErrStaffProfileNotFound = errors.New("staff profile not found")

// StaffService exposes staff account information to the dashboard.
type StaffService interface {
	GetStaffProfile(ctx context.Context, staffID string) (*dto.StaffProfileResponse, error)
}

type staffServiceImpl struct {
	staffRepo repository.StaffRepository
}

func NewStaffService(staffRepo repository.StaffRepository) StaffService {
	return &staffServiceImpl{staffRepo: staffRepo}
}

// GetStaffProfile retrieves a staff member's profile information.
func (s *staffServiceImpl) GetStaffProfile(ctx context.Context, staffID string) (*dto.StaffProfileResponse, error) {
	staff, err := s.staffRepo.GetStaffByID(ctx, staffID)
	if err != nil {
		return nil, fmt.Errorf("failed to get staff by id from repository: %w", err)
	}
	if staff == nil {
		return nil, ErrStaffProfileNotFound
	}

	return &dto.StaffProfileResponse{
		ID:                staff.ID,
		Email:             staff.Email,
		Name:              staff.Name.String,
		Role:              staff.Role,
		ProfilePictureURL: staff.ProfilePictureURL.String,
	}, nil
}
