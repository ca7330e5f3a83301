package service

import (
	"context"
	"errors"
	"testing"

	"bandbooster-authoring/internal/domain"
	"bandbooster-authoring/internal/repository/models"
	"bandbooster-authoring/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestStaffService_GetStaffProfile(t *testing.T) {
	staffRepo := new(MockStaffRepository)
	svc := NewStaffService(staffRepo)

	staffRepo.On("GetStaffByID", mock.Anything, "staff1").Return(&models.Staff{
		ID:                "staff1",
		Email:             "author@example.com",
		Name:              util.StringToNullString("Alex Author"),
		Role:              domain.RoleAuthor,
		ProfilePictureURL: util.StringToNullString("https://example.com/pic.png"),
	}, nil)

	profile, err := svc.GetStaffProfile(context.Background(), "staff1")

	assert.NoError(t, err)
	assert.Equal(t, "staff1", profile.ID)
	assert.Equal(t, "author@example.com", profile.Email)
	assert.Equal(t, "Alex Author", profile.Name)
	assert.Equal(t, domain.RoleAuthor, profile.Role)
	assert.Equal(t, "https://example.com/pic.png", profile.ProfilePictureURL)
}

func TestStaffService_GetStaffProfile_NotFound(t *testing.T) {
	staffRepo := new(MockStaffRepository)
	svc := NewStaffService(staffRepo)

	staffRepo.On("GetStaffByID", mock.Anything, "ghost").Return(nil, nil)

	_, err := svc.GetStaffProfile(context.Background(), "ghost")

	assert.ErrorIs(t, err, ErrStaffProfileNotFound)
}

func TestStaffService_GetStaffProfile_RepoError(t *testing.T) {
	staffRepo := new(MockStaffRepository)
	svc := NewStaffService(staffRepo)

	staffRepo.On("GetStaffByID", mock.Anything, "staff1").Return(nil, errors.New("db is down"))

	_, err := svc.GetStaffProfile(context.Background(), "staff1")

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrStaffProfileNotFound)
}
