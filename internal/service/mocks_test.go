package service

import (
	"context"
	"time"

	"bandbooster-authoring/internal/domain"
	"bandbooster-authoring/internal/dto"
	"bandbooster-authoring/internal/repository/models"

	"github.com/stretchr/testify/mock"
)

// --- MockGroupRepository ---

type MockGroupRepository struct {
	mock.Mock
}

func (m *MockGroupRepository) GetGroupByID(ctx context.Context, id string) (*domain.QuestionGroup, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QuestionGroup), args.Error(1)
}

func (m *MockGroupRepository) GetQuestions(ctx context.Context, groupID string) ([]*domain.Question, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Question), args.Error(1)
}

func (m *MockGroupRepository) ListGroupsByPassage(ctx context.Context, passageID string) ([]*domain.QuestionGroup, error) {
	args := m.Called(ctx, passageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.QuestionGroup), args.Error(1)
}

func (m *MockGroupRepository) SaveGroup(ctx context.Context, group *domain.QuestionGroup) error {
	args := m.Called(ctx, group)
	return args.Error(0)
}

func (m *MockGroupRepository) UpdateGroup(ctx context.Context, group *domain.QuestionGroup) error {
	args := m.Called(ctx, group)
	return args.Error(0)
}

func (m *MockGroupRepository) ReplaceQuestions(ctx context.Context, groupID string, questions []*domain.Question) error {
	args := m.Called(ctx, groupID, questions)
	return args.Error(0)
}

func (m *MockGroupRepository) DeleteGroup(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// --- MockPassageRepository ---

type MockPassageRepository struct {
	mock.Mock
}

func (m *MockPassageRepository) GetPassageByID(ctx context.Context, id string) (*domain.Passage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Passage), args.Error(1)
}

func (m *MockPassageRepository) ListPassages(ctx context.Context) ([]*domain.Passage, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Passage), args.Error(1)
}

func (m *MockPassageRepository) SavePassage(ctx context.Context, passage *domain.Passage) error {
	args := m.Called(ctx, passage)
	return args.Error(0)
}

func (m *MockPassageRepository) UpdatePassage(ctx context.Context, passage *domain.Passage) error {
	args := m.Called(ctx, passage)
	return args.Error(0)
}

// --- MockRevisionRepository ---

type MockRevisionRepository struct {
	mock.Mock
}

func (m *MockRevisionRepository) AppendRevision(ctx context.Context, revision *domain.GroupRevision) error {
	args := m.Called(ctx, revision)
	return args.Error(0)
}

func (m *MockRevisionRepository) ListRevisionsByGroup(ctx context.Context, groupID string) ([]*domain.GroupRevision, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.GroupRevision), args.Error(1)
}

// --- MockTransactionManager ---

// MockTransactionManager runs the function inline, no real transaction.
type MockTransactionManager struct {
	mock.Mock
}

func (m *MockTransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

// --- MockGroupCacheService ---

type MockGroupCacheService struct {
	mock.Mock
}

func (m *MockGroupCacheService) GetGroup(ctx context.Context, groupID string) (*dto.GroupResponse, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.GroupResponse), args.Error(1)
}

func (m *MockGroupCacheService) InvalidateGroup(ctx context.Context, groupID string) {
	m.Called(ctx, groupID)
}

// --- MockStaffRepository ---

type MockStaffRepository struct {
	mock.Mock
}

func (m *MockStaffRepository) CreateStaff(ctx context.Context, staff *models.Staff) error {
	args := m.Called(ctx, staff)
	return args.Error(0)
}

func (m *MockStaffRepository) GetStaffByGoogleID(ctx context.Context, googleID string) (*models.Staff, error) {
	args := m.Called(ctx, googleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Staff), args.Error(1)
}

func (m *MockStaffRepository) GetStaffByID(ctx context.Context, staffID string) (*models.Staff, error) {
	args := m.Called(ctx, staffID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Staff), args.Error(1)
}

func (m *MockStaffRepository) UpdateStaff(ctx context.Context, staff *models.Staff) error {
	args := m.Called(ctx, staff)
	return args.Error(0)
}

// --- MockCache ---

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCache) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
