package service

import (
	"context"
	"encoding/json"
	"time"

	"bandbooster-authoring/internal/cache"
	"bandbooster-authoring/internal/domain"
	"bandbooster-authoring/internal/dto"
	"bandbooster-authoring/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// GroupCacheService caches assembled group responses (group row plus
// question rows) so repeated editor loads skip the database.
type GroupCacheService interface {
	GetGroup(ctx context.Context, groupID string) (*dto.GroupResponse, error)
	InvalidateGroup(ctx context.Context, groupID string)
}

type groupCacheServiceImpl struct {
	cache     domain.Cache
	groupRepo domain.GroupRepository
	ttl       time.Duration
	sfGroup   singleflight.Group
}

// NewGroupCacheService creates a GroupCacheService. A nil cache is
// allowed; lookups then always go to the repository.
func NewGroupCacheService(cacheClient domain.Cache, groupRepo domain.GroupRepository, ttl time.Duration) GroupCacheService {
	return &groupCacheServiceImpl{
		cache:     cacheClient,
		groupRepo: groupRepo,
		ttl:       ttl,
	}
}

func groupCacheKey(groupID string) string {
	return cache.GenerateCacheKey("authoring", "group", groupID)
}

// GetGroup returns the cached response when present, otherwise loads
// from the repository under singleflight so concurrent editor loads of
// the same group issue one query.
func (s *groupCacheServiceImpl) GetGroup(ctx context.Context, groupID string) (*dto.GroupResponse, error) {
	appLogger := logger.Get()
	key := groupCacheKey(groupID)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key)
		if err == nil {
			var resp dto.GroupResponse
			if errUnmarshal := json.Unmarshal([]byte(cached), &resp); errUnmarshal == nil {
				return &resp, nil
			}
			appLogger.Warn("Discarding undecodable cached group payload",
				zap.String("groupID", groupID))
		} else if err != domain.ErrCacheMiss {
			appLogger.Error("Group cache read failed, falling through to repository",
				zap.Error(err), zap.String("groupID", groupID))
		}
	}

	res, err, _ := s.sfGroup.Do(key, func() (interface{}, error) {
		resp, fetchErr := s.loadGroup(ctx, groupID)
		if fetchErr != nil {
			return nil, fetchErr
		}

		if s.cache != nil && resp != nil {
			payload, errMarshal := json.Marshal(resp)
			if errMarshal != nil {
				appLogger.Error("Failed to marshal group response for caching",
					zap.Error(errMarshal), zap.String("groupID", groupID))
			} else if errSet := s.cache.Set(ctx, key, string(payload), s.ttl); errSet != nil {
				appLogger.Error("Failed to cache group response",
					zap.Error(errSet), zap.String("groupID", groupID))
			}
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}
	return res.(*dto.GroupResponse), nil
}

// InvalidateGroup drops the cached response after a save or delete.
func (s *groupCacheServiceImpl) InvalidateGroup(ctx context.Context, groupID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, groupCacheKey(groupID)); err != nil {
		logger.Get().Error("Failed to invalidate group cache",
			zap.Error(err), zap.String("groupID", groupID))
	}
}

func (s *groupCacheServiceImpl) loadGroup(ctx context.Context, groupID string) (*dto.GroupResponse, error) {
	group, err := s.groupRepo.GetGroupByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, domain.NewGroupNotFoundError(groupID)
	}
	questions, err := s.groupRepo.GetQuestions(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return buildGroupResponse(group, questions), nil
}

func buildGroupResponse(group *domain.QuestionGroup, questions []*domain.Question) *dto.GroupResponse {
	questionResponses := make([]dto.QuestionResponse, len(questions))
	for i, q := range questions {
		choices := q.Choices
		if choices == nil {
			choices = []string{}
		}
		questionResponses[i] = dto.QuestionResponse{
			ID:                q.ID,
			Position:          q.Position,
			QuestionText:      q.QuestionText,
			CorrectAnswerText: q.CorrectAnswerText,
			Choices:           choices,
			Explanation:       q.Explanation,
			Points:            q.Points,
		}
	}

	blankCount := 0
	if doc, err := domain.DecodeDocument(group.Type, group.Structure); err == nil {
		blankCount = domain.CountBlanks(doc)
	}

	return &dto.GroupResponse{
		ID:         group.ID,
		PassageID:  group.PassageID,
		Title:      group.Title,
		GroupType:  string(group.Type),
		Structure:  json.RawMessage(group.Structure),
		BlankCount: blankCount,
		Questions:  questionResponses,
		CreatedAt:  group.CreatedAt,
		UpdatedAt:  group.UpdatedAt,
	}
}
