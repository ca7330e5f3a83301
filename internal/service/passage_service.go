package service

import (
	"context"

	"bandbooster-authoring/internal/domain"
	"bandbooster-authoring/internal/dto"
	"bandbooster-authoring/internal/logger"

	"go.uber.org/zap"
)

// PassageService manages reading passages, the parent resource of
// question groups.
type PassageService interface {
	CreatePassage(ctx context.Context, req dto.PassageRequest) (*dto.PassageResponse, error)
	GetPassage(ctx context.Context, passageID string) (*dto.PassageResponse, error)
	ListPassages(ctx context.Context) ([]dto.PassageResponse, error)
	UpdatePassage(ctx context.Context, passageID string, req dto.PassageRequest) (*dto.PassageResponse, error)
}

type passageServiceImpl struct {
	passageRepo domain.PassageRepository
}

func NewPassageService(passageRepo domain.PassageRepository) PassageService {
	return &passageServiceImpl{passageRepo: passageRepo}
}

func (s *passageServiceImpl) CreatePassage(ctx context.Context, req dto.PassageRequest) (*dto.PassageResponse, error) {
	passage := domain.NewPassage(req.Title, req.Content)
	if err := passage.Validate(); err != nil {
		return nil, err
	}
	if err := s.passageRepo.SavePassage(ctx, passage); err != nil {
		return nil, err
	}

	logger.Get().Info("Passage created", zap.String("passageID", passage.ID))
	return toPassageResponse(passage), nil
}

func (s *passageServiceImpl) GetPassage(ctx context.Context, passageID string) (*dto.PassageResponse, error) {
	passage, err := s.passageRepo.GetPassageByID(ctx, passageID)
	if err != nil {
		return nil, err
	}
	if passage == nil {
		return nil, domain.NewPassageNotFoundError(passageID)
	}
	return toPassageResponse(passage), nil
}

func (s *passageServiceImpl) ListPassages(ctx context.Context) ([]dto.PassageResponse, error) {
	passages, err := s.passageRepo.ListPassages(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.PassageResponse, len(passages))
	for i, p := range passages {
		items[i] = *toPassageResponse(p)
	}
	return items, nil
}

func (s *passageServiceImpl) UpdatePassage(ctx context.Context, passageID string, req dto.PassageRequest) (*dto.PassageResponse, error) {
	passage, err := s.passageRepo.GetPassageByID(ctx, passageID)
	if err != nil {
		return nil, err
	}
	if passage == nil {
		return nil, domain.NewPassageNotFoundError(passageID)
	}

	passage.Title = req.Title
	passage.Content = req.Content
	if err := passage.Validate(); err != nil {
		return nil, err
	}
	if err := s.passageRepo.UpdatePassage(ctx, passage); err != nil {
		return nil, err
	}
	return toPassageResponse(passage), nil
}

func toPassageResponse(p *domain.Passage) *dto.PassageResponse {
	return &dto.PassageResponse{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
