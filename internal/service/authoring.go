package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"bandbooster-authoring/internal/domain"
	"bandbooster-authoring/internal/dto"
	"bandbooster-authoring/internal/logger"
	"bandbooster-authoring/internal/util"

	"go.uber.org/zap"
)

// AuthoringService is the application service behind the question-group
// editor: stateless structure operations (count, derive, preview) plus
// the persistence lifecycle of groups and their revisions.
type AuthoringService interface {
	CountBlanks(ctx context.Context, req dto.StructureRequest) (*dto.BlankCountResponse, error)
	Derive(ctx context.Context, req dto.StructureRequest) (*dto.DeriveResponse, error)
	Preview(ctx context.Context, req dto.StructureRequest) (*dto.PreviewResponse, error)

	CreateGroup(ctx context.Context, req dto.CreateGroupRequest) (*dto.GroupResponse, error)
	GetGroup(ctx context.Context, groupID string) (*dto.GroupResponse, error)
	ListGroupsByPassage(ctx context.Context, passageID string) ([]dto.GroupSummaryResponse, error)
	SaveGroup(ctx context.Context, groupID, staffID string, req dto.SaveGroupRequest) (*dto.GroupResponse, error)
	DeleteGroup(ctx context.Context, groupID string) error
	ListRevisions(ctx context.Context, groupID string) ([]dto.RevisionResponse, error)
}

type authoringServiceImpl struct {
	groupRepo    domain.GroupRepository
	passageRepo  domain.PassageRepository
	revisionRepo domain.RevisionRepository
	txManager    domain.TransactionManager
	groupCache   GroupCacheService
}

func NewAuthoringService(
	groupRepo domain.GroupRepository,
	passageRepo domain.PassageRepository,
	revisionRepo domain.RevisionRepository,
	txManager domain.TransactionManager,
	groupCache GroupCacheService,
) AuthoringService {
	return &authoringServiceImpl{
		groupRepo:    groupRepo,
		passageRepo:  passageRepo,
		revisionRepo: revisionRepo,
		txManager:    txManager,
		groupCache:   groupCache,
	}
}

func decodeStructure(groupType string, structure json.RawMessage) (domain.Document, error) {
	t := domain.GroupType(groupType)
	if !domain.KnownGroupType(t) {
		return nil, domain.NewUnknownGroupTypeError(groupType)
	}
	return domain.DecodeDocument(t, string(structure))
}

// CountBlanks reports the blank count and generation readiness for a
// document; the editor calls this on every structural edit.
func (s *authoringServiceImpl) CountBlanks(ctx context.Context, req dto.StructureRequest) (*dto.BlankCountResponse, error) {
	doc, err := decodeStructure(req.GroupType, req.Structure)
	if err != nil {
		return nil, err
	}

	resp := &dto.BlankCountResponse{
		BlankCount:  domain.CountBlanks(doc),
		CanGenerate: true,
	}
	if genErr := doc.CanGenerate(); genErr != nil {
		resp.CanGenerate = false
		var domainErr *domain.DomainError
		if errors.As(genErr, &domainErr) {
			resp.Reason = domainErr.Message
		} else {
			resp.Reason = genErr.Error()
		}
	}
	return resp, nil
}

// Derive generates the question set from a document.
func (s *authoringServiceImpl) Derive(ctx context.Context, req dto.StructureRequest) (*dto.DeriveResponse, error) {
	doc, err := decodeStructure(req.GroupType, req.Structure)
	if err != nil {
		return nil, err
	}

	questions, err := domain.Derive(doc, util.NewULID)
	if err != nil {
		return nil, err
	}

	items := make([]dto.DerivedQuestionResponse, len(questions))
	for i, q := range questions {
		items[i] = dto.DerivedQuestionResponse{
			TempID:            q.TempID,
			Order:             q.Order,
			QuestionText:      q.QuestionText,
			CorrectAnswerText: q.CorrectAnswerText,
			Choices:           q.Choices,
			Explanation:       q.Explanation,
			Points:            q.Points,
			ContextBefore:     q.ContextBefore,
			ContextAfter:      q.ContextAfter,
		}
	}
	return &dto.DeriveResponse{Questions: items}, nil
}

// Preview renders the student-facing view of a document.
func (s *authoringServiceImpl) Preview(ctx context.Context, req dto.StructureRequest) (*dto.PreviewResponse, error) {
	doc, err := decodeStructure(req.GroupType, req.Structure)
	if err != nil {
		return nil, err
	}

	model := domain.Preview(doc)
	rows := make([]dto.PreviewRowResponse, len(model.Rows))
	for i, row := range model.Rows {
		spans := make([]dto.PreviewSpanResponse, len(row.Spans))
		for j, span := range row.Spans {
			spans[j] = dto.PreviewSpanResponse{
				Text:    span.Text,
				IsBlank: span.IsBlank,
				Number:  span.Number,
			}
		}
		rows[i] = dto.PreviewRowResponse{
			Label:    row.Label,
			IsHeader: row.IsHeader,
			Spans:    spans,
		}
	}
	return &dto.PreviewResponse{
		Title:    model.Title,
		ImageURL: model.ImageURL,
		Rows:     rows,
	}, nil
}

// CreateGroup opens a new question group on a passage. The structure is
// optional; an absent or empty one starts as the empty document of the
// requested type.
func (s *authoringServiceImpl) CreateGroup(ctx context.Context, req dto.CreateGroupRequest) (*dto.GroupResponse, error) {
	t := domain.GroupType(req.GroupType)
	if !domain.KnownGroupType(t) {
		return nil, domain.NewUnknownGroupTypeError(req.GroupType)
	}

	passage, err := s.passageRepo.GetPassageByID(ctx, req.PassageID)
	if err != nil {
		return nil, fmt.Errorf("failed to check passage: %w", err)
	}
	if passage == nil {
		return nil, domain.NewPassageNotFoundError(req.PassageID)
	}

	structure := string(req.Structure)
	doc, err := domain.DecodeDocumentStrict(t, structure)
	if err != nil {
		return nil, err
	}
	// Re-serialize so the stored structure is always canonical JSON.
	structure, err = domain.EncodeDocument(doc)
	if err != nil {
		return nil, err
	}

	group := domain.NewQuestionGroup(req.PassageID, req.Title, t, structure)
	if err := group.Validate(); err != nil {
		return nil, err
	}
	if err := s.groupRepo.SaveGroup(ctx, group); err != nil {
		return nil, err
	}

	logger.Get().Info("Question group created",
		zap.String("groupID", group.ID),
		zap.String("passageID", group.PassageID),
		zap.String("groupType", string(group.Type)))

	return buildGroupResponse(group, nil), nil
}

// GetGroup loads a group with its questions, through the cache.
func (s *authoringServiceImpl) GetGroup(ctx context.Context, groupID string) (*dto.GroupResponse, error) {
	return s.groupCache.GetGroup(ctx, groupID)
}

// ListGroupsByPassage lists a passage's groups without their payloads.
func (s *authoringServiceImpl) ListGroupsByPassage(ctx context.Context, passageID string) ([]dto.GroupSummaryResponse, error) {
	groups, err := s.groupRepo.ListGroupsByPassage(ctx, passageID)
	if err != nil {
		return nil, err
	}

	summaries := make([]dto.GroupSummaryResponse, len(groups))
	for i, g := range groups {
		questions, err := s.groupRepo.GetQuestions(ctx, g.ID)
		if err != nil {
			return nil, err
		}
		summaries[i] = dto.GroupSummaryResponse{
			ID:            g.ID,
			Title:         g.Title,
			GroupType:     string(g.Type),
			QuestionCount: len(questions),
			UpdatedAt:     g.UpdatedAt,
		}
	}
	return summaries, nil
}

// SaveGroup persists an authoring session: structure and questions
// together, atomically, with a revision snapshot. The save is refused
// when the question set is empty or any answer is blank.
func (s *authoringServiceImpl) SaveGroup(ctx context.Context, groupID, staffID string, req dto.SaveGroupRequest) (*dto.GroupResponse, error) {
	group, err := s.groupRepo.GetGroupByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, domain.NewGroupNotFoundError(groupID)
	}

	questionList, err := toQuestionList(req.Questions)
	if err != nil {
		return nil, err
	}
	if len(questionList) == 0 {
		return nil, domain.NewSaveBlockedError("Generate questions before saving")
	}
	if !questionList.CanSave() {
		return nil, domain.NewSaveBlockedError("Every question needs a correct answer before saving")
	}
	if err := questionList.Validate(); err != nil {
		return nil, err
	}

	// The structure must decode under the group's own type; the type is
	// fixed at creation. Strict here: a malformed payload must not
	// overwrite the stored structure with the empty document.
	doc, err := domain.DecodeDocumentStrict(group.Type, string(req.Structure))
	if err != nil {
		return nil, err
	}
	structure, err := domain.EncodeDocument(doc)
	if err != nil {
		return nil, err
	}

	group.Title = req.Title
	group.Structure = structure
	if err := group.Validate(); err != nil {
		return nil, err
	}

	rows := make([]*domain.Question, len(questionList))
	for i, q := range questionList {
		rows[i] = &domain.Question{
			Position:          q.Order,
			QuestionText:      q.QuestionText,
			CorrectAnswerText: q.CorrectAnswerText,
			Choices:           q.Choices,
			Explanation:       q.Explanation,
			Points:            q.Points,
		}
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.groupRepo.UpdateGroup(txCtx, group); err != nil {
			return err
		}
		if err := s.groupRepo.ReplaceQuestions(txCtx, groupID, rows); err != nil {
			return err
		}
		return s.revisionRepo.AppendRevision(txCtx, &domain.GroupRevision{
			GroupID:       groupID,
			Structure:     structure,
			QuestionCount: len(rows),
			SavedBy:       staffID,
		})
	})
	if err != nil {
		return nil, err
	}

	s.groupCache.InvalidateGroup(ctx, groupID)

	logger.Get().Info("Question group saved",
		zap.String("groupID", groupID),
		zap.String("staffID", staffID),
		zap.Int("questionCount", len(rows)))

	return buildGroupResponse(group, rows), nil
}

// DeleteGroup soft-deletes a group and drops its cache entry.
func (s *authoringServiceImpl) DeleteGroup(ctx context.Context, groupID string) error {
	if err := s.groupRepo.DeleteGroup(ctx, groupID); err != nil {
		return err
	}
	s.groupCache.InvalidateGroup(ctx, groupID)
	return nil
}

// ListRevisions lists a group's save snapshots, newest first.
func (s *authoringServiceImpl) ListRevisions(ctx context.Context, groupID string) ([]dto.RevisionResponse, error) {
	group, err := s.groupRepo.GetGroupByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, domain.NewGroupNotFoundError(groupID)
	}

	revisions, err := s.revisionRepo.ListRevisionsByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	items := make([]dto.RevisionResponse, len(revisions))
	for i, r := range revisions {
		items[i] = dto.RevisionResponse{
			ID:            r.ID,
			Structure:     json.RawMessage(r.Structure),
			QuestionCount: r.QuestionCount,
			SavedBy:       r.SavedBy,
			CreatedAt:     r.CreatedAt,
		}
	}
	return items, nil
}

// toQuestionList rebuilds the in-memory question list from the save
// payload, renumbering to keep positions dense whatever the client sent.
func toQuestionList(payloads []dto.QuestionPayload) (domain.QuestionList, error) {
	ordered := make([]dto.QuestionPayload, len(payloads))
	copy(ordered, payloads)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Position < ordered[j].Position })

	list := make(domain.QuestionList, 0, len(ordered))
	for _, p := range ordered {
		choices := p.Choices
		if choices == nil {
			choices = []string{}
		}
		points := p.Points
		if points < 1 {
			points = 1
		}
		list = append(list, &domain.DerivedQuestion{
			TempID:            util.NewULID(),
			Order:             p.Position,
			QuestionText:      p.QuestionText,
			CorrectAnswerText: p.CorrectAnswerText,
			Choices:           choices,
			Explanation:       p.Explanation,
			Points:            points,
		})
	}
	list.Renumber()
	return list, nil
}
