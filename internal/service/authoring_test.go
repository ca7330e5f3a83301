package service

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"

	"bandbooster-authoring/internal/config"
	"bandbooster-authoring/internal/domain"
	"bandbooster-authoring/internal/dto"
	"bandbooster-authoring/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(config.LoggerConfig{Level: "debug"}); err != nil {
		panic("Failed to initialize logger for tests: " + err.Error())
	}

	exitVal := m.Run()

	_ = logger.Sync()
	os.Exit(exitVal)
}

const summaryStructure = `{"title":"Glacier formation","text":"Snow compacts into ice over ___ years and flows ___ downhill."}`

func newAuthoringFixture() (*MockGroupRepository, *MockPassageRepository, *MockRevisionRepository, *MockTransactionManager, *MockGroupCacheService, AuthoringService) {
	groupRepo := new(MockGroupRepository)
	passageRepo := new(MockPassageRepository)
	revisionRepo := new(MockRevisionRepository)
	txManager := new(MockTransactionManager)
	groupCache := new(MockGroupCacheService)
	svc := NewAuthoringService(groupRepo, passageRepo, revisionRepo, txManager, groupCache)
	return groupRepo, passageRepo, revisionRepo, txManager, groupCache, svc
}

func assertDomainCode(t *testing.T, err error, code domain.ErrorCode) {
	t.Helper()
	var domainErr *domain.DomainError
	assert.True(t, errors.As(err, &domainErr), "expected DomainError, got %v", err)
	assert.Equal(t, code, domainErr.Code)
}

func TestAuthoringService_CountBlanks(t *testing.T) {
	_, _, _, _, _, svc := newAuthoringFixture()

	resp, err := svc.CountBlanks(context.Background(), dto.StructureRequest{
		GroupType: "summary_completion",
		Structure: json.RawMessage(summaryStructure),
	})

	assert.NoError(t, err)
	assert.Equal(t, 2, resp.BlankCount)
	assert.True(t, resp.CanGenerate)
	assert.Empty(t, resp.Reason)
}

func TestAuthoringService_CountBlanks_NotReady(t *testing.T) {
	_, _, _, _, _, svc := newAuthoringFixture()

	resp, err := svc.CountBlanks(context.Background(), dto.StructureRequest{
		GroupType: "summary_completion",
		Structure: json.RawMessage(`{"title":"","text":"No blanks here."}`),
	})

	assert.NoError(t, err)
	assert.Equal(t, 0, resp.BlankCount)
	assert.False(t, resp.CanGenerate)
	assert.NotEmpty(t, resp.Reason)
}

func TestAuthoringService_CountBlanks_UnknownType(t *testing.T) {
	_, _, _, _, _, svc := newAuthoringFixture()

	_, err := svc.CountBlanks(context.Background(), dto.StructureRequest{
		GroupType: "matching_headings",
		Structure: json.RawMessage(`{}`),
	})

	assertDomainCode(t, err, domain.CodeUnknownGroupType)
}

func TestAuthoringService_Derive(t *testing.T) {
	_, _, _, _, _, svc := newAuthoringFixture()

	resp, err := svc.Derive(context.Background(), dto.StructureRequest{
		GroupType: "summary_completion",
		Structure: json.RawMessage(summaryStructure),
	})

	assert.NoError(t, err)
	assert.Len(t, resp.Questions, 2)
	for i, q := range resp.Questions {
		assert.Equal(t, i+1, q.Order)
		assert.NotEmpty(t, q.TempID)
		assert.NotEmpty(t, q.QuestionText)
		assert.Equal(t, 1, q.Points)
	}
}

func TestAuthoringService_Derive_LabelingCarriesAnswers(t *testing.T) {
	_, _, _, _, _, svc := newAuthoringFixture()

	structure := `{"title":"Water cycle","image_url":"/uploads/cycle.png","markers":[` +
		`{"id":"m1","x":10,"y":20,"label":"A","answer":"evaporation"},` +
		`{"id":"m2","x":50,"y":60,"label":"B","answer":"condensation"}]}`

	resp, err := svc.Derive(context.Background(), dto.StructureRequest{
		GroupType: "diagram_labeling",
		Structure: json.RawMessage(structure),
	})

	assert.NoError(t, err)
	assert.Len(t, resp.Questions, 2)
	assert.Equal(t, "evaporation", resp.Questions[0].CorrectAnswerText)
	assert.Equal(t, "condensation", resp.Questions[1].CorrectAnswerText)
}

func TestAuthoringService_Preview(t *testing.T) {
	_, _, _, _, _, svc := newAuthoringFixture()

	resp, err := svc.Preview(context.Background(), dto.StructureRequest{
		GroupType: "summary_completion",
		Structure: json.RawMessage(summaryStructure),
	})

	assert.NoError(t, err)
	assert.Equal(t, "Glacier formation", resp.Title)
	assert.NotEmpty(t, resp.Rows)

	var blankNumbers []int
	for _, row := range resp.Rows {
		for _, span := range row.Spans {
			if span.IsBlank {
				blankNumbers = append(blankNumbers, span.Number)
			}
		}
	}
	assert.Equal(t, []int{1, 2}, blankNumbers)
}

func TestAuthoringService_CreateGroup_Success(t *testing.T) {
	groupRepo, passageRepo, _, _, _, svc := newAuthoringFixture()

	passageRepo.On("GetPassageByID", mock.Anything, "psg1").Return(&domain.Passage{ID: "psg1", Title: "Glaciers"}, nil)
	groupRepo.On("SaveGroup", mock.Anything, mock.AnythingOfType("*domain.QuestionGroup")).Return(nil).Run(func(args mock.Arguments) {
		group := args.Get(1).(*domain.QuestionGroup)
		group.ID = "grp1"
	})

	resp, err := svc.CreateGroup(context.Background(), dto.CreateGroupRequest{
		PassageID: "psg1",
		Title:     "Questions 1-2",
		GroupType: "summary_completion",
		Structure: json.RawMessage(summaryStructure),
	})

	assert.NoError(t, err)
	assert.Equal(t, "grp1", resp.ID)
	assert.Equal(t, "summary_completion", resp.GroupType)
	assert.Equal(t, 2, resp.BlankCount)
	assert.Empty(t, resp.Questions)
	groupRepo.AssertExpectations(t)
	passageRepo.AssertExpectations(t)
}

func TestAuthoringService_CreateGroup_PassageNotFound(t *testing.T) {
	_, passageRepo, _, _, _, svc := newAuthoringFixture()

	passageRepo.On("GetPassageByID", mock.Anything, "missing").Return(nil, nil)

	_, err := svc.CreateGroup(context.Background(), dto.CreateGroupRequest{
		PassageID: "missing",
		Title:     "Questions 1-2",
		GroupType: "summary_completion",
	})

	assertDomainCode(t, err, domain.CodePassageNotFound)
}

func TestAuthoringService_CreateGroup_UnknownType(t *testing.T) {
	_, _, _, _, _, svc := newAuthoringFixture()

	_, err := svc.CreateGroup(context.Background(), dto.CreateGroupRequest{
		PassageID: "psg1",
		Title:     "Questions 1-2",
		GroupType: "true_false_not_given",
	})

	assertDomainCode(t, err, domain.CodeUnknownGroupType)
}

func savedGroup() *domain.QuestionGroup {
	return &domain.QuestionGroup{
		ID:        "grp1",
		PassageID: "psg1",
		Title:     "Questions 1-2",
		Type:      domain.GroupSummaryCompletion,
		Structure: summaryStructure,
	}
}

func TestAuthoringService_SaveGroup_EmptyQuestions(t *testing.T) {
	groupRepo, _, _, _, _, svc := newAuthoringFixture()

	groupRepo.On("GetGroupByID", mock.Anything, "grp1").Return(savedGroup(), nil)

	_, err := svc.SaveGroup(context.Background(), "grp1", "staff1", dto.SaveGroupRequest{
		Title:     "Questions 1-2",
		Structure: json.RawMessage(summaryStructure),
		Questions: []dto.QuestionPayload{},
	})

	assertDomainCode(t, err, domain.CodeSaveBlocked)
}

func TestAuthoringService_SaveGroup_MissingAnswer(t *testing.T) {
	groupRepo, _, _, _, _, svc := newAuthoringFixture()

	groupRepo.On("GetGroupByID", mock.Anything, "grp1").Return(savedGroup(), nil)

	_, err := svc.SaveGroup(context.Background(), "grp1", "staff1", dto.SaveGroupRequest{
		Title:     "Questions 1-2",
		Structure: json.RawMessage(summaryStructure),
		Questions: []dto.QuestionPayload{
			{Position: 1, QuestionText: "Q1", CorrectAnswerText: "thousands", Points: 1},
			{Position: 2, QuestionText: "Q2", CorrectAnswerText: "   ", Points: 1},
		},
	})

	assertDomainCode(t, err, domain.CodeSaveBlocked)
}

func TestAuthoringService_SaveGroup_MalformedStructureRejected(t *testing.T) {
	groupRepo, _, _, txManager, groupCache, svc := newAuthoringFixture()

	groupRepo.On("GetGroupByID", mock.Anything, "grp1").Return(savedGroup(), nil)

	// Valid JSON, wrong shape: must not overwrite the stored structure
	// with the empty document.
	for _, structure := range []string{`[]`, `"a string"`, `{"title": 3}`} {
		_, err := svc.SaveGroup(context.Background(), "grp1", "staff1", dto.SaveGroupRequest{
			Title:     "Questions 1-2",
			Structure: json.RawMessage(structure),
			Questions: []dto.QuestionPayload{
				{Position: 1, QuestionText: "Q1", CorrectAnswerText: "thousands", Points: 1},
				{Position: 2, QuestionText: "Q2", CorrectAnswerText: "slowly", Points: 1},
			},
		})

		assertDomainCode(t, err, domain.CodeInvalidInput)
	}

	txManager.AssertNotCalled(t, "WithTransaction", mock.Anything)
	groupRepo.AssertNotCalled(t, "UpdateGroup", mock.Anything, mock.Anything)
	groupCache.AssertNotCalled(t, "InvalidateGroup", mock.Anything, "grp1")
}

func TestAuthoringService_CreateGroup_MalformedStructureRejected(t *testing.T) {
	groupRepo, passageRepo, _, _, _, svc := newAuthoringFixture()

	passageRepo.On("GetPassageByID", mock.Anything, "psg1").Return(&domain.Passage{ID: "psg1", Title: "P"}, nil)

	_, err := svc.CreateGroup(context.Background(), dto.CreateGroupRequest{
		PassageID: "psg1",
		Title:     "Questions 1-2",
		GroupType: string(domain.GroupSummaryCompletion),
		Structure: json.RawMessage(`[]`),
	})

	assertDomainCode(t, err, domain.CodeInvalidInput)
	groupRepo.AssertNotCalled(t, "SaveGroup", mock.Anything, mock.Anything)
}

func TestAuthoringService_SaveGroup_GroupNotFound(t *testing.T) {
	groupRepo, _, _, _, _, svc := newAuthoringFixture()

	groupRepo.On("GetGroupByID", mock.Anything, "missing").Return(nil, nil)

	_, err := svc.SaveGroup(context.Background(), "missing", "staff1", dto.SaveGroupRequest{})

	assertDomainCode(t, err, domain.CodeGroupNotFound)
}

func TestAuthoringService_SaveGroup_Success(t *testing.T) {
	groupRepo, _, revisionRepo, txManager, groupCache, svc := newAuthoringFixture()

	groupRepo.On("GetGroupByID", mock.Anything, "grp1").Return(savedGroup(), nil)
	txManager.On("WithTransaction", mock.Anything).Return(nil)
	groupRepo.On("UpdateGroup", mock.Anything, mock.AnythingOfType("*domain.QuestionGroup")).Return(nil)
	groupRepo.On("ReplaceQuestions", mock.Anything, "grp1", mock.MatchedBy(func(rows []*domain.Question) bool {
		if len(rows) != 2 {
			return false
		}
		return rows[0].Position == 1 && rows[1].Position == 2
	})).Return(nil)
	revisionRepo.On("AppendRevision", mock.Anything, mock.MatchedBy(func(r *domain.GroupRevision) bool {
		return r.GroupID == "grp1" && r.SavedBy == "staff1" && r.QuestionCount == 2
	})).Return(nil)
	groupCache.On("InvalidateGroup", mock.Anything, "grp1").Return()

	// Positions arrive out of order and sparse; the save renumbers them.
	resp, err := svc.SaveGroup(context.Background(), "grp1", "staff1", dto.SaveGroupRequest{
		Title:     "Questions 1-2 (revised)",
		Structure: json.RawMessage(summaryStructure),
		Questions: []dto.QuestionPayload{
			{Position: 7, QuestionText: "Q2", CorrectAnswerText: "slowly", Points: 1},
			{Position: 3, QuestionText: "Q1", CorrectAnswerText: "thousands", Points: 1},
		},
	})

	assert.NoError(t, err)
	assert.Equal(t, "Questions 1-2 (revised)", resp.Title)
	assert.Len(t, resp.Questions, 2)
	assert.Equal(t, "thousands", resp.Questions[0].CorrectAnswerText)
	assert.Equal(t, "slowly", resp.Questions[1].CorrectAnswerText)
	groupRepo.AssertExpectations(t)
	revisionRepo.AssertExpectations(t)
	groupCache.AssertExpectations(t)
}

func TestAuthoringService_SaveGroup_TxFailureSkipsInvalidation(t *testing.T) {
	groupRepo, _, _, txManager, groupCache, svc := newAuthoringFixture()

	groupRepo.On("GetGroupByID", mock.Anything, "grp1").Return(savedGroup(), nil)
	txManager.On("WithTransaction", mock.Anything).Return(errors.New("db is down"))

	_, err := svc.SaveGroup(context.Background(), "grp1", "staff1", dto.SaveGroupRequest{
		Title:     "Questions 1-2",
		Structure: json.RawMessage(summaryStructure),
		Questions: []dto.QuestionPayload{
			{Position: 1, QuestionText: "Q1", CorrectAnswerText: "thousands", Points: 1},
		},
	})

	assert.Error(t, err)
	groupCache.AssertNotCalled(t, "InvalidateGroup", mock.Anything, mock.Anything)
}

func TestAuthoringService_DeleteGroup(t *testing.T) {
	groupRepo, _, _, _, groupCache, svc := newAuthoringFixture()

	groupRepo.On("DeleteGroup", mock.Anything, "grp1").Return(nil)
	groupCache.On("InvalidateGroup", mock.Anything, "grp1").Return()

	err := svc.DeleteGroup(context.Background(), "grp1")

	assert.NoError(t, err)
	groupRepo.AssertExpectations(t)
	groupCache.AssertExpectations(t)
}

func TestAuthoringService_ListRevisions_GroupNotFound(t *testing.T) {
	groupRepo, _, _, _, _, svc := newAuthoringFixture()

	groupRepo.On("GetGroupByID", mock.Anything, "missing").Return(nil, nil)

	_, err := svc.ListRevisions(context.Background(), "missing")

	assertDomainCode(t, err, domain.CodeGroupNotFound)
}

func TestAuthoringService_ListGroupsByPassage(t *testing.T) {
	groupRepo, _, _, _, _, svc := newAuthoringFixture()

	groupRepo.On("ListGroupsByPassage", mock.Anything, "psg1").Return([]*domain.QuestionGroup{savedGroup()}, nil)
	groupRepo.On("GetQuestions", mock.Anything, "grp1").Return([]*domain.Question{
		{ID: "q1", Position: 1}, {ID: "q2", Position: 2},
	}, nil)

	summaries, err := svc.ListGroupsByPassage(context.Background(), "psg1")

	assert.NoError(t, err)
	assert.Len(t, summaries, 1)
	assert.Equal(t, "grp1", summaries[0].ID)
	assert.Equal(t, 2, summaries[0].QuestionCount)
}
