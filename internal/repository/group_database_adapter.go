package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bandbooster-authoring/internal/domain"
	"bandbooster-authoring/internal/repository/models"
	"bandbooster-authoring/internal/util"

	"github.com/jmoiron/sqlx"
)

// GroupDatabaseAdapter implements domain.GroupRepository using sqlx.
type GroupDatabaseAdapter struct {
	db *sqlx.DB
}

func NewGroupDatabaseAdapter(db *sqlx.DB) domain.GroupRepository {
	return &GroupDatabaseAdapter{db: db}
}

const groupColumns = `ID, PASSAGE_ID, TITLE, GROUP_TYPE, STRUCTURE, CREATED_AT, UPDATED_AT, DELETED_AT`

// GetGroupByID implements domain.GroupRepository. Returns nil, nil when
// the group does not exist.
func (a *GroupDatabaseAdapter) GetGroupByID(ctx context.Context, id string) (*domain.QuestionGroup, error) {
	exec := GetExecutor(ctx, a.db)
	var modelGroup models.QuestionGroup
	query := `SELECT ` + groupColumns + ` FROM question_groups WHERE ID = :1 AND DELETED_AT IS NULL`

	err := exec.GetContext(ctx, &modelGroup, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get group by ID %s: %w", id, err)
	}
	return toDomainGroup(&modelGroup), nil
}

// GetQuestions implements domain.GroupRepository. Rows come back in
// position order, which is dense 1..N within the group.
func (a *GroupDatabaseAdapter) GetQuestions(ctx context.Context, groupID string) ([]*domain.Question, error) {
	exec := GetExecutor(ctx, a.db)
	var modelQuestions []models.Question
	query := `SELECT ID, GROUP_ID, POSITION, QUESTION_TEXT, CORRECT_ANSWER_TEXT, CHOICES, EXPLANATION, POINTS, CREATED_AT, UPDATED_AT, DELETED_AT
	FROM questions
	WHERE GROUP_ID = :1 AND DELETED_AT IS NULL
	ORDER BY POSITION ASC`

	err := exec.SelectContext(ctx, &modelQuestions, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions for group %s: %w", groupID, err)
	}

	questions := make([]*domain.Question, 0, len(modelQuestions))
	for i := range modelQuestions {
		questions = append(questions, toDomainQuestion(&modelQuestions[i]))
	}
	return questions, nil
}

// ListGroupsByPassage implements domain.GroupRepository.
func (a *GroupDatabaseAdapter) ListGroupsByPassage(ctx context.Context, passageID string) ([]*domain.QuestionGroup, error) {
	exec := GetExecutor(ctx, a.db)
	var modelGroups []models.QuestionGroup
	query := `SELECT ` + groupColumns + ` FROM question_groups
	WHERE PASSAGE_ID = :1 AND DELETED_AT IS NULL
	ORDER BY CREATED_AT ASC`

	err := exec.SelectContext(ctx, &modelGroups, query, passageID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups for passage %s: %w", passageID, err)
	}

	groups := make([]*domain.QuestionGroup, 0, len(modelGroups))
	for i := range modelGroups {
		groups = append(groups, toDomainGroup(&modelGroups[i]))
	}
	return groups, nil
}

// SaveGroup implements domain.GroupRepository.
func (a *GroupDatabaseAdapter) SaveGroup(ctx context.Context, group *domain.QuestionGroup) error {
	if group == nil {
		return fmt.Errorf("cannot save nil group")
	}
	exec := GetExecutor(ctx, a.db)
	modelGroup := toModelGroup(group)
	modelGroup.ID = util.NewULID()
	modelGroup.CreatedAt = time.Now()
	modelGroup.UpdatedAt = modelGroup.CreatedAt

	query := `INSERT INTO question_groups (ID, PASSAGE_ID, TITLE, GROUP_TYPE, STRUCTURE, CREATED_AT, UPDATED_AT)
	VALUES (:1, :2, :3, :4, :5, :6, :7)`

	_, err := exec.ExecContext(ctx, query,
		modelGroup.ID,
		modelGroup.PassageID,
		modelGroup.Title,
		modelGroup.GroupType,
		modelGroup.Structure,
		modelGroup.CreatedAt,
		modelGroup.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save group: %w", err)
	}

	group.ID = modelGroup.ID
	group.CreatedAt = modelGroup.CreatedAt
	group.UpdatedAt = modelGroup.UpdatedAt
	return nil
}

// UpdateGroup implements domain.GroupRepository.
func (a *GroupDatabaseAdapter) UpdateGroup(ctx context.Context, group *domain.QuestionGroup) error {
	if group == nil {
		return fmt.Errorf("cannot update nil group")
	}
	if group.ID == "" {
		return fmt.Errorf("cannot update group with empty ID")
	}
	exec := GetExecutor(ctx, a.db)
	updatedAt := time.Now()

	query := `UPDATE question_groups SET
		TITLE = :1,
		STRUCTURE = :2,
		UPDATED_AT = :3
	WHERE ID = :4 AND DELETED_AT IS NULL`

	result, err := exec.ExecContext(ctx, query, group.Title, group.Structure, updatedAt, group.ID)
	if err != nil {
		return fmt.Errorf("failed to update group: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.NewGroupNotFoundError(group.ID)
	}
	group.UpdatedAt = updatedAt
	return nil
}

// ReplaceQuestions implements domain.GroupRepository. The old rows are
// soft-deleted and the new set inserted with fresh ids; callers wrap
// this together with UpdateGroup in one transaction.
func (a *GroupDatabaseAdapter) ReplaceQuestions(ctx context.Context, groupID string, questions []*domain.Question) error {
	exec := GetExecutor(ctx, a.db)
	now := time.Now()

	deleteQuery := `UPDATE questions SET DELETED_AT = :1 WHERE GROUP_ID = :2 AND DELETED_AT IS NULL`
	if _, err := exec.ExecContext(ctx, deleteQuery, now, groupID); err != nil {
		return fmt.Errorf("failed to clear questions for group %s: %w", groupID, err)
	}

	insertQuery := `INSERT INTO questions (ID, GROUP_ID, POSITION, QUESTION_TEXT, CORRECT_ANSWER_TEXT, CHOICES, EXPLANATION, POINTS, CREATED_AT, UPDATED_AT)
	VALUES (:1, :2, :3, :4, :5, :6, :7, :8, :9, :10)`

	for _, q := range questions {
		modelQuestion := toModelQuestion(q)
		modelQuestion.ID = util.NewULID()
		modelQuestion.GroupID = groupID
		modelQuestion.CreatedAt = now
		modelQuestion.UpdatedAt = now

		choicesVal, err := modelQuestion.Choices.Value()
		if err != nil {
			return fmt.Errorf("failed to serialize choices: %w", err)
		}

		_, err = exec.ExecContext(ctx, insertQuery,
			modelQuestion.ID,
			modelQuestion.GroupID,
			modelQuestion.Position,
			modelQuestion.QuestionText,
			modelQuestion.CorrectAnswerText,
			choicesVal,
			modelQuestion.Explanation,
			modelQuestion.Points,
			modelQuestion.CreatedAt,
			modelQuestion.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert question at position %d: %w", q.Position, err)
		}

		q.ID = modelQuestion.ID
		q.GroupID = groupID
		q.CreatedAt = now
		q.UpdatedAt = now
	}
	return nil
}

// DeleteGroup implements domain.GroupRepository. Soft-deletes the group
// and its question rows.
func (a *GroupDatabaseAdapter) DeleteGroup(ctx context.Context, id string) error {
	exec := GetExecutor(ctx, a.db)
	now := time.Now()

	result, err := exec.ExecContext(ctx,
		`UPDATE question_groups SET DELETED_AT = :1 WHERE ID = :2 AND DELETED_AT IS NULL`, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete group %s: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.NewGroupNotFoundError(id)
	}

	if _, err := exec.ExecContext(ctx,
		`UPDATE questions SET DELETED_AT = :1 WHERE GROUP_ID = :2 AND DELETED_AT IS NULL`, now, id); err != nil {
		return fmt.Errorf("failed to delete questions for group %s: %w", id, err)
	}
	return nil
}

func toDomainGroup(m *models.QuestionGroup) *domain.QuestionGroup {
	return &domain.QuestionGroup{
		ID:        m.ID,
		PassageID: m.PassageID,
		Title:     m.Title,
		Type:      domain.GroupType(m.GroupType),
		Structure: m.Structure,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toModelGroup(d *domain.QuestionGroup) *models.QuestionGroup {
	return &models.QuestionGroup{
		ID:        d.ID,
		PassageID: d.PassageID,
		Title:     d.Title,
		GroupType: string(d.Type),
		Structure: d.Structure,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func toDomainQuestion(m *models.Question) *domain.Question {
	choices := []string(m.Choices)
	if choices == nil {
		choices = []string{}
	}
	return &domain.Question{
		ID:                m.ID,
		GroupID:           m.GroupID,
		Position:          m.Position,
		QuestionText:      m.QuestionText,
		CorrectAnswerText: m.CorrectAnswerText,
		Choices:           choices,
		Explanation:       m.Explanation.String,
		Points:            m.Points,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func toModelQuestion(d *domain.Question) *models.Question {
	return &models.Question{
		ID:                d.ID,
		GroupID:           d.GroupID,
		Position:          d.Position,
		QuestionText:      d.QuestionText,
		CorrectAnswerText: d.CorrectAnswerText,
		Choices:           models.StringSlice(d.Choices),
		Explanation:       util.StringToNullString(d.Explanation),
		Points:            d.Points,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}
