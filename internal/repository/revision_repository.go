package repository

import (
	"context"
	"fmt"
	"time"

	"bandbooster-authoring/internal/domain"
	"bandbooster-authoring/internal/repository/models"
	"bandbooster-authoring/internal/util"

	"github.com/jmoiron/sqlx"
)

// RevisionDatabaseAdapter implements domain.RevisionRepository using
// sqlx. Revisions are append-only; there is no update path.
type RevisionDatabaseAdapter struct {
	db *sqlx.DB
}

func NewRevisionDatabaseAdapter(db *sqlx.DB) domain.RevisionRepository {
	return &RevisionDatabaseAdapter{db: db}
}

// AppendRevision records one structure snapshot.
func (a *RevisionDatabaseAdapter) AppendRevision(ctx context.Context, revision *domain.GroupRevision) error {
	if revision == nil {
		return fmt.Errorf("cannot append nil revision")
	}
	exec := GetExecutor(ctx, a.db)
	id := util.NewULID()
	now := time.Now()

	query := `INSERT INTO group_revisions (ID, GROUP_ID, STRUCTURE, QUESTION_COUNT, SAVED_BY, CREATED_AT)
	VALUES (:1, :2, :3, :4, :5, :6)`

	_, err := exec.ExecContext(ctx, query,
		id, revision.GroupID, revision.Structure, revision.QuestionCount, revision.SavedBy, now)
	if err != nil {
		return fmt.Errorf("failed to append revision for group %s: %w", revision.GroupID, err)
	}

	revision.ID = id
	revision.CreatedAt = now
	return nil
}

// ListRevisionsByGroup returns the group's snapshots, newest first.
func (a *RevisionDatabaseAdapter) ListRevisionsByGroup(ctx context.Context, groupID string) ([]*domain.GroupRevision, error) {
	exec := GetExecutor(ctx, a.db)
	var modelRevisions []models.GroupRevision
	query := `SELECT ID, GROUP_ID, STRUCTURE, QUESTION_COUNT, SAVED_BY, CREATED_AT
	FROM group_revisions WHERE GROUP_ID = :1 ORDER BY CREATED_AT DESC`

	err := exec.SelectContext(ctx, &modelRevisions, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list revisions for group %s: %w", groupID, err)
	}

	revisions := make([]*domain.GroupRevision, 0, len(modelRevisions))
	for _, m := range modelRevisions {
		revisions = append(revisions, &domain.GroupRevision{
			ID:            m.ID,
			GroupID:       m.GroupID,
			Structure:     m.Structure,
			QuestionCount: m.QuestionCount,
			SavedBy:       m.SavedBy,
			CreatedAt:     m.CreatedAt,
		})
	}
	return revisions, nil
}
