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

// PassageDatabaseAdapter implements domain.PassageRepository using sqlx.
type PassageDatabaseAdapter struct {
	db *sqlx.DB
}

func NewPassageDatabaseAdapter(db *sqlx.DB) domain.PassageRepository {
	return &PassageDatabaseAdapter{db: db}
}

// GetPassageByID returns nil, nil when the passage does not exist.
func (a *PassageDatabaseAdapter) GetPassageByID(ctx context.Context, id string) (*domain.Passage, error) {
	exec := GetExecutor(ctx, a.db)
	var modelPassage models.Passage
	query := `SELECT ID, TITLE, CONTENT, CREATED_AT, UPDATED_AT, DELETED_AT
	FROM passages WHERE ID = :1 AND DELETED_AT IS NULL`

	err := exec.GetContext(ctx, &modelPassage, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get passage by ID %s: %w", id, err)
	}
	return toDomainPassage(&modelPassage), nil
}

// ListPassages returns all live passages, oldest first.
func (a *PassageDatabaseAdapter) ListPassages(ctx context.Context) ([]*domain.Passage, error) {
	exec := GetExecutor(ctx, a.db)
	var modelPassages []models.Passage
	query := `SELECT ID, TITLE, CONTENT, CREATED_AT, UPDATED_AT, DELETED_AT
	FROM passages WHERE DELETED_AT IS NULL ORDER BY CREATED_AT ASC`

	err := exec.SelectContext(ctx, &modelPassages, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list passages: %w", err)
	}

	passages := make([]*domain.Passage, 0, len(modelPassages))
	for i := range modelPassages {
		passages = append(passages, toDomainPassage(&modelPassages[i]))
	}
	return passages, nil
}

// SavePassage persists a new passage.
func (a *PassageDatabaseAdapter) SavePassage(ctx context.Context, passage *domain.Passage) error {
	if passage == nil {
		return fmt.Errorf("cannot save nil passage")
	}
	exec := GetExecutor(ctx, a.db)
	id := util.NewULID()
	now := time.Now()

	query := `INSERT INTO passages (ID, TITLE, CONTENT, CREATED_AT, UPDATED_AT)
	VALUES (:1, :2, :3, :4, :5)`

	_, err := exec.ExecContext(ctx, query, id, passage.Title, passage.Content, now, now)
	if err != nil {
		return fmt.Errorf("failed to save passage: %w", err)
	}

	passage.ID = id
	passage.CreatedAt = now
	passage.UpdatedAt = now
	return nil
}

// UpdatePassage updates an existing passage's title and content.
func (a *PassageDatabaseAdapter) UpdatePassage(ctx context.Context, passage *domain.Passage) error {
	if passage == nil {
		return fmt.Errorf("cannot update nil passage")
	}
	if passage.ID == "" {
		return fmt.Errorf("cannot update passage with empty ID")
	}
	exec := GetExecutor(ctx, a.db)
	updatedAt := time.Now()

	query := `UPDATE passages SET TITLE = :1, CONTENT = :2, UPDATED_AT = :3
	WHERE ID = :4 AND DELETED_AT IS NULL`

	result, err := exec.ExecContext(ctx, query, passage.Title, passage.Content, updatedAt, passage.ID)
	if err != nil {
		return fmt.Errorf("failed to update passage: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.NewPassageNotFoundError(passage.ID)
	}
	passage.UpdatedAt = updatedAt
	return nil
}

func toDomainPassage(m *models.Passage) *domain.Passage {
	return &domain.Passage{
		ID:        m.ID,
		Title:     m.Title,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
