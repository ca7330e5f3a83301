package domain

import (
	"strings"
	"time"
)

// Passage is a reading passage; question groups hang off it.
type Passage struct {
	ID        string
	Title     string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewPassage(title, content string) *Passage {
	now := time.Now()
	return &Passage{
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (p *Passage) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return NewValidationError("title", "is required")
	}
	return nil
}

// QuestionGroup is the persisted grouping of one authored batch of
// questions: its type, the serialized structure the questions were
// derived from, and the passage it belongs to.
type QuestionGroup struct {
	ID        string
	PassageID string
	Title     string
	Type      GroupType
	Structure string // serialized document JSON
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewQuestionGroup(passageID, title string, t GroupType, structure string) *QuestionGroup {
	now := time.Now()
	return &QuestionGroup{
		PassageID: passageID,
		Title:     title,
		Type:      t,
		Structure: structure,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (g *QuestionGroup) Validate() error {
	if strings.TrimSpace(g.PassageID) == "" {
		return NewValidationError("passage_id", "is required")
	}
	if strings.TrimSpace(g.Title) == "" {
		return NewValidationError("title", "is required")
	}
	if !KnownGroupType(g.Type) {
		return NewValidationError("group_type", "is not a known type")
	}
	return nil
}

// Question is a persisted question row within a group. Position mirrors
// the in-session Order and is dense 1..N within the group.
type Question struct {
	ID                string
	GroupID           string
	Position          int
	QuestionText      string
	CorrectAnswerText string
	Choices           []string
	Explanation       string
	Points            int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// GroupRevision is an append-only snapshot of the serialized structure
// taken at each successful save.
type GroupRevision struct {
	ID            string
	GroupID       string
	Structure     string
	QuestionCount int
	SavedBy       string
	CreatedAt     time.Time
}
