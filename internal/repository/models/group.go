package models

import (
	"database/sql"
	"time"
)

// Passage represents a reading passage row.
type Passage struct {
	ID        string       `db:"ID"` // ULID
	Title     string       `db:"TITLE"`
	Content   string       `db:"CONTENT"` // CLOB
	CreatedAt time.Time    `db:"CREATED_AT"`
	UpdatedAt time.Time    `db:"UPDATED_AT"`
	DeletedAt sql.NullTime `db:"DELETED_AT"`
}

// QuestionGroup represents an authored question group row. Structure is
// the serialized document JSON the group's questions were derived from.
type QuestionGroup struct {
	ID        string       `db:"ID"` // ULID
	PassageID string       `db:"PASSAGE_ID"`
	Title     string       `db:"TITLE"`
	GroupType string       `db:"GROUP_TYPE"`
	Structure string       `db:"STRUCTURE"` // CLOB
	CreatedAt time.Time    `db:"CREATED_AT"`
	UpdatedAt time.Time    `db:"UPDATED_AT"`
	DeletedAt sql.NullTime `db:"DELETED_AT"`
}

// Question represents one question row within a group. Position is dense
// 1..N within the group and mirrors the on-screen numbering.
type Question struct {
	ID                string         `db:"ID"` // ULID
	GroupID           string         `db:"GROUP_ID"`
	Position          int            `db:"POSITION"`
	QuestionText      string         `db:"QUESTION_TEXT"` // CLOB
	CorrectAnswerText string         `db:"CORRECT_ANSWER_TEXT"`
	Choices           StringSlice    `db:"CHOICES"` // CLOB, JSON array
	Explanation       sql.NullString `db:"EXPLANATION"`
	Points            int            `db:"POINTS"`
	CreatedAt         time.Time      `db:"CREATED_AT"`
	UpdatedAt         time.Time      `db:"UPDATED_AT"`
	DeletedAt         sql.NullTime   `db:"DELETED_AT"`
}

// GroupRevision is an append-only structure snapshot taken at save time.
type GroupRevision struct {
	ID            string    `db:"ID"` // ULID
	GroupID       string    `db:"GROUP_ID"`
	Structure     string    `db:"STRUCTURE"` // CLOB
	QuestionCount int       `db:"QUESTION_COUNT"`
	SavedBy       string    `db:"SAVED_BY"`
	CreatedAt     time.Time `db:"CREATED_AT"`
}
