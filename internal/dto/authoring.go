package dto

import (
	"encoding/json"
	"time"
)

// StructureRequest carries a document for a stateless structure
// operation (count, derive, preview). Structure is the shape-specific
// document JSON; the server decodes it according to GroupType.
type StructureRequest struct {
	GroupType string          `json:"group_type" validate:"required"`
	Structure json.RawMessage `json:"structure" validate:"required"`
}

// BlankCountResponse reports the live blank count and whether the
// document is ready for question generation.
// @Description Blank count and generation readiness for a document
type BlankCountResponse struct {
	BlankCount  int    `json:"blank_count"`
	CanGenerate bool   `json:"can_generate"`
	Reason      string `json:"reason,omitempty"`
}

// DerivedQuestionResponse is one freshly derived or edited question.
type DerivedQuestionResponse struct {
	TempID            string   `json:"temp_id"`
	Order             int      `json:"order"`
	QuestionText      string   `json:"question_text"`
	CorrectAnswerText string   `json:"correct_answer_text"`
	Choices           []string `json:"choices"`
	Explanation       string   `json:"explanation,omitempty"`
	Points            int      `json:"points"`
	ContextBefore     string   `json:"context_before,omitempty"`
	ContextAfter      string   `json:"context_after,omitempty"`
}

// DeriveResponse is the question set generated from a document.
type DeriveResponse struct {
	Questions []DerivedQuestionResponse `json:"questions"`
}

// PreviewSpanResponse is one run of preview text; blank runs carry
// their question number.
type PreviewSpanResponse struct {
	Text    string `json:"text"`
	IsBlank bool   `json:"is_blank"`
	Number  int    `json:"number,omitempty"`
}

// PreviewRowResponse is one labeled row of the rendered preview.
type PreviewRowResponse struct {
	Label    string                `json:"label,omitempty"`
	IsHeader bool                  `json:"is_header,omitempty"`
	Spans    []PreviewSpanResponse `json:"spans"`
}

// PreviewResponse is the student-facing rendering of a document.
// @Description Read-only preview of a document with numbered blanks
type PreviewResponse struct {
	Title    string               `json:"title"`
	ImageURL string               `json:"image_url,omitempty"`
	Rows     []PreviewRowResponse `json:"rows"`
}

// QuestionPayload is one question as submitted on save. Existing rows
// are replaced wholesale, so no ids are carried.
type QuestionPayload struct {
	Position          int      `json:"position"`
	QuestionText      string   `json:"question_text" validate:"required"`
	CorrectAnswerText string   `json:"correct_answer_text" validate:"required"`
	Choices           []string `json:"choices"`
	Explanation       string   `json:"explanation,omitempty"`
	Points            int      `json:"points"`
}

// CreateGroupRequest opens a new question group on a passage.
// @Description Request body for creating a question group
type CreateGroupRequest struct {
	PassageID string          `json:"passage_id" validate:"required"`
	Title     string          `json:"title" validate:"required"`
	GroupType string          `json:"group_type" validate:"required"`
	Structure json.RawMessage `json:"structure,omitempty"`
}

// SaveGroupRequest persists an authoring session: the current structure
// and the full question set together. The save is refused unless every
// question carries an answer.
// @Description Request body for saving a question group
type SaveGroupRequest struct {
	Title     string            `json:"title" validate:"required"`
	Structure json.RawMessage   `json:"structure" validate:"required"`
	Questions []QuestionPayload `json:"questions" validate:"required"`
}

// QuestionResponse is one persisted question row.
type QuestionResponse struct {
	ID                string   `json:"id"`
	Position          int      `json:"position"`
	QuestionText      string   `json:"question_text"`
	CorrectAnswerText string   `json:"correct_answer_text"`
	Choices           []string `json:"choices"`
	Explanation       string   `json:"explanation,omitempty"`
	Points            int      `json:"points"`
}

// GroupResponse is a question group with its question rows.
// @Description Question group with its persisted questions
type GroupResponse struct {
	ID         string             `json:"id"`
	PassageID  string             `json:"passage_id"`
	Title      string             `json:"title"`
	GroupType  string             `json:"group_type"`
	Structure  json.RawMessage    `json:"structure"`
	BlankCount int                `json:"blank_count"`
	Questions  []QuestionResponse `json:"questions"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// GroupSummaryResponse is a group as listed under a passage, without
// the structure payload.
type GroupSummaryResponse struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	GroupType     string    `json:"group_type"`
	QuestionCount int       `json:"question_count"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// RevisionResponse is one structure snapshot taken at save time.
type RevisionResponse struct {
	ID            string          `json:"id"`
	Structure     json.RawMessage `json:"structure"`
	QuestionCount int             `json:"question_count"`
	SavedBy       string          `json:"saved_by"`
	CreatedAt     time.Time       `json:"created_at"`
}

// PassageRequest creates or updates a reading passage.
// @Description Request body for creating or updating a passage
type PassageRequest struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content"`
}

// PassageResponse is one reading passage.
type PassageResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UploadResponse carries the public URL of a stored diagram image.
// @Description Response body for an image upload
type UploadResponse struct {
	URL string `json:"url"`
}

// MessageResponse represents a generic message response.
// @Description Generic message response
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error in the API response.
type ErrorResponse struct {
	Error string `json:"error"`
}
