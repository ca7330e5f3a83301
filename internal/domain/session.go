package domain

import (
	"fmt"
	"strings"
)

// Phase is the authoring workflow state. The workflow is two-phase:
// author the structure, generate once, then author answers. Generate is
// the only transition into reviewing, and re-generating discards any
// reviewing-phase edits wholesale.
type Phase string

const (
	PhaseAuthoring Phase = "authoring"
	PhaseReviewing Phase = "reviewing"
)

// SavedQuestion is a previously persisted question record as handed back
// by the storage layer, without the ephemeral TempID.
type SavedQuestion struct {
	ID                string   `json:"id"`
	QuestionText      string   `json:"question_text"`
	CorrectAnswerText string   `json:"correct_answer_text"`
	Choices           []string `json:"choices"`
	Explanation       string   `json:"explanation"`
	Points            int      `json:"points"`
}

// Session owns one open editor's document and question set and enforces
// the invariants that tie them together. All operations are synchronous;
// a session is never shared between requests.
type Session struct {
	Type      GroupType
	Doc       Document
	Phase     Phase
	Questions QuestionList

	tempID TempIDFunc
	dirty  bool
}

// NewSession opens an editor on a fresh, empty document.
func NewSession(t GroupType, tempID TempIDFunc) (*Session, error) {
	doc, err := EmptyDocument(t)
	if err != nil {
		return nil, err
	}
	return &Session{
		Type:      t,
		Doc:       doc,
		Phase:     PhaseAuthoring,
		Questions: QuestionList{},
		tempID:    tempID,
	}, nil
}

// RestoreSession re-opens an editor on a previously saved group. The
// structure JSON is hydrated tolerantly (malformed input falls back to
// the empty document) and saved questions get synthetic TempIDs of the
// form "existing-{id}" (or "existing-{index}" when the record has no id).
func RestoreSession(t GroupType, structureJSON string, saved []SavedQuestion, tempID TempIDFunc) (*Session, error) {
	doc, err := DecodeDocument(t, structureJSON)
	if err != nil {
		return nil, err
	}
	questions := make(QuestionList, 0, len(saved))
	for i, sq := range saved {
		id := sq.ID
		if id == "" {
			id = fmt.Sprintf("%d", i)
		}
		choices := sq.Choices
		if choices == nil {
			choices = []string{}
		}
		points := sq.Points
		if points < 1 {
			points = 1
		}
		questions = append(questions, &DerivedQuestion{
			TempID:            "existing-" + id,
			QuestionText:      sq.QuestionText,
			CorrectAnswerText: sq.CorrectAnswerText,
			Choices:           choices,
			Explanation:       sq.Explanation,
			Points:            points,
		})
	}
	questions.Renumber()
	phase := PhaseAuthoring
	if len(questions) > 0 {
		phase = PhaseReviewing
	}
	return &Session{
		Type:      t,
		Doc:       doc,
		Phase:     phase,
		Questions: questions,
		tempID:    tempID,
	}, nil
}

// ReplaceDocument swaps in an edited copy of the structure (the editor
// replaces the document wholesale on every structural edit). For the
// text and tag shapes questions already generated are left untouched;
// that independence is policy. For labeling, questions are paired with
// markers index-for-index, so the question list is reconciled against
// the incoming marker list.
func (s *Session) ReplaceDocument(doc Document) error {
	if doc == nil {
		return NewInvalidInputError("document is required")
	}
	if doc.GroupType() != s.Type {
		return NewInvalidInputError(fmt.Sprintf(
			"document shape %s does not match session type %s", doc.GroupType(), s.Type))
	}
	if next, ok := doc.(*LabelingDocument); ok {
		s.reconcileLabelingQuestions(next)
	}
	s.Doc = doc
	s.dirty = true
	return nil
}

// reconcileLabelingQuestions keeps markers[i] paired with questions[i]
// across a structural edit: a question follows its marker's ID, a
// removed marker drops its question, and a new marker gets a fresh one.
// Surviving questions keep their reviewing-phase text edits and stay
// the authoritative answer side, written back to the marker the same
// way SetAnswer does.
func (s *Session) reconcileLabelingQuestions(next *LabelingDocument) {
	if len(s.Questions) == 0 {
		return
	}
	byID := make(map[string]*DerivedQuestion)
	if prev, ok := s.Doc.(*LabelingDocument); ok {
		for i, m := range prev.Markers {
			if i < len(s.Questions) {
				byID[m.ID] = s.Questions[i]
			}
		}
	}
	rebuilt := make(QuestionList, 0, len(next.Markers))
	for i := range next.Markers {
		m := &next.Markers[i]
		if q, ok := byID[m.ID]; ok {
			m.Answer = q.CorrectAnswerText
			rebuilt = append(rebuilt, q)
			continue
		}
		rebuilt = append(rebuilt, &DerivedQuestion{
			TempID:            s.tempID(),
			QuestionText:      fmt.Sprintf("Label %s: Identify the item at this location", m.Label),
			CorrectAnswerText: m.Answer,
			Choices:           []string{},
			Points:            1,
		})
	}
	s.Questions = rebuilt
	s.Questions.Renumber()
}

// BlankCount is safe to call on every render.
func (s *Session) BlankCount() int {
	return CountBlanks(s.Doc)
}

// CanGenerate reports why Generate would refuse, nil when it would not.
func (s *Session) CanGenerate() error {
	return s.Doc.CanGenerate()
}

// Generate derives the question set from the current structure,
// replacing any prior set, and moves the session into reviewing.
func (s *Session) Generate() error {
	questions, err := Derive(s.Doc, s.tempID)
	if err != nil {
		return err
	}
	s.Questions = questions
	s.Phase = PhaseReviewing
	s.dirty = true
	return nil
}

// SetQuestionText edits question text in place. No renumbering.
func (s *Session) SetQuestionText(i int, text string) error {
	if err := s.Questions.checkIndex(i); err != nil {
		return err
	}
	s.Questions[i].QuestionText = text
	s.dirty = true
	return nil
}

// SetAnswer edits the answer in place. For diagram labeling the marker
// is the durable source of truth, so the edit writes through to it.
func (s *Session) SetAnswer(i int, answer string) error {
	if err := s.Questions.checkIndex(i); err != nil {
		return err
	}
	s.Questions[i].CorrectAnswerText = answer
	if doc, ok := s.Doc.(*LabelingDocument); ok && i < len(doc.Markers) {
		doc.Markers[i].Answer = answer
	}
	s.dirty = true
	return nil
}

// SetExplanation edits the explanation in place.
func (s *Session) SetExplanation(i int, explanation string) error {
	if err := s.Questions.checkIndex(i); err != nil {
		return err
	}
	s.Questions[i].Explanation = explanation
	s.dirty = true
	return nil
}

// SetPoints edits the point value in place; points must stay positive.
func (s *Session) SetPoints(i int, points int) error {
	if err := s.Questions.checkIndex(i); err != nil {
		return err
	}
	if points < 1 {
		return NewValidationError("points", "must be at least 1")
	}
	s.Questions[i].Points = points
	s.dirty = true
	return nil
}

// MoveUp reorders the question at i one position earlier. For labeling
// the marker array is co-mutated so markers[i] stays paired with
// questions[i].
func (s *Session) MoveUp(i int) error {
	if err := s.Questions.MoveUp(i); err != nil {
		return err
	}
	if doc, ok := s.Doc.(*LabelingDocument); ok && i < len(doc.Markers) {
		doc.Markers[i-1], doc.Markers[i] = doc.Markers[i], doc.Markers[i-1]
	}
	s.dirty = true
	return nil
}

// MoveDown reorders the question at i one position later.
func (s *Session) MoveDown(i int) error {
	if err := s.Questions.MoveDown(i); err != nil {
		return err
	}
	if doc, ok := s.Doc.(*LabelingDocument); ok && i+1 < len(doc.Markers) {
		doc.Markers[i], doc.Markers[i+1] = doc.Markers[i+1], doc.Markers[i]
	}
	s.dirty = true
	return nil
}

// DeleteQuestion removes the question at i; for labeling the paired
// marker goes with it.
func (s *Session) DeleteQuestion(i int) error {
	if err := s.Questions.Delete(i); err != nil {
		return err
	}
	if doc, ok := s.Doc.(*LabelingDocument); ok && i < len(doc.Markers) {
		doc.Markers = append(doc.Markers[:i], doc.Markers[i+1:]...)
	}
	s.dirty = true
	return nil
}

// DuplicateQuestion copies the question at i to i+1. Table and labeling
// duplicates start with a cleared answer; the other shapes keep it.
// For labeling a paired marker copy is inserted at the same index.
func (s *Session) DuplicateQuestion(i int) (*DerivedQuestion, error) {
	clearAnswer := s.Type == GroupTableCompletion || s.Type == GroupDiagramLabeling
	dup, err := s.Questions.Duplicate(i, s.tempID(), clearAnswer)
	if err != nil {
		return nil, err
	}
	if doc, ok := s.Doc.(*LabelingDocument); ok && i < len(doc.Markers) {
		src := doc.Markers[i]
		copyMarker := Marker{ID: s.tempID(), X: src.X, Y: src.Y, Label: src.Label}
		doc.Markers = append(doc.Markers, Marker{})
		copy(doc.Markers[i+2:], doc.Markers[i+1:])
		doc.Markers[i+1] = copyMarker
	}
	s.dirty = true
	return dup, nil
}

// CanSave is the save gate, recomputable on every render.
func (s *Session) CanSave() bool {
	return s.Questions.CanSave()
}

// SaveResult is what the session hands to its caller on save; persisting
// both halves is the caller's responsibility.
type SaveResult struct {
	Questions           QuestionList
	SerializedStructure string
}

// Save validates the gate, serializes the structure and marks the
// session clean. A blocked save changes nothing.
func (s *Session) Save() (*SaveResult, error) {
	if len(s.Questions) == 0 {
		return nil, NewSaveBlockedError("Generate questions before saving")
	}
	if !s.CanSave() {
		return nil, NewSaveBlockedError("Every question needs a correct answer before saving")
	}
	structure, err := EncodeDocument(s.Doc)
	if err != nil {
		return nil, err
	}
	s.dirty = false
	return &SaveResult{Questions: s.Questions, SerializedStructure: structure}, nil
}

// Dirty reports whether there are edits not yet handed out via Save.
func (s *Session) Dirty() bool {
	return s.dirty
}

// Cancel abandons the session. When unsaved edits exist it refuses
// unless forced, so the caller can put up its own confirmation.
func (s *Session) Cancel(force bool) error {
	if s.dirty && !force {
		return NewUnsavedChangesError()
	}
	return nil
}

// Title is a convenience for logging and cache keys.
func (s *Session) Title() string {
	switch doc := s.Doc.(type) {
	case *FormDocument:
		return strings.TrimSpace(doc.Title)
	case *NoteDocument:
		return strings.TrimSpace(doc.Title)
	case *TableDocument:
		return strings.TrimSpace(doc.Title)
	case *SummaryDocument:
		return strings.TrimSpace(doc.Title)
	case *LabelingDocument:
		return strings.TrimSpace(doc.Title)
	}
	return ""
}
