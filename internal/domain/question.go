package domain

import (
	"fmt"
	"strings"
)

// DerivedQuestion is the independently editable question record produced
// once per blank marker. TempID is client-session identity only and is
// never persisted; Order is dense and 1-based within the group.
type DerivedQuestion struct {
	TempID            string   `json:"temp_id"`
	Order             int      `json:"order"`
	QuestionText      string   `json:"question_text"`
	CorrectAnswerText string   `json:"correct_answer_text"`
	Choices           []string `json:"choices"`
	Explanation       string   `json:"explanation"`
	Points            int      `json:"points"`
	// Context slices are populated by summary-completion derivation only.
	ContextBefore string `json:"context_before,omitempty"`
	ContextAfter  string `json:"context_after,omitempty"`
}

// Answered reports whether the question carries a usable answer.
func (q *DerivedQuestion) Answered() bool {
	return strings.TrimSpace(q.CorrectAnswerText) != ""
}

// Validate checks the fields a question must carry before persistence.
func (q *DerivedQuestion) Validate() error {
	if strings.TrimSpace(q.QuestionText) == "" {
		return NewValidationError("question_text", "is required")
	}
	if !q.Answered() {
		return NewValidationError("correct_answer_text", "is required")
	}
	if q.Points < 1 {
		return NewValidationError("points", "must be at least 1")
	}
	return nil
}

// QuestionList maintains the derived question sequence. Every structural
// operation renumbers Order to stay exactly 1..N.
type QuestionList []*DerivedQuestion

// Renumber rewrites Order to exactly 1..N in slice order.
func (l QuestionList) Renumber() {
	for i, q := range l {
		q.Order = i + 1
	}
}

func (l QuestionList) checkIndex(i int) error {
	if i < 0 || i >= len(l) {
		return NewInvalidInputError(fmt.Sprintf("question index %d out of range", i))
	}
	return nil
}

// MoveUp swaps the question at i with its predecessor.
func (l QuestionList) MoveUp(i int) error {
	if err := l.checkIndex(i); err != nil {
		return err
	}
	if i == 0 {
		return NewInvalidInputError("question is already first")
	}
	l[i-1], l[i] = l[i], l[i-1]
	l.Renumber()
	return nil
}

// MoveDown swaps the question at i with its successor.
func (l QuestionList) MoveDown(i int) error {
	if err := l.checkIndex(i); err != nil {
		return err
	}
	if i == len(l)-1 {
		return NewInvalidInputError("question is already last")
	}
	l[i], l[i+1] = l[i+1], l[i]
	l.Renumber()
	return nil
}

// Delete removes the question at i and renumbers the remainder.
func (l *QuestionList) Delete(i int) error {
	if err := l.checkIndex(i); err != nil {
		return err
	}
	*l = append((*l)[:i], (*l)[i+1:]...)
	l.Renumber()
	return nil
}

// Duplicate inserts a copy of the question at i immediately after it,
// with a fresh TempID. clearAnswer controls whether the copy starts
// with an empty answer (the per-shape duplication rule).
func (l *QuestionList) Duplicate(i int, tempID string, clearAnswer bool) (*DerivedQuestion, error) {
	if err := l.checkIndex(i); err != nil {
		return nil, err
	}
	src := (*l)[i]
	dup := &DerivedQuestion{
		TempID:            tempID,
		QuestionText:      src.QuestionText,
		CorrectAnswerText: src.CorrectAnswerText,
		Choices:           append([]string{}, src.Choices...),
		Explanation:       src.Explanation,
		Points:            src.Points,
		ContextBefore:     src.ContextBefore,
		ContextAfter:      src.ContextAfter,
	}
	if clearAnswer {
		dup.CorrectAnswerText = ""
	}
	*l = append(*l, nil)
	copy((*l)[i+2:], (*l)[i+1:])
	(*l)[i+1] = dup
	l.Renumber()
	return dup, nil
}

// CanSave is the save gate: at least one question and no blank answers.
func (l QuestionList) CanSave() bool {
	if len(l) == 0 {
		return false
	}
	for _, q := range l {
		if !q.Answered() {
			return false
		}
	}
	return true
}

// Validate runs per-question validation over the whole list.
func (l QuestionList) Validate() error {
	var errs ValidationErrors
	for i, q := range l {
		if err := q.Validate(); err != nil {
			if ve, ok := err.(ValidationError); ok {
				ve.Field = fmt.Sprintf("questions[%d].%s", i, ve.Field)
				errs = append(errs, ve)
			}
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
