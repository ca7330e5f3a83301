package domain

import (
	"fmt"
	"math/rand"
	"testing"
)

func listOf(n int) QuestionList {
	l := make(QuestionList, 0, n)
	for i := 0; i < n; i++ {
		l = append(l, &DerivedQuestion{
			TempID:       fmt.Sprintf("tmp-%d", i+1),
			QuestionText: fmt.Sprintf("q%d", i+1),
			Choices:      []string{},
			Points:       1,
		})
	}
	l.Renumber()
	return l
}

func assertDenseOrder(t *testing.T, l QuestionList) {
	t.Helper()
	for i, q := range l {
		if q.Order != i+1 {
			t.Fatalf("l[%d].Order = %d, want %d (orders must be dense 1..N)", i, q.Order, i+1)
		}
	}
}

func TestQuestionList_MoveUp(t *testing.T) {
	l := listOf(3)
	if err := l.MoveUp(1); err != nil {
		t.Fatalf("MoveUp(1) error = %v", err)
	}
	if l[0].QuestionText != "q2" || l[1].QuestionText != "q1" {
		t.Errorf("order after MoveUp = [%s %s %s]", l[0].QuestionText, l[1].QuestionText, l[2].QuestionText)
	}
	assertDenseOrder(t, l)

	if err := l.MoveUp(0); err == nil {
		t.Error("MoveUp(0) succeeded, want refusal")
	}
	if err := l.MoveUp(5); err == nil {
		t.Error("MoveUp(5) succeeded, want refusal")
	}
}

func TestQuestionList_MoveDown(t *testing.T) {
	l := listOf(3)
	if err := l.MoveDown(1); err != nil {
		t.Fatalf("MoveDown(1) error = %v", err)
	}
	if l[1].QuestionText != "q3" || l[2].QuestionText != "q2" {
		t.Errorf("order after MoveDown = [%s %s %s]", l[0].QuestionText, l[1].QuestionText, l[2].QuestionText)
	}
	assertDenseOrder(t, l)

	if err := l.MoveDown(2); err == nil {
		t.Error("MoveDown on last element succeeded, want refusal")
	}
}

func TestQuestionList_Delete(t *testing.T) {
	l := listOf(3)
	if err := l.Delete(1); err != nil {
		t.Fatalf("Delete(1) error = %v", err)
	}
	if len(l) != 2 {
		t.Fatalf("len = %d, want 2", len(l))
	}
	if l[0].QuestionText != "q1" || l[1].QuestionText != "q3" {
		t.Errorf("remaining = [%s %s]", l[0].QuestionText, l[1].QuestionText)
	}
	assertDenseOrder(t, l)
}

func TestQuestionList_Duplicate(t *testing.T) {
	l := listOf(2)
	l[0].CorrectAnswerText = "answer"
	l[0].Explanation = "why"

	dup, err := l.Duplicate(0, "tmp-new", false)
	if err != nil {
		t.Fatalf("Duplicate() error = %v", err)
	}
	if len(l) != 3 {
		t.Fatalf("len = %d, want 3", len(l))
	}
	if l[1] != dup {
		t.Error("duplicate not inserted immediately after source")
	}
	if dup.TempID != "tmp-new" {
		t.Errorf("dup.TempID = %q, want fresh id", dup.TempID)
	}
	if dup.CorrectAnswerText != "answer" {
		t.Errorf("dup answer = %q, want retained", dup.CorrectAnswerText)
	}
	assertDenseOrder(t, l)

	cleared, err := l.Duplicate(0, "tmp-new2", true)
	if err != nil {
		t.Fatalf("Duplicate() error = %v", err)
	}
	if cleared.CorrectAnswerText != "" {
		t.Errorf("cleared dup answer = %q, want empty", cleared.CorrectAnswerText)
	}
}

func TestQuestionList_OrderDensityUnderRandomOps(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	l := listOf(5)
	next := 100
	for step := 0; step < 200; step++ {
		if len(l) == 0 {
			l = listOf(3)
		}
		i := rng.Intn(len(l))
		switch rng.Intn(4) {
		case 0:
			_ = l.MoveUp(i)
		case 1:
			_ = l.MoveDown(i)
		case 2:
			if len(l) > 1 {
				_ = l.Delete(i)
			}
		case 3:
			next++
			_, _ = l.Duplicate(i, fmt.Sprintf("tmp-%d", next), rng.Intn(2) == 0)
		}
		assertDenseOrder(t, l)
	}
}

func TestQuestionList_CanSave(t *testing.T) {
	var empty QuestionList
	if empty.CanSave() {
		t.Error("empty list must not be saveable")
	}

	l := listOf(2)
	if l.CanSave() {
		t.Error("list with blank answers must not be saveable")
	}

	l[0].CorrectAnswerText = "a"
	l[1].CorrectAnswerText = "   "
	if l.CanSave() {
		t.Error("whitespace-only answer must not be saveable")
	}

	l[1].CorrectAnswerText = "b"
	if !l.CanSave() {
		t.Error("fully answered list must be saveable")
	}

	l[0].CorrectAnswerText = ""
	if l.CanSave() {
		t.Error("blanking an answer must re-block saving")
	}
}

func TestDerivedQuestion_Validate(t *testing.T) {
	q := &DerivedQuestion{QuestionText: "q", CorrectAnswerText: "a", Points: 1}
	if err := q.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
	q.Points = 0
	if err := q.Validate(); err == nil {
		t.Error("Validate() passed with zero points")
	}
}
