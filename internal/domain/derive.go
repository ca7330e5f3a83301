package domain

// TempIDFunc produces a fresh ephemeral question identity. It is a
// parameter rather than a package dependency so tests can make
// derivation deterministic.
type TempIDFunc func() string

// Derive produces the ordered question set for a document, one question
// per blank marker in reading order. It refuses (a caller-visible
// validation failure, not a fault) whenever the document's generate
// precondition does not hold.
//
// The result is independent of the document afterwards for the text and
// tag shapes: later structure edits neither regenerate nor invalidate
// questions already produced. Re-deriving replaces the whole set; there
// is no incremental merge.
func Derive(doc Document, tempID TempIDFunc) (QuestionList, error) {
	if doc == nil {
		return nil, NewGenerationBlockedError("No document to generate questions from")
	}
	if err := doc.CanGenerate(); err != nil {
		return nil, err
	}

	var questions QuestionList
	doc.walkBlanks(func(seed blankSeed) {
		questions = append(questions, &DerivedQuestion{
			TempID:            tempID(),
			QuestionText:      seed.questionText,
			CorrectAnswerText: seed.answer,
			Choices:           []string{},
			Explanation:       "",
			Points:            1,
			ContextBefore:     seed.contextBefore,
			ContextAfter:      seed.contextAfter,
		})
	})
	questions.Renumber()
	return questions, nil
}
