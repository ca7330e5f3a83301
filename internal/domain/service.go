package domain

import "context"

// GroupRepository defines the interface for question-group persistence
type GroupRepository interface {
	// GetGroupByID retrieves a group by its ID, nil when absent
	GetGroupByID(ctx context.Context, id string) (*QuestionGroup, error)

	// GetQuestions returns the group's question rows ordered by position
	GetQuestions(ctx context.Context, groupID string) ([]*Question, error)

	// ListGroupsByPassage returns all groups attached to a passage
	ListGroupsByPassage(ctx context.Context, passageID string) ([]*QuestionGroup, error)

	// SaveGroup persists a new group
	SaveGroup(ctx context.Context, group *QuestionGroup) error

	// UpdateGroup updates an existing group's title and structure
	UpdateGroup(ctx context.Context, group *QuestionGroup) error

	// ReplaceQuestions replaces the group's question rows wholesale
	ReplaceQuestions(ctx context.Context, groupID string, questions []*Question) error

	// DeleteGroup soft-deletes a group and its questions
	DeleteGroup(ctx context.Context, id string) error
}

// PassageRepository defines the interface for passage persistence
type PassageRepository interface {
	GetPassageByID(ctx context.Context, id string) (*Passage, error)
	ListPassages(ctx context.Context) ([]*Passage, error)
	SavePassage(ctx context.Context, passage *Passage) error
	UpdatePassage(ctx context.Context, passage *Passage) error
}

// RevisionRepository records structure snapshots at save time
type RevisionRepository interface {
	AppendRevision(ctx context.Context, revision *GroupRevision) error
	ListRevisionsByGroup(ctx context.Context, groupID string) ([]*GroupRevision, error)
}

// TransactionManager runs a function inside one database transaction
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
