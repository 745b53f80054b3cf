package domain

import "context"

// QuestionRepository is the read side of the question bank plus bulk import.
type QuestionRepository interface {
	// Sample returns up to count distinct random questions matching the filter.
	// A shorter list is not an error.
	Sample(ctx context.Context, qType QuestionType, filter CategoryFilter, count int) ([]Question, error)
	GetByIDs(ctx context.Context, ids []int64) ([]Question, error)
	Insert(ctx context.Context, q Question) (int64, error)
}

// CategoryRepository resolves category names and the main/sub association.
type CategoryRepository interface {
	ListMain(ctx context.Context, qType QuestionType, offset, limit int) ([]Category, int, error)
	ListSub(ctx context.Context, qType QuestionType, offset, limit int) ([]Category, int, error)
	GetMainByID(ctx context.Context, id int64) (*Category, error)
	GetSubByID(ctx context.Context, id int64) (*Category, error)
	EnsureMain(ctx context.Context, name string) (int64, error)
	EnsureSub(ctx context.Context, name string) (int64, error)
	Link(ctx context.Context, mainID, subID int64) error
}

// SessionRepository owns the two session history tables.
type SessionRepository interface {
	Create(ctx context.Context, kind SessionKind, userID int64, numQuestions int) (int64, error)
	Complete(ctx context.Context, kind SessionKind, sessionID int64, result SessionResult) error
	MarkStatus(ctx context.Context, kind SessionKind, sessionID int64, status SessionStatus) error
	GetByID(ctx context.Context, kind SessionKind, sessionID int64) (*SessionRecord, error)
	ListByUser(ctx context.Context, kind SessionKind, userID int64, limit int) ([]SessionRecord, error)
}

// AnswerLedger is append-only.
type AnswerLedger interface {
	Record(ctx context.Context, kind SessionKind, rec AnswerRecord) (int64, error)
	// Find returns the recorded answer for one question of a session, nil when there is none.
	Find(ctx context.Context, kind SessionKind, sessionID, questionID int64) (*AnswerRecord, error)
	ListBySession(ctx context.Context, kind SessionKind, sessionID int64) ([]AnswerRecord, error)
	CountBySession(ctx context.Context, kind SessionKind, sessionID int64) (int, error)
}

// UserProgressRepository keeps the per-user points and usage counters.
type UserProgressRepository interface {
	Get(ctx context.Context, userID int64) (*UserProgress, error)
	Apply(ctx context.Context, userID int64, delta ProgressDelta) error
}

// TransactionManager runs fn inside one database transaction.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
