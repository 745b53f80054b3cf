package quiz

import (
	"time"

	"quizbot/internal/domain"
)

// Event is one user action or one collaborator result fed into Transition.
type Event interface {
	EventName() string
}

type QuizTypeChosen struct {
	Type domain.QuestionType
}

type CategoryScopeChosen struct {
	Scope domain.CategoryScope
}

type CategoryChosen struct {
	ID int64
}

// PageRequested moves the category listing to another page.
type PageRequested struct {
	Page int
}

type SizingChosen struct {
	Mode SizingMode
}

// NumericEntered carries the raw text of a count or minutes reply.
type NumericEntered struct {
	Text string
	At   time.Time
}

// QuestionsSampled is produced by the caller after fulfilling a Sample effect.
// SessionID is zero when nothing matched.
type QuestionsSampled struct {
	SessionID int64
	Questions []domain.Question
	At        time.Time
}

type AnswerSubmitted struct {
	QuestionID int64
	Answer     string
	At         time.Time
}

// DeadlineCheck is a poll without user input.
type DeadlineCheck struct {
	At time.Time
}

type Cancelled struct{}

// Finalized is produced by the caller after fulfilling a Finalize effect.
type Finalized struct {
	Summary domain.CompletionSummary
}

// StoreFailed reports a failed durable write.
type StoreFailed struct {
	Err error
}

func (QuizTypeChosen) EventName() string      { return "quiz_type_chosen" }
func (CategoryScopeChosen) EventName() string { return "category_scope_chosen" }
func (CategoryChosen) EventName() string      { return "category_chosen" }
func (PageRequested) EventName() string       { return "page_requested" }
func (SizingChosen) EventName() string        { return "sizing_chosen" }
func (NumericEntered) EventName() string      { return "numeric_entered" }
func (QuestionsSampled) EventName() string    { return "questions_sampled" }
func (AnswerSubmitted) EventName() string     { return "answer_submitted" }
func (DeadlineCheck) EventName() string       { return "deadline_check" }
func (Cancelled) EventName() string           { return "cancelled" }
func (Finalized) EventName() string           { return "finalized" }
func (StoreFailed) EventName() string         { return "store_failed" }
