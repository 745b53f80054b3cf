package quiz

import (
	"time"

	"quizbot/internal/domain"
)

// Effect is an intent the orchestrator must fulfil, in order.
type Effect interface {
	EffectName() string
}

// Notice identifies a fixed user-facing notification.
type Notice string

const (
	NoticeNoQuestions Notice = "no_questions"
	NoticeDeadline    Notice = "deadline_reached"
	NoticeCancelled   Notice = "cancelled"
	NoticeFailure     Notice = "failure"
)

// Prompt asks for the configuration value of Step. Hint is set on a re-prompt.
type Prompt struct {
	Step     Step
	Page     int
	QuizType domain.QuestionType
	Hint     string
}

// Sample asks the caller to draw questions and open the session row.
type Sample struct {
	QuizType domain.QuestionType
	Filter   domain.CategoryFilter
	Count    int
}

// RecordAnswer must be durable before any later effect runs.
type RecordAnswer struct {
	Record domain.AnswerRecord
}

type RevealAnswer struct {
	QuestionID    int64
	Submitted     string
	CorrectAnswer string
	Correct       bool
}

type PresentQuestion struct {
	Index    int
	Total    int
	Question domain.Question
	Deadline *time.Time
	Hint     string
}

type Finalize struct {
	DeadlineHit bool
}

type Notify struct {
	Notice Notice
}

// MarkStatus closes the session row without a result.
type MarkStatus struct {
	SessionID int64
	Status    domain.SessionStatus
}

// Completed carries the final summary; nil when no questions were served.
type Completed struct {
	Summary *domain.CompletionSummary
}

func (Prompt) EffectName() string          { return "prompt" }
func (Sample) EffectName() string          { return "sample" }
func (RecordAnswer) EffectName() string    { return "record_answer" }
func (RevealAnswer) EffectName() string    { return "reveal_answer" }
func (PresentQuestion) EffectName() string { return "present_question" }
func (Finalize) EffectName() string        { return "finalize" }
func (Notify) EffectName() string          { return "notify" }
func (MarkStatus) EffectName() string      { return "mark_status" }
func (Completed) EffectName() string       { return "completed" }
