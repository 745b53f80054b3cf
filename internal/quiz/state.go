// Package quiz is the pure session state machine. It never touches storage,
// the clock or a transport: callers feed it events and fulfil the effects it returns.
package quiz

import (
	"time"

	"quizbot/internal/domain"
	"quizbot/internal/scoring"
)

// Phase is the coarse session state.
type Phase string

const (
	PhaseConfiguring Phase = "configuring"
	PhaseSampling    Phase = "sampling"
	PhaseAnswering   Phase = "answering"
	PhaseFinalizing  Phase = "finalizing"
	PhaseComplete    Phase = "complete"
	PhaseCancelled   Phase = "cancelled"
	PhaseFailed      Phase = "failed"
)

// Terminal phases accept no further events.
func (p Phase) Terminal() bool {
	return p == PhaseComplete || p == PhaseCancelled || p == PhaseFailed
}

// Step is the configuration question currently asked.
type Step string

const (
	StepQuizType      Step = "quiz_type"
	StepCategoryScope Step = "category_scope"
	StepCategory      Step = "category"
	StepSizing        Step = "sizing"
	StepCount         Step = "count"
	StepMinutes       Step = "minutes"
)

// SizingMode picks the authoritative stop condition.
type SizingMode string

const (
	SizingCount SizingMode = "count"
	SizingTime  SizingMode = "time"
)

// Configuration is captured step by step while configuring.
// In time mode NumQuestions is an upper bound and EndTime is authoritative.
type Configuration struct {
	QuizType         domain.QuestionType   `json:"quiz_type,omitempty"`
	Category         domain.CategoryFilter `json:"category"`
	Sizing           SizingMode            `json:"sizing,omitempty"`
	NumQuestions     int                   `json:"num_questions,omitempty"`
	TimeLimitMinutes int                   `json:"time_limit_minutes,omitempty"`
	EndTime          *time.Time            `json:"end_time,omitempty"`
}

// State is the whole transient session, serialized into the session store between events.
type State struct {
	Kind         domain.SessionKind        `json:"kind"`
	UserID       int64                     `json:"user_id"`
	Phase        Phase                     `json:"phase"`
	Step         Step                      `json:"step,omitempty"`
	CategoryPage int                       `json:"category_page,omitempty"`
	Config       Configuration             `json:"config"`
	SessionID    int64                     `json:"session_id,omitempty"`
	Questions    []domain.Question         `json:"questions,omitempty"`
	Cursor       int                       `json:"cursor"`
	Score        int                       `json:"score"`
	StartTime    time.Time                 `json:"start_time"`
	History      []domain.AnsweredQuestion `json:"history,omitempty"`
	DeadlineHit  bool                      `json:"deadline_hit,omitempty"`
}

// Current returns the question awaiting an answer.
func (s State) Current() (domain.Question, bool) {
	if s.Phase != PhaseAnswering || s.Cursor < 0 || s.Cursor >= len(s.Questions) {
		return domain.Question{}, false
	}
	return s.Questions[s.Cursor], true
}

// Expired reports whether the deadline, if any, has passed at now.
func (s State) Expired(now time.Time) bool {
	return s.Config.EndTime != nil && now.After(*s.Config.EndTime)
}

// Tally is the aggregate view of a session at a point in time.
type Tally struct {
	Score          int
	Total          int
	Answered       int
	ElapsedSeconds float64
	Percentage     float64
	Points         int
}

// Tally scores over the frozen question list, answered or not.
func (s State) Tally(now time.Time) Tally {
	elapsed := now.Sub(s.StartTime).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}
	total := len(s.Questions)
	return Tally{
		Score:          s.Score,
		Total:          total,
		Answered:       len(s.History),
		ElapsedSeconds: elapsed,
		Percentage:     scoring.Percentage(s.Score, total),
		Points:         scoring.Points(elapsed, s.Score, total),
	}
}
