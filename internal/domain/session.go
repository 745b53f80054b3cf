package domain

import (
	"fmt"
	"strings"
	"time"
)

// SessionKind distinguishes the two quiz variants. They share one table contract.
type SessionKind string

const (
	KindTest  SessionKind = "test"
	KindLevel SessionKind = "level"
)

func ParseSessionKind(s string) (SessionKind, error) {
	switch SessionKind(strings.ToLower(strings.TrimSpace(s))) {
	case KindTest:
		return KindTest, nil
	case KindLevel:
		return KindLevel, nil
	}
	return "", fmt.Errorf("unknown session kind %q", s)
}

// SessionStatus is stored on the session row.
type SessionStatus string

const (
	StatusInProgress SessionStatus = "in_progress"
	StatusCompleted  SessionStatus = "completed"
	StatusCancelled  SessionStatus = "cancelled"
	StatusFailed     SessionStatus = "failed"
)

// SessionRecord is a row of previous_tests or level_determinations.
// Aggregate holds the correct count for tests and the percentage for level determinations.
type SessionRecord struct {
	ID           int64         `json:"id"`
	Kind         SessionKind   `json:"kind"`
	UserID       int64         `json:"user_id"`
	Timestamp    time.Time     `json:"timestamp"`
	NumQuestions int           `json:"num_questions"`
	Aggregate    float64       `json:"aggregate"`
	TimeTaken    float64       `json:"time_taken"`
	PDFPath      string        `json:"pdf_path"`
	Status       SessionStatus `json:"status"`
}

// SessionResult is what finalization writes back onto the session row.
type SessionResult struct {
	Score      int
	Percentage float64
	TimeTaken  float64
	PDFPath    string
}

// AnswerRecord is one durable ledger row.
type AnswerRecord struct {
	ID         int64  `json:"id"`
	SessionID  int64  `json:"session_id"`
	UserID     int64  `json:"user_id"`
	QuestionID int64  `json:"question_id"`
	UserAnswer string `json:"user_answer"`
	IsCorrect  bool   `json:"is_correct"`
}

// AnsweredQuestion pairs a served question with the user's answer.
type AnsweredQuestion struct {
	Question   Question `json:"question"`
	UserAnswer string   `json:"user_answer"`
	IsCorrect  bool     `json:"is_correct"`
}

// CompletionSummary is emitted once a session reaches COMPLETE.
// A nil summary means the session ended without questions.
type CompletionSummary struct {
	SessionID      int64   `json:"session_id"`
	Score          int     `json:"score"`
	Total          int     `json:"total"`
	Answered       int     `json:"answered"`
	Percentage     float64 `json:"percentage"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	Points         int     `json:"points"`
	ArtifactPath   *string `json:"artifact_path"`
	FeedbackText   string  `json:"feedback_text"`
	DeadlineHit    bool    `json:"deadline_hit"`
}

// ReportOutcome is the explicit result of a report attempt.
type ReportOutcome struct {
	Path string
	Err  error
}

func (o ReportOutcome) OK() bool { return o.Err == nil && o.Path != "" }

// FeedbackOutcome is the explicit result of a summarizer attempt.
// Text holds the fallback when Err is set.
type FeedbackOutcome struct {
	Text string
	Err  error
}

// UserProgress accumulates per-user bookkeeping after each completed session.
type UserProgress struct {
	UserID             int64   `json:"user_id"`
	Points             int     `json:"points"`
	UsageSeconds       float64 `json:"usage_seconds"`
	TotalQuestions     int     `json:"total_questions"`
	PercentageExpected float64 `json:"percentage_expected"`
}

// ProgressDelta is added onto UserProgress.
type ProgressDelta struct {
	Points     int
	Seconds    float64
	Questions  int
	Percentage *float64
}
