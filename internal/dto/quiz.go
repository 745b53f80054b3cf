package dto

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"quizbot/internal/domain"
	"quizbot/internal/quiz"
)

// CategoryResponse represents a category in the API response
type CategoryResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CategoryPageResponse is one page of main categories or subcategories.
type CategoryPageResponse struct {
	Scope          string             `json:"scope"`
	QuizType       string             `json:"quiz_type,omitempty"`
	Categories     []CategoryResponse `json:"categories"`
	PaginationInfo PaginationInfo     `json:"pagination_info"`
}

// Event types accepted by POST /api/sessions/:kind/events.
const (
	EventQuizType = "quiz_type"
	EventScope    = "scope"
	EventCategory = "category"
	EventPage     = "page"
	EventSizing   = "sizing"
	EventNumber   = "number"
	EventAnswer   = "answer"
	EventCancel   = "cancel"
	EventCheck    = "check"
)

// EventRequest is one user action. Either Token (as offered in a choice) or Type and Value are set.
type EventRequest struct {
	Token      string `json:"token"`
	Type       string `json:"type"`
	Value      string `json:"value"`
	QuestionID int64  `json:"question_id"`
}

// Normalize expands Token into Type, Value and QuestionID.
// Answer tokens look like "answer:<question id>:<letter>", the rest like "<type>:<value>".
func (r *EventRequest) Normalize() error {
	if r.Token == "" {
		r.Type = strings.ToLower(strings.TrimSpace(r.Type))
		return nil
	}
	parts := strings.SplitN(r.Token, ":", 3)
	r.Type = strings.ToLower(parts[0])
	switch {
	case r.Type == EventAnswer && len(parts) == 3:
		id, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return domain.NewInvalidInputError(fmt.Sprintf("malformed answer token %q", r.Token))
		}
		r.QuestionID = id
		r.Value = parts[2]
	case len(parts) >= 2:
		r.Value = strings.Join(parts[1:], ":")
	default:
		r.Value = ""
	}
	return nil
}

// ToEvent maps the request onto a state machine event. Timestamps are left for the service to stamp.
func (r EventRequest) ToEvent() (quiz.Event, error) {
	value := strings.TrimSpace(r.Value)
	switch r.Type {
	case EventQuizType:
		qt, err := domain.ParseQuestionType(value)
		if err != nil {
			// the machine re-prompts on an unknown type
			return quiz.QuizTypeChosen{Type: domain.QuestionType(value)}, nil
		}
		return quiz.QuizTypeChosen{Type: qt}, nil
	case EventScope:
		scope, err := domain.ParseCategoryScope(value)
		if err != nil {
			return quiz.CategoryScopeChosen{Scope: domain.CategoryScope(value)}, nil
		}
		return quiz.CategoryScopeChosen{Scope: scope}, nil
	case EventCategory:
		id, _ := strconv.ParseInt(value, 10, 64)
		return quiz.CategoryChosen{ID: id}, nil
	case EventPage:
		page, err := strconv.Atoi(value)
		if err != nil {
			return nil, domain.NewInvalidInputError("page must be a number")
		}
		return quiz.PageRequested{Page: page}, nil
	case EventSizing:
		return quiz.SizingChosen{Mode: quiz.SizingMode(strings.ToLower(value))}, nil
	case EventNumber:
		return quiz.NumericEntered{Text: value}, nil
	case EventAnswer:
		if r.QuestionID <= 0 {
			return nil, domain.NewInvalidInputError("question_id is required for an answer")
		}
		return quiz.AnswerSubmitted{QuestionID: r.QuestionID, Answer: value}, nil
	case EventCancel:
		return quiz.Cancelled{}, nil
	case EventCheck:
		return quiz.DeadlineCheck{}, nil
	}
	return nil, domain.NewInvalidInputError(fmt.Sprintf("unknown event type %q", r.Type))
}

// SessionResponse is returned by every session endpoint.
type SessionResponse struct {
	Kind      string                    `json:"kind"`
	Phase     string                    `json:"phase"`
	Step      string                    `json:"step,omitempty"`
	SessionID int64                     `json:"session_id,omitempty"`
	Index     int                       `json:"index"`
	Total     int                       `json:"total"`
	Score     int                       `json:"score"`
	Deadline  *time.Time                `json:"deadline,omitempty"`
	Messages  []domain.Message          `json:"messages"`
	Summary   *domain.CompletionSummary `json:"summary,omitempty"`
}

// SessionSummaryResponse is one row of a user's history.
type SessionSummaryResponse struct {
	ID           int64     `json:"id"`
	Kind         string    `json:"kind"`
	Timestamp    time.Time `json:"timestamp"`
	NumQuestions int       `json:"num_questions"`
	Aggregate    float64   `json:"aggregate"`
	TimeTaken    float64   `json:"time_taken"`
	Status       string    `json:"status"`
	HasReport    bool      `json:"has_report"`
}

// AnswerDetailResponse pairs a recorded answer with its question.
type AnswerDetailResponse struct {
	QuestionID    int64  `json:"question_id"`
	QuestionText  string `json:"question_text"`
	OptionA       string `json:"option_a"`
	OptionB       string `json:"option_b"`
	OptionC       string `json:"option_c"`
	OptionD       string `json:"option_d"`
	CorrectAnswer string `json:"correct_answer"`
	UserAnswer    string `json:"user_answer"`
	IsCorrect     bool   `json:"is_correct"`
	Explanation   string `json:"explanation,omitempty"`
}

// SessionDetailResponse is a session with its answers in recording order.
type SessionDetailResponse struct {
	SessionSummaryResponse
	Answers []AnswerDetailResponse `json:"answers"`
}
