package quiz

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"quizbot/internal/domain"
	"quizbot/internal/scoring"
)

// Limits bound the configuration a user may choose.
type Limits struct {
	MinQuestions       int
	MaxQuestions       int
	MinutesPerQuestion float64
}

func DefaultLimits() Limits {
	return Limits{MinQuestions: 10, MaxQuestions: 100, MinutesPerQuestion: 1.2}
}

// Machine holds the static rules. It has no mutable state.
type Machine struct {
	limits Limits
}

func NewMachine(limits Limits) Machine {
	if limits.MinQuestions <= 0 {
		limits.MinQuestions = DefaultLimits().MinQuestions
	}
	if limits.MaxQuestions < limits.MinQuestions {
		limits.MaxQuestions = DefaultLimits().MaxQuestions
	}
	if limits.MinutesPerQuestion <= 0 {
		limits.MinutesPerQuestion = DefaultLimits().MinutesPerQuestion
	}
	return Machine{limits: limits}
}

func (m Machine) Limits() Limits { return m.limits }

// Begin opens a session in CONFIGURING.
func (m Machine) Begin(kind domain.SessionKind, userID int64) (State, []Effect) {
	s := State{
		Kind:   kind,
		UserID: userID,
		Phase:  PhaseConfiguring,
		Step:   StepQuizType,
		Config: Configuration{Category: domain.NoCategory()},
	}
	return s, []Effect{Prompt{Step: StepQuizType}}
}

// Transition applies ev to s. On error s is returned unchanged and no effect must run.
func (m Machine) Transition(s State, ev Event) (State, []Effect, error) {
	if s.Phase.Terminal() {
		return s, nil, domain.NewSessionClosedError(string(s.Phase))
	}
	if _, ok := ev.(StoreFailed); ok {
		return m.fail(s)
	}

	switch s.Phase {
	case PhaseConfiguring:
		return m.configure(s, ev)
	case PhaseSampling:
		return m.sampled(s, ev)
	case PhaseAnswering:
		return m.answer(s, ev)
	case PhaseFinalizing:
		return m.finalizing(s, ev)
	}
	return s, nil, domain.NewInvalidEventError(fmt.Sprintf("unknown phase %q", s.Phase))
}

func unexpected(s State, ev Event) error {
	where := string(s.Phase)
	if s.Phase == PhaseConfiguring {
		where += "/" + string(s.Step)
	}
	return domain.NewInvalidEventError(fmt.Sprintf("event %s is not accepted in %s", ev.EventName(), where))
}

func (m Machine) configure(s State, ev Event) (State, []Effect, error) {
	switch e := ev.(type) {
	case Cancelled:
		s.Phase = PhaseCancelled
		return s, []Effect{Notify{Notice: NoticeCancelled}}, nil

	case QuizTypeChosen:
		if s.Step != StepQuizType {
			return s, nil, unexpected(s, ev)
		}
		if e.Type != domain.QuestionTypeVerbal && e.Type != domain.QuestionTypeQuantitative {
			return s, []Effect{Prompt{Step: StepQuizType, Hint: "choose verbal or quantitative"}}, nil
		}
		s.Config.QuizType = e.Type
		if s.Kind == domain.KindLevel {
			s.Config.Category = domain.NoCategory()
			s.Step = StepSizing
		} else {
			s.Step = StepCategoryScope
		}
		return s, []Effect{Prompt{Step: s.Step, QuizType: s.Config.QuizType}}, nil

	case CategoryScopeChosen:
		if s.Step != StepCategoryScope {
			return s, nil, unexpected(s, ev)
		}
		switch e.Scope {
		case domain.ScopeNone, "":
			s.Config.Category = domain.NoCategory()
			s.Step = StepSizing
		case domain.ScopeMain, domain.ScopeSub:
			s.Config.Category = domain.CategoryFilter{Scope: e.Scope}
			s.Step = StepCategory
			s.CategoryPage = 0
		default:
			return s, []Effect{Prompt{Step: StepCategoryScope, QuizType: s.Config.QuizType, Hint: "choose none, main or sub"}}, nil
		}
		return s, []Effect{Prompt{Step: s.Step, QuizType: s.Config.QuizType}}, nil

	case PageRequested:
		if s.Step != StepCategory {
			return s, nil, unexpected(s, ev)
		}
		if e.Page < 0 {
			e.Page = 0
		}
		s.CategoryPage = e.Page
		return s, []Effect{Prompt{Step: StepCategory, Page: e.Page, QuizType: s.Config.QuizType}}, nil

	case CategoryChosen:
		if s.Step != StepCategory {
			return s, nil, unexpected(s, ev)
		}
		if e.ID <= 0 {
			return s, []Effect{Prompt{Step: StepCategory, Page: s.CategoryPage, QuizType: s.Config.QuizType, Hint: "choose a category from the list"}}, nil
		}
		s.Config.Category.ID = e.ID
		s.Step = StepSizing
		return s, []Effect{Prompt{Step: StepSizing, QuizType: s.Config.QuizType}}, nil

	case SizingChosen:
		if s.Step != StepSizing {
			return s, nil, unexpected(s, ev)
		}
		switch e.Mode {
		case SizingCount:
			s.Step = StepCount
		case SizingTime:
			s.Step = StepMinutes
		default:
			return s, []Effect{Prompt{Step: StepSizing, QuizType: s.Config.QuizType, Hint: "choose count or time"}}, nil
		}
		s.Config.Sizing = e.Mode
		return s, []Effect{Prompt{Step: s.Step, QuizType: s.Config.QuizType}}, nil

	case NumericEntered:
		if s.Step != StepCount && s.Step != StepMinutes {
			return s, nil, unexpected(s, ev)
		}
		return m.size(s, e)
	}
	return s, nil, unexpected(s, ev)
}

func (m Machine) size(s State, e NumericEntered) (State, []Effect, error) {
	n, err := parseInt(e.Text)
	if s.Step == StepCount {
		if err != nil || n < m.limits.MinQuestions || n > m.limits.MaxQuestions {
			hint := fmt.Sprintf("enter a whole number between %d and %d", m.limits.MinQuestions, m.limits.MaxQuestions)
			return s, []Effect{Prompt{Step: StepCount, QuizType: s.Config.QuizType, Hint: hint}}, nil
		}
		s.Config.NumQuestions = n
		s.Config.EndTime = nil
	} else {
		if err != nil || n <= 0 {
			return s, []Effect{Prompt{Step: StepMinutes, QuizType: s.Config.QuizType, Hint: "enter the number of minutes as a whole number above zero"}}, nil
		}
		count := int(math.Floor(float64(n)/m.limits.MinutesPerQuestion + 1e-9))
		if count < 1 {
			count = 1
		}
		if count > m.limits.MaxQuestions {
			count = m.limits.MaxQuestions
		}
		end := e.At.Add(time.Duration(n) * time.Minute)
		s.Config.NumQuestions = count
		s.Config.TimeLimitMinutes = n
		s.Config.EndTime = &end
	}
	s.Phase = PhaseSampling
	s.Step = ""
	return s, []Effect{Sample{QuizType: s.Config.QuizType, Filter: s.Config.Category, Count: s.Config.NumQuestions}}, nil
}

func (m Machine) sampled(s State, ev Event) (State, []Effect, error) {
	switch e := ev.(type) {
	case Cancelled:
		s.Phase = PhaseCancelled
		effects := []Effect{}
		if s.SessionID != 0 {
			effects = append(effects, MarkStatus{SessionID: s.SessionID, Status: domain.StatusCancelled})
		}
		return s, append(effects, Notify{Notice: NoticeCancelled}), nil

	case QuestionsSampled:
		if len(e.Questions) == 0 {
			s.Phase = PhaseComplete
			return s, []Effect{Notify{Notice: NoticeNoQuestions}, Completed{}}, nil
		}
		if e.SessionID == 0 {
			return s, nil, domain.NewInvalidEventError("sampled questions without a session row")
		}
		questions := e.Questions
		if len(questions) > s.Config.NumQuestions && s.Config.NumQuestions > 0 {
			questions = questions[:s.Config.NumQuestions]
		}
		s.SessionID = e.SessionID
		s.Questions = append([]domain.Question(nil), questions...)
		s.Cursor = 0
		s.Score = 0
		s.History = nil
		s.StartTime = e.At
		s.Phase = PhaseAnswering
		return s, []Effect{m.present(s, "")}, nil
	}
	return s, nil, unexpected(s, ev)
}

func (m Machine) answer(s State, ev Event) (State, []Effect, error) {
	switch e := ev.(type) {
	case Cancelled:
		s.Phase = PhaseCancelled
		return s, []Effect{
			MarkStatus{SessionID: s.SessionID, Status: domain.StatusCancelled},
			Notify{Notice: NoticeCancelled},
		}, nil

	case DeadlineCheck:
		if s.Expired(e.At) {
			return m.toFinalize(s, true)
		}
		return s, nil, nil

	case AnswerSubmitted:
		q, ok := s.Current()
		if !ok {
			return s, nil, unexpected(s, ev)
		}
		if e.QuestionID != q.ID {
			// stale or duplicate delivery, show the pending question again
			return s, []Effect{m.present(s, "")}, nil
		}
		if s.Expired(e.At) {
			return m.toFinalize(s, true)
		}
		if _, valid := q.Option(e.Answer); !valid {
			return s, []Effect{m.present(s, "answer with one of A, B, C or D")}, nil
		}

		submitted := strings.ToUpper(strings.TrimSpace(e.Answer))
		correct := scoring.IsCorrect(submitted, q.CorrectAnswer)
		rec := domain.AnswerRecord{
			SessionID:  s.SessionID,
			UserID:     s.UserID,
			QuestionID: q.ID,
			UserAnswer: submitted,
			IsCorrect:  correct,
		}
		s.History = append(append([]domain.AnsweredQuestion(nil), s.History...), domain.AnsweredQuestion{
			Question:   q,
			UserAnswer: submitted,
			IsCorrect:  correct,
		})
		if correct {
			s.Score++
		}
		s.Cursor++

		effects := []Effect{
			RecordAnswer{Record: rec},
			RevealAnswer{QuestionID: q.ID, Submitted: submitted, CorrectAnswer: q.CorrectAnswer, Correct: correct},
		}
		next, more, err := m.advance(s, e.At)
		return next, append(effects, more...), err
	}
	return s, nil, unexpected(s, ev)
}

// advance runs the deadline check that precedes every next question.
func (m Machine) advance(s State, now time.Time) (State, []Effect, error) {
	if s.Cursor >= len(s.Questions) {
		return m.toFinalize(s, false)
	}
	if s.Expired(now) {
		return m.toFinalize(s, true)
	}
	return s, []Effect{m.present(s, "")}, nil
}

func (m Machine) toFinalize(s State, deadline bool) (State, []Effect, error) {
	s.Phase = PhaseFinalizing
	s.DeadlineHit = deadline
	var effects []Effect
	if deadline {
		effects = append(effects, Notify{Notice: NoticeDeadline})
	}
	return s, append(effects, Finalize{DeadlineHit: deadline}), nil
}

func (m Machine) finalizing(s State, ev Event) (State, []Effect, error) {
	switch e := ev.(type) {
	case Finalized:
		s.Phase = PhaseComplete
		summary := e.Summary
		return s, []Effect{Completed{Summary: &summary}}, nil
	case DeadlineCheck:
		// resume a finalization that was interrupted
		return s, []Effect{Finalize{DeadlineHit: s.DeadlineHit}}, nil
	}
	return s, nil, unexpected(s, ev)
}

func (m Machine) fail(s State) (State, []Effect, error) {
	var effects []Effect
	if s.SessionID != 0 {
		effects = append(effects, MarkStatus{SessionID: s.SessionID, Status: domain.StatusFailed})
	}
	s.Phase = PhaseFailed
	return s, append(effects, Notify{Notice: NoticeFailure}), nil
}

func (m Machine) present(s State, hint string) PresentQuestion {
	q, _ := s.Current()
	return PresentQuestion{
		Index:    s.Cursor,
		Total:    len(s.Questions),
		Question: q,
		Deadline: s.Config.EndTime,
		Hint:     hint,
	}
}

var easternDigits = strings.NewReplacer(
	"٠", "0", "١", "1", "٢", "2", "٣", "3", "٤", "4",
	"٥", "5", "٦", "6", "٧", "7", "٨", "8", "٩", "9",
)

func parseInt(text string) (int, error) {
	n, err := strconv.Atoi(easternDigits.Replace(strings.TrimSpace(text)))
	if err != nil {
		return 0, err
	}
	if n > math.MaxInt32 {
		return 0, fmt.Errorf("value %d out of range", n)
	}
	return n, nil
}
