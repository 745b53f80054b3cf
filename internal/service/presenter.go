package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"quizbot/internal/domain"
	"quizbot/internal/dto"
	"quizbot/internal/logger"
	"quizbot/internal/quiz"

	"go.uber.org/zap"
)

// Message kinds sent over the transport.
const (
	MessagePrompt   = "prompt"
	MessageQuestion = "question"
	MessageReveal   = "reveal"
	MessageNotice   = "notice"
	MessageSummary  = "summary"
)

var noticeTexts = map[quiz.Notice]string{
	quiz.NoticeNoQuestions: "No questions are available for this selection.",
	quiz.NoticeDeadline:    "Time is up. Your answers so far are being scored.",
	quiz.NoticeCancelled:   "The quiz was cancelled.",
	quiz.NoticeFailure:     "Sorry, something went wrong and this quiz had to stop.",
}

var stepTexts = map[quiz.Step]string{
	quiz.StepQuizType:      "Which kind of questions would you like?",
	quiz.StepCategoryScope: "Do you want to focus on a category?",
	quiz.StepCategory:      "Pick a category.",
	quiz.StepSizing:        "Limit the quiz by number of questions or by time?",
	quiz.StepCount:         "How many questions?",
	quiz.StepMinutes:       "How many minutes?",
}

// presenter turns effects into transport messages. Option order is reshuffled on every render;
// choice tokens always carry the canonical letter.
type presenter struct {
	categories CategoryService
	shuffle    func(n int, swap func(i, j int))
}

func newPresenter(categories CategoryService) *presenter {
	return &presenter{categories: categories, shuffle: rand.Shuffle}
}

func choice(eventType, value, label string) domain.Choice {
	return domain.Choice{Token: eventType + ":" + value, Label: label}
}

func (p *presenter) prompt(ctx context.Context, e quiz.Prompt, scope domain.CategoryScope) domain.Message {
	msg := domain.Message{Kind: MessagePrompt, Text: stepTexts[e.Step], Data: map[string]any{"step": string(e.Step)}}
	if e.Hint != "" {
		msg.Data["hint"] = e.Hint
	}

	switch e.Step {
	case quiz.StepQuizType:
		msg.Choices = []domain.Choice{
			choice(dto.EventQuizType, string(domain.QuestionTypeVerbal), "Verbal"),
			choice(dto.EventQuizType, string(domain.QuestionTypeQuantitative), "Quantitative"),
		}
	case quiz.StepCategoryScope:
		msg.Choices = []domain.Choice{
			choice(dto.EventScope, string(domain.ScopeNone), "All categories"),
			choice(dto.EventScope, string(domain.ScopeMain), "Main category"),
			choice(dto.EventScope, string(domain.ScopeSub), "Subcategory"),
		}
	case quiz.StepCategory:
		msg.Choices = p.categoryChoices(ctx, scope, e.QuizType, e.Page)
		msg.Data["page"] = e.Page
	case quiz.StepSizing:
		msg.Choices = []domain.Choice{
			choice(dto.EventSizing, string(quiz.SizingCount), "Number of questions"),
			choice(dto.EventSizing, string(quiz.SizingTime), "Time limit"),
		}
	}
	return msg
}

func (p *presenter) categoryChoices(ctx context.Context, scope domain.CategoryScope, qType domain.QuestionType, page int) []domain.Choice {
	if p.categories == nil {
		return nil
	}
	listing, err := p.categories.List(ctx, scope, qType, page)
	if err != nil {
		logger.Get().Warn("presenter: failed to list categories", zap.String("scope", string(scope)), zap.Error(err))
		return nil
	}
	choices := make([]domain.Choice, 0, len(listing.Categories)+2)
	for _, c := range listing.Categories {
		choices = append(choices, choice(dto.EventCategory, strconv.FormatInt(c.ID, 10), c.Name))
	}
	if page > 0 {
		choices = append(choices, choice(dto.EventPage, strconv.Itoa(page-1), "Previous"))
	}
	if page+1 < listing.PaginationInfo.TotalPages {
		choices = append(choices, choice(dto.EventPage, strconv.Itoa(page+1), "Next"))
	}
	return choices
}

// question renders one question with a fresh option order.
func (p *presenter) question(e quiz.PresentQuestion) domain.Message {
	q := e.Question
	order := []int{0, 1, 2, 3}
	p.shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	id := strconv.FormatInt(q.ID, 10)
	choices := make([]domain.Choice, 0, len(order))
	for _, idx := range order {
		choices = append(choices, domain.Choice{
			Token: dto.EventAnswer + ":" + id + ":" + domain.OptionLetters[idx],
			Label: q.Options[idx],
		})
	}

	data := map[string]any{
		"question_id": q.ID,
		"index":       e.Index,
		"total":       e.Total,
	}
	if e.Deadline != nil {
		data["deadline"] = e.Deadline.UTC().Format(time.RFC3339)
	}
	if q.ImagePath != "" {
		data["image_path"] = q.ImagePath
	}
	if q.PassageName != "" {
		data["passage"] = q.PassageName
	}
	if e.Hint != "" {
		data["hint"] = e.Hint
	}
	return domain.Message{
		Kind:    MessageQuestion,
		Text:    fmt.Sprintf("Question %d/%d: %s", e.Index+1, e.Total, q.Text),
		Choices: choices,
		Data:    data,
	}
}

func (p *presenter) reveal(e quiz.RevealAnswer) domain.Message {
	text := "Correct!"
	if !e.Correct {
		text = fmt.Sprintf("Incorrect. The correct answer is %s.", e.CorrectAnswer)
	}
	return domain.Message{
		Kind: MessageReveal,
		Text: text,
		Data: map[string]any{
			"question_id":    e.QuestionID,
			"submitted":      e.Submitted,
			"correct_answer": e.CorrectAnswer,
			"correct":        e.Correct,
		},
	}
}

func (p *presenter) notice(n quiz.Notice) domain.Message {
	return domain.Message{Kind: MessageNotice, Text: noticeTexts[n], Data: map[string]any{"notice": string(n)}}
}

func (p *presenter) summary(s *domain.CompletionSummary) domain.Message {
	if s == nil {
		return domain.Message{Kind: MessageSummary, Text: "The quiz ended without questions."}
	}
	text := fmt.Sprintf("You answered %d of %d correctly (%.2f%%) in %.0f seconds and earned %d points.",
		s.Score, s.Total, s.Percentage, s.ElapsedSeconds, s.Points)
	return domain.Message{
		Kind: MessageSummary,
		Text: text,
		Data: map[string]any{"summary": s},
	}
}
