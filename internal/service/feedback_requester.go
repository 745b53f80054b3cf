package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"quizbot/internal/domain"
	"quizbot/internal/logger"

	"go.uber.org/zap"
)

// FallbackFeedback is returned whenever the summarizer cannot answer.
const FallbackFeedback = "Sorry, I couldn't process your request at the moment."

const feedbackSystemPrompt = "You are an intelligent assistant. Analyze the user's quiz performance and provide personalized feedback. " +
	"Take into account the categories and types of questions. Suggest areas where the user needs improvement and a recommended study path. " +
	"Focus on their weak categories and question types."

// FeedbackInput is everything the analysis prompt is built from.
type FeedbackInput struct {
	UserID         int64
	Results        []domain.AnsweredQuestion
	Score          int
	Total          int
	ElapsedSeconds float64
}

// FeedbackRequester asks the summarizer for narrative feedback. It never fails; see FeedbackOutcome.Err.
type FeedbackRequester interface {
	Summarize(ctx context.Context, in FeedbackInput) domain.FeedbackOutcome
}

type feedbackRequester struct {
	summarizer domain.Summarizer
	categories domain.CategoryRepository
	timeout    time.Duration
}

func NewFeedbackRequester(summarizer domain.Summarizer, categories domain.CategoryRepository, timeout time.Duration) FeedbackRequester {
	return &feedbackRequester{summarizer: summarizer, categories: categories, timeout: timeout}
}

func (f *feedbackRequester) Summarize(ctx context.Context, in FeedbackInput) domain.FeedbackOutcome {
	if f.summarizer == nil {
		return domain.FeedbackOutcome{Text: FallbackFeedback, Err: domain.NewSummarizerError(fmt.Errorf("no summarizer configured"))}
	}
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	questions := make([]domain.Question, 0, len(in.Results))
	for _, r := range in.Results {
		questions = append(questions, r.Question)
	}
	prompt := BuildFeedbackPrompt(in, categoryNames(ctx, f.categories, questions))

	text, err := f.summarizer.Complete(ctx, feedbackSystemPrompt, prompt)
	if err != nil {
		logger.Get().Warn("FeedbackRequester: summarizer failed", zap.Int64("userID", in.UserID), zap.Error(err))
		return domain.FeedbackOutcome{Text: FallbackFeedback, Err: domain.NewSummarizerError(err)}
	}
	if strings.TrimSpace(text) == "" {
		return domain.FeedbackOutcome{Text: FallbackFeedback, Err: domain.NewSummarizerError(fmt.Errorf("empty completion"))}
	}
	return domain.FeedbackOutcome{Text: text}
}

// BuildFeedbackPrompt lists every answered question with its category, type and correctness.
func BuildFeedbackPrompt(in FeedbackInput, names map[int64]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The user scored %d out of %d. They took %.0f seconds to complete the quiz. ", in.Score, in.Total, in.ElapsedSeconds)
	b.WriteString("Here are the details of the questions and answers, including categories and types:\n")
	for i, r := range in.Results {
		name, ok := names[r.Question.MainCategoryID]
		if !ok {
			name = unknownCategory
		}
		verdict := "No"
		if r.IsCorrect {
			verdict = "Yes"
		}
		fmt.Fprintf(&b, "Question %d: %s\nCategory: %s\nType: %s\nCorrect Answer: %s\nUser's Answer: %s\nWas it correct? %s\n\n",
			i+1, r.Question.Text, name, r.Question.Type, r.Question.CorrectAnswer, r.UserAnswer, verdict)
	}
	return b.String()
}
