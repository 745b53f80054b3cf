package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"quizbot/internal/domain"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAI calls an OpenAI compatible chat completion endpoint directly.
type OpenAI struct {
	api   *openai.Client
	model string
}

func NewOpenAI(baseURL, apiKey, modelName string) *OpenAI {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if modelName == "" {
		modelName = openai.GPT4oMini
	}
	return &OpenAI{api: openai.NewClientWithConfig(cfg), model: modelName}
}

func (o *OpenAI) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := o.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("LLM API call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("LLM returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

var _ domain.Summarizer = (*OpenAI)(nil)
