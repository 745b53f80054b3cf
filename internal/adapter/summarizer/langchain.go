package summarizer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"quizbot/internal/domain"
	"quizbot/internal/logger"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	langopenai "github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
)

// LangChain completes prompts through any langchaingo model.
type LangChain struct {
	model       llms.Model
	temperature float64
}

func NewLangChain(model llms.Model) *LangChain {
	return &LangChain{model: model, temperature: 0.3}
}

// NewOllama talks to a local ollama server.
func NewOllama(serverURL, modelName string, timeout time.Duration) (*LangChain, error) {
	if modelName == "" {
		modelName = "qwen3:0.6b"
	}
	llm, err := ollama.New(
		ollama.WithServerURL(serverURL),
		ollama.WithModel(modelName),
		ollama.WithHTTPClient(&http.Client{Timeout: timeout}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama client: %w", err)
	}
	return NewLangChain(llm), nil
}

// NewLangChainOpenAI uses the langchaingo OpenAI binding. baseURL may point at any compatible server.
func NewLangChainOpenAI(apiKey, modelName, baseURL string) (*LangChain, error) {
	if apiKey == "" {
		return nil, errors.New("openai API key cannot be empty")
	}
	opts := []langopenai.Option{langopenai.WithToken(apiKey)}
	if modelName != "" {
		opts = append(opts, langopenai.WithModel(modelName))
	}
	if baseURL != "" {
		opts = append(opts, langopenai.WithBaseURL(baseURL))
	}
	llm, err := langopenai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create langchaingo openai client: %w", err)
	}
	return NewLangChain(llm), nil
}

func (l *LangChain) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userPrompt),
	}
	resp, err := l.model.GenerateContent(ctx, messages, llms.WithTemperature(l.temperature))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("LLM request timed out: %w", err)
		}
		return "", fmt.Errorf("LLM call failed: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", domain.NewSummarizerError(errors.New("LLM returned no choices"))
	}

	text := stripThinking(resp.Choices[0].Content)
	logger.Get().Debug("LangChain: completion received", zap.Int("length", len(text)))
	return text, nil
}

// stripThinking drops a leading <think>...</think> block that reasoning models emit.
func stripThinking(s string) string {
	s = strings.TrimSpace(s)
	start := strings.Index(s, "<think>")
	if start == -1 {
		return s
	}
	end := strings.Index(s, "</think>")
	if end == -1 || end < start {
		return s
	}
	return strings.TrimSpace(s[:start] + s[end+len("</think>"):])
}

var _ domain.Summarizer = (*LangChain)(nil)
