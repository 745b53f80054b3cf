package summarizer

import (
	"context"
	"fmt"
	"io"
	"strings"

	"quizbot/internal/config"
	"quizbot/internal/domain"
	"quizbot/internal/logger"

	"go.uber.org/zap"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New builds the summarizer named by cfg.Provider. Provider "none" yields a nil
// summarizer, which makes every feedback request fall back to the canned text.
// The returned closer is never nil.
func New(ctx context.Context, cfg config.LLMConfig) (domain.Summarizer, io.Closer, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	logger.Get().Info("Initializing summarizer", zap.String("provider", provider), zap.String("model", cfg.Model))

	switch provider {
	case "", "none":
		return nil, nopCloser{}, nil
	case "ollama":
		s, err := NewOllama(cfg.Server, cfg.Model, cfg.Timeout)
		return s, nopCloser{}, err
	case "openai":
		s, err := NewLangChainOpenAI(cfg.APIKey, cfg.Model, cfg.BaseURL)
		return s, nopCloser{}, err
	case "openai-direct":
		return NewOpenAI(cfg.BaseURL, cfg.APIKey, cfg.Model), nopCloser{}, nil
	case "gemini":
		g, err := NewGemini(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, nopCloser{}, err
		}
		return g, g, nil
	}
	return nil, nopCloser{}, fmt.Errorf("unknown llm provider %q", cfg.Provider)
}
