package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"quizbot/internal/adapter"
	"quizbot/internal/adapter/renderer"
	"quizbot/internal/adapter/summarizer"
	"quizbot/internal/cache"
	"quizbot/internal/config"
	"quizbot/internal/database"
	"quizbot/internal/domain"
	"quizbot/internal/logger"
	"quizbot/internal/quiz"
	"quizbot/internal/repository"
	"quizbot/internal/service"
	"quizbot/internal/transport"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// components is the wired application. close releases everything in reverse order.
type components struct {
	db         *sqlx.DB
	cache      domain.Cache
	outbox     *transport.Outbox
	sessions   service.SessionService
	categories service.CategoryService
	history    service.HistoryService
	auth       service.AuthService
	closers    []io.Closer
}

func (c *components) close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i].Close(); err != nil {
			logger.Get().Warn("close failed", zap.Error(err))
		}
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func openMigrated(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	db, err := database.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func sessionCache(ctx context.Context, cfg *config.Config) (domain.Cache, io.Closer, error) {
	switch strings.ToLower(cfg.Session.Store) {
	case "memory":
		logger.Get().Warn("Session states are kept in process memory and do not survive a restart")
		return adapter.NewMemoryCacheAdapter(), nopCloser{}, nil
	case "redis", "":
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		logger.Get().Info("Successfully connected to Redis", zap.String("address", cfg.Redis.Address))
		return adapter.NewRedisCacheAdapter(client), client, nil
	}
	return nil, nil, fmt.Errorf("unknown session store %q", cfg.Session.Store)
}

func wire(ctx context.Context, cfg *config.Config) (*components, error) {
	c := &components{}
	ok := false
	defer func() {
		if !ok {
			c.close()
		}
	}()

	db, err := openMigrated(ctx, cfg)
	if err != nil {
		return nil, err
	}
	c.db = db
	c.closers = append(c.closers, db)

	kv, kvCloser, err := sessionCache(ctx, cfg)
	if err != nil {
		return nil, err
	}
	c.cache = kv
	c.closers = append(c.closers, kvCloser)

	sum, sumCloser, err := summarizer.New(ctx, cfg.LLM)
	if err != nil {
		return nil, err
	}
	c.closers = append(c.closers, sumCloser)

	c.auth, err = service.NewAuthService(cfg.JWT)
	if err != nil {
		return nil, err
	}

	questions := repository.NewQuestionDatabaseAdapter(db)
	categories := repository.NewCategoryDatabaseAdapter(db)
	sessions := repository.NewSessionDatabaseAdapter(db)
	ledger := repository.NewAnswerLedgerAdapter(db)
	progress := repository.NewUserProgressAdapter(db)

	c.outbox = transport.NewOutbox(0)
	c.categories = service.NewCategoryService(categories, cfg.Quiz.CategoriesPerPage)
	c.history = service.NewHistoryService(sessions, ledger, questions, progress, cfg.Quiz.HistoryLimit)

	limits := quiz.Limits{
		MinQuestions:       cfg.Quiz.MinQuestions,
		MaxQuestions:       cfg.Quiz.MaxQuestions,
		MinutesPerQuestion: cfg.Quiz.MinutesPerQuestion,
	}
	c.sessions = service.NewSessionService(service.SessionDeps{
		Questions:  questions,
		Sessions:   sessions,
		Ledger:     ledger,
		Progress:   progress,
		Store:      service.NewSessionStore(kv, cfg.Session.TTL),
		Transport:  c.outbox,
		Reports:    service.NewReportGenerator(renderer.NewHTMLPDF(cfg.Report.FontPath), categories, cfg.Report.Dir, cfg.Report.Template),
		Feedback:   service.NewFeedbackRequester(sum, categories, cfg.LLM.Timeout),
		Categories: c.categories,
	}, limits)

	ok = true
	return c, nil
}
