package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"quizbot/internal/domain"
	"quizbot/internal/logger"
	"quizbot/internal/util"

	"go.uber.org/zap"
)

// ReportGenerator renders the per-question report of a finished session.
type ReportGenerator interface {
	// Build lists every served question in order. Questions without an entry in answered
	// are reported as not answered. An empty questions list falls back to the answered ones.
	Build(ctx context.Context, kind domain.SessionKind, userID int64, questions []domain.Question, answered []domain.AnsweredQuestion) domain.ReportOutcome
}

type reportGenerator struct {
	renderer    domain.DocumentRenderer
	categories  domain.CategoryRepository
	baseDir     string
	templateRef string
	now         func() time.Time
}

// NewReportGenerator writes reports below baseDir/<user id>/.
func NewReportGenerator(renderer domain.DocumentRenderer, categories domain.CategoryRepository, baseDir, templateRef string) ReportGenerator {
	return &reportGenerator{
		renderer:    renderer,
		categories:  categories,
		baseDir:     baseDir,
		templateRef: templateRef,
		now:         time.Now,
	}
}

func reportTitle(kind domain.SessionKind) string {
	if kind == domain.KindLevel {
		return "Level Determination Report"
	}
	return "Test Report"
}

func (g *reportGenerator) Build(ctx context.Context, kind domain.SessionKind, userID int64, questions []domain.Question, answered []domain.AnsweredQuestion) domain.ReportOutcome {
	if g.renderer == nil {
		return domain.ReportOutcome{Err: domain.NewRenderError("no document renderer configured", nil)}
	}
	if len(answered) == 0 {
		return domain.ReportOutcome{Err: domain.NewRenderError("nothing to report", nil)}
	}

	byID := make(map[int64]domain.AnsweredQuestion, len(answered))
	for _, a := range answered {
		byID[a.Question.ID] = a
	}
	if len(questions) == 0 {
		for _, a := range answered {
			questions = append(questions, a.Question)
		}
	}
	names := categoryNames(ctx, g.categories, questions)

	data := domain.ReportData{Title: reportTitle(kind), UserID: userID}
	for i, q := range questions {
		a, ok := byID[q.ID]
		data.Questions = append(data.Questions, domain.ReportEntry{
			QuestionNumber:   i + 1,
			QuestionText:     q.Text,
			MainCategoryName: names[q.MainCategoryID],
			OptionA:          q.Options[0],
			OptionB:          q.Options[1],
			OptionC:          q.Options[2],
			OptionD:          q.Options[3],
			CorrectAnswer:    q.CorrectAnswer,
			Answered:         ok,
			UserAnswer:       a.UserAnswer,
			IsCorrect:        a.IsCorrect,
			Explanation:      q.Explanation,
		})
	}

	req := domain.RenderRequest{
		TemplateRef: g.templateRef,
		Dir:         filepath.Join(g.baseDir, strconv.FormatInt(userID, 10)),
		BaseName:    util.ArtifactName(string(kind), g.now()),
		Data:        data,
	}
	log := logger.Get().With(zap.Int64("userID", userID), zap.String("kind", string(kind)))

	intermediate, err := g.renderer.Render(ctx, req)
	if err != nil {
		log.Error("ReportGenerator: render failed", zap.Error(err))
		return domain.ReportOutcome{Err: domain.NewRenderError("failed to render report", err)}
	}

	final, err := g.renderer.Convert(ctx, intermediate)
	removeQuietly(intermediate)
	if err != nil {
		if final != "" {
			removeQuietly(final)
		}
		log.Error("ReportGenerator: conversion failed", zap.String("intermediate", intermediate), zap.Error(err))
		return domain.ReportOutcome{Err: domain.NewRenderError("failed to convert report", err)}
	}

	log.Info("ReportGenerator: report written", zap.String("path", final))
	return domain.ReportOutcome{Path: final}
}

func removeQuietly(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Get().Warn("failed to remove report file", zap.String("path", path), zap.Error(err))
	}
}
