package service

import (
	"context"

	"quizbot/internal/domain"
	"quizbot/internal/logger"

	"go.uber.org/zap"
)

const unknownCategory = "Unknown"

// categoryNames resolves the main category name of every question once.
// Lookup failures fall back to "Unknown".
func categoryNames(ctx context.Context, repo domain.CategoryRepository, questions []domain.Question) map[int64]string {
	names := make(map[int64]string)
	for _, q := range questions {
		if _, seen := names[q.MainCategoryID]; seen {
			continue
		}
		names[q.MainCategoryID] = unknownCategory
		if q.MainCategoryID == 0 || repo == nil {
			continue
		}
		cat, err := repo.GetMainByID(ctx, q.MainCategoryID)
		if err != nil {
			logger.Get().Warn("failed to resolve category name", zap.Int64("categoryID", q.MainCategoryID), zap.Error(err))
			continue
		}
		if cat != nil {
			names[q.MainCategoryID] = cat.Name
		}
	}
	return names
}
