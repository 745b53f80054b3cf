package service

import (
	"context"

	"quizbot/internal/domain"
	"quizbot/internal/dto"
)

// CategoryService pages the category lists shown during configuration and by the API.
type CategoryService interface {
	List(ctx context.Context, scope domain.CategoryScope, qType domain.QuestionType, page int) (*dto.CategoryPageResponse, error)
}

type categoryService struct {
	repo    domain.CategoryRepository
	perPage int
}

func NewCategoryService(repo domain.CategoryRepository, perPage int) CategoryService {
	if perPage <= 0 {
		perPage = 10
	}
	return &categoryService{repo: repo, perPage: perPage}
}

func (s *categoryService) List(ctx context.Context, scope domain.CategoryScope, qType domain.QuestionType, page int) (*dto.CategoryPageResponse, error) {
	if page < 0 {
		page = 0
	}
	offset := page * s.perPage

	var (
		cats  []domain.Category
		total int
		err   error
	)
	switch scope {
	case domain.ScopeMain:
		cats, total, err = s.repo.ListMain(ctx, qType, offset, s.perPage)
	case domain.ScopeSub:
		cats, total, err = s.repo.ListSub(ctx, qType, offset, s.perPage)
	default:
		return nil, domain.NewInvalidInputError("scope must be main or sub")
	}
	if err != nil {
		return nil, domain.NewInternalError("Failed to list categories", err)
	}

	resp := &dto.CategoryPageResponse{
		Scope:          string(scope),
		QuizType:       string(qType),
		Categories:     make([]dto.CategoryResponse, 0, len(cats)),
		PaginationInfo: dto.NewPaginationInfo(total, s.perPage, page),
	}
	for _, c := range cats {
		resp.Categories = append(resp.Categories, dto.CategoryResponse{ID: c.ID, Name: c.Name})
	}
	return resp, nil
}
