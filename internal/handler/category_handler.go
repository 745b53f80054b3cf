package handler

import (
	"quizbot/internal/service"
	"quizbot/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type CategoryHandler struct {
	categories service.CategoryService
	validator  *validation.Validator
}

func NewCategoryHandler(categories service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categories: categories, validator: validation.NewValidator()}
}

// List godoc
// @Summary One page of main categories or subcategories
// @Tags categories
// @Param scope query string true "main or sub"
// @Param type query string false "verbal or quantitative"
// @Param page query int false "zero based page"
// @Success 200 {object} dto.CategoryPageResponse
// @Router /categories [get]
func (h *CategoryHandler) List(c *fiber.Ctx) error {
	q, errs := h.validator.ValidateCategoryQuery(c.Query("scope"), c.Query("type"), c.Query("page"))
	if len(errs) > 0 {
		return errs
	}
	resp, err := h.categories.List(c.UserContext(), q.Scope, q.QuizType, q.Page)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}
