package handler

import (
	"quizbot/internal/service"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	history service.HistoryService
}

func NewUserHandler(history service.HistoryService) *UserHandler {
	return &UserHandler{history: history}
}

// GetMyProgress godoc
// @Summary Points, usage time and question counters of the logged-in user
// @Tags users
// @Security ApiKeyAuth
// @Success 200 {object} dto.UserProgressResponse
// @Router /users/me/progress [get]
func (h *UserHandler) GetMyProgress(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	progress, err := h.history.Progress(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(progress)
}
