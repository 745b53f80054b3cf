package handler

import (
	"path/filepath"

	"quizbot/internal/logger"
	"quizbot/internal/middleware"
	"quizbot/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// HistoryHandler serves finished sessions, their answers and report files.
type HistoryHandler struct {
	history service.HistoryService
}

func NewHistoryHandler(history service.HistoryService) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// List godoc
// @Summary Most recent sessions of the user
// @Tags history
// @Security ApiKeyAuth
// @Success 200 {array} dto.SessionSummaryResponse
// @Router /history/{kind} [get]
func (h *HistoryHandler) List(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	items, err := h.history.List(c.UserContext(), middleware.Kind(c), userID)
	if err != nil {
		return err
	}
	return c.JSON(items)
}

// Detail godoc
// @Summary One session with its answers
// @Tags history
// @Security ApiKeyAuth
// @Success 200 {object} dto.SessionDetailResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /history/{kind}/{id} [get]
func (h *HistoryHandler) Detail(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	detail, err := h.history.Detail(c.UserContext(), middleware.Kind(c), userID, middleware.ID(c))
	if err != nil {
		return err
	}
	return c.JSON(detail)
}

// Report godoc
// @Summary Download the PDF report of a session
// @Tags history
// @Security ApiKeyAuth
// @Produce application/pdf
// @Failure 404 {object} middleware.ErrorResponse "REPORT_MISSING"
// @Router /history/{kind}/{id}/report [get]
func (h *HistoryHandler) Report(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	path, err := h.history.ReportPath(c.UserContext(), middleware.Kind(c), userID, middleware.ID(c))
	if err != nil {
		return err
	}
	logger.Get().Info("Serving report", zap.Int64("userID", userID), zap.String("path", path))
	return c.Download(path, filepath.Base(path))
}
