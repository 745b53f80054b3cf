package handler

import (
	"quizbot/internal/domain"
	"quizbot/internal/dto"
	"quizbot/internal/logger"
	"quizbot/internal/middleware"
	"quizbot/internal/service"
	"quizbot/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/copier"
	"go.uber.org/zap"
)

// MessageDrainer hands out the messages the transport collected for one session of a user.
type MessageDrainer interface {
	Drain(userID int64, kind domain.SessionKind) []domain.Message
}

// SessionHandler exposes the quiz session state machine over HTTP.
type SessionHandler struct {
	sessions  service.SessionService
	outbox    MessageDrainer
	validator *validation.Validator
}

func NewSessionHandler(sessions service.SessionService, outbox MessageDrainer) *SessionHandler {
	return &SessionHandler{sessions: sessions, outbox: outbox, validator: validation.NewValidator()}
}

func currentUser(c *fiber.Ctx) (int64, error) {
	userID, ok := middleware.UserID(c)
	if !ok {
		logger.Get().Warn("User ID not found in context", zap.String("path", c.Path()))
		return 0, domain.NewUnauthorizedError("User ID not found in context")
	}
	return userID, nil
}

// respond maps a snapshot and the pending outbound messages to the response body.
// On error the pending messages are dropped so they cannot leak into a later response.
func (h *SessionHandler) respond(c *fiber.Ctx, userID int64, kind domain.SessionKind, snap *service.SessionSnapshot, err error, status int) error {
	msgs := h.outbox.Drain(userID, kind)
	if err != nil {
		if len(msgs) > 0 {
			logger.Get().Debug("Dropping outbound messages of a failed request",
				zap.Int64("userID", userID), zap.String("kind", string(kind)), zap.Int("count", len(msgs)))
		}
		return err
	}

	resp := dto.SessionResponse{}
	if err := copier.Copy(&resp, snap); err != nil {
		return domain.NewInternalError("Failed to map session", err)
	}
	resp.Messages = msgs
	if resp.Messages == nil {
		resp.Messages = []domain.Message{}
	}
	return c.Status(status).JSON(resp)
}

// Start godoc
// @Summary Start a quiz session
// @Tags sessions
// @Security ApiKeyAuth
// @Param kind path string true "test or level"
// @Success 201 {object} dto.SessionResponse
// @Failure 409 {object} middleware.ErrorResponse "A session is already in progress"
// @Router /sessions/{kind} [post]
func (h *SessionHandler) Start(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	kind := middleware.Kind(c)
	snap, err := h.sessions.Start(c.UserContext(), kind, userID)
	return h.respond(c, userID, kind, snap, err, fiber.StatusCreated)
}

// Event godoc
// @Summary Send one user action to the session
// @Tags sessions
// @Security ApiKeyAuth
// @Param kind path string true "test or level"
// @Param event body dto.EventRequest true "Event"
// @Success 200 {object} dto.SessionResponse
// @Router /sessions/{kind}/events [post]
func (h *SessionHandler) Event(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req dto.EventRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid request body")
	}
	if errs := h.validator.ValidateEventRequest(req); len(errs) > 0 {
		return errs
	}
	if err := req.Normalize(); err != nil {
		return err
	}
	ev, err := req.ToEvent()
	if err != nil {
		return err
	}

	kind := middleware.Kind(c)
	snap, err := h.sessions.Handle(c.UserContext(), kind, userID, ev)
	return h.respond(c, userID, kind, snap, err, fiber.StatusOK)
}

// Status godoc
// @Summary Current session state; finishes the session once its deadline passed
// @Tags sessions
// @Security ApiKeyAuth
// @Router /sessions/{kind} [get]
func (h *SessionHandler) Status(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	kind := middleware.Kind(c)
	snap, err := h.sessions.Status(c.UserContext(), kind, userID)
	return h.respond(c, userID, kind, snap, err, fiber.StatusOK)
}

// Cancel godoc
// @Summary Abandon the session
// @Tags sessions
// @Security ApiKeyAuth
// @Router /sessions/{kind} [delete]
func (h *SessionHandler) Cancel(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	kind := middleware.Kind(c)
	snap, err := h.sessions.Cancel(c.UserContext(), kind, userID)
	return h.respond(c, userID, kind, snap, err, fiber.StatusOK)
}
