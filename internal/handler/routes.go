package handler

import (
	"quizbot/internal/middleware"
	"quizbot/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Handlers groups everything SetupRoutes mounts.
type Handlers struct {
	Sessions   *SessionHandler
	Categories *CategoryHandler
	History    *HistoryHandler
	Users      *UserHandler
	Health     *HealthHandler
}

// SetupRoutes mounts /healthz and the JWT protected /api tree.
func SetupRoutes(app *fiber.App, h Handlers, authService service.AuthService) {
	vm := middleware.NewValidationMiddleware()

	app.Get("/healthz", h.Health.Health)

	api := app.Group("/api", middleware.Protected(authService))

	sessions := api.Group("/sessions/:kind", vm.ValidateKind())
	sessions.Post("/", h.Sessions.Start)
	sessions.Get("/", h.Sessions.Status)
	sessions.Delete("/", h.Sessions.Cancel)
	sessions.Post("/events", h.Sessions.Event)

	api.Get("/categories", h.Categories.List)

	history := api.Group("/history/:kind", vm.ValidateKind())
	history.Get("/", h.History.List)
	history.Get("/:id", vm.ValidateID(), h.History.Detail)
	history.Get("/:id/report", vm.ValidateID(), h.History.Report)

	api.Get("/users/me/progress", h.Users.GetMyProgress)
}
