package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"quizbot/internal/handler"
	"quizbot/internal/logger"
	"quizbot/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func serveCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), c)
		},
	}
}

func runServe(ctx context.Context, c *cli) error {
	cfg := c.cfg
	appLogger := logger.Get()

	comps, err := wire(ctx, cfg)
	if err != nil {
		appLogger.Error("Failed to initialize application", zap.Error(err))
		return err
	}
	defer comps.close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  30 * time.Second,
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler(),
	})
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
		MaxAge:       300,
	}))

	handler.SetupRoutes(app, handler.Handlers{
		Sessions:   handler.NewSessionHandler(comps.sessions, comps.outbox),
		Categories: handler.NewCategoryHandler(comps.categories),
		History:    handler.NewHistoryHandler(comps.history),
		Users:      handler.NewUserHandler(comps.history),
		Health: handler.NewHealthHandler(
			handler.HealthCheck{Name: "database", Check: comps.db.PingContext},
			handler.HealthCheck{Name: "session_store", Check: comps.cache.Ping},
		),
	}, comps.auth)

	errCh := make(chan error, 1)
	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", cfg.Logger.Env))
		errCh <- app.Listen(":" + strconv.Itoa(cfg.Server.Port))
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		appLogger.Error("Server stopped", zap.Error(err))
		return err
	case <-quit:
	}

	appLogger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
		return err
	}
	appLogger.Info("Server exited gracefully")
	return nil
}
