package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/helpdesk/backend/internal/config"
	"github.com/helpdesk/backend/internal/database"
	"github.com/helpdesk/backend/internal/handlers"
	"github.com/helpdesk/backend/internal/middleware"
	"github.com/helpdesk/backend/internal/services"
	"github.com/helpdesk/backend/internal/storage"
	"github.com/helpdesk/backend/internal/web"
	"github.com/helpdesk/backend/pkg/logger"
	"github.com/helpdesk/backend/pkg/utils"
)

func main() {
	logger.Init()

	cfg := config.Load()
	utils.ConfigureJWT(cfg.JWT.Secret, cfg.JWT.ExpirationHours)

	db, err := database.Connect(cfg.DB, cfg.Admin)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	store, err := storage.NewBlobStore(cfg.Storage)
	if err != nil {
		log.Fatalf("blob store initialization failed: %v", err)
	}
	if minioStore, ok := store.(*storage.MinIOStore); ok {
		if err := minioStore.EnsureBucket(context.Background()); err != nil {
			log.Fatalf("failed ensuring bucket: %v", err)
		}
	}

	authService := services.NewAuthService(db)
	userService := services.NewUserService(db)
	ticketService := services.NewTicketService(db)

	authHandler := handlers.NewAuthHandler(authService, userService, store)
	usersHandler := handlers.NewUsersHandler(userService, store)
	ticketsHandler := handlers.NewTicketsHandler(ticketService)

	authMiddleware := middleware.NewAuthMiddleware(db)
	webServer := web.NewServer(db, authService, userService, ticketService)

	app := fiber.New(fiber.Config{
		Views:     web.NewEngine(),
		BodyLimit: 10 * 1024 * 1024,
	})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.CORS())
	app.Use(middleware.RequestLogger())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	api.Post("/users", usersHandler.Register)
	api.Post("/auth/login", authHandler.Login)

	api.Get("/me", authMiddleware.RequireAuth, authHandler.Me)
	api.Put("/me", authMiddleware.RequireAuth, authHandler.UpdateMe)
	api.Put("/me/privacy", authMiddleware.RequireAuth, authHandler.UpdatePrivacy)
	api.Post("/me/avatar", authMiddleware.RequireAuth, authHandler.UploadAvatar)
	api.Delete("/me/avatar", authMiddleware.RequireAuth, authHandler.DeleteAvatar)

	userRoutes := api.Group("/users", authMiddleware.RequireAuth)
	userRoutes.Get("/", usersHandler.List)
	userRoutes.Get("/search", usersHandler.Search)
	userRoutes.Get("/stats/privacy", usersHandler.PrivacyStats)
	userRoutes.Get("/role/:role", usersHandler.ByRole)
	userRoutes.Get("/email/:email", usersHandler.GetByEmail)
	userRoutes.Get("/:id/avatar", authHandler.Avatar)
	userRoutes.Get("/:id", usersHandler.Get)
	userRoutes.Put("/:id", usersHandler.Update)
	userRoutes.Delete("/:id", usersHandler.Delete)

	ticketRoutes := api.Group("/tickets", authMiddleware.RequireAuth)
	ticketRoutes.Get("/", ticketsHandler.List)
	ticketRoutes.Get("/user/:userId", ticketsHandler.ByUser)
	ticketRoutes.Get("/:id", ticketsHandler.Get)
	ticketRoutes.Post("/", ticketsHandler.Create)
	ticketRoutes.Patch("/:id/status", ticketsHandler.UpdateStatus)

	webServer.Register(app)

	listenAddr := fmt.Sprintf(":%s", cfg.Server.Port)

	logger.Info("server_starting", map[string]interface{}{
		"port":    cfg.Server.Port,
		"address": listenAddr,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(listenAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("shutting down server due to signal: %s", sig)
		shutdownDone := make(chan struct{})
		go func() {
			_ = app.Shutdown()
			close(shutdownDone)
		}()
		select {
		case <-shutdownDone:
		case <-time.After(10 * time.Second):
			log.Print("forced shutdown timeout reached")
		}
	case err := <-errCh:
		if err != nil {
			log.Fatalf("server error: %v", err)
		}
	}
}
