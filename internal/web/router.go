package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"gorm.io/gorm"

	"github.com/helpdesk/backend/internal/services"
)

// Server hosts the session-based web surface. It shares services with the
// API but runs its own authorization pipeline.
type Server struct {
	store   *session.Store
	gate    *Gate
	auth    *services.AuthService
	users   *services.UserService
	tickets *services.TicketService
}

func NewServer(db *gorm.DB, auth *services.AuthService, users *services.UserService, tickets *services.TicketService) *Server {
	store := session.New(session.Config{
		KeyLookup:      "cookie:helpdesk_session",
		CookieHTTPOnly: true,
	})
	return &Server{
		store:   store,
		gate:    NewGate(db, store),
		auth:    auth,
		users:   users,
		tickets: tickets,
	}
}

// Register mounts the web routes. The gate middleware guards everything
// mounted here; handlers can assume the policy already passed.
func (s *Server) Register(app *fiber.App) {
	app.Use(s.gate.Enforce)

	app.Get("/login", s.LoginForm)
	app.Post("/login", s.Login)
	app.Post("/logout", s.Logout)
	app.Get("/access-denied", s.AccessDenied)

	app.Get("/", s.Dashboard)
	app.Get("/profile", s.ProfileForm)
	app.Post("/profile", s.ProfileSubmit)
	app.Get("/tickets", s.TicketsPage)
	app.Post("/tickets", s.TicketCreate)

	app.Get("/admin/users", s.AdminUsers)
	app.Get("/admin/tickets", s.AdminTickets)
	app.Get("/admin/tickets/:id", s.AdminTicketDetail)
	app.Post("/admin/tickets/:id/status", s.AdminTicketStatus)
}
