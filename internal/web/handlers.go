package web

import (
	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk/backend/internal/models"
	"github.com/helpdesk/backend/internal/services"
	"github.com/helpdesk/backend/pkg/logger"
)

func (s *Server) LoginForm(c *fiber.Ctx) error {
	return c.Render("login", s.popFlash(c, fiber.Map{"Title": "Sign in"}), "layouts/main")
}

func (s *Server) Login(c *fiber.Ctx) error {
	email := c.FormValue("email")
	password := c.FormValue("password")

	user, err := s.auth.Authenticate(email, password)
	if err != nil {
		logger.Warn("web_login_failed", map[string]interface{}{
			"email": email,
			"ip":    c.IP(),
		})
		s.setFlash(c, flashErrorKey, "Invalid email or password.")
		return c.Redirect("/login", fiber.StatusFound)
	}

	sess, err := s.store.Get(c)
	if err != nil {
		return err
	}
	sess.Set(sessionUserKey, user.ID)
	if err := sess.Save(); err != nil {
		return err
	}

	logger.Info("web_login", map[string]interface{}{"user_id": user.ID})
	return c.Redirect("/", fiber.StatusFound)
}

func (s *Server) Logout(c *fiber.Ctx) error {
	sess, err := s.store.Get(c)
	if err == nil {
		_ = sess.Destroy()
	}
	return c.Redirect("/login", fiber.StatusFound)
}

func (s *Server) AccessDenied(c *fiber.Ctx) error {
	return c.Status(fiber.StatusForbidden).
		Render("access_denied", fiber.Map{"Title": "Access denied"}, "layouts/main")
}

func (s *Server) Dashboard(c *fiber.Ctx) error {
	user := CurrentWebUser(c)

	tickets, err := s.tickets.GetByUserID(user.ID)
	if err != nil {
		tickets = nil
	}

	return c.Render("dashboard", s.popFlash(c, fiber.Map{
		"Title":   "Dashboard",
		"User":    user,
		"IsAdmin": user.HasRole(models.RoleNameAdmin),
		"Tickets": tickets,
	}), "layouts/main")
}

func (s *Server) ProfileForm(c *fiber.Ctx) error {
	user := CurrentWebUser(c)
	return c.Render("profile", s.popFlash(c, fiber.Map{
		"Title":   "My profile",
		"User":    user,
		"IsAdmin": user.HasRole(models.RoleNameAdmin),
	}), "layouts/main")
}

func (s *Server) ProfileSubmit(c *fiber.Ctx) error {
	user := CurrentWebUser(c)

	firstName := c.FormValue("firstName")
	lastName := c.FormValue("lastName")
	phone := c.FormValue("phone")

	input := services.ProfileUpdateInput{
		FirstName: &firstName,
		LastName:  &lastName,
		Phone:     &phone,
	}
	if _, err := s.users.UpdateProfile(user.Email, input); err != nil {
		s.setFlash(c, flashErrorKey, "Profile update failed: "+err.Error())
		return c.Redirect("/profile", fiber.StatusFound)
	}

	privacyEnabled := c.FormValue("privacyEnabled") == "on"
	if _, err := s.users.UpdatePrivacy(user.Email, privacyEnabled); err != nil {
		s.setFlash(c, flashErrorKey, "Privacy update failed.")
		return c.Redirect("/profile", fiber.StatusFound)
	}

	s.setFlash(c, flashSuccessKey, "Profile updated.")
	return c.Redirect("/profile", fiber.StatusFound)
}

func (s *Server) TicketsPage(c *fiber.Ctx) error {
	user := CurrentWebUser(c)

	tickets, err := s.tickets.GetByUserID(user.ID)
	if err != nil {
		tickets = nil
	}

	return c.Render("tickets", s.popFlash(c, fiber.Map{
		"Title":   "My tickets",
		"User":    user,
		"IsAdmin": user.HasRole(models.RoleNameAdmin),
		"Tickets": tickets,
	}), "layouts/main")
}

func (s *Server) TicketCreate(c *fiber.Ctx) error {
	user := CurrentWebUser(c)

	input := services.CreateTicketInput{
		UserID:      user.ID,
		Subject:     c.FormValue("subject"),
		Description: c.FormValue("description"),
	}
	if _, err := s.tickets.Create(input); err != nil {
		s.setFlash(c, flashErrorKey, "Could not create ticket: "+err.Error())
		return c.Redirect("/tickets", fiber.StatusFound)
	}

	s.setFlash(c, flashSuccessKey, "Ticket created.")
	return c.Redirect("/tickets", fiber.StatusFound)
}
