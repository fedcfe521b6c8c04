package web

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk/backend/internal/models"
	"github.com/helpdesk/backend/pkg/logger"
	"github.com/helpdesk/backend/pkg/utils"
)

const adminPageSize = 20

func (s *Server) AdminUsers(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	p := utils.Pagination{Page: page, Limit: adminPageSize, Sort: "id"}
	users, total, err := s.users.GetAllPaged(p)
	if err != nil {
		s.setFlash(c, flashErrorKey, "Could not load users.")
		return c.Redirect("/", fiber.StatusFound)
	}

	totalPages := int((total + adminPageSize - 1) / adminPageSize)
	return c.Render("admin_users", s.popFlash(c, fiber.Map{
		"Title":      "Users",
		"User":       CurrentWebUser(c),
		"IsAdmin":    true,
		"Users":      users,
		"Page":       page,
		"PrevPage":   page - 1,
		"NextPage":   page + 1,
		"TotalPages": totalPages,
		"Total":      total,
	}), "layouts/main")
}

func (s *Server) AdminTickets(c *fiber.Ctx) error {
	tickets, err := s.tickets.GetAll()
	if err != nil {
		s.setFlash(c, flashErrorKey, "Could not load tickets.")
		return c.Redirect("/", fiber.StatusFound)
	}

	return c.Render("admin_tickets", s.popFlash(c, fiber.Map{
		"Title":   "Tickets",
		"User":    CurrentWebUser(c),
		"IsAdmin": true,
		"Tickets": tickets,
	}), "layouts/main")
}

func (s *Server) AdminTicketDetail(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		s.setFlash(c, flashErrorKey, "Invalid ticket id.")
		return c.Redirect("/admin/tickets", fiber.StatusFound)
	}

	ticket, err := s.tickets.GetByID(uint(id))
	if err != nil {
		s.setFlash(c, flashErrorKey, "Ticket not found.")
		return c.Redirect("/admin/tickets", fiber.StatusFound)
	}

	return c.Render("admin_ticket_detail", s.popFlash(c, fiber.Map{
		"Title":    "Ticket #" + strconv.FormatUint(id, 10),
		"User":     CurrentWebUser(c),
		"IsAdmin":  true,
		"Ticket":   ticket,
		"Statuses": models.TicketStatuses,
	}), "layouts/main")
}

// AdminTicketStatus is the only place status mutation is restricted to
// administrators; the REST surface leaves it open to any authenticated
// caller.
func (s *Server) AdminTicketStatus(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		s.setFlash(c, flashErrorKey, "Invalid ticket id.")
		return c.Redirect("/admin/tickets", fiber.StatusFound)
	}

	status := c.FormValue("status")
	if _, err := s.tickets.UpdateStatus(uint(id), status); err != nil {
		s.setFlash(c, flashErrorKey, "Status update failed: "+err.Error())
		return c.Redirect("/admin/tickets/"+strconv.FormatUint(id, 10), fiber.StatusFound)
	}

	logger.Info("ticket_status_changed", map[string]interface{}{
		"ticket_id": id,
		"status":    status,
		"admin_id":  CurrentWebUser(c).ID,
	})
	s.setFlash(c, flashSuccessKey, "Status updated to "+status+".")
	return c.Redirect("/admin/tickets/"+strconv.FormatUint(id, 10), fiber.StatusFound)
}
