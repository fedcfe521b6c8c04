package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk/backend/internal/services"
	"github.com/helpdesk/backend/internal/storage"
	"github.com/helpdesk/backend/pkg/logger"
	"github.com/helpdesk/backend/pkg/utils"
)

type UsersHandler struct {
	Users *services.UserService
	Store storage.BlobStore
}

func NewUsersHandler(users *services.UserService, store storage.BlobStore) *UsersHandler {
	return &UsersHandler{Users: users, Store: store}
}

// Register is the only anonymous user endpoint.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var input services.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	user, err := h.Users.Register(input)
	if err != nil {
		return respondServiceError(c, err)
	}

	logger.Info("user_registered", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return c.Status(fiber.StatusCreated).JSON(user)
}

// List returns every user, or a single page when paging parameters are
// present.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	if c.Query("page") == "" && c.Query("limit") == "" {
		users, err := h.Users.GetAll()
		if err != nil {
			return respondServiceError(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(users)
	}

	p := utils.ParsePagination(c)
	users, total, err := h.Users.GetAllPaged(p)
	if err != nil {
		return respondServiceError(c, err)
	}
	return utils.Paginated(c, users, p.Page, p.Limit, total)
}

func (h *UsersHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid user id")
	}

	user, err := h.Users.GetByID(id)
	if err != nil {
		return respondServiceError(c, err)
	}
	if user == nil {
		return utils.Error(c, fiber.StatusNotFound, "user not found")
	}
	return c.Status(fiber.StatusOK).JSON(user)
}

func (h *UsersHandler) GetByEmail(c *fiber.Ctx) error {
	user, err := h.Users.GetByEmail(c.Params("email"))
	if err != nil {
		return respondServiceError(c, err)
	}
	if user == nil {
		return utils.Error(c, fiber.StatusNotFound, "user not found")
	}
	return c.Status(fiber.StatusOK).JSON(user)
}

func (h *UsersHandler) Search(c *fiber.Ctx) error {
	p := utils.ParsePagination(c)
	users, total, err := h.Users.Search(c.Query("q"), p)
	if err != nil {
		return respondServiceError(c, err)
	}
	return utils.Paginated(c, users, p.Page, p.Limit, total)
}

func (h *UsersHandler) ByRole(c *fiber.Ctx) error {
	users, err := h.Users.GetByRole(c.Params("role"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(users)
}

func (h *UsersHandler) PrivacyStats(c *fiber.Ctx) error {
	count, err := h.Users.CountPrivacyEnabled()
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"privacyEnabledCount": count})
}

func (h *UsersHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid user id")
	}

	var input services.ProfileUpdateInput
	if err := c.BodyParser(&input); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	user, err := h.Users.Update(id, input)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(user)
}

// Delete removes the user row together with its tickets and role
// associations; the orphaned avatar blob is cleaned up here, at the
// boundary, since the service never touches the blob store.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid user id")
	}

	avatar, err := h.Users.Delete(id)
	if err != nil {
		return respondServiceError(c, err)
	}

	if avatar != nil && h.Store != nil {
		if err := h.Store.Delete(c.Context(), *avatar); err != nil {
			logger.Error("avatar_cleanup_failed", err, map[string]interface{}{
				"user_id":     id,
				"object_name": *avatar,
			})
		}
	}

	logger.Info("user_deleted", map[string]interface{}{"user_id": id})
	return c.SendStatus(fiber.StatusNoContent)
}
