package handlers

import (
	"mime"
	"path/filepath"

	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk/backend/internal/middleware"
	"github.com/helpdesk/backend/internal/services"
	"github.com/helpdesk/backend/internal/storage"
	"github.com/helpdesk/backend/pkg/logger"
	"github.com/helpdesk/backend/pkg/utils"
)

// AuthHandler covers credential exchange and self-service ("me")
// endpoints.
type AuthHandler struct {
	Auth  *services.AuthService
	Users *services.UserService
	Store storage.BlobStore
}

func NewAuthHandler(auth *services.AuthService, users *services.UserService, store storage.BlobStore) *AuthHandler {
	return &AuthHandler{Auth: auth, Users: users, Store: store}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	user, err := h.Auth.Authenticate(req.Email, req.Password)
	if err != nil {
		logger.Warn("login_failed", map[string]interface{}{
			"email": req.Email,
			"ip":    c.IP(),
		})
		return utils.Error(c, fiber.StatusUnauthorized, "invalid credentials")
	}

	token, err := utils.GenerateToken(user)
	if err != nil {
		return respondServiceError(c, err)
	}

	projection, err := h.Users.GetByEmail(user.Email)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"token": token,
		"user":  projection,
	})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	current := middleware.GetCurrentUser(c)
	user, err := h.Users.GetByEmail(current.Email)
	if err != nil {
		return respondServiceError(c, err)
	}
	if user == nil {
		return utils.Error(c, fiber.StatusNotFound, "user not found")
	}
	return c.Status(fiber.StatusOK).JSON(user)
}

func (h *AuthHandler) UpdateMe(c *fiber.Ctx) error {
	current := middleware.GetCurrentUser(c)

	var input services.ProfileUpdateInput
	if err := c.BodyParser(&input); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	user, err := h.Users.UpdateProfile(current.Email, input)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(user)
}

type privacyRequest struct {
	PrivacyEnabled bool `json:"privacyEnabled"`
}

func (h *AuthHandler) UpdatePrivacy(c *fiber.Ctx) error {
	current := middleware.GetCurrentUser(c)

	var req privacyRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	user, err := h.Users.UpdatePrivacy(current.Email, req.PrivacyEnabled)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(user)
}

// UploadAvatar stores the blob first, then links it; the previously
// linked blob is deleted only after the new reference is committed.
func (h *AuthHandler) UploadAvatar(c *fiber.Ctx) error {
	current := middleware.GetCurrentUser(c)

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "avatar file is required")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "could not read avatar file")
	}
	defer src.Close()

	objectName := storage.GenerateObjectName(fileHeader.Filename)
	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(objectName))
	}

	if err := h.Store.Save(c.Context(), objectName, src, fileHeader.Size, contentType); err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed storing avatar")
	}

	previous := current.AvatarFilename
	user, err := h.Users.UpdateAvatar(current.Email, &objectName)
	if err != nil {
		_ = h.Store.Delete(c.Context(), objectName)
		return respondServiceError(c, err)
	}

	if previous != nil {
		if err := h.Store.Delete(c.Context(), *previous); err != nil {
			logger.Error("avatar_cleanup_failed", err, map[string]interface{}{
				"object_name": *previous,
			})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

func (h *AuthHandler) DeleteAvatar(c *fiber.Ctx) error {
	current := middleware.GetCurrentUser(c)

	previous := current.AvatarFilename
	if _, err := h.Users.UpdateAvatar(current.Email, nil); err != nil {
		return respondServiceError(c, err)
	}

	if previous != nil {
		if err := h.Store.Delete(c.Context(), *previous); err != nil {
			logger.Error("avatar_cleanup_failed", err, map[string]interface{}{
				"object_name": *previous,
			})
		}
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Avatar streams another user's avatar blob.
func (h *AuthHandler) Avatar(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid user id")
	}

	user, err := h.Users.GetByID(id)
	if err != nil {
		return respondServiceError(c, err)
	}
	if user == nil || user.AvatarFilename == nil {
		return utils.Error(c, fiber.StatusNotFound, "avatar not found")
	}

	blob, err := h.Store.Open(c.Context(), *user.AvatarFilename)
	if err != nil {
		return utils.Error(c, fiber.StatusNotFound, "avatar not found")
	}

	if contentType := mime.TypeByExtension(filepath.Ext(*user.AvatarFilename)); contentType != "" {
		c.Set(fiber.HeaderContentType, contentType)
	}
	return c.SendStream(blob)
}
