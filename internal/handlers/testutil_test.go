package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"

	"github.com/helpdesk/backend/internal/config"
	"github.com/helpdesk/backend/internal/database"
	"github.com/helpdesk/backend/internal/middleware"
	"github.com/helpdesk/backend/internal/models"
	"github.com/helpdesk/backend/internal/services"
	"github.com/helpdesk/backend/internal/storage"
	"github.com/helpdesk/backend/pkg/logger"
	"github.com/helpdesk/backend/pkg/utils"
)

type testEnv struct {
	app   *fiber.App
	db    *gorm.DB
	store storage.BlobStore
}

var testSetupOnce sync.Once

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	testSetupOnce.Do(func() {
		logger.Init()
		utils.ConfigureJWT("test-secret", 24)
	})

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed opening in-memory sqlite database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed getting sql.DB from gorm: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed migrating models: %v", err)
	}
	if err := database.Seed(db, config.AdminConfig{Email: "admin@test.local", Password: "admin-password"}); err != nil {
		t.Fatalf("failed seeding roles: %v", err)
	}

	store, err := storage.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed creating local blob store: %v", err)
	}

	authService := services.NewAuthService(db)
	userService := services.NewUserService(db)
	ticketService := services.NewTicketService(db)

	authHandler := NewAuthHandler(authService, userService, store)
	usersHandler := NewUsersHandler(userService, store)
	ticketsHandler := NewTicketsHandler(ticketService)

	authMiddleware := middleware.NewAuthMiddleware(db)

	app := fiber.New()
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))

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

	return &testEnv{app: app, db: db, store: store}
}

func createTestUser(t *testing.T, db *gorm.DB, email, password string, roleNames ...models.RoleName) (*models.User, string) {
	t.Helper()

	hash, err := utils.HashPassword(password)
	if err != nil {
		t.Fatalf("failed hashing password: %v", err)
	}

	if len(roleNames) == 0 {
		roleNames = []models.RoleName{models.RoleNameUser}
	}
	var roles []models.Role
	if err := db.Where("name IN ?", roleNames).Find(&roles).Error; err != nil {
		t.Fatalf("failed loading roles: %v", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    "Test",
		LastName:     "User",
		Roles:        roles,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed creating test user: %v", err)
	}

	token, err := utils.GenerateToken(user)
	if err != nil {
		t.Fatalf("failed generating auth token: %v", err)
	}

	return user, token
}

func authHeaders(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func performRequest(t *testing.T, app *fiber.App, method, path string, body io.Reader, headers map[string]string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := app.Test(req, int((10 * time.Second).Milliseconds()))
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}

	return resp
}

func performJSONRequest(t *testing.T, app *fiber.App, method, path string, payload any, headers map[string]string) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(encoded)
	}

	requestHeaders := map[string]string{}
	for key, value := range headers {
		requestHeaders[key] = value
	}
	if payload != nil {
		requestHeaders["Content-Type"] = "application/json"
	}

	return performRequest(t, app, method, path, body, requestHeaders)
}

func decodeJSONMap(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed reading response body: %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("failed decoding JSON response: %v body=%q", err, string(raw))
	}

	return payload
}

func decodeJSONSlice(t *testing.T, resp *http.Response) []any {
	t.Helper()
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed reading response body: %v", err)
	}

	var payload []any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("failed decoding JSON response: %v body=%q", err, string(raw))
	}

	return payload
}

func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Fatalf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

func assertErrorBody(t *testing.T, body map[string]any, expectedStatus int) {
	t.Helper()
	if status, _ := body["status"].(float64); int(status) != expectedStatus {
		t.Fatalf("expected error body status %d, got %v", expectedStatus, body["status"])
	}
	for _, key := range []string{"timestamp", "error", "message", "path"} {
		if _, ok := body[key]; !ok {
			t.Fatalf("expected %q in error body, got %+v", key, body)
		}
	}
}
