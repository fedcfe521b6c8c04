package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
)

func runHandler(t *testing.T, path string, handler fiber.Handler) (*http.Response, map[string]any) {
	t.Helper()

	app := fiber.New()
	app.Get(path, handler)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed decoding body: %v", err)
	}
	return resp, body
}

func TestErrorBody(t *testing.T) {
	resp, body := runHandler(t, "/boom", func(c *fiber.Ctx) error {
		return Error(c, fiber.StatusNotFound, "user not found")
	})

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if body["status"] != float64(http.StatusNotFound) {
		t.Fatalf("expected status field 404, got %v", body["status"])
	}
	if body["error"] != "Not Found" {
		t.Fatalf("expected reason phrase, got %v", body["error"])
	}
	if body["message"] != "user not found" {
		t.Fatalf("expected message carried through, got %v", body["message"])
	}
	if body["path"] != "/boom" {
		t.Fatalf("expected request path, got %v", body["path"])
	}
	if _, err := time.Parse(time.RFC3339, body["timestamp"].(string)); err != nil {
		t.Fatalf("expected an RFC3339 timestamp, got %v", body["timestamp"])
	}
}

func TestValidationFailedBody(t *testing.T) {
	resp, body := runHandler(t, "/invalid", func(c *fiber.Ctx) error {
		return ValidationFailed(c, map[string]string{"email": "must be a valid email address"})
	})

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if body["message"] != "validation failed" {
		t.Fatalf("expected the fixed validation message, got %v", body["message"])
	}
	fieldErrors, ok := body["fieldErrors"].(map[string]any)
	if !ok {
		t.Fatalf("expected fieldErrors, got %v", body["fieldErrors"])
	}
	if fieldErrors["email"] != "must be a valid email address" {
		t.Fatalf("expected the email violation, got %v", fieldErrors["email"])
	}
}

func TestPaginatedBody(t *testing.T) {
	resp, body := runHandler(t, "/page", func(c *fiber.Ctx) error {
		return Paginated(c, []string{"a", "b", "c"}, 2, 3, 7)
	})

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	data, ok := body["data"].([]any)
	if !ok || len(data) != 3 {
		t.Fatalf("expected three items, got %v", body["data"])
	}

	meta, ok := body["pagination"].(map[string]any)
	if !ok {
		t.Fatalf("expected pagination metadata, got %v", body["pagination"])
	}
	if meta["page"] != float64(2) || meta["limit"] != float64(3) {
		t.Fatalf("expected page 2 limit 3, got %v", meta)
	}
	if meta["total"] != float64(7) {
		t.Fatalf("expected total 7, got %v", meta["total"])
	}
	if meta["totalPages"] != float64(3) {
		t.Fatalf("expected 3 total pages for 7/3, got %v", meta["totalPages"])
	}
}
