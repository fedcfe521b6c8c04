package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"testing"
)

func performAvatarUpload(t *testing.T, env *testEnv, token, filename string, content []byte) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("avatar", filename)
	if err != nil {
		t.Fatalf("creating multipart form: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("writing multipart content: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}

	headers := authHeaders(token)
	headers["Content-Type"] = writer.FormDataContentType()
	return performRequest(t, env.app, http.MethodPost, "/api/me/avatar", &buf, headers)
}

func TestLoginEndpoint(t *testing.T) {
	env := setupTestEnv(t)
	createTestUser(t, env.db, "login@test.com", "password123")

	t.Run("valid credentials return a token and projection", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/api/auth/login", map[string]any{
			"email":    "login@test.com",
			"password": "password123",
		}, nil)
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusOK)

		if token, ok := body["token"].(string); !ok || token == "" {
			t.Fatalf("expected a non-empty token, got %v", body["token"])
		}
		user, ok := body["user"].(map[string]any)
		if !ok {
			t.Fatalf("expected a user projection, got %v", body["user"])
		}
		if user["email"] != "login@test.com" {
			t.Fatalf("expected projection for login@test.com, got %v", user["email"])
		}
		if _, leaked := user["passwordHash"]; leaked {
			t.Fatal("projection must not expose the password hash")
		}
	})

	t.Run("wrong password and unknown email are indistinguishable", func(t *testing.T) {
		for _, payload := range []map[string]any{
			{"email": "login@test.com", "password": "wrong-password"},
			{"email": "nobody@test.com", "password": "password123"},
		} {
			resp := performJSONRequest(t, env.app, http.MethodPost, "/api/auth/login", payload, nil)
			body := decodeJSONMap(t, resp)
			assertStatus(t, resp, http.StatusUnauthorized)
			assertErrorBody(t, body, http.StatusUnauthorized)
			if body["message"] != "invalid credentials" {
				t.Fatalf("expected uniform failure message, got %v", body["message"])
			}
		}
	})
}

func TestMeEndpoints(t *testing.T) {
	env := setupTestEnv(t)
	_, token := createTestUser(t, env.db, "me@test.com", "password123")

	t.Run("GET /api/me requires a token", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodGet, "/api/me", nil, nil)
		assertStatus(t, resp, http.StatusUnauthorized)
	})

	t.Run("GET /api/me returns the caller", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodGet, "/api/me", nil, authHeaders(token))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusOK)
		if body["email"] != "me@test.com" {
			t.Fatalf("expected me@test.com, got %v", body["email"])
		}
	})

	t.Run("PUT /api/me applies a partial update", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPut, "/api/me", map[string]any{
			"firstName": "Renamed",
			"phone":     "+1 (555) 867-5309",
		}, authHeaders(token))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusOK)
		if body["firstName"] != "Renamed" {
			t.Fatalf("expected updated first name, got %v", body["firstName"])
		}
		if body["phone"] != "+1 (555) 867-5309" {
			t.Fatalf("expected updated phone, got %v", body["phone"])
		}
	})

	t.Run("PUT /api/me rejects invalid names with field errors", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPut, "/api/me", map[string]any{
			"firstName": "Bad4Name",
		}, authHeaders(token))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusBadRequest)
		fieldErrors, ok := body["fieldErrors"].(map[string]any)
		if !ok {
			t.Fatalf("expected field errors, got %v", body["fieldErrors"])
		}
		if _, present := fieldErrors["firstName"]; !present {
			t.Fatal("expected an entry for firstName")
		}
	})

	t.Run("PUT /api/me/privacy toggles the flag", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPut, "/api/me/privacy", map[string]any{
			"privacyEnabled": true,
		}, authHeaders(token))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusOK)
		if body["privacyEnabled"] != true {
			t.Fatalf("expected privacy enabled, got %v", body["privacyEnabled"])
		}
	})
}

func TestAvatarEndpoints(t *testing.T) {
	env := setupTestEnv(t)
	user, token := createTestUser(t, env.db, "avatar@test.com", "password123")

	avatarPath := fmt.Sprintf("/api/users/%d/avatar", user.ID)
	var firstObject string

	t.Run("upload links the blob to the caller", func(t *testing.T) {
		resp := performAvatarUpload(t, env, token, "portrait.png", []byte("png-bytes-v1"))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusCreated)

		name, ok := body["avatarFilename"].(string)
		if !ok || name == "" {
			t.Fatalf("expected an avatar filename, got %v", body["avatarFilename"])
		}
		firstObject = name
	})

	t.Run("avatar streams back with the stored content", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodGet, avatarPath, nil, authHeaders(token))
		assertStatus(t, resp, http.StatusOK)
		defer resp.Body.Close()
		content, err := io.ReadAll(resp.Body)
		if err != nil {
			t.Fatalf("reading avatar body: %v", err)
		}
		if string(content) != "png-bytes-v1" {
			t.Fatalf("expected stored bytes back, got %q", content)
		}
		if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
			t.Fatalf("expected image/png, got %q", ct)
		}
	})

	t.Run("re-upload replaces and removes the previous blob", func(t *testing.T) {
		resp := performAvatarUpload(t, env, token, "portrait.jpg", []byte("jpg-bytes-v2"))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusCreated)

		name := body["avatarFilename"].(string)
		if name == firstObject {
			t.Fatal("expected a fresh object name on re-upload")
		}
		if _, err := env.store.Open(context.Background(), firstObject); err == nil {
			t.Fatal("expected the replaced blob to be deleted")
		}
	})

	t.Run("missing file part is a 400", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodPost, "/api/me/avatar", nil, authHeaders(token))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusBadRequest)
		assertErrorBody(t, body, http.StatusBadRequest)
	})

	t.Run("delete unlinks the blob", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodDelete, "/api/me/avatar", nil, authHeaders(token))
		assertStatus(t, resp, http.StatusNoContent)

		resp = performRequest(t, env.app, http.MethodGet, avatarPath, nil, authHeaders(token))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusNotFound)
		assertErrorBody(t, body, http.StatusNotFound)
	})
}
