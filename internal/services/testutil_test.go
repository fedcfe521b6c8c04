package services

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/helpdesk/backend/internal/config"
	"github.com/helpdesk/backend/internal/database"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

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

	admin := config.AdminConfig{Email: "admin@test.local", Password: "admin-password"}
	if err := database.Seed(db, admin); err != nil {
		t.Fatalf("failed seeding roles and admin: %v", err)
	}

	return db
}

func strPtr(value string) *string {
	return &value
}

func registerTestUser(t *testing.T, users *UserService, email string) UserResponse {
	t.Helper()

	user, err := users.Register(RegisterInput{
		Email:     email,
		Password:  "password123",
		FirstName: "Test",
		LastName:  "User",
	})
	if err != nil {
		t.Fatalf("failed registering %s: %v", email, err)
	}
	return user
}
