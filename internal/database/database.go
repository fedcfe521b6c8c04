package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/helpdesk/backend/internal/config"
	"github.com/helpdesk/backend/internal/models"
	"github.com/helpdesk/backend/pkg/utils"
)

func Connect(cfg config.DBConfig, admin config.AdminConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)

	// TranslateError maps driver unique-violation errors to
	// gorm.ErrDuplicatedKey so the services can classify them.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	if err := Seed(db, admin); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates the schema for all entities. Shared by the server and
// the in-memory test databases.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.SupportTicket{},
	)
}

// Seed inserts the role reference rows and, on an empty user table, the
// bootstrap administrator.
func Seed(db *gorm.DB, admin config.AdminConfig) error {
	if err := seedRoles(db); err != nil {
		return err
	}
	return seedAdminUser(db, admin)
}

func seedRoles(db *gorm.DB) error {
	for _, name := range []models.RoleName{models.RoleNameUser, models.RoleNameAdmin} {
		var count int64
		if err := db.Model(&models.Role{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := db.Create(&models.Role{Name: name}).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedAdminUser(db *gorm.DB, admin config.AdminConfig) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := utils.HashPassword(admin.Password)
	if err != nil {
		return err
	}

	var roles []models.Role
	if err := db.Where("name IN ?", []models.RoleName{models.RoleNameUser, models.RoleNameAdmin}).
		Find(&roles).Error; err != nil {
		return err
	}

	user := models.User{
		Email:        admin.Email,
		PasswordHash: hash,
		FirstName:    "System",
		LastName:     "Admin",
		Roles:        roles,
	}

	return db.Create(&user).Error
}
