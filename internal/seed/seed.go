// Package seed applies the admins.seed.json bootstrap file.
package seed

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gorm.io/gorm"

	"github.com/tiendaf1/shop/internal/hash"
	"github.com/tiendaf1/shop/internal/models"
)

type Entry struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Apply seeds every entry in the file at path as an admin. A missing file is
// not an error; a malformed one is logged and skipped. Seeding is
// idempotent: an existing email gets its hash replaced and the admin flag
// forced, never a duplicate row.
func Apply(db *gorm.DB, path string, log *slog.Logger) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Info("seed: file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("seed: read %s: %w", path, err)
	}

	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		log.Error("seed: invalid file", "path", path, "error", err)
		return nil
	}

	applied := 0
	for _, e := range entries {
		email := strings.ToLower(strings.TrimSpace(e.Email))
		if email == "" || e.Password == "" {
			continue
		}
		if err := UpsertAdmin(db, email, e.Password); err != nil {
			log.Error("seed: admin failed", "email", email, "error", err)
			continue
		}
		applied++
	}
	log.Info("seed: admins applied", "count", applied)
	return nil
}

// UpsertAdmin creates or updates a user as an administrator with a fresh
// password hash.
func UpsertAdmin(db *gorm.DB, email, rawPassword string) error {
	pwHash, err := hash.HashPassword(rawPassword)
	if err != nil {
		return err
	}

	var user models.User
	err = db.Where("email = ?", email).First(&user).Error
	switch {
	case err == nil:
		return db.Model(&user).Updates(map[string]any{
			"password_hash": pwHash,
			"is_admin":      true,
		}).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		return db.Create(&models.User{
			Email:        email,
			PasswordHash: pwHash,
			IsAdmin:      true,
		}).Error
	default:
		return err
	}
}
