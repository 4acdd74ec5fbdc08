// Package user provides account creation and API token resolution.
package user

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/runwayhq/runway/internal/errs"
	"github.com/runwayhq/runway/internal/models"
)

// Create registers a user and issues their API token.
func Create(db *gorm.DB, email, displayName string) (*models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("user: invalid email %q: %w", email, errs.ErrValidation)
	}

	id, err := models.NewID("usr")
	if err != nil {
		return nil, err
	}
	token, err := models.NewToken()
	if err != nil {
		return nil, err
	}

	u := models.User{
		ID:          id,
		Email:       email,
		DisplayName: displayName,
		APIToken:    token,
	}
	if err := db.Create(&u).Error; err != nil {
		return nil, fmt.Errorf("user: create %s: %w", email, err)
	}
	return &u, nil
}

// Get retrieves a user by ID.
func Get(db *gorm.DB, id string) (*models.User, error) {
	var u models.User
	if err := db.First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user: %s: %w", id, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("user: get %s: %w", id, err)
	}
	return &u, nil
}

// ByEmail retrieves a user by email address. Used by the CLI, where
// emails are friendlier than generated IDs.
func ByEmail(db *gorm.DB, email string) (*models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	var u models.User
	if err := db.First(&u, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user: %s: %w", email, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("user: by email %s: %w", email, err)
	}
	return &u, nil
}

// ByToken resolves a user from an API token. Used by the API auth
// middleware; an unknown token is reported as not found.
func ByToken(db *gorm.DB, token string) (*models.User, error) {
	if token == "" {
		return nil, fmt.Errorf("user: empty token: %w", errs.ErrNotFound)
	}
	var u models.User
	if err := db.First(&u, "api_token = ?", token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user: unknown token: %w", errs.ErrNotFound)
		}
		return nil, fmt.Errorf("user: by token: %w", err)
	}
	return &u, nil
}
