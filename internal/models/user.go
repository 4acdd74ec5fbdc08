package models

import "time"

// User is an authenticated person. API clients authenticate with the
// per-user token; workspace roles are tracked separately per membership.
type User struct {
	ID          string `gorm:"primaryKey;size:32"`
	Email       string `gorm:"size:255;uniqueIndex"`
	DisplayName string `gorm:"size:255"`
	APIToken    string `gorm:"size:64;uniqueIndex" json:"-"`
	CreatedAt   time.Time
}
