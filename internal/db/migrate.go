package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/runwayhq/runway/internal/models"
)

// AllModels returns every GORM model for migration.
func AllModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Workspace{},
		&models.WorkspaceMember{},
		&models.WorkspaceInvite{},
		&models.Milestone{},
		&models.Task{},
		&models.Sprint{},
		&models.ValidationEntry{},
		&models.LedgerEntry{},
		&models.FundingRound{},
		&models.FundingAllocation{},
		&models.SpendLog{},
		&models.AuditLogEntry{},
		&models.Integration{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}
