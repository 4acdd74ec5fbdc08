package workspace

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/runwayhq/runway/internal/errs"
	"github.com/runwayhq/runway/internal/models"
)

// validInviteRoles are the roles an invite may grant.
var validInviteRoles = map[string]bool{
	models.RoleFounder:    true,
	models.RoleTeamMember: true,
	models.RoleInvestor:   true,
}

// CreateInvite issues a one-time join token for a workspace. Founder only.
func CreateInvite(db *gorm.DB, workspaceID, actorID, role string) (*models.WorkspaceInvite, error) {
	if !validInviteRoles[role] {
		return nil, fmt.Errorf("workspace: unknown invite role %q: %w", role, errs.ErrValidation)
	}
	if err := RequireRole(db, workspaceID, actorID, models.RoleFounder); err != nil {
		return nil, err
	}

	id, err := models.NewID("inv")
	if err != nil {
		return nil, err
	}
	token, err := models.NewToken()
	if err != nil {
		return nil, err
	}

	inv := models.WorkspaceInvite{
		ID:          id,
		WorkspaceID: workspaceID,
		Role:        role,
		Token:       token,
		CreatedBy:   actorID,
	}
	if err := db.Create(&inv).Error; err != nil {
		return nil, fmt.Errorf("workspace: create invite: %w", err)
	}
	return &inv, nil
}

// RedeemInvite consumes an unused invite token and adds the user as a
// member with the invite's role. The conditional update on `used` makes
// redemption exactly-once under concurrent attempts.
func RedeemInvite(db *gorm.DB, workspaceID, token, userID string) (*models.WorkspaceMember, error) {
	var inv models.WorkspaceInvite
	err := db.First(&inv, "workspace_id = ? AND token = ? AND used = ?", workspaceID, token, false).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("workspace: invite not found or already used: %w", errs.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("workspace: lookup invite: %w", err)
	}
	if inv.ExpiresAt != nil && time.Now().After(*inv.ExpiresAt) {
		return nil, fmt.Errorf("workspace: invite expired: %w", errs.ErrValidation)
	}

	role, err := RoleOf(db, workspaceID, userID)
	if err != nil {
		return nil, err
	}
	if role != models.RoleNone {
		return nil, fmt.Errorf("workspace: already a member: %w", errs.ErrValidation)
	}

	now := time.Now()
	member := models.WorkspaceMember{
		WorkspaceID: workspaceID,
		UserID:      userID,
		Role:        inv.Role,
		JoinedAt:    now,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.WorkspaceInvite{}).
			Where("id = ? AND used = ?", inv.ID, false).
			Updates(map[string]interface{}{"used": true, "used_by": userID, "used_at": now})
		if res.Error != nil {
			return fmt.Errorf("workspace: mark invite used: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("workspace: invite already used: %w", errs.ErrNotFound)
		}
		if err := tx.Create(&member).Error; err != nil {
			return fmt.Errorf("workspace: add member: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &member, nil
}
