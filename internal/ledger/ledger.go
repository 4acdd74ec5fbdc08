// Package ledger maintains the append-only execution ledger: one hashed
// entry per sprint commitment (lock) and completion (close). Entries are
// never updated or deleted.
package ledger

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/runwayhq/runway/internal/models"
)

// readCap bounds ledger reads per workspace.
const readCap = 50

// Append writes a ledger entry inside the caller's transaction, chaining
// it to the workspace's latest entry via PrevHash. Callers must only
// invoke this after the corresponding state transition has been applied
// in the same transaction, so a failed transition writes no entry.
func Append(tx *gorm.DB, workspaceID, sprintID, entryType, hash, payloadSummary string) (*models.LedgerEntry, error) {
	if entryType != models.LedgerCommitment && entryType != models.LedgerCompletion {
		return nil, fmt.Errorf("ledger: unknown entry type %q", entryType)
	}

	id, err := models.NewID("led")
	if err != nil {
		return nil, err
	}

	prev, err := latest(tx, workspaceID)
	if err != nil {
		return nil, err
	}
	prevHash := ""
	if prev != nil {
		prevHash = prev.Hash
	}

	entry := models.LedgerEntry{
		ID:             id,
		WorkspaceID:    workspaceID,
		SprintID:       sprintID,
		Type:           entryType,
		Hash:           hash,
		PrevHash:       prevHash,
		Timestamp:      time.Now(),
		PayloadSummary: payloadSummary,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("ledger: append: %w", err)
	}
	return &entry, nil
}

// List returns a workspace's entries newest-first, capped at 50.
func List(db *gorm.DB, workspaceID string) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	err := db.Where("workspace_id = ?", workspaceID).
		Order("timestamp DESC, id DESC").
		Limit(readCap).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("ledger: list for %s: %w", workspaceID, err)
	}
	return entries, nil
}

// CountForSprint returns how many entries of a type exist for a sprint.
func CountForSprint(db *gorm.DB, sprintID, entryType string) (int64, error) {
	var count int64
	err := db.Model(&models.LedgerEntry{}).
		Where("sprint_id = ? AND type = ?", sprintID, entryType).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("ledger: count for %s: %w", sprintID, err)
	}
	return count, nil
}

// Verify walks a workspace's full chain oldest-first and reports the
// first entry whose PrevHash does not match its predecessor's Hash.
func Verify(db *gorm.DB, workspaceID string) error {
	var entries []models.LedgerEntry
	err := db.Where("workspace_id = ?", workspaceID).
		Order("timestamp ASC, id ASC").
		Find(&entries).Error
	if err != nil {
		return fmt.Errorf("ledger: verify %s: %w", workspaceID, err)
	}

	prevHash := ""
	for _, e := range entries {
		if e.PrevHash != prevHash {
			return fmt.Errorf("ledger: chain broken at entry %s: prev_hash %q, want %q",
				e.ID, e.PrevHash, prevHash)
		}
		prevHash = e.Hash
	}
	return nil
}

// latest returns the most recent entry for a workspace, or nil.
func latest(db *gorm.DB, workspaceID string) (*models.LedgerEntry, error) {
	var entry models.LedgerEntry
	err := db.Where("workspace_id = ?", workspaceID).
		Order("timestamp DESC, id DESC").
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ledger: latest for %s: %w", workspaceID, err)
	}
	return &entry, nil
}
