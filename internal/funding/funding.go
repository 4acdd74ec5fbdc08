// Package funding tracks capital: rounds raised, per-category
// allocations, actual spend, and an append-only audit trail of every
// funding mutation.
package funding

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/runwayhq/runway/internal/errs"
	"github.com/runwayhq/runway/internal/models"
	"github.com/runwayhq/runway/internal/workspace"
)

// auditReadCap bounds audit log reads per workspace.
const auditReadCap = 50

var validSources = map[string]bool{
	models.SourceAngel:        true,
	models.SourceVC:           true,
	models.SourceGrant:        true,
	models.SourceAccelerator:  true,
	models.SourceBootstrapped: true,
}

// RoundOpts holds parameters for recording a funding round.
type RoundOpts struct {
	WorkspaceID string
	Name        string
	Amount      int64 // minor currency units
	Currency    string
	Source      string
	Date        time.Time
	Notes       string
	ActorID     string
}

// SpendOpts holds parameters for logging spend against a category.
type SpendOpts struct {
	WorkspaceID       string
	FundingRoundID    string // optional
	Category          string
	Amount            int64
	Date              time.Time
	LinkedSprintID    string // optional
	LinkedMilestoneID string // optional
	Note              string
	ActorID           string
}

// CategorySummary is the allocated-vs-spent view for one category.
type CategorySummary struct {
	Category  string `json:"category"`
	Allocated int64  `json:"allocated"`
	Spent     int64  `json:"spent"`
}

// CreateRound records a funding round. Founder only.
func CreateRound(db *gorm.DB, opts RoundOpts) (*models.FundingRound, error) {
	if err := workspace.RequireRole(db, opts.WorkspaceID, opts.ActorID, models.RoleFounder); err != nil {
		return nil, err
	}
	if opts.Name == "" {
		return nil, fmt.Errorf("funding: round name is required: %w", errs.ErrValidation)
	}
	if opts.Amount <= 0 {
		return nil, fmt.Errorf("funding: round amount must be positive: %w", errs.ErrValidation)
	}
	if !validSources[opts.Source] {
		return nil, fmt.Errorf("funding: unknown source %q: %w", opts.Source, errs.ErrValidation)
	}

	id, err := models.NewID("rnd")
	if err != nil {
		return nil, err
	}
	r := models.FundingRound{
		ID:          id,
		WorkspaceID: opts.WorkspaceID,
		Name:        opts.Name,
		Amount:      opts.Amount,
		Currency:    opts.Currency,
		Source:      opts.Source,
		Date:        opts.Date,
		CreatedBy:   opts.ActorID,
	}
	if r.Currency == "" {
		r.Currency = "USD"
	}
	if opts.Notes != "" {
		r.Notes = &opts.Notes
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&r).Error; err != nil {
			return fmt.Errorf("funding: create round: %w", err)
		}
		summary := fmt.Sprintf("Round %q recorded: %d %s from %s", r.Name, r.Amount, r.Currency, r.Source)
		return AppendAudit(tx, r.WorkspaceID, models.AuditFundingCreated, r.ID, summary, opts.ActorID)
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListRounds returns a workspace's rounds newest-first.
func ListRounds(db *gorm.DB, workspaceID string) ([]models.FundingRound, error) {
	var rounds []models.FundingRound
	err := db.Where("workspace_id = ?", workspaceID).
		Order("date DESC, created_at DESC").
		Find(&rounds).Error
	if err != nil {
		return nil, fmt.Errorf("funding: list rounds for %s: %w", workspaceID, err)
	}
	return rounds, nil
}

// SetAllocation sets the allocated amount for a category within a round,
// replacing a previous allocation of the same category. Founder only.
// The round's allocations may never sum past its amount.
func SetAllocation(db *gorm.DB, workspaceID, roundID, category string, amount int64, actorID string) (*models.FundingAllocation, error) {
	if err := workspace.RequireRole(db, workspaceID, actorID, models.RoleFounder); err != nil {
		return nil, err
	}
	if !models.ValidCategory(category) {
		return nil, fmt.Errorf("funding: unknown category %q: %w", category, errs.ErrValidation)
	}
	if amount < 0 {
		return nil, fmt.Errorf("funding: allocation cannot be negative: %w", errs.ErrValidation)
	}

	var alloc *models.FundingAllocation
	err := db.Transaction(func(tx *gorm.DB) error {
		var round models.FundingRound
		if err := tx.First(&round, "id = ? AND workspace_id = ?", roundID, workspaceID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("funding: round %s: %w", roundID, errs.ErrNotFound)
			}
			return fmt.Errorf("funding: get round %s: %w", roundID, err)
		}

		var others int64
		err := tx.Model(&models.FundingAllocation{}).
			Where("funding_round_id = ? AND category <> ?", roundID, category).
			Select("COALESCE(SUM(allocated_amount), 0)").
			Scan(&others).Error
		if err != nil {
			return fmt.Errorf("funding: sum allocations for %s: %w", roundID, err)
		}
		if others+amount > round.Amount {
			return fmt.Errorf("funding: allocations %d exceed round amount %d: %w",
				others+amount, round.Amount, errs.ErrValidation)
		}

		var existing models.FundingAllocation
		err = tx.First(&existing, "funding_round_id = ? AND category = ?", roundID, category).Error
		switch {
		case err == nil:
			if err := tx.Model(&models.FundingAllocation{}).Where("id = ?", existing.ID).
				Update("allocated_amount", amount).Error; err != nil {
				return fmt.Errorf("funding: update allocation %s: %w", existing.ID, err)
			}
			existing.AllocatedAmount = amount
			alloc = &existing
		case errors.Is(err, gorm.ErrRecordNotFound):
			id, err := models.NewID("alc")
			if err != nil {
				return err
			}
			a := models.FundingAllocation{
				ID:              id,
				WorkspaceID:     workspaceID,
				FundingRoundID:  roundID,
				Category:        category,
				AllocatedAmount: amount,
			}
			if err := tx.Create(&a).Error; err != nil {
				return fmt.Errorf("funding: create allocation: %w", err)
			}
			alloc = &a
		default:
			return fmt.Errorf("funding: get allocation: %w", err)
		}

		summary := fmt.Sprintf("Allocation for %s set to %d on round %q", category, amount, round.Name)
		return AppendAudit(tx, workspaceID, models.AuditAllocationUpdated, alloc.ID, summary, actorID)
	})
	if err != nil {
		return nil, err
	}
	return alloc, nil
}

// LogSpend records actual spend. Founders and team members may log spend.
func LogSpend(db *gorm.DB, opts SpendOpts) (*models.SpendLog, error) {
	if err := workspace.RequireRole(db, opts.WorkspaceID, opts.ActorID, models.RoleFounder, models.RoleTeamMember); err != nil {
		return nil, err
	}
	if !models.ValidCategory(opts.Category) {
		return nil, fmt.Errorf("funding: unknown category %q: %w", opts.Category, errs.ErrValidation)
	}
	if opts.Amount <= 0 {
		return nil, fmt.Errorf("funding: spend amount must be positive: %w", errs.ErrValidation)
	}

	id, err := models.NewID("spd")
	if err != nil {
		return nil, err
	}
	s := models.SpendLog{
		ID:          id,
		WorkspaceID: opts.WorkspaceID,
		Category:    opts.Category,
		Amount:      opts.Amount,
		Date:        opts.Date,
		Note:        opts.Note,
		CreatedBy:   opts.ActorID,
	}
	if opts.FundingRoundID != "" {
		s.FundingRoundID = &opts.FundingRoundID
	}
	if opts.LinkedSprintID != "" {
		s.LinkedSprintID = &opts.LinkedSprintID
	}
	if opts.LinkedMilestoneID != "" {
		s.LinkedMilestoneID = &opts.LinkedMilestoneID
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&s).Error; err != nil {
			return fmt.Errorf("funding: log spend: %w", err)
		}
		summary := fmt.Sprintf("Spend of %d logged against %s", s.Amount, s.Category)
		return AppendAudit(tx, s.WorkspaceID, models.AuditSpendLogged, s.ID, summary, opts.ActorID)
	})
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListSpend returns a workspace's spend logs newest-first.
func ListSpend(db *gorm.DB, workspaceID string) ([]models.SpendLog, error) {
	var logs []models.SpendLog
	err := db.Where("workspace_id = ?", workspaceID).
		Order("date DESC, created_at DESC").
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("funding: list spend for %s: %w", workspaceID, err)
	}
	return logs, nil
}

// Summary aggregates allocated versus spent per category across all of
// a workspace's rounds. Categories with neither allocation nor spend are
// omitted.
func Summary(db *gorm.DB, workspaceID string) ([]CategorySummary, error) {
	type row struct {
		Category string
		Total    int64
	}

	var allocated []row
	err := db.Model(&models.FundingAllocation{}).
		Where("workspace_id = ?", workspaceID).
		Select("category, SUM(allocated_amount) AS total").
		Group("category").
		Scan(&allocated).Error
	if err != nil {
		return nil, fmt.Errorf("funding: sum allocations: %w", err)
	}

	var spent []row
	err = db.Model(&models.SpendLog{}).
		Where("workspace_id = ?", workspaceID).
		Select("category, SUM(amount) AS total").
		Group("category").
		Scan(&spent).Error
	if err != nil {
		return nil, fmt.Errorf("funding: sum spend: %w", err)
	}

	byCategory := map[string]*CategorySummary{}
	order := []string{}
	for _, r := range allocated {
		byCategory[r.Category] = &CategorySummary{Category: r.Category, Allocated: r.Total}
		order = append(order, r.Category)
	}
	for _, r := range spent {
		s, ok := byCategory[r.Category]
		if !ok {
			s = &CategorySummary{Category: r.Category}
			byCategory[r.Category] = s
			order = append(order, r.Category)
		}
		s.Spent = r.Total
	}

	out := make([]CategorySummary, 0, len(order))
	for _, c := range order {
		out = append(out, *byCategory[c])
	}
	return out, nil
}

// AppendAudit writes an audit trail entry inside the caller's
// transaction. The trail is append-only.
func AppendAudit(tx *gorm.DB, workspaceID, entryType, entityID, summary, actorID string) error {
	id, err := models.NewID("aud")
	if err != nil {
		return err
	}
	entry := models.AuditLogEntry{
		ID:          id,
		WorkspaceID: workspaceID,
		Type:        entryType,
		EntityID:    entityID,
		Summary:     summary,
		CreatedBy:   actorID,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("funding: append audit: %w", err)
	}
	return nil
}

// AuditLog returns a workspace's audit entries newest-first, capped at 50.
func AuditLog(db *gorm.DB, workspaceID string) ([]models.AuditLogEntry, error) {
	var entries []models.AuditLogEntry
	err := db.Where("workspace_id = ?", workspaceID).
		Order("created_at DESC, id DESC").
		Limit(auditReadCap).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("funding: audit log for %s: %w", workspaceID, err)
	}
	return entries, nil
}
