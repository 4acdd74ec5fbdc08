// Package insight derives assistive signals from execution data with
// plain rules: stale tasks, low completion, weak validation. No model
// calls; everything is computed from the workspace's own records.
package insight

import (
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/runwayhq/runway/internal/models"
	"github.com/runwayhq/runway/internal/workspace"
)

// Execution insight types.
const (
	TypeStalledTasks    = "stalled_tasks"
	TypeRepeatedBlocker = "repeated_blocker"
	TypeRisk            = "risk"
)

// Validation insight types.
const (
	TypeWeakSignal        = "weak_signal"
	TypeMissingValidation = "missing_validation"
)

// Severities.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// staleAfter is how long an incomplete task may sit without updates
// before it counts as stale.
const staleAfter = 14 * 24 * time.Hour

// ExecutionInsight flags an execution risk on a workspace.
type ExecutionInsight struct {
	ID          string   `json:"id"`
	Type        string   `json:"type"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Severity    string   `json:"severity"`
	TaskIDs     []string `json:"taskIds,omitempty"`
}

// ValidationInsight flags weak or missing validation evidence.
type ValidationInsight struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// InvestorSummary is a rule-generated progress narrative.
type InvestorSummary struct {
	Problem           string    `json:"problem"`
	Solution          string    `json:"solution"`
	Traction          string    `json:"traction"`
	ExecutionProgress string    `json:"executionProgress"`
	ValidationStatus  string    `json:"validationStatus"`
	Roadmap           string    `json:"roadmap"`
	GeneratedAt       time.Time `json:"generatedAt"`
}

// Execution computes execution insights for a workspace.
func Execution(db *gorm.DB, workspaceID string) ([]ExecutionInsight, error) {
	var tasks []models.Task
	if err := db.Where("workspace_id = ?", workspaceID).Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("insight: load tasks: %w", err)
	}
	var sprints []models.Sprint
	if err := db.Where("workspace_id = ?", workspaceID).Find(&sprints).Error; err != nil {
		return nil, fmt.Errorf("insight: load sprints: %w", err)
	}
	return executionFrom(tasks, sprints, time.Now()), nil
}

// executionFrom applies the rules to already-loaded records. Split out
// so tests can pin the clock.
func executionFrom(tasks []models.Task, sprints []models.Sprint, now time.Time) []ExecutionInsight {
	insights := []ExecutionInsight{}

	var stale []string
	done := 0
	for _, t := range tasks {
		if t.Status == models.TaskDone {
			done++
			continue
		}
		if now.Sub(t.UpdatedAt) > staleAfter {
			stale = append(stale, t.ID)
		}
	}
	if len(stale) >= 2 {
		insights = append(insights, ExecutionInsight{
			ID:          "stale-tasks",
			Type:        TypeRepeatedBlocker,
			Title:       "No recent activity on tasks",
			Description: fmt.Sprintf("%d tasks have had no updates in over two weeks. They may be blocked.", len(stale)),
			Severity:    SeverityHigh,
			TaskIDs:     stale,
		})
	}

	total := len(tasks)
	progress := 0.0
	if total > 0 {
		progress = 100 * float64(done) / float64(total)
	}
	if total >= 3 && progress < 25 {
		insights = append(insights, ExecutionInsight{
			ID:          "low-progress",
			Type:        TypeStalledTasks,
			Title:       "Low task completion",
			Description: fmt.Sprintf("Only %d%% of tasks are done (%d/%d). Consider reprioritizing.", int(math.Round(progress)), done, total),
			Severity:    SeverityMedium,
		})
	}

	lowCompletion := 0
	for _, s := range sprints {
		if s.Completed && s.CompletionPercentage < 50 {
			lowCompletion++
		}
	}
	if lowCompletion >= 2 {
		insights = append(insights, ExecutionInsight{
			ID:          "sprint-reliability",
			Type:        TypeRisk,
			Title:       "Sprint completion rate low",
			Description: fmt.Sprintf("%d recent sprints completed below 50%%. Consider smaller goals or addressing blockers.", lowCompletion),
			Severity:    SeverityHigh,
		})
	}

	return insights
}

// Validation computes validation insights for a workspace.
func Validation(db *gorm.DB, workspaceID string) ([]ValidationInsight, error) {
	var count int64
	if err := db.Model(&models.ValidationEntry{}).
		Where("workspace_id = ?", workspaceID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("insight: count validations: %w", err)
	}
	return validationFrom(int(count)), nil
}

func validationFrom(count int) []ValidationInsight {
	switch count {
	case 0:
		return []ValidationInsight{{
			ID:          "missing-validation",
			Type:        TypeMissingValidation,
			Title:       "No validation recorded",
			Description: "Log customer interviews, surveys, or experiments to de-risk your roadmap.",
		}}
	case 1:
		return []ValidationInsight{{
			ID:          "weak-signal",
			Type:        TypeWeakSignal,
			Title:       "Single validation source",
			Description: "Multiple sources (e.g. interviews + survey) strengthen signal.",
		}}
	}
	return []ValidationInsight{}
}

// Investor builds the rule-based investor summary for a workspace.
func Investor(db *gorm.DB, workspaceID string) (*InvestorSummary, error) {
	ws, err := workspace.Get(db, workspaceID)
	if err != nil {
		return nil, err
	}
	var tasks []models.Task
	if err := db.Where("workspace_id = ?", workspaceID).Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("insight: load tasks: %w", err)
	}
	var sprints []models.Sprint
	if err := db.Where("workspace_id = ?", workspaceID).Find(&sprints).Error; err != nil {
		return nil, fmt.Errorf("insight: load sprints: %w", err)
	}
	var validations int64
	if err := db.Model(&models.ValidationEntry{}).
		Where("workspace_id = ?", workspaceID).Count(&validations).Error; err != nil {
		return nil, fmt.Errorf("insight: count validations: %w", err)
	}
	return investorFrom(ws, tasks, sprints, int(validations)), nil
}

func investorFrom(ws *models.Workspace, tasks []models.Task, sprints []models.Sprint, validations int) *InvestorSummary {
	total := len(tasks)
	done := 0
	for _, t := range tasks {
		if t.Status == models.TaskDone {
			done++
		}
	}
	taskPct := 0
	if total > 0 {
		taskPct = int(math.Round(100 * float64(done) / float64(total)))
	}

	closed := 0
	pctSum := 0
	for _, s := range sprints {
		if s.Completed {
			closed++
			pctSum += s.CompletionPercentage
		}
	}
	avgCompletion := 0
	if closed > 0 {
		avgCompletion = int(math.Round(float64(pctSum) / float64(closed)))
	}

	traction := fmt.Sprintf("%d/%d tasks completed (%d%%). %d sprints closed with %d%% avg completion",
		done, total, taskPct, closed, avgCompletion)
	if validations > 0 {
		traction += fmt.Sprintf(". %d validation entries (interviews/surveys/experiments)", validations)
	}

	validationStatus := "No validation entries yet. Recommend adding customer interviews and experiment logs."
	if validations > 0 {
		validationStatus = fmt.Sprintf("%d validation entries (interviews, surveys, experiments) recorded.", validations)
	}

	roadmap := "Define sprints and tasks to build execution history."
	if closed > 0 {
		roadmap = fmt.Sprintf("Continue weekly sprints; %d tasks in progress.", total-done)
	}

	return &InvestorSummary{
		Problem: fmt.Sprintf("%s is in %s stage, focused on validating product-market fit and scaling execution discipline.",
			ws.Name, ws.Stage),
		Solution: fmt.Sprintf("Unified operational workspace for %s: execution tracking (tasks, sprints), structured validation, and verifiable progress via sprint commitments and completion records.",
			ws.Name),
		Traction:          traction,
		ExecutionProgress: fmt.Sprintf("%d/%d tasks done (%d%%). Sprint reliability: %d%% average completion.", done, total, taskPct, avgCompletion),
		ValidationStatus:  validationStatus,
		Roadmap:           roadmap,
		GeneratedAt:       time.Now(),
	}
}
