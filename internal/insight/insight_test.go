package insight

import (
	"testing"
	"time"

	"github.com/runwayhq/runway/internal/models"
)

func TestExecution_StaleTasks(t *testing.T) {
	now := time.Now()
	old := now.Add(-15 * 24 * time.Hour)
	tasks := []models.Task{
		{ID: "task-1", Status: models.TaskTodo, UpdatedAt: old},
		{ID: "task-2", Status: models.TaskInProgress, UpdatedAt: old},
		{ID: "task-3", Status: models.TaskDone, UpdatedAt: old}, // done tasks never count
	}

	got := executionFrom(tasks, nil, now)
	if len(got) != 1 {
		t.Fatalf("insights = %d, want 1", len(got))
	}
	if got[0].Type != TypeRepeatedBlocker || got[0].Severity != SeverityHigh {
		t.Errorf("insight = %+v, want high repeated_blocker", got[0])
	}
	if len(got[0].TaskIDs) != 2 {
		t.Errorf("stale task IDs = %v, want 2", got[0].TaskIDs)
	}
}

func TestExecution_SingleStaleTaskIgnored(t *testing.T) {
	now := time.Now()
	tasks := []models.Task{
		{ID: "task-1", Status: models.TaskTodo, UpdatedAt: now.Add(-20 * 24 * time.Hour)},
		{ID: "task-2", Status: models.TaskTodo, UpdatedAt: now},
	}
	if got := executionFrom(tasks, nil, now); len(got) != 0 {
		t.Errorf("insights = %v, want none", got)
	}
}

func TestExecution_LowProgress(t *testing.T) {
	now := time.Now()
	tasks := []models.Task{
		{ID: "task-1", Status: models.TaskTodo, UpdatedAt: now},
		{ID: "task-2", Status: models.TaskTodo, UpdatedAt: now},
		{ID: "task-3", Status: models.TaskTodo, UpdatedAt: now},
		{ID: "task-4", Status: models.TaskDone, UpdatedAt: now},
	}

	got := executionFrom(tasks, nil, now)
	if len(got) != 1 || got[0].Type != TypeStalledTasks {
		t.Fatalf("insights = %+v, want one stalled_tasks", got)
	}
	if got[0].Severity != SeverityMedium {
		t.Errorf("severity = %q, want medium", got[0].Severity)
	}
}

func TestExecution_SprintReliability(t *testing.T) {
	sprints := []models.Sprint{
		{ID: "spr-1", Completed: true, CompletionPercentage: 40},
		{ID: "spr-2", Completed: true, CompletionPercentage: 20},
		{ID: "spr-3", Completed: true, CompletionPercentage: 90},
		{ID: "spr-4", Completed: false, CompletionPercentage: 0}, // open, ignored
	}

	got := executionFrom(nil, sprints, time.Now())
	if len(got) != 1 || got[0].Type != TypeRisk {
		t.Fatalf("insights = %+v, want one risk", got)
	}
}

func TestValidationFrom(t *testing.T) {
	tests := []struct {
		count    int
		wantType string
	}{
		{0, TypeMissingValidation},
		{1, TypeWeakSignal},
		{2, ""},
	}
	for _, tt := range tests {
		got := validationFrom(tt.count)
		if tt.wantType == "" {
			if len(got) != 0 {
				t.Errorf("count %d: insights = %v, want none", tt.count, got)
			}
			continue
		}
		if len(got) != 1 || got[0].Type != tt.wantType {
			t.Errorf("count %d: insights = %+v, want %s", tt.count, got, tt.wantType)
		}
	}
}

func TestInvestorFrom(t *testing.T) {
	ws := &models.Workspace{Name: "Acme", Stage: models.StageMVP}
	tasks := []models.Task{
		{Status: models.TaskDone},
		{Status: models.TaskDone},
		{Status: models.TaskTodo},
	}
	sprints := []models.Sprint{
		{Completed: true, CompletionPercentage: 80},
		{Completed: true, CompletionPercentage: 60},
	}

	got := investorFrom(ws, tasks, sprints, 3)
	if got.ExecutionProgress != "2/3 tasks done (67%). Sprint reliability: 70% average completion." {
		t.Errorf("ExecutionProgress = %q", got.ExecutionProgress)
	}
	if got.ValidationStatus != "3 validation entries (interviews, surveys, experiments) recorded." {
		t.Errorf("ValidationStatus = %q", got.ValidationStatus)
	}
	if got.Roadmap != "Continue weekly sprints; 1 tasks in progress." {
		t.Errorf("Roadmap = %q", got.Roadmap)
	}
}

func TestInvestorFrom_Empty(t *testing.T) {
	ws := &models.Workspace{Name: "Acme", Stage: models.StageIdea}
	got := investorFrom(ws, nil, nil, 0)
	if got.Roadmap != "Define sprints and tasks to build execution history." {
		t.Errorf("Roadmap = %q", got.Roadmap)
	}
	if got.ValidationStatus == "" {
		t.Error("ValidationStatus should recommend validation")
	}
}
