package sprint

import (
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/runwayhq/runway/internal/errs"
	"github.com/runwayhq/runway/internal/ledger"
	"github.com/runwayhq/runway/internal/models"
	"github.com/runwayhq/runway/internal/task"
	"github.com/runwayhq/runway/internal/workspace"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Workspace{},
		&models.WorkspaceMember{},
		&models.Milestone{},
		&models.Task{},
		&models.Sprint{},
		&models.LedgerEntry{},
		&models.ValidationEntry{},
		&models.AuditLogEntry{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func seedWorkspace(t *testing.T, db *gorm.DB) string {
	t.Helper()
	for _, id := range []string{"usr-founder", "usr-team"} {
		u := models.User{ID: id, Email: id + "@example.com", APIToken: "tok-" + id}
		if err := db.Create(&u).Error; err != nil {
			t.Fatalf("seed user %s: %v", id, err)
		}
	}
	ws, err := workspace.Create(db, workspace.CreateOpts{Name: "Acme", FounderID: "usr-founder"})
	if err != nil {
		t.Fatalf("seed workspace: %v", err)
	}
	m := models.WorkspaceMember{WorkspaceID: ws.ID, UserID: "usr-team", Role: models.RoleTeamMember}
	if err := db.Create(&m).Error; err != nil {
		t.Fatal(err)
	}
	return ws.ID
}

func seedTasks(t *testing.T, db *gorm.DB, wsID string, n int) []string {
	t.Helper()
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		tk, err := task.Create(db, task.CreateOpts{WorkspaceID: wsID, Title: "Task", ActorID: "usr-founder"})
		if err != nil {
			t.Fatalf("seed task: %v", err)
		}
		ids[i] = tk.ID
	}
	return ids
}

func mustCreate(t *testing.T, db *gorm.DB, wsID string, taskIDs []string) *models.Sprint {
	t.Helper()
	s, err := Create(db, CreateOpts{
		WorkspaceID:   wsID,
		WeekStartDate: "2026-08-24",
		WeekEndDate:   "2026-08-28",
		Goals:         []models.SprintGoal{{Text: "Ship it"}},
		TaskIDs:       taskIDs,
		ActorID:       "usr-founder",
	})
	if err != nil {
		t.Fatalf("Create sprint: %v", err)
	}
	return s
}

func TestCreate(t *testing.T) {
	db := testDB(t)
	wsID := seedWorkspace(t, db)
	taskIDs := seedTasks(t, db, wsID, 2)

	s := mustCreate(t, db, wsID, taskIDs)
	if s.Locked || s.Completed {
		t.Error("new sprint should be open")
	}
	if s.Goals[0].ID == "" {
		t.Error("goal should be assigned an ID")
	}
	if s.Stats() != nil {
		t.Error("Stats should be nil before close")
	}

	// Tasks now point at the sprint.
	tasks, err := task.ListForSprint(db, s.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 2 {
		t.Errorf("sprint has %d tasks, want 2", len(tasks))
	}
}

func TestCreate_Guards(t *testing.T) {
	db := testDB(t)
	wsID := seedWorkspace(t, db)
	taskIDs := seedTasks(t, db, wsID, 1)

	tests := []struct {
		name string
		opts CreateOpts
		want error
	}{
		{"no tasks", CreateOpts{WorkspaceID: wsID, WeekStartDate: "2026-08-24", WeekEndDate: "2026-08-28", ActorID: "usr-founder"}, errs.ErrValidation},
		{"bad date", CreateOpts{WorkspaceID: wsID, WeekStartDate: "24/08/2026", WeekEndDate: "2026-08-28", TaskIDs: taskIDs, ActorID: "usr-founder"}, errs.ErrValidation},
		{"end before start", CreateOpts{WorkspaceID: wsID, WeekStartDate: "2026-08-28", WeekEndDate: "2026-08-24", TaskIDs: taskIDs, ActorID: "usr-founder"}, errs.ErrValidation},
		{"duplicate tasks", CreateOpts{WorkspaceID: wsID, WeekStartDate: "2026-08-24", WeekEndDate: "2026-08-28", TaskIDs: []string{taskIDs[0], taskIDs[0]}, ActorID: "usr-founder"}, errs.ErrValidation},
		{"team member", CreateOpts{WorkspaceID: wsID, WeekStartDate: "2026-08-24", WeekEndDate: "2026-08-28", TaskIDs: taskIDs, ActorID: "usr-team"}, errs.ErrUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Create(db, tt.opts); !errors.Is(err, tt.want) {
				t.Errorf("Create = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCreate_UnknownTaskRollsBack(t *testing.T) {
	db := testDB(t)
	wsID := seedWorkspace(t, db)
	taskIDs := seedTasks(t, db, wsID, 1)

	_, err := Create(db, CreateOpts{
		WorkspaceID:   wsID,
		WeekStartDate: "2026-08-24",
		WeekEndDate:   "2026-08-28",
		TaskIDs:       append(taskIDs, "task-missing"),
		ActorID:       "usr-founder",
	})
	if !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("Create with unknown task = %v, want ErrNotFound", err)
	}

	// Nothing persisted and no task was assigned.
	var count int64
	db.Model(&models.Sprint{}).Count(&count)
	if count != 0 {
		t.Errorf("sprint count = %d, want 0", count)
	}
	got, _ := task.Get(db, taskIDs[0])
	if got.SprintID != nil {
		t.Error("task should remain in the backlog after rollback")
	}
}

func TestLock(t *testing.T) {
	db := testDB(t)
	wsID := seedWorkspace(t, db)
	s := mustCreate(t, db, wsID, seedTasks(t, db, wsID, 2))

	locked, err := Lock(db, s.ID, "usr-founder")
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	if !locked.Locked {
		t.Error("sprint should be locked")
	}

	// Exactly one commitment entry.
	n, err := ledger.CountForSprint(db, s.ID, models.LedgerCommitment)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("commitment entries = %d, want 1", n)
	}

	// Re-lock rejected, no second entry.
	if _, err := Lock(db, s.ID, "usr-founder"); !errors.Is(err, errs.ErrAlreadyLocked) {
		t.Errorf("second Lock = %v, want ErrAlreadyLocked", err)
	}
	n, _ = ledger.CountForSprint(db, s.ID, models.LedgerCommitment)
	if n != 1 {
		t.Errorf("commitment entries after re-lock = %d, want 1", n)
	}
}

func TestLock_NonFounder(t *testing.T) {
	db := testDB(t)
	wsID := seedWorkspace(t, db)
	s := mustCreate(t, db, wsID, seedTasks(t, db, wsID, 1))

	if _, err := Lock(db, s.ID, "usr-team"); !errors.Is(err, errs.ErrUnauthorized) {
		t.Errorf("Lock by team member = %v, want ErrUnauthorized", err)
	}
	got, _ := Get(db, s.ID)
	if got.Locked {
		t.Error("rejected lock must not change state")
	}
	n, _ := ledger.CountForSprint(db, s.ID, models.LedgerCommitment)
	if n != 0 {
		t.Errorf("commitment entries = %d, want 0", n)
	}
}

// Three committed tasks, two done at close: 67% completion, the third
// task reported blocked, one commitment and one completion entry.
func TestClose_Stats(t *testing.T) {
	db := testDB(t)
	wsID := seedWorkspace(t, db)
	taskIDs := seedTasks(t, db, wsID, 3)
	s := mustCreate(t, db, wsID, taskIDs)

	if _, err := Lock(db, s.ID, "usr-founder"); err != nil {
		t.Fatal(err)
	}
	for _, id := range taskIDs[:2] {
		if err := task.UpdateStatus(db, id, "usr-team", models.TaskDone); err != nil {
			t.Fatal(err)
		}
	}

	closed, err := Close(db, s.ID, "usr-founder")
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	stats := closed.Stats()
	if stats == nil {
		t.Fatal("Stats should be set after close")
	}
	if stats.TasksTotal != 3 || stats.TasksCompleted != 2 {
		t.Errorf("tasks = %d/%d, want 2/3", stats.TasksCompleted, stats.TasksTotal)
	}
	if stats.CompletionPercentage != 67 {
		t.Errorf("completion = %d%%, want 67%%", stats.CompletionPercentage)
	}
	if len(stats.BlockedTaskIDs) != 1 || stats.BlockedTaskIDs[0] != taskIDs[2] {
		t.Errorf("blocked = %v, want [%s]", stats.BlockedTaskIDs, taskIDs[2])
	}

	for _, entryType := range []string{models.LedgerCommitment, models.LedgerCompletion} {
		n, err := ledger.CountForSprint(db, s.ID, entryType)
		if err != nil {
			t.Fatal(err)
		}
		if n != 1 {
			t.Errorf("%s entries = %d, want 1", entryType, n)
		}
	}
	if err := ledger.Verify(db, wsID); err != nil {
		t.Errorf("ledger chain: %v", err)
	}
}

func TestClose_RequiresLock(t *testing.T) {
	db := testDB(t)
	wsID := seedWorkspace(t, db)
	s := mustCreate(t, db, wsID, seedTasks(t, db, wsID, 1))

	if _, err := Close(db, s.ID, "usr-founder"); !errors.Is(err, errs.ErrNotLocked) {
		t.Errorf("Close of open sprint = %v, want ErrNotLocked", err)
	}
}

func TestClose_Twice(t *testing.T) {
	db := testDB(t)
	wsID := seedWorkspace(t, db)
	s := mustCreate(t, db, wsID, seedTasks(t, db, wsID, 1))
	if _, err := Lock(db, s.ID, "usr-founder"); err != nil {
		t.Fatal(err)
	}
	if _, err := Close(db, s.ID, "usr-founder"); err != nil {
		t.Fatal(err)
	}

	if _, err := Close(db, s.ID, "usr-founder"); !errors.Is(err, errs.ErrCompleted) {
		t.Errorf("second Close = %v, want ErrCompleted", err)
	}
	n, _ := ledger.CountForSprint(db, s.ID, models.LedgerCompletion)
	if n != 1 {
		t.Errorf("completion entries = %d, want 1", n)
	}
}

func TestClose_EmptySprint(t *testing.T) {
	db := testDB(t)
	wsID := seedWorkspace(t, db)
	taskIDs := seedTasks(t, db, wsID, 1)
	s := mustCreate(t, db, wsID, taskIDs)
	if _, err := Lock(db, s.ID, "usr-founder"); err != nil {
		t.Fatal(err)
	}

	// Detach the task so the sprint closes with zero tasks: 0%, no div by zero.
	if err := db.Model(&models.Task{}).Where("id = ?", taskIDs[0]).
		Update("sprint_id", nil).Error; err != nil {
		t.Fatal(err)
	}

	closed, err := Close(db, s.ID, "usr-founder")
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	if closed.Stats().CompletionPercentage != 0 {
		t.Errorf("completion = %d%%, want 0%%", closed.Stats().CompletionPercentage)
	}
}

func TestClose_FundedSprintAudited(t *testing.T) {
	db := testDB(t)
	wsID := seedWorkspace(t, db)
	s := mustCreate(t, db, wsID, seedTasks(t, db, wsID, 1))
	category := models.CategoryEngineering
	if err := db.Model(&models.Sprint{}).Where("id = ?", s.ID).
		Update("funding_category", category).Error; err != nil {
		t.Fatal(err)
	}
	if _, err := Lock(db, s.ID, "usr-founder"); err != nil {
		t.Fatal(err)
	}
	if _, err := Close(db, s.ID, "usr-founder"); err != nil {
		t.Fatal(err)
	}

	var count int64
	db.Model(&models.AuditLogEntry{}).
		Where("workspace_id = ? AND type = ?", wsID, models.AuditFundedSprintComplete).
		Count(&count)
	if count != 1 {
		t.Errorf("funded-sprint audit entries = %d, want 1", count)
	}
}

func TestDelete(t *testing.T) {
	db := testDB(t)
	wsID := seedWorkspace(t, db)
	taskIDs := seedTasks(t, db, wsID, 1)
	s := mustCreate(t, db, wsID, taskIDs)

	if err := Delete(db, s.ID, "usr-founder"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := Get(db, s.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}
	got, _ := task.Get(db, taskIDs[0])
	if got.SprintID != nil {
		t.Error("task should return to the backlog after delete")
	}
}

func TestDelete_CompletedForbidden(t *testing.T) {
	db := testDB(t)
	wsID := seedWorkspace(t, db)
	s := mustCreate(t, db, wsID, seedTasks(t, db, wsID, 1))
	if _, err := Lock(db, s.ID, "usr-founder"); err != nil {
		t.Fatal(err)
	}
	if _, err := Close(db, s.ID, "usr-founder"); err != nil {
		t.Fatal(err)
	}

	if err := Delete(db, s.ID, "usr-founder"); !errors.Is(err, errs.ErrCompleted) {
		t.Errorf("Delete of completed sprint = %v, want ErrCompleted", err)
	}
}

func TestListForWorkspace(t *testing.T) {
	db := testDB(t)
	wsID := seedWorkspace(t, db)
	taskIDs := seedTasks(t, db, wsID, 1)
	mustCreate(t, db, wsID, taskIDs)

	got, err := ListForWorkspace(db, wsID)
	if err != nil {
		t.Fatalf("ListForWorkspace: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("ListForWorkspace returned %d sprints, want 1", len(got))
	}
}
