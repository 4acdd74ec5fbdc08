package milestone

import (
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/runwayhq/runway/internal/errs"
	"github.com/runwayhq/runway/internal/models"
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
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func seedWorkspace(t *testing.T, db *gorm.DB) string {
	t.Helper()
	u := models.User{ID: "usr-founder", Email: "founder@example.com", APIToken: "tok"}
	if err := db.Create(&u).Error; err != nil {
		t.Fatal(err)
	}
	ws, err := workspace.Create(db, workspace.CreateOpts{Name: "Acme", FounderID: "usr-founder"})
	if err != nil {
		t.Fatal(err)
	}
	return ws.ID
}

func TestCreate_AppendsInOrder(t *testing.T) {
	db := testDB(t)
	wsID := seedWorkspace(t, db)

	first, err := Create(db, CreateOpts{WorkspaceID: wsID, Title: "MVP", ActorID: "usr-founder"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	second, err := Create(db, CreateOpts{WorkspaceID: wsID, Title: "Launch", ActorID: "usr-founder"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if first.Order != 0 || second.Order != 1 {
		t.Errorf("orders = %d, %d, want 0, 1", first.Order, second.Order)
	}
	if first.Status != models.MilestonePlanned {
		t.Errorf("Status = %q, want planned", first.Status)
	}

	got, err := ListForWorkspace(db, wsID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != first.ID {
		t.Errorf("list order wrong: %v", got)
	}
}

func TestUpdate_CompletionFlag(t *testing.T) {
	db := testDB(t)
	wsID := seedWorkspace(t, db)
	m, _ := Create(db, CreateOpts{WorkspaceID: wsID, Title: "MVP", ActorID: "usr-founder"})

	status := models.MilestoneCompleted
	_, becameCompleted, err := Update(db, m.ID, "usr-founder", UpdateOpts{Status: &status})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !becameCompleted {
		t.Error("first completion should be flagged")
	}

	// Setting completed again is not a fresh completion.
	_, becameCompleted, err = Update(db, m.ID, "usr-founder", UpdateOpts{Status: &status})
	if err != nil {
		t.Fatal(err)
	}
	if becameCompleted {
		t.Error("repeated completion should not be flagged")
	}
}

func TestUpdate_Validation(t *testing.T) {
	db := testDB(t)
	wsID := seedWorkspace(t, db)
	m, _ := Create(db, CreateOpts{WorkspaceID: wsID, Title: "MVP", ActorID: "usr-founder"})

	bad := "shipped"
	if _, _, err := Update(db, m.ID, "usr-founder", UpdateOpts{Status: &bad}); !errors.Is(err, errs.ErrValidation) {
		t.Errorf("bad status = %v, want ErrValidation", err)
	}
	over := 120
	if _, _, err := Update(db, m.ID, "usr-founder", UpdateOpts{ProgressPercentage: &over}); !errors.Is(err, errs.ErrValidation) {
		t.Errorf("progress 120 = %v, want ErrValidation", err)
	}
	badCat := "Legal"
	if _, _, err := Update(db, m.ID, "usr-founder", UpdateOpts{FundingCategory: &badCat}); !errors.Is(err, errs.ErrValidation) {
		t.Errorf("bad category = %v, want ErrValidation", err)
	}
}

func TestUpdate_FundingFields(t *testing.T) {
	db := testDB(t)
	wsID := seedWorkspace(t, db)
	m, _ := Create(db, CreateOpts{WorkspaceID: wsID, Title: "MVP", ActorID: "usr-founder"})

	cat := models.CategoryEngineering
	min, max := int64(1000), int64(5000)
	updated, _, err := Update(db, m.ID, "usr-founder", UpdateOpts{
		FundingCategory: &cat, SpendRangeMin: &min, SpendRangeMax: &max,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.FundingCategory == nil || *updated.FundingCategory != cat {
		t.Errorf("FundingCategory = %v, want Engineering", updated.FundingCategory)
	}

	// Empty string clears the category.
	clear := ""
	updated, _, err = Update(db, m.ID, "usr-founder", UpdateOpts{FundingCategory: &clear})
	if err != nil {
		t.Fatal(err)
	}
	if updated.FundingCategory != nil {
		t.Error("FundingCategory should be cleared")
	}
}

func TestCreate_FounderOnly(t *testing.T) {
	db := testDB(t)
	wsID := seedWorkspace(t, db)
	u := models.User{ID: "usr-team", Email: "team@example.com", APIToken: "tok2"}
	if err := db.Create(&u).Error; err != nil {
		t.Fatal(err)
	}
	member := models.WorkspaceMember{WorkspaceID: wsID, UserID: "usr-team", Role: models.RoleTeamMember}
	if err := db.Create(&member).Error; err != nil {
		t.Fatal(err)
	}

	if _, err := Create(db, CreateOpts{WorkspaceID: wsID, Title: "X", ActorID: "usr-team"}); !errors.Is(err, errs.ErrUnauthorized) {
		t.Errorf("Create by team member = %v, want ErrUnauthorized", err)
	}
}
