package validation

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
		&models.ValidationEntry{},
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

func TestLog(t *testing.T) {
	db := testDB(t)
	wsID := seedWorkspace(t, db)

	e, err := Log(db, LogOpts{
		WorkspaceID: wsID,
		Type:        models.ValidationInterview,
		Summary:     "Spoke to 5 prospects",
		ActorID:     "usr-founder",
	})
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	if e.Origin != models.OriginInternal {
		t.Errorf("Origin = %q, want internal", e.Origin)
	}
	if e.CreatedBy == nil || *e.CreatedBy != "usr-founder" {
		t.Error("internal entry should carry its author")
	}
}

func TestLog_Guards(t *testing.T) {
	db := testDB(t)
	wsID := seedWorkspace(t, db)

	tests := []struct {
		name string
		opts LogOpts
		want error
	}{
		{"bad type", LogOpts{WorkspaceID: wsID, Type: "poll", Summary: "x", ActorID: "usr-founder"}, errs.ErrValidation},
		{"no summary", LogOpts{WorkspaceID: wsID, Type: models.ValidationSurvey, ActorID: "usr-founder"}, errs.ErrValidation},
		{"non-member", LogOpts{WorkspaceID: wsID, Type: models.ValidationSurvey, Summary: "x", ActorID: "usr-stranger"}, errs.ErrUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Log(db, tt.opts); !errors.Is(err, tt.want) {
				t.Errorf("Log = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSubmitExternal(t *testing.T) {
	db := testDB(t)
	wsID := seedWorkspace(t, db)

	e, err := SubmitExternal(db, ExternalOpts{
		WorkspaceID:     wsID,
		SourceType:      models.SourceCustomer,
		FeedbackText:    "Would pay for this today",
		ConfidenceScore: 5,
	})
	if err != nil {
		t.Fatalf("SubmitExternal: %v", err)
	}
	if e.Origin != models.OriginExternalLink {
		t.Errorf("Origin = %q, want external_link", e.Origin)
	}
	if e.CreatedBy != nil {
		t.Error("external entry should be anonymous")
	}
	if e.ConfidenceScore == nil || *e.ConfidenceScore != 5 {
		t.Error("confidence score not stored")
	}
}

func TestSubmitExternal_Guards(t *testing.T) {
	db := testDB(t)
	wsID := seedWorkspace(t, db)

	if _, err := SubmitExternal(db, ExternalOpts{WorkspaceID: "ws-missing", SourceType: models.SourceOther, FeedbackText: "x"}); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("unknown workspace = %v, want ErrNotFound", err)
	}
	if _, err := SubmitExternal(db, ExternalOpts{WorkspaceID: wsID, SourceType: "bot", FeedbackText: "x"}); !errors.Is(err, errs.ErrValidation) {
		t.Errorf("bad source = %v, want ErrValidation", err)
	}
	if _, err := SubmitExternal(db, ExternalOpts{WorkspaceID: wsID, SourceType: models.SourceOther, FeedbackText: "x", ConfidenceScore: 9}); !errors.Is(err, errs.ErrValidation) {
		t.Errorf("confidence 9 = %v, want ErrValidation", err)
	}
}

func TestList_NewestFirst(t *testing.T) {
	db := testDB(t)
	wsID := seedWorkspace(t, db)

	for i := 0; i < 3; i++ {
		if _, err := Log(db, LogOpts{WorkspaceID: wsID, Type: models.ValidationExperiment, Summary: "run", ActorID: "usr-founder"}); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := List(db, wsID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("List returned %d entries, want 3", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].CreatedAt.After(entries[i-1].CreatedAt) {
			t.Fatal("entries not ordered newest-first")
		}
	}
}
