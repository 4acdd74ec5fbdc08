package user

import (
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/runwayhq/runway/internal/errs"
	"github.com/runwayhq/runway/internal/models"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func TestCreateAndByToken(t *testing.T) {
	db := testDB(t)

	u, err := Create(db, "Founder@Example.com", "Ada")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.Email != "founder@example.com" {
		t.Errorf("Email = %q, want lowercased", u.Email)
	}
	if len(u.APIToken) != 32 {
		t.Errorf("APIToken length = %d, want 32", len(u.APIToken))
	}

	got, err := ByToken(db, u.APIToken)
	if err != nil {
		t.Fatalf("ByToken: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("ByToken resolved %s, want %s", got.ID, u.ID)
	}
}

func TestCreate_InvalidEmail(t *testing.T) {
	db := testDB(t)
	for _, email := range []string{"", "  ", "nope"} {
		if _, err := Create(db, email, "x"); !errors.Is(err, errs.ErrValidation) {
			t.Errorf("Create(%q) = %v, want ErrValidation", email, err)
		}
	}
}

func TestByToken_Unknown(t *testing.T) {
	db := testDB(t)
	if _, err := ByToken(db, "bogus"); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("ByToken = %v, want ErrNotFound", err)
	}
	if _, err := ByToken(db, ""); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("ByToken(empty) = %v, want ErrNotFound", err)
	}
}

func TestGet_NotFound(t *testing.T) {
	db := testDB(t)
	if _, err := Get(db, "usr-missing"); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("Get = %v, want ErrNotFound", err)
	}
}
