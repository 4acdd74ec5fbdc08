package ledger

import (
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

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
	if err := db.AutoMigrate(&models.LedgerEntry{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func TestCommitmentHash_Deterministic(t *testing.T) {
	goals := []string{"goal-1", "goal-2"}
	tasks := []string{"task-1", "task-2", "task-3"}

	a := CommitmentHash("spr-1", goals, tasks)
	b := CommitmentHash("spr-1", goals, tasks)
	if a != b {
		t.Errorf("same inputs produced different hashes: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(a))
	}
}

func TestCommitmentHash_SensitiveToInputs(t *testing.T) {
	base := CommitmentHash("spr-1", nil, []string{"task-1"})

	tests := []struct {
		name string
		hash string
	}{
		{"different sprint", CommitmentHash("spr-2", nil, []string{"task-1"})},
		{"different tasks", CommitmentHash("spr-1", nil, []string{"task-2"})},
		{"task order", CommitmentHash("spr-1", nil, []string{"task-1", "task-0"})},
		{"goal added", CommitmentHash("spr-1", []string{"goal-1"}, []string{"task-1"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.hash == base {
				t.Error("hash should differ from base")
			}
		})
	}
}

func TestCompletionHash_Deterministic(t *testing.T) {
	a := CompletionHash("spr-1", 67, 2, 3, []string{"task-3"}, nil)
	b := CompletionHash("spr-1", 67, 2, 3, []string{"task-3"}, nil)
	if a != b {
		t.Errorf("same inputs produced different hashes: %s vs %s", a, b)
	}

	c := CompletionHash("spr-1", 66, 2, 3, []string{"task-3"}, nil)
	if a == c {
		t.Error("different percentage should change the hash")
	}
}

func TestHashKinds_Disjoint(t *testing.T) {
	// A commitment and completion over overlapping fields must not collide.
	a := CommitmentHash("spr-1", nil, nil)
	b := CompletionHash("spr-1", 0, 0, 0, nil, nil)
	if a == b {
		t.Error("commitment and completion hashes should differ")
	}
}

func TestAppend_Chains(t *testing.T) {
	db := testDB(t)

	first, err := Append(db, "ws-1", "spr-1", models.LedgerCommitment, CommitmentHash("spr-1", nil, []string{"task-1"}), "locked")
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if first.PrevHash != "" {
		t.Errorf("first entry PrevHash = %q, want empty", first.PrevHash)
	}

	second, err := Append(db, "ws-1", "spr-1", models.LedgerCompletion, CompletionHash("spr-1", 100, 1, 1, nil, nil), "closed")
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if second.PrevHash != first.Hash {
		t.Errorf("second entry PrevHash = %q, want %q", second.PrevHash, first.Hash)
	}

	// Chains are per workspace.
	other, err := Append(db, "ws-2", "spr-9", models.LedgerCommitment, CommitmentHash("spr-9", nil, nil), "locked")
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if other.PrevHash != "" {
		t.Errorf("other workspace PrevHash = %q, want empty", other.PrevHash)
	}
}

func TestAppend_RejectsUnknownType(t *testing.T) {
	db := testDB(t)
	if _, err := Append(db, "ws-1", "spr-1", "deletion", "abc", ""); err == nil {
		t.Error("Append should reject unknown entry types")
	}
}

func TestList_NewestFirstCapped(t *testing.T) {
	db := testDB(t)
	for i := 0; i < 60; i++ {
		if _, err := Append(db, "ws-1", "spr-1", models.LedgerCommitment, CommitmentHash("spr-1", nil, nil), ""); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := List(db, "ws-1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 50 {
		t.Errorf("List returned %d entries, want cap of 50", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].Timestamp.After(entries[i-1].Timestamp) {
			t.Fatal("entries not ordered newest-first")
		}
	}
}

func TestVerify(t *testing.T) {
	db := testDB(t)
	if _, err := Append(db, "ws-1", "spr-1", models.LedgerCommitment, CommitmentHash("spr-1", nil, nil), ""); err != nil {
		t.Fatal(err)
	}
	if _, err := Append(db, "ws-1", "spr-1", models.LedgerCompletion, CompletionHash("spr-1", 0, 0, 0, nil, nil), ""); err != nil {
		t.Fatal(err)
	}

	if err := Verify(db, "ws-1"); err != nil {
		t.Errorf("Verify on intact chain: %v", err)
	}

	// Tamper with the first entry's hash; the chain must break.
	if err := db.Model(&models.LedgerEntry{}).
		Where("workspace_id = ? AND type = ?", "ws-1", models.LedgerCommitment).
		Update("hash", strings.Repeat("0", 64)).Error; err != nil {
		t.Fatal(err)
	}
	if err := Verify(db, "ws-1"); err == nil {
		t.Error("Verify should detect a tampered chain")
	}
}

func TestCountForSprint(t *testing.T) {
	db := testDB(t)
	if _, err := Append(db, "ws-1", "spr-1", models.LedgerCommitment, "h1", ""); err != nil {
		t.Fatal(err)
	}
	n, err := CountForSprint(db, "spr-1", models.LedgerCommitment)
	if err != nil {
		t.Fatalf("CountForSprint: %v", err)
	}
	if n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
}
