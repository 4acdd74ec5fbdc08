package models

import (
	"strings"
	"testing"
	"time"
)

func TestNewID_Format(t *testing.T) {
	id, err := NewID("spr")
	if err != nil {
		t.Fatalf("NewID: %v", err)
	}
	if !strings.HasPrefix(id, "spr-") {
		t.Errorf("NewID missing prefix: %s", id)
	}
	if len(id) != len("spr-")+12 {
		t.Errorf("NewID length = %d, want %d: %s", len(id), len("spr-")+12, id)
	}
}

func TestNewID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := NewID("task")
		if err != nil {
			t.Fatalf("NewID: %v", err)
		}
		if seen[id] {
			t.Fatalf("duplicate ID generated: %s", id)
		}
		seen[id] = true
	}
}

func TestNewToken_Length(t *testing.T) {
	tok, err := NewToken()
	if err != nil {
		t.Fatalf("NewToken: %v", err)
	}
	if len(tok) != 32 {
		t.Errorf("NewToken length = %d, want 32", len(tok))
	}
}

func TestSprintStats_NilUntilClosed(t *testing.T) {
	s := Sprint{ID: "spr-1", Locked: true}
	if s.Stats() != nil {
		t.Error("Stats() should be nil before close")
	}

	closed := time.Date(2026, 3, 6, 17, 0, 0, 0, time.UTC)
	s.ClosedAt = &closed
	s.TasksCompleted = 2
	s.TasksTotal = 3
	s.CompletionPercentage = 67
	s.BlockedTaskIDs = []string{"task-3"}

	stats := s.Stats()
	if stats == nil {
		t.Fatal("Stats() should be non-nil after close")
	}
	if stats.CompletionPercentage != 67 {
		t.Errorf("CompletionPercentage = %d, want 67", stats.CompletionPercentage)
	}
	if len(stats.BlockedTaskIDs) != 1 || stats.BlockedTaskIDs[0] != "task-3" {
		t.Errorf("BlockedTaskIDs = %v, want [task-3]", stats.BlockedTaskIDs)
	}
	if !stats.ClosedAt.Equal(closed) {
		t.Errorf("ClosedAt = %v, want %v", stats.ClosedAt, closed)
	}
}

func TestSprintLabel(t *testing.T) {
	s := Sprint{WeekStartDate: "2026-03-02", WeekEndDate: "2026-03-06"}
	want := "2026-03-02 → 2026-03-06"
	if got := s.Label(); got != want {
		t.Errorf("Label() = %q, want %q", got, want)
	}
}
