package pitch

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestHeuristicExtract(t *testing.T) {
	slides := []Slide{
		{SlideIndex: 0, Text: "Runway Labs\nExecution tracking for startups"},
		{SlideIndex: 1, Text: "The problem: founders lose track of weekly execution"},
		{SlideIndex: 2, Text: "Our product is a unified sprint and validation workspace"},
		{SlideIndex: 3, Text: "Roadmap\n- Q1 launch private beta\n- Q2 paid pilots with 10 teams\n- Q3 self-serve launch\n- Q4 expand integrations"},
		{SlideIndex: 4, Text: "Traction: 40 interviews, 5 pilot teams in beta"},
	}

	got, err := HeuristicExtractor{}.Extract(context.Background(), slides)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got.StartupName != "Runway Labs" {
		t.Errorf("StartupName = %q, want Runway Labs", got.StartupName)
	}
	if !strings.Contains(got.ProblemStatement, "problem") {
		t.Errorf("ProblemStatement = %q", got.ProblemStatement)
	}
	if got.SolutionDescription == "" {
		t.Error("solution slide not detected")
	}
	if len(got.Milestones) != 3 {
		t.Errorf("milestones = %v, want 3 (capped)", got.Milestones)
	}
	if got.Traction == "" {
		t.Error("traction slide not detected")
	}
	if got.ConfidenceNotes == "" {
		t.Error("confidence notes missing")
	}
}

func TestHeuristicExtract_NeverInvents(t *testing.T) {
	slides := []Slide{{SlideIndex: 0, Text: "Acme"}}

	got, err := HeuristicExtractor{}.Extract(context.Background(), slides)
	if err != nil {
		t.Fatal(err)
	}
	if got.ProblemStatement != "" || got.SolutionDescription != "" || got.Traction != "" {
		t.Errorf("fields invented for empty deck: %+v", got)
	}
	if len(got.Milestones) != 0 {
		t.Errorf("milestones = %v, want none", got.Milestones)
	}
	if !strings.Contains(got.ConfidenceNotes, "not found") {
		t.Errorf("ConfidenceNotes = %q, should list what is missing", got.ConfidenceNotes)
	}
}

func TestHeuristicExtract_LongNameClamped(t *testing.T) {
	slides := []Slide{{SlideIndex: 0, Text: strings.Repeat("A", 200)}}
	got, _ := HeuristicExtractor{}.Extract(context.Background(), slides)
	if len(got.StartupName) != 80 {
		t.Errorf("StartupName length = %d, want 80", len(got.StartupName))
	}
}

func TestParseExtraction(t *testing.T) {
	raw := `{"startupName":"Acme","problemStatement":null,"solutionDescription":"We build X",
		"milestones":["a","b","c","d"],"traction":null,"confidenceNotes":"Name and solution found."}`

	got, err := parseExtraction(raw)
	if err != nil {
		t.Fatalf("parseExtraction: %v", err)
	}
	if got.StartupName != "Acme" || got.ProblemStatement != "" {
		t.Errorf("parsed = %+v", got)
	}
	if len(got.Milestones) != 3 {
		t.Errorf("milestones = %v, want clamped to 3", got.Milestones)
	}
}

func TestParseExtraction_BadJSON(t *testing.T) {
	if _, err := parseExtraction("Sure! Here is the JSON you asked for"); err == nil {
		t.Error("parseExtraction should reject non-JSON output")
	}
}

func TestBuildDraft(t *testing.T) {
	e := &Extraction{
		StartupName:      "Acme",
		Milestones:       []string{"Launch beta"},
		ProblemStatement: "Founders lose track",
	}
	// Thursday 2026-08-27: next Monday is 2026-08-31.
	now := time.Date(2026, 8, 27, 15, 0, 0, 0, time.UTC)

	d := BuildDraft(e, now)
	if d.WorkspaceName != "Acme" {
		t.Errorf("WorkspaceName = %q", d.WorkspaceName)
	}
	if d.SprintStartDate != "2026-08-31" || d.SprintEndDate != "2026-09-04" {
		t.Errorf("sprint window = %s to %s, want 2026-08-31 to 2026-09-04", d.SprintStartDate, d.SprintEndDate)
	}
}

func TestBuildDraft_MondayStays(t *testing.T) {
	now := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC) // a Monday
	d := BuildDraft(&Extraction{}, now)
	if d.SprintStartDate != "2026-08-31" {
		t.Errorf("SprintStartDate = %s, want the same Monday", d.SprintStartDate)
	}
	if d.WorkspaceName != "My Startup" {
		t.Errorf("WorkspaceName = %q, want fallback", d.WorkspaceName)
	}
}
