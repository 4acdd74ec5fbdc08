// Package pitch extracts structure from pitch deck text during
// onboarding. The contract is extraction only: never invent, never
// score; missing fields stay empty. Two extractors share that contract:
// a deterministic heuristic one and an LLM-backed one used when an API
// key is configured.
package pitch

import (
	"context"
	"regexp"
	"strings"
	"time"
)

// Slide is one page of deck text, in deck order.
type Slide struct {
	SlideIndex int    `json:"slideIndex"`
	Text       string `json:"text"`
}

// Extraction is the structured result. Empty strings mean the deck did
// not state the field.
type Extraction struct {
	StartupName         string   `json:"startupName"`
	ProblemStatement    string   `json:"problemStatement"`
	SolutionDescription string   `json:"solutionDescription"`
	Milestones          []string `json:"milestones"` // at most 3
	Traction            string   `json:"traction"`
	ConfidenceNotes     string   `json:"confidenceNotes"`
}

// Extractor turns slide text into an Extraction.
type Extractor interface {
	Extract(ctx context.Context, slides []Slide) (*Extraction, error)
}

// Draft is a pre-filled workspace setup produced from an extraction.
type Draft struct {
	WorkspaceName   string   `json:"workspaceName"`
	Problem         string   `json:"problem"`
	Solution        string   `json:"solution"`
	MilestoneTitles []string `json:"milestoneTitles"`
	SprintStartDate string   `json:"sprintStartDate"` // next Monday
	SprintEndDate   string   `json:"sprintEndDate"`   // that Friday
}

const maxMilestones = 3

var (
	problemRe  = regexp.MustCompile(`(?i)problem|pain|challenge|issue`)
	solutionRe = regexp.MustCompile(`(?i)solution|product|we build|our (product|app)`)
	roadmapRe  = regexp.MustCompile(`(?i)roadmap|timeline|milestone|phase|quarter|q1|q2|launch`)
	tractionRe = regexp.MustCompile(`(?i)traction|users|revenue|pilot|interview|validation|beta`)
	bulletRe   = regexp.MustCompile(`(?i)^[-*•\d.]|q[1-4]|phase|launch|milestone`)
)

// HeuristicExtractor derives structure from slide order and keyword
// matches. Deterministic; used when no extraction API key is set.
type HeuristicExtractor struct{}

func (HeuristicExtractor) Extract(_ context.Context, slides []Slide) (*Extraction, error) {
	out := &Extraction{Milestones: []string{}}

	if len(slides) > 0 {
		for _, line := range strings.Split(slides[0].Text, "\n") {
			line = strings.TrimSpace(line)
			if line != "" {
				out.StartupName = clamp(line, 80)
				break
			}
		}
	}

	var candidates []string
	for _, s := range slides {
		t := s.Text
		if t == "" {
			continue
		}
		if out.ProblemStatement == "" && problemRe.MatchString(t) {
			out.ProblemStatement = clamp(t, 300)
		}
		if out.SolutionDescription == "" && solutionRe.MatchString(t) {
			out.SolutionDescription = clamp(t, 300)
		}
		if roadmapRe.MatchString(t) {
			for _, line := range strings.Split(t, "\n") {
				line = strings.TrimSpace(line)
				if len(line) > 10 && len(line) < 120 && bulletRe.MatchString(line) {
					candidates = append(candidates, line)
				}
			}
		}
		if out.Traction == "" && tractionRe.MatchString(t) {
			out.Traction = clamp(t, 200)
		}
	}

	if len(candidates) > maxMilestones {
		candidates = candidates[:maxMilestones]
	}
	out.Milestones = candidates
	if out.Milestones == nil {
		out.Milestones = []string{}
	}
	out.ConfidenceNotes = confidenceNotes(out)
	return out, nil
}

// confidenceNotes summarizes what was found and what was missing.
func confidenceNotes(e *Extraction) string {
	var parts []string
	if e.StartupName != "" {
		parts = append(parts, "Startup name from first slide.")
	} else {
		parts = append(parts, "Startup name not detected.")
	}
	if e.ProblemStatement != "" {
		parts = append(parts, "Problem section found.")
	} else {
		parts = append(parts, "Problem section not found.")
	}
	if e.SolutionDescription != "" {
		parts = append(parts, "Solution section found.")
	} else {
		parts = append(parts, "Solution section not found.")
	}
	if len(e.Milestones) > 0 {
		parts = append(parts, "Roadmap milestones extracted.")
	} else {
		parts = append(parts, "No clear roadmap or milestones.")
	}
	if e.Traction != "" {
		parts = append(parts, "Traction text found.")
	} else {
		parts = append(parts, "Traction not found.")
	}
	return strings.Join(parts, " ")
}

// BuildDraft turns an extraction into a workspace draft with the next
// Monday-to-Friday window as the suggested first sprint.
func BuildDraft(e *Extraction, now time.Time) *Draft {
	name := e.StartupName
	if name == "" {
		name = "My Startup"
	}

	monday := nextMonday(now)
	friday := monday.AddDate(0, 0, 4)

	return &Draft{
		WorkspaceName:   name,
		Problem:         e.ProblemStatement,
		Solution:        e.SolutionDescription,
		MilestoneTitles: e.Milestones,
		SprintStartDate: monday.Format("2006-01-02"),
		SprintEndDate:   friday.Format("2006-01-02"),
	}
}

// nextMonday returns the first Monday strictly after now's date, except
// that a Monday stays itself.
func nextMonday(now time.Time) time.Time {
	d := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	offset := (int(time.Monday) - int(d.Weekday()) + 7) % 7
	return d.AddDate(0, 0, offset)
}

// clamp truncates s to at most n bytes of trimmed text.
func clamp(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) > n {
		return s[:n]
	}
	return s
}
