// Package broadcast fans execution events out to chat channels.
// Dispatch is fire-and-forget: lifecycle transitions never fail because
// a notification could not be delivered.
package broadcast

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"
)

// Event types.
const (
	EventSprintLocked       = "sprint_locked"
	EventSprintClosed       = "sprint_closed"
	EventMilestoneCompleted = "milestone_completed"
	EventWeeklyDigest       = "weekly_digest"
)

// postTimeout bounds a single poster delivery attempt.
const postTimeout = 10 * time.Second

// Event is an execution event worth announcing. Only the fields for the
// event's type are set.
type Event struct {
	Type        string
	WorkspaceID string

	// sprint_locked
	SprintLabel string
	SprintGoals []string

	// sprint_closed (also uses SprintLabel)
	TasksCompleted      int
	TasksTotal          int
	MilestonesDelivered int
	ValidationsLogged   int

	// milestone_completed
	MilestoneTitle          string
	SprintLabelForMilestone string

	// weekly_digest: pre-rendered report text
	DigestText string
}

// Poster delivers one event to one destination.
type Poster interface {
	Name() string
	Post(ctx context.Context, e Event) error
}

// Dispatcher fans events out to every registered poster.
type Dispatcher struct {
	mu      sync.Mutex
	posters []Poster
}

// NewDispatcher creates a dispatcher over the given posters.
func NewDispatcher(posters ...Poster) *Dispatcher {
	return &Dispatcher{posters: posters}
}

// Register adds a poster.
func (d *Dispatcher) Register(p Poster) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.posters = append(d.posters, p)
}

// Dispatch delivers the event to all posters in the background. Failures
// are logged, never returned: callers have already committed the state
// transition the event describes.
func (d *Dispatcher) Dispatch(e Event) {
	d.mu.Lock()
	posters := make([]Poster, len(d.posters))
	copy(posters, d.posters)
	d.mu.Unlock()

	for _, p := range posters {
		go func(p Poster) {
			ctx, cancel := context.WithTimeout(context.Background(), postTimeout)
			defer cancel()
			if err := p.Post(ctx, e); err != nil {
				log.Printf("broadcast: %s: %s event for workspace %s: %v",
					p.Name(), e.Type, e.WorkspaceID, err)
			}
		}(p)
	}
}

// Message renders the event's chat text.
func Message(e Event) string {
	switch e.Type {
	case EventSprintLocked:
		label := e.SprintLabel
		if label == "" {
			label = "Sprint"
		}
		goalLines := "• (no goals set)"
		if len(e.SprintGoals) > 0 {
			lines := make([]string, len(e.SprintGoals))
			for i, g := range e.SprintGoals {
				lines[i] = "• " + g
			}
			goalLines = strings.Join(lines, "\n")
		}
		return fmt.Sprintf("🚀 Sprint locked: %s\nGoals committed:\n%s", label, goalLines)

	case EventSprintClosed:
		label := e.SprintLabel
		if label == "" {
			label = "Sprint"
		}
		return fmt.Sprintf("✅ Sprint closed: %s\n• Tasks completed: %d/%d\n• Milestones delivered: %d\n• Validations logged: %d",
			label, e.TasksCompleted, e.TasksTotal, e.MilestonesDelivered, e.ValidationsLogged)

	case EventMilestoneCompleted:
		title := e.MilestoneTitle
		if title == "" {
			title = "Milestone"
		}
		msg := "🎯 Milestone completed: " + title
		if e.SprintLabelForMilestone != "" {
			msg += "\nSprint: " + e.SprintLabelForMilestone
		}
		return msg

	case EventWeeklyDigest:
		return e.DigestText
	}
	return ""
}

// Color returns the accent color used by attachment/embed renderings.
func Color(e Event) string {
	switch e.Type {
	case EventSprintLocked:
		return "#439fe0"
	case EventSprintClosed:
		return "#36a64f"
	case EventMilestoneCompleted:
		return "#9b59b6"
	case EventWeeklyDigest:
		return "#3aa3e3"
	}
	return ""
}
