package models

import "time"

// SprintGoal is a committed goal line on a sprint. Goals are frozen at
// lock time; their IDs feed the commitment hash.
type SprintGoal struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Sprint is a time-boxed execution window with a three-state lifecycle:
// open (Locked=false) → locked → completed. Completed sprints and their
// completion stats are never mutated again.
type Sprint struct {
	ID            string       `gorm:"primaryKey;size:32"`
	WorkspaceID   string       `gorm:"size:32;index"`
	WeekStartDate string       `gorm:"size:10"` // ISO date, not a timestamp
	WeekEndDate   string       `gorm:"size:10"`
	Goals         []SprintGoal `gorm:"serializer:json;type:json"`
	TaskIDs       []string     `gorm:"serializer:json;type:json"`
	Locked        bool         `gorm:"default:false"`
	Completed     bool         `gorm:"default:false;index"`
	CreatedBy     string       `gorm:"size:32"`
	CreatedAt     time.Time

	// Completion stats, written exactly once at close. ClosedAt is the
	// null marker: nil until the sprint is closed.
	TasksCompleted       int      `gorm:"default:0"`
	TasksTotal           int      `gorm:"default:0"`
	CompletionPercentage int      `gorm:"default:0"`
	BlockedTaskIDs       []string `gorm:"serializer:json;type:json"`
	MissedGoalIDs        []string `gorm:"serializer:json;type:json"`
	ClosedAt             *time.Time

	// Optional capital-to-execution mapping.
	FundingCategory     *string `gorm:"size:16"`
	EstimatedSpendRange *int64
}

// CompletionStats is the read view of a closed sprint's outcome.
type CompletionStats struct {
	TasksCompleted       int       `json:"tasksCompleted"`
	TasksTotal           int       `json:"tasksTotal"`
	CompletionPercentage int       `json:"completionPercentage"`
	BlockedTaskIDs       []string  `json:"blockedTaskIds"`
	MissedGoalIDs        []string  `json:"missedGoalIds"`
	ClosedAt             time.Time `json:"closedAt"`
}

// Stats returns the completion stats, or nil if the sprint is not closed.
func (s *Sprint) Stats() *CompletionStats {
	if s.ClosedAt == nil {
		return nil
	}
	return &CompletionStats{
		TasksCompleted:       s.TasksCompleted,
		TasksTotal:           s.TasksTotal,
		CompletionPercentage: s.CompletionPercentage,
		BlockedTaskIDs:       s.BlockedTaskIDs,
		MissedGoalIDs:        s.MissedGoalIDs,
		ClosedAt:             *s.ClosedAt,
	}
}

// Label renders the sprint's human-readable date range, used in chat
// notifications and ledger payload summaries.
func (s *Sprint) Label() string {
	return s.WeekStartDate + " → " + s.WeekEndDate
}
