package models

import "time"

// Task statuses.
const (
	TaskTodo       = "todo"
	TaskInProgress = "in_progress"
	TaskDone       = "done"
)

// Task is the unit of work. A nil SprintID means backlog.
type Task struct {
	ID          string  `gorm:"primaryKey;size:32"`
	WorkspaceID string  `gorm:"size:32;index"`
	MilestoneID *string `gorm:"size:32;index"`
	SprintID    *string `gorm:"size:32;index"`
	Title       string  `gorm:"not null"`
	OwnerID     *string `gorm:"size:32"`
	Status      string  `gorm:"size:16;default:todo;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
