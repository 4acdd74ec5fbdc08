// Package digest computes and broadcasts a weekly execution report per
// workspace on a cron schedule.
package digest

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/runwayhq/runway/internal/broadcast"
	"github.com/runwayhq/runway/internal/models"
)

// cronParser uses standard 5-field cron expressions (minute, hour, dom,
// month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// WeeklyReport holds one workspace's metrics over the last 7 days.
type WeeklyReport struct {
	WorkspaceID   string
	WorkspaceName string
	PeriodStart   time.Time
	PeriodEnd     time.Time

	SprintsClosed     int
	AvgCompletion     int
	TasksDone         int
	ValidationsLogged int
}

// BuildWeekly computes the report for one workspace over the 7 days
// ending at now. Returns nil when there was no activity, so idle
// workspaces get no digest.
func BuildWeekly(db *gorm.DB, workspaceID string, now time.Time) (*WeeklyReport, error) {
	since := now.Add(-7 * 24 * time.Hour)

	var ws models.Workspace
	if err := db.First(&ws, "id = ?", workspaceID).Error; err != nil {
		return nil, fmt.Errorf("digest: workspace %s: %w", workspaceID, err)
	}

	report := &WeeklyReport{
		WorkspaceID:   workspaceID,
		WorkspaceName: ws.Name,
		PeriodStart:   since,
		PeriodEnd:     now,
	}

	var closed []models.Sprint
	if err := db.Where("workspace_id = ? AND completed = ? AND closed_at >= ? AND closed_at < ?",
		workspaceID, true, since, now).Find(&closed).Error; err != nil {
		return nil, fmt.Errorf("digest: closed sprints: %w", err)
	}
	report.SprintsClosed = len(closed)
	if len(closed) > 0 {
		sum := 0
		for _, s := range closed {
			sum += s.CompletionPercentage
		}
		report.AvgCompletion = int(math.Round(float64(sum) / float64(len(closed))))
	}

	var tasksDone int64
	if err := db.Model(&models.Task{}).
		Where("workspace_id = ? AND status = ? AND updated_at >= ? AND updated_at < ?",
			workspaceID, models.TaskDone, since, now).
		Count(&tasksDone).Error; err != nil {
		return nil, fmt.Errorf("digest: done tasks: %w", err)
	}
	report.TasksDone = int(tasksDone)

	var validations int64
	if err := db.Model(&models.ValidationEntry{}).
		Where("workspace_id = ? AND created_at >= ? AND created_at < ?", workspaceID, since, now).
		Count(&validations).Error; err != nil {
		return nil, fmt.Errorf("digest: validations: %w", err)
	}
	report.ValidationsLogged = int(validations)

	if report.SprintsClosed == 0 && report.TasksDone == 0 && report.ValidationsLogged == 0 {
		return nil, nil
	}
	return report, nil
}

// Format renders the report as chat text.
func Format(r *WeeklyReport) string {
	lines := []string{
		fmt.Sprintf("📊 Weekly digest: %s", r.WorkspaceName),
		fmt.Sprintf("Period: %s – %s", r.PeriodStart.Format("Jan 2"), r.PeriodEnd.Format("Jan 2")),
		fmt.Sprintf("• Sprints closed: %d", r.SprintsClosed),
	}
	if r.SprintsClosed > 0 {
		lines = append(lines, fmt.Sprintf("• Avg completion: %d%%", r.AvgCompletion))
	}
	lines = append(lines,
		fmt.Sprintf("• Tasks done: %d", r.TasksDone),
		fmt.Sprintf("• Validations logged: %d", r.ValidationsLogged),
	)
	return strings.Join(lines, "\n")
}

// Scheduler fires digests for every workspace on a cron schedule.
type Scheduler struct {
	db         *gorm.DB
	dispatcher *broadcast.Dispatcher
	expr       string
}

// NewScheduler validates the cron expression and builds a scheduler.
func NewScheduler(db *gorm.DB, dispatcher *broadcast.Dispatcher, cronExpr string) (*Scheduler, error) {
	if _, err := cronParser.Parse(cronExpr); err != nil {
		return nil, fmt.Errorf("digest: bad cron expression %q: %w", cronExpr, err)
	}
	return &Scheduler{db: db, dispatcher: dispatcher, expr: cronExpr}, nil
}

// Run blocks until ctx is cancelled, firing at each cron tick.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		sched, _ := cronParser.Parse(s.expr)
		wait := time.Until(sched.Next(time.Now()))
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
			s.fire()
		}
	}
}

// fire builds and dispatches a digest for every workspace with activity.
func (s *Scheduler) fire() {
	var workspaces []models.Workspace
	if err := s.db.Find(&workspaces).Error; err != nil {
		log.Printf("digest: list workspaces: %v", err)
		return
	}

	now := time.Now()
	for _, ws := range workspaces {
		report, err := BuildWeekly(s.db, ws.ID, now)
		if err != nil {
			log.Printf("digest: workspace %s: %v", ws.ID, err)
			continue
		}
		if report == nil {
			continue
		}
		s.dispatcher.Dispatch(broadcast.Event{
			Type:        broadcast.EventWeeklyDigest,
			WorkspaceID: ws.ID,
			DigestText:  Format(report),
		})
	}
}
