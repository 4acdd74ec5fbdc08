// Package report renders the investor one-pager as a PDF.
package report

import (
	"fmt"

	"github.com/go-pdf/fpdf"
	"gorm.io/gorm"

	"github.com/runwayhq/runway/internal/insight"
	"github.com/runwayhq/runway/internal/models"
	"github.com/runwayhq/runway/internal/workspace"
)

// recentSprints caps how many closed sprints the one-pager lists.
const recentSprints = 5

// Investor writes an A4 one-pager for the workspace to path: the
// rule-generated investor summary plus the most recent closed sprints.
func Investor(db *gorm.DB, workspaceID, path string) error {
	ws, err := workspace.Get(db, workspaceID)
	if err != nil {
		return err
	}
	summary, err := insight.Investor(db, workspaceID)
	if err != nil {
		return err
	}

	var closed []models.Sprint
	if err := db.Where("workspace_id = ? AND completed = ?", workspaceID, true).
		Order("closed_at DESC").
		Limit(recentSprints).
		Find(&closed).Error; err != nil {
		return fmt.Errorf("report: closed sprints: %w", err)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, fmt.Sprintf("%s - Investor Summary", ws.Name))
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Stage: %s    Generated: %s", ws.Stage, summary.GeneratedAt.Format("Jan 2, 2006")))
	pdf.Ln(12)

	sections := []struct {
		title string
		body  string
	}{
		{"Problem", summary.Problem},
		{"Solution", summary.Solution},
		{"Traction", summary.Traction},
		{"Execution Progress", summary.ExecutionProgress},
		{"Validation", summary.ValidationStatus},
		{"Roadmap", summary.Roadmap},
	}
	for _, sec := range sections {
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(0, 8, sec.title)
		pdf.Ln(7)
		pdf.SetFont("Arial", "", 11)
		pdf.MultiCell(0, 6, sec.body, "", "", false)
		pdf.Ln(3)
	}

	if len(closed) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(0, 8, "Recent Sprints")
		pdf.Ln(7)
		pdf.SetFont("Arial", "", 11)
		for _, s := range closed {
			line := fmt.Sprintf("%s  -  %d/%d tasks (%d%%)",
				s.Label(), s.TasksCompleted, s.TasksTotal, s.CompletionPercentage)
			if len(s.BlockedTaskIDs) > 0 {
				line += fmt.Sprintf(", %d blocked", len(s.BlockedTaskIDs))
			}
			pdf.Cell(0, 6, line)
			pdf.Ln(6)
		}
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("report: write %s: %w", path, err)
	}
	return nil
}
