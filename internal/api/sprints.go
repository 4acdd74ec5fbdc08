package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/runwayhq/runway/internal/broadcast"
	"github.com/runwayhq/runway/internal/models"
	"github.com/runwayhq/runway/internal/sprint"
	"github.com/runwayhq/runway/internal/workspace"
)

func (s *Server) handleCreateSprint(c *gin.Context) {
	var req struct {
		WeekStartDate       string              `json:"weekStartDate"`
		WeekEndDate         string              `json:"weekEndDate"`
		Goals               []models.SprintGoal `json:"goals"`
		TaskIDs             []string            `json:"taskIds"`
		FundingCategory     *string             `json:"fundingCategory"`
		EstimatedSpendRange *int64              `json:"estimatedSpendRange"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	sp, err := sprint.Create(s.db, sprint.CreateOpts{
		WorkspaceID:         c.Param("id"),
		WeekStartDate:       req.WeekStartDate,
		WeekEndDate:         req.WeekEndDate,
		Goals:               req.Goals,
		TaskIDs:             req.TaskIDs,
		ActorID:             currentUser(c).ID,
		FundingCategory:     req.FundingCategory,
		EstimatedSpendRange: req.EstimatedSpendRange,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, sp)
}

func (s *Server) handleListSprints(c *gin.Context) {
	id := c.Param("id")
	if err := workspace.RequireRole(s.db, id, currentUser(c).ID, allRoles...); err != nil {
		respondErr(c, err)
		return
	}
	out, err := sprint.ListForWorkspace(s.db, id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleGetSprint(c *gin.Context) {
	sp, err := s.memberSprint(c)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, sp)
}

func (s *Server) handleLockSprint(c *gin.Context) {
	sp, err := sprint.Lock(s.db, c.Param("sprintID"), currentUser(c).ID)
	if err != nil {
		respondErr(c, err)
		return
	}

	goals := make([]string, len(sp.Goals))
	for i, g := range sp.Goals {
		goals[i] = g.Text
	}
	s.dispatcher.Dispatch(broadcast.Event{
		Type:        broadcast.EventSprintLocked,
		WorkspaceID: sp.WorkspaceID,
		SprintLabel: sp.Label(),
		SprintGoals: goals,
	})
	c.JSON(http.StatusOK, sp)
}

func (s *Server) handleCloseSprint(c *gin.Context) {
	sp, err := sprint.Close(s.db, c.Param("sprintID"), currentUser(c).ID)
	if err != nil {
		respondErr(c, err)
		return
	}

	milestones, validations, err := sprint.BroadcastCounts(s.db, sp)
	if err != nil {
		// The close is committed; the notification just loses detail.
		log.Printf("api: broadcast counts for sprint %s: %v", sp.ID, err)
	}
	s.dispatcher.Dispatch(broadcast.Event{
		Type:                broadcast.EventSprintClosed,
		WorkspaceID:         sp.WorkspaceID,
		SprintLabel:         sp.Label(),
		TasksCompleted:      sp.TasksCompleted,
		TasksTotal:          sp.TasksTotal,
		MilestonesDelivered: milestones,
		ValidationsLogged:   validations,
	})
	c.JSON(http.StatusOK, sp)
}

func (s *Server) handleDeleteSprint(c *gin.Context) {
	if err := sprint.Delete(s.db, c.Param("sprintID"), currentUser(c).ID); err != nil {
		respondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// memberSprint loads the sprint and verifies the caller belongs to its
// workspace.
func (s *Server) memberSprint(c *gin.Context) (*models.Sprint, error) {
	sp, err := sprint.Get(s.db, c.Param("sprintID"))
	if err != nil {
		return nil, err
	}
	if err := workspace.RequireRole(s.db, sp.WorkspaceID, currentUser(c).ID, allRoles...); err != nil {
		return nil, err
	}
	return sp, nil
}
