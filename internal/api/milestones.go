package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/runwayhq/runway/internal/broadcast"
	"github.com/runwayhq/runway/internal/milestone"
	"github.com/runwayhq/runway/internal/workspace"
)

func (s *Server) handleCreateMilestone(c *gin.Context) {
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	m, err := milestone.Create(s.db, milestone.CreateOpts{
		WorkspaceID: c.Param("id"),
		Title:       req.Title,
		Description: req.Description,
		ActorID:     currentUser(c).ID,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (s *Server) handleListMilestones(c *gin.Context) {
	id := c.Param("id")
	if err := workspace.RequireRole(s.db, id, currentUser(c).ID, allRoles...); err != nil {
		respondErr(c, err)
		return
	}
	out, err := milestone.ListForWorkspace(s.db, id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleUpdateMilestone(c *gin.Context) {
	var req struct {
		Title              *string `json:"title"`
		Description        *string `json:"description"`
		Status             *string `json:"status"`
		ProgressPercentage *int    `json:"progressPercentage"`
		FundingCategory    *string `json:"fundingCategory"`
		SpendRangeMin      *int64  `json:"spendRangeMin"`
		SpendRangeMax      *int64  `json:"spendRangeMax"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	m, becameCompleted, err := milestone.Update(s.db, c.Param("milestoneID"), currentUser(c).ID, milestone.UpdateOpts{
		Title:              req.Title,
		Description:        req.Description,
		Status:             req.Status,
		ProgressPercentage: req.ProgressPercentage,
		FundingCategory:    req.FundingCategory,
		SpendRangeMin:      req.SpendRangeMin,
		SpendRangeMax:      req.SpendRangeMax,
	})
	if err != nil {
		respondErr(c, err)
		return
	}

	if becameCompleted {
		s.dispatcher.Dispatch(broadcast.Event{
			Type:           broadcast.EventMilestoneCompleted,
			WorkspaceID:    m.WorkspaceID,
			MilestoneTitle: m.Title,
		})
	}
	c.JSON(http.StatusOK, m)
}
