package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/runwayhq/runway/internal/validation"
	"github.com/runwayhq/runway/internal/workspace"
)

func (s *Server) handleLogValidation(c *gin.Context) {
	var req struct {
		SprintID         string `json:"sprintId"`
		MilestoneID      string `json:"milestoneId"`
		Type             string `json:"type"`
		Summary          string `json:"summary"`
		QualitativeNotes string `json:"qualitativeNotes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	entry, err := validation.Log(s.db, validation.LogOpts{
		WorkspaceID:      c.Param("id"),
		SprintID:         req.SprintID,
		MilestoneID:      req.MilestoneID,
		Type:             req.Type,
		Summary:          req.Summary,
		QualitativeNotes: req.QualitativeNotes,
		ActorID:          currentUser(c).ID,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (s *Server) handleListValidations(c *gin.Context) {
	id := c.Param("id")
	if err := workspace.RequireRole(s.db, id, currentUser(c).ID, allRoles...); err != nil {
		respondErr(c, err)
		return
	}
	out, err := validation.List(s.db, id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// handleSubmitExternalValidation is the public, unauthenticated endpoint
// behind a workspace's shareable validation link.
func (s *Server) handleSubmitExternalValidation(c *gin.Context) {
	var req struct {
		SourceType      string `json:"sourceType"`
		FeedbackText    string `json:"feedbackText"`
		ConfidenceScore int    `json:"confidenceScore"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	entry, err := validation.SubmitExternal(s.db, validation.ExternalOpts{
		WorkspaceID:     c.Param("id"),
		SourceType:      req.SourceType,
		FeedbackText:    req.FeedbackText,
		ConfidenceScore: req.ConfidenceScore,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}
