package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/runwayhq/runway/internal/funding"
	"github.com/runwayhq/runway/internal/workspace"
)

// parseDate parses an ISO date, defaulting empty to now.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	return time.Parse("2006-01-02", s)
}

func (s *Server) handleCreateRound(c *gin.Context) {
	var req struct {
		Name     string `json:"name"`
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
		Source   string `json:"source"`
		Date     string `json:"date"`
		Notes    string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	round, err := funding.CreateRound(s.db, funding.RoundOpts{
		WorkspaceID: c.Param("id"),
		Name:        req.Name,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Source:      req.Source,
		Date:        date,
		Notes:       req.Notes,
		ActorID:     currentUser(c).ID,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, round)
}

func (s *Server) handleListRounds(c *gin.Context) {
	id := c.Param("id")
	if err := workspace.RequireRole(s.db, id, currentUser(c).ID, allRoles...); err != nil {
		respondErr(c, err)
		return
	}
	out, err := funding.ListRounds(s.db, id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleSetAllocation(c *gin.Context) {
	var req struct {
		Category string `json:"category"`
		Amount   int64  `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	alloc, err := funding.SetAllocation(s.db, c.Param("id"), c.Param("roundID"),
		req.Category, req.Amount, currentUser(c).ID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, alloc)
}

func (s *Server) handleLogSpend(c *gin.Context) {
	var req struct {
		FundingRoundID    string `json:"fundingRoundId"`
		Category          string `json:"category"`
		Amount            int64  `json:"amount"`
		Date              string `json:"date"`
		LinkedSprintID    string `json:"linkedSprintId"`
		LinkedMilestoneID string `json:"linkedMilestoneId"`
		Note              string `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	entry, err := funding.LogSpend(s.db, funding.SpendOpts{
		WorkspaceID:       c.Param("id"),
		FundingRoundID:    req.FundingRoundID,
		Category:          req.Category,
		Amount:            req.Amount,
		Date:              date,
		LinkedSprintID:    req.LinkedSprintID,
		LinkedMilestoneID: req.LinkedMilestoneID,
		Note:              req.Note,
		ActorID:           currentUser(c).ID,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (s *Server) handleListSpend(c *gin.Context) {
	id := c.Param("id")
	if err := workspace.RequireRole(s.db, id, currentUser(c).ID, allRoles...); err != nil {
		respondErr(c, err)
		return
	}
	out, err := funding.ListSpend(s.db, id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleFundingSummary(c *gin.Context) {
	id := c.Param("id")
	if err := workspace.RequireRole(s.db, id, currentUser(c).ID, allRoles...); err != nil {
		respondErr(c, err)
		return
	}
	out, err := funding.Summary(s.db, id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleAuditLog(c *gin.Context) {
	id := c.Param("id")
	if err := workspace.RequireRole(s.db, id, currentUser(c).ID, allRoles...); err != nil {
		respondErr(c, err)
		return
	}
	out, err := funding.AuditLog(s.db, id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
