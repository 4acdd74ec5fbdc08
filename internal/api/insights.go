package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/runwayhq/runway/internal/digest"
	"github.com/runwayhq/runway/internal/insight"
	"github.com/runwayhq/runway/internal/workspace"
)

func (s *Server) handleExecutionInsights(c *gin.Context) {
	id := c.Param("id")
	if err := workspace.RequireRole(s.db, id, currentUser(c).ID, allRoles...); err != nil {
		respondErr(c, err)
		return
	}
	out, err := insight.Execution(s.db, id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleValidationInsights(c *gin.Context) {
	id := c.Param("id")
	if err := workspace.RequireRole(s.db, id, currentUser(c).ID, allRoles...); err != nil {
		respondErr(c, err)
		return
	}
	out, err := insight.Validation(s.db, id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleInvestorSummary(c *gin.Context) {
	id := c.Param("id")
	if err := workspace.RequireRole(s.db, id, currentUser(c).ID, allRoles...); err != nil {
		respondErr(c, err)
		return
	}
	out, err := insight.Investor(s.db, id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// handleDigestPreview renders the weekly digest on demand without
// posting it anywhere.
func (s *Server) handleDigestPreview(c *gin.Context) {
	id := c.Param("id")
	if err := workspace.RequireRole(s.db, id, currentUser(c).ID, allRoles...); err != nil {
		respondErr(c, err)
		return
	}
	r, err := digest.BuildWeekly(s.db, id, time.Now())
	if err != nil {
		respondErr(c, err)
		return
	}
	if r == nil {
		c.JSON(http.StatusOK, gin.H{"report": nil, "text": "", "idle": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": r, "text": digest.Format(r), "idle": false})
}
