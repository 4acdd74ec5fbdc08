package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/runwayhq/runway/internal/ledger"
	"github.com/runwayhq/runway/internal/workspace"
)

func (s *Server) handleListLedger(c *gin.Context) {
	id := c.Param("id")
	if err := workspace.RequireRole(s.db, id, currentUser(c).ID, allRoles...); err != nil {
		respondErr(c, err)
		return
	}
	out, err := ledger.List(s.db, id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleVerifyLedger(c *gin.Context) {
	id := c.Param("id")
	if err := workspace.RequireRole(s.db, id, currentUser(c).ID, allRoles...); err != nil {
		respondErr(c, err)
		return
	}
	if err := ledger.Verify(s.db, id); err != nil {
		c.JSON(http.StatusOK, gin.H{"valid": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true})
}
