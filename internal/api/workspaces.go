package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/runwayhq/runway/internal/workspace"
)

func (s *Server) handleMe(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}

func (s *Server) handleCreateWorkspace(c *gin.Context) {
	var req struct {
		Name  string `json:"name"`
		Stage string `json:"stage"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ws, err := workspace.Create(s.db, workspace.CreateOpts{
		Name:      req.Name,
		Stage:     req.Stage,
		FounderID: currentUser(c).ID,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, ws)
}

func (s *Server) handleListWorkspaces(c *gin.Context) {
	out, err := workspace.ListForUser(s.db, currentUser(c).ID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleGetWorkspace(c *gin.Context) {
	id := c.Param("id")
	if err := workspace.RequireRole(s.db, id, currentUser(c).ID, allRoles...); err != nil {
		respondErr(c, err)
		return
	}
	ws, err := workspace.Get(s.db, id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, ws)
}

func (s *Server) handleUpdateWorkspace(c *gin.Context) {
	var req struct {
		Name  *string `json:"name"`
		Stage *string `json:"stage"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	id := c.Param("id")
	if err := workspace.Update(s.db, id, currentUser(c).ID, workspace.UpdateOpts{
		Name:  req.Name,
		Stage: req.Stage,
	}); err != nil {
		respondErr(c, err)
		return
	}
	ws, err := workspace.Get(s.db, id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, ws)
}

func (s *Server) handleCreateInvite(c *gin.Context) {
	var req struct {
		Role string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	inv, err := workspace.CreateInvite(s.db, c.Param("id"), currentUser(c).ID, req.Role)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, inv)
}

func (s *Server) handleRedeemInvite(c *gin.Context) {
	var req struct {
		WorkspaceID string `json:"workspaceId"`
		Token       string `json:"token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	member, err := workspace.RedeemInvite(s.db, req.WorkspaceID, req.Token, currentUser(c).ID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}
