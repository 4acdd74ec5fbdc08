package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/runwayhq/runway/internal/models"
	"github.com/runwayhq/runway/internal/task"
	"github.com/runwayhq/runway/internal/workspace"
)

func (s *Server) handleCreateTask(c *gin.Context) {
	var req struct {
		Title       string `json:"title"`
		MilestoneID string `json:"milestoneId"`
		SprintID    string `json:"sprintId"`
		OwnerID     string `json:"ownerId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	t, err := task.Create(s.db, task.CreateOpts{
		WorkspaceID: c.Param("id"),
		MilestoneID: req.MilestoneID,
		SprintID:    req.SprintID,
		Title:       req.Title,
		OwnerID:     req.OwnerID,
		ActorID:     currentUser(c).ID,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

// handleListTasks serves the workspace task list. ?filter=backlog
// narrows to unscheduled tasks, ?sprint=<id> to one sprint's tasks.
func (s *Server) handleListTasks(c *gin.Context) {
	id := c.Param("id")
	if err := workspace.RequireRole(s.db, id, currentUser(c).ID, allRoles...); err != nil {
		respondErr(c, err)
		return
	}

	var (
		out []models.Task
		err error
	)
	switch {
	case c.Query("filter") == "backlog":
		out, err = task.Backlog(s.db, id)
	case c.Query("sprint") != "":
		out, err = task.ListForSprint(s.db, c.Query("sprint"))
	default:
		out, err = task.ListForWorkspace(s.db, id)
	}
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	var req struct {
		Title   *string `json:"title"`
		OwnerID *string `json:"ownerId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	id := c.Param("taskID")
	if err := task.Update(s.db, id, currentUser(c).ID, task.UpdateOpts{
		Title:   req.Title,
		OwnerID: req.OwnerID,
	}); err != nil {
		respondErr(c, err)
		return
	}
	t, err := task.Get(s.db, id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *Server) handleUpdateTaskStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	id := c.Param("taskID")
	if err := task.UpdateStatus(s.db, id, currentUser(c).ID, req.Status); err != nil {
		respondErr(c, err)
		return
	}
	t, err := task.Get(s.db, id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}
