package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	slackbc "github.com/runwayhq/runway/internal/broadcast/slack"
	"github.com/runwayhq/runway/internal/models"
	"github.com/runwayhq/runway/internal/workspace"
)

// handleSlackAuthorize starts the install flow: it issues a short-lived
// state token bound to the workspace and caller, and returns the Slack
// consent URL.
func (s *Server) handleSlackAuthorize(c *gin.Context) {
	if s.oauth == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "slack is not configured"})
		return
	}
	id := c.Param("id")
	if err := workspace.RequireRole(s.db, id, currentUser(c).ID, models.RoleFounder); err != nil {
		respondErr(c, err)
		return
	}

	state, err := models.NewToken()
	if err != nil {
		respondErr(c, err)
		return
	}
	s.mu.Lock()
	s.prunePendingLocked()
	s.pending[state] = pendingOAuth{
		WorkspaceID: id,
		UserID:      currentUser(c).ID,
		Expires:     time.Now().Add(pendingTTL),
	}
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"url": s.oauth.AuthorizeURL(state)})
}

// handleSlackCallback is where Slack redirects after consent. It is
// unauthenticated; the state token ties the code back to the workspace.
// The exchanged bot token stays server-side until the founder picks a
// channel via /slack/complete.
func (s *Server) handleSlackCallback(c *gin.Context) {
	if s.oauth == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "slack is not configured"})
		return
	}
	state := c.Query("state")
	code := c.Query("code")
	if state == "" || code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "state and code are required"})
		return
	}

	s.mu.Lock()
	p, ok := s.pending[state]
	s.mu.Unlock()
	if !ok || time.Now().After(p.Expires) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown or expired state"})
		return
	}

	botToken, teamID, teamName, err := s.oauth.Exchange(c.Request.Context(), code)
	if err != nil {
		respondErr(c, err)
		return
	}

	p.BotToken = botToken
	p.TeamID = teamID
	p.TeamName = teamName
	s.mu.Lock()
	s.pending[state] = p
	s.mu.Unlock()

	channels, err := slackbc.ListChannels(c.Request.Context(), botToken)
	if err != nil {
		respondErr(c, err)
		return
	}
	list := make([]gin.H, len(channels))
	for i, ch := range channels {
		list[i] = gin.H{"id": ch.ID, "name": ch.Name}
	}
	c.JSON(http.StatusOK, gin.H{
		"state":    state,
		"teamName": teamName,
		"channels": list,
	})
}

// handleSlackComplete finishes the install: the founder picks a channel
// and the integration is persisted.
func (s *Server) handleSlackComplete(c *gin.Context) {
	var req struct {
		State       string `json:"state"`
		ChannelID   string `json:"channelId"`
		ChannelName string `json:"channelName"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	s.mu.Lock()
	p, ok := s.pending[req.State]
	if ok {
		delete(s.pending, req.State)
	}
	s.mu.Unlock()
	if !ok || time.Now().After(p.Expires) || p.BotToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown, expired or incomplete state"})
		return
	}
	if p.UserID != currentUser(c).ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "state belongs to a different user"})
		return
	}

	integ, err := slackbc.Save(c.Request.Context(), s.db, slackbc.SaveOpts{
		WorkspaceID: p.WorkspaceID,
		BotToken:    p.BotToken,
		TeamID:      p.TeamID,
		ChannelID:   req.ChannelID,
		ChannelName: req.ChannelName,
		ActorID:     currentUser(c).ID,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, integ)
}

func (s *Server) handleGetIntegration(c *gin.Context) {
	id := c.Param("id")
	if err := workspace.RequireRole(s.db, id, currentUser(c).ID, allRoles...); err != nil {
		respondErr(c, err)
		return
	}
	integ, err := slackbc.IntegrationFor(s.db, id)
	if err != nil {
		respondErr(c, err)
		return
	}
	if integ == nil {
		c.JSON(http.StatusOK, gin.H{"connected": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"connected": true, "integration": integ})
}

func (s *Server) handleSlackDisconnect(c *gin.Context) {
	if err := slackbc.Disconnect(s.db, c.Param("id"), currentUser(c).ID); err != nil {
		respondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// prunePendingLocked drops expired OAuth states. Caller holds s.mu.
func (s *Server) prunePendingLocked() {
	now := time.Now()
	for state, p := range s.pending {
		if now.After(p.Expires) {
			delete(s.pending, state)
		}
	}
}
