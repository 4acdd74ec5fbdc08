package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/runwayhq/runway/internal/pitch"
)

// handleExtractPitch runs deck extraction and returns both the raw
// extraction and a pre-filled workspace draft.
func (s *Server) handleExtractPitch(c *gin.Context) {
	var req struct {
		Slides []pitch.Slide `json:"slides"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if len(req.Slides) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one slide is required"})
		return
	}

	extractor := s.extractor
	if extractor == nil {
		extractor = pitch.HeuristicExtractor{}
	}
	e, err := extractor.Extract(c.Request.Context(), req.Slides)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"extraction": e,
		"draft":      pitch.BuildDraft(e, time.Now()),
	})
}
