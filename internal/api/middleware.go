package api

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/runwayhq/runway/internal/errs"
	"github.com/runwayhq/runway/internal/models"
	"github.com/runwayhq/runway/internal/user"
)

// userKey is the gin context key for the authenticated user.
const userKey = "user"

// allRoles grants read access to every workspace member, investors
// included. Write access is narrowed by the service packages.
var allRoles = []string{models.RoleFounder, models.RoleTeamMember, models.RoleInvestor}

// requireAuth resolves the bearer token to a user. Missing or unknown
// tokens are 401; per-workspace authorization happens in the services.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		u, err := user.ByToken(s.db, token)
		if err != nil {
			if errors.Is(err, errs.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
				return
			}
			log.Printf("api: resolve token: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.Set(userKey, u)
		c.Next()
	}
}

// currentUser returns the authenticated user set by requireAuth.
func currentUser(c *gin.Context) *models.User {
	u, _ := c.Get(userKey)
	return u.(*models.User)
}
