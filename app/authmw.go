package app

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"fieldstock/auth"
	"fieldstock/db"
)

const scopeKey = "orgScope"

// AuthRequired validates the bearer token, confirms the user still exists
// and is active, and puts the request's OrgScope into the context.
func AuthRequired(secret string, repo *db.Repo) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		claims, err := auth.ValidateToken(secret, strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "invalid token"})
			return
		}

		u, err := repo.FindUserByID(c.Request.Context(), claims.UserID)
		if err != nil || !u.Active {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}

		c.Set(scopeKey, db.OrgScope{OrgID: u.OrgID, UserID: u.ID})
		c.Set("username", u.Username)
		c.Set("isAdmin", u.IsAdmin)
		c.Next()
	}
}

// AdminOnly gates admin endpoints; must run after AuthRequired.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool("isAdmin") {
			c.AbortWithStatusJSON(http.StatusForbidden, H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

// Scope returns the request's OrgScope as set by AuthRequired.
func Scope(c *gin.Context) db.OrgScope {
	v, ok := c.Get(scopeKey)
	if !ok {
		return db.OrgScope{}
	}
	s, _ := v.(db.OrgScope)
	return s
}
