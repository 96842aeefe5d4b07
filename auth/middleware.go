package auth

import (
	"net/http"
	"strings"

	"suggestion-board-backend/service"

	"github.com/gin-gonic/gin"
)

// Context key for the resolved viewer identity
const viewerKey = "viewer"

// viewerFromHeader parses the Authorization header, if any. A missing or
// malformed header yields a nil viewer, not an error; the middlewares below
// decide whether that is acceptable.
func viewerFromHeader(c *gin.Context) *service.Viewer {
	header := c.GetHeader("Authorization")
	if header == "" {
		return nil
	}
	tokenString, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		return nil
	}
	userID, isAdmin, err := ParseToken(tokenString)
	if err != nil {
		return nil
	}
	return &service.Viewer{UserID: userID, IsAdmin: isAdmin}
}

// OptionalAuth resolves the viewer when a valid token is present but lets
// anonymous requests through. Read endpoints use this so visibility rules
// can still apply per viewer.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if viewer := viewerFromHeader(c); viewer != nil {
			c.Set(viewerKey, viewer)
		}
		c.Next()
	}
}

// RequireAuth rejects requests without a valid token
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		viewer := viewerFromHeader(c)
		if viewer == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Set(viewerKey, viewer)
		c.Next()
	}
}

// RequireAdmin rejects requests without a valid admin token
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		viewer := viewerFromHeader(c)
		if viewer == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		if !viewer.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin privilege required"})
			return
		}
		c.Set(viewerKey, viewer)
		c.Next()
	}
}

// CurrentViewer returns the viewer resolved by the middleware, or nil for
// anonymous requests
func CurrentViewer(c *gin.Context) *service.Viewer {
	if v, exists := c.Get(viewerKey); exists {
		if viewer, ok := v.(*service.Viewer); ok {
			return viewer
		}
	}
	return nil
}
