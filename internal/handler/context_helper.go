package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sammy002621/parking-management-system-backend/internal/middleware"
	"github.com/sammy002621/parking-management-system-backend/internal/models"
)

// claimsFromContext extracts the authenticated user's claims set by the JWT
// middleware.
func claimsFromContext(c *gin.Context) (*models.JWTClaims, bool) {
	value, ok := c.Get(middleware.ContextUserKey)
	if !ok {
		return nil, false
	}
	claims, ok := value.(*models.JWTClaims)
	return claims, ok
}

// requestMeta captures the transport details recorded with audit entries.
func requestMeta(c *gin.Context) models.RequestMeta {
	return models.RequestMeta{
		IP:        c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
	}
}
