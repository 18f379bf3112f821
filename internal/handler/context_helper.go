package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/music-school-api/internal/middleware"
)

func requesterID(c *gin.Context) string {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		return ""
	}
	return claims.UserID
}
