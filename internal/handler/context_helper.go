package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal-api/internal/middleware"
	"github.com/noah-isme/school-portal-api/internal/models"
	"github.com/noah-isme/school-portal-api/pkg/response"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	return middleware.Claims(c)
}

func respondCached(c *gin.Context, data interface{}, cacheHit bool) {
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, data, middleware.ExtractMeta(c))
}
