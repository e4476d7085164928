package middleware

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal-api/internal/models"
	reqidmiddleware "github.com/noah-isme/school-portal-api/pkg/middleware/requestid"
)

// AuditRecorder accepts audit entries.
type AuditRecorder interface {
	Record(entry *models.AuditLog)
}

// Audit records an entry after every successful request on the route.
// idParam names the path parameter carrying the resource identifier; empty means none.
func Audit(recorder AuditRecorder, action, resource, idParam string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if recorder == nil || c.Writer.Status() >= 400 {
			return
		}

		entry := &models.AuditLog{
			Action:    action,
			Resource:  resource,
			IPAddress: c.ClientIP(),
			UserAgent: c.GetHeader("User-Agent"),
			RequestID: reqidmiddleware.Value(c),
			CreatedAt: time.Now().UTC(),
		}
		if claims := Claims(c); claims != nil {
			userID := claims.UserID
			role := claims.Role
			entry.UserID = &userID
			entry.Role = &role
			if claims.SchoolID != "" {
				schoolID := claims.SchoolID
				entry.SchoolID = &schoolID
			}
		}
		if idParam != "" {
			if id := c.Param(idParam); id != "" {
				entry.ResourceID = &id
			}
		}
		entry.Details, _ = json.Marshal(map[string]interface{}{
			"path":    c.FullPath(),
			"method":  c.Request.Method,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).Milliseconds(),
		})

		recorder.Record(entry)
	}
}
