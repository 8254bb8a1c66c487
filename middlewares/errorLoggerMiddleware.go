package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/crm_backend/utils"
	"github.com/sirupsen/logrus"
)

// CustomErrorLogger logs only requests that recorded errors on the gin context.
func CustomErrorLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			cid, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
			logger.WithFields(logrus.Fields{
				"path":           c.Request.URL.Path,
				"method":         c.Request.Method,
				"status":         c.Writer.Status(),
				"correlation_id": cid,
			}).Error(c.Errors.String())
		}
	}
}
