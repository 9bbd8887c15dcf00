package middleware

import (
	"time"

	"github.com/pocketplan/budget-api/utils"

	"github.com/gin-gonic/gin"
)

// RequestLogger logs every served request through the masking logger.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		utils.LogAPIRequest(c.Request.Method, c.Request.URL.Path, GetUserID(c), c.Writer.Status(), time.Since(start).String())
	}
}
