package web

import (
	"time"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

// requestLogger пишет одну строку на запрос через apex/log
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.WithFields(log.Fields{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		}).Info("http request")
	}
}
