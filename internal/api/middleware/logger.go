package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stitts-dev/hr-parlay/pkg/logger"
)

const serviceName = "hr-parlay"

// RequestLogger creates a structured logger middleware for requests
func RequestLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		c.Next()

		entry := logger.WithService(log, serviceName).WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency":    time.Since(startTime),
			"client_ip":  c.ClientIP(),
			"user_agent": c.Request.UserAgent(),
		})

		// /proxy carries provider parameters; keep them out of the log
		if c.Request.URL.RawQuery != "" && !strings.HasPrefix(c.Request.URL.Path, "/proxy") {
			entry = entry.WithField("query", c.Request.URL.RawQuery)
		}

		status := c.Writer.Status()
		switch {
		case status >= 500:
			entry.Error("Internal Server Error")
		case status >= 400:
			entry.Warn("Client Error")
		case status == 101:
			entry.Debug("Connection upgraded")
		default:
			entry.Info("Request completed")
		}
	}
}

// ErrorLogger logs errors attached to the context with c.Error.
func ErrorLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		for _, err := range c.Errors {
			logger.WithService(log, serviceName).WithFields(logrus.Fields{
				"method":    c.Request.Method,
				"path":      c.Request.URL.Path,
				"error":     err.Error(),
				"client_ip": c.ClientIP(),
			}).Error("Request error")
		}
	}
}

