package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// quietPaths are logged at debug so health checks do not flood the log.
var quietPaths = map[string]bool{"/ping": true}

// RequestLogger writes one access log line per request and echoes X-Request-Id.
// The chat session id is included when the chat handlers issued or reused one.
func RequestLogger(l *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader(HeaderRequestID)
		if _, err := uuid.Parse(reqID); err != nil {
			reqID = uuid.NewString()
		}
		c.Header(HeaderRequestID, reqID)
		c.Set(CtxRequestID, reqID)

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		fields := logrus.Fields{
			"request_id": reqID,
			"method":     c.Request.Method,
			"path":       route,
			"status":     status,
			"latency_ms": time.Since(start).Milliseconds(),
			"ip":         c.ClientIP(),
		}
		if id := UserID(c); id != "" {
			fields["user_id"] = id
			fields["role"] = Role(c)
		}
		if sid := c.Writer.Header().Get(HeaderChatSession); sid != "" {
			fields["chat_session"] = sid
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}

		entry := l.WithFields(fields)
		switch {
		case status >= 500:
			entry.Error("request")
		case status >= 400:
			entry.Warn("request")
		case quietPaths[route]:
			entry.Debug("request")
		default:
			entry.Info("request")
		}
	}
}
