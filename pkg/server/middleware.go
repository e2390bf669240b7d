package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/getmockd/imposter/internal/id"
	"github.com/getmockd/imposter/pkg/httputil"
	"github.com/getmockd/imposter/pkg/logging"
)

// RequestIDHeader carries the request correlation ID.
const RequestIDHeader = "X-Request-Id"

const (
	ctxRequestID = "imposter.request_id"
	ctxLogger    = "imposter.logger"
)

// requestIDMiddleware reuses an incoming X-Request-Id or generates one, and
// stores a request-scoped logger on the context.
func requestIDMiddleware(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if rid == "" {
			rid = id.UUID()
		}
		c.Set(ctxRequestID, rid)
		c.Set(ctxLogger, log.With(logging.KeyRequestID, rid))
		c.Header(RequestIDHeader, rid)
		c.Next()
	}
}

// accessLogMiddleware logs one line per request after it completes.
func accessLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		log := Logger(c)
		switch {
		case status >= http.StatusInternalServerError:
			log.Warn("request", attrs...)
		default:
			log.Info("request", attrs...)
		}
	}
}

// metricsMiddleware records request counts and durations.
func metricsMiddleware(m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		method := c.Request.Method
		m.requests.WithLabelValues(method, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	}
}

// recoveryMiddleware turns handler panics into 500 responses.
func recoveryMiddleware() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, rec any) {
		Fail(c, http.StatusInternalServerError, fmt.Errorf("panic: %v", rec))
	})
}

// RequestID returns the request's correlation ID.
func RequestID(c *gin.Context) string {
	return c.GetString(ctxRequestID)
}

// Logger returns the request-scoped logger, or a no-op logger outside the
// server middleware chain.
func Logger(c *gin.Context) *slog.Logger {
	if v, ok := c.Get(ctxLogger); ok {
		if log, ok := v.(*slog.Logger); ok {
			return log
		}
	}
	return logging.Nop()
}

// Fail aborts the request with a JSON error document and logs the cause.
// The document carries the request ID so clients can correlate it with the
// server log.
func Fail(c *gin.Context, status int, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	log := Logger(c)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", "status", status, "error", msg)
	} else {
		log.Debug("request rejected", "status", status, "error", msg)
	}
	c.Abort()

	body := map[string]string{
		"error":   httputil.ErrorCode(status),
		"message": msg,
	}
	if rid := RequestID(c); rid != "" {
		body["requestId"] = rid
	}
	httputil.WriteJSON(c.Writer, status, body)
}
