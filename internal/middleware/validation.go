package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
	"golang.org/x/time/rate"
)

// maxPageSize is the largest accepted limit query parameter
const maxPageSize = 100

// ErrorResponse is the failure envelope written by middleware
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func abortWith(c *gin.Context, status int, kind, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:     kind,
		Message:   message,
		RequestID: c.GetString(RequestIDKey),
	})
}

// RequestValidation rejects malformed pagination, boolean and id parameters
// before they reach a handler
func RequestValidation() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := validateQueryParams(c); err != nil {
			abortWith(c, http.StatusBadRequest, "validation_error", err.Error())
			return
		}
		if err := validatePathParams(c); err != nil {
			abortWith(c, http.StatusBadRequest, "validation_error", err.Error())
			return
		}
		c.Next()
	}
}

func validateQueryParams(c *gin.Context) error {
	if page := c.Query("page"); page != "" {
		if val, err := cast.ToIntE(page); err != nil || val < 1 {
			return fmt.Errorf("invalid page parameter: must be a positive integer")
		}
	}

	if limit := c.Query("limit"); limit != "" {
		if val, err := cast.ToIntE(limit); err != nil || val < 1 || val > maxPageSize {
			return fmt.Errorf("invalid limit parameter: must be a positive integer <= %d", maxPageSize)
		}
	}

	for _, param := range []string{"isActive", "rootsOnly"} {
		if value := c.Query(param); value != "" {
			if _, err := cast.ToBoolE(value); err != nil {
				return fmt.Errorf("invalid %s parameter: must be a boolean (true/false)", param)
			}
		}
	}

	for _, param := range []string{"startDate", "endDate"} {
		if value := c.Query(param); value != "" {
			if _, err := cast.ToTimeE(value); err != nil {
				return fmt.Errorf("invalid %s parameter: must be a date", param)
			}
		}
	}

	return nil
}

func validatePathParams(c *gin.Context) error {
	for _, param := range []string{"productId", "supplierId", "orderId", "categoryId"} {
		if value := c.Param(param); value != "" {
			if _, err := uuid.Parse(value); err != nil {
				return fmt.Errorf("invalid %s parameter: must be a valid UUID", param)
			}
		}
	}
	return nil
}

// clientLimiters keeps one token bucket per client IP
type clientLimiters struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	limiters  map[string]*clientLimiter
	lastSweep time.Time
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func (l *clientLimiters) get(ip string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > time.Minute {
		l.sweep(now, 10*time.Minute)
		l.lastSweep = now
	}

	entry, ok := l.limiters[ip]
	if !ok {
		entry = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[ip] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

// sweep drops clients idle for longer than idle. The caller holds mu.
func (l *clientLimiters) sweep(now time.Time, idle time.Duration) {
	for ip, entry := range l.limiters {
		if now.Sub(entry.lastSeen) > idle {
			delete(l.limiters, ip)
		}
	}
}

// RateLimiter limits each client IP to requestsPerSecond with the given burst
func RateLimiter(logger *logrus.Logger, requestsPerSecond float64, burst int) gin.HandlerFunc {
	limiters := &clientLimiters{
		limit:    rate.Limit(requestsPerSecond),
		burst:    burst,
		limiters: make(map[string]*clientLimiter),
	}

	return func(c *gin.Context) {
		if !limiters.get(c.ClientIP(), time.Now()).Allow() {
			logger.WithFields(logrus.Fields{
				"client_ip":  c.ClientIP(),
				"path":       c.Request.URL.Path,
				"request_id": c.GetString(RequestIDKey),
			}).Warn("Rate limit exceeded")

			abortWith(c, http.StatusTooManyRequests, "rate_limited",
				fmt.Sprintf("Too many requests. Limit: %.1f requests per second", requestsPerSecond))
			return
		}
		c.Next()
	}
}

// SecurityHeaders adds security headers to responses
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		if !strings.HasPrefix(c.Request.URL.Path, "/swagger") {
			c.Header("Content-Security-Policy", "default-src 'none'")
		}
		c.Next()
	}
}

// ContentTypeValidation requires a JSON body on requests that carry one
func ContentTypeValidation() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength == 0 {
			c.Next()
			return
		}
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodDelete:
			c.Next()
			return
		}

		mainType := strings.TrimSpace(strings.Split(c.GetHeader("Content-Type"), ";")[0])
		if mainType != "application/json" {
			abortWith(c, http.StatusUnsupportedMediaType, "unsupported_media_type",
				fmt.Sprintf("Content-Type '%s' is not supported, use application/json", mainType))
			return
		}
		c.Next()
	}
}

// RequestSizeLimit limits the size of request bodies
func RequestSizeLimit(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxSize {
			abortWith(c, http.StatusRequestEntityTooLarge, "request_too_large",
				fmt.Sprintf("Request body size (%d bytes) exceeds maximum allowed size (%d bytes)", c.Request.ContentLength, maxSize))
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}
