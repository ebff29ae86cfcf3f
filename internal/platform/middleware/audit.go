package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// AuditEntry captures who changed what, when, and from where. Only mutating
// requests are audited; reads are covered by the request logger.
type AuditEntry struct {
	Username   string
	Resource   string
	ResourceID string
	Action     string // create, update, delete
	IPAddress  string
	UserAgent  string
	Path       string
	Method     string
	Timestamp  time.Time
	RequestID  string
	StatusCode int
}

// AuditRecorder persists audit entries. Decoupling the middleware from a
// concrete sink lets tests provide a mock implementation.
type AuditRecorder interface {
	RecordChange(entry AuditEntry) error
}

// AuditRecorderFunc is a function adapter for AuditRecorder.
type AuditRecorderFunc func(entry AuditEntry) error

func (f AuditRecorderFunc) RecordChange(entry AuditEntry) error {
	return f(entry)
}

// Audit returns middleware that logs every mutating request under /api/v1/,
// attributing it to the authenticated user stored in the echo context.
//
// If no AuditRecorder is provided, entries go to structured zerolog output.
func Audit(logger zerolog.Logger, recorders ...AuditRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			path := req.URL.Path

			action := actionForMethod(req.Method)
			if action == "" || !strings.HasPrefix(path, "/api/v1/") {
				return next(c)
			}

			entry := AuditEntry{
				Action:    action,
				IPAddress: c.RealIP(),
				UserAgent: req.UserAgent(),
				Path:      path,
				Method:    req.Method,
				Timestamp: time.Now().UTC(),
			}
			entry.Resource, entry.ResourceID = resourceFromPath(path)

			if username, ok := c.Get("username").(string); ok {
				entry.Username = username
			}
			if rid, ok := c.Get("request_id").(string); ok {
				entry.RequestID = rid
			}

			err := next(c)

			entry.StatusCode = c.Response().Status
			if httpErr, ok := err.(*echo.HTTPError); ok {
				entry.StatusCode = httpErr.Code
			}

			if len(recorders) > 0 {
				for _, r := range recorders {
					if recErr := r.RecordChange(entry); recErr != nil {
						logger.Error().Err(recErr).
							Str("request_id", entry.RequestID).
							Msg("audit recorder failed")
					}
				}
			} else {
				logger.Info().
					Str("request_id", entry.RequestID).
					Str("username", entry.Username).
					Str("action", entry.Action).
					Str("resource", entry.Resource).
					Str("resource_id", entry.ResourceID).
					Str("ip", entry.IPAddress).
					Int("status", entry.StatusCode).
					Msg("audit")
			}

			return err
		}
	}
}

func actionForMethod(method string) string {
	switch method {
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return ""
	}
}

// resourceFromPath extracts the resource name and optional identifier from
// an /api/v1/ path, e.g. "/api/v1/patients/42" -> ("patients", "42").
func resourceFromPath(path string) (string, string) {
	trimmed := strings.TrimPrefix(path, "/api/v1/")
	parts := strings.Split(strings.Trim(trimmed, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		return "", ""
	}
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}
