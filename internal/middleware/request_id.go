package middleware

import (
	"budget-tracker/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

const (
	TraceIDHeader     = "X-Trace-ID"
	TraceIDContextKey = "trace_id"
)

// RequestID reuses the caller's X-Trace-ID or mints a UUID, echoes it on the response and
// stores it on the echo context. The request context additionally carries the trace ID as
// correlation ID along with the caller's address and user agent for audit records.
func RequestID() echo.MiddlewareFunc {
	return echomw.RequestIDWithConfig(echomw.RequestIDConfig{
		TargetHeader: TraceIDHeader,
		Generator:    uuid.NewString,
		RequestIDHandler: func(c echo.Context, traceID string) {
			c.Set(TraceIDContextKey, traceID)

			req := c.Request()
			ctx := services.WithCorrelationID(req.Context(), traceID)
			ctx = services.WithClientInfo(ctx, c.RealIP(), req.UserAgent())
			c.SetRequest(req.WithContext(ctx))
		},
	})
}

// GetTraceID returns the request's trace ID, or "" outside RequestID.
func GetTraceID(c echo.Context) string {
	traceID, _ := c.Get(TraceIDContextKey).(string)
	return traceID
}
