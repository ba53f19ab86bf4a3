package middleware

import (
	"log/slog"

	"budget-tracker/internal/errors"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

const panicStackSize = 8 << 10

// PanicRecovery converts a handler panic into SYSTEM_001. The stack is logged with the
// trace ID; the response itself is rendered by the HTTP error handler.
func PanicRecovery() echo.MiddlewareFunc {
	return echomw.RecoverWithConfig(echomw.RecoverConfig{
		StackSize: panicStackSize,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			req := c.Request()
			slog.ErrorContext(req.Context(), "Panic recovered",
				"trace_id", GetTraceID(c),
				"panic", err.Error(),
				"stack_trace", string(stack),
				"path", req.URL.Path,
				"method", req.Method)

			return errors.Wrap(errors.SystemInternalError, err)
		},
	})
}
