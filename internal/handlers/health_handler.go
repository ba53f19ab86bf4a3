package handlers

import (
	"net/http"
	"time"

	"budget-tracker/internal/database"
	"budget-tracker/internal/errors"

	"github.com/labstack/echo/v4"
)

// StoreStatusReporter is the part of database.Store the health check needs
type StoreStatusReporter interface {
	Status() database.Status
}

// HealthCheckHandler handles the health check endpoint
type HealthCheckHandler struct {
	store StoreStatusReporter
}

// NewHealthCheckHandler creates a new health check handler
func NewHealthCheckHandler(store StoreStatusReporter) *HealthCheckHandler {
	return &HealthCheckHandler{store: store}
}

// HealthCheck reports the last state observed by the store monitor
// @Summary Health check
// @Description Report API and database status without touching the database
// @Tags Health
// @Produce json
// @Success 200 {object} object{status=string,time=string,database=database.Status} "Service is healthy"
// @Failure 503 {object} errors.ErrorResponse "SYSTEM_003 - Service unavailable (database not connected)"
// @Router /health [get]
func (h *HealthCheckHandler) HealthCheck(c echo.Context) error {
	status := h.store.Status()

	if !status.Available() {
		details := []string{"Database " + string(status.State)}
		if status.LastError != "" {
			details = append(details, status.LastError)
		}
		return errors.New(errors.SystemServiceUnavailable, errors.Details(details...))
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":   "healthy",
		"time":     time.Now().UTC().Format(time.RFC3339),
		"database": status,
	})
}
