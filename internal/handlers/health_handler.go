package handlers

import (
	"net/http"
	"time"

	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/health"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/pkg/utils"
)

type HealthHandler struct {
	checker *health.HealthChecker
	started time.Time
}

func NewHealthHandler(checker *health.HealthChecker) *HealthHandler {
	return &HealthHandler{checker: checker, started: time.Now()}
}

// BasicHealth answers as long as the process serves requests.
func (h *HealthHandler) BasicHealth(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
	})
}

// ReadinessHealth is 503 while the database is unreachable. Redis being
// down only shows up in the body.
func (h *HealthHandler) ReadinessHealth(w http.ResponseWriter, r *http.Request) {
	h.respond(w, h.checker.CheckBasic(r.Context()))
}

// DetailedHealth adds host memory and disk usage.
func (h *HealthHandler) DetailedHealth(w http.ResponseWriter, r *http.Request) {
	h.respond(w, h.checker.CheckDetailed(r.Context()))
}

func (h *HealthHandler) respond(w http.ResponseWriter, status health.HealthStatus) {
	code := http.StatusOK
	if status.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	utils.JSON(w, code, status)
}
