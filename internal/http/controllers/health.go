package controllers

import (
	"net/http"

	"github.com/dropDatabas3/taskhub/internal/http/helpers"
	"github.com/dropDatabas3/taskhub/internal/http/services"
)

type HealthController struct{ service services.HealthService }

func NewHealthController(service services.HealthService) *HealthController {
	return &HealthController{service: service}
}

// Health GET /health
func (c *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	resp, ok := c.service.Check(r.Context())
	status := http.StatusOK
	if !ok {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Cache-Control", "no-store")
	helpers.WriteJSON(w, status, resp)
}
