package controllers

import (
	"net/http"

	"attendsync/app/services"
)

type HealthController struct {
	Health *services.HealthService
	Alerts *services.AlertService
}

func NewHealthController(health *services.HealthService, alerts *services.AlertService) *HealthController {
	return &HealthController{Health: health, Alerts: alerts}
}

// Get serves one device's assessment, or the whole fleet without a serial.
func (c *HealthController) Get(w http.ResponseWriter, r *http.Request) {
	serial := r.URL.Query().Get("serial")
	if serial != "" {
		a, err := c.Health.Score(serial)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, a)
		return
	}
	all, err := c.Health.ScoreAll()
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, all)
}

// CurrentAlerts derives the alert set on demand, same rules the monitor loop
// applies on its ticks.
func (c *HealthController) CurrentAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := c.Alerts.Evaluate()
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, alerts)
}
