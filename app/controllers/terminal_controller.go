package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"attendsync/app/dto"
	"attendsync/app/repo"
)

// TerminalController is the surface the out-of-process consumer talks to:
// heartbeat, claim the pending queue, and write back terminal outcomes.
type TerminalController struct {
	Devices  *repo.DeviceRepository
	Commands *repo.CommandRepository
}

func NewTerminalController(devices *repo.DeviceRepository, commands *repo.CommandRepository) *TerminalController {
	return &TerminalController{Devices: devices, Commands: commands}
}

func (c *TerminalController) Heartbeat(w http.ResponseWriter, r *http.Request) {
	var req dto.HeartbeatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Serial == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if err := c.Devices.Heartbeat(req.Serial, time.Now()); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Pending returns a device's open queue in dispatch order.
func (c *TerminalController) Pending(w http.ResponseWriter, r *http.Request) {
	serial := r.URL.Query().Get("serial")
	if serial == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	cmds, err := c.Commands.ListPending(serial)
	if err != nil {
		writeErr(w, err)
		return
	}
	out := make([]dto.CommandView, 0, len(cmds))
	for _, cmd := range cmds {
		out = append(out, dto.CommandView{
			ID:         cmd.ID,
			Payload:    cmd.Payload,
			Sequence:   cmd.Sequence,
			RetryCount: cmd.RetryCount,
			CreatedAt:  cmd.CreatedAt.Unix(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (c *TerminalController) Complete(w http.ResponseWriter, r *http.Request) {
	var req dto.CompleteCommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CommandID == 0 {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if err := c.Commands.MarkTerminal(req.CommandID, req.Status, req.Response); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Retry records a transient failure; the command stays pending with a bumped
// retry count.
func (c *TerminalController) Retry(w http.ResponseWriter, r *http.Request) {
	var req dto.RetryCommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CommandID == 0 {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if err := c.Commands.IncrementRetry(req.CommandID); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Queue is the admin inspection view over a device's full command log.
func (c *TerminalController) Queue(w http.ResponseWriter, r *http.Request) {
	serial := r.URL.Query().Get("serial")
	if serial == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	includeTerminal := r.URL.Query().Get("include_terminal") == "true"
	cmds, err := c.Commands.ListByDevice(serial, includeTerminal)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cmds)
}
