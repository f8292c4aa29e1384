package controllers

import (
	"encoding/json"
	"net/http"

	"attendsync/app/dto"
	"attendsync/app/models"
	"attendsync/app/repo"
)

type DeviceController struct {
	Devices *repo.DeviceRepository
}

func NewDeviceController(devices *repo.DeviceRepository) *DeviceController {
	return &DeviceController{Devices: devices}
}

func (c *DeviceController) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Serial == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	direction := req.Direction
	if direction == "" {
		direction = "both"
	}
	d := models.Device{Serial: req.Serial, Name: req.Name, Direction: direction, Status: models.DeviceOffline}
	if err := c.Devices.Upsert(&d); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (c *DeviceController) List(w http.ResponseWriter, r *http.Request) {
	devices, err := c.Devices.ListAll()
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, devices)
}
