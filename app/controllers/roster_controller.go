package controllers

import (
	"encoding/json"
	"net/http"

	"attendsync/app/dto"
	"attendsync/app/models"
	"attendsync/app/repo"
	"attendsync/app/services"
)

type RosterController struct {
	Roster    *services.RosterService
	Employees *repo.EmployeeRepository
}

func NewRosterController(roster *services.RosterService, employees *repo.EmployeeRepository) *RosterController {
	return &RosterController{Roster: roster, Employees: employees}
}

// Transfer moves employees between departments and reports how many sync
// commands were queued for the fleet.
func (c *RosterController) Transfer(w http.ResponseWriter, r *http.Request) {
	var req dto.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	queued, err := c.Roster.Transfer(req.Codes, req.Department)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.RosterChangeResponse{CommandsQueued: queued})
}

func (c *RosterController) Resign(w http.ResponseWriter, r *http.Request) {
	var req dto.RosterChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	queued, err := c.Roster.Resign(req.Codes)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.RosterChangeResponse{CommandsQueued: queued})
}

func (c *RosterController) Rehire(w http.ResponseWriter, r *http.Request) {
	var req dto.RosterChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	queued, err := c.Roster.Rehire(req.Codes)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.RosterChangeResponse{CommandsQueued: queued})
}

func (c *RosterController) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" || req.Name == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	e := models.Employee{
		Code:       req.Code,
		Name:       req.Name,
		Privilege:  req.Privilege,
		Password:   req.Password,
		CardNumber: req.CardNumber,
		Department: req.Department,
		Status:     models.EmployeeActive,
	}
	if err := c.Employees.Create(&e); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (c *RosterController) ListEmployees(w http.ResponseWriter, r *http.Request) {
	emps, err := c.Employees.List()
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, emps)
}
