package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"attendsync/app/dto"
	"attendsync/app/models"
	"attendsync/app/services"
)

type ScheduleController struct {
	Scheduler *services.SchedulerService
}

func NewScheduleController(scheduler *services.SchedulerService) *ScheduleController {
	return &ScheduleController{Scheduler: scheduler}
}

// Jobs multiplexes the /admin/jobs collection: GET lists, POST creates.
func (c *ScheduleController) Jobs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		jobs, err := c.Scheduler.ListJobs()
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, jobs)
	case http.MethodPost:
		var req dto.ReportJobRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		job := jobFromRequest(req)
		if err := c.Scheduler.CreateJob(&job); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, job)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// Job handles a single job by id: GET, PUT, DELETE.
func (c *ScheduleController) Job(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.URL.Query().Get("id"), 10, 32)
	if err != nil || id == 0 {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	switch r.Method {
	case http.MethodGet:
		job, err := c.Scheduler.GetJob(uint(id))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, job)
	case http.MethodPut:
		var req dto.ReportJobRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		job := jobFromRequest(req)
		job.ID = uint(id)
		if err := c.Scheduler.UpdateJob(&job); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, job)
	case http.MethodDelete:
		if err := c.Scheduler.DeleteJob(uint(id)); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// History lists run outcomes, optionally scoped to one job.
func (c *ScheduleController) History(w http.ResponseWriter, r *http.Request) {
	jobID, _ := strconv.ParseUint(r.URL.Query().Get("job_id"), 10, 32)
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	runs, err := c.Scheduler.History(uint(jobID), limit)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func jobFromRequest(req dto.ReportJobRequest) models.ReportJob {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	format := req.Format
	if format == "" {
		format = "xlsx"
	}
	return models.ReportJob{
		Name:         req.Name,
		ReportType:   req.ReportType,
		ScheduleType: req.ScheduleType,
		ScheduleTime: req.ScheduleTime,
		ScheduleDay:  req.ScheduleDay,
		Recipients:   req.Recipients,
		Filters:      req.Filters,
		Format:       format,
		IsActive:     active,
	}
}
