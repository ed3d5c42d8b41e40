package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/histolib/internal/scheduler"
	"github.com/wonny/histolib/pkg/logger"
)

// JobRunner is the scheduler surface exposed over HTTP
type JobRunner interface {
	Status() []scheduler.JobStatus
	RunJob(name string) error
}

// SchedulerHandler reports and triggers scheduled jobs
type SchedulerHandler struct {
	jobs   JobRunner
	logger *logger.Logger
}

// NewSchedulerHandler creates a new scheduler handler
func NewSchedulerHandler(jobs JobRunner, log *logger.Logger) *SchedulerHandler {
	return &SchedulerHandler{jobs: jobs, logger: log}
}

// List returns every job with its run counts and recent runs
// GET /api/scheduler
func (h *SchedulerHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"jobs": h.jobs.Status(),
	})
}

// Run starts a job immediately; the result shows up in List
// POST /api/scheduler/{job}/run
func (h *SchedulerHandler) Run(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["job"]

	if err := h.jobs.RunJob(name); err != nil {
		if errors.Is(err, scheduler.ErrJobNotFound) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		h.logger.WithError(err).Error("Failed to start job")
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.logger.WithField("job", name).Info("Job triggered over API")
	respondJSON(w, http.StatusAccepted, map[string]string{
		"job":    name,
		"status": "started",
	})
}
