package handlers

import (
	"net/http"

	"github.com/wonny/histolib/internal/dashboard"
	"github.com/wonny/histolib/pkg/logger"
)

// ActionsHandler accepts any dashboard action and returns the full snapshot
type ActionsHandler struct {
	dash   *dashboard.Dashboard
	logger *logger.Logger
}

// NewActionsHandler creates a new actions handler
func NewActionsHandler(dash *dashboard.Dashboard, log *logger.Logger) *ActionsHandler {
	return &ActionsHandler{dash: dash, logger: log}
}

// Dispatch applies one action
// POST /api/actions {"type": "setSort", "sort": "cagr-desc"}
func (h *ActionsHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	var a dashboard.Action
	if err := decodeJSON(r, &a); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap, err := h.dash.Dispatch(r.Context(), a)
	if err != nil {
		h.logger.WithError(err).WithField("action", string(a.Type)).Warn("Action failed")
		respondJSON(w, statusFor(err), map[string]interface{}{
			"error":    err.Error(),
			"snapshot": snap,
		})
		return
	}

	respondJSON(w, http.StatusOK, snap)
}

// Snapshot returns the full presentation state
// GET /api/snapshot
func (h *ActionsHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.dash.Snapshot())
}
