package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/wonny/histolib/internal/detail"
	"github.com/wonny/histolib/pkg/logger"
)

// DetailHandler serves composed detail views
type DetailHandler struct {
	loader *detail.Loader
	logger *logger.Logger
}

// NewDetailHandler creates a new detail handler
func NewDetailHandler(loader *detail.Loader, log *logger.Logger) *DetailHandler {
	return &DetailHandler{loader: loader, logger: log}
}

// Get fetches and composes one ticker's detail view.
// A failed stats fetch answers 502 with the failed status as body.
// GET /api/tickers/{ticker}/detail
func (h *DetailHandler) Get(w http.ResponseWriter, r *http.Request) {
	ticker := strings.TrimSpace(mux.Vars(r)["ticker"])
	if err := validate.Var(ticker, "required,max=16"); err != nil {
		respondError(w, http.StatusBadRequest, "invalid ticker")
		return
	}

	status := h.loader.Fetch(r.Context(), ticker)
	if status.State == detail.StateFailed {
		respondJSON(w, http.StatusBadGateway, status)
		return
	}
	respondJSON(w, http.StatusOK, status)
}
