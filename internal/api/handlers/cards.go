package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/histolib/internal/dashboard"
	"github.com/wonny/histolib/internal/index"
	"github.com/wonny/histolib/internal/registry"
	"github.com/wonny/histolib/pkg/logger"
)

// CardsHandler serves the card grid
// ⭐ SSOT: 카드 API 핸들러는 이 구조체에서만
type CardsHandler struct {
	dash   *dashboard.Dashboard
	logger *logger.Logger
}

// NewCardsHandler creates a new cards handler
func NewCardsHandler(dash *dashboard.Dashboard, log *logger.Logger) *CardsHandler {
	return &CardsHandler{dash: dash, logger: log}
}

// CardsResponse is the card grid in display order
type CardsResponse struct {
	List  registry.ListStatus  `json:"list"`
	View  index.View           `json:"view"`
	Cards []dashboard.CardView `json:"cards"`
}

// List returns every card ordered and flagged by the view.
// Query parameters override the current view for this request only.
// GET /api/cards?sort=change-desc&q=aa
func (h *CardsHandler) List(w http.ResponseWriter, r *http.Request) {
	view := h.dash.View()

	q := r.URL.Query()
	if _, ok := q["sort"]; ok {
		mode, err := index.ParseSortMode(q.Get("sort"))
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		view.Sort = mode
	}
	if _, ok := q["q"]; ok {
		view.Query = q.Get("q")
	}

	respondJSON(w, http.StatusOK, CardsResponse{
		List:  h.dash.Snapshot().List,
		View:  view,
		Cards: h.dash.CardsFor(view),
	})
}

// Get returns one card
// GET /api/cards/{ticker}
func (h *CardsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ticker := mux.Vars(r)["ticker"]

	for _, c := range h.dash.Cards() {
		if c.Ticker == ticker {
			respondJSON(w, http.StatusOK, c)
			return
		}
	}
	respondError(w, http.StatusNotFound, "unknown ticker "+ticker)
}

// Reload refetches the ticker list and every card. Blocks until settled.
// POST /api/cards/reload
func (h *CardsHandler) Reload(w http.ResponseWriter, r *http.Request) {
	snap, err := h.dash.Dispatch(r.Context(), dashboard.Action{Type: dashboard.ActionReload})
	if err != nil {
		h.logger.WithError(err).Error("Card reload failed")
		respondJSON(w, statusFor(err), map[string]interface{}{
			"error": err.Error(),
			"list":  snap.List,
		})
		return
	}

	respondJSON(w, http.StatusOK, CardsResponse{
		List:  snap.List,
		View:  snap.View,
		Cards: snap.Cards,
	})
}
