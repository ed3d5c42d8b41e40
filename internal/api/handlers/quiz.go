package handlers

import (
	"net/http"

	"github.com/wonny/histolib/internal/dashboard"
	"github.com/wonny/histolib/pkg/logger"
)

// QuizHandler drives the quiz through the dashboard
type QuizHandler struct {
	dash   *dashboard.Dashboard
	logger *logger.Logger
}

// NewQuizHandler creates a new quiz handler
func NewQuizHandler(dash *dashboard.Dashboard, log *logger.Logger) *QuizHandler {
	return &QuizHandler{dash: dash, logger: log}
}

// AnswerRequest selects an option of the current question
type AnswerRequest struct {
	Option *int `json:"option" validate:"required,min=0"`
}

// Get returns the quiz state
// GET /api/quiz
func (h *QuizHandler) Get(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.dash.Snapshot().Quiz)
}

// Start begins a new pass
// POST /api/quiz/start
func (h *QuizHandler) Start(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, dashboard.Action{Type: dashboard.ActionStartQuiz})
}

// Answer records an answer for the current question
// POST /api/quiz/answer {"option": 1}
func (h *QuizHandler) Answer(w http.ResponseWriter, r *http.Request) {
	var req AnswerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.dispatch(w, r, dashboard.Action{Type: dashboard.ActionAnswer, Option: req.Option})
}

// Advance moves to the next question or completes the quiz
// POST /api/quiz/advance
func (h *QuizHandler) Advance(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, dashboard.Action{Type: dashboard.ActionAdvance})
}

func (h *QuizHandler) dispatch(w http.ResponseWriter, r *http.Request, a dashboard.Action) {
	snap, err := h.dash.Dispatch(r.Context(), a)
	if err != nil {
		respondJSON(w, statusFor(err), map[string]interface{}{
			"error": err.Error(),
			"quiz":  snap.Quiz,
		})
		return
	}
	respondJSON(w, http.StatusOK, snap.Quiz)
}
