// Package quiz runs the investing quiz: one pass over a fixed question bank,
// one-shot answers, and a persisted best score.
package quiz

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/wonny/histolib/internal/contracts"
	"github.com/wonny/histolib/pkg/logger"
	"github.com/wonny/histolib/pkg/metrics"
)

var (
	ErrNotInProgress   = errors.New("quiz is not in progress")
	ErrAlreadyAnswered = errors.New("question already answered")
	ErrNotAnswered     = errors.New("current question not answered yet")
	ErrInvalidOption   = errors.New("option index out of range")
)

// Phase of the quiz state machine
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseInProgress Phase = "in_progress"
	PhaseCompleted  Phase = "completed"
)

// Answer is one recorded answer; immutable once appended
type Answer struct {
	QuestionIndex  int  `json:"question_index"`
	SelectedOption int  `json:"selected_option"`
	WasCorrect     bool `json:"was_correct"`
}

// Feedback is shown after the current question has been answered
type Feedback struct {
	Correct       bool   `json:"correct"`
	CorrectOption int    `json:"correct_option"`
	Explanation   string `json:"explanation"`
	NextLabel     string `json:"next_label"`
}

// Result summarizes a completed quiz
type Result struct {
	Score      int     `json:"score"`
	Total      int     `json:"total"`
	Correct    int     `json:"correct"`
	Incorrect  int     `json:"incorrect"`
	Percentage float64 `json:"percentage"`
	Band       Band    `json:"band"`
	NewBest    bool    `json:"new_best"`
}

// State is a read-only snapshot of the engine
type State struct {
	Phase                Phase     `json:"phase"`
	CurrentQuestionIndex int       `json:"current_question_index"`
	Score                int       `json:"score"`
	Answers              []Answer  `json:"answers"`
	BestScore            *int      `json:"best_score"`
	Total                int       `json:"total"`
	Question             *Question `json:"question,omitempty"`
	Feedback             *Feedback `json:"feedback,omitempty"`
	Result               *Result   `json:"result,omitempty"`
}

// BestLabel renders the best score as score/total, empty when none
func (s State) BestLabel() string {
	if s.BestScore == nil {
		return ""
	}
	return fmt.Sprintf("%d/%d", *s.BestScore, s.Total)
}

// Engine is the quiz state machine. Safe for concurrent use.
// ⭐ SSOT: 퀴즈 상태는 이 엔진만 변경
type Engine struct {
	bank   Bank
	store  contracts.ScoreStore
	logger *logger.Logger

	mu      sync.Mutex
	phase   Phase
	current int
	score   int
	answers []Answer
	best    *int
	result  *Result
}

// NewEngine creates an idle engine. Call LoadBest to pick up a stored best score.
func NewEngine(bank Bank, store contracts.ScoreStore, log *logger.Logger) *Engine {
	return &Engine{
		bank:   bank,
		store:  store,
		logger: log,
		phase:  PhaseIdle,
	}
}

// LoadBest reads the persisted best score
func (e *Engine) LoadBest(ctx context.Context) error {
	score, ok, err := e.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load best score: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if ok && (e.best == nil || score > *e.best) {
		e.best = &score
	}
	return nil
}

// Start begins a fresh pass from any phase. The best score is kept.
func (e *Engine) Start() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.phase = PhaseInProgress
	e.current = 0
	e.score = 0
	e.answers = make([]Answer, 0, len(e.bank))
	e.result = nil

	e.logger.WithField("questions", len(e.bank)).Debug("Quiz started")
	return e.snapshot()
}

// Answer records the selected option for the current question
func (e *Engine) Answer(option int) (State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != PhaseInProgress {
		return e.snapshot(), ErrNotInProgress
	}
	if e.answered() {
		return e.snapshot(), ErrAlreadyAnswered
	}
	q := e.bank[e.current]
	if option < 0 || option >= len(q.Options) {
		return e.snapshot(), fmt.Errorf("%w: %d", ErrInvalidOption, option)
	}

	correct := option == q.Correct
	e.answers = append(e.answers, Answer{
		QuestionIndex:  e.current,
		SelectedOption: option,
		WasCorrect:     correct,
	})
	if correct {
		e.score++
	}
	return e.snapshot(), nil
}

// Advance moves past the answered current question. Past the last
// question the quiz completes and the best score is updated.
func (e *Engine) Advance(ctx context.Context) (State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != PhaseInProgress {
		return e.snapshot(), ErrNotInProgress
	}
	if !e.answered() {
		return e.snapshot(), ErrNotAnswered
	}

	e.current++
	if e.current >= len(e.bank) {
		// Persisting the best score outlives the caller.
		e.complete(context.WithoutCancel(ctx))
	}
	return e.snapshot(), nil
}

// State returns the current snapshot
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot()
}

// BestScore returns the best score; ok is false when no quiz was ever completed
func (e *Engine) BestScore() (score int, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.best == nil {
		return 0, false
	}
	return *e.best, true
}

// Total is the number of questions
func (e *Engine) Total() int {
	return len(e.bank)
}

// answered reports whether the current question already has an answer
func (e *Engine) answered() bool {
	return len(e.answers) > e.current
}

func (e *Engine) complete(ctx context.Context) {
	total := len(e.bank)
	pct := float64(e.score) / float64(total) * 100

	res := &Result{
		Score:      e.score,
		Total:      total,
		Correct:    e.score,
		Incorrect:  total - e.score,
		Percentage: pct,
		Band:       BandFor(pct),
	}

	if e.best == nil || e.score > *e.best {
		best := e.score
		res.NewBest = true

		// The in-memory best stays raised even if persisting fails.
		stored, raised, err := e.store.Save(ctx, best)
		switch {
		case err != nil:
			e.logger.WithError(err).WithField("score", best).Error("Failed to persist best score")
		case !raised:
			// Another writer already stored an equal or higher score.
			best = stored
			res.NewBest = false
		}
		e.best = &best
	}

	e.phase = PhaseCompleted
	e.result = res
	metrics.QuizCompletions.WithLabelValues(res.Band.Key).Inc()

	e.logger.WithFields(map[string]interface{}{
		"score":    res.Score,
		"total":    res.Total,
		"band":     res.Band.Key,
		"new_best": res.NewBest,
	}).Info("Quiz completed")
}

func (e *Engine) snapshot() State {
	s := State{
		Phase:                e.phase,
		CurrentQuestionIndex: e.current,
		Score:                e.score,
		Answers:              append([]Answer(nil), e.answers...),
		Total:                len(e.bank),
	}
	if e.best != nil {
		best := *e.best
		s.BestScore = &best
	}

	switch e.phase {
	case PhaseInProgress:
		q := e.bank[e.current]
		s.Question = &q
		if e.answered() {
			a := e.answers[e.current]
			next := "Next Question →"
			if e.current == len(e.bank)-1 {
				next = "See Results →"
			}
			s.Feedback = &Feedback{
				Correct:       a.WasCorrect,
				CorrectOption: q.Correct,
				Explanation:   q.Explanation,
				NextLabel:     next,
			}
		}
	case PhaseCompleted:
		res := *e.result
		s.Result = &res
	}
	return s
}
