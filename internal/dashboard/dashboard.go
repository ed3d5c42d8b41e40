// Package dashboard is the single entry point for user actions. It owns the
// current sort/filter view and routes every action to the component that
// handles it.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/wonny/histolib/internal/contracts"
	"github.com/wonny/histolib/internal/detail"
	"github.com/wonny/histolib/internal/index"
	"github.com/wonny/histolib/internal/quiz"
	"github.com/wonny/histolib/internal/registry"
	"github.com/wonny/histolib/pkg/format"
	"github.com/wonny/histolib/pkg/logger"
)

// ErrUnknownAction is returned for an unrecognized action type
var ErrUnknownAction = errors.New("unknown action")

// ActionType names a user action
type ActionType string

const (
	ActionStartQuiz   ActionType = "startQuiz"
	ActionAnswer      ActionType = "answer"
	ActionAdvance     ActionType = "advance"
	ActionSetSort     ActionType = "setSort"
	ActionSetFilter   ActionType = "setFilter"
	ActionReload      ActionType = "reload"
	ActionOpenDetail  ActionType = "openDetail"
	ActionCloseDetail ActionType = "closeDetail"
)

// Action is one user action. Only the field matching Type is read.
type Action struct {
	Type   ActionType `json:"type" validate:"required,oneof=startQuiz answer advance setSort setFilter reload openDetail closeDetail"`
	Option *int       `json:"option,omitempty" validate:"omitempty,min=0"`
	Sort   string     `json:"sort,omitempty"`
	Query  string     `json:"query,omitempty" validate:"max=64"`
	Ticker string     `json:"ticker,omitempty" validate:"required_if=Type openDetail,max=16"`
}

// CardView is one card in display order
type CardView struct {
	registry.Card
	Visible bool          `json:"visible"`
	Pills   []format.Pill `json:"pills"`
}

// Snapshot is the full presentation state after an action
type Snapshot struct {
	List   registry.ListStatus `json:"list"`
	View   index.View          `json:"view"`
	Cards  []CardView          `json:"cards"`
	Detail detail.Status       `json:"detail"`
	Quiz   quiz.State          `json:"quiz"`
}

// Dashboard routes actions to the registry, index, detail loader and quiz.
// ⭐ SSOT: 사용자 액션 디스패치는 여기서만
type Dashboard struct {
	registry *registry.Registry
	loader   *registry.Loader
	details  *detail.Loader
	quiz     *quiz.Engine
	logger   *logger.Logger

	mu   sync.RWMutex
	view index.View
}

// New creates a dashboard over already-built components
func New(reg *registry.Registry, loader *registry.Loader, details *detail.Loader, engine *quiz.Engine, log *logger.Logger) *Dashboard {
	return &Dashboard{
		registry: reg,
		loader:   loader,
		details:  details,
		quiz:     engine,
		logger:   log,
	}
}

// Dispatch applies a and returns the resulting snapshot. Reload and
// openDetail block until their fetches settle.
func (d *Dashboard) Dispatch(ctx context.Context, a Action) (Snapshot, error) {
	log := d.logger.WithField("action", string(a.Type))

	var err error
	switch a.Type {
	case ActionStartQuiz:
		d.quiz.Start()

	case ActionAnswer:
		if a.Option == nil {
			err = fmt.Errorf("%w: missing option", quiz.ErrInvalidOption)
			break
		}
		_, err = d.quiz.Answer(*a.Option)

	case ActionAdvance:
		_, err = d.quiz.Advance(ctx)

	case ActionSetSort:
		var mode index.SortMode
		mode, err = index.ParseSortMode(a.Sort)
		if err == nil {
			d.mu.Lock()
			d.view.Sort = mode
			d.mu.Unlock()
		}

	case ActionSetFilter:
		d.mu.Lock()
		d.view.Query = a.Query
		d.mu.Unlock()

	case ActionReload:
		err = d.loader.Reload(ctx)

	case ActionOpenDetail:
		d.details.Open(ctx, a.Ticker)

	case ActionCloseDetail:
		d.details.Close()

	default:
		err = fmt.Errorf("%w %q", ErrUnknownAction, a.Type)
	}

	if err != nil {
		log.WithError(err).Debug("Action rejected")
	}
	return d.Snapshot(), err
}

// View returns the current sort/filter selection
func (d *Dashboard) View() index.View {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.view
}

// Cards returns every known card ordered and flagged by the current view
func (d *Dashboard) Cards() []CardView {
	return d.CardsFor(d.View())
}

// CardsFor orders and flags cards by view without changing the current one
func (d *Dashboard) CardsFor(view index.View) []CardView {
	cards := d.registry.Cards()
	byTicker := make(map[string]registry.Card, len(cards))
	tickers := make([]string, 0, len(cards))
	for _, c := range cards {
		byTicker[c.Ticker] = c
		tickers = append(tickers, c.Ticker)
	}

	// Sort against this copy, not the live registry, so order and contents agree.
	lookup := index.LookupFunc(func(t string) (contracts.Derived, bool) {
		c, ok := byTicker[t]
		return c.Derived, ok
	})
	rows := index.Apply(tickers, view, lookup)

	out := make([]CardView, 0, len(rows))
	for _, r := range rows {
		c := byTicker[r.Ticker]
		out = append(out, CardView{Card: c, Visible: r.Visible, Pills: c.Pills()})
	}
	return out
}

// Snapshot returns the full presentation state
func (d *Dashboard) Snapshot() Snapshot {
	return Snapshot{
		List:   d.registry.List(),
		View:   d.View(),
		Cards:  d.Cards(),
		Detail: d.details.Current(),
		Quiz:   d.quiz.State(),
	}
}
