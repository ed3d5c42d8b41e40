package registry

import (
	"sync"

	"github.com/wonny/histolib/internal/contracts"
	"github.com/wonny/histolib/pkg/logger"
	"github.com/wonny/histolib/pkg/metrics"
)

// ListState describes the ticker list as a whole
type ListState string

const (
	ListLoading ListState = "loading"
	ListReady   ListState = "ready"
	ListEmpty   ListState = "empty" // the API returned no tickers
	ListError   ListState = "error" // the ticker list itself could not be fetched
)

// ListStatus is the whole-view state
type ListStatus struct {
	State   ListState `json:"state"`
	Message string    `json:"message,omitempty"`
}

// Card is everything the presentation layer needs to draw one ticker
type Card struct {
	contracts.CardEntry
	StatsState   contracts.StatsState     `json:"stats_state"`
	HistoryState contracts.HistoryState   `json:"history_state"`
	Stats        *contracts.StatsSnapshot `json:"stats,omitempty"`
	Sparkline    []float64                `json:"sparkline,omitempty"`
}

// Event is emitted after every applied change
type Event struct {
	Generation uint64     `json:"generation"`
	Card       *Card      `json:"card,omitempty"`
	List       ListStatus `json:"list"`
}

// Registry is the per-ticker derived-stats store.
// ⭐ SSOT: 카드 데이터 저장소는 이 구조체에서만
//
// Writes carry the generation token captured when their fetch was issued;
// writes from a superseded generation are discarded.
type Registry struct {
	mu         sync.RWMutex
	generation uint64
	order      []contracts.Ticker
	cards      map[contracts.Ticker]*Card
	list       ListStatus

	subMu   sync.RWMutex
	nextSub int
	subs    map[int]func(Event)

	logger *logger.Logger
}

// New creates an empty registry
func New(log *logger.Logger) *Registry {
	return &Registry{
		cards:  make(map[contracts.Ticker]*Card),
		list:   ListStatus{State: ListLoading},
		subs:   make(map[int]func(Event)),
		logger: log,
	}
}

// BeginList starts a full reload and returns its generation token.
// Existing cards stay visible until Begin replaces them.
func (r *Registry) BeginList() uint64 {
	r.mu.Lock()
	r.generation++
	gen := r.generation
	r.list = ListStatus{State: ListLoading}
	r.mu.Unlock()

	r.emit(Event{Generation: gen, List: ListStatus{State: ListLoading}})
	return gen
}

// Begin resets the registry to tickers, each with zero defaults.
// Returns false when gen is no longer current.
func (r *Registry) Begin(gen uint64, tickers []contracts.Ticker) bool {
	r.mu.Lock()
	if gen != r.generation {
		r.mu.Unlock()
		r.discard()
		return false
	}

	r.order = make([]contracts.Ticker, 0, len(tickers))
	r.cards = make(map[contracts.Ticker]*Card, len(tickers))
	for _, t := range tickers {
		if _, dup := r.cards[t]; dup {
			continue
		}
		r.order = append(r.order, t)
		r.cards[t] = &Card{
			CardEntry:    contracts.CardEntry{Ticker: t},
			StatsState:   contracts.StatsLoading,
			HistoryState: contracts.HistoryLoading,
		}
	}

	if len(r.order) == 0 {
		r.list = ListStatus{State: ListEmpty, Message: "No tickers found"}
	} else {
		r.list = ListStatus{State: ListReady}
	}
	list := r.list
	r.mu.Unlock()

	r.emit(Event{Generation: gen, List: list})
	return true
}

// FailList records that the ticker list could not be fetched
func (r *Registry) FailList(gen uint64, err error) bool {
	r.mu.Lock()
	if gen != r.generation {
		r.mu.Unlock()
		r.discard()
		return false
	}
	r.list = ListStatus{State: ListError, Message: "Error loading tickers: " + err.Error()}
	list := r.list
	r.mu.Unlock()

	r.emit(Event{Generation: gen, List: list})
	return true
}

// ApplyStats overwrites the ticker's derived metrics wholesale
func (r *Registry) ApplyStats(gen uint64, ticker contracts.Ticker, stats *contracts.StatsSnapshot) bool {
	return r.update(gen, ticker, func(c *Card) {
		c.Derived = contracts.DeriveFrom(stats)
		c.Stats = stats
		c.StatsState = contracts.StatsReady
		metrics.CardLoads.WithLabelValues("stats", string(contracts.StatsReady)).Inc()
	})
}

// FailStats marks the ticker pending; Derived keeps its last good value
func (r *Registry) FailStats(gen uint64, ticker contracts.Ticker) bool {
	return r.update(gen, ticker, func(c *Card) {
		c.StatsState = contracts.StatsPending
		metrics.CardLoads.WithLabelValues("stats", string(contracts.StatsPending)).Inc()
	})
}

// ApplyHistory stores the sparkline, or the no-history state when empty
func (r *Registry) ApplyHistory(gen uint64, ticker contracts.Ticker, hist contracts.PriceHistory) bool {
	if len(hist) == 0 {
		return r.FailHistory(gen, ticker)
	}
	closes := hist.Closes()
	return r.update(gen, ticker, func(c *Card) {
		c.Sparkline = closes
		c.HistoryState = contracts.HistoryReady
		metrics.CardLoads.WithLabelValues("history", string(contracts.HistoryReady)).Inc()
	})
}

// FailHistory switches the ticker to the explicit no-history state
func (r *Registry) FailHistory(gen uint64, ticker contracts.Ticker) bool {
	return r.update(gen, ticker, func(c *Card) {
		c.Sparkline = nil
		c.HistoryState = contracts.HistoryNone
		metrics.CardLoads.WithLabelValues("history", string(contracts.HistoryNone)).Inc()
	})
}

func (r *Registry) update(gen uint64, ticker contracts.Ticker, fn func(c *Card)) bool {
	r.mu.Lock()
	card, ok := r.cards[ticker]
	if gen != r.generation || !ok {
		r.mu.Unlock()
		r.discard()
		return false
	}

	// Copy-on-write so snapshots handed out earlier never change underneath readers.
	next := *card
	fn(&next)
	r.cards[ticker] = &next
	out := next
	list := r.list
	r.mu.Unlock()

	r.emit(Event{Generation: gen, Card: &out, List: list})
	return true
}

func (r *Registry) discard() {
	metrics.StaleResults.WithLabelValues("registry").Inc()
}

// Lookup returns the derived metrics for ticker; ok is false without an entry
func (r *Registry) Lookup(ticker contracts.Ticker) (contracts.Derived, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	card, ok := r.cards[ticker]
	if !ok {
		return contracts.Derived{}, false
	}
	return card.Derived, true
}

// Card returns a copy of one card
func (r *Registry) Card(ticker contracts.Ticker) (Card, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	card, ok := r.cards[ticker]
	if !ok {
		return Card{}, false
	}
	return *card, true
}

// Tickers returns the known ticker set in load order
func (r *Registry) Tickers() []contracts.Ticker {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]contracts.Ticker, len(r.order))
	copy(out, r.order)
	return out
}

// Cards returns copies of all cards in load order
func (r *Registry) Cards() []Card {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Card, 0, len(r.order))
	for _, t := range r.order {
		out = append(out, *r.cards[t])
	}
	return out
}

// List returns the whole-view state
func (r *Registry) List() ListStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.list
}

// Generation returns the current generation token
func (r *Registry) Generation() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.generation
}

// Subscribe registers fn for every applied change and returns an unsubscribe func.
// fn runs on the writer's goroutine and must not block.
func (r *Registry) Subscribe(fn func(Event)) func() {
	r.subMu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subs[id] = fn
	r.subMu.Unlock()

	return func() {
		r.subMu.Lock()
		delete(r.subs, id)
		r.subMu.Unlock()
	}
}

func (r *Registry) emit(ev Event) {
	r.subMu.RLock()
	defer r.subMu.RUnlock()
	for _, fn := range r.subs {
		fn(ev)
	}
}
