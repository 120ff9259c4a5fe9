package service

import (
	"context"
	"sync"
	"time"

	"github.com/pageza/macrolog/backend/internal/logger"
	"github.com/pageza/macrolog/backend/internal/model"
)

// SearchState is the lifecycle position of a SearchScheduler
type SearchState string

const (
	SearchIdle      SearchState = "idle"
	SearchPending   SearchState = "pending"
	SearchSearching SearchState = "searching"
)

// SearchResult is one published candidate list. Generation increases with
// every query change, so receivers can tell results apart.
type SearchResult struct {
	Query      string              `json:"query"`
	Generation uint64              `json:"generation"`
	Candidates []model.MacroRecord `json:"candidates"`
}

const (
	DefaultSearchDebounce = 500 * time.Millisecond
	DefaultSearchTimeout  = 8 * time.Second
)

// SchedulerConfig holds the timing of a SearchScheduler
type SchedulerConfig struct {
	Debounce time.Duration
	Timeout  time.Duration
}

// SearchScheduler debounces query changes and keeps at most one search
// cycle active. A cycle that has been superseded never publishes.
//
// The publish callback runs on the scheduler's goroutines and must not call
// back into the scheduler.
type SearchScheduler struct {
	searcher Searcher
	debounce time.Duration
	timeout  time.Duration
	publish  func(SearchResult)
	log      *logger.Logger

	// publishMu serializes the generation check with delivery
	publishMu sync.Mutex

	mu         sync.Mutex
	generation uint64
	state      SearchState
	timer      *time.Timer
	cancel     context.CancelFunc
	candidates []model.MacroRecord
	closed     bool
}

// NewSearchScheduler creates a scheduler that reports through publish
func NewSearchScheduler(searcher Searcher, cfg SchedulerConfig, publish func(SearchResult), log *logger.Logger) *SearchScheduler {
	if log == nil {
		log = logger.Discard()
	}
	if publish == nil {
		publish = func(SearchResult) {}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultSearchTimeout
	}
	return &SearchScheduler{
		searcher:   searcher,
		debounce:   cfg.Debounce,
		timeout:    cfg.Timeout,
		publish:    publish,
		log:        log.WithComponent("search_scheduler"),
		state:      SearchIdle,
		candidates: []model.MacroRecord{},
	}
}

// OnQueryChange starts a new cycle for text, superseding any pending timer
// or in-flight request.
func (s *SearchScheduler) OnQueryChange(text string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.generation++
	gen := s.generation
	s.stopLocked()

	query, ok := NormalizeQuery(text)
	if !ok {
		s.state = SearchIdle
		s.candidates = []model.MacroRecord{}
		s.mu.Unlock()
		s.deliver(gen, SearchResult{Query: query, Generation: gen, Candidates: []model.MacroRecord{}})
		return
	}

	s.state = SearchPending
	s.timer = time.AfterFunc(s.debounce, func() {
		s.run(gen, query)
	})
	s.mu.Unlock()
}

func (s *SearchScheduler) run(gen uint64, query string) {
	s.mu.Lock()
	if s.closed || gen != s.generation {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	s.timer = nil
	s.cancel = cancel
	s.state = SearchSearching
	s.mu.Unlock()

	records, err := s.searcher.Search(ctx, query)
	cancel()
	if err != nil {
		s.log.Warn("search failed, publishing no results", "query", query, "generation", gen, "error", err)
		records = nil
	}
	if records == nil {
		records = []model.MacroRecord{}
	}

	s.mu.Lock()
	if s.closed || gen != s.generation {
		s.mu.Unlock()
		s.log.Debug("discarding superseded search", "query", query, "generation", gen)
		return
	}
	s.cancel = nil
	s.state = SearchIdle
	s.candidates = records
	s.mu.Unlock()

	s.deliver(gen, SearchResult{Query: query, Generation: gen, Candidates: records})
}

// deliver publishes res unless a newer cycle started in the meantime
func (s *SearchScheduler) deliver(gen uint64, res SearchResult) {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	s.mu.Lock()
	current := !s.closed && gen == s.generation
	s.mu.Unlock()
	if current {
		s.publish(res)
	}
}

func (s *SearchScheduler) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// State reports the current lifecycle position
func (s *SearchScheduler) State() SearchState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Candidates returns the most recently published candidate list
func (s *SearchScheduler) Candidates() []model.MacroRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.MacroRecord, len(s.candidates))
	copy(out, s.candidates)
	return out
}

// Close cancels the pending timer and any in-flight request. Later calls
// to OnQueryChange are ignored.
func (s *SearchScheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.stopLocked()
	s.state = SearchIdle
}
