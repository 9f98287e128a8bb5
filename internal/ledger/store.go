// Package ledger owns the budget and expense list, validates every change,
// derives the category-filtered view, and keeps a key-value backend in sync.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/theirongolddev/cbudget/internal/model"

	"golang.org/x/sync/errgroup"
)

// ErrAmbiguousID means an id prefix matched more than one entry.
var ErrAmbiguousID = errors.New("ambiguous entry id")

// Store is the single owner of a ledger. Commands are serialized; it is
// safe for concurrent use.
type Store struct {
	backend Backend
	opts    options
	w       *writer

	mu       sync.Mutex
	budget   model.Budget
	entries  []model.Entry
	filter   string
	filtered []model.Entry
	closed   bool

	loadFailed  atomic.Int64
	clearFailed atomic.Int64
}

// Open creates a store over b and loads the persisted budget and entries.
// Load failures fall back to an unset budget and an empty list.
func Open(ctx context.Context, b Backend, opts ...Option) *Store {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	s := &Store{backend: b, opts: o}
	s.w = newWriter(b, o.timeout, o.log, s.reportError)
	s.bootstrap(ctx)
	return s
}

func (s *Store) bootstrap(ctx context.Context) {
	var (
		budget   model.Budget
		entries  []model.Entry
		repaired bool
		g        errgroup.Group
	)

	g.Go(func() error {
		var err error
		budget, err = s.loadBudget(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		entries, repaired, err = s.loadEntries(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.opts.log.Warn("ledger started with defaults", "err", err)
	}

	s.mu.Lock()
	s.budget = budget
	s.entries = entries
	s.recompute()
	if repaired {
		// Repaired ids must survive the next start.
		s.persistEntries()
	}
	s.mu.Unlock()

	s.opts.log.Info("ledger loaded",
		"budget_set", budget.IsSet,
		"entries", len(entries),
	)
}

func (s *Store) loadBudget(ctx context.Context) (model.Budget, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.timeout)
	defer cancel()

	raw, ok, err := s.backend.Get(ctx, KeyBudget)
	if err != nil {
		return model.Budget{}, s.loadError(KeyBudget, err)
	}
	if !ok {
		return model.Budget{}, nil
	}

	amount, valid := decodeBudget(raw)
	if !valid {
		return model.Budget{}, s.loadError(KeyBudget, fmt.Errorf("invalid budget %q", raw))
	}
	return model.Budget{Amount: amount, IsSet: true}, nil
}

// loadEntries reports whether the stored list needed repair.
func (s *Store) loadEntries(ctx context.Context) ([]model.Entry, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.timeout)
	defer cancel()

	raw, ok, err := s.backend.Get(ctx, KeyEntries)
	if err != nil {
		return nil, false, s.loadError(KeyEntries, err)
	}
	if !ok {
		return nil, false, nil
	}

	entries, err := decodeEntries(raw)
	if err != nil {
		return nil, false, s.loadError(KeyEntries, err)
	}
	entries, repaired := s.normalize(entries)
	return entries, repaired, nil
}

func (s *Store) loadError(key string, err error) error {
	s.loadFailed.Add(1)
	pe := &PersistenceError{Op: "load", Key: key, Err: err}
	s.reportError(pe)
	return pe
}

// normalize enforces id uniqueness on loaded data: entries without an id get
// one, and later duplicates of an id are dropped.
func (s *Store) normalize(entries []model.Entry) ([]model.Entry, bool) {
	seen := make(map[string]bool, len(entries))
	out := entries[:0]
	var assigned, dropped int
	for _, e := range entries {
		if e.ID == "" {
			e.ID = s.opts.newID()
			assigned++
		}
		if seen[e.ID] {
			dropped++
			continue
		}
		seen[e.ID] = true
		out = append(out, e)
	}
	if assigned == 0 && dropped == 0 {
		return out, false
	}
	s.opts.log.Warn("repaired stored entries",
		"ids_assigned", assigned,
		"duplicates_dropped", dropped,
	)
	return out, true
}

func (s *Store) reportError(pe *PersistenceError) {
	s.opts.log.Error("persistence failure",
		"op", pe.Op,
		"key", pe.Key,
		"err", pe.Err,
	)
	if s.opts.onError != nil {
		s.opts.onError(pe)
	}
}

// SetBudget makes amount the active budget. amount must be > 0.
func (s *Store) SetBudget(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return invalid(ReasonBudgetNotPositive)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	s.budget = model.Budget{Amount: amount, IsSet: true}
	s.w.enqueue(KeyBudget, encodeBudget(amount))
	return nil
}

// UpsertExpense adds candidate when it has no ID, or replaces the entry with
// the same ID in place. Edits keep the original ID and CreatedAt.
func (s *Store) UpsertExpense(candidate model.Entry) (model.Entry, error) {
	candidate.Name = strings.TrimSpace(candidate.Name)
	candidate.Category = strings.TrimSpace(candidate.Category)
	if candidate.Name == "" || candidate.Category == "" || candidate.Amount == 0 {
		return model.Entry{}, invalid(ReasonRequiredMissing)
	}
	if math.IsNaN(candidate.Amount) || math.IsInf(candidate.Amount, 0) || candidate.Amount < 0 {
		return model.Entry{}, invalid(ReasonAmountNotPositive)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return model.Entry{}, ErrClosed
	}

	if candidate.ID != "" {
		i := s.indexOf(candidate.ID)
		if i < 0 {
			return model.Entry{}, fmt.Errorf("%w: %s", ErrUnknownEntry, candidate.ID)
		}
		candidate.CreatedAt = s.entries[i].CreatedAt
		s.entries[i] = candidate
	} else {
		candidate.ID = s.opts.newID()
		if s.indexOf(candidate.ID) >= 0 {
			return model.Entry{}, fmt.Errorf("generated id %q already in use", candidate.ID)
		}
		candidate.CreatedAt = s.now()
		s.entries = append(s.entries, candidate)
	}

	s.recompute()
	s.persistEntries()
	return candidate, nil
}

// DeleteExpense removes the entry with id once gate approves. Deleting an id
// that is not in the ledger is a no-op and does not ask.
func (s *Store) DeleteExpense(ctx context.Context, gate Gate, id string) error {
	s.mu.Lock()
	i := s.indexOf(id)
	var target model.Entry
	if i >= 0 {
		target = s.entries[i]
	}
	closed := s.closed
	s.mu.Unlock()

	if closed {
		return ErrClosed
	}
	if i < 0 {
		return nil
	}

	err := confirm(ctx, gate, Prompt{
		Title:       "Delete this expense?",
		Description: fmt.Sprintf("%s (%s, %.2f) will be removed.", target.Name, target.Category, target.Amount),
		Affirmative: "Yes, delete",
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	// Re-resolve: the list may have changed while the gate was open.
	i = s.indexOf(id)
	if i < 0 {
		return nil
	}
	s.entries = slices.Delete(s.entries, i, i+1)
	s.recompute()
	s.persistEntries()
	return nil
}

// SetFilter shows only entries whose category equals text. Empty text shows
// every entry.
func (s *Store) SetFilter(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = text
	s.recompute()
}

// ResetAll clears the backend and, only if that succeeds, empties the
// in-memory ledger. A failed clear leaves memory untouched and is returned.
func (s *Store) ResetAll(ctx context.Context, gate Gate) error {
	err := confirm(ctx, gate, Prompt{
		Title:       "Reset the planner?",
		Description: "The budget and every expense will be deleted.",
		Affirmative: "Yes, reset",
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	if err := s.w.clear(ctx); err != nil {
		s.clearFailed.Add(1)
		pe := &PersistenceError{Op: "clear", Err: err}
		s.reportError(pe)
		return pe
	}

	s.budget = model.Budget{}
	s.entries = nil
	s.filter = ""
	s.recompute()
	s.opts.log.Info("ledger reset")
	return nil
}

// recompute rebuilds the filtered view. Callers hold s.mu.
func (s *Store) recompute() {
	if s.filter == "" {
		s.filtered = slices.Clone(s.entries)
		return
	}
	filtered := make([]model.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if e.Category == s.filter {
			filtered = append(filtered, e)
		}
	}
	s.filtered = filtered
}

// persistEntries schedules a rewrite of the whole entry list. Callers hold s.mu.
func (s *Store) persistEntries() {
	raw, err := encodeEntries(s.entries)
	if err != nil {
		s.reportError(&PersistenceError{Op: "write", Key: KeyEntries, Err: err})
		return
	}
	s.w.enqueue(KeyEntries, raw)
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.entries, func(e model.Entry) bool { return e.ID == id })
}

// now returns the clock truncated to the millisecond precision entries are stored with.
func (s *Store) now() time.Time {
	return time.UnixMilli(s.opts.clock().UnixMilli())
}

// Snapshot returns a copy of the whole ledger.
func (s *Store) Snapshot() model.Ledger {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.Ledger{
		Budget:   s.budget,
		Entries:  slices.Clone(s.entries),
		Filter:   s.filter,
		Filtered: slices.Clone(s.filtered),
	}
}

// Budget returns the current budget.
func (s *Store) Budget() model.Budget {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.budget
}

// Entries returns every entry in insertion order.
func (s *Store) Entries() []model.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.entries)
}

// Filtered returns the entries matching the current filter.
func (s *Store) Filtered() []model.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.filtered)
}

// Filter returns the current filter text.
func (s *Store) Filter() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// Entry returns the entry with id.
func (s *Store) Entry(id string) (model.Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.entries[i], true
	}
	return model.Entry{}, false
}

// Resolve expands a unique id prefix to a full entry id.
func (s *Store) Resolve(prefix string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(prefix) >= 0 {
		return prefix, nil
	}
	var match string
	for _, e := range s.entries {
		if prefix != "" && strings.HasPrefix(e.ID, prefix) {
			if match != "" {
				return "", fmt.Errorf("%w: %s", ErrAmbiguousID, prefix)
			}
			match = e.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("%w: %s", ErrUnknownEntry, prefix)
	}
	return match, nil
}

// Categories lists the distinct categories in first-seen order.
func (s *Store) Categories() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var cats []string
	seen := make(map[string]bool)
	for _, e := range s.entries {
		if !seen[e.Category] {
			seen[e.Category] = true
			cats = append(cats, e.Category)
		}
	}
	return cats
}

// Summary returns the budget-control view of the whole ledger.
func (s *Store) Summary() model.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Summarize(s.budget, s.entries)
}

// Stats reports persistence counters.
func (s *Store) Stats() Stats {
	return Stats{
		Writes:      s.w.writes.Load(),
		WriteFailed: s.w.writeFailed.Load(),
		LoadFailed:  s.loadFailed.Load(),
		ClearFailed: s.clearFailed.Load(),
		Pending:     s.w.pendingCount(),
	}
}

// Flush waits until every write scheduled so far has been attempted.
func (s *Store) Flush(ctx context.Context) error {
	return s.w.flush(ctx)
}

// Close flushes pending writes and stops the writer. Later commands return
// ErrClosed. Close does not close the backend.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()
	return s.w.stop(ctx)
}
