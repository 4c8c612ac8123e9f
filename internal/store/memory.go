package store

import (
	"sort"
	"sync"

	"github.com/fxdesk/tradeflow-api/internal/types"
)

// tradeRecord holds one trade's event history behind its own lock so that
// writers on different trades never contend.
type tradeRecord struct {
	mu     sync.Mutex
	events []types.TradeEvent
}

// MemoryStore is the in-memory Store implementation. A read/write lock guards
// the top-level map so insertions of new ids do not block unrelated reads;
// per-trade mutation is serialized by the record's own mutex.
type MemoryStore struct {
	mu     sync.RWMutex
	trades map[types.TradeID]*tradeRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		trades: make(map[types.TradeID]*tradeRecord),
	}
}

func (s *MemoryStore) Create(id types.TradeID, initial types.TradeEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.trades[id]; exists {
		return ErrAlreadyExists
	}
	s.trades[id] = &tradeRecord{
		events: []types.TradeEvent{cloneEvent(initial)},
	}
	return nil
}

func (s *MemoryStore) record(id types.TradeID) (*tradeRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.trades[id]
	return rec, ok
}

func (s *MemoryStore) Append(id types.TradeID, event types.TradeEvent) error {
	rec, ok := s.record(id)
	if !ok {
		return ErrNotFound
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	if event.Version != len(rec.events) {
		return ErrVersionConflict
	}
	rec.events = append(rec.events, cloneEvent(event))
	return nil
}

func (s *MemoryStore) Mutate(id types.TradeID, apply func(latest types.TradeEvent) (types.TradeEvent, error)) error {
	rec, ok := s.record(id)
	if !ok {
		return ErrNotFound
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	latest := cloneEvent(rec.events[len(rec.events)-1])
	next, err := apply(latest)
	if err != nil {
		return err
	}
	if next.Version != len(rec.events) {
		return ErrVersionConflict
	}
	rec.events = append(rec.events, cloneEvent(next))
	return nil
}

func (s *MemoryStore) History(id types.TradeID) ([]types.TradeEvent, error) {
	rec, ok := s.record(id)
	if !ok {
		return nil, ErrNotFound
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	out := make([]types.TradeEvent, len(rec.events))
	for i, ev := range rec.events {
		out[i] = cloneEvent(ev)
	}
	return out, nil
}

func (s *MemoryStore) Latest(id types.TradeID) (types.TradeEvent, error) {
	rec, ok := s.record(id)
	if !ok {
		return types.TradeEvent{}, ErrNotFound
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	return cloneEvent(rec.events[len(rec.events)-1]), nil
}

func (s *MemoryStore) ListIDs(sorted bool) []types.TradeID {
	s.mu.RLock()
	ids := make([]types.TradeID, 0, len(s.trades))
	for id := range s.trades {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	if sorted {
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	}
	return ids
}

func (s *MemoryStore) Delete(id types.TradeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.trades[id]; !exists {
		return ErrNotFound
	}
	delete(s.trades, id)
	return nil
}

// cloneEvent deep-copies an event so no caller ever shares mutable state
// with the stored history.
func cloneEvent(ev types.TradeEvent) types.TradeEvent {
	ev.Details = ev.Details.Clone()
	return ev
}
