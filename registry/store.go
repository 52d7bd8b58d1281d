package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrInvalidRecord is returned by Add when a record is missing its ID or
// carries a non-positive deadline. The store is not mutated in that case.
var ErrInvalidRecord = errors.New("registry: record needs a non-empty ID and a positive Deadline")

// Options configures a Store at construction time.
type Options struct {
	// Sweep enables the background sweeper goroutine.
	Sweep bool

	// SweepInterval is how often the sweeper prunes expired records.
	// Ignored unless Sweep is true; must be positive to arm the sweeper.
	SweepInterval time.Duration
}

// Stats is a point-in-time view of store counters.
type Stats struct {
	// Size is the number of records currently held.
	Size int

	// Added counts every successful Add over the store's lifetime,
	// including overwrites of an existing ID.
	Added uint64
}

// Store is an in-memory record index ordered by expiry deadline.
//
// It keeps two views of the same data: a sequence sorted ascending by
// Deadline, and an ID map holding the latest record per ID. A single lock
// guards both so they always update as one atomic unit. Eviction removes a
// prefix of the sequence only — never the middle or tail.
//
// Store is safe for concurrent use.
type Store[P any] struct {
	mu    sync.RWMutex
	items []*Record[P]
	byID  map[string]*Record[P]
	added uint64
	now   func() time.Time // injectable for deterministic tests

	stop      chan struct{}
	closeOnce sync.Once
}

// New creates a Store. When opts arms the sweeper, a background goroutine
// prunes expired records every SweepInterval until Close is called; the
// goroutine never blocks process exit on its own.
func New[P any](opts Options) *Store[P] {
	s := &Store[P]{
		byID: make(map[string]*Record[P]),
		now:  time.Now,
	}
	if opts.Sweep && opts.SweepInterval > 0 {
		s.stop = make(chan struct{})
		go s.sweep(opts.SweepInterval)
	}
	return s
}

// Add indexes rec under its ID and inserts it into the deadline-ordered
// sequence. A record with the same ID as an earlier Add supersedes it: the
// ID map and the ordered sequence both end up holding only the new record.
// Records are never edited in place.
func (s *Store[P]) Add(rec Record[P]) error {
	if rec.ID == "" || rec.Deadline <= 0 {
		return fmt.Errorf("%w (id=%q, deadline=%d)", ErrInvalidRecord, rec.ID, rec.Deadline)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.byID[rec.ID]; ok {
		s.removeInstance(old)
	}

	r := &rec
	s.byID[rec.ID] = r

	// Fast path: empty sequence or deadline at or past the current tail.
	if n := len(s.items); n == 0 || rec.Deadline >= s.items[n-1].Deadline {
		s.items = append(s.items, r)
	} else {
		i := s.searchIdx(rec.Deadline)
		s.items = append(s.items, nil)
		copy(s.items[i+1:], s.items[i:])
		s.items[i] = r
	}

	s.added++
	return nil
}

// Get returns a copy of the most recently added record for id.
// The second return value is false if no live record exists for id.
func (s *Store[P]) Get(id string) (Record[P], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.byID[id]
	if !ok {
		var zero Record[P]
		return zero, false
	}
	return *r, true
}

// List returns a snapshot of all records in ascending deadline order.
// The returned slice holds copies; mutating it does not affect the store.
func (s *Store[P]) List() []Record[P] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record[P], 0, len(s.items))
	for _, r := range s.items {
		out = append(out, *r)
	}
	return out
}

// Prune removes every record whose Deadline is at or before threshold and
// returns the number of records removed. The removed records always form a
// prefix of the ordered sequence. An ID map entry is deleted only when it
// still points at the exact instance being pruned, so a newer record that
// superseded a pruned one keeps its mapping.
func (s *Store[P]) Prune(threshold int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cut := s.searchIdx(threshold)
	// The search settles inside a run of equal deadlines; the threshold is
	// inclusive, so take the rest of the run too.
	for cut < len(s.items) && s.items[cut].Deadline <= threshold {
		cut++
	}
	if cut == 0 {
		return 0
	}

	for _, r := range s.items[:cut] {
		if s.byID[r.ID] == r {
			delete(s.byID, r.ID)
		}
	}

	n := copy(s.items, s.items[cut:])
	for i := n; i < len(s.items); i++ {
		s.items[i] = nil // release pruned records to the GC
	}
	s.items = s.items[:n]
	return cut
}

// Stats returns the current size and the lifetime count of successful Adds.
func (s *Store[P]) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Stats{Size: len(s.items), Added: s.added}
}

// Close stops the sweeper if one is armed. It is idempotent and does not
// clear existing data: Add, Get, and Prune keep working after Close, but no
// further automatic pruning happens.
func (s *Store[P]) Close() {
	s.closeOnce.Do(func() {
		if s.stop != nil {
			close(s.stop)
		}
	})
}

// --- internal ---------------------------------------------------------------

// searchIdx binary-searches the ordered sequence for the insertion index of
// deadline. On an exact match it settles one past the first equal element it
// encounters, so ordering among equal deadlines is not deterministic — no
// caller relies on tie order.
func (s *Store[P]) searchIdx(deadline int64) int {
	lo, hi := 0, len(s.items)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		switch {
		case deadline > s.items[mid].Deadline:
			lo = mid + 1
		case deadline < s.items[mid].Deadline:
			hi = mid
		default:
			return mid + 1
		}
	}
	return lo
}

// removeInstance drops the exact instance old from the ordered sequence.
// Called with s.mu held.
func (s *Store[P]) removeInstance(old *Record[P]) {
	for i, r := range s.items {
		if r == old {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return
		}
	}
}

// sweep is the background eviction loop. It prunes at the current wall time
// every interval until Close fires the stop channel.
func (s *Store[P]) sweep(interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-t.C:
			if n := s.Prune(s.now().UnixMilli()); n > 0 {
				slog.Debug("registry: pruned expired records", "count", n)
			}
		}
	}
}
