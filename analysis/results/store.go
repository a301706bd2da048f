// Package results holds the converged classifications. Consumers only see
// final values, and only once the solver has signalled completion.
package results

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/cs-au-dk/immut/analysis/defs"
	L "github.com/cs-au-dk/immut/analysis/lattice"
	"github.com/cs-au-dk/immut/utils"

	"github.com/benbjohnson/immutable"
)

var (
	// ErrAnalysisNotConverged is returned for queries made before the
	// solver completed. Retry after completion.
	ErrAnalysisNotConverged = errors.New("analysis not converged")
	// ErrNotClassified is returned for entities the analysis never reached.
	ErrNotClassified = errors.New("entity not classified")
)

// Subscriber is notified once when a classification becomes final.
type Subscriber func(key defs.Key, value L.Element)

type Entry struct {
	Key   defs.Key
	Value L.Element
}

type Store struct {
	mu       sync.RWMutex
	values   *immutable.Map[defs.Key, L.Element]
	subs     map[defs.Key][]Subscriber
	errs     []error
	complete bool
}

func NewStore() *Store {
	return &Store{
		values: utils.NewImmMap[defs.Key, L.Element](),
		subs:   make(map[defs.Key][]Subscriber),
	}
}

// Publish records the final value of a classification and notifies its
// subscribers. Publishing a key twice with different values is an error.
func (s *Store) Publish(key defs.Key, value L.Element) error {
	s.mu.Lock()
	if old, found := s.values.Get(key); found {
		s.mu.Unlock()
		if !old.Eq(value) {
			return fmt.Errorf("%s published as %s and %s", key, old, value)
		}
		return nil
	}
	if s.complete {
		s.mu.Unlock()
		return fmt.Errorf("%s published after completion", key)
	}

	s.values = s.values.Set(key, value)
	subs := s.subs[key]
	delete(s.subs, key)
	s.mu.Unlock()

	for _, sub := range subs {
		sub(key, value)
	}
	return nil
}

// Lookup returns the final value of a classification, if published. Unlike
// Get it is available while the analysis runs.
func (s *Store) Lookup(key defs.Key) (L.Element, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values.Get(key)
}

// Subscribe registers a subscriber for the final value of key. If the value
// is already final the subscriber is called immediately.
func (s *Store) Subscribe(key defs.Key, sub Subscriber) {
	s.mu.Lock()
	if v, found := s.values.Get(key); found {
		s.mu.Unlock()
		sub(key, v)
		return
	}
	s.subs[key] = append(s.subs[key], sub)
	s.mu.Unlock()
}

// Report records a classification failure.
func (s *Store) Report(key defs.Key, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, fmt.Errorf("%s: %w", key.Name(), err))
}

// Errors lists the reported classification failures.
func (s *Store) Errors() []error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]error(nil), s.errs...)
}

// Complete signals convergence. Afterwards the store is read-only.
func (s *Store) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.complete = true
	s.subs = nil
}

func (s *Store) Completed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.complete
}

// Get returns the final classification of an entity along a dimension.
func (s *Store) Get(e defs.Entity, dim defs.Dimension) (L.Element, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key := defs.MkKey(e, dim)
	if !s.complete {
		return nil, fmt.Errorf("%w: %s", ErrAnalysisNotConverged, key.Name())
	}
	if v, found := s.values.Get(key); found {
		return v, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotClassified, key.Name())
}

// Snapshot returns all final classifications. The returned map is
// persistent and unaffected by later changes.
func (s *Store) Snapshot() (*immutable.Map[defs.Key, L.Element], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.complete {
		return nil, ErrAnalysisNotConverged
	}
	return s.values, nil
}

// Entries lists all final classifications ordered by key.
func (s *Store) Entries() ([]Entry, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}

	res := make([]Entry, 0, snap.Len())
	iter := snap.Iterator()
	for !iter.Done() {
		k, v, _ := iter.Next()
		res = append(res, Entry{k, v})
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].Key.Less(res[j].Key)
	})
	return res, nil
}

// Len is the number of final classifications.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values.Len()
}
