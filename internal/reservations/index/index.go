package index

import (
	"fmt"
	"sort"
	"sync"

	"voyago/pkg/model"
)

// ConflictError carries the first active interval that overlaps a proposed
// booking, for diagnostics.
type ConflictError struct {
	ResourceID string
	Proposed   model.Interval
	Existing   model.Interval
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("interval %s overlaps existing reservation %s on resource %s",
		e.Proposed, e.Existing, e.ResourceID)
}

// resourceSet holds one resource's active intervals sorted by start. Because
// the set never contains an overlapping pair, sorting by start also sorts by
// end.
type resourceSet struct {
	mu        sync.Mutex
	intervals []model.Interval
}

// Index is the per-resource store of occupied intervals. Check-then-insert
// runs under a per-resource lock, so requests for distinct resources never
// contend with each other.
type Index struct {
	mu        sync.RWMutex
	resources map[string]*resourceSet
}

func New() *Index {
	return &Index{
		resources: make(map[string]*resourceSet),
	}
}

func (idx *Index) set(resourceID string) *resourceSet {
	idx.mu.RLock()
	s, ok := idx.resources[resourceID]
	idx.mu.RUnlock()
	if ok {
		return s
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	if s, ok = idx.resources[resourceID]; !ok {
		s = &resourceSet{}
		idx.resources[resourceID] = s
	}
	return s
}

// searchStart returns the insertion position for an interval starting at
// iv.Start: the first index whose interval starts at or after it.
func (s *resourceSet) searchStart(iv model.Interval) int {
	return sort.Search(len(s.intervals), func(i int) bool {
		return !s.intervals[i].Start.Before(iv.Start)
	})
}

// conflictAt locates the overlapping neighbour of iv, if any. Only the
// predecessor and the successor of the insertion position can overlap,
// since the set itself is overlap-free.
func (s *resourceSet) conflictAt(iv model.Interval) (model.Interval, bool) {
	pos := s.searchStart(iv)
	if pos > 0 && s.intervals[pos-1].End.After(iv.Start) {
		return s.intervals[pos-1], true
	}
	if pos < len(s.intervals) && s.intervals[pos].Start.Before(iv.End) {
		return s.intervals[pos], true
	}
	return model.Interval{}, false
}

// Insert atomically checks the proposed interval against the resource's
// active set and inserts it when no overlap exists, preserving start order.
// Returns *ConflictError on overlap and model.ErrEmptyInterval for a
// zero-length or inverted proposal, which is rejected before any scan.
func (idx *Index) Insert(resourceID string, iv model.Interval) error {
	if err := iv.Validate(); err != nil {
		return err
	}

	s := idx.set(resourceID)
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.conflictAt(iv); ok {
		return &ConflictError{ResourceID: resourceID, Proposed: iv, Existing: existing}
	}

	pos := s.searchStart(iv)
	s.intervals = append(s.intervals, model.Interval{})
	copy(s.intervals[pos+1:], s.intervals[pos:])
	s.intervals[pos] = iv
	return nil
}

// Remove deletes exactly one interval equal to iv from the resource's active
// set. A missing interval is reported as false, not treated as fatal.
func (idx *Index) Remove(resourceID string, iv model.Interval) bool {
	s := idx.set(resourceID)
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.intervals {
		if existing.Equal(iv) {
			s.intervals = append(s.intervals[:i], s.intervals[i+1:]...)
			return true
		}
	}
	return false
}

// Conflicting reports the first active interval overlapping iv without
// modifying the set. Used by read paths for diagnostics.
func (idx *Index) Conflicting(resourceID string, iv model.Interval) (model.Interval, bool) {
	s := idx.set(resourceID)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conflictAt(iv)
}

// ActiveIntervals returns a snapshot copy of the resource's active set in
// ascending start order.
func (idx *Index) ActiveIntervals(resourceID string) []model.Interval {
	s := idx.set(resourceID)
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make([]model.Interval, len(s.intervals))
	copy(snapshot, s.intervals)
	return snapshot
}
