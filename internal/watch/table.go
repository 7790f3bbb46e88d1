package watch

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/text/unicode/norm"
)

// entryState tracks where a path sits in its debounce lifecycle. Idle paths
// have no entry at all.
type entryState int

const (
	stateDebouncing entryState = iota + 1
	stateInFlight
)

type entry struct {
	// path is the spelling the filesystem event delivered. Dispatch must use
	// it verbatim: on byte-preserving filesystems the normalized key may not
	// name any file on disk.
	path      string
	state     entryState
	lastEvent time.Time
	// dirty records events that arrived while the path was converting; a
	// dirty completion schedules exactly one follow-up conversion.
	dirty bool
}

// Table is the debounce table of the watch daemon. Every path with recent
// activity has one entry; rapid event bursts collapse onto it. All methods
// are safe for concurrent use.
type Table struct {
	mu  sync.Mutex
	m   map[string]*entry
	now func() time.Time
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{
		m:   make(map[string]*entry),
		now: time.Now,
	}
}

// key normalizes paths to NFC so differently-composed spellings of the same
// name share one entry.
func key(path string) string {
	return norm.NFC.String(path)
}

// Touch records activity on a path. A new or debouncing path (re)starts its
// quiet interval; a converting path is marked dirty instead.
func (t *Table) Touch(path string) {
	k := key(path)
	t.mu.Lock()
	defer t.mu.Unlock()

	e := t.m[k]
	if e == nil {
		t.m[k] = &entry{path: path, state: stateDebouncing, lastEvent: t.now()}
		return
	}
	switch e.state {
	case stateDebouncing:
		e.lastEvent = t.now()
	case stateInFlight:
		e.dirty = true
	}
}

// Remove handles a deletion event. A debouncing path is dropped before it
// converts; a converting path only loses its pending follow-up, the in-flight
// conversion itself runs to completion.
func (t *Table) Remove(path string) {
	k := key(path)
	t.mu.Lock()
	defer t.mu.Unlock()

	e := t.m[k]
	if e == nil {
		return
	}
	switch e.state {
	case stateDebouncing:
		delete(t.m, k)
	case stateInFlight:
		e.dirty = false
	}
}

// RemovePrefix drops every debouncing entry under a deleted directory. Paths
// already converting are handled like Remove.
func (t *Table) RemovePrefix(dir string) {
	prefix := key(strings.TrimSuffix(dir, "/") + "/")
	t.mu.Lock()
	defer t.mu.Unlock()

	for k, e := range t.m {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		switch e.state {
		case stateDebouncing:
			delete(t.m, k)
		case stateInFlight:
			e.dirty = false
		}
	}
}

// ClaimDue atomically moves paths whose quiet interval has elapsed into the
// in-flight state and returns them, as spelled by their filesystem events. A
// positive limit bounds how many paths one sweep claims so an event storm
// cannot flood the worker queue; entries left behind stay due for the next
// sweep. The caller owns submitting each claimed path and must eventually
// call Complete, Requeue, or Cancel.
func (t *Table) ClaimDue(quiet time.Duration, limit int) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := t.now().Add(-quiet)
	var due []string
	for _, e := range t.m {
		if limit > 0 && len(due) == limit {
			break
		}
		if e.state != stateDebouncing {
			continue
		}
		if e.lastEvent.After(cutoff) {
			continue
		}
		e.state = stateInFlight
		e.dirty = false
		due = append(due, e.path)
	}
	return due
}

// Complete finishes an in-flight path. If events arrived during conversion
// the path goes back to debouncing and Complete reports true; otherwise the
// entry is dropped.
func (t *Table) Complete(path string) bool {
	k := key(path)
	t.mu.Lock()
	defer t.mu.Unlock()

	e := t.m[k]
	if e == nil || e.state != stateInFlight {
		return false
	}
	if e.dirty {
		e.state = stateDebouncing
		e.lastEvent = t.now()
		e.dirty = false
		return true
	}
	delete(t.m, k)
	return false
}

// Requeue returns a claimed path to the debouncing state without refreshing
// its quiet interval, making it due again on the next sweep. Used when the
// worker queue had no room.
func (t *Table) Requeue(path string) {
	k := key(path)
	t.mu.Lock()
	defer t.mu.Unlock()

	if e := t.m[k]; e != nil && e.state == stateInFlight {
		e.state = stateDebouncing
		e.dirty = false
	}
}

// Cancel drops a claimed path entirely, for sources that vanished between
// claiming and submission.
func (t *Table) Cancel(path string) {
	k := key(path)
	t.mu.Lock()
	defer t.mu.Unlock()

	if e := t.m[k]; e != nil && e.state == stateInFlight {
		delete(t.m, k)
	}
}

// Len reports how many paths currently hold entries.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.m)
}
