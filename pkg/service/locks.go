package service

import (
	"sync"

	"github.com/matzehuels/subway/pkg/line"
)

// lineLocks hands out one mutex per line ID. Entries are reference counted
// and dropped when the last holder unlocks, so the map only holds lines
// that are currently being worked on.
type lineLocks struct {
	mu sync.Mutex
	m  map[line.LineID]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newLineLocks() *lineLocks {
	return &lineLocks{m: make(map[line.LineID]*lockEntry)}
}

// lock blocks until the caller holds id's mutex and returns the unlock
// function.
func (l *lineLocks) lock(id line.LineID) (unlock func()) {
	l.mu.Lock()
	e, ok := l.m[id]
	if !ok {
		e = &lockEntry{}
		l.m[id] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.m, id)
		}
		l.mu.Unlock()
	}
}

func (l *lineLocks) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.m)
}
