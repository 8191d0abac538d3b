package store

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/matzehuels/subway/pkg/line"
	"github.com/matzehuels/subway/pkg/snapshot"
)

// MemoryStore keeps snapshots in a map. Lines returned by Get are fresh
// copies; mutating them does not change the stored line until Put.
type MemoryStore struct {
	mu    sync.RWMutex
	lines map[line.LineID]snapshot.Line
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{lines: make(map[line.LineID]snapshot.Line)}
}

func (s *MemoryStore) Get(_ context.Context, id line.LineID) (*line.Line, error) {
	s.mu.RLock()
	snap, ok := s.lines[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return snap.ToLine()
}

func (s *MemoryStore) Put(_ context.Context, l *line.Line) error {
	snap := snapshot.FromLine(l)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines[l.ID] = snap
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id line.LineID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lines[id]; !ok {
		return ErrNotFound
	}
	delete(s.lines, id)
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]*line.Line, error) {
	s.mu.RLock()
	snaps := make([]snapshot.Line, 0, len(s.lines))
	for _, snap := range s.lines {
		snaps = append(snaps, snap)
	}
	s.mu.RUnlock()

	slices.SortFunc(snaps, func(a, b snapshot.Line) int { return strings.Compare(a.ID, b.ID) })
	return toLines(snaps)
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)

func byID(a, b *line.Line) int { return strings.Compare(string(a.ID), string(b.ID)) }

func toLines(snaps []snapshot.Line) ([]*line.Line, error) {
	out := make([]*line.Line, 0, len(snaps))
	for _, snap := range snaps {
		l, err := snap.ToLine()
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}
