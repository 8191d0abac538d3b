package store

import (
	"context"
	"time"

	"github.com/matzehuels/subway/pkg/line"
	"github.com/matzehuels/subway/pkg/observability"
)

// Instrument wraps s so that every call is reported to the registered
// [observability.StoreHooks] under the given backend name.
func Instrument(s Store, backend string) Store {
	if _, ok := s.(*instrumented); ok {
		return s
	}
	return &instrumented{inner: s, backend: backend}
}

type instrumented struct {
	inner   Store
	backend string
}

func (s *instrumented) report(ctx context.Context, op string, start time.Time, err error) {
	observability.Store().OnStoreOp(ctx, s.backend, op, time.Since(start), err)
}

func (s *instrumented) Get(ctx context.Context, id line.LineID) (*line.Line, error) {
	start := time.Now()
	l, err := s.inner.Get(ctx, id)
	s.report(ctx, "get", start, err)
	return l, err
}

func (s *instrumented) Put(ctx context.Context, l *line.Line) error {
	start := time.Now()
	err := s.inner.Put(ctx, l)
	s.report(ctx, "put", start, err)
	return err
}

func (s *instrumented) Delete(ctx context.Context, id line.LineID) error {
	start := time.Now()
	err := s.inner.Delete(ctx, id)
	s.report(ctx, "delete", start, err)
	return err
}

func (s *instrumented) List(ctx context.Context) ([]*line.Line, error) {
	start := time.Now()
	lines, err := s.inner.List(ctx)
	s.report(ctx, "list", start, err)
	return lines, err
}

func (s *instrumented) Close() error {
	return s.inner.Close()
}
