package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	subwayerrors "github.com/matzehuels/subway/pkg/errors"
	"github.com/matzehuels/subway/pkg/line"
	"github.com/matzehuels/subway/pkg/store"
)

func st(id string) line.Station { return line.NewStation(id, "") }

func newService(t *testing.T) *Service {
	t.Helper()
	return New(store.NewMemoryStore(), nil)
}

func createLine(t *testing.T, s *Service, id string) *line.Line {
	t.Helper()
	l, err := s.CreateLine(context.Background(), CreateLineRequest{
		ID: id, Name: "Line " + id, Color: "green",
		Up: line.NewStation("a", "Alpha"), Down: line.NewStation("c", "Charlie"), Distance: 10,
	})
	if err != nil {
		t.Fatalf("CreateLine() error: %v", err)
	}
	return l
}

func TestCreateLine(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	createLine(t, s, "2")

	got, err := s.Line(ctx, "2")
	if err != nil {
		t.Fatalf("Line() error: %v", err)
	}
	if ids := line.StationIDs(got.Stations()); !slices.Equal(ids, []string{"a", "c"}) {
		t.Errorf("Stations() = %v, want [a c]", ids)
	}

	_, err = s.CreateLine(ctx, CreateLineRequest{ID: "2", Up: st("x"), Down: st("y"), Distance: 1})
	if !subwayerrors.Is(err, subwayerrors.ErrCodeLineExists) {
		t.Errorf("duplicate CreateLine() code = %v, want %v", subwayerrors.GetCode(err), subwayerrors.ErrCodeLineExists)
	}
}

func TestCreateLine_GeneratesID(t *testing.T) {
	s := newService(t)
	s.newID = func() string { return "generated" }

	l, err := s.CreateLine(context.Background(), CreateLineRequest{Up: st("a"), Down: st("b"), Distance: 1})
	if err != nil {
		t.Fatalf("CreateLine() error: %v", err)
	}
	if l.ID != "generated" {
		t.Errorf("ID = %q, want generated", l.ID)
	}
}

func TestCreateLine_Invalid(t *testing.T) {
	s := newService(t)
	tests := []struct {
		name string
		req  CreateLineRequest
		want subwayerrors.Code
	}{
		{"bad id", CreateLineRequest{ID: "a/b", Up: st("a"), Down: st("b"), Distance: 1}, subwayerrors.ErrCodeInvalidInput},
		{"empty station", CreateLineRequest{ID: "1", Up: st(""), Down: st("b"), Distance: 1}, subwayerrors.ErrCodeInvalidStation},
		{"zero distance", CreateLineRequest{ID: "1", Up: st("a"), Down: st("b")}, subwayerrors.ErrCodeInvalidDistance},
		{"same station", CreateLineRequest{ID: "1", Up: st("a"), Down: st("a"), Distance: 1}, subwayerrors.ErrCodeInvalidStation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CreateLine(context.Background(), tt.req)
			if got := subwayerrors.GetCode(err); got != tt.want {
				t.Errorf("CreateLine() code = %v (%v), want %v", got, err, tt.want)
			}
		})
	}
}

func TestAddSection(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	createLine(t, s, "2")

	l, err := s.AddSection(ctx, "2", st("a"), line.NewStation("b", "Bravo"), 4)
	if err != nil {
		t.Fatalf("AddSection() error: %v", err)
	}
	if ids := line.StationIDs(l.Stations()); !slices.Equal(ids, []string{"a", "b", "c"}) {
		t.Errorf("Stations() = %v, want [a b c]", ids)
	}

	// The change is persisted.
	got, _ := s.Line(ctx, "2")
	if got.Path().Len() != 2 {
		t.Errorf("stored Len() = %d, want 2", got.Path().Len())
	}
}

func TestAddSection_Errors(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	createLine(t, s, "2")

	tests := []struct {
		name     string
		line     line.LineID
		up, down string
		distance int
		code     subwayerrors.Code
		sentinel error
	}{
		{"duplicate", "2", "a", "c", 3, subwayerrors.ErrCodeDuplicateSection, line.ErrDuplicateSection},
		{"disconnected", "2", "x", "y", 3, subwayerrors.ErrCodeDisconnectedSection, line.ErrDisconnectedSection},
		{"split too long", "2", "a", "m", 10, subwayerrors.ErrCodeInvalidSplit, line.ErrInvalidSplitDistance},
		{"unknown line", "9", "a", "b", 1, subwayerrors.ErrCodeLineNotFound, store.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.AddSection(ctx, tt.line, st(tt.up), st(tt.down), tt.distance)
			if got := subwayerrors.GetCode(err); got != tt.code {
				t.Errorf("AddSection() code = %v (%v), want %v", got, err, tt.code)
			}
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("AddSection() error = %v, want wrapping %v", err, tt.sentinel)
			}
		})
	}

	if _, err := s.AddSection(ctx, "2", st("a"), st("b"), 0); !subwayerrors.Is(err, subwayerrors.ErrCodeInvalidDistance) {
		t.Errorf("AddSection() with zero distance code = %v", subwayerrors.GetCode(err))
	}

	got, _ := s.Line(ctx, "2")
	if got.Path().Len() != 1 {
		t.Errorf("rejected mutations changed the stored line: %v", got.Sections())
	}
}

func TestRemoveStation(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	createLine(t, s, "2")

	if _, err := s.RemoveStation(ctx, "2", "a"); !subwayerrors.Is(err, subwayerrors.ErrCodeMinimumSections) {
		t.Errorf("RemoveStation() on single section code = %v, want %v", subwayerrors.GetCode(err), subwayerrors.ErrCodeMinimumSections)
	}

	if _, err := s.AddSection(ctx, "2", st("a"), st("b"), 4); err != nil {
		t.Fatal(err)
	}
	if _, err := s.RemoveStation(ctx, "2", "z"); !subwayerrors.Is(err, subwayerrors.ErrCodeStationNotFound) {
		t.Errorf("RemoveStation(z) code = %v, want %v", subwayerrors.GetCode(err), subwayerrors.ErrCodeStationNotFound)
	}

	l, err := s.RemoveStation(ctx, "2", "b")
	if err != nil {
		t.Fatalf("RemoveStation() error: %v", err)
	}
	secs := l.Sections()
	if len(secs) != 1 || secs[0].Distance() != 10 {
		t.Errorf("Sections() = %v, want [a→c (10)]", secs)
	}
}

func TestUpdateLine(t *testing.T) {
	s := newService(t)
	createLine(t, s, "2")

	color := "red"
	l, err := s.UpdateLine(context.Background(), "2", UpdateLineRequest{Color: &color})
	if err != nil {
		t.Fatalf("UpdateLine() error: %v", err)
	}
	if l.Color != "red" || l.Name != "Line 2" {
		t.Errorf("metadata = %q/%q, want Line 2/red", l.Name, l.Color)
	}
}

func TestDeleteLine(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	createLine(t, s, "1")
	createLine(t, s, "2")

	if err := s.DeleteLine(ctx, "1"); err != nil {
		t.Fatalf("DeleteLine() error: %v", err)
	}
	if err := s.DeleteLine(ctx, "1"); !subwayerrors.Is(err, subwayerrors.ErrCodeLineNotFound) {
		t.Errorf("second DeleteLine() code = %v, want %v", subwayerrors.GetCode(err), subwayerrors.ErrCodeLineNotFound)
	}

	lines, err := s.Lines(ctx)
	if err != nil || len(lines) != 1 || lines[0].ID != "2" {
		t.Errorf("Lines() = %v, %v; want [2]", lines, err)
	}
}

func TestImportLine(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	createLine(t, s, "2")

	l, err := line.New("2", "Imported", "blue", st("x"), st("y"), 5)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.ImportLine(ctx, l, false); !subwayerrors.Is(err, subwayerrors.ErrCodeLineExists) {
		t.Errorf("ImportLine() without replace code = %v, want %v", subwayerrors.GetCode(err), subwayerrors.ErrCodeLineExists)
	}
	if err := s.ImportLine(ctx, l, true); err != nil {
		t.Fatalf("ImportLine() with replace error: %v", err)
	}
	got, _ := s.Line(ctx, "2")
	if got.Name != "Imported" {
		t.Errorf("Name = %q, want Imported", got.Name)
	}
}

// Every goroutine removes a different interior station. Without per-line
// serialization, concurrent load → mutate → save cycles lose updates.
func TestConcurrentRemovals(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	const n = 20
	if _, err := s.CreateLine(ctx, CreateLineRequest{ID: "1", Up: st("a"), Down: st("s01"), Distance: 10}); err != nil {
		t.Fatal(err)
	}
	for i := 1; i < n; i++ {
		if _, err := s.AddSection(ctx, "1", st(fmt.Sprintf("s%02d", i)), st(fmt.Sprintf("s%02d", i+1)), 10); err != nil {
			t.Fatalf("AddSection(s%02d) error: %v", i+1, err)
		}
	}
	if _, err := s.AddSection(ctx, "1", st(fmt.Sprintf("s%02d", n)), st("z"), 10); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 1; i <= n; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if _, err := s.RemoveStation(ctx, "1", id); err != nil {
				errs <- err
			}
		}(fmt.Sprintf("s%02d", i))
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("RemoveStation() error: %v", err)
	}

	l, _ := s.Line(ctx, "1")
	if ids := line.StationIDs(l.Stations()); !slices.Equal(ids, []string{"a", "z"}) {
		t.Errorf("Stations() = %v, want [a z]", ids)
	}
	if d := l.Path().TotalDistance(); d != 10*(n+1) {
		t.Errorf("TotalDistance() = %d, want %d", d, 10*(n+1))
	}
	if s.locks.len() != 0 {
		t.Errorf("locks left behind: %d", s.locks.len())
	}
}

// overlapStore flags a Get that starts while another Get → Put cycle on the
// same line is in flight.
type overlapStore struct {
	store.Store
	inFlight atomic.Int32
	overlap  atomic.Bool
}

func (o *overlapStore) Get(ctx context.Context, id line.LineID) (*line.Line, error) {
	if o.inFlight.Add(1) > 1 {
		o.overlap.Store(true)
	}
	time.Sleep(time.Millisecond)
	return o.Store.Get(ctx, id)
}

func (o *overlapStore) Put(ctx context.Context, l *line.Line) error {
	defer o.inFlight.Add(-1)
	return o.Store.Put(ctx, l)
}

func TestMutationsAreSerializedPerLine(t *testing.T) {
	mem := store.NewMemoryStore()
	seed, _ := line.New("1", "", "", st("a"), st("b"), 1)
	if err := mem.Put(context.Background(), seed); err != nil {
		t.Fatal(err)
	}
	ov := &overlapStore{Store: mem}
	s := New(ov, nil)

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			name := fmt.Sprintf("name-%d", i)
			if _, err := s.UpdateLine(context.Background(), "1", UpdateLineRequest{Name: &name}); err != nil {
				t.Errorf("UpdateLine() error: %v", err)
			}
		}()
	}
	wg.Wait()

	if ov.overlap.Load() {
		t.Error("mutations of the same line overlapped")
	}
}
