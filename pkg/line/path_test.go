package line

import (
	"errors"
	"slices"
	"testing"
)

const testLine LineID = "2"

func st(id string) Station { return NewStation(id, "") }

func sec(up, down string, distance int) Section {
	return NewSection(testLine, st(up), st(down), distance)
}

// buildPath creates a path from a seed and appends further sections in order.
func buildPath(t *testing.T, seed Section, more ...Section) *Path {
	t.Helper()
	p, err := NewPath(seed)
	if err != nil {
		t.Fatalf("NewPath(%s) error: %v", seed, err)
	}
	for _, s := range more {
		if err := p.AddSection(s); err != nil {
			t.Fatalf("AddSection(%s) error: %v", s, err)
		}
	}
	return p
}

func stationIDs(p *Path) []string { return StationIDs(p.Stations()) }

func assertStations(t *testing.T, p *Path, want ...string) {
	t.Helper()
	if got := stationIDs(p); !slices.Equal(got, want) {
		t.Errorf("Stations() = %v, want %v", got, want)
	}
}

func assertPathValid(t *testing.T, p *Path) {
	t.Helper()
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	ids := stationIDs(p)
	if len(ids) != p.Len()+1 {
		t.Errorf("len(Stations()) = %d, want Len()+1 = %d", len(ids), p.Len()+1)
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			t.Errorf("station %s appears twice in %v", id, ids)
		}
		seen[id] = true
	}
}

func findSection(p *Path, up, down string) (Section, bool) {
	for _, s := range p.Sections() {
		if s.Up().ID == up && s.Down().ID == down {
			return s, true
		}
	}
	return Section{}, false
}

func assertSection(t *testing.T, p *Path, up, down string, distance int) {
	t.Helper()
	s, ok := findSection(p, up, down)
	if !ok {
		t.Fatalf("section %s→%s not found in %v", up, down, p.Sections())
	}
	if s.Distance() != distance {
		t.Errorf("section %s→%s distance = %d, want %d", up, down, s.Distance(), distance)
	}
}

func TestNewPath(t *testing.T) {
	p := buildPath(t, sec("a", "b", 10))

	if p.Len() != 1 {
		t.Errorf("Len() = %d, want 1", p.Len())
	}
	if p.Line() != testLine {
		t.Errorf("Line() = %q, want %q", p.Line(), testLine)
	}
	assertStations(t, p, "a", "b")
}

func TestNewPath_Invalid(t *testing.T) {
	tests := []struct {
		name string
		seed Section
		want error
	}{
		{"zero distance", sec("a", "b", 0), ErrInvalidDistance},
		{"negative distance", sec("a", "b", -3), ErrInvalidDistance},
		{"same station", sec("a", "a", 3), ErrSameStation},
		{"empty up", sec("", "b", 3), ErrInvalidStationID},
		{"empty down", sec("a", "", 3), ErrInvalidStationID},
		{"empty line", NewSection("", st("a"), st("b"), 3), ErrInvalidLineID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewPath(tt.seed); !errors.Is(err, tt.want) {
				t.Errorf("NewPath() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestStations_Empty(t *testing.T) {
	p := newPath(testLine)

	got := p.Stations()
	if got == nil || len(got) != 0 {
		t.Errorf("Stations() = %v, want empty non-nil slice", got)
	}
	if _, ok := p.UpTerminus(); ok {
		t.Error("UpTerminus() should report false for an empty path")
	}
	if _, ok := p.DownTerminus(); ok {
		t.Error("DownTerminus() should report false for an empty path")
	}
}

func TestStations_StorageOrderIndependent(t *testing.T) {
	// Stored as B→C, A→B, C→D: linearization follows topology, not storage.
	p, err := RestorePath(testLine, []Section{sec("b", "c", 2), sec("a", "b", 1), sec("c", "d", 3)})
	if err != nil {
		t.Fatalf("RestorePath() error: %v", err)
	}

	assertStations(t, p, "a", "b", "c", "d")

	var got []string
	for _, s := range p.Sections() {
		got = append(got, s.String())
	}
	want := []string{"a→b (1)", "b→c (2)", "c→d (3)"}
	if !slices.Equal(got, want) {
		t.Errorf("Sections() = %v, want %v", got, want)
	}
}

func TestStations_Idempotent(t *testing.T) {
	p := buildPath(t, sec("a", "b", 5), sec("b", "c", 5), sec("c", "d", 5))

	first := stationIDs(p)
	second := stationIDs(p)
	if !slices.Equal(first, second) {
		t.Errorf("Stations() not idempotent: %v then %v", first, second)
	}
}

func TestAddSection_ExtendDownTerminus(t *testing.T) {
	p := buildPath(t, sec("a", "b", 5), sec("b", "c", 5))
	before := stationIDs(p)

	if err := p.AddSection(sec("c", "d", 4)); err != nil {
		t.Fatalf("AddSection() error: %v", err)
	}

	after := stationIDs(p)
	if len(after) != len(before)+1 {
		t.Fatalf("Stations() grew from %d to %d, want +1", len(before), len(after))
	}
	if !slices.Equal(after[:len(before)], before) {
		t.Errorf("prior order %v is not a prefix of %v", before, after)
	}
	assertStations(t, p, "a", "b", "c", "d")
	assertSection(t, p, "c", "d", 4)
	assertPathValid(t, p)
}

func TestAddSection_ExtendUpTerminus(t *testing.T) {
	p := buildPath(t, sec("a", "b", 5), sec("b", "c", 5))
	before := stationIDs(p)

	if err := p.AddSection(sec("z", "a", 7)); err != nil {
		t.Fatalf("AddSection() error: %v", err)
	}

	after := stationIDs(p)
	if len(after) != len(before)+1 {
		t.Fatalf("Stations() grew from %d to %d, want +1", len(before), len(after))
	}
	if !slices.Equal(after[1:], before) {
		t.Errorf("prior order %v is not a suffix of %v", before, after)
	}
	assertStations(t, p, "z", "a", "b", "c")
	assertSection(t, p, "z", "a", 7)
	assertPathValid(t, p)
}

func TestAddSection_SplitForward(t *testing.T) {
	p := buildPath(t, sec("a", "b", 5), sec("b", "c", 5))

	if err := p.AddSection(sec("a", "d", 3)); err != nil {
		t.Fatalf("AddSection() error: %v", err)
	}

	assertStations(t, p, "a", "d", "b", "c")
	assertSection(t, p, "a", "d", 3)
	assertSection(t, p, "d", "b", 2)
	assertSection(t, p, "b", "c", 5)
	if p.Len() != 3 {
		t.Errorf("Len() = %d, want 3", p.Len())
	}
	if p.TotalDistance() != 10 {
		t.Errorf("TotalDistance() = %d, want 10", p.TotalDistance())
	}
	assertPathValid(t, p)
}

func TestAddSection_SplitBackward(t *testing.T) {
	p := buildPath(t, sec("a", "b", 5), sec("b", "c", 5))

	if err := p.AddSection(sec("d", "c", 1)); err != nil {
		t.Fatalf("AddSection() error: %v", err)
	}

	assertStations(t, p, "a", "b", "d", "c")
	assertSection(t, p, "b", "d", 4)
	assertSection(t, p, "d", "c", 1)
	if p.TotalDistance() != 10 {
		t.Errorf("TotalDistance() = %d, want 10", p.TotalDistance())
	}
	assertPathValid(t, p)
}

func TestAddSection_SplitKeepsStationNames(t *testing.T) {
	p := buildPath(t, NewSection(testLine, NewStation("a", "Alpha"), NewStation("b", "Bravo"), 5))

	if err := p.AddSection(NewSection(testLine, NewStation("a", "Alpha"), NewStation("m", "Mike"), 2)); err != nil {
		t.Fatalf("AddSection() error: %v", err)
	}

	var names []string
	for _, s := range p.Stations() {
		names = append(names, s.DisplayName())
	}
	if want := []string{"Alpha", "Mike", "Bravo"}; !slices.Equal(names, want) {
		t.Errorf("station names = %v, want %v", names, want)
	}
}

func TestAddSection_InvalidSplitDistance(t *testing.T) {
	tests := []struct {
		name string
		add  Section
	}{
		{"forward equal", sec("a", "d", 5)},
		{"forward longer", sec("a", "d", 8)},
		{"backward equal", sec("d", "b", 5)},
		{"backward longer", sec("d", "b", 6)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := buildPath(t, sec("a", "b", 5), sec("b", "c", 5))

			if err := p.AddSection(tt.add); !errors.Is(err, ErrInvalidSplitDistance) {
				t.Fatalf("AddSection() error = %v, want %v", err, ErrInvalidSplitDistance)
			}
			assertStations(t, p, "a", "b", "c")
			assertSection(t, p, "a", "b", 5)
			assertSection(t, p, "b", "c", 5)
		})
	}
}

func TestAddSection_Rejected(t *testing.T) {
	tests := []struct {
		name string
		add  Section
		want error
	}{
		{"both stations present", sec("a", "c", 3), ErrDuplicateSection},
		{"same edge again", sec("a", "b", 3), ErrDuplicateSection},
		{"reverse edge", sec("c", "a", 3), ErrDuplicateSection},
		{"neither station present", sec("x", "y", 3), ErrDisconnectedSection},
		{"invalid distance", sec("c", "d", 0), ErrInvalidDistance},
		{"same station", sec("d", "d", 1), ErrSameStation},
		{"other line", NewSection("9", st("c"), st("d"), 1), ErrLineMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := buildPath(t, sec("a", "b", 5), sec("b", "c", 5))

			if err := p.AddSection(tt.add); !errors.Is(err, tt.want) {
				t.Fatalf("AddSection() error = %v, want %v", err, tt.want)
			}
			if p.Len() != 2 {
				t.Errorf("Len() = %d after rejected insert, want 2", p.Len())
			}
			assertStations(t, p, "a", "b", "c")
		})
	}
}

func TestAddSection_DisconnectedOnSingleEdge(t *testing.T) {
	p := buildPath(t, sec("a", "b", 5))

	if err := p.AddSection(sec("x", "y", 1)); !errors.Is(err, ErrDisconnectedSection) {
		t.Errorf("AddSection() error = %v, want %v", err, ErrDisconnectedSection)
	}
}

func TestAddSection_EmptyPath(t *testing.T) {
	p := newPath(testLine)

	if err := p.AddSection(sec("x", "y", 1)); err != nil {
		t.Fatalf("AddSection() on empty path error: %v", err)
	}
	assertStations(t, p, "x", "y")
}

func TestRemoveStation_Interior(t *testing.T) {
	p := buildPath(t, sec("a", "b", 3), sec("b", "c", 4), sec("c", "d", 5))

	if err := p.RemoveStation(st("b")); err != nil {
		t.Fatalf("RemoveStation() error: %v", err)
	}

	assertStations(t, p, "a", "c", "d")
	assertSection(t, p, "a", "c", 7)
	assertSection(t, p, "c", "d", 5)
	if p.Len() != 2 {
		t.Errorf("Len() = %d, want 2", p.Len())
	}
	if p.Contains("b") {
		t.Error("Contains(b) = true after removal")
	}
	assertPathValid(t, p)
}

func TestRemoveStation_UpTerminus(t *testing.T) {
	p := buildPath(t, sec("a", "b", 3), sec("b", "c", 4), sec("c", "d", 5))

	if err := p.RemoveStation(st("a")); err != nil {
		t.Fatalf("RemoveStation() error: %v", err)
	}

	assertStations(t, p, "b", "c", "d")
	assertSection(t, p, "b", "c", 4)
	assertSection(t, p, "c", "d", 5)
	if p.Len() != 2 {
		t.Errorf("Len() = %d, want 2", p.Len())
	}
	assertPathValid(t, p)
}

func TestRemoveStation_DownTerminus(t *testing.T) {
	p := buildPath(t, sec("a", "b", 3), sec("b", "c", 4), sec("c", "d", 5))

	if err := p.RemoveStation(st("d")); err != nil {
		t.Fatalf("RemoveStation() error: %v", err)
	}

	assertStations(t, p, "a", "b", "c")
	assertSection(t, p, "a", "b", 3)
	assertSection(t, p, "b", "c", 4)
	if p.Len() != 2 {
		t.Errorf("Len() = %d, want 2", p.Len())
	}
	assertPathValid(t, p)
}

func TestRemoveStation_MinimumSections(t *testing.T) {
	for _, id := range []string{"a", "b"} {
		t.Run(id, func(t *testing.T) {
			p := buildPath(t, sec("a", "b", 3))

			if err := p.RemoveStation(st(id)); !errors.Is(err, ErrMinimumSections) {
				t.Fatalf("RemoveStation(%s) error = %v, want %v", id, err, ErrMinimumSections)
			}
			assertStations(t, p, "a", "b")
		})
	}
}

func TestRemoveStation_Unknown(t *testing.T) {
	p := buildPath(t, sec("a", "b", 3), sec("b", "c", 4))

	if err := p.RemoveStation(st("zz")); !errors.Is(err, ErrUnknownStation) {
		t.Fatalf("RemoveStation() error = %v, want %v", err, ErrUnknownStation)
	}
	assertStations(t, p, "a", "b", "c")
}

func TestRemoveStation_BrokenIndex(t *testing.T) {
	p := buildPath(t, sec("a", "b", 3), sec("b", "c", 4))
	delete(p.byDown, "b") // corrupt the index so b looks interior without an incoming section

	if err := p.RemoveStation(st("b")); !errors.Is(err, ErrStationNotFound) {
		t.Fatalf("RemoveStation() error = %v, want %v", err, ErrStationNotFound)
	}
	if p.Len() != 2 {
		t.Errorf("Len() = %d after failed removal, want 2", p.Len())
	}
}

func TestMutationSequence_KeepsPathValid(t *testing.T) {
	p := buildPath(t, sec("s1", "s5", 40))

	steps := []func() error{
		func() error { return p.AddSection(sec("s1", "s2", 10)) },
		func() error { return p.AddSection(sec("s4", "s5", 10)) },
		func() error { return p.AddSection(sec("s2", "s3", 5)) },
		func() error { return p.AddSection(sec("s0", "s1", 3)) },
		func() error { return p.AddSection(sec("s5", "s6", 8)) },
		func() error { return p.RemoveStation(st("s3")) },
		func() error { return p.RemoveStation(st("s0")) },
		func() error { return p.AddSection(sec("s2", "s3", 2)) },
		func() error { return p.RemoveStation(st("s6")) },
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d error: %v", i, err)
		}
		assertPathValid(t, p)
	}

	assertStations(t, p, "s1", "s2", "s3", "s4", "s5")
	if p.TotalDistance() != 40 {
		t.Errorf("TotalDistance() = %d, want 40", p.TotalDistance())
	}
}

func TestSections_ReturnsCopies(t *testing.T) {
	p := buildPath(t, sec("a", "b", 5))

	secs := p.Sections()
	secs[0].rewriteUp(st("x"), 1)

	assertSection(t, p, "a", "b", 5)
}

func TestStationLookup(t *testing.T) {
	p := buildPath(t, NewSection(testLine, NewStation("a", "Alpha"), NewStation("b", "Bravo"), 5))

	s, ok := p.Station("b")
	if !ok || s.Name != "Bravo" {
		t.Errorf("Station(b) = %v, %v; want Bravo, true", s, ok)
	}
	if _, ok := p.Station("zz"); ok {
		t.Error("Station(zz) should not be found")
	}

	up, _ := p.UpTerminus()
	down, _ := p.DownTerminus()
	if up.ID != "a" || down.ID != "b" {
		t.Errorf("termini = %s, %s; want a, b", up.ID, down.ID)
	}
}

func TestRestorePath_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		sections []Section
		want     error
	}{
		{"empty", nil, ErrMinimumSections},
		{"branch up", []Section{sec("a", "b", 1), sec("a", "c", 1)}, ErrBranchingPath},
		{"branch down", []Section{sec("a", "c", 1), sec("b", "c", 1)}, ErrBranchingPath},
		{"cycle", []Section{sec("a", "b", 1), sec("b", "a", 1)}, ErrCyclicPath},
		{"path plus cycle", []Section{sec("x", "y", 1), sec("a", "b", 1), sec("b", "a", 1)}, ErrCyclicPath},
		{"two paths", []Section{sec("a", "b", 1), sec("c", "d", 1)}, ErrDisconnectedSection},
		{"bad distance", []Section{sec("a", "b", 0)}, ErrInvalidDistance},
		{"other line", []Section{NewSection("9", st("a"), st("b"), 1)}, ErrLineMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := RestorePath(testLine, tt.sections); !errors.Is(err, tt.want) {
				t.Errorf("RestorePath() error = %v, want %v", err, tt.want)
			}
		})
	}
}
