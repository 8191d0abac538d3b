package line

import (
	"fmt"
	"slices"
)

// minSections is the number of sections a path never drops below.
const minSections = 1

// Path is the set of sections for one line. It keeps the sections in storage
// order and indexes them by up-station and down-station ID, so every lookup
// during linearization, insertion and removal is O(1).
//
// The zero value is not usable - use [NewPath] or [RestorePath].
// Path is not safe for concurrent use without external synchronization.
type Path struct {
	line     LineID
	sections []*Section
	byUp     map[string]*Section // up-station ID -> outgoing section
	byDown   map[string]*Section // down-station ID -> incoming section
}

func newPath(id LineID) *Path {
	return &Path{
		line:   id,
		byUp:   make(map[string]*Section),
		byDown: make(map[string]*Section),
	}
}

// NewPath creates a path holding exactly the seed section. The path belongs
// to the seed's line.
func NewPath(seed Section) (*Path, error) {
	if seed.line == "" {
		return nil, ErrInvalidLineID
	}
	if err := seed.validate(); err != nil {
		return nil, err
	}
	p := newPath(seed.line)
	p.insert(seed)
	return p, nil
}

// RestorePath rebuilds a path from previously persisted sections. The
// sections may arrive in any order; the result is validated as a whole and
// rejected with the corresponding sentinel error if it is not a single
// simple path.
func RestorePath(id LineID, sections []Section) (*Path, error) {
	if id == "" {
		return nil, ErrInvalidLineID
	}
	if len(sections) < minSections {
		return nil, ErrMinimumSections
	}
	p := newPath(id)
	for _, s := range sections {
		if err := s.validate(); err != nil {
			return nil, fmt.Errorf("section %s: %w", s, err)
		}
		if s.line != id {
			return nil, fmt.Errorf("section %s: %w", s, ErrLineMismatch)
		}
		if _, dup := p.byUp[s.up.ID]; dup {
			return nil, fmt.Errorf("station %s: %w", s.up.ID, ErrBranchingPath)
		}
		if _, dup := p.byDown[s.down.ID]; dup {
			return nil, fmt.Errorf("station %s: %w", s.down.ID, ErrBranchingPath)
		}
		p.insert(s)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Line returns the ID of the line that owns the path.
func (p *Path) Line() LineID { return p.line }

// Len returns the number of sections.
func (p *Path) Len() int { return len(p.sections) }

// Contains reports whether a station with the given ID is on the path.
func (p *Path) Contains(stationID string) bool {
	_, up := p.byUp[stationID]
	_, down := p.byDown[stationID]
	return up || down
}

// Station returns the station with the given ID and true, or the zero
// Station and false if it is not on the path.
func (p *Path) Station(id string) (Station, bool) {
	if s, ok := p.byUp[id]; ok {
		return s.up, true
	}
	if s, ok := p.byDown[id]; ok {
		return s.down, true
	}
	return Station{}, false
}

// UpTerminus returns the first station of the path, or false if the path is empty.
func (p *Path) UpTerminus() (Station, bool) {
	if len(p.sections) == 0 {
		return Station{}, false
	}
	return p.upTerminus(), true
}

// DownTerminus returns the last station of the path, or false if the path is empty.
func (p *Path) DownTerminus() (Station, bool) {
	if len(p.sections) == 0 {
		return Station{}, false
	}
	cur := p.sections[0].down
	for range len(p.sections) {
		next, ok := p.byUp[cur.ID]
		if !ok {
			break
		}
		cur = next.down
	}
	return cur, true
}

// upTerminus walks backward from an arbitrary up-station until no section
// ends at the current station. The walk is bounded by the section count.
func (p *Path) upTerminus() Station {
	cur := p.sections[0].up
	for range len(p.sections) {
		prev, ok := p.byDown[cur.ID]
		if !ok {
			break
		}
		cur = prev.up
	}
	return cur
}

// Stations returns the stations in travel order, from the up-terminus to the
// down-terminus. An empty path yields an empty slice. Calling Stations
// repeatedly without an intervening mutation yields identical sequences.
func (p *Path) Stations() []Station {
	if len(p.sections) == 0 {
		return []Station{}
	}
	cur := p.upTerminus()
	stations := make([]Station, 0, len(p.sections)+1)
	stations = append(stations, cur)
	for range len(p.sections) {
		next, ok := p.byUp[cur.ID]
		if !ok {
			break
		}
		cur = next.down
		stations = append(stations, cur)
	}
	return stations
}

// Sections returns copies of the sections in travel order. Modifying the
// returned values does not affect the path.
func (p *Path) Sections() []Section {
	if len(p.sections) == 0 {
		return []Section{}
	}
	out := make([]Section, 0, len(p.sections))
	cur := p.upTerminus()
	for range len(p.sections) {
		next, ok := p.byUp[cur.ID]
		if !ok {
			break
		}
		out = append(out, *next)
		cur = next.down
	}
	return out
}

// TotalDistance returns the sum of all section distances.
func (p *Path) TotalDistance() int {
	total := 0
	for _, s := range p.sections {
		total += s.distance
	}
	return total
}

// AddSection inserts s into the path.
//
// Exactly one of the section's stations must already be on the path. When
// the shared station is the up-station and a section already leaves it,
// that section is split: it now starts at s.Down() and its distance shrinks
// by s.Distance(). The down-station case is symmetric. Without a section to
// split, s extends the path at a terminus.
//
// Returns [ErrDuplicateSection], [ErrDisconnectedSection],
// [ErrInvalidSplitDistance], [ErrLineMismatch] or a section validation error.
// On error the path is unchanged.
func (p *Path) AddSection(s Section) error {
	if err := s.validate(); err != nil {
		return err
	}
	if s.line != p.line {
		return ErrLineMismatch
	}
	if len(p.sections) == 0 {
		p.insert(s)
		return nil
	}

	upOnPath := p.Contains(s.up.ID)
	downOnPath := p.Contains(s.down.ID)
	switch {
	case upOnPath && downOnPath:
		return ErrDuplicateSection
	case !upOnPath && !downOnPath:
		return ErrDisconnectedSection
	}

	// Stations already on the path keep their stored name.
	if upOnPath {
		s.up, _ = p.Station(s.up.ID)
	} else {
		s.down, _ = p.Station(s.down.ID)
	}

	if upOnPath {
		if next, ok := p.byUp[s.up.ID]; ok {
			remainder := next.distance - s.distance
			if remainder <= 0 {
				return ErrInvalidSplitDistance
			}
			delete(p.byUp, next.up.ID)
			next.rewriteUp(s.down, remainder)
			p.byUp[next.up.ID] = next
		}
	} else {
		if prev, ok := p.byDown[s.down.ID]; ok {
			remainder := prev.distance - s.distance
			if remainder <= 0 {
				return ErrInvalidSplitDistance
			}
			delete(p.byDown, prev.down.ID)
			prev.rewriteDown(s.up, remainder)
			p.byDown[prev.down.ID] = prev
		}
	}

	p.insert(s)
	return nil
}

// RemoveStation takes station off the path.
//
// Removing a terminus drops its single incident section. Removing an
// interior station replaces its incoming and outgoing sections with one
// section spanning both, whose distance is their sum.
//
// Returns [ErrMinimumSections] if only one section is left,
// [ErrUnknownStation] if the station is not on the path, or
// [ErrStationNotFound] if an interior station is missing an incident
// section. On error the path is unchanged.
func (p *Path) RemoveStation(station Station) error {
	if len(p.sections) <= minSections {
		return ErrMinimumSections
	}

	stations := p.Stations()
	idx := slices.IndexFunc(stations, station.Equal)
	if idx < 0 {
		return ErrUnknownStation
	}

	switch idx {
	case 0:
		out, ok := p.byUp[station.ID]
		if !ok {
			return fmt.Errorf("%w: %s", ErrStationNotFound, station.ID)
		}
		p.remove(out)
	case len(stations) - 1:
		in, ok := p.byDown[station.ID]
		if !ok {
			return fmt.Errorf("%w: %s", ErrStationNotFound, station.ID)
		}
		p.remove(in)
	default:
		in, okIn := p.byDown[station.ID]
		out, okOut := p.byUp[station.ID]
		if !okIn || !okOut {
			return fmt.Errorf("%w: %s", ErrStationNotFound, station.ID)
		}
		merged := NewSection(p.line, in.up, out.down, in.distance+out.distance)
		p.remove(in)
		p.remove(out)
		p.insert(merged)
	}
	return nil
}

// Validate checks the path invariants and returns nil if they hold:
//
//  1. Every section has distinct, non-empty stations and a positive distance
//  2. No station starts or ends more than one section
//  3. The sections form a single path without cycles
//
// Returns a section validation error, [ErrBranchingPath],
// [ErrDisconnectedSection] or [ErrCyclicPath].
func (p *Path) Validate() error {
	for _, s := range p.sections {
		if err := s.validate(); err != nil {
			return fmt.Errorf("section %s: %w", s, err)
		}
	}
	if len(p.byUp) != len(p.sections) || len(p.byDown) != len(p.sections) {
		return ErrBranchingPath
	}
	if len(p.sections) == 0 {
		return nil
	}

	// With in- and out-degree at most one, every component is either a
	// simple path (one source) or a cycle (no source).
	var (
		sources int
		start   string
	)
	for id := range p.byUp {
		if _, ok := p.byDown[id]; !ok {
			sources++
			start = id
		}
	}
	switch {
	case sources == 0:
		return ErrCyclicPath
	case sources > 1:
		return ErrDisconnectedSection
	}

	// Sections not reachable from the single source belong to cycles.
	walked := 0
	for cur := start; walked < len(p.sections); walked++ {
		next, ok := p.byUp[cur]
		if !ok {
			break
		}
		cur = next.down.ID
	}
	if walked != len(p.sections) {
		return ErrCyclicPath
	}
	return nil
}

func (p *Path) insert(s Section) {
	sec := &s
	p.sections = append(p.sections, sec)
	p.byUp[sec.up.ID] = sec
	p.byDown[sec.down.ID] = sec
}

func (p *Path) remove(s *Section) {
	p.sections = slices.DeleteFunc(p.sections, func(x *Section) bool { return x == s })
	delete(p.byUp, s.up.ID)
	delete(p.byDown, s.down.ID)
}
