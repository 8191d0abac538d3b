package line

import "fmt"

// LineID identifies the line that owns a section. It is a plain handle, not a
// reference to the owning [Line].
type LineID string

// Section is a directed edge from an up-station to a down-station with a
// positive distance. Sections are values until handed to a [Path]; once
// added, the path owns its own copy and rewrites it only when splitting.
type Section struct {
	line     LineID
	up       Station
	down     Station
	distance int
}

// NewSection constructs a section owned by line. No validation happens here;
// [Path.AddSection] and [NewPath] reject invalid sections.
func NewSection(line LineID, up, down Station, distance int) Section {
	return Section{line: line, up: up, down: down, distance: distance}
}

// Line returns the ID of the owning line.
func (s Section) Line() LineID { return s.line }

// Up returns the up-station.
func (s Section) Up() Station { return s.up }

// Down returns the down-station.
func (s Section) Down() Station { return s.down }

// Distance returns the section length.
func (s Section) Distance() int { return s.distance }

// String implements fmt.Stringer.
func (s Section) String() string {
	return fmt.Sprintf("%s→%s (%d)", s.up.ID, s.down.ID, s.distance)
}

// rewriteUp moves the up-station during a forward split.
func (s *Section) rewriteUp(up Station, distance int) {
	s.up = up
	s.distance = distance
}

// rewriteDown moves the down-station during a backward split.
func (s *Section) rewriteDown(down Station, distance int) {
	s.down = down
	s.distance = distance
}

func (s Section) validate() error {
	if s.up.ID == "" || s.down.ID == "" {
		return ErrInvalidStationID
	}
	if s.up.Equal(s.down) {
		return ErrSameStation
	}
	if s.distance <= 0 {
		return ErrInvalidDistance
	}
	return nil
}
