package line

import "errors"

var (
	// ErrDuplicateSection is returned by [Path.AddSection] when both stations
	// of the new section are already on the line. Accepting it would create a
	// second route between them (a branch or a cycle).
	ErrDuplicateSection = errors.New("both stations are already on the line")

	// ErrDisconnectedSection is returned by [Path.AddSection] when neither
	// station of the new section is on a non-empty line, and by [Path.Validate]
	// when the sections form more than one path.
	ErrDisconnectedSection = errors.New("section is not connected to the line")

	// ErrMinimumSections is returned by [Path.RemoveStation] when the line has
	// only one section left. A line always keeps at least one section.
	ErrMinimumSections = errors.New("line must keep at least one section")

	// ErrInvalidSplitDistance is returned by [Path.AddSection] when the new
	// section falls inside an existing one but is not strictly shorter than it,
	// so the remaining half would have a zero or negative distance.
	ErrInvalidSplitDistance = errors.New("section must be shorter than the section it splits")

	// ErrStationNotFound is returned by [Path.RemoveStation] when an interior
	// station is missing one of its incident sections. This indicates a broken
	// path, not bad input.
	ErrStationNotFound = errors.New("incident section not found")

	// ErrUnknownStation is returned by [Path.RemoveStation] when the station is
	// not on the line.
	ErrUnknownStation = errors.New("station is not on the line")

	// ErrInvalidDistance is returned when a section distance is not positive.
	ErrInvalidDistance = errors.New("distance must be a positive integer")

	// ErrSameStation is returned when a section starts and ends at the same station.
	ErrSameStation = errors.New("up and down stations must differ")

	// ErrInvalidStationID is returned when a section references a station
	// with an empty ID.
	ErrInvalidStationID = errors.New("station ID must not be empty")

	// ErrInvalidLineID is returned by [New] and [Restore] when the line ID is empty.
	ErrInvalidLineID = errors.New("line ID must not be empty")

	// ErrLineMismatch is returned when a section belongs to a different line
	// than the path it is added to.
	ErrLineMismatch = errors.New("section belongs to another line")

	// ErrBranchingPath is returned by [Path.Validate] and [RestorePath] when a
	// station is the up-station (or down-station) of more than one section.
	ErrBranchingPath = errors.New("sections branch at a station")

	// ErrCyclicPath is returned by [Path.Validate] when the sections contain a cycle.
	ErrCyclicPath = errors.New("sections contain a cycle")
)
