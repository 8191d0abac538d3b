package line

// Line owns the section path of one transit line together with its display
// metadata. Dropping a Line drops its path and every section in it.
type Line struct {
	ID    LineID
	Name  string
	Color string

	path *Path
}

// New creates a line whose path starts with a single section from up to down.
func New(id LineID, name, color string, up, down Station, distance int) (*Line, error) {
	p, err := NewPath(NewSection(id, up, down, distance))
	if err != nil {
		return nil, err
	}
	return &Line{ID: id, Name: name, Color: color, path: p}, nil
}

// Restore rebuilds a line from persisted sections. See [RestorePath].
func Restore(id LineID, name, color string, sections []Section) (*Line, error) {
	p, err := RestorePath(id, sections)
	if err != nil {
		return nil, err
	}
	return &Line{ID: id, Name: name, Color: color, path: p}, nil
}

// Path returns the section path owned by the line.
func (l *Line) Path() *Path { return l.path }

// AddSection inserts a section from up to down. See [Path.AddSection].
func (l *Line) AddSection(up, down Station, distance int) error {
	return l.path.AddSection(NewSection(l.ID, up, down, distance))
}

// RemoveStation takes a station off the line. See [Path.RemoveStation].
func (l *Line) RemoveStation(station Station) error {
	return l.path.RemoveStation(station)
}

// Stations returns the stations in travel order.
func (l *Line) Stations() []Station { return l.path.Stations() }

// Sections returns the sections in travel order.
func (l *Line) Sections() []Section { return l.path.Sections() }
