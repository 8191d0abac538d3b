package line

// Station is a physical stop on a line. Two stations are the same stop when
// their IDs match; the name is for display only.
type Station struct {
	ID   string // Unique identifier
	Name string // Display name (optional)
}

// NewStation returns a station with the given identifier and display name.
func NewStation(id, name string) Station {
	return Station{ID: id, Name: name}
}

// Equal reports whether s and o identify the same stop.
func (s Station) Equal(o Station) bool { return s.ID == o.ID }

// DisplayName returns the name if set, otherwise the ID.
func (s Station) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.ID
}

// String implements fmt.Stringer.
func (s Station) String() string { return s.DisplayName() }

// StationIDs extracts the ID from each station in a slice.
func StationIDs(stations []Station) []string {
	ids := make([]string, len(stations))
	for i, s := range stations {
		ids[i] = s.ID
	}
	return ids
}
