// Package snapshot provides the canonical wire format of a transit line.
//
// A [Line] snapshot is what leaves the process: JSON files and API
// responses, TOML definition files, SQL rows, Redis values and MongoDB
// documents all carry this shape. Use [FromLine] and [Line.ToLine] to convert
// between the snapshot and the in-memory [line.Line].
//
// # Format
//
//	{
//	  "id": "2",
//	  "name": "Line 2",
//	  "color": "green",
//	  "stations": [{"id": "gangnam", "name": "Gangnam"}, {"id": "yeoksam"}],
//	  "sections": [{"up": "gangnam", "down": "yeoksam", "distance": 10}]
//	}
//
// Stations are optional: a station referenced by a section but missing from
// the stations list uses its ID as display name. Sections may appear in any
// order; [Line.ToLine] validates that they form a single path.
package snapshot

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/subway/pkg/line"
)

// Line is the serialization format of a line and its sections.
type Line struct {
	ID       string    `json:"id" toml:"id" bson:"_id"`
	Name     string    `json:"name,omitempty" toml:"name,omitempty" bson:"name,omitempty"`
	Color    string    `json:"color,omitempty" toml:"color,omitempty" bson:"color,omitempty"`
	Stations []Station `json:"stations,omitempty" toml:"stations,omitempty" bson:"stations,omitempty"`
	Sections []Section `json:"sections" toml:"sections" bson:"sections"`
}

// Station is a stop referenced by the sections of a line.
type Station struct {
	ID   string `json:"id" toml:"id" bson:"id"`
	Name string `json:"name,omitempty" toml:"name,omitempty" bson:"name,omitempty"`
}

// Section is a directed edge between two stations, referenced by ID.
type Section struct {
	Up       string `json:"up" toml:"up" bson:"up"`
	Down     string `json:"down" toml:"down" bson:"down"`
	Distance int    `json:"distance" toml:"distance" bson:"distance"`
}

// FromLine converts a line to its snapshot. Stations and sections are listed
// in travel order, so the output is deterministic.
func FromLine(l *line.Line) Line {
	stations := l.Stations()
	sections := l.Sections()

	out := Line{
		ID:       string(l.ID),
		Name:     l.Name,
		Color:    l.Color,
		Stations: make([]Station, len(stations)),
		Sections: make([]Section, len(sections)),
	}
	for i, s := range stations {
		out.Stations[i] = Station{ID: s.ID, Name: s.Name}
	}
	for i, s := range sections {
		out.Sections[i] = Section{Up: s.Up().ID, Down: s.Down().ID, Distance: s.Distance()}
	}
	return out
}

// ToLine rebuilds the line described by the snapshot. It returns the
// validation error from [line.Restore] if the sections do not form a single
// path.
func (s Line) ToLine() (*line.Line, error) {
	id := line.LineID(s.ID)
	names := make(map[string]string, len(s.Stations))
	for _, st := range s.Stations {
		names[st.ID] = st.Name
	}

	sections := make([]line.Section, len(s.Sections))
	for i, sec := range s.Sections {
		up := line.NewStation(sec.Up, names[sec.Up])
		down := line.NewStation(sec.Down, names[sec.Down])
		sections[i] = line.NewSection(id, up, down, sec.Distance)
	}

	l, err := line.Restore(id, s.Name, s.Color, sections)
	if err != nil {
		return nil, fmt.Errorf("line %s: %w", s.ID, err)
	}
	return l, nil
}

// Marshal encodes a line as snapshot JSON.
func Marshal(l *line.Line) ([]byte, error) {
	return json.Marshal(FromLine(l))
}

// Unmarshal decodes snapshot JSON and rebuilds the line.
func Unmarshal(data []byte) (*line.Line, error) {
	var s Line
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return s.ToLine()
}
