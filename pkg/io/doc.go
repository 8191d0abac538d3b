// Package io provides JSON and TOML import and export for line definition files.
//
// # Overview
//
// Line files describe one transit line as a list of sections. The same
// shape is used by both formats (see pkg/snapshot):
//
//	id = "2"
//	name = "Line 2"
//	color = "green"
//
//	[[stations]]
//	id = "gangnam"
//	name = "Gangnam"
//
//	[[sections]]
//	up = "gangnam"
//	down = "yeoksam"
//	distance = 10
//
// The JSON equivalent uses the same keys:
//
//	{"id": "2", "sections": [{"up": "gangnam", "down": "yeoksam", "distance": 10}]}
//
// # Import
//
// Use [Import] to read a file (the format is chosen by extension), or
// [ReadJSON] / [ReadTOML] to read from any io.Reader. Sections may be listed
// in any order; imports are validated as a whole and rejected if they do not
// form a single path. Unknown TOML keys are rejected to catch typos.
//
// # Export
//
// Use [Export] to write a file, or [WriteJSON] / [WriteTOML] to write to any
// io.Writer. Stations and sections are written in travel order, so exports
// are deterministic and re-import identically.
package io
