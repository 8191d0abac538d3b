// Package line models the physical layout of a transit line as a single
// ordered path of stations joined by distance-weighted sections.
//
// # Overview
//
// A line is stored as an unordered set of directed edges ([Section]), each
// joining an up-station to a down-station. The [Path] aggregate owns that set
// and guarantees that, after every successful mutation, the edges form exactly
// one simple path from the up-terminus to the down-terminus:
//
//   - no station is the up-station of more than one section
//   - no station is the down-station of more than one section
//   - the sections are connected and acyclic
//   - every distance is a positive integer
//
// # Basic Usage
//
// Create a path from a seed section with [NewPath], then grow and shrink it
// with [Path.AddSection] and [Path.RemoveStation]:
//
//	gangnam := line.NewStation("gangnam", "Gangnam")
//	yeoksam := line.NewStation("yeoksam", "Yeoksam")
//	seolleung := line.NewStation("seolleung", "Seolleung")
//
//	p, _ := line.NewPath(line.NewSection("2", gangnam, seolleung, 10))
//	_ = p.AddSection(line.NewSection("2", gangnam, yeoksam, 4)) // splits gangnam→seolleung
//	p.Stations() // [gangnam yeoksam seolleung]
//
// # Splitting and Merging
//
// Inserting a section that shares its up-station (or down-station) with an
// existing section splits that section in place: the existing section keeps
// its identity but its endpoint moves to the new station and its distance
// shrinks by the new section's distance. A split that would leave a
// non-positive remainder is rejected with [ErrInvalidSplitDistance].
//
// Removing an interior station merges its two incident sections into one
// whose distance is their sum. Removing a terminus drops its single incident
// section. A path never drops below one section ([ErrMinimumSections]).
//
// # Errors
//
// Rejected operations return one of the sentinel errors declared in this
// package and leave the path untouched. Compare with errors.Is.
//
// # Concurrency
//
// A [Path] is not safe for concurrent use. Callers serialize access per line,
// see pkg/service.
package line
