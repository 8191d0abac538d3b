// Package pkg provides the libraries behind subway, a store of transit
// lines kept as single ordered chains of stations.
//
// # Overview
//
//  1. [line] - Domain logic: stations, sections and the section path with
//     its insert, remove and linearize operations
//  2. [snapshot], [io] - Plain data form of a line and the JSON/TOML line
//     file format
//  3. [store] - Line persistence (memory, files, SQLite, PostgreSQL, Redis,
//     MongoDB) selected by URL
//  4. [service] - Use cases with input validation, per-line locking and
//     coded errors, shared by the CLI and the HTTP API
//  5. [render], [cache] - Node-link diagrams via Graphviz, cached by content
//  6. [config], [errors], [observability] - Settings, error codes and hooks
//
// # Quick Start
//
//	l, _ := line.New("2", "Line 2", "green",
//	    line.NewStation("gangnam", "Gangnam"),
//	    line.NewStation("seolleung", "Seolleung"), 10)
//
//	// Split the section: gangnam -4- yeoksam -6- seolleung
//	_ = l.AddSection(line.NewStation("gangnam", ""), line.NewStation("yeoksam", "Yeoksam"), 4)
//
//	// Merge it again: gangnam -10- seolleung
//	_ = l.RemoveStation(line.NewStation("yeoksam", ""))
package pkg
