// Package nodelink renders transit lines as node-link diagrams.
//
// # Overview
//
// Stations become circles laid out in travel order and sections become
// edges labelled with their distance, drawn in the line's color. The two
// termini are drawn as double circles.
//
// # Usage
//
// Convert a line to DOT, then render to SVG:
//
//	dot := nodelink.ToDOT(l, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [Renderer] adds caching and observability on top and also produces PNG
// and PDF through pkg/render.
//
// # DOT Format
//
// The generated DOT uses left-to-right layout (rankdir=LR) by default.
// It can be saved and processed with external Graphviz tools.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
