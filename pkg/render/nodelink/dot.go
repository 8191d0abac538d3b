package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/subway/pkg/line"
)

// Options configures diagram generation.
type Options struct {
	// Direction is the Graphviz rankdir: "LR" (default) or "TB".
	Direction string

	// HideDistances omits the distance labels on edges.
	HideDistances bool
}

func (o Options) rankdir() string {
	if o.Direction == "TB" {
		return "TB"
	}
	return "LR"
}

// ToDOT converts a line to Graphviz DOT format. Nodes are emitted in travel
// order, so the output is deterministic for a given line.
func ToDOT(l *line.Line, opts Options) string {
	color := l.Color
	if color == "" {
		color = "black"
	}
	title := l.Name
	if title == "" {
		title = string(l.ID)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph %q {\n", string(l.ID))
	fmt.Fprintf(&buf, "  rankdir=%s;\n", opts.rankdir())
	buf.WriteString("  bgcolor=\"transparent\";\n")
	fmt.Fprintf(&buf, "  label=%q;\n", title)
	buf.WriteString("  labelloc=t;\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=14, width=0.4];\n")
	fmt.Fprintf(&buf, "  edge [color=%q, penwidth=4, arrowhead=none, fontsize=12];\n", color)
	buf.WriteString("\n")

	stations := l.Stations()
	for i, s := range stations {
		attrs := fmt.Sprintf("label=%q", s.DisplayName())
		if i == 0 || i == len(stations)-1 {
			attrs += ", shape=doublecircle"
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", s.ID, attrs)
	}

	buf.WriteString("\n")
	for _, sec := range l.Sections() {
		if opts.HideDistances {
			fmt.Fprintf(&buf, "  %q -> %q;\n", sec.Up().ID, sec.Down().ID)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", sec.Up().ID, sec.Down().ID, strconv.Itoa(sec.Distance()))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the Graphviz <svg> tag with one whose viewBox
// starts at the origin, so the diagram scales cleanly when embedded.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
