package nodelink

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/subway/pkg/cache"
	"github.com/matzehuels/subway/pkg/line"
	"github.com/matzehuels/subway/pkg/observability"
	"github.com/matzehuels/subway/pkg/render"
	"github.com/matzehuels/subway/pkg/snapshot"
)

// Format is a diagram output format.
type Format string

// Supported formats.
const (
	FormatDOT Format = "dot"
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
	FormatPDF Format = "pdf"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatDOT, FormatSVG, FormatPNG, FormatPDF:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported diagram format %q (want dot, svg, png or pdf)", s)
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatPDF:
		return "application/pdf"
	default:
		return "text/vnd.graphviz"
	}
}

// Renderer renders lines in any [Format], caching the output by line
// content and options. It is safe for concurrent use if its cache is.
type Renderer struct {
	cache cache.Cache
	keyer cache.Keyer
	ttl   time.Duration
}

// NewRenderer creates a renderer. A nil cache disables caching; a nil keyer
// uses [cache.NewDefaultKeyer].
func NewRenderer(c cache.Cache, keyer cache.Keyer, ttl time.Duration) *Renderer {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &Renderer{cache: c, keyer: keyer, ttl: ttl}
}

// Render produces the diagram of l in the given format. DOT output is never
// cached.
func (r *Renderer) Render(ctx context.Context, l *line.Line, format Format, opts Options) ([]byte, error) {
	dot := ToDOT(l, opts)
	if format == FormatDOT {
		return []byte(dot), nil
	}

	key, err := r.key(l, format, opts)
	if err != nil {
		return nil, err
	}
	if data, ok, err := r.cache.Get(ctx, key); err == nil && ok {
		observability.Cache().OnCacheHit(ctx, "diagram")
		return data, nil
	}
	observability.Cache().OnCacheMiss(ctx, "diagram")

	hooks := observability.Render()
	hooks.OnRenderStart(ctx, string(l.ID), string(format))
	start := time.Now()
	data, err := r.render(ctx, dot, format)
	hooks.OnRenderComplete(ctx, string(l.ID), string(format), len(data), time.Since(start), err)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, key, data, r.ttl); err == nil {
		observability.Cache().OnCacheSet(ctx, "diagram", len(data))
	}
	return data, nil
}

func (r *Renderer) render(ctx context.Context, dot string, format Format) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatSVG:
		return svg, nil
	case FormatPNG:
		return render.ToPNG(ctx, svg, 2.0)
	case FormatPDF:
		return render.ToPDF(ctx, svg)
	default:
		return nil, fmt.Errorf("unsupported diagram format %q", format)
	}
}

func (r *Renderer) key(l *line.Line, format Format, opts Options) (string, error) {
	data, err := snapshot.Marshal(l)
	if err != nil {
		return "", fmt.Errorf("hash line: %w", err)
	}
	return r.keyer.DiagramKey(cache.Hash(data), cache.DiagramKeyOpts{
		Format:    string(format),
		Direction: opts.rankdir(),
		Distances: !opts.HideDistances,
	}), nil
}
