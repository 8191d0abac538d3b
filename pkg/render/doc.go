// Package render provides output format conversion for line diagrams.
//
// Diagrams are produced as SVG by the [nodelink] subpackage. The [ToPDF]
// and [ToPNG] functions convert any SVG to other formats using the external
// rsvg-convert tool (from librsvg):
//
//	svg, err := nodelink.RenderSVG(ctx, nodelink.ToDOT(l, nodelink.Options{}))
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0) // 2x scale
//
// [nodelink]: github.com/matzehuels/subway/pkg/render/nodelink
package render
