package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	subwayerrors "github.com/matzehuels/subway/pkg/errors"
	"github.com/matzehuels/subway/pkg/line"
	"github.com/matzehuels/subway/pkg/render"
	"github.com/matzehuels/subway/pkg/render/nodelink"
)

// renderOpts holds the flags of the render command.
type renderOpts struct {
	output        string
	format        string
	direction     string
	hideDistances bool
	noCache       bool
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <line>",
		Short: "Render a line as a node-link diagram",
		Long: `Render a line as a diagram: one node per station, one edge per section,
labelled with its distance. DOT and SVG are produced with Graphviz; PNG and PDF
additionally need rsvg-convert on PATH.

Rendered diagrams are cached; the cache key covers the line's content and the
render options, so edits always produce a fresh diagram.`,
		Example: `  subway render 2
  subway render 2 -o line2.png --direction TB
  subway render 2 --format dot -o -`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeLineIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), line.LineID(args[0]), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", `output file, or "-" for stdout (default <line>.<format>)`)
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "dot, svg, png or pdf (default from --output extension, else svg)")
	cmd.Flags().StringVar(&opts.direction, "direction", "LR", "layout direction: LR or TB")
	cmd.Flags().BoolVar(&opts.hideDistances, "no-distances", false, "omit section distances")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the diagram cache")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, id line.LineID, opts renderOpts) error {
	format, err := resolveFormat(opts.format, opts.output)
	if err != nil {
		return err
	}
	if opts.output == "" {
		opts.output = fmt.Sprintf("%s.%s", id, format)
	}

	svc, closeSvc, err := c.openService(ctx)
	if err != nil {
		return err
	}
	defer closeSvc()

	l, err := svc.Line(ctx, id)
	if err != nil {
		return err
	}

	renderer, closeCache, err := c.newRenderer(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer closeCache()

	prog := newProgress(c.Logger)
	data, err := withSpinner(ctx, fmt.Sprintf("Rendering %s...", lineTitle(l)), func(ctx context.Context) ([]byte, error) {
		return renderer.Render(ctx, l, format, nodelink.Options{
			Direction:     strings.ToUpper(opts.direction),
			HideDistances: opts.hideDistances,
		})
	})
	if err != nil {
		if errors.Is(err, render.ErrConverterMissing) {
			return subwayerrors.Wrap(subwayerrors.ErrCodeUnsupported, err, "render %s", format)
		}
		return err
	}

	if opts.output == "-" {
		_, err := stdout.Write(data)
		return err
	}
	if err := subwayerrors.ValidatePath(opts.output); err != nil {
		return err
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	prog.done(fmt.Sprintf("Rendered %s", format))
	printSuccess("Rendered line %s", l.ID)
	printFile(opts.output)
	return nil
}

// resolveFormat picks the diagram format from the flag, then the output
// extension, then SVG.
func resolveFormat(flag, output string) (nodelink.Format, error) {
	if flag != "" {
		return nodelink.ParseFormat(strings.ToLower(flag))
	}
	if ext := strings.TrimPrefix(filepath.Ext(output), "."); ext != "" && output != "-" {
		return nodelink.ParseFormat(strings.ToLower(ext))
	}
	return nodelink.FormatSVG, nil
}
