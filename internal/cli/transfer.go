package cli

import (
	"github.com/spf13/cobra"

	subwayerrors "github.com/matzehuels/subway/pkg/errors"
	lineio "github.com/matzehuels/subway/pkg/io"
	"github.com/matzehuels/subway/pkg/line"
)

// importCommand creates the import command.
func (c *CLI) importCommand() *cobra.Command {
	var replace bool

	cmd := &cobra.Command{
		Use:   "import <file>...",
		Short: "Import lines from JSON or TOML line files",
		Long: `Import lines from line files. The format is chosen by extension (.json or
.toml). Each file is checked before it is stored: its sections must form a
single chain of stations with positive distances.`,
		Example: `  subway import lines/line2.toml
  subway import --replace lines/*.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			svc, closeFn, err := c.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			prog := newProgress(logger)
			for _, path := range args {
				if err := subwayerrors.ValidatePath(path); err != nil {
					return err
				}
				l, err := lineio.Import(path)
				if err != nil {
					return subwayerrors.Wrap(subwayerrors.ErrCodeInvalidFormat, err, "import %s", path)
				}
				if err := svc.ImportLine(cmd.Context(), l, replace); err != nil {
					return err
				}
				printSuccess("Imported line %s %s", StyleHighlight.Render(string(l.ID)), StyleDim.Render("from "+path))
			}
			prog.done("Import complete")
			return nil
		},
	}

	cmd.Flags().BoolVar(&replace, "replace", false, "replace lines that already exist")
	return cmd
}

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var output, format string

	cmd := &cobra.Command{
		Use:   "export <line>",
		Short: "Export a line as a JSON or TOML line file",
		Example: `  subway export 2 -o line2.toml
  subway export 2 --format toml`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeLineIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := c.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			l, err := svc.Line(cmd.Context(), line.LineID(args[0]))
			if err != nil {
				return err
			}

			if output == "" {
				return lineio.Write(l, stdout, lineio.Format(format))
			}
			if err := subwayerrors.ValidatePath(output); err != nil {
				return err
			}
			if err := lineio.Export(l, output); err != nil {
				return err
			}
			printSuccess("Exported line %s", l.ID)
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (.json or .toml); stdout if empty")
	cmd.Flags().StringVar(&format, "format", string(lineio.FormatJSON), "stdout format: json or toml")
	return cmd
}
