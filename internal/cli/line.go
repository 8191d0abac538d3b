package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	subwayerrors "github.com/matzehuels/subway/pkg/errors"
	"github.com/matzehuels/subway/pkg/line"
	"github.com/matzehuels/subway/pkg/service"
	"github.com/matzehuels/subway/pkg/snapshot"
)

// interactive reports whether pickers may be shown. Tests replace it.
var interactive = func() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
}

// lineCommand creates the line management command.
func (c *CLI) lineCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "line",
		Aliases: []string{"lines"},
		Short:   "Create, inspect and edit lines",
	}

	cmd.AddCommand(c.lineCreateCommand())
	cmd.AddCommand(c.lineListCommand())
	cmd.AddCommand(c.lineShowCommand())
	cmd.AddCommand(c.lineAddCommand())
	cmd.AddCommand(c.lineRemoveCommand())
	cmd.AddCommand(c.lineUpdateCommand())
	cmd.AddCommand(c.lineDeleteCommand())

	return cmd
}

// parseStation parses "id" or "id:Display Name".
func parseStation(s string) (line.Station, error) {
	id, name, _ := strings.Cut(s, ":")
	if err := subwayerrors.ValidateStation(id, name); err != nil {
		return line.Station{}, err
	}
	return line.NewStation(id, name), nil
}

// parseDistance parses a positive section distance.
func parseDistance(s string) (int, error) {
	d, err := strconv.Atoi(s)
	if err != nil {
		return 0, subwayerrors.Wrap(subwayerrors.ErrCodeInvalidDistance, err, "distance %q", s)
	}
	return d, subwayerrors.ValidateDistance(d)
}

// lineCreateCommand creates the "line create" subcommand.
func (c *CLI) lineCreateCommand() *cobra.Command {
	var name, color, up, down string
	var distance int

	cmd := &cobra.Command{
		Use:   "create [id]",
		Short: "Create a line from its first section",
		Long: `Create a line whose path is the single section from --up to --down.

Stations are given as "id" or "id:Name". Without an id argument a random one
is generated.`,
		Example: `  subway line create 2 --name "Line 2" --color green \
      --up gangnam:Gangnam --down seolleung:Seolleung --distance 10`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			upStation, err := parseStation(up)
			if err != nil {
				return err
			}
			downStation, err := parseStation(down)
			if err != nil {
				return err
			}
			req := service.CreateLineRequest{
				Name:     name,
				Color:    color,
				Up:       upStation,
				Down:     downStation,
				Distance: distance,
			}
			if len(args) == 1 {
				req.ID = args[0]
			}

			svc, closeFn, err := c.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			l, err := svc.CreateLine(cmd.Context(), req)
			if err != nil {
				return err
			}
			printSuccess("Created line %s", StyleHighlight.Render(string(l.ID)))
			printLine(l)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&color, "color", "", "line color (any Graphviz color)")
	cmd.Flags().StringVar(&up, "up", "", "up station (id or id:Name)")
	cmd.Flags().StringVar(&down, "down", "", "down station (id or id:Name)")
	cmd.Flags().IntVar(&distance, "distance", 0, "section distance")
	cmd.MarkFlagRequired("up")
	cmd.MarkFlagRequired("down")
	cmd.MarkFlagRequired("distance")

	return cmd
}

// lineListCommand creates the "line list" subcommand.
func (c *CLI) lineListCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all lines",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := c.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			lines, err := svc.Lines(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				snaps := make([]snapshot.Line, len(lines))
				for i, l := range lines {
					snaps[i] = snapshot.FromLine(l)
				}
				enc := json.NewEncoder(stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(snaps)
			}

			if len(lines) == 0 {
				printInfo("No lines yet")
				printNextStep("Create one", appName+" line create <id> --up A --down B --distance N")
				return nil
			}
			fmt.Fprintln(stdout, linesTable(lines))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print lines as JSON")
	return cmd
}

// lineShowCommand creates the "line show" subcommand.
func (c *CLI) lineShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "show [id]",
		Short:             "Show a line's stations in path order",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: c.completeLineIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := c.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			l, err := c.resolveLine(cmd, svc, args)
			if err != nil || l == nil {
				return err
			}
			printLine(l)
			return nil
		},
	}
}

// lineAddCommand creates the "line add" subcommand.
func (c *CLI) lineAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <line> <up> <down> <distance>",
		Short: "Add a section to a line",
		Long: `Add a section to a line. Exactly one of the two stations must already be
on the line. The section either extends the line at a terminus or splits the
existing section that starts (or ends) at the known station, in which case its
distance must be shorter than the section it splits.`,
		Example:           `  subway line add 2 gangnam yeoksam:Yeoksam 4`,
		Args:              cobra.ExactArgs(4),
		ValidArgsFunction: c.completeLineIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			up, err := parseStation(args[1])
			if err != nil {
				return err
			}
			down, err := parseStation(args[2])
			if err != nil {
				return err
			}
			distance, err := parseDistance(args[3])
			if err != nil {
				return err
			}

			svc, closeFn, err := c.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			l, err := svc.AddSection(cmd.Context(), line.LineID(args[0]), up, down, distance)
			if err != nil {
				return err
			}
			printSuccess("Added %s %s %s", up.ID, iconArrow, down.ID)
			printLine(l)
			return nil
		},
	}
}

// lineRemoveCommand creates the "line remove" subcommand.
func (c *CLI) lineRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <line> [station]",
		Aliases: []string{"rm"},
		Short:   "Remove a station from a line",
		Long: `Remove a station from a line. Removing an interior station merges its two
sections into one spanning both distances; removing a terminus drops its
section. A line must keep at least one section.

Without a station argument an interactive picker is shown.`,
		Args:              cobra.RangeArgs(1, 2),
		ValidArgsFunction: c.completeLineIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := c.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			id := line.LineID(args[0])
			var stationID string
			if len(args) == 2 {
				stationID = args[1]
			} else {
				l, err := svc.Line(cmd.Context(), id)
				if err != nil {
					return err
				}
				if !interactive() {
					return fmt.Errorf("station argument required when not running in a terminal")
				}
				item, err := runPicker(NewStationPicker(l))
				if err != nil {
					return err
				}
				if item == nil {
					printDetail("No selection made")
					return nil
				}
				stationID = item.ID
			}

			l, err := svc.RemoveStation(cmd.Context(), id, stationID)
			if err != nil {
				return err
			}
			printSuccess("Removed %s", stationID)
			printLine(l)
			return nil
		},
	}
}

// lineUpdateCommand creates the "line update" subcommand.
func (c *CLI) lineUpdateCommand() *cobra.Command {
	var name, color string

	cmd := &cobra.Command{
		Use:               "update <line>",
		Short:             "Change a line's name or color",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeLineIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var req service.UpdateLineRequest
			if cmd.Flags().Changed("name") {
				req.Name = &name
			}
			if cmd.Flags().Changed("color") {
				req.Color = &color
			}
			if req.Name == nil && req.Color == nil {
				return subwayerrors.New(subwayerrors.ErrCodeInvalidInput, "nothing to update: pass --name or --color")
			}

			svc, closeFn, err := c.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			l, err := svc.UpdateLine(cmd.Context(), line.LineID(args[0]), req)
			if err != nil {
				return err
			}
			printSuccess("Updated line %s", l.ID)
			printLine(l)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new display name")
	cmd.Flags().StringVar(&color, "color", "", "new color")
	return cmd
}

// lineDeleteCommand creates the "line delete" subcommand.
func (c *CLI) lineDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "delete <line>",
		Short:             "Delete a line",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeLineIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := c.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			if err := svc.DeleteLine(cmd.Context(), line.LineID(args[0])); err != nil {
				return err
			}
			printSuccess("Deleted line %s", args[0])
			return nil
		},
	}
}

// resolveLine loads the line named by args[0], or lets the user pick one.
// It returns nil without error when the user quits the picker.
func (c *CLI) resolveLine(cmd *cobra.Command, svc *service.Service, args []string) (*line.Line, error) {
	if len(args) > 0 {
		return svc.Line(cmd.Context(), line.LineID(args[0]))
	}
	if !interactive() {
		return nil, fmt.Errorf("line argument required when not running in a terminal")
	}
	lines, err := svc.Lines(cmd.Context())
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		printWarning("No lines in %s", c.settings().Store.URL)
		return nil, nil
	}
	item, err := runPicker(NewLinePicker(lines))
	if err != nil || item == nil {
		return nil, err
	}
	for _, l := range lines {
		if string(l.ID) == item.ID {
			return l, nil
		}
	}
	return nil, nil
}
