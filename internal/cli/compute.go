package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/petstats/internal/statbar"
	"github.com/mesh-intelligence/petstats/pkg/types"
)

// barWidth is the text bar width used by compute and sheet.
const barWidth = 24

func (a *app) newComputeCmd() *cobra.Command {
	var style string

	cmd := &cobra.Command{
		Use:   "compute [--style name] <label> <value> <min> <max>",
		Short: "Compute the display of one stat bar",
		Long: `Compute derives the fill percentage, indicator position and displayed
value for a raw stat value against a [min,max] range. Only the built-in
display overrides apply. Flags must come before the label so negative values
are read as numbers.

Example:
  petstats compute Loyalty 150 0 100
  petstats compute --style mini Curiosity -3 10 60
  petstats --json compute Energy -1 0 100`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			nums := make([]int, 3)
			for i, name := range []string{"value", "min", "max"} {
				n, err := parseInt(name, args[i+1])
				if err != nil {
					return err
				}
				nums[i] = n
			}
			s, err := a.barStyle(style)
			if err != nil {
				return err
			}

			engine := statbar.NewEngine(statbar.ParityOverrides, a.logger)
			res, err := engine.Compute("", types.StatObservation{Label: args[0], Value: nums[0]},
				types.StatDefinition{Name: args[0], Min: nums[1], Max: nums[2]}, s)
			if err != nil {
				return err
			}

			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), res)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", args[0], statbar.RenderText(res, barWidth))
			fmt.Fprintf(out, "  percentage: %.2f  indicator: %.2f  style: %s\n", res.Percentage, res.IndicatorPosition, s.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&style, "style", "", "bar style (wide, compact, mini; default from config)")
	return noFlagsAfterArgs(cmd)
}
