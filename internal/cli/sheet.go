package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/petstats/internal/sheet"
	"github.com/mesh-intelligence/petstats/internal/statbar"
)

func (a *app) newSheetCmd() *cobra.Command {
	var style string

	cmd := &cobra.Command{
		Use:   "sheet <pet-id>",
		Short: "Render a pet's stat sheet",
		Long: `Sheet renders every stat bar of a pet against its breed ranges,
including duplicate bars from the pet's pattern. Stored display overrides
apply.

Example:
  petstats sheet 0192f3a4-7c1e-7b7a-9c55-1d2e3f4a5b6c
  petstats sheet --style compact 0192f3a4-7c1e-7b7a-9c55-1d2e3f4a5b6c`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.barStyle(style)
			if err != nil {
				return err
			}
			store, err := a.attachStore()
			if err != nil {
				return err
			}
			defer store.Detach()

			svc, err := a.sheetService(store, s)
			if err != nil {
				return err
			}
			sh, err := svc.ForPet(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("sheet %q: %w", args[0], err)
			}

			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), sh)
			}
			printSheet(cmd.OutOrStdout(), sh)
			return nil
		},
	}
	cmd.Flags().StringVar(&style, "style", "", "bar style (wide, compact, mini; default from config)")
	return cmd
}

// printSheet renders one bar per line. Duplicate bars name their source.
func printSheet(w io.Writer, sh *sheet.Sheet) {
	pattern := sh.Pattern
	if pattern == "" {
		pattern = "none"
	}
	fmt.Fprintf(w, "%s (%s)  pattern: %s  style: %s\n", sh.Name, sh.Breed, pattern, sh.Style)

	rows := make([][]string, len(sh.Bars))
	for i, bar := range sh.Bars {
		label := bar.Trait
		if bar.Duplicate {
			label += " (" + bar.Source + ")"
		}
		rows[i] = []string{
			label,
			statbar.RenderText(bar.Result, barWidth),
			fmt.Sprintf("%d..%d", bar.Min, bar.Max),
		}
	}
	printTable(w, []string{"TRAIT", "BAR", "RANGE"}, rows)
}
