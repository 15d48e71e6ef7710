package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/petstats/internal/paths"
)

func (a *app) newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize petstats storage",
		Long: `Create the configuration and data directories, write a default
config.yaml, and seed the built-in breed table.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Config dir and config.yaml were created while loading config.
			store, err := a.attachStore()
			if err != nil {
				return err
			}
			if err := store.Detach(); err != nil {
				return sysError(fmt.Errorf("finalize storage: %w", err))
			}

			dataDir, err := a.resolveDataDir()
			if err != nil {
				return sysError(err)
			}

			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), map[string]string{
					"config": paths.ConfigFile(a.configDir),
					"data":   dataDir,
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "petstats initialized successfully")
			fmt.Fprintln(out, "  config:", paths.ConfigFile(a.configDir))
			fmt.Fprintln(out, "  data:  ", dataDir)
			return nil
		},
	}
}
