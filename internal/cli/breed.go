package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/petstats/internal/breeds"
	"github.com/mesh-intelligence/petstats/internal/statbar"
	"github.com/mesh-intelligence/petstats/pkg/types"
)

func (a *app) newBreedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "breed",
		Short: "Manage breed stat ranges",
		Long: `Breeds give each trait a nominal min..max range. The built-in table is
seeded into the store on first use; stored breeds replace built-in breeds of
the same name.`,
	}
	cmd.AddCommand(a.newBreedShowCmd())
	cmd.AddCommand(a.newBreedListCmd())
	cmd.AddCommand(a.newBreedSetCmd())
	cmd.AddCommand(a.newBreedDeleteCmd())
	return cmd
}

func (a *app) newBreedShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show the resolved ranges of a breed",
		Long: `Show prints the range of every standard trait for a breed. Breed names
match case-insensitively; unknown breeds and missing traits use 0..100.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.attachStore()
			if err != nil {
				return err
			}
			defer store.Detach()

			svc, err := a.sheetService(store, statbar.StyleWide)
			if err != nil {
				return err
			}
			if err := svc.Refresh(); err != nil {
				return sysError(err)
			}
			cfg := svc.Breeds.Lookup(args[0])

			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), cfg)
			}
			out := cmd.OutOrStdout()
			if !svc.Breeds.Known(args[0]) {
				fmt.Fprintf(out, "%s is not a known breed; using default ranges\n", args[0])
			}
			rows := make([][]string, 0, len(types.StandardTraits))
			for _, trait := range types.StandardTraits {
				d := cfg.Stat(trait)
				rows = append(rows, []string{trait, strconv.Itoa(d.Min), strconv.Itoa(d.Max)})
			}
			printTable(out, []string{"TRAIT", "MIN", "MAX"}, rows)
			return nil
		},
	}
}

func (a *app) newBreedListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List known breeds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, done, err := a.table(types.TableBreeds)
			if err != nil {
				return err
			}
			defer done()

			entities, err := tbl.Fetch(nil)
			if err != nil {
				return fmt.Errorf("fetch breeds: %w", err)
			}
			names := make([]string, len(entities))
			for i, e := range entities {
				names[i] = e.(*types.BreedConfig).Breed
			}
			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), names)
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func (a *app) newBreedSetCmd() *cobra.Command {
	var stats []string
	cmd := &cobra.Command{
		Use:   "set <name>",
		Short: "Create or update a stored breed",
		Long: `Set stores trait ranges for a breed. Ranges are Trait=min:max pairs and
max must be greater than min. Traits not named keep their stored or built-in
range.

Example:
  petstats breed set Pug --stat Curiosity=10:60 --stat Energy=0:80`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ranges, err := parseRanges(stats)
			if err != nil {
				return err
			}

			tbl, done, err := a.table(types.TableBreeds)
			if err != nil {
				return err
			}
			defer done()

			cfg, err := baseBreed(tbl, args[0])
			if err != nil {
				return err
			}
			for trait, d := range ranges {
				cfg.Stats[trait] = d
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			if _, err := tbl.Set("", cfg); err != nil {
				return fmt.Errorf("set breed: %w", err)
			}
			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), cfg)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved breed: %s\n", cfg.Breed)
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&stats, "stat", nil, "Trait=min:max (repeatable)")
	_ = cmd.MarkFlagRequired("stat")
	return cmd
}

func (a *app) newBreedDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a stored breed",
		Long: `Delete removes a breed from the store. A built-in breed of the same name
then applies again; other breeds fall back to 0..100.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, done, err := a.table(types.TableBreeds)
			if err != nil {
				return err
			}
			defer done()

			if err := tbl.Delete(args[0]); err != nil {
				return fmt.Errorf("delete breed %q: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted breed: %s\n", args[0])
			return nil
		},
	}
}

// baseBreed returns the config breed set starts from: the stored breed, else
// the built-in breed, else an empty config.
func baseBreed(tbl types.Table, name string) (*types.BreedConfig, error) {
	cfg := &types.BreedConfig{Breed: strings.TrimSpace(name), Stats: map[string]types.StatDefinition{}}

	row, err := tbl.Get(name)
	switch {
	case err == nil:
		stored := row.(*types.BreedConfig)
		cfg.Breed = stored.Breed
		for trait, d := range stored.Stats {
			cfg.Stats[trait] = d
		}
		return cfg, nil
	case !errors.Is(err, types.ErrNotFound):
		return nil, fmt.Errorf("get breed: %w", err)
	}

	builtIn, err := breeds.BuiltInConfigs()
	if err != nil {
		return nil, sysError(err)
	}
	for _, b := range builtIn {
		if types.BreedKey(b.Breed) != types.BreedKey(name) {
			continue
		}
		cfg.Breed = b.Breed
		for trait, d := range b.Stats {
			canonical, err := types.CanonicalTrait(trait)
			if err != nil {
				continue
			}
			d.Name = canonical
			cfg.Stats[canonical] = d
		}
	}
	return cfg, nil
}

// parseRanges parses Trait=min:max pairs into canonical stat definitions.
func parseRanges(pairs []string) (map[string]types.StatDefinition, error) {
	out := make(map[string]types.StatDefinition, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		lo, hi, okRange := strings.Cut(value, ":")
		if !ok || !okRange {
			return nil, fmt.Errorf("invalid range %q (expected Trait=min:max)", pair)
		}
		trait, err := types.CanonicalTrait(key)
		if err != nil {
			return nil, err
		}
		minV, err := parseInt(trait+" min", lo)
		if err != nil {
			return nil, err
		}
		maxV, err := parseInt(trait+" max", hi)
		if err != nil {
			return nil, err
		}
		out[trait] = types.StatDefinition{Name: trait, Min: minV, Max: maxV}
	}
	return out, nil
}
