package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/petstats/pkg/types"
)

func (a *app) newOverrideCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "override",
		Short: "Manage display overrides",
		Long: `Overrides force the displayed number for an exact raw value of a trait.
An override without a pet name applies to every pet; a pet-specific override
wins over it.`,
	}
	cmd.AddCommand(a.newOverrideAddCmd())
	cmd.AddCommand(a.newOverrideListCmd())
	cmd.AddCommand(a.newOverrideDeleteCmd())
	return cmd
}

func (a *app) newOverrideAddCmd() *cobra.Command {
	var (
		pet, trait   string
		raw, display int
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add or replace an override",
		Long: `Example:
  petstats override add --trait Energy --raw=-1 --display 34
  petstats override add --pet "Lostie Golden" --trait Loyalty --raw 5 --display 99`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o := &types.Override{PetName: pet, Trait: trait, RawValue: raw, DisplayValue: display}
			if err := o.Validate(); err != nil {
				return err
			}

			overrides, done, err := a.table(types.TableOverrides)
			if err != nil {
				return err
			}
			defer done()

			id, err := overrides.Set("", o)
			if err != nil {
				return fmt.Errorf("add override: %w", err)
			}
			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), o)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved override: %s\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&pet, "pet", "", "pet name (empty applies to every pet)")
	cmd.Flags().StringVar(&trait, "trait", "", "trait name (required)")
	cmd.Flags().IntVar(&raw, "raw", 0, "raw value to match")
	cmd.Flags().IntVar(&display, "display", 0, "value to display")
	_ = cmd.MarkFlagRequired("trait")
	_ = cmd.MarkFlagRequired("raw")
	_ = cmd.MarkFlagRequired("display")
	return cmd
}

func (a *app) newOverrideListCmd() *cobra.Command {
	var pet, trait string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored overrides",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := map[string]any{}
			if pet != "" {
				filter["pet_name"] = pet
			}
			if trait != "" {
				filter["trait"] = trait
			}

			overrides, done, err := a.table(types.TableOverrides)
			if err != nil {
				return err
			}
			defer done()

			entities, err := overrides.Fetch(filter)
			if err != nil {
				return fmt.Errorf("fetch overrides: %w", err)
			}
			list := make([]*types.Override, len(entities))
			for i, e := range entities {
				list[i] = e.(*types.Override)
			}
			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), list)
			}

			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(out, "No overrides found.")
				return nil
			}
			rows := make([][]string, len(list))
			for i, o := range list {
				name := o.PetName
				if name == "" {
					name = "*"
				}
				rows[i] = []string{shortID(o.OverrideID), name, o.Trait, strconv.Itoa(o.RawValue), strconv.Itoa(o.DisplayValue)}
			}
			printTable(out, []string{"ID", "PET", "TRAIT", "RAW", "DISPLAY"}, rows)
			return nil
		},
	}
	cmd.Flags().StringVar(&pet, "pet", "", "filter by pet name")
	cmd.Flags().StringVar(&trait, "trait", "", "filter by trait")
	return cmd
}

func (a *app) newOverrideDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <override-id>",
		Short: "Delete an override",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides, done, err := a.table(types.TableOverrides)
			if err != nil {
				return err
			}
			defer done()

			if err := overrides.Delete(args[0]); err != nil {
				return fmt.Errorf("delete override %q: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted override: %s\n", args[0])
			return nil
		},
	}
}
