package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/petstats/internal/patterns"
	"github.com/mesh-intelligence/petstats/pkg/types"
)

func (a *app) newPetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pet",
		Short: "Manage pet records",
	}
	cmd.AddCommand(a.newPetAddCmd())
	cmd.AddCommand(a.newPetGetCmd())
	cmd.AddCommand(a.newPetListCmd())
	cmd.AddCommand(a.newPetDeleteCmd())
	cmd.AddCommand(a.newPetSetStatCmd())
	return cmd
}

func (a *app) newPetAddCmd() *cobra.Command {
	var (
		name, breed, pattern string
		stats, alts          []string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a pet",
		Long: `Add creates a pet record. Stats are trait=value pairs; alternate values
for duplicate bars use <trait>_alt=value.

Example:
  petstats pet add --name Mochi --breed Husky --stat Energy=130 --stat Loyalty=40
  petstats pet add --name Twin --pattern energy_duplicate --alt energy_alt=12`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !patterns.IsBuiltIn(pattern) {
				return fmt.Errorf("%w: %q", types.ErrUnknownPattern, pattern)
			}
			pet := &types.Pet{Name: name, Breed: breed, Pattern: pattern}

			values, err := parseAssignments(stats)
			if err != nil {
				return err
			}
			for trait, v := range values {
				if err := pet.SetStat(trait, v); err != nil {
					return fmt.Errorf("stat %q: %w", trait, err)
				}
			}
			altValues, err := parseAssignments(alts)
			if err != nil {
				return err
			}
			for field, v := range altValues {
				if err := pet.SetAltStat(field, v); err != nil {
					return fmt.Errorf("alternate %q: %w", field, err)
				}
			}

			pets, done, err := a.table(types.TablePets)
			if err != nil {
				return err
			}
			defer done()

			id, err := pets.Set("", pet)
			if err != nil {
				return fmt.Errorf("create pet: %w", err)
			}
			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), pet)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created pet: %s\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "pet name (required)")
	cmd.Flags().StringVar(&breed, "breed", "", "breed name")
	cmd.Flags().StringVar(&pattern, "pattern", "", "duplicate-stat pattern")
	cmd.Flags().StringArrayVar(&stats, "stat", nil, "trait=value (repeatable)")
	cmd.Flags().StringArrayVar(&alts, "alt", nil, "<trait>_alt=value (repeatable)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func (a *app) newPetGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <pet-id>",
		Short: "Show a pet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pets, done, err := a.table(types.TablePets)
			if err != nil {
				return err
			}
			defer done()

			entity, err := pets.Get(args[0])
			if err != nil {
				return fmt.Errorf("pet %q: %w", args[0], err)
			}
			pet := entity.(*types.Pet)
			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), pet)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:      %s\n", pet.PetID)
			fmt.Fprintf(out, "Name:    %s\n", pet.Name)
			fmt.Fprintf(out, "Breed:   %s\n", pet.Breed)
			fmt.Fprintf(out, "Pattern: %s\n", pet.Pattern)
			rows := make([][]string, 0, len(types.StandardTraits))
			for _, trait := range types.StandardTraits {
				alt := ""
				if v, ok := pet.AltStat(types.AltField(trait)); ok {
					alt = strconv.Itoa(v)
				}
				rows = append(rows, []string{trait, strconv.Itoa(pet.Stat(trait)), alt})
			}
			printTable(out, []string{"TRAIT", "VALUE", "ALT"}, rows)
			return nil
		},
	}
}

func (a *app) newPetListCmd() *cobra.Command {
	var (
		breed, name   string
		limit, offset int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := map[string]any{}
			if breed != "" {
				filter["breed"] = breed
			}
			if name != "" {
				filter["name"] = name
			}
			if limit > 0 {
				filter["limit"] = limit
			}
			if offset > 0 {
				filter["offset"] = offset
			}

			pets, done, err := a.table(types.TablePets)
			if err != nil {
				return err
			}
			defer done()

			entities, err := pets.Fetch(filter)
			if err != nil {
				return fmt.Errorf("fetch pets: %w", err)
			}
			list := make([]*types.Pet, len(entities))
			for i, e := range entities {
				list[i] = e.(*types.Pet)
			}
			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), list)
			}

			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(out, "No pets found.")
				return nil
			}
			rows := make([][]string, len(list))
			for i, p := range list {
				rows[i] = []string{shortID(p.PetID), p.Name, p.Breed, p.Pattern, p.CreatedAt.Format("2006-01-02")}
			}
			printTable(out, []string{"ID", "NAME", "BREED", "PATTERN", "CREATED"}, rows)
			fmt.Fprintf(out, "Total: %d pet(s)\n", len(list))
			return nil
		},
	}
	cmd.Flags().StringVar(&breed, "breed", "", "filter by breed")
	cmd.Flags().StringVar(&name, "name", "", "filter by name")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of results (0 = no limit)")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of results to skip")
	return cmd
}

func (a *app) newPetDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <pet-id>",
		Short: "Delete a pet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pets, done, err := a.table(types.TablePets)
			if err != nil {
				return err
			}
			defer done()

			if err := pets.Delete(args[0]); err != nil {
				return fmt.Errorf("delete pet %q: %w", args[0], err)
			}
			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), map[string]string{"deleted": args[0]})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted pet: %s\n", args[0])
			return nil
		},
	}
}

func (a *app) newPetSetStatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-stat <pet-id> <field> <value>",
		Short: "Set a trait or alternate value on a pet",
		Long: `Set-stat updates one value. The field is a trait name or <trait>_alt.

Example:
  petstats pet set-stat 0192f3a4 Energy -1
  petstats pet set-stat 0192f3a4 energy_alt 40`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, field := args[0], args[1]
			value, err := parseInt("value", args[2])
			if err != nil {
				return err
			}

			pets, done, err := a.table(types.TablePets)
			if err != nil {
				return err
			}
			defer done()

			entity, err := pets.Get(id)
			if err != nil {
				return fmt.Errorf("pet %q: %w", id, err)
			}
			pet := entity.(*types.Pet)
			if strings.HasSuffix(strings.ToLower(field), types.AltFieldSuffix) {
				err = pet.SetAltStat(field, value)
			} else {
				err = pet.SetStat(field, value)
			}
			if err != nil {
				return fmt.Errorf("field %q: %w", field, err)
			}
			if _, err := pets.Set(id, pet); err != nil {
				return fmt.Errorf("update pet: %w", err)
			}

			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), pet)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s: %s = %d\n", pet.Name, field, value)
			return nil
		},
	}
	return noFlagsAfterArgs(cmd)
}
