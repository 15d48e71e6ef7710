package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/petstats/internal/patterns"
	"github.com/mesh-intelligence/petstats/internal/sheet"
	"github.com/mesh-intelligence/petstats/internal/statbar"
	"github.com/mesh-intelligence/petstats/pkg/sqlite"
	"github.com/mesh-intelligence/petstats/pkg/types"
)

// attachStore resolves the data directory and attaches a store. The caller
// must defer store.Detach().
func (a *app) attachStore() (types.Store, error) {
	cfg, err := a.storeConfig()
	if err != nil {
		return nil, sysError(err)
	}
	store := sqlite.NewBackend(a.logger)
	if err := store.Attach(cfg); err != nil {
		return nil, sysError(fmt.Errorf("attach store: %w", err))
	}
	return store, nil
}

// table attaches the store and returns one of its tables.
func (a *app) table(name string) (types.Table, func(), error) {
	store, err := a.attachStore()
	if err != nil {
		return nil, nil, err
	}
	tbl, err := store.GetTable(name)
	if err != nil {
		store.Detach()
		return nil, nil, sysError(fmt.Errorf("get %s table: %w", name, err))
	}
	return tbl, func() { store.Detach() }, nil
}

// barStyle returns the --style flag value, falling back to bar_style from
// config.yaml.
func (a *app) barStyle(flag string) (statbar.BarStyle, error) {
	if flag == "" {
		flag = a.cfg.GetString(cfgKeyBarStyle)
	}
	return statbar.ParseStyle(flag)
}

// sheetService builds a sheet service over an attached store.
func (a *app) sheetService(store types.Store, style statbar.BarStyle) (*sheet.Service, error) {
	opts := patterns.Options{InferDuplicates: a.cfg.GetBool(cfgKeyInferDuplicates)}
	svc, err := sheet.New(store, style, opts, a.logger)
	if err != nil {
		return nil, sysError(err)
	}
	return svc, nil
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return sysError(fmt.Errorf("marshal output: %w", err))
	}
	fmt.Fprintln(w, string(output))
	return nil
}

// printTable writes rows through a tabwriter, trimming trailing spaces.
func printTable(w io.Writer, header []string, rows [][]string) {
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	tw.Flush()

	for _, line := range strings.Split(strings.TrimRight(sb.String(), "\n"), "\n") {
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
}

// parseInt parses a command argument as an integer.
func parseInt(name, s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not an integer", name, s)
	}
	return n, nil
}

// parseAssignments parses key=value pairs with integer values.
func parseAssignments(pairs []string) (map[string]int, error) {
	out := make(map[string]int, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid assignment %q (expected name=value)", pair)
		}
		n, err := parseInt(key, value)
		if err != nil {
			return nil, err
		}
		out[strings.TrimSpace(key)] = n
	}
	return out, nil
}

// shortID truncates an ID to its first 8 characters for tables.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// noFlagsAfterArgs stops flag parsing at the first positional argument so
// negative numbers are read as values.
func noFlagsAfterArgs(cmd *cobra.Command) *cobra.Command {
	cmd.Flags().SetInterspersed(false)
	return cmd
}
