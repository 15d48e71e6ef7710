// Package cli implements the petstats command-line interface.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mesh-intelligence/petstats/internal/paths"
	"github.com/mesh-intelligence/petstats/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// Version is the petstats release, set at build time with -ldflags -X.
var Version = "0.1.0-dev"

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
	verbose   bool
}

// app is the state shared by the commands of one root command.
type app struct {
	flags     rootFlags
	configDir string
	cfg       *viper.Viper
	logger    *zap.Logger
}

// NewRootCmd creates the top-level "petstats" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "petstats",
		Short: "Normalize pet stats and render stat bars",
		Long: `petstats maps raw pet trait values onto breed-specific ranges and
computes what each stat bar shows: fill percentage, indicator position and
displayed number, including lost-stat countdowns and over-stat values.`,
		Version: Version,
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: $(CWD)/.petstats-db)")
	root.PersistentFlags().BoolVar(&a.flags.jsonMode, "json", false, "output as JSON")
	root.PersistentFlags().BoolVarP(&a.flags.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newVersionCmd())
	root.AddCommand(a.newInitCmd())
	root.AddCommand(a.newComputeCmd())
	root.AddCommand(a.newPetCmd())
	root.AddCommand(a.newSheetCmd())
	root.AddCommand(a.newBreedCmd())
	root.AddCommand(a.newOverrideCmd())
	root.AddCommand(a.newServeCmd())

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "petstats:", err)
		os.Exit(exitCode(err))
	}
}

// setup builds the logger and loads config.yaml. The version command needs
// neither.
func (a *app) setup(cmd *cobra.Command) error {
	logger, err := newLogger(a.flags.verbose)
	if err != nil {
		return sysError(fmt.Errorf("build logger: %w", err))
	}
	a.logger = logger

	if cmd.Name() == "version" {
		return nil
	}

	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	cfg, err := loadConfig(configDir)
	if err != nil {
		return sysError(err)
	}
	a.configDir = configDir
	a.cfg = cfg
	a.logger.Debug("config loaded",
		zap.String("config_dir", configDir),
		zap.String("backend", cfg.GetString(cfgKeyBackend)))
	return nil
}

// newLogger builds the production logger. Only warnings and errors are
// written unless verbose is set.
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	cfg.Sampling = nil
	return cfg.Build()
}

// resolveDataDir returns the data directory:
// --data-dir flag > config.yaml data_dir > PETSTATS_DATA_DIR env > $(CWD)/.petstats-db.
func (a *app) resolveDataDir() (string, error) {
	return paths.ResolveDataDir(a.flags.dataDir, a.cfg.GetString(cfgKeyDataDir))
}

// systemError marks a failure that is not the user's fault.
type systemError struct {
	err error
}

func (e *systemError) Error() string { return e.err.Error() }
func (e *systemError) Unwrap() error { return e.err }

func sysError(err error) error {
	if err == nil {
		return nil
	}
	return &systemError{err: err}
}

// exitCode maps an error to the process exit code. Domain validation and
// lookup failures are user errors; marked system errors and anything the
// store reports unexpectedly exit with exitSysError.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var se *systemError
	if errors.As(err, &se) {
		return exitSysError
	}
	for _, userErr := range []error{
		types.ErrNotFound, types.ErrInvalidID, types.ErrInvalidData,
		types.ErrInvalidFilter, types.ErrInvalidName, types.ErrInvalidTrait,
		types.ErrInvalidRange, types.ErrUnknownPattern, types.ErrTableNotFound,
	} {
		if errors.Is(err, userErr) {
			return exitUserError
		}
	}
	if errors.Is(err, types.ErrStoreDetached) || errors.Is(err, types.ErrBackendUnknown) || errors.Is(err, types.ErrBackendEmpty) {
		return exitSysError
	}
	// Argument and flag errors from cobra land here.
	return exitUserError
}
