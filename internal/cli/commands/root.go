package commands

import (
	"context"
	"fmt"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rclgo/msgidl/internal/cli/config"
	"github.com/rclgo/msgidl/internal/cli/ui"
	"github.com/rclgo/msgidl/internal/compiler/cache"
	"github.com/rclgo/msgidl/internal/workspace"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// app holds what commands share once flags and config are resolved
type app struct {
	configPath string
	verbose    bool
	noColor    bool

	cfg    *config.Config
	logger *zap.Logger
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "msgidl",
		Short: "ROS interface definition parser and tooling",
		Long: color.CyanString(`msgidl - ROS interface definition tooling

Parses .msg, .srv and .action files into a typed model and checks
whole packages, in the terminal, in a watch loop or in your editor.`),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default ./msgidl.yaml)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")
	flags.BoolVar(&a.noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(newParseCommand(a))
	rootCmd.AddCommand(newCheckCommand(a))
	rootCmd.AddCommand(newShowCommand(a))
	rootCmd.AddCommand(newWatchCommand(a))
	rootCmd.AddCommand(newLSPCommand(a))
	rootCmd.AddCommand(newInitCommand(a))
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// setup loads configuration and builds the logger
func (a *app) setup() error {
	if a.noColor {
		color.NoColor = true
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger, err := newLogger(cfg.Log.Level, a.verbose)
	if err != nil {
		return err
	}
	a.logger = logger
	return nil
}

// newLogger writes to stderr so stdout stays machine-readable
func newLogger(level string, verbose bool) (*zap.Logger, error) {
	var zcfg zap.Config
	if verbose {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, err
		}
		zcfg.Level = zap.NewAtomicLevelAt(lvl)
		zcfg.Encoding = "console"
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		zcfg.DisableStacktrace = true
		zcfg.Sampling = nil
	}
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.ErrorOutputPaths = []string{"stderr"}
	return zcfg.Build()
}

// colorOff reports whether output should be plain
func (a *app) colorOff() bool {
	return a.noColor || color.NoColor
}

// workspaceOptions builds parse options from config; pkg overrides the
// configured package name
func (a *app) workspaceOptions(pkg string) workspace.Options {
	if pkg == "" {
		pkg = a.cfg.Package
	}
	return workspace.Options{
		Package: pkg,
		Workers: a.cfg.Workers,
		Logger:  a.logger,
	}
}

// openCache opens the configured parse cache; a nil cache means caching
// is disabled. Callers close it.
func (a *app) openCache(ctx context.Context) (*cache.InterfaceCache, error) {
	if a.cfg.Cache.Backend == cache.BackendNone {
		return nil, nil
	}
	store, err := cache.OpenStore(ctx, a.cfg.CacheOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open %s cache: %w", a.cfg.Cache.Backend, err)
	}
	a.logger.Debug("cache opened", zap.String("backend", a.cfg.Cache.Backend))
	return cache.NewInterfaceCache(store), nil
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the msgidl version, Git commit, build date, and Go version",
		Run: func(cmd *cobra.Command, args []string) {
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			table := ui.NewKeyValueTable(cmd.OutOrStdout(), color.NoColor)
			table.AddRow("msgidl version", Version)
			table.AddRow("Git commit", GitCommit)
			table.AddRow("Build date", BuildDate)
			table.AddRow("Go version", goVer)
			table.Render()
		},
	}
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		if _, ok := err.(*exitError); !ok {
			errorColor := color.New(color.FgRed, color.Bold)
			errorColor.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		}
		return err
	}
	return nil
}

// exitError signals a failure that has already been reported to the user
type exitError struct {
	msg string
}

func (e *exitError) Error() string {
	return e.msg
}
