package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rclgo/msgidl/internal/lsp"
	"github.com/rclgo/msgidl/internal/tooling"
)

func newLSPCommand(a *app) *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		Long: `Start the msgidl Language Server Protocol (LSP) server.

The server provides editor integration for .msg, .srv and .action files:
  • Diagnostics as you type
  • Completion of type keywords and message names
  • Go-to-definition of message types
  • Hover information
  • Document and workspace symbols

The LSP server communicates via JSON-RPC over stdin/stdout.
It is typically started automatically by your editor.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := a.logger
			if logFile != "" {
				var err error
				logger, err = fileLogger(logFile, a.verbose)
				if err != nil {
					return err
				}
				defer logger.Sync()
			}

			server := lsp.NewServer(logger.Named("lsp"), &tooling.Config{
				DefaultPackage: a.cfg.Package,
			})
			server.SetVersion(Version)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return server.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&logFile, "log-file", "", "write server logs to a file instead of stderr")

	return cmd
}

// fileLogger logs JSON lines to path, keeping stderr free for editors that
// surface it
func fileLogger(path string, verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	return cfg.Build()
}
