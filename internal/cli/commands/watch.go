package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rclgo/msgidl/internal/cli/ui"
	"github.com/rclgo/msgidl/internal/watch"
	"github.com/rclgo/msgidl/internal/workspace"
)

func newWatchCommand(a *app) *cobra.Command {
	var (
		pkg       string
		addr      string
		debounce  time.Duration
		profiling bool
		metrics   bool
	)

	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Re-check a package whenever its interface files change",
		Long: `Watch the msg/, srv/ and action/ directories of a package and
re-parse every file that changes.

With --addr a status server is started:
  /healthz            liveness and last check summary
  /ws                 check events over WebSocket
  /api/interfaces     metadata of the parsed package (?format=yaml)
  /api/diagnostics    outstanding errors
  /metrics            Prometheus metrics (with --metrics)
  /debug/pprof/       runtime profiles (with --profiling)

When watch.auth_secret is configured (or MSGIDL_WATCH_AUTH_SECRET is
set) every route but /healthz needs the bearer token printed at startup.

Examples:
  msgidl watch
  msgidl watch ./src/demo_msgs --addr 127.0.0.1:7070 --metrics`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}

			if !cmd.Flags().Changed("addr") {
				addr = a.cfg.Watch.Addr
			}
			if !cmd.Flags().Changed("debounce") {
				debounce = a.cfg.Watch.Debounce
			}
			if !cmd.Flags().Changed("profiling") {
				profiling = a.cfg.Watch.Profiling
			}
			if !cmd.Flags().Changed("metrics") {
				metrics = a.cfg.Metrics.Enabled
			}

			opts := a.workspaceOptions(pkg)
			if metrics {
				opts.Metrics = workspace.NewMetrics(a.cfg.Metrics.Prefix)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var auth *watch.TokenAuth
			if secret := a.cfg.Watch.AuthSecret; secret != "" {
				auth = watch.NewTokenAuth(secret, 0)
			}

			return runWatch(ctx, cmd, a, watch.DevServerConfig{
				Dir:       dir,
				Addr:      addr,
				Debounce:  debounce,
				Profiling: profiling,
				Auth:      auth,
				Workspace: opts,
			})
		},
	}

	cmd.Flags().StringVarP(&pkg, "package", "p", "", "package name (default from package.xml)")
	cmd.Flags().StringVar(&addr, "addr", "", "status server address, e.g. 127.0.0.1:7070")
	cmd.Flags().DurationVar(&debounce, "debounce", 100*time.Millisecond, "quiet period before re-checking")
	cmd.Flags().BoolVar(&profiling, "profiling", false, "serve pprof under /debug/pprof")
	cmd.Flags().BoolVar(&metrics, "metrics", false, "serve Prometheus metrics under /metrics")

	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command, a *app, cfg watch.DevServerConfig) error {
	out := cmd.OutOrStdout()
	noColor := a.colorOff()

	c, err := a.openCache(ctx)
	if err != nil {
		return err
	}
	if c != nil {
		defer c.Close()
		cfg.Workspace.Cache = c
	}

	cfg.OnResult = func(res *watch.CheckResult) {
		printCheckResult(out, cfg.Dir, res, noColor)
	}

	server, err := watch.NewDevServer(cfg)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	if _, err := server.Start(ctx); err != nil {
		server.Stop(context.Background())
		return err
	}

	banner := color.New(color.FgCyan, color.Bold)
	if noColor {
		banner.DisableColor()
	}
	fmt.Fprintln(out)
	banner.Fprintf(out, "Watching %s\n", server.Checker().Package())
	if addr := server.Addr(); addr != "" {
		fmt.Fprintf(out, "   Status server: http://%s\n", addr)
		if cfg.Auth != nil {
			token, err := cfg.Auth.Issue("msgidl-watch")
			if err != nil {
				server.Stop(context.Background())
				return fmt.Errorf("failed to issue status token: %w", err)
			}
			fmt.Fprintf(out, "   Bearer token:  %s\n", token)
		}
	}
	fmt.Fprintln(out, "   Press Ctrl+C to stop")
	fmt.Fprintln(out)

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("error stopping watcher: %w", err)
	}
	return nil
}

// printCheckResult reports one check as a status line and its diagnostics
func printCheckResult(w io.Writer, dir string, res *watch.CheckResult, noColor bool) {
	stamp := time.Now().Format("15:04:05")
	names := make([]string, 0, len(res.Files)+len(res.Removed))
	for _, f := range append(append([]string{}, res.Files...), res.Removed...) {
		if rel, err := filepath.Rel(dir, f); err == nil {
			f = rel
		}
		names = append(names, f)
	}

	scope := fmt.Sprintf("%d files", res.Total)
	if len(names) > 0 && len(names) < res.Total {
		scope = fmt.Sprint(names)
	}

	if res.Success() {
		ui.WriteSuccess(w, fmt.Sprintf("[%s] %s ok (%s)", stamp, scope, res.Duration.Round(time.Millisecond)), noColor)
		return
	}

	ui.WriteDiagnostics(w, res.Errors, noColor)
	fmt.Fprint(w, ui.Warning(fmt.Sprintf("[%s] %d of %d files failing", stamp, res.Failed, res.Total), noColor))
}
