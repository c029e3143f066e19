package commands

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rclgo/msgidl/compiler/errors"
	"github.com/rclgo/msgidl/internal/cli/config"
	"github.com/rclgo/msgidl/internal/cli/ui"
	"github.com/rclgo/msgidl/internal/workspace"
)

func newCheckCommand(a *app) *cobra.Command {
	var (
		pkg      string
		format   string
		progress bool
	)

	cmd := &cobra.Command{
		Use:   "check [dir]",
		Short: "Parse every interface file of a package",
		Long: `Load a ROS package directory and parse the files under msg/, srv/
and action/. Every file is reported; the command fails if any file
does not parse.

Examples:
  msgidl check
  msgidl check ./src/demo_msgs --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			if format == "" {
				format = a.cfg.Output.Format
			}
			return runCheck(cmd, a, dir, pkg, format, progress)
		},
	}

	cmd.Flags().StringVarP(&pkg, "package", "p", "", "package name (default from package.xml)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: text, json or yaml (default from config)")
	cmd.Flags().BoolVar(&progress, "progress", false, "show a progress bar while parsing")

	return cmd
}

func runCheck(cmd *cobra.Command, a *app, dir, pkgName, format string, progress bool) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	noColor := a.colorOff()

	opts := a.workspaceOptions(pkgName)
	c, err := a.openCache(ctx)
	if err != nil {
		return err
	}
	if c != nil {
		defer c.Close()
		opts.Cache = c
	}

	var bar *ui.ProgressBar
	if progress && format == config.FormatText {
		bar = ui.NewProgressBar(cmd.ErrOrStderr(), ui.ProgressBarOptions{NoColor: noColor})
		opts.ProgressFunc = bar.Callback()
	}

	pkg, err := workspace.New(opts).Load(ctx, dir)
	if err != nil {
		return err
	}
	if bar != nil && len(pkg.Results) > 0 {
		bar.Finish()
	}

	diags := make([]errors.CompilerError, 0, pkg.Summary.Failed)
	for _, r := range pkg.Results {
		if r.Err != nil {
			diags = append(diags, errors.EnrichErrorFromFile(errors.ToCompilerError(r.Err)))
		}
	}

	switch format {
	case config.FormatJSON:
		report, err := errors.FormatErrorsAsJSON(diags)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, report)
	case config.FormatYAML:
		data, err := yaml.Marshal(errors.NewReport(diags))
		if err != nil {
			return err
		}
		out.Write(data)
	case config.FormatText:
		renderCheck(out, pkg, noColor)
		ui.WriteDiagnostics(out, diags, noColor)
		if len(diags) == 0 {
			ui.WriteSuccess(out, fmt.Sprintf("%s: %d interface files parsed in %s",
				pkg.Name, pkg.Summary.TotalFiles, pkg.Summary.Duration.Round(time.Millisecond)), noColor)
		} else {
			fmt.Fprint(out, ui.CheckFailedError(pkg.Name, pkg.Summary.Failed, pkg.Summary.TotalFiles, noColor))
		}
	default:
		return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
	}

	if pkg.Summary.Failed > 0 {
		return &exitError{msg: fmt.Sprintf("%d of %d files failed to parse", pkg.Summary.Failed, pkg.Summary.TotalFiles)}
	}
	return nil
}

func renderCheck(w io.Writer, pkg *workspace.Package, noColor bool) {
	ui.Header(w, pkg.Name, noColor)
	workspace.SortByName(pkg.Results)

	table := ui.NewTable(w, []string{"File", "Kind", "Status", "Time"}, &ui.TableOptions{
		NoColor: noColor,
		Align:   []ui.Align{ui.AlignLeft, ui.AlignLeft, ui.AlignLeft, ui.AlignRight},
	})
	table.StyleColumn(2, func(cell string) *color.Color {
		if cell == "ok" || cell == "cached" {
			return color.New(color.FgGreen)
		}
		return color.New(color.FgRed)
	})

	for _, r := range pkg.Results {
		rel, err := filepath.Rel(pkg.Dir, r.Path)
		if err != nil {
			rel = r.Path
		}
		kind := filepath.Ext(r.Path)
		if kind != "" {
			kind = kind[1:]
		}

		status := "ok"
		switch {
		case r.Err != nil:
			status = errors.ToCompilerError(r.Err).Code
		case r.Cached:
			status = "cached"
		}
		table.AddRow(rel, kind, status, r.Duration.Round(time.Microsecond).String())
	}
	table.Render()
	fmt.Fprintln(w)
}
