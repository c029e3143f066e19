package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rclgo/msgidl/compiler/errors"
	"github.com/rclgo/msgidl/internal/cli/config"
	"github.com/rclgo/msgidl/internal/cli/ui"
	"github.com/rclgo/msgidl/internal/compiler/metadata"
	"github.com/rclgo/msgidl/internal/workspace"
)

func newParseCommand(a *app) *cobra.Command {
	var (
		pkg    string
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "parse <file>...",
		Short: "Parse interface files and print their structure",
		Long: `Parse .msg, .srv and .action files and print the parsed model.

The package name comes from --package, the config file, or the
package.xml of the package the file lives in.

Examples:
  # Human-readable
  msgidl parse msg/Point.msg

  # Metadata for a generator
  msgidl parse --format json msg/*.msg srv/*.srv

  # Write metadata to a file; .yaml picks YAML and .gz compresses
  msgidl parse -o build/interfaces.json.gz msg/*.msg`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = a.cfg.Output.Format
			}
			switch format {
			case config.FormatText, config.FormatJSON, config.FormatYAML:
			default:
				return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
			}
			return runParse(cmd, a, args, pkg, format, output)
		},
	}

	cmd.Flags().StringVarP(&pkg, "package", "p", "", "package name documents belong to")
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: text, json or yaml (default from config)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write metadata to a file instead of stdout")

	return cmd
}

func runParse(cmd *cobra.Command, a *app, files []string, pkg, format, output string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	noColor := a.colorOff()

	opts := a.workspaceOptions(pkg)
	c, err := a.openCache(ctx)
	if err != nil {
		return err
	}
	if c != nil {
		defer c.Close()
		opts.Cache = c
	}
	ws := workspace.New(opts)

	var (
		ifaces []metadata.InterfaceMetadata
		diags  []errors.CompilerError
	)
	for _, file := range files {
		res := ws.ParseFile(ctx, packageFor(file, opts.Package), file)
		if res.Err != nil {
			diags = append(diags, errors.EnrichErrorFromFile(errors.ToCompilerError(res.Err)))
			continue
		}
		ifaces = append(ifaces, metadata.FromInterface(res.Interface, file))
	}
	meta := metadata.Extract(ifaces...)

	if output != "" {
		write := metadata.WriteToFile
		if strings.HasSuffix(output, ".gz") {
			write = metadata.WriteCompressedToFile
		}
		if err := write(meta, output); err != nil {
			return err
		}
		a.logger.Info("metadata written", zap.String("path", output), zap.Int("interfaces", len(meta.Interfaces)))
	} else {
		switch format {
		case config.FormatText:
			for _, iface := range meta.Interfaces {
				describeInterface(out, iface, noColor)
			}
		default:
			data, err := metadata.Encode(meta, metadata.Format(format))
			if err != nil {
				return err
			}
			out.Write(data)
		}
	}

	if len(diags) > 0 {
		ui.WriteDiagnostics(cmd.ErrOrStderr(), diags, noColor)
		return &exitError{msg: fmt.Sprintf("%d of %d files failed to parse", len(diags), len(files))}
	}
	return nil
}

// packageFor names the package of an interface file: the override when
// given, otherwise the package owning the file's msg/srv/action directory
func packageFor(file, override string) string {
	if override != "" {
		return override
	}
	dir := filepath.Dir(file)
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	for _, sub := range workspace.InterfaceDirs {
		if filepath.Base(dir) == sub {
			return workspace.PackageName(filepath.Dir(dir))
		}
	}
	if root, err := config.FindPackageRoot(dir); err == nil {
		return workspace.PackageName(root)
	}
	return workspace.PackageName(dir)
}
