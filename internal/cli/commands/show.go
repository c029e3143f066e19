package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rclgo/msgidl/compiler/errors"
	"github.com/rclgo/msgidl/internal/cli/config"
	"github.com/rclgo/msgidl/internal/cli/ui"
	"github.com/rclgo/msgidl/internal/compiler/metadata"
	"github.com/rclgo/msgidl/internal/workspace"
)

func newShowCommand(a *app) *cobra.Command {
	var (
		pkg    string
		format string
	)

	cmd := &cobra.Command{
		Use:   "show <name> [dir]",
		Short: "Describe one interface of a package",
		Long: `Describe an interface of the package in dir (default: current directory).

The name may be bare (Point), qualified by kind (msg/Point) or fully
qualified (demo_msgs/msg/Point).`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 2 {
				dir = args[1]
			}
			if format == "" {
				format = a.cfg.Output.Format
			}
			return runShow(cmd, a, args[0], dir, pkg, format)
		},
	}

	cmd.Flags().StringVarP(&pkg, "package", "p", "", "package name (default from package.xml)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: text, json or yaml (default from config)")

	return cmd
}

func runShow(cmd *cobra.Command, a *app, name, dir, pkgName, format string) error {
	noColor := a.colorOff()

	pkg, err := workspace.New(a.workspaceOptions(pkgName)).Load(cmd.Context(), dir)
	if err != nil {
		return err
	}

	var candidates []string
	for _, r := range pkg.Results {
		if r.Err != nil {
			continue
		}
		iface := metadata.FromInterface(r.Interface, r.Path)
		if matchesName(iface, name) {
			return printInterface(cmd, iface, format, noColor)
		}
		candidates = append(candidates, iface.Name)
	}

	bare := name[strings.LastIndex(name, "/")+1:]
	fmt.Fprint(cmd.ErrOrStderr(), ui.InterfaceNotFoundError(name, pkg.Name, errors.FindSimilar(bare, candidates, 3, 3), noColor))
	return &exitError{msg: fmt.Sprintf("interface %s not found", name)}
}

func matchesName(iface metadata.InterfaceMetadata, name string) bool {
	switch strings.Count(name, "/") {
	case 0:
		return iface.Name == name
	case 1:
		return iface.Kind+"/"+iface.Name == name
	default:
		return iface.FullName == name
	}
}

func printInterface(cmd *cobra.Command, iface metadata.InterfaceMetadata, format string, noColor bool) error {
	out := cmd.OutOrStdout()
	switch format {
	case config.FormatJSON:
		data, err := json.MarshalIndent(iface, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
	case config.FormatYAML:
		data, err := yaml.Marshal(iface)
		if err != nil {
			return err
		}
		out.Write(data)
	default:
		describeInterface(out, iface, noColor)
	}
	return nil
}
