package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"text/template"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rclgo/msgidl/internal/cli/config"
	"github.com/rclgo/msgidl/internal/compiler/cache"
	"github.com/rclgo/msgidl/internal/workspace"
)

var packageNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// validatePackageName enforces ROS package naming: lowercase letters,
// digits and underscores, starting with a letter
func validatePackageName(name string) error {
	name = strings.TrimSpace(name)
	if len(name) == 0 || len(name) > 100 {
		return fmt.Errorf("package name must be 1-100 characters")
	}
	if !packageNamePattern.MatchString(name) {
		return fmt.Errorf("package name %q must start with a lowercase letter and contain only lowercase letters, digits and underscores", name)
	}
	return nil
}

var packageXMLTemplate = template.Must(template.New("package.xml").Parse(`<?xml version="1.0"?>
<package format="3">
  <name>{{.Name}}</name>
  <version>0.0.0</version>
  <description>{{.Name}} interface definitions</description>
  <maintainer email="todo@example.com">todo</maintainer>
  <license>Apache-2.0</license>

  <buildtool_depend>ament_cmake</buildtool_depend>
  <buildtool_depend>rosidl_default_generators</buildtool_depend>
  <exec_depend>rosidl_default_runtime</exec_depend>
  <member_of_group>rosidl_interface_packages</member_of_group>

  <export>
    <build_type>ament_cmake</build_type>
  </export>
</package>
`))

type initAnswers struct {
	Package string
	Workers string
	Backend string
	DSN     string
}

func newInitCommand(a *app) *cobra.Command {
	var (
		pkg      string
		yes      bool
		force    bool
		scaffold bool
	)

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create a msgidl.yaml for a package",
		Long: `Write msgidl.yaml into dir (default: current directory).

You are asked for the package name, the number of parse workers and the
parse cache backend. With --yes the defaults are used without prompting.
With --scaffold a package.xml and empty msg/, srv/ and action/
directories are created as well.

Examples:
  msgidl init
  msgidl init ./src/demo_msgs --yes --scaffold`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}

			if pkg == "" {
				pkg = workspace.PackageName(dir)
			}
			answers := initAnswers{
				Package: pkg,
				Workers: strconv.Itoa(a.cfg.Workers),
				Backend: cache.BackendMemory,
			}
			if !yes {
				if err := askInit(&answers); err != nil {
					return err
				}
			}
			return runInit(cmd, a, dir, answers, force, scaffold)
		},
	}

	cmd.Flags().StringVarP(&pkg, "package", "p", "", "package name (default from package.xml or the directory name)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "accept defaults without prompting")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing msgidl.yaml")
	cmd.Flags().BoolVar(&scaffold, "scaffold", false, "also create package.xml and interface directories")

	return cmd
}

func askInit(answers *initAnswers) error {
	questions := []*survey.Question{
		{
			Name: "package",
			Prompt: &survey.Input{
				Message: "Package name:",
				Default: answers.Package,
			},
			Validate: func(ans interface{}) error {
				return validatePackageName(fmt.Sprint(ans))
			},
		},
		{
			Name: "workers",
			Prompt: &survey.Input{
				Message: "Parse workers:",
				Default: answers.Workers,
				Help:    "Files parsed in parallel; 0 uses one worker per CPU",
			},
			Validate: func(ans interface{}) error {
				n, err := strconv.Atoi(fmt.Sprint(ans))
				if err != nil || n < 0 {
					return fmt.Errorf("workers must be a non-negative integer")
				}
				return nil
			},
		},
		{
			Name: "backend",
			Prompt: &survey.Select{
				Message: "Parse cache:",
				Options: []string{cache.BackendMemory, cache.BackendNone, cache.BackendSQLite, cache.BackendRedis, cache.BackendPostgres},
				Default: answers.Backend,
			},
		},
	}
	if err := survey.Ask(questions, answers); err != nil {
		return err
	}

	switch answers.Backend {
	case cache.BackendSQLite, cache.BackendRedis, cache.BackendPostgres:
		prompt := &survey.Input{
			Message: "Cache DSN:",
			Default: defaultDSN(answers.Backend),
		}
		return survey.AskOne(prompt, &answers.DSN, survey.WithValidator(survey.Required))
	}
	return nil
}

func defaultDSN(backend string) string {
	switch backend {
	case cache.BackendSQLite:
		return filepath.Join(".msgidl", "cache.db")
	case cache.BackendRedis:
		return "redis://localhost:6379/0"
	case cache.BackendPostgres:
		return "postgres://localhost:5432/msgidl?sslmode=disable"
	}
	return ""
}

func runInit(cmd *cobra.Command, a *app, dir string, answers initAnswers, force, scaffold bool) error {
	out := cmd.OutOrStdout()
	successColor := color.New(color.FgGreen, color.Bold)
	infoColor := color.New(color.FgCyan)
	if a.colorOff() {
		successColor.DisableColor()
		infoColor.DisableColor()
	}

	if err := validatePackageName(answers.Package); err != nil {
		return err
	}
	workers, err := strconv.Atoi(answers.Workers)
	if err != nil {
		return fmt.Errorf("invalid workers %q: %w", answers.Workers, err)
	}

	path := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	cfg := config.Default()
	cfg.Package = answers.Package
	cfg.Workers = workers
	cfg.Cache.Backend = answers.Backend
	cfg.Cache.DSN = answers.DSN
	if err := config.Write(path, cfg); err != nil {
		return err
	}
	infoColor.Fprintf(out, "  create  %s\n", path)

	if scaffold {
		if err := scaffoldPackage(out, infoColor, dir, answers.Package); err != nil {
			return err
		}
	}

	fmt.Fprintln(out)
	successColor.Fprintf(out, "✓ Initialized %s\n", answers.Package)
	return nil
}

func scaffoldPackage(w io.Writer, infoColor *color.Color, dir, name string) error {
	for _, sub := range workspace.InterfaceDirs {
		p := filepath.Join(dir, sub)
		if err := os.MkdirAll(p, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", p, err)
		}
		infoColor.Fprintf(w, "  create  %s%c\n", p, filepath.Separator)
	}

	manifest := filepath.Join(dir, "package.xml")
	if _, err := os.Stat(manifest); err == nil {
		infoColor.Fprintf(w, "  exists  %s\n", manifest)
		return nil
	}

	f, err := os.Create(manifest)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", manifest, err)
	}
	defer f.Close()

	if err := packageXMLTemplate.Execute(f, struct{ Name string }{name}); err != nil {
		return fmt.Errorf("failed to write %s: %w", manifest, err)
	}
	infoColor.Fprintf(w, "  create  %s\n", manifest)
	return nil
}
