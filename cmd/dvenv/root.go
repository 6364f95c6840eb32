// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/bib0x/dv/internal/project"
	"github.com/bib0x/dv/pkg/types"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// NewRootCommand builds the dvenv command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dvenv",
		Short: "Enter and run Nix flake development shells",
		Long: TitleStyle.Render("dvenv") + SubtitleStyle.Render(" - Enter and run Nix flake development shells") + `

dvenv lists the devShells a flake defines for your platform and starts them
with 'nix develop', either interactively or for a single command.

` + SubtitleStyle.Render("Project root:") + `
  The flake directory is taken from $` + project.EnvFlakeDir + `, then from --path.

` + SubtitleStyle.Render("Examples:") + `
  dvenv -p . list               List the environments of the current flake
  dvenv -p . use default        Enter the 'default' shell
  dvenv -p . run go 'go test ./...'
  dvenv config show             Show the effective configuration`,
		SilenceUsage: true,
	}
	rootCmd.SetIn(app.stdin)
	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&app.flags.path, "path", "p", "", "flake directory (used when $"+project.EnvFlakeDir+" is unset)")
	pf.StringVar(&app.flags.platform, "platform", "", "nix system to list and launch (default: host system)")
	pf.StringVar(&app.flags.tool, "tool", "", "nix binary to invoke (default \"nix\")")
	pf.StringVar(&app.flags.shell, "shell", "", "interpreter used by 'run' (default \"bash\")")
	pf.DurationVar(&app.flags.timeout, "timeout", 0, "abort after this duration (0 disables)")
	pf.BoolVar(&app.flags.strict, "strict", false, "fail on unknown environment names")
	pf.StringVar(&app.flags.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/dvenv/config.cue)")
	pf.BoolVarP(&app.flags.verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(
		newListCommand(app),
		newUseCommand(app),
		newRunCommand(app),
		newConfigCommand(app),
	)

	return rootCmd
}

// Execute runs dvenv with the process arguments and exits.
// This is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	code := app.Execute(context.Background(), os.Args[1:])
	if !code.IsSuccess() {
		os.Exit(int(code))
	}
}

// Execute runs the command tree with args and returns the process exit code.
func (a *App) Execute(ctx context.Context, args []string) types.ExitCode {
	rootCmd := NewRootCommand(a)
	rootCmd.SetArgs(args)

	// fang.Execute styles help and errors; the version goes through
	// fang.WithVersion since fang overrides rootCmd.Version.
	err := fang.Execute(
		ctx,
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(a.handleError),
	)
	return exitCodeFor(err)
}
