// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"

	"github.com/bib0x/dv/internal/app/devshell"
	"github.com/bib0x/dv/internal/catalog"
	"github.com/bib0x/dv/internal/project"

	"github.com/spf13/cobra"
)

// newListCommand creates the `dvenv list` command.
func newListCommand(app *App) *cobra.Command {
	var opts devshell.ListOptions

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the development shells of the flake",
		Long: `List the devShells the flake defines for the current platform, one per line.

Use --all to include every platform and --long to add the type, derivation
name and description columns.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withService(cmd, "list environments", func(ctx context.Context, svc *devshell.Service, root project.Root) (devshell.Result, error) {
				return devshell.Result{}, svc.List(ctx, root, opts)
			})
		},
	}

	listCmd.Flags().BoolVarP(&opts.All, "all", "a", false, "list every platform as platform/name")
	listCmd.Flags().BoolVarP(&opts.Long, "long", "l", false, "show type, derivation and description")

	return listCmd
}

// newUseCommand creates the `dvenv use` command.
func newUseCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "use <name>",
		Short: "Enter a development shell",
		Long: `Enter the named development shell with 'nix develop'.

dvenv exits with the shell's exit code. An unknown name does nothing unless
--strict is set.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: app.completeEnvironments,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withService(cmd, "enter environment", func(ctx context.Context, svc *devshell.Service, root project.Root) (devshell.Result, error) {
				return svc.Use(ctx, root, args[0])
			})
		},
	}
}

// newRunCommand creates the `dvenv run` command.
func newRunCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "run <name> <command>",
		Short: "Run a command inside a development shell",
		Long: `Run a command line inside the named development shell.

The command line is a single argument interpreted by bash (see --shell):

  dvenv run go 'go test ./... && go vet ./...'

dvenv exits with the command's exit code. An unknown name does nothing unless
--strict is set.`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: app.completeEnvironments,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withService(cmd, "run command", func(ctx context.Context, svc *devshell.Service, root project.Root) (devshell.Result, error) {
				return svc.Run(ctx, root, args[0], args[1])
			})
		},
	}
}

// withService builds the session, resolves the project root and calls fn.
// A started child that exits non-zero becomes an ExitError with its code.
func (a *App) withService(cmd *cobra.Command, operation string, fn func(context.Context, *devshell.Service, project.Root) (devshell.Result, error)) error {
	s, err := a.newSession(cmd)
	if err != nil {
		return err
	}

	root, err := a.resolveRoot()
	if err != nil {
		return err
	}
	s.logger.Debug("resolved project root", "root", root)

	ctx, cancel := s.withTimeout(cmd.Context())
	defer cancel()

	res, err := fn(ctx, s.service, root)
	if err != nil {
		return wrapServiceError(err, operation, root)
	}
	if res.Launched && !res.ExitCode.IsSuccess() {
		s.logger.Debug("environment exited", "code", res.ExitCode)
		return &ExitError{Code: res.ExitCode}
	}
	return nil
}

// completeEnvironments completes the environment name argument of use and run.
func (a *App) completeEnvironments(cmd *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	s, err := a.newSession(cmd)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	root, err := a.resolveRoot()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	ctx, cancel := s.withTimeout(cmd.Context())
	defer cancel()

	cat, err := catalog.Fetch(ctx, s.service.Runtime, s.service.Tool, root)
	if err != nil {
		s.logger.Debug("completion failed", "error", err)
		return nil, cobra.ShellCompDirectiveError
	}
	return cat.Names(s.service.Platform.String()), cobra.ShellCompDirectiveNoFileComp
}
