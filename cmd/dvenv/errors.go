// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/bib0x/dv/internal/app/devshell"
	"github.com/bib0x/dv/internal/catalog"
	"github.com/bib0x/dv/internal/config"
	"github.com/bib0x/dv/internal/issue"
	"github.com/bib0x/dv/internal/project"
	"github.com/bib0x/dv/pkg/platform"

	"github.com/charmbracelet/fang"
)

// wrapRootError turns a project resolution failure into an ActionableError.
func wrapRootError(err error) error {
	ec := issue.NewErrorContext().
		WithOperation("resolve project root").
		Wrap(err)

	var notFound *project.PathNotFoundError
	switch {
	case errors.As(err, &notFound):
		ec.WithIssue(issue.FlakePathNotFoundId).
			WithSuggestion("Check that the directory exists")
		if notFound.Source == project.EnvFlakeDir {
			ec.WithSuggestion("Unset " + project.EnvFlakeDir + " to use --path instead")
		}
	case errors.Is(err, project.ErrEmptyPath):
		ec.WithIssue(issue.FlakePathEmptyId).
			WithSuggestions(
				"Export "+project.EnvFlakeDir+"=/path/to/project",
				"Or pass --path /path/to/project",
			)
	}
	return ec.BuildError()
}

// wrapConfigError wraps a validation failure of the flag-adjusted config.
func wrapConfigError(err error) error {
	ec := issue.NewErrorContext().
		WithOperation("validate configuration").
		Wrap(err)
	if errors.Is(err, platform.ErrInvalidSystem) {
		return ec.WithIssue(issue.InvalidPlatformId).
			WithSuggestion("Use a nix system double such as x86_64-linux or aarch64-darwin").
			BuildError()
	}
	return ec.WithIssue(issue.ConfigLoadFailedId).
		WithSuggestion("Run 'dvenv config show' to inspect the effective values").
		BuildError()
}

// wrapServiceError classifies an error returned by the devshell service.
// ActionableErrors pass through unchanged.
func wrapServiceError(err error, operation string, root project.Root) error {
	if err == nil {
		return nil
	}
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return err
	}

	ec := issue.NewErrorContext().
		WithOperation(operation).
		WithResource(root.String()).
		Wrap(err)

	var unknown *devshell.UnknownEnvironmentError
	switch {
	case errors.Is(err, catalog.ErrToolInvocationFailed) && errors.Is(err, exec.ErrNotFound):
		ec.WithIssue(issue.ToolNotFoundId).
			WithSuggestions("Install Nix and make sure it is in your PATH", "Or point --tool at the nix binary")
	case errors.Is(err, catalog.ErrToolInvocationFailed):
		ec.WithIssue(issue.ToolInvocationFailedId).
			WithSuggestion("Run 'nix flake show path:" + root.String() + "' to see the full error")
	case errors.Is(err, catalog.ErrCatalogParse):
		ec.WithIssue(issue.CatalogParseErrorId).
			WithSuggestion("Check that your nix version supports 'flake show --json'")
	case errors.As(err, &unknown):
		ec.WithIssue(issue.UnknownEnvironmentId).
			WithSuggestion("Run 'dvenv list' to see the environments of " + unknown.Platform.String())
		if len(unknown.Available) > 0 {
			ec.WithSuggestion("Available: " + strings.Join(unknown.Available, ", "))
		}
	case errors.Is(err, context.DeadlineExceeded):
		ec.WithSuggestion("Raise --timeout or the timeout config key")
	}
	return ec.BuildError()
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// handleError is the fang error handler. Child exit codes are silent; every
// other error is printed, with its help entry in verbose mode.
func (a *App) handleError(w io.Writer, _ fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}

	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("Error:"), formatErrorForDisplay(err, a.verbose))
	if !a.verbose {
		return
	}

	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		return
	}
	help, renderErr := ae.Help(a.helpStyle)
	if renderErr != nil {
		fmt.Fprintf(w, "%s %v\n", WarningStyle.Render("could not render help:"), renderErr)
		return
	}
	fmt.Fprint(w, help)
}

// helpStyleFor maps the configured color scheme to a glamour style.
func helpStyleFor(scheme config.ColorScheme) string {
	switch scheme {
	case config.ColorSchemeDark:
		return issue.StyleDark
	case config.ColorSchemeLight:
		return issue.StyleLight
	default:
		return issue.StyleAuto
	}
}
