// SPDX-License-Identifier: MPL-2.0

package devshell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/bib0x/dv/internal/catalog"
	"github.com/bib0x/dv/internal/launcher"
	"github.com/bib0x/dv/internal/logging"
	"github.com/bib0x/dv/internal/nix"
	"github.com/bib0x/dv/internal/project"
	"github.com/bib0x/dv/internal/runtime"
	"github.com/bib0x/dv/pkg/platform"
	"github.com/bib0x/dv/pkg/types"

	"github.com/charmbracelet/log"
)

const (
	noticeNoShells         = "No devshells found for %s"
	noticeNoShellsAnywhere = "No devshells found"
)

// ErrUnknownEnvironment is the sentinel error wrapped by UnknownEnvironmentError.
var ErrUnknownEnvironment = errors.New("unknown environment")

type (
	// Launcher starts environments. *launcher.Launcher implements it.
	Launcher interface {
		EnterInteractive(ctx context.Context, h launcher.Handle) (launcher.Outcome, error)
		RunCommand(ctx context.Context, h launcher.Handle, commandLine string) (launcher.Outcome, error)
	}

	// Service implements list, use and run.
	Service struct {
		Runtime  runtime.Runtime
		Tool     nix.Tool
		Platform platform.System
		Launcher Launcher
		// Stdout receives listings and notices. Defaults to os.Stdout.
		Stdout io.Writer
		Logger *log.Logger
		// Strict turns unknown environment names into UnknownEnvironmentError.
		Strict bool
	}

	// ListOptions extends the default listing.
	ListOptions struct {
		// All lists every platform as "platform/name".
		All bool
		// Long adds the type and derivation name columns.
		Long bool
	}

	// Result reports how use or run ended.
	Result struct {
		// Launched is false when the environment was unknown or did not start.
		Launched bool
		// ExitCode is the child's exit code.
		ExitCode types.ExitCode
	}

	// UnknownEnvironmentError is returned in strict mode for a name the
	// catalog does not define for the platform.
	UnknownEnvironmentError struct {
		Name      string
		Platform  platform.System
		Available []string
	}
)

// List prints the environments of the platform, one name per line.
func (s *Service) List(ctx context.Context, root project.Root, opts ListOptions) error {
	cat, err := s.fetch(ctx, root)
	if err != nil {
		return err
	}

	var entries []catalog.Entry
	if opts.All {
		entries = cat.Entries()
	} else {
		entries = cat.Entries(s.Platform.String())
	}

	out := s.stdout()
	if len(entries) == 0 {
		if opts.All {
			_, err = fmt.Fprintln(out, noticeNoShellsAnywhere)
		} else {
			_, err = fmt.Fprintf(out, noticeNoShells+"\n", s.Platform)
		}
		return err
	}

	if opts.Long {
		return writeLong(out, entries, opts.All)
	}
	for _, e := range entries {
		if _, err := fmt.Fprintln(out, entryLabel(e, opts.All)); err != nil {
			return err
		}
	}
	return nil
}

// Use enters the named environment interactively.
func (s *Service) Use(ctx context.Context, root project.Root, name string) (Result, error) {
	h, ok, err := s.resolve(ctx, root, name)
	if err != nil || !ok {
		return Result{}, err
	}
	outcome, err := s.Launcher.EnterInteractive(ctx, h)
	return toResult(outcome), err
}

// Run runs commandLine inside the named environment.
func (s *Service) Run(ctx context.Context, root project.Root, name, commandLine string) (Result, error) {
	h, ok, err := s.resolve(ctx, root, name)
	if err != nil || !ok {
		return Result{}, err
	}
	outcome, err := s.Launcher.RunCommand(ctx, h, commandLine)
	return toResult(outcome), err
}

// resolve fetches the catalog and builds the handle for name. ok is false
// when the environment is unknown and strict mode is off.
func (s *Service) resolve(ctx context.Context, root project.Root, name string) (launcher.Handle, bool, error) {
	cat, err := s.fetch(ctx, root)
	if err != nil {
		return launcher.Handle{}, false, err
	}

	if !cat.ShellExists(s.Platform.String(), name) {
		s.logger().Debug("unknown environment", "name", name, "platform", s.Platform)
		if s.Strict {
			return launcher.Handle{}, false, &UnknownEnvironmentError{
				Name:      name,
				Platform:  s.Platform,
				Available: cat.Names(s.Platform.String()),
			}
		}
		return launcher.Handle{}, false, nil
	}

	return launcher.Handle{Platform: s.Platform, Root: root, Name: name}, true, nil
}

func (s *Service) fetch(ctx context.Context, root project.Root) (*catalog.Catalog, error) {
	s.logger().Debug("fetching catalog", "root", root, "tool", s.Tool)
	return catalog.Fetch(ctx, s.Runtime, s.Tool, root)
}

func (s *Service) stdout() io.Writer {
	if s.Stdout == nil {
		return os.Stdout
	}
	return s.Stdout
}

func (s *Service) logger() *log.Logger {
	return logging.OrDiscard(s.Logger)
}

func toResult(o launcher.Outcome) Result {
	return Result{Launched: o.Started, ExitCode: o.ExitCode}
}

func entryLabel(e catalog.Entry, withPlatform bool) string {
	if withPlatform {
		return e.Platform + "/" + e.Name
	}
	return e.Name
}

func writeLong(out io.Writer, entries []catalog.Entry, withPlatform bool) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTYPE\tDERIVATION\tDESCRIPTION")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			entryLabel(e, withPlatform),
			orDash(e.Shell.Type),
			orDash(e.Shell.Name),
			orDash(e.Shell.Description))
	}
	return w.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// Error implements the error interface.
func (e *UnknownEnvironmentError) Error() string {
	return fmt.Sprintf("environment %q is not defined for %s", e.Name, e.Platform)
}

// Unwrap returns ErrUnknownEnvironment.
func (e *UnknownEnvironmentError) Unwrap() error { return ErrUnknownEnvironment }
