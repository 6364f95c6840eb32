// SPDX-License-Identifier: MPL-2.0

package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bib0x/dv/internal/logging"
	"github.com/bib0x/dv/internal/nix"
	"github.com/bib0x/dv/internal/project"
	"github.com/bib0x/dv/internal/runtime"
	"github.com/bib0x/dv/pkg/platform"
	"github.com/bib0x/dv/pkg/types"

	"github.com/charmbracelet/log"
	"mvdan.cc/sh/v3/syntax"
)

// Notices printed on stdout.
const (
	NoticeFarewell      = "Nix DevShell: Bye! Leaving %s"
	NoticeShellNotStart = "Nix DevShell didn't start"
	NoticeCommandNotRun = "Error: Could not run command"
)

var (
	// ErrWaitFailed is the sentinel error wrapped by WaitError.
	ErrWaitFailed = errors.New("failed to wait for environment process")
)

type (
	// Handle identifies one environment of one project for one platform.
	Handle struct {
		Platform platform.System
		Root     project.Root
		Name     string
	}

	// Outcome describes how a launch ended.
	Outcome struct {
		// Started is false when the child could not be spawned.
		Started bool
		// ExitCode is the child's exit code; meaningful only when Started.
		ExitCode types.ExitCode
	}

	// WaitError is returned when a started child's termination status could
	// not be obtained.
	WaitError struct {
		Ref string
		Err error
	}

	// Notifier prints a one-line user notice.
	Notifier func(msg string)

	// Launcher starts environments through a runtime.Runtime.
	Launcher struct {
		runtime runtime.Runtime
		tool    nix.Tool
		stdin   io.Reader
		stdout  io.Writer
		stderr  io.Writer
		notify  Notifier
		logger  *log.Logger
	}

	// Option configures a Launcher.
	Option func(*Launcher)
)

// Ref returns the flake reference "{root}#{name}".
func (h Handle) Ref() string {
	return nix.FlakeRef(h.Root.String(), h.Name)
}

// WithStreams sets the streams inherited by the child. Nil values keep the
// process's own streams.
func WithStreams(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(l *Launcher) {
		if stdin != nil {
			l.stdin = stdin
		}
		if stdout != nil {
			l.stdout = stdout
		}
		if stderr != nil {
			l.stderr = stderr
		}
	}
}

// WithNotifier replaces the default notice printer, which writes the message
// and a newline to the stdout stream.
func WithNotifier(n Notifier) Option {
	return func(l *Launcher) { l.notify = n }
}

// WithLogger sets the diagnostics logger.
func WithLogger(logger *log.Logger) Option {
	return func(l *Launcher) { l.logger = logger }
}

// New creates a Launcher.
func New(rt runtime.Runtime, tool nix.Tool, opts ...Option) *Launcher {
	l := &Launcher{
		runtime: rt,
		tool:    tool,
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.notify == nil {
		out := l.stdout
		l.notify = func(msg string) { _, _ = fmt.Fprintln(out, msg) }
	}
	l.logger = logging.OrDiscard(l.logger)
	return l
}

// EnterInteractive runs `<tool> develop {root}#{name}` and blocks until the
// shell exits, then prints the farewell notice.
func (l *Launcher) EnterInteractive(ctx context.Context, h Handle) (Outcome, error) {
	outcome, err := l.launch(ctx, h, l.tool.DevelopArgv(h.Root.String(), h.Name), NoticeShellNotStart)
	if err != nil || !outcome.Started {
		return outcome, err
	}
	l.notify(fmt.Sprintf(NoticeFarewell, h.Ref()))
	return outcome, nil
}

// RunCommand runs commandLine inside the environment with
// `<tool> develop {root}#{name} --command <shell> -c <commandLine>`.
func (l *Launcher) RunCommand(ctx context.Context, h Handle, commandLine string) (Outcome, error) {
	// The shell is the judge of what is valid; a parse failure here only
	// leaves a trace in the debug log.
	if err := checkSyntax(l.tool.Shell, commandLine); err != nil {
		l.logger.Debug("command line does not parse; running it anyway", "shell", l.tool.Shell, "err", err)
	}
	return l.launch(ctx, h, l.tool.DevelopCommandArgv(h.Root.String(), h.Name, commandLine), NoticeCommandNotRun)
}

func (l *Launcher) launch(ctx context.Context, h Handle, argv []string, spawnNotice string) (Outcome, error) {
	l.logger.Debug("launching environment", "ref", h.Ref(), "platform", h.Platform)

	w, err := l.runtime.Spawn(ctx, runtime.Command{
		Argv:   argv,
		Stdin:  l.stdin,
		Stdout: l.stdout,
		Stderr: l.stderr,
	})
	if err != nil {
		l.logger.Debug("spawn failed", "argv", runtime.FormatArgv(argv), "err", err)
		l.notify(spawnNotice)
		return Outcome{Started: false}, nil
	}

	code, err := w.Wait()
	if err != nil {
		return Outcome{Started: true, ExitCode: types.ExitFailure}, &WaitError{Ref: h.Ref(), Err: err}
	}

	l.logger.Debug("environment exited", "ref", h.Ref(), "exit_code", code)
	return Outcome{Started: true, ExitCode: code}, nil
}

// checkSyntax parses commandLine with the grammar of shell. Shells other
// than bash and sh are not checked. The parser rejects some lines that bash
// accepts, so the result is advisory.
func checkSyntax(shell, commandLine string) error {
	var lang syntax.LangVariant
	switch strings.TrimSuffix(filepath.Base(shell), ".exe") {
	case "", "bash":
		lang = syntax.LangBash
	case "sh", "dash":
		lang = syntax.LangPOSIX
	default:
		return nil
	}

	parser := syntax.NewParser(syntax.Variant(lang))
	if _, err := parser.Parse(strings.NewReader(commandLine), ""); err != nil {
		return err
	}
	return nil
}

// Error implements the error interface.
func (e *WaitError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrWaitFailed, e.Ref, e.Err)
}

// Unwrap returns ErrWaitFailed and the underlying error.
func (e *WaitError) Unwrap() []error { return []error{ErrWaitFailed, e.Err} }

