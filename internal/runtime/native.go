// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/bib0x/dv/internal/logging"
	"github.com/bib0x/dv/pkg/platform"
	"github.com/bib0x/dv/pkg/types"

	"github.com/charmbracelet/log"
	"mvdan.cc/sh/v3/syntax"
)

type (
	// NativeRuntime runs commands on the host with os/exec.
	NativeRuntime struct {
		logger  *log.Logger
		sandbox platform.SandboxType
	}

	// NativeOption configures a NativeRuntime.
	NativeOption func(*NativeRuntime)

	nativeWaiter struct {
		cmd  *exec.Cmd
		ctx  context.Context
		done chan struct{}
	}
)

// WithLogger sets the logger used for argv tracing.
func WithLogger(l *log.Logger) NativeOption {
	return func(r *NativeRuntime) { r.logger = l }
}

// WithSandbox overrides sandbox detection.
func WithSandbox(st platform.SandboxType) NativeOption {
	return func(r *NativeRuntime) { r.sandbox = st }
}

// NewNativeRuntime creates a NativeRuntime. Inside a Flatpak sandbox every
// command is started on the host through flatpak-spawn.
func NewNativeRuntime(opts ...NativeOption) *NativeRuntime {
	r := &NativeRuntime{sandbox: platform.DetectSandbox()}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.OrDiscard(r.logger)
	return r
}

// Capture runs argv and captures its output.
func (r *NativeRuntime) Capture(ctx context.Context, argv []string) *Result {
	if len(argv) == 0 {
		return &Result{ExitCode: types.ExitFailure, Error: ErrEmptyArgv}
	}

	argv = r.hostArgv(argv)
	r.logger.Debug("capture", "argv", FormatArgv(argv))

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	code, err := exitCodeFromError(cmd.Run())
	return &Result{
		ExitCode:  code,
		Error:     err,
		Output:    stdout.Bytes(),
		ErrOutput: stderr.String(),
	}
}

// Spawn starts c attached to the given streams.
//
// The process is not bound to ctx cancellation: an interrupt typed in the
// terminal reaches the child directly through the foreground process group,
// and the child decides whether to exit. Only an expired ctx deadline kills it.
func (r *NativeRuntime) Spawn(ctx context.Context, c Command) (Waiter, error) {
	if len(c.Argv) == 0 {
		return nil, ErrEmptyArgv
	}

	argv := r.hostArgv(c.Argv)
	r.logger.Debug("spawn", "argv", FormatArgv(argv))

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = orReader(c.Stdin, os.Stdin)
	cmd.Stdout = orWriter(c.Stdout, os.Stdout)
	cmd.Stderr = orWriter(c.Stderr, os.Stderr)

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	w := &nativeWaiter{cmd: cmd, ctx: ctx, done: make(chan struct{})}
	go w.watchDeadline()
	return w, nil
}

func (w *nativeWaiter) Wait() (types.ExitCode, error) {
	err := w.cmd.Wait()
	close(w.done)
	return exitCodeFromError(err)
}

func (w *nativeWaiter) watchDeadline() {
	select {
	case <-w.done:
	case <-w.ctx.Done():
		if errors.Is(w.ctx.Err(), context.DeadlineExceeded) {
			_ = w.cmd.Process.Kill()
		}
	}
}

func (r *NativeRuntime) hostArgv(argv []string) []string {
	return platform.HostCommandFor(r.sandbox, argv[0], argv[1:]...)
}

// FormatArgv renders argv as a single bash-quoted command line for logs.
func FormatArgv(argv []string) string {
	quoted := make([]string, 0, len(argv))
	for _, arg := range argv {
		q, err := syntax.Quote(arg, syntax.LangBash)
		if err != nil {
			q = "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
		}
		quoted = append(quoted, q)
	}
	return strings.Join(quoted, " ")
}

func orReader(r io.Reader, fallback *os.File) io.Reader {
	if r == nil {
		return fallback
	}
	return r
}

func orWriter(w io.Writer, fallback *os.File) io.Writer {
	if w == nil {
		return fallback
	}
	return w
}
