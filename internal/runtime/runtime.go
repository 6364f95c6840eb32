// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"io"

	"github.com/bib0x/dv/pkg/types"
)

// ErrEmptyArgv is returned when a command has no program name.
var ErrEmptyArgv = errors.New("empty argv")

type (
	// Command describes one process invocation.
	Command struct {
		// Argv is the program followed by its arguments.
		Argv []string
		// Stdin, Stdout and Stderr are used by Spawn. Nil values fall back to
		// the process's own standard streams.
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
	}

	// Result contains the result of a captured command execution.
	Result struct {
		// ExitCode is the exit code of the command.
		ExitCode types.ExitCode
		// Error is set when the process could not be started or waited for.
		// A normal non-zero exit is reported through ExitCode alone.
		Error error
		// Output contains captured stdout.
		Output []byte
		// ErrOutput contains captured stderr.
		ErrOutput string
	}

	// Waiter blocks until a spawned process terminates.
	Waiter interface {
		// Wait returns the exit code of the process. The error is non-nil only
		// when the termination status could not be obtained.
		Wait() (types.ExitCode, error)
	}

	// Runtime is the subprocess capability.
	Runtime interface {
		// Capture runs argv to completion with stdout and stderr captured.
		Capture(ctx context.Context, argv []string) *Result
		// Spawn starts cmd with inherited (or the given) streams. An error
		// means the process never started.
		Spawn(ctx context.Context, cmd Command) (Waiter, error)
	}
)

// Failed reports whether the process did not run to a successful exit.
func (r *Result) Failed() bool {
	return r.Error != nil || !r.ExitCode.IsSuccess()
}
