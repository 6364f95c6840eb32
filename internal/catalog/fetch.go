// SPDX-License-Identifier: MPL-2.0

package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bib0x/dv/internal/nix"
	"github.com/bib0x/dv/internal/project"
	"github.com/bib0x/dv/internal/runtime"
	"github.com/bib0x/dv/pkg/types"
)

const stderrTailLines = 10

// ErrToolInvocationFailed is the sentinel error wrapped by ToolInvocationError.
var ErrToolInvocationFailed = errors.New("tool invocation failed")

// ToolInvocationError is returned when the enumeration command could not be
// started or exited unsuccessfully.
type ToolInvocationError struct {
	Argv     []string
	ExitCode types.ExitCode
	// Stderr holds the last lines of the tool's error output.
	Stderr string
	// Err is the start failure; nil when the tool ran and exited non-zero.
	Err error
}

// Error implements the error interface.
func (e *ToolInvocationError) Error() string {
	cmd := strings.Join(e.Argv, " ")
	if e.Err != nil {
		return fmt.Sprintf("could not run %s: %v", cmd, e.Err)
	}
	msg := fmt.Sprintf("%s exited with code %s", cmd, e.ExitCode)
	if e.Stderr != "" {
		msg += ":\n" + e.Stderr
	}
	return msg
}

// Unwrap returns ErrToolInvocationFailed and the start failure, if any.
func (e *ToolInvocationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrToolInvocationFailed}
	}
	return []error{ErrToolInvocationFailed, e.Err}
}

// Fetch runs `<tool> flake show path:<root> --json` and parses its output.
func Fetch(ctx context.Context, rt runtime.Runtime, tool nix.Tool, root project.Root) (*Catalog, error) {
	argv := tool.FlakeShowArgv(root.String())
	result := rt.Capture(ctx, argv)
	if result.Error != nil {
		return nil, &ToolInvocationError{Argv: argv, ExitCode: result.ExitCode, Err: result.Error}
	}
	if !result.ExitCode.IsSuccess() {
		return nil, &ToolInvocationError{
			Argv:     argv,
			ExitCode: result.ExitCode,
			Stderr:   tail(result.ErrOutput, stderrTailLines),
		}
	}
	return Parse(result.Output)
}

func tail(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
