// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"errors"
	"os/exec"
	"syscall"

	"github.com/bib0x/dv/pkg/types"
)

// exitCodeFromError classifies the error returned by exec.Cmd.Run or Wait.
//
// A nil error is a success. An *exec.ExitError is a normal termination: its
// code is returned with a nil error, and termination by signal maps to
// 128+signal like a POSIX shell reports it. Anything else is returned as is
// with ExitFailure.
func exitCodeFromError(err error) (types.ExitCode, error) {
	if err == nil {
		return types.ExitSuccess, nil
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return types.ExitFailure, err
	}

	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return types.ExitCodeForSignal(int(ws.Signal())), nil
	}

	return types.ExitCode(exitErr.ExitCode()).Normalize(), nil
}
