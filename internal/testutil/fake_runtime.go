// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"context"
	"io"
	"slices"
	"sync"

	"github.com/bib0x/dv/internal/runtime"
	"github.com/bib0x/dv/pkg/types"
)

type (
	// FakeRuntime is an in-memory runtime.Runtime. Zero values behave like a
	// tool that prints nothing and exits 0.
	FakeRuntime struct {
		// CaptureOutput is returned as stdout by every Capture call.
		CaptureOutput string
		// CaptureStderr is returned as stderr by every Capture call.
		CaptureStderr string
		// CaptureExitCode is the exit code reported by Capture.
		CaptureExitCode types.ExitCode
		// CaptureErr simulates a start failure in Capture.
		CaptureErr error

		// SpawnErr simulates a start failure in Spawn.
		SpawnErr error
		// SpawnStdout is written to the spawned command's stdout before it exits.
		SpawnStdout string
		// ExitCode is returned by the Waiter.
		ExitCode types.ExitCode
		// WaitErr is returned by the Waiter.
		WaitErr error

		mu       sync.Mutex
		captures [][]string
		spawns   [][]string
	}

	fakeWaiter struct {
		code types.ExitCode
		err  error
	}
)

var _ runtime.Runtime = (*FakeRuntime)(nil)

// Capture implements runtime.Runtime.
func (f *FakeRuntime) Capture(_ context.Context, argv []string) *runtime.Result {
	f.mu.Lock()
	f.captures = append(f.captures, slices.Clone(argv))
	f.mu.Unlock()

	if f.CaptureErr != nil {
		return &runtime.Result{ExitCode: types.ExitFailure, Error: f.CaptureErr}
	}
	return &runtime.Result{
		ExitCode:  f.CaptureExitCode,
		Output:    []byte(f.CaptureOutput),
		ErrOutput: f.CaptureStderr,
	}
}

// Spawn implements runtime.Runtime.
func (f *FakeRuntime) Spawn(_ context.Context, cmd runtime.Command) (runtime.Waiter, error) {
	f.mu.Lock()
	f.spawns = append(f.spawns, slices.Clone(cmd.Argv))
	f.mu.Unlock()

	if f.SpawnErr != nil {
		return nil, f.SpawnErr
	}
	if f.SpawnStdout != "" && cmd.Stdout != nil {
		_, _ = io.WriteString(cmd.Stdout, f.SpawnStdout)
	}
	return &fakeWaiter{code: f.ExitCode, err: f.WaitErr}, nil
}

// Captures returns the argv of every Capture call.
func (f *FakeRuntime) Captures() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.captures)
}

// Spawns returns the argv of every Spawn call.
func (f *FakeRuntime) Spawns() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.spawns)
}

// Calls returns the total number of invocations.
func (f *FakeRuntime) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.captures) + len(f.spawns)
}

func (w *fakeWaiter) Wait() (types.ExitCode, error) {
	return w.code, w.err
}
