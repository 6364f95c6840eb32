// SPDX-License-Identifier: MPL-2.0

// Package runtime provides the subprocess capability used by dvenv.
//
// The Runtime interface is deliberately narrow:
//   - Capture runs a command to completion and returns its stdout, stderr and
//     exit code (used for `nix flake show --json`).
//   - Spawn starts a command attached to the caller's streams and returns a
//     Waiter (used for `nix develop`).
//
// NativeRuntime implements it on os/exec; testutil.FakeRuntime implements it
// in memory for tests.
package runtime
