// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helpers shared by dvenv's tests: filesystem
// helpers that fail the test on error (MustMkdirAll, MustWriteFile), flake
// show fixtures, and FakeRuntime, an in-memory runtime.Runtime that records
// every invocation.
package testutil
