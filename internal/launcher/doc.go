// SPDX-License-Identifier: MPL-2.0

// Package launcher starts an environment, either as an interactive shell or
// to run a single command line, and reports how the child terminated.
//
// The child inherits the caller's streams. A child that cannot be started is
// a soft failure: a notice is printed and the outcome reports Started=false.
// A child that started but whose termination status cannot be collected is a
// fatal *WaitError.
package launcher
