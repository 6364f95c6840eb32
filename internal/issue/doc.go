// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// An ActionableError names the failed operation, the resource involved and
// the remediation steps; an Issue is a Markdown help entry rendered with
// glamour when the CLI runs in verbose mode.
package issue
