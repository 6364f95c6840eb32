// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the dvenv command tree.
//
// The root command resolves configuration and the project root, then hands
// off to internal/app/devshell for list, use and run. Errors reach the user
// through a single fang error handler that renders issue.ActionableError
// values, and child exit codes leave through ExitError.
package cmd
