// SPDX-License-Identifier: MPL-2.0

// Package devshell composes catalog lookups and launches into the three
// user-facing operations: list, use and run.
//
// The project root is resolved by the caller before any operation runs; the
// catalog is fetched fresh for every operation.
package devshell
