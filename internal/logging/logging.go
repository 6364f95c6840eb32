// SPDX-License-Identifier: MPL-2.0

// Package logging builds the charmbracelet/log logger shared by dvenv's
// components. Diagnostics always go to stderr so that `dvenv list` output on
// stdout stays machine-readable.
package logging

import (
	"io"

	"github.com/charmbracelet/log"
)

// Prefix is printed in front of every log line.
const Prefix = "dvenv"

// New returns a logger writing to w. The level is warn, or debug when
// verbose is set.
func New(w io.Writer, verbose bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		Prefix: Prefix,
		Level:  log.WarnLevel,
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// Discard returns a logger that drops everything. Tests and library callers
// that do not care about diagnostics use it as a default.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

// OrDiscard returns l, or Discard() when l is nil.
func OrDiscard(l *log.Logger) *log.Logger {
	if l == nil {
		return Discard()
	}
	return l
}
