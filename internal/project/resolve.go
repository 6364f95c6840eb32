// SPDX-License-Identifier: MPL-2.0

package project

import (
	"errors"
	"fmt"
	"os"
)

// EnvFlakeDir is the environment variable naming the project root. It takes
// precedence over the --path flag.
const EnvFlakeDir = "DV_FLAKE_DIR"

var (
	// ErrEmptyPath is returned when no source yields a candidate.
	ErrEmptyPath = errors.New("empty flake path: use --path or " + EnvFlakeDir + " environment variable")
	// ErrPathNotFound is the sentinel error wrapped by PathNotFoundError.
	ErrPathNotFound = errors.New("flake path not found")
)

type (
	// Root is a resolved project root. It existed when it was resolved.
	Root string

	// Source yields one root candidate.
	Source interface {
		// Name identifies the source in diagnostics (e.g. "DV_FLAKE_DIR", "--path").
		Name() string
		// Lookup returns the candidate and whether the source is set.
		// A set source with an empty value counts as unset.
		Lookup() (string, bool)
	}

	// EnvSource reads one environment variable.
	EnvSource struct {
		Var string
		// LookupEnv defaults to os.LookupEnv.
		LookupEnv func(string) (string, bool)
	}

	// ValueSource wraps an explicit value such as a command-line flag.
	ValueSource struct {
		Label string
		Value string
	}

	// StatFunc reports information about a path. os.Stat is the default.
	StatFunc func(string) (os.FileInfo, error)

	// Resolver resolves a Root from its sources.
	Resolver struct {
		Sources []Source
		Stat    StatFunc
	}

	// PathNotFoundError is returned when the winning candidate does not exist.
	PathNotFoundError struct {
		Path   string
		Source string
		Err    error
	}
)

// Resolve is a shorthand for a Resolver using os.Stat.
func Resolve(sources ...Source) (Root, error) {
	return Resolver{Sources: sources}.Resolve()
}

// DefaultSources returns the CLI precedence: DV_FLAKE_DIR, then the --path flag value.
func DefaultSources(flagValue string) []Source {
	return []Source{
		EnvSource{Var: EnvFlakeDir},
		ValueSource{Label: "--path", Value: flagValue},
	}
}

// Resolve returns the first non-empty candidate, after checking that it exists.
func (r Resolver) Resolve() (Root, error) {
	stat := r.Stat
	if stat == nil {
		stat = os.Stat
	}

	for _, src := range r.Sources {
		candidate, ok := src.Lookup()
		if !ok || candidate == "" {
			continue
		}
		if _, err := stat(candidate); err != nil {
			return "", &PathNotFoundError{Path: candidate, Source: src.Name(), Err: err}
		}
		return Root(candidate), nil
	}

	return "", ErrEmptyPath
}

// String returns the root path.
func (r Root) String() string { return string(r) }

// Name implements Source.
func (s EnvSource) Name() string { return s.Var }

// Lookup implements Source.
func (s EnvSource) Lookup() (string, bool) {
	lookup := s.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	v, ok := lookup(s.Var)
	return v, ok && v != ""
}

// Name implements Source.
func (s ValueSource) Name() string { return s.Label }

// Lookup implements Source.
func (s ValueSource) Lookup() (string, bool) {
	return s.Value, s.Value != ""
}

// Error implements the error interface.
func (e *PathNotFoundError) Error() string {
	return fmt.Sprintf("flake path %q not found (from %s)", e.Path, e.Source)
}

// Unwrap returns ErrPathNotFound and the stat error.
func (e *PathNotFoundError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrPathNotFound}
	}
	return []error{ErrPathNotFound, e.Err}
}
