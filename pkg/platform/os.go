// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// OS name constants for runtime.GOOS comparisons.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
)

// ErrInvalidSystem is the sentinel error wrapped by InvalidSystemError.
var ErrInvalidSystem = errors.New("invalid nix system")

// nixArch maps GOARCH values onto the CPU names Nix uses in system strings.
var nixArch = map[string]string{
	"amd64":   "x86_64",
	"arm64":   "aarch64",
	"386":     "i686",
	"arm":     "armv7l",
	"riscv64": "riscv64",
	"ppc64le": "powerpc64le",
}

type (
	// System is a Nix system string such as "x86_64-linux". It is opaque to
	// the catalog logic and only used as a map key.
	System string

	// InvalidSystemError is returned when a System does not have the
	// "<cpu>-<kernel>" shape.
	InvalidSystemError struct {
		Value System
	}
)

// Error implements the error interface.
func (e *InvalidSystemError) Error() string {
	return fmt.Sprintf("invalid nix system %q (expected <cpu>-<kernel>, e.g. x86_64-linux)", string(e.Value))
}

// Unwrap returns ErrInvalidSystem for errors.Is.
func (e *InvalidSystemError) Unwrap() error { return ErrInvalidSystem }

// String returns the system string.
func (s System) String() string { return string(s) }

// Validate checks the "<cpu>-<kernel>" shape. The component values are not
// checked against a fixed list so that new Nix systems keep working.
func (s System) Validate() error {
	cpu, kernel, ok := strings.Cut(string(s), "-")
	if !ok || cpu == "" || kernel == "" || strings.ContainsAny(string(s), " \t\n/#") {
		return &InvalidSystemError{Value: s}
	}
	return nil
}

// Current returns the Nix system string of the running binary.
func Current() System {
	return SystemFor(runtime.GOOS, runtime.GOARCH)
}

// SystemFor maps a GOOS/GOARCH pair onto a Nix system string. Unknown
// architectures are passed through unchanged.
func SystemFor(goos, goarch string) System {
	cpu, ok := nixArch[goarch]
	if !ok {
		cpu = goarch
	}
	return System(cpu + "-" + goos)
}
