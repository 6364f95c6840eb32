// SPDX-License-Identifier: MPL-2.0

// Package platform describes the host dvenv runs on.
//
// It maps the Go toolchain's GOOS/GOARCH pair onto the Nix system string used
// as the second level of a flake's devShells output, and detects application
// sandboxes (Flatpak) from which the nix binary must be spawned on the host.
package platform
