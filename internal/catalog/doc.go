// SPDX-License-Identifier: MPL-2.0

// Package catalog reads the devShells catalog of a flake.
//
// The catalog is the devShells output of `nix flake show --json`, a two-level
// mapping platform -> environment name -> attributes. It is fetched fresh on
// every invocation and never cached.
package catalog
