// SPDX-License-Identifier: MPL-2.0

// Package project resolves the project root: the directory holding the flake
// whose devShells dvenv enumerates and launches.
//
// Candidates come from an explicit, ordered list of sources. The first source
// yielding a non-empty value wins and must name an existing path. The root is
// checked once per invocation and used verbatim afterwards.
package project
