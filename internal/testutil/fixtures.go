// SPDX-License-Identifier: MPL-2.0

package testutil

// Sample `nix flake show --json` documents.
const (
	// FlakeShowSingleDefault defines one "default" shell for x86_64-linux.
	FlakeShowSingleDefault = `{
  "devShells": {
    "x86_64-linux": {
      "default": {"name": "nix-shell", "type": "derivation"}
    }
  }
}`

	// FlakeShowMultiPlatform defines several shells on two platforms, plus
	// outputs dvenv ignores.
	FlakeShowMultiPlatform = `{
  "packages": {
    "x86_64-linux": {
      "default": {"name": "hello-2.12", "type": "derivation"}
    }
  },
  "devShells": {
    "x86_64-linux": {
      "go": {"name": "go-shell", "type": "derivation", "description": "Go toolchain"},
      "default": {"name": "nix-shell", "type": "derivation"},
      "docs": {"name": "docs-shell", "type": "derivation"}
    },
    "aarch64-darwin": {
      "default": {"name": "nix-shell", "type": "derivation"}
    }
  },
  "formatter": {}
}`

	// FlakeShowNoDevShells has no devShells output at all.
	FlakeShowNoDevShells = `{
  "packages": {
    "x86_64-linux": {
      "default": {"name": "hello-2.12", "type": "derivation"}
    }
  }
}`

	// FlakeShowEmptyDevShells has a devShells output with no platforms.
	FlakeShowEmptyDevShells = `{"devShells": {}}`
)
