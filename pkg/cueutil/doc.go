// SPDX-License-Identifier: MPL-2.0

// Package cueutil wraps the compile / unify / validate / decode sequence that
// dvenv applies both to its configuration file and to the JSON document
// returned by `nix flake show --json` (JSON is a subset of CUE).
//
//	//go:embed catalog_schema.cue
//	var schemaBytes []byte
//
//	result, err := cueutil.ParseAndDecode[Catalog](
//	    schemaBytes,
//	    output,
//	    "#Catalog",
//	    cueutil.WithFilename("flake show"),
//	    cueutil.WithRequiredFields("devShells"),
//	)
package cueutil
