// SPDX-License-Identifier: MPL-2.0

// Package config handles dvenv configuration using Viper with CUE as the file format.
//
// Configuration is layered: built-in defaults, then the optional file
// $XDG_CONFIG_HOME/dvenv/config.cue (~/Library/Application Support/dvenv on
// macOS, %APPDATA%\dvenv on Windows, or the path given with --config), then
// DVENV_* environment variables. The file is validated against the embedded
// config_schema.cue before it is merged.
//
// The project root is deliberately not a configuration key: it comes only
// from DV_FLAKE_DIR or --path.
package config
