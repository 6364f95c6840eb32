// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bib0x/dv/pkg/platform"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// DefaultTool is the binary queried for environments.
	DefaultTool = "nix"
	// DefaultShell is the interpreter used by `dvenv run`.
	DefaultShell = "bash"
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// InvalidConfigError reports the first invalid field of a Config.
	// It wraps ErrInvalidConfig and the field's own error.
	InvalidConfigError struct {
		Field string
		Err   error
	}

	// Config is the effective dvenv configuration.
	Config struct {
		// Tool is the binary used for every nix invocation.
		Tool string `json:"tool" mapstructure:"tool"`
		// Platform overrides host detection when non-empty.
		Platform platform.System `json:"platform" mapstructure:"platform"`
		// Shell is the interpreter passed to `develop --command`.
		Shell string `json:"shell" mapstructure:"shell"`
		// Strict turns unknown environment names into errors.
		Strict bool `json:"strict" mapstructure:"strict"`
		// Timeout bounds a whole invocation; zero means no limit.
		Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
		UI      UIConfig      `json:"ui" mapstructure:"ui"`
	}

	// UIConfig configures diagnostics and rendering.
	UIConfig struct {
		Verbose     bool        `json:"verbose" mapstructure:"verbose"`
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
	}
)

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Tool:  DefaultTool,
		Shell: DefaultShell,
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
		},
	}
}

// Error implements the error interface.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns ErrInvalidColorScheme for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// Validate returns nil for the known color schemes.
func (c ColorScheme) Validate() error {
	switch c {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return nil
	default:
		return &InvalidColorSchemeError{Value: c}
	}
}

// String returns the string representation of the ColorScheme.
func (c ColorScheme) String() string { return string(c) }

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config field %s: %v", e.Field, e.Err)
}

// Unwrap returns both the sentinel and the field error.
func (e *InvalidConfigError) Unwrap() []error { return []error{ErrInvalidConfig, e.Err} }

// Validate checks the invariants CUE cannot see, such as values coming from
// DVENV_* environment variables or command-line flags.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Tool) == "" {
		return &InvalidConfigError{Field: "tool", Err: errors.New("must not be empty")}
	}
	if strings.TrimSpace(c.Shell) == "" {
		return &InvalidConfigError{Field: "shell", Err: errors.New("must not be empty")}
	}
	if c.Platform != "" {
		if err := c.Platform.Validate(); err != nil {
			return &InvalidConfigError{Field: "platform", Err: err}
		}
	}
	if c.Timeout < 0 {
		return &InvalidConfigError{Field: "timeout", Err: fmt.Errorf("negative duration %s", c.Timeout)}
	}
	if err := c.UI.ColorScheme.Validate(); err != nil {
		return &InvalidConfigError{Field: "ui.color_scheme", Err: err}
	}
	return nil
}

// EffectivePlatform returns the configured platform, or the host's when unset.
func (c *Config) EffectivePlatform() platform.System {
	if c.Platform != "" {
		return c.Platform
	}
	return platform.Current()
}
