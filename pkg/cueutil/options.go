// SPDX-License-Identifier: MPL-2.0

package cueutil

// DefaultMaxFileSize bounds the input accepted by ParseAndDecode.
// Flake show output for large monorepos stays well below this.
const DefaultMaxFileSize int64 = 8 << 20

type (
	// Option configures ParseAndDecode.
	Option func(*options)

	options struct {
		filename    string
		maxFileSize int64
		concrete    bool
		required    []string
		json        bool
	}
)

func defaultOptions() options {
	return options{
		maxFileSize: DefaultMaxFileSize,
		concrete:    true,
	}
}

// WithFilename sets the name used as prefix in error messages.
func WithFilename(name string) Option {
	return func(o *options) { o.filename = name }
}

// WithMaxFileSize overrides DefaultMaxFileSize.
func WithMaxFileSize(n int64) Option {
	return func(o *options) { o.maxFileSize = n }
}

// WithConcrete toggles concrete validation (enabled by default).
func WithConcrete(concrete bool) Option {
	return func(o *options) { o.concrete = concrete }
}

// WithRequiredFields requires the user data itself to define the given
// top-level fields. Open schemas cannot express this because a missing
// optional-by-omission field unifies cleanly.
func WithRequiredFields(fields ...string) Option {
	return func(o *options) { o.required = append(o.required, fields...) }
}

// WithJSON restricts data to strict JSON. CUE-only syntax such as bare
// labels, comments or expressions is rejected, and a key repeated within
// one object keeps its last value, as encoding/json does.
func WithJSON() Option {
	return func(o *options) { o.json = true }
}
