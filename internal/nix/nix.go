// SPDX-License-Identifier: MPL-2.0

// Package nix builds the argument vectors of the three nix invocations dvenv
// relies on. It never runs anything itself.
package nix

import "strings"

const (
	// DefaultBinary is the tool binary used when none is configured.
	DefaultBinary = "nix"
	// DefaultShell is the interpreter wrapped around one-shot commands.
	DefaultShell = "bash"
)

// Tool describes how to invoke nix.
type Tool struct {
	// Binary is the program name or path. Empty means DefaultBinary.
	Binary string
	// Shell runs one-shot command lines inside the environment. Empty means DefaultShell.
	Shell string
}

// FlakeRef returns the installable reference "{root}#{name}".
// The root is used verbatim; no path normalization is applied.
func FlakeRef(root, name string) string {
	return root + "#" + name
}

// FlakeShowArgv constructs the enumeration command.
//
// Generated command: <binary> flake show path:<root> --json
//
// The path: scheme makes nix read the directory as is, including files
// not tracked by git.
func (t Tool) FlakeShowArgv(root string) []string {
	return []string{t.binary(), "flake", "show", "path:" + root, "--json"}
}

// DevelopArgv constructs the interactive entry command.
//
// Generated command: <binary> develop <root>#<name>
func (t Tool) DevelopArgv(root, name string) []string {
	return []string{t.binary(), "develop", FlakeRef(root, name)}
}

// DevelopCommandArgv constructs the one-shot command invocation. The command
// line is passed as a single argument and never split.
//
// Generated command: <binary> develop <root>#<name> --command <shell> -c <commandLine>
func (t Tool) DevelopCommandArgv(root, name, commandLine string) []string {
	return []string{t.binary(), "develop", FlakeRef(root, name), "--command", t.shell(), "-c", commandLine}
}

// String returns the binary name.
func (t Tool) String() string { return t.binary() }

func (t Tool) binary() string {
	if strings.TrimSpace(t.Binary) == "" {
		return DefaultBinary
	}
	return t.Binary
}

func (t Tool) shell() string {
	if strings.TrimSpace(t.Shell) == "" {
		return DefaultShell
	}
	return t.Shell
}
