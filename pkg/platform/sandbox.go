// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"os"
	"sync"
)

const (
	// SandboxNone indicates no sandbox environment detected.
	SandboxNone SandboxType = ""
	// SandboxFlatpak indicates a Flatpak sandbox environment.
	SandboxFlatpak SandboxType = "flatpak"

	flatpakInfoPath = "/.flatpak-info"
)

// detectOnce caches the sandbox detection result for the lifetime of the process.
//
// INVARIANT: detectSandboxFrom MUST NOT panic; sync.OnceValue re-raises a
// panic on every call.
var detectOnce = sync.OnceValue(func() SandboxType {
	return detectSandboxFrom(statFile)
})

// SandboxType identifies the type of application sandbox, if any.
type SandboxType string

// DetectSandbox returns the sandbox the current process runs in.
// The result is cached after the first call.
func DetectSandbox() SandboxType {
	return detectOnce()
}

// HostCommand returns the argv that runs name with args on the host system.
// Outside a sandbox it is simply name followed by args.
func HostCommand(name string, args ...string) []string {
	return HostCommandFor(DetectSandbox(), name, args...)
}

// HostCommandFor is the pure form of HostCommand for a given sandbox type.
// Inside Flatpak the nix store and daemon live on the host, so the tool is
// started through "flatpak-spawn --host".
func HostCommandFor(st SandboxType, name string, args ...string) []string {
	argv := make([]string, 0, len(args)+3)
	switch st {
	case SandboxFlatpak:
		argv = append(argv, "flatpak-spawn", "--host", name)
	default:
		argv = append(argv, name)
	}
	return append(argv, args...)
}

func detectSandboxFrom(statFile func(string) error) SandboxType {
	if err := statFile(flatpakInfoPath); err == nil {
		return SandboxFlatpak
	}
	return SandboxNone
}

func statFile(path string) error {
	_, err := os.Stat(path)
	return err
}
