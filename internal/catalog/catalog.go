// SPDX-License-Identifier: MPL-2.0

package catalog

import (
	"maps"
	"slices"
)

type (
	// Catalog is the decoded devShells output.
	Catalog struct {
		// DevShells maps platform -> name -> shell.
		DevShells map[string]map[string]Shell `json:"devShells"`
	}

	// Shell is one devShell entry. Only the attributes dvenv displays are kept.
	Shell struct {
		Name        string `json:"name,omitempty"`
		Type        string `json:"type,omitempty"`
		Description string `json:"description,omitempty"`
	}

	// Entry is a shell together with its coordinates, as listed by Entries.
	Entry struct {
		Platform string
		Name     string
		Shell    Shell
	}
)

// ShellExists reports whether platform and name are both present.
// Missing levels are not errors.
func (c *Catalog) ShellExists(platform, name string) bool {
	_, ok := c.Shell(platform, name)
	return ok
}

// Shell returns the entry for platform and name.
func (c *Catalog) Shell(platform, name string) (Shell, bool) {
	if c == nil {
		return Shell{}, false
	}
	shells, ok := c.DevShells[platform]
	if !ok {
		return Shell{}, false
	}
	s, ok := shells[name]
	return s, ok
}

// Names returns the environment names for platform in lexicographic order,
// or nil when the platform is absent.
func (c *Catalog) Names(platform string) []string {
	if c == nil {
		return nil
	}
	shells, ok := c.DevShells[platform]
	if !ok {
		return nil
	}
	return slices.Sorted(maps.Keys(shells))
}

// Platforms returns every platform key in lexicographic order.
func (c *Catalog) Platforms() []string {
	if c == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(c.DevShells))
}

// Entries returns the shells of the given platforms, or of every platform
// when none is given, ordered by platform then name.
func (c *Catalog) Entries(platforms ...string) []Entry {
	if len(platforms) == 0 {
		platforms = c.Platforms()
	}
	var entries []Entry
	for _, p := range platforms {
		for _, name := range c.Names(p) {
			s, _ := c.Shell(p, name)
			entries = append(entries, Entry{Platform: p, Name: name, Shell: s})
		}
	}
	return entries
}

// ShellExists is the nil-safe form of (*Catalog).ShellExists.
func ShellExists(c *Catalog, platform, name string) bool {
	return c.ShellExists(platform, name)
}

// ListNames is the nil-safe form of (*Catalog).Names.
func ListNames(c *Catalog, platform string) []string {
	return c.Names(platform)
}
