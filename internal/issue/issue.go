// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
)

// Id identifies a help entry.
type Id int

const (
	FlakePathEmptyId Id = iota + 1
	FlakePathNotFoundId
	ToolNotFoundId
	ToolInvocationFailedId
	CatalogParseErrorId
	UnknownEnvironmentId
	ConfigLoadFailedId
	InvalidPlatformId
)

// Glamour style names accepted by Render.
const (
	StyleAuto  = "auto"
	StyleDark  = "dark"
	StyleLight = "light"
	StyleNoTTY = "notty"
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the entry with the given glamour style.
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also:\n")
		for _, link := range i.extLinks {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	nixManualLink = HttpLink("https://nix.dev/manual/nix/stable/command-ref/new-cli/nix3-flake-show")

	flakePathEmptyIssue = &Issue{
		id: FlakePathEmptyId,
		mdMsg: `
# No project root!

dvenv needs to know which flake to query, and neither source was set.

## Sources (in order of precedence):
1. The ` + "`DV_FLAKE_DIR`" + ` environment variable
2. The ` + "`--path`" + ` flag

## Things you can try:
~~~
$ export DV_FLAKE_DIR=$HOME/src/my-project
$ dvenv list
~~~

- Or pass the directory explicitly:
~~~
$ dvenv --path . list
~~~`,
	}

	flakePathNotFoundIssue = &Issue{
		id: FlakePathNotFoundId,
		mdMsg: `
# Project root not found!

The directory given as project root does not exist.

## Things you can try:
- Check for typos in the path
- Remember that ` + "`DV_FLAKE_DIR`" + ` wins over ` + "`--path`" + `; unset it to use the flag:
~~~
$ unset DV_FLAKE_DIR
~~~`,
	}

	toolNotFoundIssue = &Issue{
		id: ToolNotFoundId,
		mdMsg: `
# nix is not available!

dvenv could not start the nix binary.

## Things you can try:
- Install Nix and make sure ` + "`nix`" + ` is in your PATH
- Point dvenv at another binary:
~~~
$ dvenv --tool /nix/var/nix/profiles/default/bin/nix list
~~~`,
		extLinks: []HttpLink{"https://nixos.org/download/"},
	}

	toolInvocationFailedIssue = &Issue{
		id: ToolInvocationFailedId,
		mdMsg: `
# nix flake show failed!

nix exited with an error while enumerating the flake outputs.

## Common causes:
- The directory does not contain a ` + "`flake.nix`" + `
- The flakes experimental feature is disabled
- The flake does not evaluate

## Things you can try:
- Run the query by hand to see the full output:
~~~
$ nix flake show path:. --json
~~~

- Enable flakes in ` + "`~/.config/nix/nix.conf`" + `:
~~~
experimental-features = nix-command flakes
~~~`,
		extLinks: []HttpLink{nixManualLink},
	}

	catalogParseErrorIssue = &Issue{
		id: CatalogParseErrorId,
		mdMsg: `
# Unexpected nix output!

The output of ` + "`nix flake show --json`" + ` could not be read as an environment catalog.

## Things you can try:
- Make sure the flake defines a ` + "`devShells`" + ` output:
~~~nix
devShells.x86_64-linux.default = pkgs.mkShell { packages = [ pkgs.go ]; };
~~~

- Run with verbose mode for the full error chain:
~~~
$ dvenv --verbose list
~~~`,
		extLinks: []HttpLink{nixManualLink},
	}

	unknownEnvironmentIssue = &Issue{
		id: UnknownEnvironmentId,
		mdMsg: `
# Environment not found!

The flake does not define a devShell with this name for your platform.

## Things you can try:
- List the available environments:
~~~
$ dvenv list
~~~

- List environments for every platform:
~~~
$ dvenv list --all
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The dvenv configuration file could not be loaded.

## Things you can try:
- Check the CUE syntax of the file
- Show the effective configuration:
~~~
$ dvenv config show
~~~

## Example configuration:
~~~cue
tool:     "nix"
platform: "aarch64-darwin"
strict:   true
ui: {
	verbose:      false
	color_scheme: "dark"
}
~~~`,
	}

	invalidPlatformIssue = &Issue{
		id: InvalidPlatformId,
		mdMsg: `
# Invalid platform!

Platforms are Nix system strings of the form ` + "`<cpu>-<kernel>`" + `.

## Examples:
- ` + "`x86_64-linux`" + `
- ` + "`aarch64-darwin`",
	}

	issues = map[Id]*Issue{
		flakePathEmptyIssue.Id():       flakePathEmptyIssue,
		flakePathNotFoundIssue.Id():    flakePathNotFoundIssue,
		toolNotFoundIssue.Id():         toolNotFoundIssue,
		toolInvocationFailedIssue.Id(): toolInvocationFailedIssue,
		catalogParseErrorIssue.Id():    catalogParseErrorIssue,
		unknownEnvironmentIssue.Id():   unknownEnvironmentIssue,
		configLoadFailedIssue.Id():     configLoadFailedIssue,
		invalidPlatformIssue.Id():      invalidPlatformIssue,
	}
)

// Values returns all help entries ordered by Id.
func Values() []*Issue {
	ids := slices.Sorted(maps.Keys(issues))
	out := make([]*Issue, 0, len(ids))
	for _, id := range ids {
		out = append(out, issues[id])
	}
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
