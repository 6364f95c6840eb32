// SPDX-License-Identifier: MPL-2.0

package devshell

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"testing"

	"github.com/bib0x/dv/internal/catalog"
	"github.com/bib0x/dv/internal/launcher"
	"github.com/bib0x/dv/internal/nix"
	"github.com/bib0x/dv/internal/project"
	"github.com/bib0x/dv/internal/testutil"
	"github.com/bib0x/dv/pkg/platform"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRoot = project.Root("/src/app")

func newTestService(rt *testutil.FakeRuntime, sys platform.System) (*Service, *bytes.Buffer) {
	var stdout bytes.Buffer
	l := launcher.New(rt, nix.Tool{}, launcher.WithStreams(strings.NewReader(""), &stdout, &bytes.Buffer{}))
	return &Service{
		Runtime:  rt,
		Tool:     nix.Tool{},
		Platform: sys,
		Launcher: l,
		Stdout:   &stdout,
	}, &stdout
}

func TestList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		output   string
		platform platform.System
		opts     ListOptions
		want     string
	}{
		{
			name:     "single default",
			output:   testutil.FlakeShowSingleDefault,
			platform: "x86_64-linux",
			want:     "default\n",
		},
		{
			name:     "sorted names",
			output:   testutil.FlakeShowMultiPlatform,
			platform: "x86_64-linux",
			want:     "default\ndocs\ngo\n",
		},
		{
			name:     "platform without shells",
			output:   testutil.FlakeShowMultiPlatform,
			platform: "riscv64-linux",
			want:     "No devshells found for riscv64-linux\n",
		},
		{
			name:     "empty devShells",
			output:   testutil.FlakeShowEmptyDevShells,
			platform: "x86_64-linux",
			want:     "No devshells found for x86_64-linux\n",
		},
		{
			name:     "all platforms",
			output:   testutil.FlakeShowMultiPlatform,
			platform: "x86_64-linux",
			opts:     ListOptions{All: true},
			want:     "aarch64-darwin/default\nx86_64-linux/default\nx86_64-linux/docs\nx86_64-linux/go\n",
		},
		{
			name:     "all platforms empty",
			output:   testutil.FlakeShowEmptyDevShells,
			platform: "x86_64-linux",
			opts:     ListOptions{All: true},
			want:     "No devshells found\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rt := &testutil.FakeRuntime{CaptureOutput: tt.output}
			svc, stdout := newTestService(rt, tt.platform)

			require.NoError(t, svc.List(context.Background(), testRoot, tt.opts))
			assert.Equal(t, tt.want, stdout.String())
			assert.Equal(t, [][]string{{"nix", "flake", "show", "path:/src/app", "--json"}}, rt.Captures())
		})
	}
}

func TestList_Long(t *testing.T) {
	t.Parallel()

	rt := &testutil.FakeRuntime{CaptureOutput: testutil.FlakeShowMultiPlatform}
	svc, stdout := newTestService(rt, "x86_64-linux")

	require.NoError(t, svc.List(context.Background(), testRoot, ListOptions{Long: true}))

	lines := strings.Split(strings.TrimRight(stdout.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, []string{"NAME", "TYPE", "DERIVATION", "DESCRIPTION"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"default", "derivation", "nix-shell", "-"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"go", "derivation", "go-shell", "Go", "toolchain"}, strings.Fields(lines[3]))
}

func TestList_MissingDevShellsIsFatal(t *testing.T) {
	t.Parallel()

	rt := &testutil.FakeRuntime{CaptureOutput: testutil.FlakeShowNoDevShells}
	svc, stdout := newTestService(rt, "x86_64-linux")

	err := svc.List(context.Background(), testRoot, ListOptions{})
	require.ErrorIs(t, err, catalog.ErrCatalogParse)
	assert.Empty(t, stdout.String(), "nothing may be listed")
}

func TestList_ToolFailure(t *testing.T) {
	t.Parallel()

	rt := &testutil.FakeRuntime{CaptureErr: exec.ErrNotFound}
	svc, _ := newTestService(rt, "x86_64-linux")

	err := svc.List(context.Background(), testRoot, ListOptions{})
	require.ErrorIs(t, err, catalog.ErrToolInvocationFailed)
}

func TestUse(t *testing.T) {
	t.Parallel()

	t.Run("known environment", func(t *testing.T) {
		t.Parallel()

		rt := &testutil.FakeRuntime{CaptureOutput: testutil.FlakeShowSingleDefault}
		svc, stdout := newTestService(rt, "x86_64-linux")

		res, err := svc.Use(context.Background(), testRoot, "default")
		require.NoError(t, err)
		assert.True(t, res.Launched)
		assert.Zero(t, res.ExitCode)
		assert.Equal(t, [][]string{{"nix", "develop", "/src/app#default"}}, rt.Spawns())
		assert.Equal(t, "Nix DevShell: Bye! Leaving /src/app#default\n", stdout.String())
	})

	t.Run("unknown environment is a silent no-op", func(t *testing.T) {
		t.Parallel()

		rt := &testutil.FakeRuntime{CaptureOutput: testutil.FlakeShowSingleDefault}
		svc, stdout := newTestService(rt, "x86_64-linux")

		res, err := svc.Use(context.Background(), testRoot, "missing")
		require.NoError(t, err)
		assert.False(t, res.Launched)
		assert.Empty(t, rt.Spawns())
		assert.Empty(t, stdout.String())
	})

	t.Run("environment on another platform only", func(t *testing.T) {
		t.Parallel()

		rt := &testutil.FakeRuntime{CaptureOutput: testutil.FlakeShowMultiPlatform}
		svc, _ := newTestService(rt, "aarch64-darwin")

		res, err := svc.Use(context.Background(), testRoot, "go")
		require.NoError(t, err)
		assert.False(t, res.Launched)
		assert.Empty(t, rt.Spawns())
	})

	t.Run("strict mode reports unknown environment", func(t *testing.T) {
		t.Parallel()

		rt := &testutil.FakeRuntime{CaptureOutput: testutil.FlakeShowMultiPlatform}
		svc, _ := newTestService(rt, "x86_64-linux")
		svc.Strict = true

		_, err := svc.Use(context.Background(), testRoot, "missing")
		require.ErrorIs(t, err, ErrUnknownEnvironment)

		var unkErr *UnknownEnvironmentError
		require.ErrorAs(t, err, &unkErr)
		assert.Equal(t, "missing", unkErr.Name)
		assert.Equal(t, []string{"default", "docs", "go"}, unkErr.Available)
		assert.Empty(t, rt.Spawns())
	})

	t.Run("child exit code is reported", func(t *testing.T) {
		t.Parallel()

		rt := &testutil.FakeRuntime{CaptureOutput: testutil.FlakeShowSingleDefault, ExitCode: 130}
		svc, _ := newTestService(rt, "x86_64-linux")

		res, err := svc.Use(context.Background(), testRoot, "default")
		require.NoError(t, err)
		assert.EqualValues(t, 130, res.ExitCode)
	})

	t.Run("parse failure prevents launch", func(t *testing.T) {
		t.Parallel()

		rt := &testutil.FakeRuntime{CaptureOutput: "not json"}
		svc, _ := newTestService(rt, "x86_64-linux")

		_, err := svc.Use(context.Background(), testRoot, "default")
		require.ErrorIs(t, err, catalog.ErrCatalogParse)
		assert.Empty(t, rt.Spawns())
	})
}

func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("known environment", func(t *testing.T) {
		t.Parallel()

		rt := &testutil.FakeRuntime{CaptureOutput: testutil.FlakeShowMultiPlatform, ExitCode: 2}
		svc, stdout := newTestService(rt, "x86_64-linux")

		res, err := svc.Run(context.Background(), testRoot, "go", "go version")
		require.NoError(t, err)
		assert.True(t, res.Launched)
		assert.EqualValues(t, 2, res.ExitCode)
		assert.Equal(t,
			[][]string{{"nix", "develop", "/src/app#go", "--command", "bash", "-c", "go version"}},
			rt.Spawns())
		assert.Empty(t, stdout.String())
	})

	t.Run("unknown environment is a silent no-op", func(t *testing.T) {
		t.Parallel()

		rt := &testutil.FakeRuntime{CaptureOutput: testutil.FlakeShowSingleDefault}
		svc, stdout := newTestService(rt, "x86_64-linux")

		res, err := svc.Run(context.Background(), testRoot, "missing", "true")
		require.NoError(t, err)
		assert.False(t, res.Launched)
		assert.Empty(t, rt.Spawns())
		assert.Empty(t, stdout.String())
	})

	t.Run("spawn failure prints notice", func(t *testing.T) {
		t.Parallel()

		rt := &testutil.FakeRuntime{CaptureOutput: testutil.FlakeShowSingleDefault, SpawnErr: exec.ErrNotFound}
		svc, stdout := newTestService(rt, "x86_64-linux")

		res, err := svc.Run(context.Background(), testRoot, "default", "true")
		require.NoError(t, err)
		assert.False(t, res.Launched)
		assert.Equal(t, "Error: Could not run command\n", stdout.String())
	})
}
