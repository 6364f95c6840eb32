// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bib0x/dv/internal/config"
	"github.com/bib0x/dv/internal/launcher"
	"github.com/bib0x/dv/internal/project"
	"github.com/bib0x/dv/internal/testutil"
	"github.com/bib0x/dv/pkg/types"
)

const testPlatform = "x86_64-linux"

type staticConfig struct {
	cfg  *config.Config
	path string
	err  error
}

func (s staticConfig) Load(context.Context, config.LoadOptions) (*config.Config, string, error) {
	if s.err != nil {
		return nil, "", s.err
	}
	cfg := *s.cfg
	return &cfg, s.path, nil
}

type runResult struct {
	code   types.ExitCode
	stdout string
	stderr string
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Platform = testPlatform
	return cfg
}

// runDvenv executes the command tree against rt. DV_FLAKE_DIR is cleared
// unless the test sets it afterwards.
func runDvenv(t *testing.T, rt *testutil.FakeRuntime, provider ConfigProvider, args ...string) runResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	if provider == nil {
		provider = staticConfig{cfg: testConfig()}
	}
	app := NewApp(Dependencies{
		Config:  provider,
		Runtime: rt,
		Stdin:   strings.NewReader(""),
		Stdout:  &stdout,
		Stderr:  &stderr,
	})
	code := app.Execute(context.Background(), args)
	return runResult{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func TestGetVersionString(t *testing.T) {
	// Not parallel: subtests mutate package-level Version/Commit/BuildDate vars.

	t.Run("ldflags version takes priority", func(t *testing.T) {
		origVersion, origCommit, origBuildDate := Version, Commit, BuildDate
		t.Cleanup(func() {
			Version, Commit, BuildDate = origVersion, origCommit, origBuildDate
		})

		Version = "v1.2.3"
		Commit = "abc1234"
		BuildDate = "2026-06-15T10:00:00Z"

		got := getVersionString()
		want := "v1.2.3 (commit: abc1234, built: 2026-06-15T10:00:00Z)"
		if got != want {
			t.Errorf("getVersionString() = %q, want %q", got, want)
		}
	})

	t.Run("dev build", func(t *testing.T) {
		origVersion := Version
		t.Cleanup(func() { Version = origVersion })

		Version = "dev"
		if got := getVersionString(); got != "dev (built from source)" {
			t.Errorf("getVersionString() = %q", got)
		}
	})
}

func TestList(t *testing.T) {
	t.Setenv(project.EnvFlakeDir, "")
	dir := testutil.ProjectDir(t)
	rt := &testutil.FakeRuntime{CaptureOutput: testutil.FlakeShowSingleDefault}

	res := runDvenv(t, rt, nil, "--path", dir, "list")

	if res.code != types.ExitSuccess {
		t.Fatalf("exit code = %d, stderr = %q", res.code, res.stderr)
	}
	if res.stdout != "default\n" {
		t.Errorf("stdout = %q, want %q", res.stdout, "default\n")
	}
	captures := rt.Captures()
	if len(captures) != 1 {
		t.Fatalf("captures = %v, want one", captures)
	}
	want := []string{"nix", "flake", "show", "path:" + dir, "--json"}
	if strings.Join(captures[0], " ") != strings.Join(want, " ") {
		t.Errorf("argv = %q, want %q", captures[0], want)
	}
}

func TestListPlatformFlag(t *testing.T) {
	t.Setenv(project.EnvFlakeDir, "")
	dir := testutil.ProjectDir(t)
	rt := &testutil.FakeRuntime{CaptureOutput: testutil.FlakeShowMultiPlatform}

	res := runDvenv(t, rt, nil, "-p", dir, "--platform", "aarch64-darwin", "list")

	if res.code != types.ExitSuccess {
		t.Fatalf("exit code = %d, stderr = %q", res.code, res.stderr)
	}
	if res.stdout != "default\n" {
		t.Errorf("stdout = %q", res.stdout)
	}
}

func TestEnvBeatsPathFlag(t *testing.T) {
	envDir := testutil.ProjectDir(t)
	t.Setenv(project.EnvFlakeDir, envDir)
	rt := &testutil.FakeRuntime{CaptureOutput: testutil.FlakeShowSingleDefault}

	res := runDvenv(t, rt, nil, "--path", filepath.Join(t.TempDir(), "ignored"), "list")

	if res.code != types.ExitSuccess {
		t.Fatalf("exit code = %d, stderr = %q", res.code, res.stderr)
	}
	if got := rt.Captures()[0][3]; got != "path:"+envDir {
		t.Errorf("flake argument = %q, want path:%s", got, envDir)
	}
}

func TestRootResolutionFailures(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist")

	tests := []struct {
		name       string
		args       []string
		wantStderr string
	}{
		{"empty", []string{"list"}, project.EnvFlakeDir},
		{"missing path", []string{"--path", missing, "list"}, missing},
		{"missing path on use", []string{"--path", missing, "use", "default"}, missing},
		{"missing path on run", []string{"--path", missing, "run", "default", "true"}, missing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(project.EnvFlakeDir, "")
			rt := &testutil.FakeRuntime{CaptureOutput: testutil.FlakeShowSingleDefault}

			res := runDvenv(t, rt, nil, tt.args...)

			if res.code != types.ExitFailure {
				t.Errorf("exit code = %d, want 1", res.code)
			}
			if !strings.Contains(res.stderr, tt.wantStderr) {
				t.Errorf("stderr = %q, want it to mention %q", res.stderr, tt.wantStderr)
			}
			if rt.Calls() != 0 {
				t.Errorf("tool invoked %d times, want 0", rt.Calls())
			}
			if res.stdout != "" {
				t.Errorf("stdout = %q, want empty", res.stdout)
			}
		})
	}
}

func TestUse(t *testing.T) {
	t.Setenv(project.EnvFlakeDir, "")
	dir := testutil.ProjectDir(t)

	t.Run("unknown name is a silent no-op", func(t *testing.T) {
		rt := &testutil.FakeRuntime{CaptureOutput: testutil.FlakeShowSingleDefault}
		res := runDvenv(t, rt, nil, "-p", dir, "use", "missing")

		if res.code != types.ExitSuccess || res.stdout != "" || res.stderr != "" {
			t.Errorf("got %+v, want silent success", res)
		}
		if len(rt.Spawns()) != 0 {
			t.Errorf("spawns = %v, want none", rt.Spawns())
		}
	})

	t.Run("strict mode reports unknown name", func(t *testing.T) {
		rt := &testutil.FakeRuntime{CaptureOutput: testutil.FlakeShowSingleDefault}
		res := runDvenv(t, rt, nil, "-p", dir, "--strict", "use", "missing")

		if res.code != types.ExitFailure {
			t.Errorf("exit code = %d, want 1", res.code)
		}
		if !strings.Contains(res.stderr, `"missing"`) || !strings.Contains(res.stderr, "Available: default") {
			t.Errorf("stderr = %q", res.stderr)
		}
	})

	t.Run("enters shell and says goodbye", func(t *testing.T) {
		rt := &testutil.FakeRuntime{CaptureOutput: testutil.FlakeShowSingleDefault}
		res := runDvenv(t, rt, nil, "-p", dir, "use", "default")

		if res.code != types.ExitSuccess {
			t.Fatalf("exit code = %d, stderr = %q", res.code, res.stderr)
		}
		spawns := rt.Spawns()
		if len(spawns) != 1 || strings.Join(spawns[0], " ") != "nix develop "+dir+"#default" {
			t.Errorf("spawns = %q", spawns)
		}
		if !strings.Contains(res.stdout, "Bye! Leaving "+dir+"#default") {
			t.Errorf("stdout = %q, want farewell", res.stdout)
		}
	})

	t.Run("propagates shell exit code", func(t *testing.T) {
		rt := &testutil.FakeRuntime{CaptureOutput: testutil.FlakeShowSingleDefault, ExitCode: 42}
		res := runDvenv(t, rt, nil, "-p", dir, "use", "default")

		if res.code != 42 {
			t.Errorf("exit code = %d, want 42", res.code)
		}
		if res.stderr != "" {
			t.Errorf("stderr = %q, want nothing for a child exit code", res.stderr)
		}
	})

	t.Run("spawn failure is a notice", func(t *testing.T) {
		rt := &testutil.FakeRuntime{
			CaptureOutput: testutil.FlakeShowSingleDefault,
			SpawnErr:      exec.ErrNotFound,
		}
		res := runDvenv(t, rt, nil, "-p", dir, "use", "default")

		if res.code != types.ExitSuccess {
			t.Errorf("exit code = %d, want 0", res.code)
		}
		if !strings.Contains(res.stdout, launcher.NoticeShellNotStart) {
			t.Errorf("stdout = %q, want %q", res.stdout, launcher.NoticeShellNotStart)
		}
	})

	t.Run("wait failure is fatal", func(t *testing.T) {
		rt := &testutil.FakeRuntime{
			CaptureOutput: testutil.FlakeShowSingleDefault,
			WaitErr:       errors.New("no child processes"),
		}
		res := runDvenv(t, rt, nil, "-p", dir, "use", "default")

		if res.code != types.ExitFailure {
			t.Errorf("exit code = %d, want 1", res.code)
		}
		if !strings.Contains(res.stderr, "no child processes") {
			t.Errorf("stderr = %q", res.stderr)
		}
	})
}

func TestRun(t *testing.T) {
	t.Setenv(project.EnvFlakeDir, "")
	dir := testutil.ProjectDir(t)

	t.Run("runs through bash", func(t *testing.T) {
		rt := &testutil.FakeRuntime{CaptureOutput: testutil.FlakeShowSingleDefault}
		res := runDvenv(t, rt, nil, "-p", dir, "run", "default", "echo hi && exit 0")

		if res.code != types.ExitSuccess {
			t.Fatalf("exit code = %d, stderr = %q", res.code, res.stderr)
		}
		want := []string{"nix", "develop", dir + "#default", "--command", "bash", "-c", "echo hi && exit 0"}
		spawns := rt.Spawns()
		if len(spawns) != 1 || strings.Join(spawns[0], "\x00") != strings.Join(want, "\x00") {
			t.Errorf("spawns = %q, want %q", spawns, want)
		}
		if strings.Contains(res.stdout, "Bye!") {
			t.Errorf("stdout = %q, run must not print the farewell", res.stdout)
		}
	})

	t.Run("tool and shell flags", func(t *testing.T) {
		rt := &testutil.FakeRuntime{CaptureOutput: testutil.FlakeShowSingleDefault}
		res := runDvenv(t, rt, nil, "-p", dir, "--tool", "/opt/nix/bin/nix", "--shell", "sh", "run", "default", "true")

		if res.code != types.ExitSuccess {
			t.Fatalf("exit code = %d, stderr = %q", res.code, res.stderr)
		}
		if got := rt.Captures()[0][0]; got != "/opt/nix/bin/nix" {
			t.Errorf("capture binary = %q", got)
		}
		if got := rt.Spawns()[0][4]; got != "sh" {
			t.Errorf("interpreter = %q, want sh", got)
		}
	})

	t.Run("propagates command exit code", func(t *testing.T) {
		rt := &testutil.FakeRuntime{CaptureOutput: testutil.FlakeShowSingleDefault, ExitCode: 3}
		res := runDvenv(t, rt, nil, "-p", dir, "run", "default", "exit 3")

		if res.code != 3 {
			t.Errorf("exit code = %d, want 3", res.code)
		}
	})

	t.Run("nested subshells in arithmetic-like syntax reach bash", func(t *testing.T) {
		line := "echo $((echo a); (echo b))"
		rt := &testutil.FakeRuntime{CaptureOutput: testutil.FlakeShowSingleDefault}
		res := runDvenv(t, rt, nil, "-p", dir, "run", "default", line)

		if res.code != types.ExitSuccess {
			t.Fatalf("exit code = %d, stderr = %q", res.code, res.stderr)
		}
		spawns := rt.Spawns()
		if len(spawns) != 1 || spawns[0][len(spawns[0])-1] != line {
			t.Errorf("spawns = %q, want one spawn ending in %q", spawns, line)
		}
	})

	t.Run("unparseable line is left to bash", func(t *testing.T) {
		rt := &testutil.FakeRuntime{CaptureOutput: testutil.FlakeShowSingleDefault, ExitCode: 2}
		res := runDvenv(t, rt, nil, "-p", dir, "run", "default", "echo 'unterminated")

		if res.code != 2 {
			t.Errorf("exit code = %d, want bash's 2", res.code)
		}
		if len(rt.Spawns()) != 1 {
			t.Errorf("spawns = %q, want one", rt.Spawns())
		}
	})

	t.Run("requires a command", func(t *testing.T) {
		rt := &testutil.FakeRuntime{CaptureOutput: testutil.FlakeShowSingleDefault}
		res := runDvenv(t, rt, nil, "-p", dir, "run", "default")

		if res.code != types.ExitFailure {
			t.Errorf("exit code = %d, want 1", res.code)
		}
		if rt.Calls() != 0 {
			t.Errorf("tool invoked %d times, want 0", rt.Calls())
		}
	})
}

func TestToolFailures(t *testing.T) {
	t.Setenv(project.EnvFlakeDir, "")
	dir := testutil.ProjectDir(t)

	tests := []struct {
		name       string
		rt         *testutil.FakeRuntime
		wantStderr string
	}{
		{
			name:       "tool not found",
			rt:         &testutil.FakeRuntime{CaptureErr: &exec.Error{Name: "nix", Err: exec.ErrNotFound}},
			wantStderr: "Install Nix",
		},
		{
			name:       "tool exits non-zero",
			rt:         &testutil.FakeRuntime{CaptureExitCode: 1, CaptureStderr: "error: path is not a flake"},
			wantStderr: "path is not a flake",
		},
		{
			name:       "no devShells key",
			rt:         &testutil.FakeRuntime{CaptureOutput: testutil.FlakeShowNoDevShells},
			wantStderr: "devShells",
		},
		{
			name:       "malformed output",
			rt:         &testutil.FakeRuntime{CaptureOutput: "{not json"},
			wantStderr: "list environments",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runDvenv(t, tt.rt, nil, "-p", dir, "list")

			if res.code != types.ExitFailure {
				t.Errorf("exit code = %d, want 1", res.code)
			}
			if res.stdout != "" {
				t.Errorf("stdout = %q, want nothing listed", res.stdout)
			}
			if !strings.Contains(res.stderr, tt.wantStderr) {
				t.Errorf("stderr = %q, want it to contain %q", res.stderr, tt.wantStderr)
			}
		})
	}
}

func TestInvalidPlatformFlag(t *testing.T) {
	t.Setenv(project.EnvFlakeDir, "")
	dir := testutil.ProjectDir(t)
	rt := &testutil.FakeRuntime{CaptureOutput: testutil.FlakeShowSingleDefault}

	res := runDvenv(t, rt, nil, "-p", dir, "--platform", "x86_64 linux", "list")

	if res.code != types.ExitFailure {
		t.Errorf("exit code = %d, want 1", res.code)
	}
	if !strings.Contains(res.stderr, "validate configuration") {
		t.Errorf("stderr = %q", res.stderr)
	}
	if rt.Calls() != 0 {
		t.Errorf("tool invoked %d times, want 0", rt.Calls())
	}
}

func TestConfigLoadError(t *testing.T) {
	t.Setenv(project.EnvFlakeDir, "")
	rt := &testutil.FakeRuntime{}
	provider := staticConfig{err: errors.New("broken config")}

	res := runDvenv(t, rt, provider, "-p", testutil.ProjectDir(t), "list")

	if res.code != types.ExitFailure {
		t.Errorf("exit code = %d, want 1", res.code)
	}
	if !strings.Contains(res.stderr, "broken config") {
		t.Errorf("stderr = %q", res.stderr)
	}
}

func TestConfigShow(t *testing.T) {
	provider := staticConfig{cfg: testConfig(), path: "/etc/dvenv/config.cue"}

	res := runDvenv(t, &testutil.FakeRuntime{}, provider, "--strict", "config", "show")

	if res.code != types.ExitSuccess {
		t.Fatalf("exit code = %d, stderr = %q", res.code, res.stderr)
	}
	for _, want := range []string{"/etc/dvenv/config.cue", `tool: "nix"`, `platform: "x86_64-linux"`, "strict: true"} {
		if !strings.Contains(res.stdout, want) {
			t.Errorf("stdout missing %q:\n%s", want, res.stdout)
		}
	}
}

func TestExitCodeFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want types.ExitCode
	}{
		{"nil", nil, 0},
		{"plain error", errors.New("boom"), 1},
		{"child exit", &ExitError{Code: 7}, 7},
		{"wrapped child exit", errors.Join(errors.New("ctx"), &ExitError{Code: 130}), 130},
		{"out of range", &ExitError{Code: 300}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor() = %d, want %d", got, tt.want)
			}
		})
	}
}
