// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bib0x/dv/internal/app/devshell"
	"github.com/bib0x/dv/internal/config"
	"github.com/bib0x/dv/internal/launcher"
	"github.com/bib0x/dv/internal/logging"
	"github.com/bib0x/dv/internal/nix"
	"github.com/bib0x/dv/internal/project"
	"github.com/bib0x/dv/internal/runtime"
	"github.com/bib0x/dv/pkg/platform"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

type (
	// App wires CLI services and shared dependencies. It is the composition root for
	// the CLI layer: every Cobra handler receives an App and delegates to the
	// devshell service it builds.
	App struct {
		Config  ConfigProvider
		// Runtime runs nix. Nil means a NativeRuntime built per invocation.
		Runtime runtime.Runtime
		stdin   io.Reader
		stdout  io.Writer
		stderr  io.Writer
		flags   globalFlags

		// verbose and helpStyle drive error rendering once config is known.
		verbose   bool
		helpStyle string
	}

	// Dependencies defines the injection points for building an App. Nil fields are
	// replaced with production defaults by NewApp.
	Dependencies struct {
		Config  ConfigProvider
		Runtime runtime.Runtime
		Stdin   io.Reader
		Stdout  io.Writer
		Stderr  io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, string, error)
	}

	// globalFlags holds the persistent flags of the root command.
	globalFlags struct {
		path       string
		platform   string
		tool       string
		shell      string
		configPath string
		timeout    time.Duration
		strict     bool
		verbose    bool
	}

	// session is the per-invocation state derived from config and flags.
	session struct {
		cfg     *config.Config
		cfgPath string
		logger  *log.Logger
		service *devshell.Service
	}
)

// NewApp creates an App, filling nil dependencies with production defaults.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config:  deps.Config,
		Runtime: deps.Runtime,
		stdin:   deps.Stdin,
		stdout:  deps.Stdout,
		stderr:  deps.Stderr,
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.stdin == nil {
		app.stdin = os.Stdin
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	app.helpStyle = helpStyleFor(config.ColorSchemeAuto)
	return app
}

// loadConfig layers the changed command-line flags over the loaded
// configuration and validates the result.
func (a *App) loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	a.verbose = a.flags.verbose

	cfg, cfgPath, err := a.Config.Load(cmd.Context(), config.LoadOptions{ConfigFilePath: a.flags.configPath})
	if err != nil {
		return nil, "", err
	}

	flags := cmd.Flags()
	if flags.Changed("tool") {
		cfg.Tool = a.flags.tool
	}
	if flags.Changed("shell") {
		cfg.Shell = a.flags.shell
	}
	if flags.Changed("platform") {
		cfg.Platform = platform.System(a.flags.platform)
	}
	if flags.Changed("timeout") {
		cfg.Timeout = a.flags.timeout
	}
	if flags.Changed("strict") {
		cfg.Strict = a.flags.strict
	}
	if flags.Changed("verbose") {
		cfg.UI.Verbose = a.flags.verbose
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", wrapConfigError(err)
	}
	return cfg, cfgPath, nil
}

// newSession loads configuration and builds the devshell service for one
// invocation.
func (a *App) newSession(cmd *cobra.Command) (*session, error) {
	cfg, cfgPath, err := a.loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	a.verbose = cfg.UI.Verbose
	a.helpStyle = helpStyleFor(cfg.UI.ColorScheme)

	logger := logging.New(a.stderr, cfg.UI.Verbose)
	if cfgPath != "" {
		logger.Debug("loaded configuration", "path", cfgPath)
	}

	rt := a.Runtime
	if rt == nil {
		rt = runtime.NewNativeRuntime(runtime.WithLogger(logger))
	}

	tool := nix.Tool{Binary: cfg.Tool, Shell: cfg.Shell}
	l := launcher.New(rt, tool,
		launcher.WithStreams(a.stdin, a.stdout, a.stderr),
		launcher.WithNotifier(a.notify),
		launcher.WithLogger(logger),
	)

	sys := cfg.EffectivePlatform()
	logger.Debug("effective platform", "platform", sys)

	return &session{
		cfg:     cfg,
		cfgPath: cfgPath,
		logger:  logger,
		service: &devshell.Service{
			Runtime:  rt,
			Tool:     tool,
			Platform: sys,
			Launcher: l,
			Stdout:   a.stdout,
			Logger:   logger,
			Strict:   cfg.Strict,
		},
	}, nil
}

// resolveRoot applies DV_FLAKE_DIR, then --path.
func (a *App) resolveRoot() (project.Root, error) {
	root, err := project.Resolve(project.DefaultSources(a.flags.path)...)
	if err != nil {
		return "", wrapRootError(err)
	}
	return root, nil
}

// withTimeout bounds ctx by the configured timeout, if any.
func (s *session) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	s.logger.Debug("applying timeout", "timeout", s.cfg.Timeout)
	return context.WithTimeout(ctx, s.cfg.Timeout)
}

// notify prints launcher notices on stdout.
func (a *App) notify(msg string) {
	style := SuccessStyle
	if msg == launcher.NoticeShellNotStart || msg == launcher.NoticeCommandNotRun {
		style = WarningStyle
	}
	_, _ = fmt.Fprintln(a.stdout, style.Render(msg))
}
