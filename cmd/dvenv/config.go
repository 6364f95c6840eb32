// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/bib0x/dv/internal/config"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `dvenv config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage dvenv configuration",
		Long: `Manage dvenv configuration.

Configuration is stored in:
  - Linux: ~/.config/dvenv/config.cue
  - macOS: ~/Library/Application Support/dvenv/config.cue
  - Windows: %APPDATA%\dvenv\config.cue

Every key can be overridden with a DVENV_ environment variable
(DVENV_TOOL, DVENV_PLATFORM, DVENV_UI_VERBOSE, ...) and by the global flags.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.showConfig(cmd)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.initConfig()
		},
	})

	return cfgCmd
}

func (a *App) showConfig(cmd *cobra.Command) error {
	cfg, cfgPath, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}

	source := SubtitleStyle.Render("(using defaults)")
	if cfgPath != "" {
		source = cfgPath
	}

	fmt.Fprintln(a.stdout, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(a.stdout)
	fmt.Fprintf(a.stdout, "%s: %s\n", CmdStyle.Render("Config file"), source)
	fmt.Fprintf(a.stdout, "%s: %s\n", CmdStyle.Render("Platform"), SuccessStyle.Render(cfg.EffectivePlatform().String()))
	fmt.Fprintln(a.stdout)
	fmt.Fprint(a.stdout, config.GenerateCUE(cfg))
	return nil
}

func (a *App) initConfig() error {
	cfgPath, created, err := config.CreateDefaultConfig()
	if err != nil {
		return err
	}
	if !created {
		fmt.Fprintf(a.stdout, "%s %s\n", WarningStyle.Render("Configuration already exists:"), cfgPath)
		return nil
	}
	fmt.Fprintf(a.stdout, "%s %s\n", SuccessStyle.Render("Created"), cfgPath)
	return nil
}
