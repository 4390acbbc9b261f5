// Package cli provides the command-line interface for winrunner.
package cli

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// Version is set at build time.
var Version = "dev"

// GlobalFlags are available to all commands.
var GlobalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "backend",
		Aliases: []string{"b"},
		Usage:   "Backend to use (auto, win32, uia)",
		EnvVars: []string{"WINRUNNER_BACKEND"},
	},
	&cli.StringFlag{
		Name:    "win32-agent",
		Usage:   "Win32 automation agent URL",
		EnvVars: []string{"WINRUNNER_WIN32_AGENT"},
	},
	&cli.StringFlag{
		Name:    "uia-agent",
		Usage:   "UIA automation agent URL (WebDriver protocol)",
		EnvVars: []string{"WINRUNNER_UIA_AGENT"},
	},
	&cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to winrunner config YAML",
		EnvVars: []string{"WINRUNNER_CONFIG"},
	},
	&cli.DurationFlag{
		Name:    "timeout",
		Aliases: []string{"t"},
		Usage:   "Resolution timeout",
		EnvVars: []string{"WINRUNNER_TIMEOUT"},
	},
	&cli.BoolFlag{
		Name:    "verbose",
		Usage:   "Enable verbose logging",
		EnvVars: []string{"WINRUNNER_VERBOSE"},
	},
}

// Execute runs the CLI.
func Execute() {
	app := &cli.App{
		Name:    "winrunner",
		Usage:   "Windows UI element resolver and automation runner",
		Version: Version,
		Description: `Winrunner resolves UI element locators against a running Windows
application and performs basic interactions through a local automation agent.

Examples:
  # List available backends
  winrunner backends

  # Resolve an element inside the Calculator window
  winrunner resolve --app calc.exe --window Calculator "id=num5Button"

  # Wait for an element to appear, then click it
  winrunner wait --app notepad.exe --window Notepad "name=Save"
  winrunner click --app notepad.exe --window Notepad "name=Save"

  # Force the uia backend against a remote agent
  winrunner --backend uia --uia-agent http://10.0.0.5:4723 backends`,
		Flags: GlobalFlags,
		Commands: []*cli.Command{
			backendsCommand,
			resolveCommand,
			waitCommand,
			clickCommand,
			typeCommand,
			treeCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
