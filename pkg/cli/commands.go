package cli

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/winauto-dev/winrunner/pkg/config"
	"github.com/winauto-dev/winrunner/pkg/core"
	"github.com/winauto-dev/winrunner/pkg/dpi"
	"github.com/winauto-dev/winrunner/pkg/driver"
	uiadriver "github.com/winauto-dev/winrunner/pkg/driver/uia"
	win32driver "github.com/winauto-dev/winrunner/pkg/driver/win32"
	"github.com/winauto-dev/winrunner/pkg/resolve"
	"github.com/winauto-dev/winrunner/pkg/uia"
	"github.com/winauto-dev/winrunner/pkg/wait"
	"github.com/winauto-dev/winrunner/pkg/win32"
)

// loadConfig merges the config file with command-line flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	if c.IsSet("backend") {
		cfg.Backend = c.String("backend")
	}
	if c.IsSet("win32-agent") {
		cfg.Agents.Win32 = c.String("win32-agent")
	}
	if c.IsSet("uia-agent") {
		cfg.Agents.UIA = c.String("uia-agent")
	}
	if c.IsSet("timeout") {
		cfg.Timeout = c.Duration("timeout")
	}
	if c.Bool("verbose") {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

func buildLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	var zc zap.Config
	if cfg.Logging.Format == "json" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

// newSession wires the agents, drivers and resolver for one command run.
func newSession(c *cli.Context) (*resolve.Service, *driver.Registry, *config.Config, *zap.Logger, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	log, err := buildLogger(cfg)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	var scaler *dpi.Adapter
	if cfg.DPI.Enabled {
		scaler = dpi.New(cfg.DPI.Scale)
	}

	win32Client := win32.NewClient(cfg.Agents.Win32)
	uiaClient := uia.NewClient(cfg.Agents.UIA)

	reg := driver.NewRegistry(map[core.BackendID]driver.Candidate{
		core.BackendWin32: {
			Driver: win32driver.New(win32Client, scaler),
			Probe:  win32Client.Status,
		},
		core.BackendUIA: {
			Driver: uiadriver.New(uiaClient, scaler),
			Probe:  uiaClient.Status,
		},
	}, log)

	return resolve.New(reg, cfg, log), reg, cfg, log, nil
}

// resolveTarget attaches to the app and resolves the target element named by
// the command's flags and locator argument.
func resolveTarget(c *cli.Context, svc *resolve.Service, cfg *config.Config) (core.ElementHandle, error) {
	if c.NArg() < 1 {
		return core.ElementHandle{}, fmt.Errorf("locator argument required")
	}
	locator := c.Args().First()

	app, err := svc.ResolveApplication(c.String("app"))
	if err != nil {
		return core.ElementHandle{}, err
	}

	windowLocator := c.String("window")
	if windowLocator == "" {
		windowLocator = locator
	}
	win, err := svc.ResolveWindow(app, windowLocator, cfg.Timeout)
	if err != nil {
		return core.ElementHandle{}, err
	}

	return svc.Resolve(win, locator, cfg.Timeout)
}

var targetFlags = []cli.Flag{
	&cli.StringFlag{
		Name:     "app",
		Usage:    "Application to attach to (pid, process name or window title)",
		Required: true,
	},
	&cli.StringFlag{
		Name:  "window",
		Usage: "Window locator (defaults to the element locator)",
	},
}

var backendsCommand = &cli.Command{
	Name:  "backends",
	Usage: "Probe the automation agents and list available backends",
	Action: func(c *cli.Context) error {
		_, reg, _, _, err := newSession(c)
		if err != nil {
			return err
		}

		available := reg.Available()
		if len(available) == 0 {
			return fmt.Errorf("no backend available; is an automation agent running?")
		}
		for i, id := range available {
			if i == 0 {
				fmt.Printf("%s (default)\n", id)
				continue
			}
			fmt.Println(id)
		}
		return nil
	},
}

var resolveCommand = &cli.Command{
	Name:      "resolve",
	Usage:     "Resolve a locator to a native element handle",
	ArgsUsage: "<locator>",
	Flags:     targetFlags,
	Action: func(c *cli.Context) error {
		svc, _, cfg, _, err := newSession(c)
		if err != nil {
			return err
		}

		handle, err := resolveTarget(c, svc, cfg)
		if err != nil {
			return err
		}

		fmt.Printf("backend=%s ref=%s pid=%d\n", handle.Backend, handle.NativeRef, handle.OwnerPID)
		return nil
	},
}

var waitCommand = &cli.Command{
	Name:      "wait",
	Usage:     "Wait until a locator resolves to a live element",
	ArgsUsage: "<locator>",
	Flags:     targetFlags,
	Action: func(c *cli.Context) error {
		svc, _, cfg, _, err := newSession(c)
		if err != nil {
			return err
		}

		start := time.Now()
		ok := wait.Until(func() bool {
			_, err := resolveTarget(c, svc, cfg)
			return err == nil
		}, cfg.Timeout, cfg.PollInterval)
		if !ok {
			return fmt.Errorf("element %q did not appear within %v", c.Args().First(), cfg.Timeout)
		}

		fmt.Printf("found after %v\n", time.Since(start).Round(time.Millisecond))
		return nil
	},
}

var clickCommand = &cli.Command{
	Name:      "click",
	Usage:     "Resolve a locator and click the element",
	ArgsUsage: "<locator>",
	Flags:     targetFlags,
	Action: func(c *cli.Context) error {
		svc, _, cfg, _, err := newSession(c)
		if err != nil {
			return err
		}

		handle, err := resolveTarget(c, svc, cfg)
		if err != nil {
			return err
		}

		d, err := svc.Driver()
		if err != nil {
			return err
		}
		return d.Click(handle, core.Point{})
	},
}

var treeCommand = &cli.Command{
	Name:      "tree",
	Usage:     "List every element under a window matching a locator",
	ArgsUsage: "<locator>",
	Flags:     targetFlags,
	Action: func(c *cli.Context) error {
		if c.NArg() < 1 {
			return fmt.Errorf("locator argument required")
		}

		svc, _, cfg, _, err := newSession(c)
		if err != nil {
			return err
		}

		app, err := svc.ResolveApplication(c.String("app"))
		if err != nil {
			return err
		}

		windowLocator := c.String("window")
		if windowLocator == "" {
			windowLocator = c.Args().First()
		}
		win, err := svc.ResolveWindow(app, windowLocator, cfg.Timeout)
		if err != nil {
			return err
		}

		handles, err := svc.ResolveAll(win, c.Args().First(), cfg.Timeout)
		if err != nil {
			return err
		}
		if len(handles) == 0 {
			fmt.Println("no matches")
			return nil
		}
		for _, h := range handles {
			fmt.Printf("backend=%s ref=%s pid=%d\n", h.Backend, h.NativeRef, h.OwnerPID)
		}
		return nil
	},
}

var typeCommand = &cli.Command{
	Name:      "type",
	Usage:     "Resolve a locator and type text into the element",
	ArgsUsage: "<locator> <text>",
	Flags: append([]cli.Flag{
		&cli.BoolFlag{
			Name:  "clear",
			Usage: "Clear the field before typing",
		},
	}, targetFlags...),
	Action: func(c *cli.Context) error {
		if c.NArg() < 2 {
			return fmt.Errorf("locator and text arguments required")
		}

		svc, _, cfg, _, err := newSession(c)
		if err != nil {
			return err
		}

		handle, err := resolveTarget(c, svc, cfg)
		if err != nil {
			return err
		}

		d, err := svc.Driver()
		if err != nil {
			return err
		}
		return d.TypeText(handle, c.Args().Get(1), c.Bool("clear"))
	},
}
