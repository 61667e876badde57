package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli"
	"golang.org/x/term"

	"github.com/valerio/go-ugba/ugba"
	"github.com/valerio/go-ugba/ugba/backend"
	"github.com/valerio/go-ugba/ugba/backend/ebiten"
	"github.com/valerio/go-ugba/ugba/backend/headless"
	"github.com/valerio/go-ugba/ugba/backend/sdl2"
	"github.com/valerio/go-ugba/ugba/backend/terminal"
	"github.com/valerio/go-ugba/ugba/host"
	"github.com/valerio/go-ugba/ugba/script"
	"github.com/valerio/go-ugba/ugba/timing"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		slog.Error("Error running ugba", "error", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "ugba"
	app.Description = "Runs demo programs on a model of the GBA hardware"
	app.Usage = "ugba [options]"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "demo",
			Usage: "Demo to run: " + strings.Join(demoNames(), ", "),
			Value: "arctan2",
		},
		cli.BoolFlag{
			Name:  "list",
			Usage: "List the demos and exit",
		},
		cli.StringFlag{
			Name:  "backend",
			Usage: "Backend to use: terminal, sdl2, ebiten or headless (default: terminal when attached to one, headless otherwise)",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run in headless mode (required for headless)",
		},
		cli.IntFlag{
			Name:  "scale",
			Usage: "Window scale for sdl2 and ebiten",
			Value: 3,
		},
		cli.BoolFlag{
			Name:  "debug",
			Usage: "Show the register panel when the backend has one",
		},
		cli.BoolFlag{
			Name:  "test-pattern",
			Usage: "Display a test pattern instead of the console output (for debugging display)",
		},
		cli.IntFlag{
			Name:  "snapshot-interval",
			Usage: "Save frame snapshots every N frames in headless mode (0 = disabled)",
		},
		cli.StringFlag{
			Name:  "snapshot-dir",
			Usage: "Directory to save frame snapshots (default: temp directory)",
		},
		cli.IntFlag{
			Name:  "snapshot-scale",
			Usage: "Scale factor of saved snapshots",
			Value: 1,
		},
		cli.StringFlag{
			Name:  "script",
			Usage: "Lua script driving the input",
		},
		cli.StringFlag{
			Name:  "save",
			Usage: "SRAM save file, loaded at start and written on exit",
		},
		cli.StringFlag{
			Name:  "limiter",
			Usage: "Frame pacing: adaptive, ticker or none (default: none when headless)",
		},
		cli.BoolFlag{
			Name:  "strict",
			Usage: "Panic on out of range memory accesses",
		},
		cli.BoolFlag{
			Name:  "statsview",
			Usage: "Serve runtime statistics (builds with the statsview tag)",
		},
	}
	app.Action = run
	return app
}

func run(c *cli.Context) error {
	if c.Bool("list") {
		for _, name := range demoNames() {
			fmt.Printf("%-14s %s\n", name, demos[name].about)
		}
		return nil
	}

	name := c.String("demo")
	d, ok := demos[name]
	if !ok {
		return fmt.Errorf("%w %q, try --list", errUnknownDemo, name)
	}

	if c.Bool("statsview") && !launchStatsview(os.Stderr) {
		return errors.New("statsview is not available, build with -tags statsview")
	}

	kind := backendKind(c.String("backend"))
	b, err := newBackend(c, kind, name)
	if err != nil {
		return err
	}

	limiterKind := c.String("limiter")
	if limiterKind == "" && kind == "headless" {
		limiterKind = "none"
	}
	limiter, ok := timing.New(limiterKind)
	if !ok {
		return fmt.Errorf("unknown limiter %q", limiterKind)
	}

	opts := []host.Option{host.WithLimiter(limiter)}
	if c.Bool("strict") {
		opts = append(opts, host.WithConsoleOptions(ugba.WithStrictMemory()))
	}

	config := backend.BackendConfig{
		Title:       "ugba - " + name,
		Scale:       c.Int("scale"),
		ShowDebug:   c.Bool("debug"),
		TestPattern: c.Bool("test-pattern"),
	}
	// until Run takes over, failures have to restore the terminal themselves
	abort := func(err error) error {
		if cerr := b.Cleanup(); cerr != nil {
			slog.Warn("Backend cleanup failed", "err", cerr)
		}
		return err
	}

	h, err := host.New(b, config, opts...)
	if err != nil {
		return abort(err)
	}
	console := h.Console()

	if path := c.String("script"); path != "" {
		s, err := script.LoadFile(path, console,
			script.WithSnapshotDir(c.String("snapshot-dir")),
			script.WithSnapshotScale(c.Int("snapshot-scale")))
		if err != nil {
			return abort(err)
		}
		defer s.Close()
		h.AddFrameHook(s)
	}

	save := c.String("save")
	if save != "" {
		if err := console.LoadSaveFile(save); err != nil {
			return abort(err)
		}
	}

	err = h.Run(d.run)
	if save != "" {
		if serr := console.SaveFile(save); serr != nil {
			return errors.Join(err, serr)
		}
	}
	return err
}

// backendKind resolves the default backend: the terminal one when stdout is
// a terminal.
func backendKind(kind string) string {
	if kind != "" {
		return kind
	}
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return "terminal"
	}
	return "headless"
}

func newBackend(c *cli.Context, kind, name string) (backend.Backend, error) {
	switch kind {
	case "terminal":
		return terminal.New(), nil
	case "sdl2":
		return sdl2.New(), nil
	case "ebiten":
		return ebiten.New(), nil
	case "headless":
		frames := c.Int("frames")
		if frames <= 0 && !c.Bool("test-pattern") {
			return nil, errors.New("headless mode requires --frames option with a positive value")
		}
		snapshots, err := headless.CreateSnapshotConfig(c.Int("snapshot-interval"), c.String("snapshot-dir"), name, c.Int("snapshot-scale"))
		if err != nil {
			return nil, err
		}
		return headless.New(frames, snapshots), nil
	}
	return nil, fmt.Errorf("unknown backend %q", kind)
}
