package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/arducam/jetson-io/internal/utils"
	"github.com/arducam/jetson-io/internal/version"
	"github.com/arducam/jetson-io/pkg/board"
	"github.com/arducam/jetson-io/pkg/dag"
	"github.com/arducam/jetson-io/pkg/schema"
	"github.com/arducam/jetson-io/pkg/state"
	"github.com/spectrocloud-labs/herd"
	"github.com/urfave/cli/v2"
)

var headerFlag = &cli.StringFlag{
	Name:     "header",
	Usage:    "header name, as listed by the headers command",
	EnvVars:  []string{"JETSON_IO_HEADER"},
	Required: true,
}

var Commands = []*cli.Command{
	{
		Name:  "headers",
		Usage: "list the headers found on this board",
		Description: `
Lists the expansion headers that have a header overlay installed, in catalog order.
Headers marked with * have pins configured by an earlier session.
`,
		Action: func(c *cli.Context) error {
			return withBoard(c, func(_ context.Context, b *board.Board) error {
				for _, name := range b.Headers() {
					mark := " "
					if b.PreconfiguredPinsAvailable(name) {
						mark = "*"
					}
					fmt.Fprintf(c.App.Writer, "%s %s\n", mark, name)
				}
				return nil
			})
		},
	},
	{
		Name:  "addons",
		Usage: "list the hardware addons available for a header",
		Flags: []cli.Flag{headerFlag},
		Action: func(c *cli.Context) error {
			return withBoard(c, func(_ context.Context, b *board.Board) error {
				if err := b.SetActiveHeader(c.String("header")); err != nil {
					return err
				}
				for _, name := range b.Addons() {
					fmt.Fprintln(c.App.Writer, name)
				}
				return nil
			})
		},
	},
	{
		Name:  "pins",
		Usage: "show the pin state of a header",
		Flags: []cli.Flag{
			headerFlag,
			&cli.StringFlag{
				Name:  "output",
				Usage: "text or yaml",
				Value: "text",
			},
		},
		Action: func(c *cli.Context) error {
			return withBoard(c, func(_ context.Context, b *board.Board) error {
				if err := b.SetActiveHeader(c.String("header")); err != nil {
					return err
				}
				report, err := NewPinReport(b)
				if err != nil {
					return err
				}
				var out string
				switch c.String("output") {
				case "yaml":
					out, err = report.YAML()
				case "text":
					out = report.Text()
				default:
					err = fmt.Errorf("unknown output format %q", c.String("output"))
				}
				if err != nil {
					return err
				}
				fmt.Fprint(c.App.Writer, out)
				return nil
			})
		},
	},
	{
		Name:      "apply",
		Usage:     "configure a header and boot with it",
		UsageText: "apply --header NAME [--addon NAME] [--pin N=FUNCTION]... [--disable N]...",
		Description: `
Selects a header, applies a hardware addon preset and explicit pin edits on top
of the current pin state, writes the resulting overlay to the boot directory and
adds a boot entry using it.
`,
		Flags: []cli.Flag{
			headerFlag,
			&cli.StringFlag{
				Name:  "addon",
				Usage: "hardware addon to load before the pin edits",
			},
			&cli.StringSliceFlag{
				Name:  "pin",
				Usage: "set a pin function, as PIN=FUNCTION",
			},
			&cli.IntSliceFlag{
				Name:  "disable",
				Usage: "disable a pin",
			},
			&cli.BoolFlag{
				Name:  "no-publish",
				Usage: "only write the overlay, do not touch the boot configuration",
			},
			&cli.BoolFlag{
				Name:    "dry-run",
				Usage:   "print the operations and exit",
				EnvVars: []string{"JETSON_IO_DRY_RUN"},
			},
		},
		Action: func(c *cli.Context) error {
			pins, err := ParsePinFlags(c.StringSlice("pin"))
			if err != nil {
				return err
			}
			return withBoard(c, func(ctx context.Context, b *board.Board) error {
				s := &state.State{
					Board:   b,
					Header:  c.String("header"),
					Addon:   c.String("addon"),
					Pins:    pins,
					Disable: c.IntSlice("disable"),
					Publish: !c.Bool("no-publish"),
				}
				err := Apply(ctx, s, c.Bool("dry-run"))
				for _, m := range s.Messages {
					fmt.Fprintln(c.App.Writer, m)
				}
				return err
			})
		},
	},
}

// withBoard loads the configuration and runs f in a board session.
func withBoard(c *cli.Context, f func(ctx context.Context, b *board.Board) error) error {
	cfg, err := LoadConfig(c)
	if err != nil {
		return err
	}
	return Session(c.Context, cfg, f)
}

// Session discovers the board, runs f and releases the board whatever happens.
// SIGINT and SIGTERM cancel the context handed to f instead of killing the
// process, so a mounted APP partition is still released on interruption.
func Session(ctx context.Context, cfg schema.Config, f func(ctx context.Context, b *board.Board) error, opts ...board.Option) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := board.New(cfg, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := b.Close(); cerr != nil {
			utils.Log.Err(cerr).Msg("Releasing board")
			if err == nil {
				err = cerr
			}
		}
	}()
	if err := ctx.Err(); err != nil {
		utils.Log.Warn().Msg("Interrupted during discovery")
		return err
	}
	return f(ctx, b)
}

// Apply runs the apply dag for s. The run stops at the next step boundary once ctx is cancelled.
func Apply(ctx context.Context, s *state.State, dryRun bool) error {
	g := herd.DAG(herd.EnableInit)
	if err := dag.RegisterApply(s, g); err != nil {
		return err
	}
	utils.Log.Info().Msg(s.WriteDAG(g))

	// Once we print the dag we can exit already
	if dryRun {
		return nil
	}

	err := g.Run(ctx)
	utils.Log.Debug().Msg(s.WriteDAG(g))
	if cerr := ctx.Err(); cerr != nil {
		utils.Log.Warn().Msg("Interrupted, stopping before the next step")
		return cerr
	}
	if err != nil {
		return err
	}
	for _, layer := range g.Analyze() {
		for _, op := range layer {
			if op.Error != nil {
				return op.Error
			}
		}
	}
	return nil
}

// LoadConfig reads the configuration file and applies the global flags on top.
func LoadConfig(c *cli.Context) (schema.Config, error) {
	cfg, err := schema.LoadConfig(c.String("config"))
	if err != nil {
		return cfg, err
	}
	if c.IsSet("boot-dir") {
		cfg.SetBootDir(c.String("boot-dir"))
	}
	if c.Bool("debug") {
		cfg.Debug = true
	}
	utils.SetLogger(cfg.Debug, cfg.LogDir)
	utils.Log.Debug().Str("version", version.Get().String()).Interface("config", cfg).Msg("Starting")
	return cfg, nil
}

// ParsePinFlags parses PIN=FUNCTION pairs. Blank entries such as --pin "" are ignored.
func ParsePinFlags(flags []string) (map[int]string, error) {
	pins := map[int]string{}
	for _, f := range utils.CleanupSlice(flags) {
		n, function, ok := strings.Cut(f, "=")
		if !ok || strings.TrimSpace(function) == "" {
			return nil, fmt.Errorf("invalid pin setting %q, expected PIN=FUNCTION", f)
		}
		pin, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return nil, fmt.Errorf("invalid pin number in %q: %w", f, err)
		}
		pins[pin] = strings.TrimSpace(function)
	}
	return pins, nil
}
