// Command areademo opens a window with a pannable, zoomable node area
// populated with a chain of demo nodes.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/phanxgames/nodearea"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type options struct {
	configPath string
	verbose    bool
	nodes      int
	width      int
	height     int
	script     string
	shots      string
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:          "areademo",
		Short:        "Interactive node area demo",
		Long:         `areademo opens a window with draggable nodes. Drag the background to pan, scroll or double click to zoom, pinch on touch screens.`,
		Version:      fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "path to a TOML config file")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")
	cmd.Flags().IntVarP(&opts.nodes, "nodes", "n", 6, "number of demo nodes")
	cmd.Flags().IntVar(&opts.width, "width", 1024, "window width")
	cmd.Flags().IntVar(&opts.height, "height", 768, "window height")
	cmd.Flags().StringVar(&opts.script, "script", "", "replay a TOML input script")
	cmd.Flags().StringVar(&opts.shots, "screenshots", nodearea.DefaultScreenshotDir, "directory for script screenshots")
	return cmd
}

func run(ctx context.Context, opts options) error {
	if opts.nodes < 0 {
		return fmt.Errorf("--nodes must not be negative, got %d", opts.nodes)
	}

	cfg := nodearea.DefaultConfig()
	if opts.configPath != "" {
		var err error
		if cfg, err = nodearea.LoadConfig(opts.configPath); err != nil {
			return err
		}
	}

	level, err := nodearea.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	if opts.verbose {
		level = charmlog.DebugLevel
	}
	logger := nodearea.NewLogger(os.Stderr, level)

	d, err := newDemo(opts.width, opts.height, cfg, logger)
	if err != nil {
		return err
	}
	defer d.plugin.Destroy()

	if err := d.populate(ctx, opts.nodes); err != nil {
		return err
	}
	d.host.ScreenshotDir = opts.shots
	if opts.script != "" {
		data, err := os.ReadFile(opts.script)
		if err != nil {
			return fmt.Errorf("read script: %w", err)
		}
		script, err := nodearea.ParseScript(data)
		if err != nil {
			return err
		}
		d.host.SetScript(script)
	}
	logger.Info("starting", "nodes", opts.nodes, "config", opts.configPath)

	return nodearea.Run(d.host, nodearea.RunConfig{
		Title:   "nodearea demo",
		Width:   opts.width,
		Height:  opts.height,
		Context: ctx,
	})
}
