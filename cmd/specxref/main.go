package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/dgallion1/specxref/internal/build"
	"github.com/dgallion1/specxref/internal/config"
	"github.com/dgallion1/specxref/internal/navigation"
	"github.com/dgallion1/specxref/internal/toc"
)

var CLI struct {
	Manifest string `short:"m" help:"Build manifest" default:"specxref.yaml" type:"path"`
	Env      string `help:"Environment file loaded before configuration" default:".env"`
	Verbose  bool   `short:"v" help:"Enable verbose logging"`

	Build struct {
		Output string `short:"o" help:"Output directory for numbered pages" default:"./site" type:"path"`
	} `cmd:"" help:"Number all pages of the manifest and write the master TOC"`

	Watch struct {
		Output   string        `short:"o" help:"Output directory for numbered pages" default:"./site" type:"path"`
		Debounce time.Duration `help:"Quiet period before a rebuild" default:"300ms"`
	} `cmd:"" help:"Rebuild whenever the manifest or a page source changes"`

	Toc struct{} `cmd:"" help:"Number all pages in memory and print the TOC as text"`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("specxref"),
		kong.Description("Numbers sections, stamps self links and cross-links generated specification pages."),
	)

	if err := config.LoadDotEnv(CLI.Env); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}

	level, _ := config.ParseLevel(cfg.LogLevel)
	if CLI.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := build.Options{Run: cfg.Run()}
	if cfg.NavigationFile != "" {
		nav, err := navigation.Load(cfg.NavigationFile)
		if err != nil {
			logger.Error("failed to load navigation", "file", cfg.NavigationFile, "error", err)
			os.Exit(1)
		}
		opts.Navigation = nav
	}

	var err error
	switch kctx.Command() {
	case "build":
		opts.OutDir = CLI.Build.Output
		err = runBuild(ctx, opts, logger)
	case "watch":
		opts.OutDir = CLI.Watch.Output
		err = build.New(opts, logger, nil).Watch(ctx, CLI.Manifest, CLI.Watch.Debounce)
	case "toc":
		err = runTOC(ctx, opts, logger)
	default:
		err = fmt.Errorf("unknown command %q", kctx.Command())
	}
	if err != nil {
		logger.Error("command failed", "command", kctx.Command(), "error", err)
		os.Exit(1)
	}
}

func runBuild(ctx context.Context, opts build.Options, logger *slog.Logger) error {
	m, err := build.LoadManifest(CLI.Manifest)
	if err != nil {
		return err
	}
	res, err := build.New(opts, logger, nil).Build(ctx, m)
	if res != nil {
		logger.Info("build finished", "run_id", res.RunID, "pages", res.Pages, "written", len(res.Written), "failed", len(res.Failed))
	}
	return err
}

func runTOC(ctx context.Context, opts build.Options, logger *slog.Logger) error {
	m, err := build.LoadManifest(CLI.Manifest)
	if err != nil {
		return err
	}
	tmp, err := os.MkdirTemp("", "specxref-toc-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmp)

	opts.OutDir = tmp
	res, err := build.New(opts, logger, nil).Build(ctx, m)
	if res != nil {
		fmt.Print(toc.RenderText(res.TOC))
	}
	return err
}
