package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/hlsync/internal/bench"
	"github.com/dshills/hlsync/internal/config"
	"github.com/dshills/hlsync/internal/logging"
	"github.com/dshills/hlsync/internal/renderer/highlight"
	"github.com/dshills/hlsync/internal/renderer/scan"
	"github.com/dshills/hlsync/internal/renderer/theme"
)

type runFlags struct {
	lines        int
	file         string
	themePath    string
	watch        bool
	noPrecompute bool
	opts         bench.Options
}

func newRunCommand(global *globalFlags) *cobra.Command {
	flags := &runFlags{opts: bench.DefaultOptions()}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Replay typing bursts and print statistics",
		Long: `Replay typing bursts against a synthetic Go document, or against FILE
when --file is given. With --watch, the theme file is reloaded when it
changes and replays repeat until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runBench(ctx, cmd, global, flags)
		},
	}

	cmd.Flags().IntVarP(&flags.lines, "lines", "n", 10000, "number of lines in the synthetic document")
	cmd.Flags().StringVarP(&flags.file, "file", "f", "", "replay against this source file instead of a synthetic one")
	cmd.Flags().StringVar(&flags.themePath, "theme", "", "theme file (overrides config)")
	cmd.Flags().BoolVar(&flags.watch, "watch", false, "reload the theme on change and replay until interrupted")
	cmd.Flags().BoolVar(&flags.noPrecompute, "no-precompute", false, "disable whole-document precomputation")
	cmd.Flags().IntVar(&flags.opts.Bursts, "bursts", flags.opts.Bursts, "number of typing bursts")
	cmd.Flags().IntVar(&flags.opts.BurstSize, "burst-size", flags.opts.BurstSize, "keystrokes per burst")
	cmd.Flags().IntVar(&flags.opts.Viewport, "viewport", flags.opts.Viewport, "lines repainted per keystroke")
	cmd.Flags().Uint64Var(&flags.opts.Seed, "seed", flags.opts.Seed, "random seed for edit placement")

	return cmd
}

func runBench(ctx context.Context, cmd *cobra.Command, global *globalFlags, flags *runFlags) error {
	cfg, err := config.Load(global.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	level := cfg.Level()
	if global.logLevel != "" {
		level = global.logLevel
	}
	logger := logging.NewWithWriter(cmd.ErrOrStderr(), level)

	themePath := cfg.Theme.Path
	if flags.themePath != "" {
		themePath = flags.themePath
	}
	resolver := theme.NewResolver(nil)
	if themePath != "" {
		th, err := theme.Load(themePath)
		if err != nil {
			return err
		}
		resolver.SetTheme(th)
	}

	doc, parser, err := loadDocument(flags)
	if err != nil {
		return err
	}

	sessOpts := []highlight.Option{highlight.WithConfig(cfg)}
	if flags.noPrecompute {
		sessOpts = append(sessOpts, highlight.WithPrecompute(false))
	}

	opts := flags.opts
	opts.Scopes = resolver.Resolve
	opts.Logger = logger
	runner, err := bench.NewRunner(doc, parser, opts, sessOpts...)
	if err != nil {
		return err
	}
	defer runner.Close()

	logger.Debug("session started",
		logging.FieldSession, runner.Session().ID(), logging.FieldLines, doc.LineCount())

	if !flags.watch {
		rep, err := runner.Run(ctx)
		fmt.Fprint(cmd.OutOrStdout(), rep)
		return err
	}

	if themePath == "" {
		return fmt.Errorf("--watch requires a theme file")
	}
	w, err := theme.Watch(ctx, themePath,
		func(th *theme.Theme) {
			resolver.SetTheme(th)
			runner.Session().SetScopeResolver(resolver.Resolve)
			logger.Info("theme reloaded", logging.FieldPath, themePath)
		},
		func(err error) {
			logger.Warn("theme reload failed", logging.FieldPath, themePath, logging.FieldError, err)
		})
	if err != nil {
		return err
	}
	defer w.Close()

	for round := 1; ; round++ {
		rep, err := runner.Run(ctx)
		fmt.Fprintf(cmd.OutOrStdout(), "round %d\n%s\n", round, rep)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		if err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Second):
		}
	}
}

func loadDocument(flags *runFlags) (*bench.Document, *scan.Parser, error) {
	if flags.file == "" {
		if flags.lines <= 0 {
			return nil, nil, fmt.Errorf("--lines must be positive, got %d", flags.lines)
		}
		return bench.NewDocument(bench.GenerateGo(flags.lines)), scan.NewParser(scan.Go()), nil
	}

	s, ok := scan.DefaultRegistry().ForFile(flags.file)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, flags.file)
	}
	data, err := os.ReadFile(flags.file)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", flags.file, err)
	}
	return bench.NewDocument(string(data)), scan.NewParser(s), nil
}
