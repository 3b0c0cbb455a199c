// Package main provides the xrbt CLI: load, generate and validate
// red-black trees of int32 keys.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/xrbt/internal/config"
	"github.com/benz9527/xrbt/lib/tree"
	"github.com/benz9527/xrbt/observability"
	"github.com/benz9527/xrbt/xlog"
)

// Set by -ldflags "-X main.version=...".
var version = "dev"

const treeFileCtxKey = "treeFile"

type app struct {
	stdout io.Writer
	stderr io.Writer

	configPath string
	logLevel   string
	metrics    string
	noColor    bool

	cfg             *config.Config
	logger          xlog.XLogger
	treeStats       *observability.TreeStats
	metricsShutdown func(ctx context.Context) error
	undoMaxProcs    func()
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

func execute(args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr}
	rootCmd := a.rootCommand()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.Execute()
	err = multierr.Append(err, a.close(context.Background()))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func (a *app) rootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "xrbt",
		Short: "xrbt - red-black tree loader and validator",
		Long: `xrbt builds red-black trees of int32 keys, removes keys from them,
validates every red-black rule and renders the result.

Commands:
  load      Load count-prefixed key files, one tree per file
  gen       Generate a tree of uniform random keys`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default .xrbt.yaml in . or $HOME)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.StringVar(&a.metrics, "metrics", "", "metrics exporter: none, console or prometheus")
	flags.BoolVar(&a.noColor, "no-color", false, "disable colored tree rendering")

	rootCmd.AddCommand(a.loadCommand())
	rootCmd.AddCommand(a.genCommand())
	rootCmd.AddCommand(a.versionCommand())
	return rootCmd
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if flags.Changed("metrics") {
		cfg.Metrics = a.metrics
	}
	if flags.Changed("no-color") {
		cfg.Color = !a.noColor
	}
	if err = cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	if a.logger, err = newLogger(&cfg.Log); err != nil {
		return err
	}
	if a.undoMaxProcs, err = maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		a.logger.Logf(zapcore.DebugLevel, format, args...)
	})); err != nil {
		a.logger.Warn("unable to set GOMAXPROCS")
	}

	mp, shutdown, err := observability.NewMetricsExporter(cfg.Metrics, a.stderr)
	if err != nil {
		return err
	}
	a.metricsShutdown = shutdown
	if cfg.Metrics != observability.MetricsNone {
		if err = observability.InitAppStats(mp, cmd.Name()); err != nil {
			a.logger.Error(err, "unable to start runtime metrics")
		}
	}
	a.treeStats = observability.NewTreeStats(mp, cmd.Name())
	return nil
}

func newLogger(cfg *config.LogConfig) (xlog.XLogger, error) {
	lvl, err := xlog.ParseLogLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	enc, err := xlog.ParseLogEncoder(cfg.Encoder)
	if err != nil {
		return nil, err
	}
	opts := []xlog.XLoggerOption{
		xlog.WithXLoggerLevel(lvl),
		xlog.WithXLoggerEncoder(enc),
		xlog.WithXLoggerStdErrWriter(),
		xlog.WithXLoggerContextFieldExtract(treeFileCtxKey, "file"),
	}
	if cfg.File != "" {
		opts = append(opts, xlog.WithXLoggerFileWriter(&xlog.FileCoreConfig{
			FilePath: cfg.Dir,
			Filename: cfg.File,
		}))
	}
	return xlog.BuildXLogger(opts...)
}

func (a *app) treeOptions() []tree.RBTreeOpt {
	opts := make([]tree.RBTreeOpt, 0, 3)
	if a.cfg.Tree.Desc {
		opts = append(opts, tree.WithRBTreeDesc())
	}
	if a.cfg.Tree.BorrowPred {
		opts = append(opts, tree.WithRBTreeRemoveBorrowPred())
	}
	if a.cfg.Tree.Capacity > 0 {
		opts = append(opts, tree.WithRBTreeCapacity(a.cfg.Tree.Capacity))
	}
	return opts
}

func (a *app) colored() bool {
	return a.cfg.Color && !color.NoColor
}

// close flushes the metrics first, so their errors still reach the log.
func (a *app) close(ctx context.Context) error {
	var err error
	if a.metricsShutdown != nil {
		err = multierr.Append(err, a.metricsShutdown(ctx))
	}
	if a.undoMaxProcs != nil {
		a.undoMaxProcs()
	}
	if a.logger != nil {
		_ = a.logger.Close()
	}
	return err
}

func (a *app) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		// No config, logger or metrics for version.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "xrbt %s\n", version)
		},
	}
}
