package main

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benz9527/xrbt/lib/tree"
	"github.com/benz9527/xrbt/lib/treeio"
	"github.com/benz9527/xrbt/xlog"
)

type loadOptions struct {
	dir     string
	workers int
	remove  string
	display bool
}

func (a *app) loadCommand() *cobra.Command {
	opts := &loadOptions{}
	cmd := &cobra.Command{
		Use:   "load FILE...",
		Short: "Load count-prefixed key files, one tree per file",
		Long: `Each FILE holds a key count N followed by N whitespace separated
int32 keys. Relative names are resolved beneath --dir and cannot escape it.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("workers") {
				opts.workers = a.cfg.Workers
			}
			if !cmd.Flags().Changed("display") {
				opts.display = a.cfg.Display
			}
			return a.runLoad(cmd, args, opts)
		},
	}
	cmd.Flags().StringVar(&opts.dir, "dir", ".", "base directory of relative FILE names")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "trees built concurrently (default from config)")
	cmd.Flags().StringVarP(&opts.remove, "remove", "r", "", "comma separated keys removed from every tree")
	cmd.Flags().BoolVarP(&opts.display, "display", "d", false, "render every tree")
	return cmd
}

func splitTreeFile(dir, file string) (string, string) {
	if filepath.IsAbs(file) {
		return filepath.Dir(file), filepath.Base(file)
	}
	return dir, file
}

func (a *app) runLoad(cmd *cobra.Command, files []string, opts *loadOptions) error {
	removes, err := parseKeys(opts.remove)
	if err != nil {
		return err
	}
	if opts.workers < 1 {
		opts.workers = 1
	}
	pool, err := ants.NewPool(opts.workers, ants.WithLogger(xlog.NewAntsXLogger(a.logger)))
	if err != nil {
		return err
	}
	defer pool.Release()

	results := make([]*treeResult, len(files))
	wg := sync.WaitGroup{}
	for i, file := range files {
		res := &treeResult{name: file, tree: tree.NewRBTree(a.treeOptions()...)}
		results[i] = res
		ctx := context.WithValue(cmd.Context(), xlog.ContextKey(treeFileCtxKey), file)
		wg.Add(1)
		if err = pool.Submit(func() {
			defer func() {
				if r := recover(); r != nil {
					res.err = fmt.Errorf("%s: %v", res.name, r)
					a.logger.ErrorContext(ctx, res.err, "tree build panicked")
				}
				wg.Done()
			}()
			a.loadOne(ctx, res, opts.dir, removes)
		}); err != nil {
			wg.Done()
			res.err = fmt.Errorf("%s: %w", file, err)
		}
	}
	wg.Wait()

	var errs error
	out := cmd.OutOrStdout()
	for _, res := range results {
		errs = multierr.Append(errs, res.err)
		if err = a.report(out, res, opts.display); err != nil {
			return multierr.Append(errs, err)
		}
	}
	if errs != nil {
		a.logger.Warn("some trees failed", zap.Int("failed", len(multierr.Errors(errs))), zap.Int("total", len(files)))
	}
	return errs
}

func (a *app) loadOne(ctx context.Context, res *treeResult, dir string, removes []int32) {
	base, name := splitTreeFile(dir, res.name)
	n, err := treeio.LoadFile(res.tree, base, name)
	res.loaded = n
	if err != nil {
		res.err = fmt.Errorf("%s: %w", res.name, err)
		a.logger.ErrorContext(ctx, err, "unable to load tree", zap.Int("loaded", n))
		return
	}
	a.finish(ctx, res, removes)
}
