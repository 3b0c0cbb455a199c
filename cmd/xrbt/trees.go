package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/benz9527/xrbt/lib/tree"
	"github.com/benz9527/xrbt/lib/treeio"
)

var errBadRemoveKey = errors.New("[xrbt] invalid --remove key")

// parseKeys parses a comma separated key list, duplicates are dropped.
func parseKeys(list string) ([]int32, error) {
	tokens := lo.Filter(
		lo.Map(strings.Split(list, ","), func(s string, _ int) string { return strings.TrimSpace(s) }),
		func(s string, _ int) bool { return s != "" },
	)
	keys := make([]int32, 0, len(tokens))
	for _, token := range tokens {
		k, err := strconv.ParseInt(token, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %w", errBadRemoveKey, token, err)
		}
		keys = append(keys, int32(k))
	}
	return lo.Uniq(keys), nil
}

type treeResult struct {
	name    string
	tree    tree.RBTree
	loaded  int
	removed int
	err     error
}

// finish removes the keys, validates and records t. It runs on the
// goroutine that built t.
func (a *app) finish(ctx context.Context, res *treeResult, removes []int32) {
	for _, k := range removes {
		if err := res.tree.Remove(k); err != nil {
			a.logger.WarnContext(ctx, "key not removed", zap.Int32("key", k), zap.Error(err))
			continue
		}
		res.removed++
	}
	a.treeStats.Record(res.name, res.tree)
	if err := res.tree.Validate(); err != nil {
		res.err = fmt.Errorf("%s: %w", res.name, err)
		a.logger.ErrorContext(ctx, err, "invalid red-black tree")
		return
	}
	stats := res.tree.Stats()
	a.logger.InfoContext(ctx, "tree ready",
		zap.String("keys", humanize.Comma(res.tree.Len())),
		zap.Int("loaded", res.loaded),
		zap.Int("removed", res.removed),
		zap.Int("height", res.tree.Height()),
		zap.Uint64("rotations", stats.Rotations),
	)
}

// report prints the summary line and, when display is set, the tree.
func (a *app) report(w io.Writer, res *treeResult, display bool) error {
	if res.err != nil {
		return nil
	}
	if _, err := fmt.Fprintf(w, "%s: %s keys, height %d\n",
		res.name, humanize.Comma(res.tree.Len()), res.tree.Height()); err != nil {
		return err
	}
	if !display {
		return nil
	}
	return treeio.Render(w, res.tree, treeio.WithRenderColor(a.colored()))
}
