package treeio

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/benz9527/xrbt/lib/tree"
)

const renderIndentWidth = 10

type renderer struct {
	w         io.Writer
	red       *color.Color
	sentinels bool
	err       error
}

type RenderOption func(*renderer)

// WithRenderColor forces red keys to be colored (or not), regardless of
// the terminal detection done by fatih/color.
func WithRenderColor(enabled bool) RenderOption {
	return func(r *renderer) {
		if enabled {
			r.red.EnableColor()
		} else {
			r.red.DisableColor()
		}
	}
}

// WithRenderSentinels prints every sentinel leaf as N.
func WithRenderSentinels() RenderOption {
	return func(r *renderer) {
		r.sentinels = true
	}
}

// Render prints t rotated by 90 degrees: the right subtree above its
// root, the left one below, each level indented by 10 columns.
func Render(w io.Writer, t tree.RBTree, opts ...RenderOption) error {
	if t == nil {
		return ErrTreeIONilTree
	}
	r := &renderer{
		w:   w,
		red: color.New(color.FgRed),
	}
	for _, o := range opts {
		if o != nil {
			o(r)
		}
	}
	if t.Root() == nil {
		r.println(0, "N")
		return r.err
	}
	r.render(t.Root(), 0)
	return r.err
}

func (r *renderer) render(node tree.RBNode, depth int) {
	if r.err != nil {
		return
	}
	if node == nil {
		if r.sentinels {
			r.println(depth, "N")
		}
		return
	}
	r.render(node.Right(), depth+1)
	key := strconv.FormatInt(int64(node.Key()), 10)
	if node.Color() == tree.Red {
		key = r.red.Sprint(key)
	}
	r.println(depth, key)
	r.render(node.Left(), depth+1)
}

func (r *renderer) println(depth int, text string) {
	if r.err != nil {
		return
	}
	_, r.err = fmt.Fprintf(r.w, "\n%s%s\n", strings.Repeat(" ", depth*renderIndentWidth), text)
}
