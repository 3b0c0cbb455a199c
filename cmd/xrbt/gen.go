package main

import (
	randv2 "math/rand/v2"

	"github.com/spf13/cobra"

	"github.com/benz9527/xrbt/lib/tree"
	"github.com/benz9527/xrbt/lib/treeio"
)

const generatedTreeName = "generated"

type genOptions struct {
	from    int32
	to      int32
	size    int
	seed    uint64
	remove  string
	display bool
}

func (a *app) genCommand() *cobra.Command {
	opts := &genOptions{}
	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate a tree of uniform random keys in [from, to]",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("display") {
				opts.display = a.cfg.Display
			}
			var rng *randv2.Rand
			if cmd.Flags().Changed("seed") {
				rng = randv2.New(randv2.NewPCG(opts.seed, opts.seed))
			}
			return a.runGen(cmd, opts, rng)
		},
	}
	cmd.Flags().Int32Var(&opts.from, "from", 0, "smallest generated key")
	cmd.Flags().Int32Var(&opts.to, "to", 1000, "largest generated key")
	cmd.Flags().IntVarP(&opts.size, "size", "n", 100, "number of generated keys")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "random seed (default random)")
	cmd.Flags().StringVarP(&opts.remove, "remove", "r", "", "comma separated keys removed after generation")
	cmd.Flags().BoolVarP(&opts.display, "display", "d", false, "render the tree")
	return cmd
}

func (a *app) runGen(cmd *cobra.Command, opts *genOptions, rng *randv2.Rand) error {
	removes, err := parseKeys(opts.remove)
	if err != nil {
		return err
	}
	res := &treeResult{name: generatedTreeName, tree: tree.NewRBTree(a.treeOptions()...)}
	if err = treeio.Generate(res.tree, opts.from, opts.to, opts.size, rng); err != nil {
		return err
	}
	res.loaded = opts.size
	a.finish(cmd.Context(), res, removes)
	if res.err != nil {
		return res.err
	}
	return a.report(cmd.OutOrStdout(), res, opts.display)
}
