package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/agenthands/basket/internal/app"
	"github.com/agenthands/basket/internal/config"
	"github.com/agenthands/basket/internal/core/model"
	"github.com/agenthands/basket/internal/core/search"
)

type rootOptions struct {
	configPath string
	dataPaths  []string
	format     string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "basket",
		Short: "Market basket analysis over an item co-occurrence graph",
		Long: `basket loads purchase transactions, builds the co-occurrence graph
and answers questions about which items are bought together.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "config/config.toml", "path to the TOML config file")
	rootCmd.PersistentFlags().StringSliceVar(&opts.dataPaths, "data", nil, "transaction files, overriding the config")
	rootCmd.PersistentFlags().StringVar(&opts.format, "format", "", "data format: basket or grouped")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log at info level")

	rootCmd.AddCommand(
		newStatsCmd(opts),
		newBundlesCmd(opts),
		newPairsCmd(opts),
		newBoughtWithCmd(opts),
		newTraverseCmd(opts),
		newCommunitiesCmd(opts),
		newExportCmd(opts),
	)
	return rootCmd
}

// open resolves the config, applies the flags and builds the first snapshot.
func open(ctx context.Context, opts *rootOptions) (*app.App, error) {
	_ = godotenv.Load()

	cfg, err := config.Resolve(opts.configPath)
	if err != nil {
		return nil, err
	}
	if len(opts.dataPaths) > 0 {
		cfg.Data.Paths = opts.dataPaths
	}
	if opts.format != "" {
		cfg.Data.Format = opts.format
	}
	if !opts.verbose {
		cfg.Log.Level = "warn"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(cfg.Data.Paths) == 0 {
		return nil, fmt.Errorf("no transaction files: pass --data or set data.paths")
	}

	a, err := app.FromConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := a.LoadData(ctx); err != nil {
		a.Close(ctx)
		return nil, err
	}
	return a, nil
}

func withApp(opts *rootOptions, fn func(cmd *cobra.Command, a *app.App, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		a, err := open(ctx, opts)
		if err != nil {
			return err
		}
		defer a.Close(ctx)
		return fn(cmd, a, args)
	}
}

func newStatsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print graph statistics",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, a *app.App, _ []string) error {
			info, err := a.Basket.Stats()
			if err != nil {
				return err
			}
			w := table(cmd.OutOrStdout())
			fmt.Fprintf(w, "snapshot\t%s\n", info.ID)
			fmt.Fprintf(w, "transactions\t%d\n", info.Transactions)
			fmt.Fprintf(w, "items\t%d\n", info.Stats.Nodes)
			fmt.Fprintf(w, "pairs\t%d\n", info.Stats.Edges)
			fmt.Fprintf(w, "isolated items\t%d\n", info.Stats.IsolatedItems)
			fmt.Fprintf(w, "total weight\t%d\n", info.Stats.TotalWeight)
			fmt.Fprintf(w, "density\t%.4f\n", info.Stats.Density)
			for _, item := range info.Stats.TopItems {
				fmt.Fprintf(w, "top item\t%s (%d)\n", item.Item, item.Weight)
			}
			return w.Flush()
		}),
	}
}

func newBundlesCmd(opts *rootOptions) *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "bundles",
		Short: "Print the most frequent item pairs",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, a *app.App, _ []string) error {
			if !cmd.Flags().Changed("top") {
				n = a.Config.Query.TopBundles
			}
			bundles, err := a.Basket.TopBundles(n)
			if err != nil {
				return err
			}
			return printBundles(cmd.OutOrStdout(), bundles)
		}),
	}
	cmd.Flags().IntVarP(&n, "top", "n", 10, "number of bundles")
	return cmd
}

func newPairsCmd(opts *rootOptions) *cobra.Command {
	var minFrequency int
	cmd := &cobra.Command{
		Use:   "pairs",
		Short: "Print every pair bought together at least --min-frequency times",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, a *app.App, _ []string) error {
			if !cmd.Flags().Changed("min-frequency") {
				minFrequency = a.Config.Query.MinFrequency
			}
			pairs, err := a.Basket.FrequentPairs(minFrequency)
			if err != nil {
				return err
			}
			return printBundles(cmd.OutOrStdout(), pairs)
		}),
	}
	cmd.Flags().IntVar(&minFrequency, "min-frequency", 1, "minimum co-occurrence count")
	return cmd
}

func newBoughtWithCmd(opts *rootOptions) *cobra.Command {
	var (
		minFrequency int
		limit        int
		depth        int
	)
	cmd := &cobra.Command{
		Use:   "bought-with ITEM",
		Short: "Print the items most often bought with ITEM",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(cmd *cobra.Command, a *app.App, args []string) error {
			var (
				assocs []model.Association
				err    error
			)
			if cmd.Flags().Changed("max-depth") {
				assocs, err = a.Basket.TopAssociations(args[0], limit, depth)
			} else {
				assocs, err = a.Basket.ItemsBoughtWith(args[0], minFrequency, limit)
			}
			if err != nil {
				return err
			}

			w := table(cmd.OutOrStdout())
			fmt.Fprintln(w, "ITEM\tTIMES")
			for _, assoc := range assocs {
				fmt.Fprintf(w, "%s\t%d\n", assoc.Item, assoc.Weight)
			}
			return w.Flush()
		}),
	}
	cmd.Flags().IntVar(&minFrequency, "min-frequency", 1, "minimum co-occurrence count")
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum number of items, 0 for all")
	cmd.Flags().IntVar(&depth, "max-depth", 1, "rank direct neighbors found within this many hops")
	return cmd
}

func newTraverseCmd(opts *rootOptions) *cobra.Command {
	var (
		mode  string
		depth int
	)
	cmd := &cobra.Command{
		Use:   "traverse ITEM",
		Short: "Print the items reachable from ITEM",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(cmd *cobra.Command, a *app.App, args []string) error {
			w := table(cmd.OutOrStdout())
			switch mode {
			case "bfs":
				depths, err := a.Basket.BFS(args[0], depth)
				if err != nil {
					return err
				}
				items := make([]string, 0, len(depths))
				for item := range depths {
					items = append(items, item)
				}
				sort.Slice(items, func(i, j int) bool {
					if depths[items[i]] != depths[items[j]] {
						return depths[items[i]] < depths[items[j]]
					}
					return items[i] < items[j]
				})
				fmt.Fprintln(w, "ITEM\tDEPTH")
				for _, item := range items {
					fmt.Fprintf(w, "%s\t%d\n", item, depths[item])
				}
			case "dfs":
				order, err := a.Basket.DFS(args[0], depth)
				if err != nil {
					return err
				}
				fmt.Fprintln(w, "STEP\tITEM")
				for i, item := range order {
					fmt.Fprintf(w, "%d\t%s\n", i+1, item)
				}
			default:
				return fmt.Errorf("unknown traversal mode %q, want bfs or dfs", mode)
			}
			return w.Flush()
		}),
	}
	cmd.Flags().StringVar(&mode, "mode", "bfs", "bfs or dfs")
	cmd.Flags().IntVar(&depth, "max-depth", search.Unbounded, "maximum hops, -1 for no limit")
	return cmd
}

func newCommunitiesCmd(opts *rootOptions) *cobra.Command {
	var algorithm string
	cmd := &cobra.Command{
		Use:   "communities",
		Short: "Print groups of items that are bought together",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, a *app.App, _ []string) error {
			communities, err := a.Basket.Communities(algorithm)
			if err != nil {
				return err
			}
			w := table(cmd.OutOrStdout())
			fmt.Fprintln(w, "ID\tWEIGHT\tITEMS")
			for _, c := range communities {
				fmt.Fprintf(w, "%d\t%d\t%s\n", c.ID, c.InternalWeight, strings.Join(c.Items, ", "))
			}
			return w.Flush()
		}),
	}
	cmd.Flags().StringVar(&algorithm, "algorithm", "", "lpa or components (default from config)")
	return cmd
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Write the graph to Memgraph",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, a *app.App, _ []string) error {
			if err := a.Basket.BuildIndices(cmd.Context()); err != nil {
				return err
			}
			res, err := a.Basket.Export(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported snapshot %s: %d items, %d pairs in %d batches\n",
				res.SnapshotID, res.Items, res.Pairs, res.Batches)
			return nil
		}),
	}
}

func table(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
}

func printBundles(out io.Writer, bundles []model.Bundle) error {
	w := table(out)
	fmt.Fprintln(w, "FIRST\tSECOND\tTIMES")
	for _, b := range bundles {
		fmt.Fprintf(w, "%s\t%s\t%d\n", b.First, b.Second, b.Frequency)
	}
	return w.Flush()
}
