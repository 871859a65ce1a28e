package cmd

import (
	"github.com/spf13/cobra"
	"github.com/viant/temporalgraph/analyzer"
	"github.com/viant/temporalgraph/analyzer/workflow"
)

var (
	callGraphPaths     bool
	callGraphExpansion string
	callGraphDepth     int
)

var callGraphCmd = &cobra.Command{
	Use:   "callgraph <workflow.py>",
	Short: "Discover child workflows reachable from an entry workflow",
	Long: `Resolve child workflow calls across files, recursively, and print the call graph.
With --paths, enumerate paths across the graph using the selected expansion mode.

Examples:
  temporalgraph callgraph workflows/order.py -s workflows
  temporalgraph callgraph workflows/order.py --paths --expansion inline`,
	Args: cobra.ExactArgs(1),
	RunE: runCallGraph,
}

func init() {
	callGraphCmd.Flags().BoolVar(&callGraphPaths, "paths", false, "emit paths instead of the graph")
	callGraphCmd.Flags().StringVar(&callGraphExpansion, "expansion", "", "child workflow expansion: reference, inline or subgraph")
	callGraphCmd.Flags().IntVar(&callGraphDepth, "depth", -1, "max expansion depth (default from config)")
	rootCmd.AddCommand(callGraphCmd)
}

func runCallGraph(cmd *cobra.Command, args []string) error {
	var opts []analyzer.Option
	if callGraphExpansion != "" {
		opts = append(opts, analyzer.WithExpansion(workflow.ExpansionMode(callGraphExpansion)))
	}
	if callGraphDepth >= 0 {
		opts = append(opts, analyzer.WithMaxExpansionDepth(callGraphDepth))
	}
	srv := newAnalyzer(opts...)
	graph, err := srv.AnalyzeCallGraph(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if !callGraphPaths {
		return writeYAML(cmd.OutOrStdout(), graph)
	}
	set, err := srv.CallGraphPaths(graph)
	if err != nil {
		return err
	}
	return emitPaths(cmd.OutOrStdout(), set)
}
