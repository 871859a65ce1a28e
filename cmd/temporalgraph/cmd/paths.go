package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/viant/afs"
	"github.com/viant/temporalgraph/analyzer/workflow"
)

var pathsClass string

var pathsCmd = &cobra.Command{
	Use:   "paths <workflow.py>",
	Short: "Enumerate execution paths of one workflow",
	Long: `Enumerate every execution path of a workflow. Child workflow calls are
drawn as single steps; use callgraph --paths to expand them.

Examples:
  temporalgraph paths workflows/withdraw.py
  temporalgraph paths workflows/withdraw.py -f yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runPaths,
}

func init() {
	pathsCmd.Flags().StringVar(&pathsClass, "class", "", "workflow class to analyze (default: first @workflow.defn class)")
	rootCmd.AddCommand(pathsCmd)
}

func runPaths(cmd *cobra.Command, args []string) error {
	meta, err := analyzeFile(cmd, args[0], pathsClass)
	if err != nil {
		return err
	}
	set, err := newAnalyzer().Paths(meta)
	if err != nil {
		return err
	}
	return emitPaths(cmd.OutOrStdout(), set)
}

func analyzeFile(cmd *cobra.Command, location string, class string) (*workflow.WorkflowMetadata, error) {
	srv := newAnalyzer()
	if class == "" {
		return srv.Analyze(cmd.Context(), location)
	}
	location, err := filepath.Abs(location)
	if err != nil {
		return nil, err
	}
	src, err := afs.New().DownloadWithURL(cmd.Context(), location)
	if err != nil {
		return nil, err
	}
	return srv.AnalyzeSource(cmd.Context(), src, location, class)
}
