package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var analyzeClass string

var analyzeCmd = &cobra.Command{
	Use:   "analyze <workflow.py>",
	Short: "Print detected workflow metadata",
	Long: `Analyze one workflow file and print detected activities, decisions,
signal handlers, external signals, child workflow calls and validation findings as YAML.

Examples:
  temporalgraph analyze workflows/withdraw.py
  temporalgraph analyze workflows/order.py --class OrderWorkflow`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeClass, "class", "", "workflow class to analyze (default: first @workflow.defn class)")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	meta, err := analyzeFile(cmd, args[0], analyzeClass)
	if err != nil {
		return err
	}
	for _, finding := range meta.Findings {
		fmt.Fprintln(cmd.ErrOrStderr(), finding.String())
	}
	return writeYAML(cmd.OutOrStdout(), meta)
}
