package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var signalsCmd = &cobra.Command{
	Use:   "signals <workflow.py>",
	Short: "Discover peer workflows connected through external signals",
	Long: `Index signal handlers under the search paths, connect every external
signal sent by the entry workflow to its receivers, and print the peer signal graph.
Signals without a matching handler are reported on stderr.

Examples:
  temporalgraph signals workflows/order.py -s workflows`,
	Args: cobra.ExactArgs(1),
	RunE: runSignals,
}

func init() {
	rootCmd.AddCommand(signalsCmd)
}

func runSignals(cmd *cobra.Command, args []string) error {
	graph, err := newAnalyzer().AnalyzeSignalFlow(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	for _, unresolved := range graph.UnresolvedSignals {
		fmt.Fprintf(cmd.ErrOrStderr(), "unresolved signal %q sent by %s at line %d\n", unresolved.SignalName, unresolved.SourceWorkflow, unresolved.SourceLine)
	}
	return writeYAML(cmd.OutOrStdout(), graph)
}
