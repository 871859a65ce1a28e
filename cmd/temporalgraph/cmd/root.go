package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/viant/temporalgraph/analyzer"
	"github.com/viant/temporalgraph/analyzer/workflow"
	"github.com/viant/temporalgraph/inspector/graph"
	"github.com/viant/temporalgraph/internal/config"
	"github.com/viant/temporalgraph/internal/logging"
	"gopkg.in/yaml.v3"
)

var (
	// Version is set at build time via ldflags
	Version = "dev"

	cfgFile     string
	verbose     bool
	format      string
	searchPaths []string

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "temporalgraph",
	Short: "Static execution path analysis for Temporal python workflows",
	Long: `temporalgraph parses python Temporal workflow definitions without running them
and enumerates every execution path through decision points, signal waits,
child workflows and external signals.

Decisions are marked in workflow code with to_decision(expr, "Name") and
signal waits with wait_condition(predicate, timeout, "Name").`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".temporalgraph.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&format, "format", "f", "", "output format: mermaid or yaml (default from config)")
	rootCmd.PersistentFlags().StringSliceVarP(&searchPaths, "search-path", "s", nil, "directories searched for referenced workflows")
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("temporalgraph {{.Version}}\n")
}

func loadConfig(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if format != "" {
		loaded.Format = format
	}
	if len(searchPaths) > 0 {
		loaded.SearchPaths = searchPaths
	}
	if err = loaded.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	level := logging.ParseLevel(loaded.Logging.Level)
	if verbose {
		level = slog.LevelDebug
	}
	cfg = loaded
	logger = logging.NewWithWriter(cmd.ErrOrStderr(), loaded.Logging.Format, level)
	return nil
}

func newAnalyzer(opts ...analyzer.Option) *analyzer.Analyzer {
	return analyzer.New(append(cfg.Options(logger), opts...)...)
}

func writeYAML(w io.Writer, value interface{}) error {
	data, err := yaml.Marshal(value)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func emitPaths(w io.Writer, set *workflow.PathSet) error {
	emitter, err := graph.NewEmitter(cfg.Format)
	if err != nil {
		return err
	}
	data, err := emitter.Emit(set)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
