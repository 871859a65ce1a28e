package cmd

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/temporalgraph/analyzer/workflow"
	"gopkg.in/yaml.v3"
)

var fixtures = filepath.Join("..", "..", "..", "analyzer", "testdata")

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	format, searchPaths, verbose = "", nil, false
	analyzeClass, pathsClass = "", ""
	callGraphPaths, callGraphExpansion, callGraphDepth = false, "", -1
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestPathsCommand(t *testing.T) {
	stdout, _, err := execute(t, "paths", filepath.Join(fixtures, "withdraw", "withdraw.py"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "---\ntitle: github.com/viant/temporalgraph\n---\nflowchart TD\n"))
	assert.Contains(t, stdout, `d0{"NeedToConvert"}`)
	assert.Contains(t, stdout, "d0 -->|yes| CurrencyConvert")

	stdout, _, err = execute(t, "paths", "-f", "yaml", filepath.Join(fixtures, "withdraw", "withdraw.py"))
	require.NoError(t, err)
	set := &workflow.PathSet{}
	require.NoError(t, yaml.Unmarshal([]byte(stdout), set))
	assert.Len(t, set.Paths, 4)
	assert.Equal(t, "WithdrawWorkflow", set.RootWorkflow)
	assert.Equal(t, "github.com/viant/temporalgraph", set.Project)
}

func TestAnalyzeCommand(t *testing.T) {
	stdout, stderr, err := execute(t, "analyze", filepath.Join(fixtures, "flagged", "flagged.py"))
	require.NoError(t, err)
	meta := &workflow.WorkflowMetadata{}
	require.NoError(t, yaml.Unmarshal([]byte(stdout), meta))
	assert.Equal(t, "FlaggedWorkflow", meta.WorkflowName)
	assert.Contains(t, stderr, "warning[unsupported-construct] line 10")

	_, _, err = execute(t, "analyze", "--class", "Missing", filepath.Join(fixtures, "flagged", "flagged.py"))
	assert.Error(t, err)
}

func TestCallGraphCommand(t *testing.T) {
	stdout, _, err := execute(t, "callgraph", filepath.Join(fixtures, "cycle", "a.py"))
	require.NoError(t, err)
	assert.Contains(t, stdout, "cycles:")
	assert.Contains(t, stdout, "totalWorkflows: 2")

	stdout, _, err = execute(t, "callgraph", "--paths", "--expansion", "inline", filepath.Join(fixtures, "chain", "a.py"))
	require.NoError(t, err)
	assert.Contains(t, stdout, "subgraph wf_BWorkflow")

	_, _, err = execute(t, "callgraph", "--paths", "--expansion", "flat", filepath.Join(fixtures, "chain", "a.py"))
	assert.Error(t, err)
}

func TestSignalsCommand(t *testing.T) {
	stdout, stderr, err := execute(t, "signals", filepath.Join(fixtures, "signals", "order.py"))
	require.NoError(t, err)
	assert.Contains(t, stderr, `unresolved signal "ship_order" sent by order at line 21`)
	assert.Contains(t, stdout, "payment_requested")
}

func TestUnsupportedFormat(t *testing.T) {
	_, _, err := execute(t, "paths", "-f", "dot", filepath.Join(fixtures, "withdraw", "withdraw.py"))
	assert.Error(t, err)
}
