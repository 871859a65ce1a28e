package analyzer

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/temporalgraph/analyzer/workflow"
)

func childNames(graph *workflow.WorkflowCallGraph) []string {
	var ret []string
	for name := range graph.ChildWorkflows {
		ret = append(ret, name)
	}
	sort.Strings(ret)
	return ret
}

func TestAnalyzer_AnalyzeCallGraph_Cycle(t *testing.T) {
	graph, err := New().AnalyzeCallGraph(context.Background(), testdata("cycle", "a.py"))
	require.NoError(t, err)

	assert.Equal(t, "AWorkflow", graph.RootWorkflow.WorkflowName)
	assert.Equal(t, []string{"BWorkflow"}, childNames(graph))
	assert.Equal(t, []workflow.Edge{{From: "AWorkflow", To: "BWorkflow"}, {From: "BWorkflow", To: "AWorkflow"}}, graph.CallRelationships)
	assert.Equal(t, []workflow.Edge{{From: "BWorkflow", To: "AWorkflow"}}, graph.Cycles)
	assert.Equal(t, 2, graph.TotalWorkflows)
	assert.Len(t, graph.AllChildCalls, 2)
	assert.Equal(t, []string{"AWorkflow", "BWorkflow"}, graph.Names())

	set, err := New(WithExpansion(workflow.ExpansionInline)).CallGraphPaths(graph)
	require.NoError(t, err)
	require.Len(t, set.Paths, 1)
	assert.Equal(t, []string{"start", "StartA", "BWorkflow.StartB", "BWorkflow.child_AWorkflow_9", "end"}, set.Paths[0].NodeIDs())
}

func TestAnalyzer_AnalyzeCallGraph_CycleAtDepthLimit(t *testing.T) {
	var testCases = []struct {
		description   string
		depth         int
		relationships []workflow.Edge
		cycles        []workflow.Edge
		depthLimited  []string
	}{
		{
			description:   "back edge at the limit is a cycle",
			depth:         1,
			relationships: []workflow.Edge{{From: "AWorkflow", To: "BWorkflow"}, {From: "BWorkflow", To: "AWorkflow"}},
			cycles:        []workflow.Edge{{From: "BWorkflow", To: "AWorkflow"}},
		},
		{
			description:  "unvisited child at the limit",
			depth:        0,
			depthLimited: []string{"BWorkflow"},
		},
	}
	for _, testCase := range testCases {
		graph, err := New(WithMaxExpansionDepth(testCase.depth)).AnalyzeCallGraph(context.Background(), testdata("cycle", "a.py"))
		require.NoError(t, err, testCase.description)
		assert.Equal(t, testCase.relationships, graph.CallRelationships, testCase.description)
		assert.Equal(t, testCase.cycles, graph.Cycles, testCase.description)
		assert.Equal(t, testCase.depthLimited, graph.DepthLimited, testCase.description)
	}
}

func TestAnalyzer_AnalyzeCallGraph_Depth(t *testing.T) {
	ctx := context.Background()
	graph, err := New(WithMaxExpansionDepth(2)).AnalyzeCallGraph(ctx, testdata("chain", "a.py"))
	require.NoError(t, err)
	assert.Equal(t, []string{"BWorkflow", "CWorkflow"}, childNames(graph))
	assert.Equal(t, []string{"DWorkflow"}, graph.DepthLimited)
	assert.Equal(t, 3, graph.TotalWorkflows)
	assert.True(t, graph.HasEdge("AWorkflow", "BWorkflow"))
	assert.True(t, graph.HasEdge("BWorkflow", "CWorkflow"))
	assert.False(t, graph.HasEdge("CWorkflow", "DWorkflow"))
	assert.Len(t, graph.AllChildCalls, 3)

	testCases := []struct {
		description string
		mode        workflow.ExpansionMode
		expect      []string
		workflows   []string
	}{
		{
			description: "reference",
			mode:        workflow.ExpansionReference,
			expect:      []string{"start", "StepA", "child_BWorkflow_9", "end"},
			workflows:   []string{"AWorkflow", "BWorkflow"},
		},
		{
			description: "inline",
			mode:        workflow.ExpansionInline,
			expect:      []string{"start", "StepA", "BWorkflow.StepB", "BWorkflow.CWorkflow.StepC", "BWorkflow.CWorkflow.child_DWorkflow_9", "end"},
			workflows:   []string{"AWorkflow", "BWorkflow", "CWorkflow"},
		},
	}
	for _, testCase := range testCases {
		set, err := New(WithExpansion(testCase.mode)).CallGraphPaths(graph)
		require.NoError(t, err, testCase.description)
		require.Len(t, set.Paths, 1, testCase.description)
		assert.Equal(t, testCase.expect, set.Paths[0].NodeIDs(), testCase.description)
		assert.Equal(t, testCase.workflows, set.Paths[0].Workflows, testCase.description)
	}

	graph, err = New(WithMaxExpansionDepth(0)).AnalyzeCallGraph(ctx, testdata("chain", "a.py"))
	require.NoError(t, err)
	assert.Empty(t, graph.ChildWorkflows)
	assert.Equal(t, []string{"BWorkflow"}, graph.DepthLimited)
	assert.Equal(t, 1, graph.TotalWorkflows)
}

func TestAnalyzer_AnalyzeCallGraph_NotFound(t *testing.T) {
	entry := testdata("chain", "c.py")
	_, err := New().AnalyzeCallGraph(context.Background(), entry, testdata("cycle"))
	var notFound *workflow.WorkflowNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "DWorkflow", notFound.Name)
	root, _ := filepath.Abs(testdata("cycle"))
	assert.Equal(t, []string{root}, notFound.Searched)
}

func TestAnalyzer_CallGraphPaths_InvalidMode(t *testing.T) {
	graph, err := New().AnalyzeCallGraph(context.Background(), testdata("cycle", "a.py"))
	require.NoError(t, err)
	_, err = New(WithExpansion("flat")).CallGraphPaths(graph)
	assert.Error(t, err)
	_, err = New().CallGraphPaths(nil)
	assert.Error(t, err)
}
