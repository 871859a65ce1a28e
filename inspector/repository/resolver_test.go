package repository

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/temporalgraph/analyzer/workflow"
)

func workflowSource(decorator, class string) string {
	return fmt.Sprintf(`from temporalio import workflow


%s
class %s:
    @workflow.run
    async def run(self):
        return None
`, decorator, class)
}

func newProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	order := `from temporalio import workflow
from .payment import PaymentWorkflow
from app.shipping.flow import ShippingWorkflow as Shipping


@workflow.defn
class OrderWorkflow:
    @workflow.run
    async def run(self):
        await workflow.execute_child_workflow(PaymentWorkflow.run)
        await workflow.execute_child_workflow(Shipping.run)
        await workflow.execute_child_workflow(LocalWorkflow.run)


@workflow.defn
class LocalWorkflow:
    @workflow.run
    async def run(self):
        return None
`
	writeFiles(t, root, map[string]string{
		"pyproject.toml":           "[project]\nname = \"orders\"\n",
		"app/workflows/order.py":   order,
		"app/workflows/payment.py": workflowSource("@workflow.defn", "PaymentWorkflow"),
		"app/shipping/flow.py":     workflowSource("@workflow.defn", "ShippingWorkflow"),
		"app/misc/audit.py":        workflowSource(`@workflow.defn(name="audit")`, "AuditWorkflow"),
		".venv/lib/hidden.py":      workflowSource("@workflow.defn", "HiddenWorkflow"),
		"broken/bad.py":            "def broken(:\n",
		"app/misc/README.md":       "not python",
	})
	return root
}

func TestResolver_Resolve(t *testing.T) {
	root := newProject(t)
	ctx := context.Background()
	resolver := NewResolver(nil, []string{root})
	referrer, err := resolver.Module(ctx, filepath.Join(root, "app/workflows/order.py"))
	require.NoError(t, err)

	testCases := []struct {
		description string
		name        string
		expectClass string
		expectFile  string
		expectTier  Tier
	}{
		{description: "same file", name: "LocalWorkflow", expectClass: "LocalWorkflow", expectFile: "app/workflows/order.py", expectTier: TierSameFile},
		{description: "relative import", name: "PaymentWorkflow", expectClass: "PaymentWorkflow", expectFile: "app/workflows/payment.py", expectTier: TierImport},
		{description: "absolute aliased import", name: "Shipping", expectClass: "ShippingWorkflow", expectFile: "app/shipping/flow.py", expectTier: TierImport},
		{description: "scan by class name", name: "AuditWorkflow", expectClass: "AuditWorkflow", expectFile: "app/misc/audit.py", expectTier: TierScan},
		{description: "scan by registered name", name: "audit", expectClass: "AuditWorkflow", expectFile: "app/misc/audit.py", expectTier: TierScan},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			resolution, err := resolver.Resolve(ctx, testCase.name, referrer)
			require.NoError(t, err)
			assert.Equal(t, testCase.expectClass, resolution.Class.Name)
			assert.Equal(t, filepath.Join(root, filepath.FromSlash(testCase.expectFile)), resolution.Module.Path)
			assert.Equal(t, testCase.expectTier, resolution.Tier)
		})
	}
}

func TestResolver_NotFound(t *testing.T) {
	root := newProject(t)
	ctx := context.Background()
	resolver := NewResolver(nil, []string{root})
	referrer, err := resolver.Module(ctx, filepath.Join(root, "app/workflows/order.py"))
	require.NoError(t, err)

	_, err = resolver.Resolve(ctx, "HiddenWorkflow", referrer)
	require.Error(t, err)
	var notFound *workflow.WorkflowNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "HiddenWorkflow", notFound.Name)
	assert.Equal(t, referrer.Path, notFound.Referrer)
	assert.Equal(t, []string{root}, notFound.Searched)
}

func TestResolver_Files(t *testing.T) {
	root := newProject(t)
	ctx := context.Background()

	files, err := NewResolver(nil, []string{root, root}).Files(ctx)
	require.NoError(t, err)
	var relative []string
	for _, file := range files {
		rel, err := filepath.Rel(root, file)
		require.NoError(t, err)
		relative = append(relative, filepath.ToSlash(rel))
	}
	assert.Equal(t, []string{
		"app/misc/audit.py",
		"app/shipping/flow.py",
		"app/workflows/order.py",
		"app/workflows/payment.py",
		"broken/bad.py",
	}, relative)

	files, err = NewResolver(nil, []string{root}, WithExcludes("broken", "app/misc/**")).Files(ctx)
	require.NoError(t, err)
	assert.Len(t, files, 3)
}

func TestResolver_Lenient(t *testing.T) {
	root := newProject(t)
	resolver := NewResolver(nil, []string{root})
	assert.Nil(t, resolver.Lenient(context.Background(), filepath.Join(root, "broken/bad.py")))
	assert.Nil(t, resolver.Lenient(context.Background(), filepath.Join(root, "missing.py")))
	assert.NotNil(t, resolver.Lenient(context.Background(), filepath.Join(root, "app/misc/audit.py")))
}

func TestTier_String(t *testing.T) {
	assert.Equal(t, "same-file", TierSameFile.String())
	assert.Equal(t, "import", TierImport.String())
	assert.Equal(t, "scan", TierScan.String())
	assert.Equal(t, "unknown", Tier(0).String())
}
