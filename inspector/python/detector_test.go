package python

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/temporalgraph/analyzer/workflow"
)

const withdrawWorkflow = `from temporalio import workflow

from markers import to_decision


@workflow.defn
class WithdrawWorkflow:
    @workflow.run
    async def run(self, request):
        await workflow.execute_activity("Withdraw", request)
        if await to_decision(request.currency != "AUD", "NeedToConvert"):
            await workflow.execute_activity("CurrencyConvert", request)
        if not await to_decision(request.tfn is not None, "IsTFNKnown"):
            await workflow.execute_activity(notify_ato, request)
        await workflow.execute_activity("Deposit", request)
`

func runBody(t *testing.T, code string) (*Module, *Class) {
	t.Helper()
	module := parse(t, code)
	class := module.Workflow("")
	require.NotNil(t, class)
	return module, class
}

func TestActivityDetector_Detect(t *testing.T) {
	var testCases = []struct {
		description string
		code        string
		expect      []string
		lines       []int
	}{
		{
			description: "string literal, identifier and attribute references",
			code: `from temporalio import workflow

@workflow.defn
class Sample:
    @workflow.run
    async def run(self):
        await workflow.execute_activity("ChargeCard", start_to_close_timeout=timeout)
        await workflow.execute_activity(reserve_stock, order)
        await workflow.execute_activity_method(Shipping.dispatch, order)
        handle = workflow.start_activity(activity=send_email)
        await workflow.execute_local_activity(audit)
        await workflow.execute_child_workflow(Child.run)
        await other.execute(validate)
`,
			expect: []string{"ChargeCard", "reserve_stock", "dispatch", "send_email", "audit"},
			lines:  []int{7, 8, 9, 10, 11},
		},
		{
			description: "no activities",
			code: `from temporalio import workflow

@workflow.defn
class Empty:
    @workflow.run
    async def run(self):
        return None
`,
		},
	}
	for _, testCase := range testCases {
		module, class := runBody(t, testCase.code)
		detector := NewActivityDetector(module.Path)
		require.NoError(t, detector.Detect(class.Body(), module.Src), testCase.description)
		var names []string
		var lines []int
		for i, activity := range detector.Activities() {
			names = append(names, activity.Name)
			lines = append(lines, activity.Line)
			assert.Equal(t, activity.Name, activity.NodeID, testCase.description)
			assert.Equal(t, i, activity.Seq, testCase.description)
		}
		assert.Equal(t, testCase.expect, names, testCase.description)
		assert.Equal(t, testCase.lines, lines, testCase.description)
	}
}

func TestActivityDetector_MissingArgument(t *testing.T) {
	module, class := runBody(t, `from temporalio import workflow

@workflow.defn
class Sample:
    @workflow.run
    async def run(self):
        await workflow.execute_activity()
`)
	err := NewActivityDetector(module.Path).Detect(class.Body(), module.Src)
	var markerErr *workflow.MarkerError
	require.True(t, errors.As(err, &markerErr))
	assert.Equal(t, 7, markerErr.Line)
}

func TestDecisionDetector_Regions(t *testing.T) {
	module, class := runBody(t, withdrawWorkflow)
	activities := NewActivityDetector(module.Path)
	require.NoError(t, activities.Detect(class.Body(), module.Src))
	detector := NewDecisionDetector(module.Path, DefaultMarkers())
	require.NoError(t, detector.Detect(class.Body(), module.Src))

	decisions := detector.Decisions()
	require.Len(t, decisions, 2)
	assert.Equal(t, "NeedToConvert", decisions[0].Name)
	assert.Equal(t, "d0", decisions[0].NodeID)
	assert.Equal(t, 11, decisions[0].Line)
	assert.Equal(t, `request.currency != "AUD"`, decisions[0].Expression)
	assert.Equal(t, "IsTFNKnown", decisions[1].Name)
	assert.Equal(t, "d1", decisions[1].NodeID)

	byName := map[string]*workflow.Activity{}
	for _, activity := range activities.Activities() {
		byName[activity.Name] = activity
	}
	convert, notify, deposit := byName["CurrencyConvert"], byName["notify_ato"], byName["Deposit"]

	outcome, ok := decisions[0].Branch(convert.Pos)
	assert.True(t, ok)
	assert.True(t, outcome)
	_, ok = decisions[0].Branch(deposit.Pos)
	assert.False(t, ok)

	outcome, ok = decisions[1].Branch(notify.Pos)
	assert.True(t, ok)
	assert.False(t, outcome, "negated condition swaps branches")
	assert.False(t, decisions[1].Admits(notify.Pos, true))
	assert.True(t, decisions[1].Admits(notify.Pos, false))
	assert.True(t, decisions[1].Admits(deposit.Pos, true))
}

func TestDecisionDetector_Shapes(t *testing.T) {
	module, class := runBody(t, `from temporalio import workflow

@workflow.defn
class Shapes:
    @workflow.run
    async def run(self, order):
        approved = await to_decision(order.total < 100, "AutoApprove")
        if approved:
            await workflow.execute_activity("Approve", order)
        else:
            await workflow.execute_activity("Review", order)
        if order.express:
            pass
        elif (ok := await decisions.to_decision(order.paid, "IsPaid")):
            await workflow.execute_activity("Ship", order)
        elif await to_decision(order.retry, name="ShouldRetry"):
            await workflow.execute_activity("Retry", order)
        else:
            await workflow.execute_activity("Cancel", order)
        carrier = await to_decision("air" if order.urgent else "ground", "Carrier")
        await (workflow.execute_activity("Fast") if await to_decision(order.vip, "IsVIP") else workflow.execute_activity("Slow"))
        if await workflow.wait_condition(lambda: self.confirmed, timeout=60, name="Confirmation"):
            await workflow.execute_activity("Confirm", order)
        await workflow.wait_condition(lambda: self.done)
`)
	activities := NewActivityDetector(module.Path)
	require.NoError(t, activities.Detect(class.Body(), module.Src))
	detector := NewDecisionDetector(module.Path, DefaultMarkers())
	require.NoError(t, detector.Detect(class.Body(), module.Src))

	decisions := detector.Decisions()
	var names []string
	for i, decision := range decisions {
		names = append(names, decision.Name)
		assert.Equal(t, i, decision.ID)
	}
	require.Equal(t, []string{"AutoApprove", "IsPaid", "ShouldRetry", "Carrier", "IsVIP", "Confirmation"}, names)

	confirmation := decisions[5]
	assert.Equal(t, workflow.KindSignalPoint, confirmation.Kind)
	assert.Equal(t, "s5", confirmation.NodeID)
	assert.Equal(t, workflow.DefaultSignalTrueLabel, confirmation.Label(true))
	assert.Equal(t, workflow.DefaultSignalFalseLabel, confirmation.Label(false))

	carrier := decisions[3]
	require.NotNil(t, carrier.Ternary)
	assert.Equal(t, &workflow.Ternary{Test: "order.urgent", True: `"air"`, False: `"ground"`}, carrier.Ternary)
	assert.Empty(t, carrier.TrueBranch)

	pos := map[string]uint32{}
	for _, activity := range activities.Activities() {
		pos[activity.Name] = activity.Pos
	}
	var testCases = []struct {
		decision int
		activity string
		outcome  bool
	}{
		{decision: 0, activity: "Approve", outcome: true},
		{decision: 0, activity: "Review", outcome: false},
		{decision: 1, activity: "Ship", outcome: true},
		{decision: 1, activity: "Retry", outcome: false},
		{decision: 1, activity: "Cancel", outcome: false},
		{decision: 2, activity: "Retry", outcome: true},
		{decision: 2, activity: "Cancel", outcome: false},
		{decision: 4, activity: "Fast", outcome: true},
		{decision: 4, activity: "Slow", outcome: false},
		{decision: 5, activity: "Confirm", outcome: true},
	}
	for _, testCase := range testCases {
		outcome, ok := decisions[testCase.decision].Branch(pos[testCase.activity])
		assert.True(t, ok, "%v/%v", decisions[testCase.decision].Name, testCase.activity)
		assert.Equal(t, testCase.outcome, outcome, "%v/%v", decisions[testCase.decision].Name, testCase.activity)
	}
	_, ok := decisions[2].Branch(pos["Ship"])
	assert.False(t, ok, "elif decision does not govern earlier clauses")
}

func TestDecisionDetector_Errors(t *testing.T) {
	var testCases = []struct {
		description string
		call        string
		message     string
	}{
		{description: "missing name", call: `to_decision(order.paid)`, message: "missing decision name"},
		{description: "dynamic name", call: `to_decision(order.paid, label)`, message: "string literal"},
		{description: "f-string name", call: `to_decision(order.paid, f"Paid{n}")`, message: "string literal"},
		{description: "missing expression", call: `to_decision(name="IsPaid")`, message: "missing boolean expression"},
		{description: "signal dynamic name", call: `workflow.wait_condition(lambda: self.ok, 10, label)`, message: "signal name"},
	}
	for _, testCase := range testCases {
		module, class := runBody(t, `from temporalio import workflow

@workflow.defn
class Broken:
    @workflow.run
    async def run(self, order):
        if await `+testCase.call+`:
            pass
`)
		err := NewDecisionDetector(module.Path, DefaultMarkers()).Detect(class.Body(), module.Src)
		var markerErr *workflow.MarkerError
		require.True(t, errors.As(err, &markerErr), testCase.description)
		assert.Equal(t, 7, markerErr.Line, testCase.description)
		assert.Contains(t, markerErr.Error(), testCase.message, testCase.description)
		assert.Contains(t, markerErr.Error(), "suggestion", testCase.description)
	}
}

func TestChildWorkflowDetector_Detect(t *testing.T) {
	module, class := runBody(t, `from temporalio import workflow

@workflow.defn
class Parent:
    @workflow.run
    async def run(self, order):
        await workflow.execute_child_workflow(PaymentWorkflow.run, order, id="pay")
        handle = await workflow.start_child_workflow("ShippingWorkflow", order)
        await workflow.execute_child_workflow(workflows.AuditWorkflow.run, order)
`)
	detector := NewChildWorkflowDetector(module.Path)
	detector.SetWorkflow(class.DefnName)
	require.NoError(t, detector.Detect(class.Body(), module.Src))
	calls := detector.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, &workflow.ChildWorkflowCall{WorkflowName: "PaymentWorkflow", CallSiteLine: 7, CallID: "child_PaymentWorkflow_7", ParentWorkflow: "Parent", Pos: calls[0].Pos}, calls[0])
	assert.Equal(t, "ShippingWorkflow", calls[1].WorkflowName)
	assert.Equal(t, 1, calls[1].Seq)
	assert.Equal(t, "AuditWorkflow", calls[2].WorkflowName)
}

func TestSignalDetectors(t *testing.T) {
	module, class := runBody(t, `from temporalio import workflow

@workflow.defn
class Order:
    def __init__(self):
        self.paid = False

    @workflow.signal
    async def payment_received(self, amount):
        self.paid = True

    @workflow.signal(name="cancel-order")
    def cancel(self):
        pass

    @workflow.run
    async def run(self, order):
        shipping = workflow.get_external_workflow_handle(f"shipping-{order.id}")
        await shipping.signal("ship_order", order)
        self.audit = workflow.get_external_workflow_handle_for(AuditWorkflow.run, "audit")
        await self.audit.signal(AuditWorkflow.record, order)
        await workflow.get_external_workflow_handle(order.customer).signal("notify")
        await self.signal_all()
`)
	handlers := NewSignalHandlerDetector(module.Path)
	handlers.SetWorkflow(class.Name)
	require.NoError(t, handlers.Detect(class.Node, module.Src))
	assert.Equal(t, []*workflow.SignalHandler{
		{SignalName: "payment_received", MethodName: "payment_received", WorkflowClass: "Order", SourceLine: 9, NodeID: "sig_handler_payment_received_9"},
		{SignalName: "cancel-order", MethodName: "cancel", WorkflowClass: "Order", SourceLine: 13, NodeID: "sig_handler_cancel_order_13"},
	}, handlers.Handlers())

	sends := NewExternalSignalDetector(module.Path)
	sends.SetWorkflow(class.DefnName)
	require.NoError(t, sends.Detect(class.Body(), module.Src))
	signals := sends.Signals()
	require.Len(t, signals, 3)

	assert.Equal(t, "ship_order", signals[0].SignalName)
	assert.Equal(t, "shipping-{*}", signals[0].TargetWorkflowPattern)
	assert.Empty(t, signals[0].TargetWorkflow)
	assert.Equal(t, "ext_sig_ship_order_19", signals[0].NodeID)
	assert.Equal(t, "Order", signals[0].SourceWorkflow)

	assert.Equal(t, "record", signals[1].SignalName)
	assert.Equal(t, "audit", signals[1].TargetWorkflowPattern)
	assert.Equal(t, "AuditWorkflow", signals[1].TargetWorkflow)

	assert.Equal(t, "notify", signals[2].SignalName)
	assert.Equal(t, workflow.DynamicTarget, signals[2].TargetWorkflowPattern)
}

func TestExternalSignalDetector_InvalidName(t *testing.T) {
	module, class := runBody(t, `from temporalio import workflow

@workflow.defn
class Order:
    @workflow.run
    async def run(self, name):
        handle = workflow.get_external_workflow_handle("peer")
        await handle.signal(name)
`)
	err := NewExternalSignalDetector(module.Path).Detect(class.Body(), module.Src)
	var markerErr *workflow.MarkerError
	require.True(t, errors.As(err, &markerErr))
	assert.Equal(t, 8, markerErr.Line)
}
