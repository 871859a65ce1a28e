package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/viant/afs"
	"github.com/viant/temporalgraph/analyzer/workflow"
	"github.com/viant/temporalgraph/inspector/graph"
	"github.com/viant/temporalgraph/inspector/python"
	"github.com/viant/temporalgraph/inspector/repository"
	"github.com/viant/temporalgraph/internal/logging"
)

// Analyzer compiles Temporal python workflows into metadata, graphs and paths
type Analyzer struct {
	fs                 afs.Service
	detector           *repository.Detector
	logger             *slog.Logger
	markers            python.Markers
	startLabel         string
	endLabel           string
	maxDecisions       int
	maxPaths           int
	splitNames         bool
	suppressValidation bool
	expansion          workflow.ExpansionMode
	maxExpansionDepth  int
	maxSignalDepth     int
	searchPaths        []string
	excludes           []string
}

// New creates an analyzer
func New(opts ...Option) *Analyzer {
	ret := &Analyzer{
		fs:                afs.New(),
		logger:            logging.NewNop(),
		markers:           python.DefaultMarkers(),
		startLabel:        DefaultStartLabel,
		endLabel:          DefaultEndLabel,
		maxDecisions:      DefaultMaxDecisions,
		maxPaths:          DefaultMaxPaths,
		expansion:         workflow.ExpansionReference,
		maxExpansionDepth: DefaultMaxExpansionDepth,
		maxSignalDepth:    DefaultMaxSignalDepth,
	}
	for _, opt := range opts {
		opt(ret)
	}
	ret.detector = repository.NewDetector(ret.fs)
	return ret
}

// Analyze analyzes the first workflow class declared in sourcePath
func (a *Analyzer) Analyze(ctx context.Context, sourcePath string) (*workflow.WorkflowMetadata, error) {
	location, err := filepath.Abs(sourcePath)
	if err != nil {
		return nil, err
	}
	src, err := a.fs.DownloadWithURL(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sourcePath, err)
	}
	return a.AnalyzeSource(ctx, src, location, "")
}

// AnalyzeSource analyzes the workflow class (or the first one when empty) declared in src
func (a *Analyzer) AnalyzeSource(ctx context.Context, src []byte, path string, class string) (*workflow.WorkflowMetadata, error) {
	module, err := python.Parse(ctx, path, src)
	if err != nil {
		return nil, err
	}
	return a.analyzeModule(ctx, module, class)
}

func (a *Analyzer) analyzeModule(ctx context.Context, module *python.Module, class string) (*workflow.WorkflowMetadata, error) {
	if err := module.SyntaxError(); err != nil {
		return nil, err
	}
	definition := module.Workflow(class)
	if definition == nil {
		if class == "" {
			return nil, fmt.Errorf("no @workflow.defn class found in %s", module.Path)
		}
		return nil, &workflow.WorkflowNotFoundError{Name: class, Searched: []string{module.Path}}
	}
	return a.analyzeClass(ctx, module, definition)
}

func (a *Analyzer) analyzeClass(ctx context.Context, module *python.Module, class *python.Class) (*workflow.WorkflowMetadata, error) {
	body := class.Body()
	if body == nil {
		return nil, &workflow.ParseError{File: module.Path, Line: class.Line, Err: fmt.Errorf("workflow %s has no body", class.Name)}
	}
	activities := python.NewActivityDetector(module.Path)
	decisions := python.NewDecisionDetector(module.Path, a.markers)
	children := python.NewChildWorkflowDetector(module.Path)
	children.SetWorkflow(class.DefnName)
	signals := python.NewExternalSignalDetector(module.Path)
	signals.SetWorkflow(class.DefnName)
	for _, detector := range []python.Detector{activities, decisions, children, signals} {
		if err := detector.Detect(body, module.Src); err != nil {
			return nil, err
		}
	}
	handlers := python.NewSignalHandlerDetector(module.Path)
	handlers.SetWorkflow(class.Name)
	if err := handlers.Detect(class.Node, module.Src); err != nil {
		return nil, err
	}

	fingerprint, err := graph.Fingerprint(module.Src, class.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to fingerprint %s: %w", class.Name, err)
	}
	ret := &workflow.WorkflowMetadata{
		WorkflowClass:   class.Name,
		WorkflowName:    class.DefnName,
		RunMethod:       class.RunMethod,
		SourceFile:      module.Path,
		Project:         a.projectName(ctx, module.Path),
		Fingerprint:     fingerprint,
		Activities:      activities.Activities(),
		Decisions:       decisions.Decisions(),
		SignalHandlers:  handlers.Handlers(),
		ExternalSignals: signals.Signals(),
		ChildCalls:      children.Calls(),
	}
	if !a.suppressValidation {
		ret.Findings = validate(ret, body)
		for _, finding := range ret.Findings {
			a.logger.Debug("validation finding", "workflow", ret.WorkflowName, "finding", finding.String())
		}
	}
	return ret, nil
}

// projectName returns the name of the project hosting path, empty when path is not on disk
func (a *Analyzer) projectName(ctx context.Context, path string) string {
	project, err := a.detector.DetectProject(ctx, path)
	if err != nil {
		return ""
	}
	return project.Name
}
