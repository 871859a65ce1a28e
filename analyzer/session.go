package analyzer

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/viant/temporalgraph/analyzer/workflow"
	"github.com/viant/temporalgraph/inspector/python"
	"github.com/viant/temporalgraph/inspector/repository"
)

type state int

const (
	unvisited state = iota
	inProgress
	analyzed
)

// session holds per-run resolution and analysis caches; one is created for every top-level call
type session struct {
	*Analyzer
	resolver *repository.Resolver
	metadata map[string]*workflow.WorkflowMetadata
	states   map[string]state
}

func (a *Analyzer) newSession(entryPath string, searchPaths []string) (*session, string, error) {
	entry, err := filepath.Abs(entryPath)
	if err != nil {
		return nil, "", err
	}
	roots := searchPaths
	if len(roots) == 0 {
		roots = a.searchPaths
	}
	if len(roots) == 0 {
		roots = []string{filepath.Dir(entry)}
	}
	resolver := repository.NewResolver(a.fs, roots,
		repository.WithExcludes(a.excludes...),
		repository.WithLogger(a.logger))
	return &session{
		Analyzer: a,
		resolver: resolver,
		metadata: map[string]*workflow.WorkflowMetadata{},
		states:   map[string]state{},
	}, entry, nil
}

// root loads and analyzes the entry workflow
func (s *session) root(ctx context.Context, entry string) (*python.Module, *workflow.WorkflowMetadata, error) {
	module, err := s.resolver.Module(ctx, entry)
	if err != nil {
		return nil, nil, err
	}
	class := module.Workflow("")
	if class == nil {
		return nil, nil, fmt.Errorf("no @workflow.defn class found in %s", entry)
	}
	meta, err := s.analyze(ctx, module, class)
	if err != nil {
		return nil, nil, err
	}
	return module, meta, nil
}

// analyze returns cached metadata for a workflow class, analyzing it on first use
func (s *session) analyze(ctx context.Context, module *python.Module, class *python.Class) (*workflow.WorkflowMetadata, error) {
	key := module.Path + "#" + class.Name
	if meta, ok := s.metadata[key]; ok {
		return meta, nil
	}
	if err := module.SyntaxError(); err != nil {
		return nil, err
	}
	meta, err := s.analyzeClass(ctx, module, class)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze workflow %s: %w", class.Name, err)
	}
	s.metadata[key] = meta
	return meta, nil
}
