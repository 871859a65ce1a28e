package repository

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/temporalgraph/analyzer/workflow"
	"github.com/viant/temporalgraph/inspector/python"
	"github.com/viant/temporalgraph/internal/logging"
)

// DefaultExcludes lists directories never scanned for workflow definitions
var DefaultExcludes = []string{
	"**/__pycache__",
	"**/.venv",
	"**/venv",
	"**/.git",
	"**/node_modules",
	"**/.tox",
	"**/.mypy_cache",
}

// Tier identifies how a workflow reference was resolved
type Tier int

const (
	TierSameFile Tier = iota + 1
	TierImport
	TierScan
)

func (t Tier) String() string {
	switch t {
	case TierSameFile:
		return "same-file"
	case TierImport:
		return "import"
	case TierScan:
		return "scan"
	}
	return "unknown"
}

// Resolution represents a workflow class located in a parsed module
type Resolution struct {
	Module *python.Module
	Class  *python.Class
	Tier   Tier
}

// Resolver locates workflow definitions referenced by name from another file.
// A resolver caches parsed modules and the scanned file index; create one per run.
type Resolver struct {
	fs       afs.Service
	detector *Detector
	roots    []string
	excludes []string
	logger   *slog.Logger
	modules  map[string]*python.Module
	files    []string
	indexed  bool
}

// ResolverOption represents resolver option
type ResolverOption func(r *Resolver)

// WithExcludes appends doublestar exclusion patterns, matched against paths relative to a search root
func WithExcludes(patterns ...string) ResolverOption {
	return func(r *Resolver) {
		r.excludes = append(r.excludes, patterns...)
	}
}

// WithLogger sets resolver logger
func WithLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewResolver creates a resolver searching the supplied roots
func NewResolver(fs afs.Service, roots []string, opts ...ResolverOption) *Resolver {
	if fs == nil {
		fs = afs.New()
	}
	ret := &Resolver{
		fs:       fs,
		detector: NewDetector(fs),
		excludes: append([]string{}, DefaultExcludes...),
		logger:   logging.NewNop(),
		modules:  map[string]*python.Module{},
	}
	for _, root := range roots {
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
		if !containsString(ret.roots, root) {
			ret.roots = append(ret.roots, root)
		}
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Roots returns absolute search roots
func (r *Resolver) Roots() []string {
	return r.roots
}

// Module downloads and parses a python file, caching the result by absolute path
func (r *Resolver) Module(ctx context.Context, location string) (*python.Module, error) {
	location, err := filepath.Abs(location)
	if err != nil {
		return nil, err
	}
	if module, ok := r.modules[location]; ok {
		return module, nil
	}
	src, err := r.fs.DownloadWithURL(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", location, err)
	}
	module, err := python.Parse(ctx, location, src)
	if err != nil {
		return nil, err
	}
	r.modules[location] = module
	return module, nil
}

// Add registers an already parsed module with the cache
func (r *Resolver) Add(module *python.Module) {
	if module != nil && module.Path != "" {
		r.modules[module.Path] = module
	}
}

// Resolve locates workflow name referenced from the referrer module
func (r *Resolver) Resolve(ctx context.Context, name string, referrer *python.Module) (*Resolution, error) {
	if referrer != nil {
		if class := referrer.Workflow(name); class != nil && name != "" {
			return &Resolution{Module: referrer, Class: class, Tier: TierSameFile}, nil
		}
		if resolution := r.resolveImport(ctx, name, referrer); resolution != nil {
			return resolution, nil
		}
	}
	if resolution, err := r.resolveScan(ctx, name); err != nil || resolution != nil {
		return resolution, err
	}
	ret := &workflow.WorkflowNotFoundError{Name: name, Searched: append([]string{}, r.roots...)}
	if referrer != nil {
		ret.Referrer = referrer.Path
	}
	return nil, ret
}

func (r *Resolver) resolveImport(ctx context.Context, name string, referrer *python.Module) *Resolution {
	imp := referrer.Import(name)
	if imp == nil || imp.Name == "" {
		return nil
	}
	for _, candidate := range r.importCandidates(ctx, imp, referrer.Path) {
		if ok, _ := r.fs.Exists(ctx, candidate); !ok {
			continue
		}
		module, err := r.Module(ctx, candidate)
		if err != nil {
			r.logger.Warn("skipping import candidate", "file", candidate, "error", err)
			continue
		}
		if class := module.Workflow(imp.Name); class != nil {
			return &Resolution{Module: module, Class: class, Tier: TierImport}
		}
	}
	return nil
}

// importCandidates returns files that may define the module of an import, in resolution order
func (r *Resolver) importCandidates(ctx context.Context, imp *python.Import, referrerPath string) []string {
	var parts []string
	if imp.Module != "" {
		parts = strings.Split(imp.Module, ".")
	}
	var bases []string
	if imp.Level > 0 {
		base := filepath.Dir(referrerPath)
		for i := 1; i < imp.Level; i++ {
			base = filepath.Dir(base)
		}
		bases = append(bases, base)
	} else {
		bases = append(bases, r.roots...)
		if project, err := r.detector.DetectProject(ctx, referrerPath); err == nil && !containsString(bases, project.RootPath) {
			bases = append(bases, project.RootPath)
		}
	}
	var ret []string
	for _, base := range bases {
		modulePath := filepath.Join(append([]string{base}, parts...)...)
		if len(parts) > 0 {
			ret = append(ret, modulePath+".py")
		}
		ret = append(ret, filepath.Join(modulePath, "__init__.py"))
	}
	return ret
}

func (r *Resolver) resolveScan(ctx context.Context, name string) (*Resolution, error) {
	files, err := r.Files(ctx)
	if err != nil {
		return nil, err
	}
	for _, file := range files {
		module := r.Lenient(ctx, file)
		if module == nil {
			continue
		}
		if class := module.Workflow(name); class != nil && name != "" {
			return &Resolution{Module: module, Class: class, Tier: TierScan}, nil
		}
	}
	return nil, nil
}

// Lenient returns a parsed module, or nil with a warning when the file is unreadable or has syntax errors
func (r *Resolver) Lenient(ctx context.Context, location string) *python.Module {
	module, err := r.Module(ctx, location)
	if err == nil {
		err = module.SyntaxError()
	}
	if err != nil {
		r.logger.Warn("skipping python file", "file", location, "error", err)
		return nil
	}
	return module
}

// Files returns a sorted index of python files under all search roots, honouring excludes
func (r *Resolver) Files(ctx context.Context) ([]string, error) {
	if r.indexed {
		return r.files, nil
	}
	seen := map[string]bool{}
	for _, root := range r.roots {
		if ok, _ := r.fs.Exists(ctx, root); !ok {
			r.logger.Warn("search root does not exist", "root", root)
			continue
		}
		var visitor storage.OnVisit = func(ctx context.Context, baseURL, parent string, info os.FileInfo, reader io.Reader) (bool, error) {
			relative := filepath.ToSlash(filepath.Join(parent, info.Name()))
			if r.excluded(relative) {
				return false, nil
			}
			if info.IsDir() || filepath.Ext(info.Name()) != ".py" {
				return true, nil
			}
			location := filepath.Join(root, parent, info.Name())
			if !seen[location] {
				seen[location] = true
				r.files = append(r.files, location)
			}
			return true, nil
		}
		if err := r.fs.Walk(ctx, root, visitor); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", root, err)
		}
	}
	sort.Strings(r.files)
	r.indexed = true
	return r.files, nil
}

func (r *Resolver) excluded(relative string) bool {
	for _, pattern := range r.excludes {
		if ok, _ := doublestar.Match(pattern, relative); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern+"/**", relative); ok {
			return true
		}
	}
	return false
}

func containsString(items []string, item string) bool {
	for _, candidate := range items {
		if candidate == item {
			return true
		}
	}
	return false
}
