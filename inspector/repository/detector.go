package repository

import (
	"context"
	"os"
	"path/filepath"
	"regexp"

	"github.com/BurntSushi/toml"
	"github.com/viant/afs"
	"golang.org/x/mod/modfile"
)

// Detector identifies project root folders, used as import bases for absolute python imports
type Detector struct {
	markers []string
	fs      afs.Service
}

// NewDetector creates a new project detector instance
func NewDetector(fs afs.Service) *Detector {
	if fs == nil {
		fs = afs.New()
	}
	return &Detector{
		fs: fs,
		markers: []string{
			"pyproject.toml",   // Python projects
			"setup.py",         // Python projects
			"setup.cfg",        // Python projects
			"requirements.txt", // Python projects
			"go.mod",           // Go projects hosting python workers
			".git",             // Generic VCS marker
		},
	}
}

// DetectProject identifies the project root for the given file path and returns project info
func (d *Detector) DetectProject(ctx context.Context, filePath string) (*Project, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return nil, err
	}
	startDir := absPath
	fileInfo, err := os.Stat(absPath)
	if err != nil {
		return nil, err
	}
	if !fileInfo.IsDir() {
		startDir = filepath.Dir(absPath)
	}

	rootPath, projectType := d.findProjectRoot(startDir)
	info := &Project{
		Type:     "unknown",
		RootPath: startDir,
	}
	if rootPath != "" {
		info.RootPath = rootPath
		info.Type = projectType
	}
	relPath, err := filepath.Rel(info.RootPath, absPath)
	if err != nil {
		relPath = filepath.Base(absPath)
	}
	info.RelativePath = filepath.ToSlash(relPath)
	info.Name = d.extractProjectName(ctx, info.RootPath, info.Type)
	return info, nil
}

// findProjectRoot searches up from the current directory for project markers
func (d *Detector) findProjectRoot(startDir string) (string, string) {
	dir := startDir
	for {
		for _, marker := range d.markers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, determineProjectType(marker)
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", ""
}

// extractProjectName attempts to extract a project name from configuration files
func (d *Detector) extractProjectName(ctx context.Context, rootPath string, projectType string) string {
	switch projectType {
	case "python":
		if name := extractPyProjectName(filepath.Join(rootPath, "pyproject.toml")); name != "" {
			return name
		}
		return extractSetupName(rootPath)
	case "go":
		return d.extractGoModuleName(ctx, filepath.Join(rootPath, "go.mod"))
	}
	return filepath.Base(rootPath)
}

func (d *Detector) extractGoModuleName(ctx context.Context, goModPath string) string {
	content, err := d.fs.DownloadWithURL(ctx, goModPath)
	if err != nil || len(content) == 0 {
		return filepath.Base(filepath.Dir(goModPath))
	}
	mod, err := modfile.ParseLax(goModPath, content, nil)
	if err != nil || mod.Module == nil {
		return filepath.Base(filepath.Dir(goModPath))
	}
	return mod.Module.Mod.Path
}

type pyProject struct {
	Project struct {
		Name string `toml:"name"`
	} `toml:"project"`
	Tool struct {
		Poetry struct {
			Name string `toml:"name"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

func extractPyProjectName(pyprojectPath string) string {
	var project pyProject
	if _, err := toml.DecodeFile(pyprojectPath, &project); err != nil {
		return ""
	}
	if project.Project.Name != "" {
		return project.Project.Name
	}
	return project.Tool.Poetry.Name
}

var setupNameRe = regexp.MustCompile(`name\s*=\s*["']([^"']+)["']`)

func extractSetupName(rootPath string) string {
	for _, candidate := range []string{"setup.py", "setup.cfg"} {
		data, err := os.ReadFile(filepath.Join(rootPath, candidate))
		if err != nil {
			continue
		}
		if matches := setupNameRe.FindSubmatch(data); len(matches) >= 2 {
			return string(matches[1])
		}
	}
	return filepath.Base(rootPath)
}

// determineProjectType identifies the type of project based on the marker file
func determineProjectType(marker string) string {
	switch marker {
	case "pyproject.toml", "setup.py", "setup.cfg", "requirements.txt":
		return "python"
	case "go.mod":
		return "go"
	case ".git":
		return "git"
	default:
		return "unknown"
	}
}
