package adapters

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"msbuild-packages/internal/ports"
)

var projectExtensions = map[string]struct{}{
	".csproj": {},
	".vbproj": {},
	".fsproj": {},
}

type WorkspaceAdapter struct{}

func NewWorkspaceAdapter() WorkspaceAdapter {
	return WorkspaceAdapter{}
}

func (a WorkspaceAdapter) FindProjects(root string) ([]string, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("workspace root is empty")
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("workspace root not found").
			WithCause(err)
	}
	if !info.IsDir() {
		if !IsProjectFile(root) {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("not an MSBuild project file: " + root)
		}
		return []string{root}, nil
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && shouldSkipWorkspaceDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if IsProjectFile(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to scan workspace").
			WithCause(err)
	}
	sort.Strings(paths)
	return paths, nil
}

// IsProjectFile reports whether path names a C#, VB or F# project file.
func IsProjectFile(path string) bool {
	_, ok := projectExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

func shouldSkipWorkspaceDir(name string) bool {
	switch strings.ToLower(name) {
	case "bin", "obj", ".git", ".vs", "node_modules", "packages", "testresults":
		return true
	default:
		return false
	}
}

var _ ports.WorkspacePort = WorkspaceAdapter{}
