package adapters

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestWorkspaceAdapter_FindProjects(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src", "App", "App.csproj"), "<Project/>")
	writeFile(t, filepath.Join(root, "src", "Lib", "Lib.fsproj"), "<Project/>")
	writeFile(t, filepath.Join(root, "legacy", "Old.VBPROJ"), "<Project/>")
	// Other files should be ignored.
	writeFile(t, filepath.Join(root, "src", "App", "Program.cs"), "class P {}")
	writeFile(t, filepath.Join(root, "Directory.Build.props"), "<Project/>")
	writeFile(t, filepath.Join(root, "App.sln"), "")

	adapter := NewWorkspaceAdapter()
	paths, err := adapter.FindProjects(root)
	require.NoError(t, err)

	expected := []string{
		filepath.Join(root, "legacy", "Old.VBPROJ"),
		filepath.Join(root, "src", "App", "App.csproj"),
		filepath.Join(root, "src", "Lib", "Lib.fsproj"),
	}
	if diff := cmp.Diff(expected, paths); diff != "" {
		t.Fatalf("unexpected projects (-want +got):\n%s", diff)
	}
}

func TestWorkspaceAdapter_SkipsBuildDirs(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{"bin", "obj", ".git", ".vs", "node_modules", "packages"} {
		writeFile(t, filepath.Join(root, dir, "nested", "Ignored.csproj"), "<Project/>")
	}
	writeFile(t, filepath.Join(root, "src", "Real", "Real.csproj"), "<Project/>")

	adapter := NewWorkspaceAdapter()
	paths, err := adapter.FindProjects(root)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Contains(t, paths[0], "Real.csproj")
}

func TestWorkspaceAdapter_RootInsideSkippedName(t *testing.T) {
	root := filepath.Join(t.TempDir(), "packages")
	writeFile(t, filepath.Join(root, "Tool.csproj"), "<Project/>")

	paths, err := NewWorkspaceAdapter().FindProjects(root)
	require.NoError(t, err)
	assert.Len(t, paths, 1)
}

func TestWorkspaceAdapter_ProjectFileRoot(t *testing.T) {
	project := filepath.Join(t.TempDir(), "App.csproj")
	writeFile(t, project, "<Project/>")

	paths, err := NewWorkspaceAdapter().FindProjects(project)
	require.NoError(t, err)
	assert.Equal(t, []string{project}, paths)
}

func TestWorkspaceAdapter_NonProjectFileRootErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	writeFile(t, path, "hello")

	_, err := NewWorkspaceAdapter().FindProjects(path)
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestWorkspaceAdapter_EmptyRootErrors(t *testing.T) {
	adapter := NewWorkspaceAdapter()
	_, err := adapter.FindProjects("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workspace root is empty")
}

func TestWorkspaceAdapter_NonExistentRootErrors(t *testing.T) {
	adapter := NewWorkspaceAdapter()
	_, err := adapter.FindProjects("/nonexistent/path/that/does/not/exist")
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
}

func TestWorkspaceAdapter_EmptyWorkspaceReturnsNil(t *testing.T) {
	root := t.TempDir()
	adapter := NewWorkspaceAdapter()
	paths, err := adapter.FindProjects(root)
	require.NoError(t, err)
	assert.Nil(t, paths)
}

func TestIsProjectFile(t *testing.T) {
	tests := map[string]bool{
		"App.csproj":            true,
		"App.CSPROJ":            true,
		"Lib.vbproj":            true,
		"Lib.fsproj":            true,
		"Directory.Build.props": false,
		"App.sln":               false,
		"packages.config":       false,
	}
	for name, expected := range tests {
		assert.Equal(t, expected, IsProjectFile(name), name)
	}
}
