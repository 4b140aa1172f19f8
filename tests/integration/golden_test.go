package integration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"msbuild-packages/internal/app"
	"msbuild-packages/internal/types"
	"msbuild-packages/tests/testutil"
)

func scanFixtures(t *testing.T, outDir string) app.ScanResult {
	t.Helper()
	workspace := testutil.FixtureWorkspace(t)
	svc, err := app.NewService(app.Config{StopDir: workspace})
	require.NoError(t, err)
	result, err := svc.Scan(t.Context(), app.ScanRequest{
		Workspace: []string{workspace},
		OutputDir: outDir,
	})
	require.NoError(t, err)
	return result
}

// TestGoldenScan scans the fixture workspace and compares the text report
// against a committed golden file. Absolute paths are rewritten relative
// to the workspace so the file is stable across machines. If the golden
// file does not exist yet it is written so it can be committed.
//
// To update the golden file after an intentional change, delete the
// testdata/golden/ directory and re-run the test.
func TestGoldenScan(t *testing.T) {
	root := testutil.RepoRoot(t)
	workspace := testutil.FixtureWorkspace(t)
	goldenPath := filepath.Join(root, "tests", "integration", "testdata", "golden", "packages.txt")

	result := scanFixtures(t, t.TempDir())
	content, err := os.ReadFile(result.ReportPath)
	require.NoError(t, err)
	actual := filepath.ToSlash(strings.ReplaceAll(string(content), workspace, "<workspace>"))

	if _, statErr := os.Stat(goldenPath); os.IsNotExist(statErr) {
		require.NoError(t, os.MkdirAll(filepath.Dir(goldenPath), 0o755))
		require.NoError(t, os.WriteFile(goldenPath, []byte(actual), 0o644))
		t.Logf("golden file written: %s (commit it)", goldenPath)
		return
	}
	expected, err := os.ReadFile(goldenPath)
	require.NoError(t, err)
	assert.Equal(t, string(expected), actual,
		"golden mismatch -- delete testdata/golden/ and re-run to regenerate")
}

// TestGoldenScanStructure verifies the resolved references of the fixture
// workspace independent of report formatting.
func TestGoldenScanStructure(t *testing.T) {
	workspace := testutil.FixtureWorkspace(t)
	result := scanFixtures(t, "")

	assert.Equal(t, 4, result.Projects)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 6, result.References)

	byProject := map[string]types.ProjectScan{}
	for _, scan := range result.Report.Projects {
		rel, err := filepath.Rel(workspace, scan.Path)
		require.NoError(t, err)
		byProject[filepath.ToSlash(rel)] = scan
	}

	expected := map[string][]types.PackageReference{
		"src/Api/Api.csproj": {
			{ID: "Serilog", Version: "3.1.1"},
			{ID: "Dapper", Version: "2.1.24"},
		},
		"src/Legacy/Legacy.csproj": {
			{ID: "Newtonsoft.Json", Version: "13.0.3"},
		},
		"tests/Api.Tests/Api.Tests.csproj": {
			{ID: "Microsoft.NET.Test.Sdk", Version: "17.8.0"},
			{ID: "xunit", Version: "2.6.2"},
			{ID: "FluentAssertions", Version: "6.11.0"},
		},
	}
	for rel, refs := range expected {
		t.Run(rel, func(t *testing.T) {
			scan, ok := byProject[rel]
			require.True(t, ok, "project not scanned: %s", rel)
			assert.False(t, scan.Failed())
			if diff := cmp.Diff(refs, scan.References); diff != "" {
				t.Fatalf("unexpected references (-want +got):\n%s", diff)
			}
		})
	}

	t.Run("doctype project is rejected", func(t *testing.T) {
		scan, ok := byProject["src/Broken/Broken.csproj"]
		require.True(t, ok)
		assert.True(t, scan.Failed())
		assert.Empty(t, scan.References)
		assert.NotContains(t, scan.Error, "root:")
	})
}
