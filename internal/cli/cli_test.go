package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------- Command tree tests ----------

func TestRootCommandHasSubcommands(t *testing.T) {
	root := newRootCommand()
	names := make([]string, 0, len(root.Commands()))
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	for _, name := range []string{"scan", "extract", "inspect"} {
		assert.Contains(t, names, name, "missing subcommand: %s", name)
	}
}

func TestRootCommandVersion(t *testing.T) {
	root := newRootCommand()
	assert.Equal(t, "dev", root.Version)
}

func TestRootCommandPersistentFlags(t *testing.T) {
	root := newRootCommand()
	for _, name := range []string{"config", "log-level", "stop-dir", "xml-max-depth", "xml-max-attrs", "xml-max-bytes"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(name), "missing flag: %s", name)
	}
}

func TestScanCommandFlags(t *testing.T) {
	cmd := newScanCommand()
	for _, name := range []string{"workspace", "output", "format", "workers", "fail-fast", "property", "sbom", "sbom-name", "sbom-created"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag: %s", name)
	}
	assert.Equal(t, "out", cmd.Flags().Lookup("output").DefValue)
	assert.Equal(t, "text", cmd.Flags().Lookup("format").DefValue)
}

func TestExtractCommandFlags(t *testing.T) {
	cmd := newExtractCommand()
	assert.NotNil(t, cmd.Flags().Lookup("project"))
	assert.NotNil(t, cmd.Flags().Lookup("property"))
}

func TestInspectCommandFlags(t *testing.T) {
	cmd := newInspectCommand()
	flag := cmd.Flags().Lookup("report")
	require.NotNil(t, flag)
	assert.Equal(t, "out/packages.txt", flag.DefValue)
}

// ---------- Command execution tests ----------

func writeProject(t *testing.T, path string, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestScanAndInspectCommands(t *testing.T) {
	workspace := t.TempDir()
	writeProject(t, filepath.Join(workspace, "App", "App.csproj"), `<Project Sdk="Microsoft.NET.Sdk">
  <ItemGroup>
    <PackageReference Include="Serilog" Version="$(SerilogVersion)" />
  </ItemGroup>
</Project>`)
	output := filepath.Join(t.TempDir(), "out")

	root := newRootCommand()
	root.SetArgs([]string{
		"scan",
		"--workspace", workspace,
		"--output", output,
		"--format", "json",
		"--property", "SerilogVersion=3.1.1",
		"--stop-dir", workspace,
		"--sbom",
		"--sbom-created", "2026-01-01",
	})
	require.NoError(t, root.ExecuteContext(context.Background()))

	content, err := os.ReadFile(filepath.Join(output, "packages.json"))
	require.NoError(t, err)
	assert.Contains(t, string(content), `"version": "3.1.1"`)
	require.FileExists(t, filepath.Join(output, "packages.sbom.json"))

	root = newRootCommand()
	root.SetArgs([]string{"inspect", "--report", filepath.Join(output, "packages.json")})
	require.NoError(t, root.ExecuteContext(context.Background()))
}

func TestExtractCommandRejectsBadProperty(t *testing.T) {
	root := newRootCommand()
	root.SetArgs([]string{"extract", "--project", "App.csproj", "--property", "=broken"})
	err := root.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Equal(t, 2, exitCodeForError(err))
	assert.Equal(t, "invalid --property value", errorMessage(err))
}

func TestExtractCommandMissingProject(t *testing.T) {
	root := newRootCommand()
	root.SetArgs([]string{"extract", "--project", filepath.Join(t.TempDir(), "Missing.csproj")})
	err := root.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Equal(t, 4, exitCodeForError(err))
}

func TestNewAppServiceRejectsNegativeLimits(t *testing.T) {
	viper.Set("xml_max_depth", -1)
	t.Cleanup(func() { viper.Set("xml_max_depth", 0) })

	_, err := newAppService()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xml max depth must be >= 0")
}

// ---------- Helper function tests ----------

func TestResolveString(t *testing.T) {
	tests := []struct {
		name     string
		cmd      *cobra.Command
		value    string
		expected string
	}{
		{
			name:     "nil cmd with value returns value",
			cmd:      nil,
			value:    "explicit",
			expected: "explicit",
		},
		{
			name:     "nil cmd empty value returns empty",
			cmd:      nil,
			value:    "",
			expected: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveString(tt.cmd, tt.value, "test_key", "test-flag")
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestResolveStrings(t *testing.T) {
	tests := []struct {
		name     string
		cmd      *cobra.Command
		values   []string
		expected []string
	}{
		{
			name:     "nil cmd with values returns values",
			cmd:      nil,
			values:   []string{"a", "b"},
			expected: []string{"a", "b"},
		},
		{
			name:     "nil cmd empty returns nil",
			cmd:      nil,
			values:   nil,
			expected: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveStrings(tt.cmd, tt.values, "test_key", "test-flag")
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestResolveBool(t *testing.T) {
	got := resolveBool(nil, true, "test_key", "test-flag")
	assert.True(t, got)

	got = resolveBool(nil, false, "test_key", "test-flag")
	assert.False(t, got)
}

func TestResolveInt(t *testing.T) {
	got := resolveInt(nil, 42, "test_key", "test-flag")
	assert.Equal(t, 42, got)
}

func TestFlagChanged(t *testing.T) {
	assert.False(t, flagChanged(nil, "anything"), "nil cmd should return false")
	assert.False(t, flagChanged(nil, ""), "nil cmd with empty name")

	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("myflag", "", "test flag")
	assert.False(t, flagChanged(cmd, "myflag"), "unchanged flag")
	assert.False(t, flagChanged(cmd, "nonexistent"), "nonexistent flag")
}

func TestFlagChangedAfterSet(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("myflag", "", "test flag")
	require.NoError(t, cmd.Flags().Set("myflag", "val"))
	assert.True(t, flagChanged(cmd, "myflag"))
}

// ---------- Exit code tests ----------

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name: "invalid argument",
			err: errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("bad input"),
			expected: 2,
		},
		{
			name: "already exists",
			err: errbuilder.New().
				WithCode(errbuilder.CodeAlreadyExists).
				WithMsg("dup"),
			expected: 2,
		},
		{
			name: "every project failed",
			err: errbuilder.New().
				WithCode(errbuilder.CodeFailedPrecondition).
				WithMsg("no project file could be parsed"),
			expected: 3,
		},
		{
			name: "permission denied",
			err: errbuilder.New().
				WithCode(errbuilder.CodePermissionDenied).
				WithMsg("nope"),
			expected: 1,
		},
		{
			name: "workspace missing",
			err: errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg("workspace root not found"),
			expected: 4,
		},
		{
			name: "internal error",
			err: errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("boom"),
			expected: 5,
		},
		{
			name:     "unknown error",
			err:      assert.AnError,
			expected: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := exitCodeForError(tt.err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name: "errbuilder with msg",
			err: errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("something broke"),
			expected: "something broke",
		},
		{
			name:     "plain error",
			err:      assert.AnError,
			expected: assert.AnError.Error(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errorMessage(tt.err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
