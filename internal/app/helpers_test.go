package app

import (
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"msbuild-packages/internal/ports"
	"msbuild-packages/internal/types"
)

func writeFile(t *testing.T, path string, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func newTestService(t *testing.T, stopDir string) Service {
	t.Helper()
	svc, err := NewService(Config{StopDir: stopDir})
	require.NoError(t, err)
	return svc
}

// countingExtractor records how many documents reach the wrapped
// extractor.
type countingExtractor struct {
	inner ports.ReferenceExtractorPort
	calls atomic.Int32
}

func (c *countingExtractor) Extract(r io.Reader, props types.PropertySet, central types.CentralVersions) ([]types.PackageReference, error) {
	c.calls.Add(1)
	return c.inner.Extract(r, props, central)
}

// workspaceFixture lays out a small solution with central package
// management, one project per concern and one broken project.
func workspaceFixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Directory.Build.props"), `<Project>
  <PropertyGroup>
    <SerilogVersion>3.1.1</SerilogVersion>
  </PropertyGroup>
</Project>`)
	writeFile(t, filepath.Join(root, "Directory.Packages.props"), `<Project>
  <PropertyGroup>
    <ManagePackageVersionsCentrally>true</ManagePackageVersionsCentrally>
  </PropertyGroup>
  <ItemGroup>
    <PackageVersion Include="xunit" Version="2.6.2" />
  </ItemGroup>
</Project>`)
	writeFile(t, filepath.Join(root, "src", "Api", "Api.csproj"), `<Project Sdk="Microsoft.NET.Sdk.Web">
  <ItemGroup>
    <PackageReference Include="Serilog" Version="$(SerilogVersion)" />
    <PackageReference Include="Dapper">
      <Version>2.1.24</Version>
    </PackageReference>
  </ItemGroup>
</Project>`)
	writeFile(t, filepath.Join(root, "tests", "Api.Tests", "Api.Tests.csproj"), `<Project Sdk="Microsoft.NET.Sdk">
  <ItemGroup>
    <PackageReference Include="xunit" />
    <PackageReference Include="serilog" Version="3.0.0" />
  </ItemGroup>
</Project>`)
	writeFile(t, filepath.Join(root, "src", "Broken", "Broken.csproj"), `<Project><ItemGroup>`)
	return root
}
