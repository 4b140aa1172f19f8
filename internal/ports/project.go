package ports

import (
	"io"

	"msbuild-packages/internal/types"
)

// ProjectSourcePort opens project files and reports a digest of their
// content so callers can reuse results for unchanged files.
type ProjectSourcePort interface {
	Open(path string) (io.ReadCloser, error)
	Digest(path string) (string, error)
}

// BuildPropsPort loads the Directory.Build.props properties that apply to
// a project file.
type BuildPropsPort interface {
	LoadProperties(projectPath string) (types.PropertySet, error)
}

// CentralCatalogPort loads the central package-version catalog
// (Directory.Packages.props) that applies to a project file.
type CentralCatalogPort interface {
	LoadCentralVersions(projectPath string, props types.PropertySet) (types.CentralVersions, error)
}

// ReferenceExtractorPort extracts package references from a single
// project document.
type ReferenceExtractorPort interface {
	Extract(r io.Reader, props types.PropertySet, central types.CentralVersions) ([]types.PackageReference, error)
}
