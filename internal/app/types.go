package app

import "msbuild-packages/internal/types"

type ScanRequest struct {
	Workspace  []string
	OutputDir  string
	Format     types.ReportFormat
	Workers    int
	FailFast   bool
	Properties types.PropertySet

	// SBOM, when set, also writes an SPDX document named SBOMName into
	// OutputDir. SBOMCreatedAt defaults to now.
	SBOM          bool
	SBOMName      string
	SBOMCreatedAt string
}

type ScanResult struct {
	Report     types.ScanReport
	ReportPath string
	SBOMPath   string
	Projects   int
	References int
	Failed     int
}

type ExtractRequest struct {
	ProjectPath string
	Properties  types.PropertySet
}

type ExtractResult struct {
	ProjectPath string
	References  []types.PackageReference
	Properties  int
	Central     int
}

type InspectRequest struct {
	ReportPath string
}

type PackageSummary struct {
	ID       string
	Versions []string
	Projects int
}

// Drifted reports whether projects disagree on the version of a package.
func (s PackageSummary) Drifted() bool {
	return len(s.Versions) > 1
}

type ProjectFailure struct {
	Path  string
	Error string
}

type InspectResult struct {
	Projects   int
	References int
	Packages   []PackageSummary
	Failures   []ProjectFailure
}
