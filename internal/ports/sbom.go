package ports

import "msbuild-packages/internal/types"

// SBOMPort writes the packages of a scan report as a software bill of
// materials and returns the path written.
type SBOMPort interface {
	WriteSBOM(dir string, name string, createdAt string, report types.ScanReport) (string, error)
}
