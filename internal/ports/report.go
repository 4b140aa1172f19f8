package ports

import "msbuild-packages/internal/types"

type ReportWriterPort interface {
	// Write stores the report and returns the path it was written to.
	Write(report types.ScanReport, format types.ReportFormat) (string, error)
}

type ReportReaderPort interface {
	Read(path string) (types.ScanReport, error)
}
