package app

import (
	"msbuild-packages/internal/adapters"
	"msbuild-packages/internal/core"
	"msbuild-packages/internal/ports"
)

type Config struct {
	// StopDir bounds the upward search for Directory.Build.props and
	// Directory.Packages.props. Empty searches up to the filesystem root.
	StopDir   string
	XMLLimits adapters.XMLLimits
}

type Service struct {
	Workspace      ports.WorkspacePort
	Projects       ports.ProjectSourcePort
	BuildProps     ports.BuildPropsPort
	CentralCatalog ports.CentralCatalogPort
	Extractor      ports.ReferenceExtractorPort
	ReportReader   ports.ReportReaderPort
	ReportWriter   func(dir string) ports.ReportWriterPort
	SBOM           ports.SBOMPort
	results        *resultCache
}

func NewService(cfg Config) (Service, error) {
	parser, err := adapters.NewSecureXMLParser(cfg.XMLLimits)
	if err != nil {
		return Service{}, err
	}
	return Service{
		Workspace:      adapters.NewWorkspaceAdapter(),
		Projects:       adapters.NewProjectFileAdapter(parser.Limits().MaxBytes),
		BuildProps:     adapters.NewBuildPropsAdapter(parser, cfg.StopDir),
		CentralCatalog: adapters.NewCentralCatalogAdapter(parser, cfg.StopDir),
		Extractor:      core.NewProjectReferenceExtractor(parser),
		ReportReader:   adapters.NewReportReaderAdapter(),
		ReportWriter: func(dir string) ports.ReportWriterPort {
			return adapters.NewReportFileAdapter(dir)
		},
		SBOM:    adapters.NewSBOMWriterAdapter(),
		results: newResultCache(),
	}, nil
}
