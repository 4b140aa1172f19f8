package types

type ReportFormat string

const (
	ReportFormatText ReportFormat = "text"
	ReportFormatJSON ReportFormat = "json"
	ReportFormatYAML ReportFormat = "yaml"
	ReportFormatTOML ReportFormat = "toml"
)

// ProjectScan is the outcome of extracting one project file. Error is set
// when the file could not be parsed; References is empty in that case.
type ProjectScan struct {
	Path       string             `json:"path" yaml:"path" toml:"path"`
	References []PackageReference `json:"references" yaml:"references" toml:"references"`
	Error      string             `json:"error,omitempty" yaml:"error,omitempty" toml:"error,omitempty"`
}

func (s ProjectScan) Failed() bool {
	return s.Error != ""
}

type ScanReport struct {
	Roots    []string      `json:"roots" yaml:"roots" toml:"roots"`
	Projects []ProjectScan `json:"projects" yaml:"projects" toml:"projects"`
}
