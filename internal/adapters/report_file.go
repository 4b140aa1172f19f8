package adapters

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"msbuild-packages/internal/ports"
	"msbuild-packages/internal/types"
)

const (
	reportBaseName = "packages"
	textRootMarker = "#root"
	textErrorID    = "!error"
)

var reportExtensions = map[types.ReportFormat]string{
	types.ReportFormatText: ".txt",
	types.ReportFormatJSON: ".json",
	types.ReportFormatYAML: ".yaml",
	types.ReportFormatTOML: ".toml",
}

// ReportFileAdapter writes scan reports into Dir as packages.<ext>.
type ReportFileAdapter struct {
	Dir string
}

func NewReportFileAdapter(dir string) ReportFileAdapter {
	return ReportFileAdapter{Dir: dir}
}

// ReportFileName returns the file name a report of the given format is
// written to.
func ReportFileName(format types.ReportFormat) (string, error) {
	ext, ok := reportExtensions[format]
	if !ok {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("unsupported report format: " + string(format))
	}
	return reportBaseName + ext, nil
}

func (a ReportFileAdapter) Write(report types.ScanReport, format types.ReportFormat) (string, error) {
	name, err := ReportFileName(format)
	if err != nil {
		return "", err
	}
	path, err := a.ensurePath(name)
	if err != nil {
		return "", err
	}
	ordered := orderedReport(report)

	var data []byte
	switch format {
	case types.ReportFormatJSON:
		data, err = json.MarshalIndent(ordered, "", "  ")
	case types.ReportFormatYAML:
		data, err = yaml.Marshal(ordered)
	case types.ReportFormatTOML:
		data, err = toml.Marshal(ordered)
	default:
		data = []byte(encodeTextReport(ordered))
	}
	if err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode report").
			WithCause(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write report").
			WithCause(err)
	}
	return path, nil
}

// orderedReport sorts projects by path. References keep document order.
func orderedReport(report types.ScanReport) types.ScanReport {
	projects := append([]types.ProjectScan(nil), report.Projects...)
	sort.SliceStable(projects, func(i, j int) bool {
		return projects[i].Path < projects[j].Path
	})
	for i := range projects {
		if projects[i].References == nil {
			projects[i].References = []types.PackageReference{}
		}
	}
	return types.ScanReport{
		Roots:    append([]string(nil), report.Roots...),
		Projects: projects,
	}
}

// encodeTextReport emits one tab separated line per reference. Version
// ranges may contain commas, so tabs separate the fields. Every field is
// escaped so a tab, newline or backslash inside a value cannot split it.
func encodeTextReport(report types.ScanReport) string {
	var lines []string
	for _, root := range report.Roots {
		lines = append(lines, textRootMarker+"\t"+escapeTextField(root))
	}
	for _, project := range report.Projects {
		switch {
		case project.Failed():
			lines = append(lines, textLine(project.Path, textErrorID, project.Error))
		case len(project.References) == 0:
			lines = append(lines, escapeTextField(project.Path))
		default:
			for _, ref := range project.References {
				lines = append(lines, textLine(project.Path, ref.ID, ref.Version))
			}
		}
	}
	return strings.Join(lines, "\n") + "\n"
}

var (
	textFieldEscaper   = strings.NewReplacer(`\`, `\\`, "\t", `\t`, "\n", `\n`, "\r", `\r`)
	textFieldUnescaper = strings.NewReplacer(`\\`, `\`, `\t`, "\t", `\n`, "\n", `\r`, "\r")
)

func escapeTextField(value string) string {
	return textFieldEscaper.Replace(value)
}

func unescapeTextField(value string) string {
	return textFieldUnescaper.Replace(value)
}

// textLine joins escaped fields. The marker in the middle of an error line
// is written as is.
func textLine(path, id, last string) string {
	if id != textErrorID {
		id = escapeTextField(id)
	}
	return escapeTextField(path) + "\t" + id + "\t" + escapeTextField(last)
}

func (a ReportFileAdapter) ensurePath(filename string) (string, error) {
	if a.Dir == "" {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("output directory is empty")
	}
	if err := os.MkdirAll(a.Dir, 0755); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create output directory").
			WithCause(err)
	}
	return filepath.Join(a.Dir, filename), nil
}

var _ ports.ReportWriterPort = ReportFileAdapter{}
