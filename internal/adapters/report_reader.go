package adapters

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"msbuild-packages/internal/ports"
	"msbuild-packages/internal/types"
)

type ReportReaderAdapter struct{}

func NewReportReaderAdapter() ReportReaderAdapter {
	return ReportReaderAdapter{}
}

// Read loads a report, picking the format from the file extension.
func (a ReportReaderAdapter) Read(path string) (types.ScanReport, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return types.ScanReport{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("report not found").
			WithCause(err)
	}

	var report types.ScanReport
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(content, &report)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(content, &report)
	case ".toml":
		err = toml.Unmarshal(content, &report)
	case ".txt", "":
		report, err = decodeTextReport(string(content))
	default:
		return types.ScanReport{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("unsupported report extension: " + filepath.Ext(path))
	}
	if err != nil {
		return types.ScanReport{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid report format").
			WithCause(err)
	}
	return report, nil
}

func decodeTextReport(content string) (types.ScanReport, error) {
	report := types.ScanReport{}
	index := map[string]int{}
	project := func(path string) *types.ProjectScan {
		if i, ok := index[path]; ok {
			return &report.Projects[i]
		}
		index[path] = len(report.Projects)
		report.Projects = append(report.Projects, types.ProjectScan{Path: path, References: []types.PackageReference{}})
		return &report.Projects[len(report.Projects)-1]
	}

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		switch {
		case fields[0] == textRootMarker && len(fields) == 2:
			report.Roots = append(report.Roots, unescapeTextField(fields[1]))
		case len(fields) == 1:
			project(unescapeTextField(fields[0]))
		case len(fields) == 3 && fields[1] == textErrorID:
			project(unescapeTextField(fields[0])).Error = unescapeTextField(fields[2])
		case len(fields) == 3:
			scan := project(unescapeTextField(fields[0]))
			scan.References = append(scan.References, types.PackageReference{
				ID:      unescapeTextField(fields[1]),
				Version: unescapeTextField(fields[2]),
			})
		default:
			return types.ScanReport{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("invalid report line: " + line)
		}
	}
	return report, nil
}

var _ ports.ReportReaderPort = ReportReaderAdapter{}
