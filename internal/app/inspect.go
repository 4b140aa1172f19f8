package app

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"msbuild-packages/internal/shared"
	"msbuild-packages/internal/types"
)

func (s Service) Inspect(req InspectRequest) (InspectResult, error) {
	reportPath := strings.TrimSpace(req.ReportPath)
	if reportPath == "" {
		return InspectResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("report path is required")
	}
	report, err := s.ReportReader.Read(reportPath)
	if err != nil {
		return InspectResult{}, err
	}

	result := InspectResult{Projects: len(report.Projects)}
	for _, project := range report.Projects {
		if project.Failed() {
			result.Failures = append(result.Failures, ProjectFailure{Path: project.Path, Error: project.Error})
			continue
		}
		result.References += len(project.References)
	}
	sort.Slice(result.Failures, func(i, j int) bool {
		return result.Failures[i].Path < result.Failures[j].Path
	})

	stats := summarizePackages(report.Projects)
	for _, id := range sortedKeys(stats) {
		stat := stats[id]
		result.Packages = append(result.Packages, PackageSummary{
			ID:       stat.id,
			Versions: sortedKeys(stat.versions),
			Projects: len(stat.projects),
		})
	}
	return result, nil
}

type packageStat struct {
	id       string
	versions map[string]struct{}
	projects map[string]struct{}
}

// summarizePackages groups references by case-insensitive package id. The
// first spelling seen is kept for display.
func summarizePackages(projects []types.ProjectScan) map[string]packageStat {
	stats := map[string]packageStat{}
	for _, project := range projects {
		for _, ref := range project.References {
			key := shared.NormalizePackageID(ref.ID)
			stat, ok := stats[key]
			if !ok {
				stat = packageStat{
					id:       ref.ID,
					versions: map[string]struct{}{},
					projects: map[string]struct{}{},
				}
			}
			stat.versions[ref.Version] = struct{}{}
			stat.projects[project.Path] = struct{}{}
			stats[key] = stat
		}
	}
	return stats
}

func sortedKeys[K comparable, V any](input map[K]V) []K {
	keys := make([]K, 0, len(input))
	for key := range input {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return fmt.Sprint(keys[i]) < fmt.Sprint(keys[j])
	})
	return keys
}
