package app

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"msbuild-packages/internal/shared"
	"msbuild-packages/internal/types"
)

const defaultSBOMName = "packages"

// Scan extracts the package references of every project below the
// workspace roots. A project that cannot be parsed is recorded in the
// report and does not stop the scan unless FailFast is set.
func (s Service) Scan(ctx context.Context, req ScanRequest) (ScanResult, error) {
	roots := trimmedNonEmpty(req.Workspace)
	if len(roots) == 0 {
		return ScanResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("at least one workspace root is required")
	}
	format := types.ReportFormat(strings.ToLower(strings.TrimSpace(string(req.Format))))
	if format == "" {
		format = types.ReportFormatText
	}
	if !validReportFormat(format) {
		return ScanResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("unsupported report format: " + string(format))
	}
	if req.Workers < 0 {
		return ScanResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("workers must be >= 0")
	}
	outputDir := strings.TrimSpace(req.OutputDir)
	if req.SBOM && outputDir == "" {
		return ScanResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("output directory is required to write an sbom")
	}
	assert.NotEmpty(ctx, string(format), "report format must be resolved")

	paths, err := s.discoverProjects(roots)
	if err != nil {
		return ScanResult{}, err
	}
	log.Ctx(ctx).Debug().Int("projects", len(paths)).Msg("projects discovered")

	scans := make([]types.ProjectScan, len(paths))
	workers := req.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			scan, err := s.scanProject(groupCtx, path, req.Properties)
			if err != nil && req.FailFast {
				return err
			}
			scans[i] = scan
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ScanResult{}, err
	}

	report := types.ScanReport{Roots: roots, Projects: scans}
	result := summarizeScan(report)

	if outputDir != "" {
		path, err := s.ReportWriter(outputDir).Write(report, format)
		if err != nil {
			return ScanResult{}, err
		}
		result.ReportPath = path
	}
	if req.SBOM {
		name := cmp.Or(strings.TrimSpace(req.SBOMName), defaultSBOMName)
		path, err := s.SBOM.WriteSBOM(outputDir, name, req.SBOMCreatedAt, report)
		if err != nil {
			return ScanResult{}, err
		}
		result.SBOMPath = path
		log.Ctx(ctx).Debug().Str("path", path).Msg("sbom written")
	}

	if result.Projects > 0 && result.Failed == result.Projects {
		return result, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("no project file could be parsed")
	}
	return result, nil
}

// scanProject always returns a ProjectScan for path. The error is only
// returned so that fail-fast scans can abort.
func (s Service) scanProject(ctx context.Context, path string, overrides types.PropertySet) (types.ProjectScan, error) {
	refs, _, _, err := s.extractProject(ctx, path, overrides)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("path", path).Msg("project skipped")
		return types.ProjectScan{Path: path, References: []types.PackageReference{}, Error: err.Error()}, err
	}
	return types.ProjectScan{Path: path, References: refs}, nil
}

func (s Service) extractProject(ctx context.Context, path string, overrides types.PropertySet) ([]types.PackageReference, types.PropertySet, types.CentralVersions, error) {
	props, err := s.BuildProps.LoadProperties(path)
	if err != nil {
		return nil, nil, nil, err
	}
	// Command line properties win over props files, as global properties
	// do in MSBuild.
	props = shared.MergeProperties(props, overrides)
	central, err := s.CentralCatalog.LoadCentralVersions(path, props)
	if err != nil {
		return nil, nil, nil, err
	}

	content, err := s.readProject(path)
	if err != nil {
		return nil, nil, nil, err
	}
	digest, err := s.Projects.Digest(path)
	if err != nil {
		return nil, nil, nil, err
	}
	key := resultCacheKey(digest, cacheKeyProperties(content, props, central), central)
	if refs, ok := s.results.get(key); ok {
		log.Ctx(ctx).Debug().Str("path", path).Msg("project unchanged, reusing references")
		return refs, props, central, nil
	}

	refs, err := s.Extractor.Extract(bytes.NewReader(content), props, central)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	s.results.put(key, refs)

	log.Ctx(ctx).Debug().
		Str("path", path).
		Int("references", len(refs)).
		Int("central", len(central)).
		Msg("project scanned")
	return refs, props, central, nil
}

func (s Service) readProject(path string) ([]byte, error) {
	reader, err := s.Projects.Open(path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read project file").
			WithCause(err)
	}
	return content, nil
}

func (s Service) discoverProjects(roots []string) ([]string, error) {
	seen := map[string]struct{}{}
	var paths []string
	for _, root := range roots {
		found, err := s.Workspace.FindProjects(root)
		if err != nil {
			return nil, err
		}
		for _, path := range found {
			if _, ok := seen[path]; ok {
				continue
			}
			seen[path] = struct{}{}
			paths = append(paths, path)
		}
	}
	return paths, nil
}

func summarizeScan(report types.ScanReport) ScanResult {
	result := ScanResult{Report: report, Projects: len(report.Projects)}
	for _, scan := range report.Projects {
		if scan.Failed() {
			result.Failed++
			continue
		}
		result.References += len(scan.References)
	}
	return result
}

func validReportFormat(format types.ReportFormat) bool {
	switch format {
	case types.ReportFormatText, types.ReportFormatJSON, types.ReportFormatYAML, types.ReportFormatTOML:
		return true
	default:
		return false
	}
}

func trimmedNonEmpty(values []string) []string {
	var out []string
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
