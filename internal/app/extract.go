package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"msbuild-packages/internal/core"
)

// Extract returns the package references of a single project file.
func (s Service) Extract(ctx context.Context, req ExtractRequest) (ExtractResult, error) {
	path := strings.TrimSpace(req.ProjectPath)
	if path == "" {
		return ExtractResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("project path is required")
	}
	refs, props, central, err := s.extractProject(ctx, path, req.Properties)
	if err != nil {
		if core.IsParseFailure(err) {
			return ExtractResult{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("unable to parse MSBuild project file: " + path).
				WithCause(err)
		}
		return ExtractResult{}, err
	}
	return ExtractResult{
		ProjectPath: path,
		References:  refs,
		Properties:  len(props),
		Central:     len(central),
	}, nil
}
