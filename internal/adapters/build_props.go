package adapters

import (
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"msbuild-packages/internal/ports"
	"msbuild-packages/internal/shared"
	"msbuild-packages/internal/types"
)

// BuildPropsAdapter collects the properties declared in the
// Directory.Build.props files that apply to a project.
type BuildPropsAdapter struct {
	Parser  *XMLDocumentParser
	StopDir string
}

func NewBuildPropsAdapter(parser *XMLDocumentParser, stopDir string) BuildPropsAdapter {
	return BuildPropsAdapter{Parser: parser, StopDir: stopDir}
}

func (a BuildPropsAdapter) LoadProperties(projectPath string) (types.PropertySet, error) {
	chain, err := loadPropsChain(a.Parser, projectPath, buildPropsFileName, a.StopDir)
	if err != nil {
		return nil, err
	}
	props := reservedProperties(projectPath)
	for _, file := range chain {
		props["MSBuildThisFileDirectory"] = filepath.Dir(file.path) + string(filepath.Separator)
		applyPropertyGroups(file.doc, props)
	}
	delete(props, "MSBuildThisFileDirectory")

	log.Debug().
		Str("project", projectPath).
		Int("files", len(chain)).
		Int("properties", len(props)).
		Msg("build properties loaded")
	return props, nil
}

// ReservedPropertyNames lists the per-project properties LoadProperties
// seeds before any props file is read.
var ReservedPropertyNames = []string{
	"MSBuildProjectDirectory",
	"MSBuildProjectFile",
	"MSBuildProjectName",
	"MSBuildProjectExtension",
	"MSBuildProjectFullPath",
}

// reservedProperties seeds the project-level properties MSBuild always
// defines so that props files can reference them.
func reservedProperties(projectPath string) types.PropertySet {
	abs, err := filepath.Abs(projectPath)
	if err != nil {
		abs = projectPath
	}
	file := filepath.Base(abs)
	return types.PropertySet{
		"MSBuildProjectDirectory": filepath.Dir(abs),
		"MSBuildProjectFile":      file,
		"MSBuildProjectName":      strings.TrimSuffix(file, filepath.Ext(file)),
		"MSBuildProjectExtension": filepath.Ext(file),
		"MSBuildProjectFullPath":  abs,
	}
}

// applyPropertyGroups copies every property defined under a PropertyGroup
// into props. Conditions are not evaluated. Values may reference properties
// defined earlier.
func applyPropertyGroups(doc *xmlDocument, props types.PropertySet) {
	for _, group := range doc.root.elements("PropertyGroup") {
		for _, property := range group.children {
			value := strings.TrimSpace(property.Text())
			props[property.name] = shared.Interpolate(value, props, shared.StyleMSBuild)
		}
	}
}

var _ ports.BuildPropsPort = BuildPropsAdapter{}
