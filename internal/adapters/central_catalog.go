package adapters

import (
	"strings"

	"github.com/rs/zerolog/log"

	"msbuild-packages/internal/ports"
	"msbuild-packages/internal/shared"
	"msbuild-packages/internal/types"
)

const managePackageVersionsCentrally = "ManagePackageVersionsCentrally"

// CentralCatalogAdapter reads the PackageVersion items of the
// Directory.Packages.props files that apply to a project.
type CentralCatalogAdapter struct {
	Parser  *XMLDocumentParser
	StopDir string
}

func NewCentralCatalogAdapter(parser *XMLDocumentParser, stopDir string) CentralCatalogAdapter {
	return CentralCatalogAdapter{Parser: parser, StopDir: stopDir}
}

// LoadCentralVersions returns an empty catalog when no
// Directory.Packages.props exists or when ManagePackageVersionsCentrally is
// not true.
func (a CentralCatalogAdapter) LoadCentralVersions(projectPath string, props types.PropertySet) (types.CentralVersions, error) {
	chain, err := loadPropsChain(a.Parser, projectPath, packagesPropsFileName, a.StopDir)
	if err != nil {
		return nil, err
	}
	catalogProps := shared.MergeProperties(props, nil)
	versions := types.CentralVersions{}
	for _, file := range chain {
		applyPropertyGroups(file.doc, catalogProps)
		for _, element := range file.doc.root.elements("PackageVersion") {
			id, version, ok := packageVersionEntry(element, versions)
			if !ok {
				continue
			}
			versions[id] = shared.Interpolate(version, catalogProps, shared.StyleMSBuild)
		}
	}
	if !centralManagementEnabled(catalogProps) {
		log.Debug().Str("project", projectPath).Msg("central package management disabled")
		return types.CentralVersions{}, nil
	}

	log.Debug().
		Str("project", projectPath).
		Int("files", len(chain)).
		Int("packages", len(versions)).
		Msg("central package versions loaded")
	return versions, nil
}

// packageVersionEntry reads an Include item, or an Update item for an id
// that an outer catalog already declared.
func packageVersionEntry(element *xmlElement, versions types.CentralVersions) (string, string, bool) {
	id, ok := element.Attr("Include")
	if !ok {
		update, isUpdate := element.Attr("Update")
		if !isUpdate {
			return "", "", false
		}
		if _, known := versions[update]; !known {
			return "", "", false
		}
		id = update
	}
	if strings.TrimSpace(id) == "" {
		return "", "", false
	}
	if version, ok := element.Attr("Version"); ok {
		return id, version, true
	}
	if child, ok := element.Child("Version"); ok {
		return id, strings.TrimSpace(child.Text()), true
	}
	return "", "", false
}

// centralManagementEnabled follows NuGet: management is on only when the
// property is set to true.
func centralManagementEnabled(props types.PropertySet) bool {
	value, ok := shared.LookupProperty(props, managePackageVersionsCentrally)
	return ok && strings.EqualFold(strings.TrimSpace(value), "true")
}

var _ ports.CentralCatalogPort = CentralCatalogAdapter{}
