package core

import (
	"errors"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	"msbuild-packages/internal/ports"
	"msbuild-packages/internal/shared"
	"msbuild-packages/internal/types"
)

const (
	packageReferenceElement = "PackageReference"
	includeAttr             = "Include"
	versionAttr             = "Version"
	versionOverrideAttr     = "VersionOverride"
	versionElement          = "Version"
)

// ProjectReferenceExtractor reads PackageReference items out of an MSBuild
// project document and resolves the version each one ends up with.
type ProjectReferenceExtractor struct {
	Parser ports.XMLParserPort
}

func NewProjectReferenceExtractor(parser ports.XMLParserPort) ProjectReferenceExtractor {
	return ProjectReferenceExtractor{Parser: parser}
}

// Extract parses r and returns its package references in document order.
//
// The version of a reference is taken from, in order: the VersionOverride
// attribute or the central catalog when the id is centrally managed, the
// Version attribute, then a Version child element. Version placeholders are
// expanded from props. References without an Include attribute or without
// any version are skipped. Any failure to parse or query the document is
// returned as a *ParseFailure and no references are returned with it.
//
// Extract does not close r.
func (e ProjectReferenceExtractor) Extract(r io.Reader, props types.PropertySet, central types.CentralVersions) ([]types.PackageReference, error) {
	if e.Parser == nil {
		return nil, newParseFailure(errors.New("no XML parser configured"))
	}
	doc, err := e.Parser.Parse(r)
	if err != nil {
		return nil, newParseFailure(err)
	}
	if doc == nil {
		return nil, newParseFailure(errors.New("parser returned no document"))
	}
	nodes, err := doc.Select(packageReferenceElement)
	if err != nil {
		return nil, newParseFailure(err)
	}
	if nodes == nil {
		return nil, newParseFailure(errNoPackageReferences)
	}

	references := make([]types.PackageReference, 0, nodes.Len())
	for i := 0; i < nodes.Len(); i++ {
		node := nodes.Item(i)
		if node == nil {
			continue
		}
		// Update and Remove items carry no Include.
		include, ok := node.Attr(includeAttr)
		if !ok || strings.TrimSpace(include) == "" {
			continue
		}
		version, ok := resolveVersion(node, include, central)
		if !ok {
			log.Debug().Str("package", include).Msg("package reference has no version, skipping")
			continue
		}
		references = append(references, types.PackageReference{
			ID:      include,
			Version: shared.Interpolate(version, props, shared.StyleMSBuild),
		})
	}

	log.Debug().
		Int("elements", nodes.Len()).
		Int("references", len(references)).
		Msg("package references extracted")
	return references, nil
}

func resolveVersion(node ports.XMLNode, include string, central types.CentralVersions) (string, bool) {
	if centralVersion, managed := central[include]; managed {
		if override, ok := node.Attr(versionOverrideAttr); ok {
			return override, true
		}
		return centralVersion, true
	}
	if version, ok := node.Attr(versionAttr); ok {
		return version, true
	}
	// Element text is commonly laid out across lines. NuGet trims the
	// version string before parsing it, so the trimmed text is what restore
	// resolves.
	if child, ok := node.Child(versionElement); ok {
		return strings.TrimSpace(child.Text()), true
	}
	return "", false
}

var _ ports.ReferenceExtractorPort = ProjectReferenceExtractor{}
