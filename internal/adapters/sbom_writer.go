package adapters

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"msbuild-packages/internal/ports"
	"msbuild-packages/internal/shared"
	"msbuild-packages/internal/types"
)

const (
	DefaultSBOMNamespace = "https://spdx.org/spdxdocs/msbuild-packages"
	spdxDocumentID       = "SPDXRef-DOCUMENT"
	spdxNoAssertion      = "NOASSERTION"
)

// SBOMWriterAdapter writes an SPDX 2.3 JSON document describing every
// scanned project and the NuGet packages it depends on.
type SBOMWriterAdapter struct {
	NamespaceBase string
	Now           func() time.Time
}

func NewSBOMWriterAdapter() SBOMWriterAdapter {
	return SBOMWriterAdapter{}
}

type spdxCreationInfo struct {
	Created  string   `json:"created"`
	Creators []string `json:"creators"`
}

type spdxExternalRef struct {
	ReferenceCategory string `json:"referenceCategory"`
	ReferenceType     string `json:"referenceType"`
	ReferenceLocator  string `json:"referenceLocator"`
}

type spdxPackage struct {
	SPDXID           string            `json:"SPDXID"`
	Name             string            `json:"name"`
	VersionInfo      string            `json:"versionInfo,omitempty"`
	DownloadLocation string            `json:"downloadLocation"`
	FilesAnalyzed    bool              `json:"filesAnalyzed"`
	LicenseConcluded string            `json:"licenseConcluded"`
	LicenseDeclared  string            `json:"licenseDeclared"`
	Supplier         string            `json:"supplier"`
	ExternalRefs     []spdxExternalRef `json:"externalRefs,omitempty"`
}

type spdxRelationship struct {
	SpdxElementID      string `json:"spdxElementId"`
	RelationshipType   string `json:"relationshipType"`
	RelatedSpdxElement string `json:"relatedSpdxElement"`
}

type spdxDocument struct {
	SPDXVersion       string             `json:"spdxVersion"`
	DataLicense       string             `json:"dataLicense"`
	SPDXID            string             `json:"SPDXID"`
	Name              string             `json:"name"`
	DocumentNamespace string             `json:"documentNamespace"`
	CreationInfo      spdxCreationInfo   `json:"creationInfo"`
	Packages          []spdxPackage      `json:"packages"`
	Relationships     []spdxRelationship `json:"relationships"`
	DocumentDescribes []string           `json:"documentDescribes"`
}

// WriteSBOM writes <dir>/<name>.sbom.json. Failed projects are left out.
// The same package id and version used by several projects appears once.
func (a SBOMWriterAdapter) WriteSBOM(dir string, name string, createdAt string, report types.ScanReport) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("sbom directory is empty")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("sbom name is empty")
	}
	created, err := parseCreatedAt(createdAt, a.now)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create sbom directory").
			WithCause(err)
	}

	doc := spdxDocument{
		SPDXVersion:       "SPDX-2.3",
		DataLicense:       "CC0-1.0",
		SPDXID:            spdxDocumentID,
		Name:              "msbuild-packages " + name,
		DocumentNamespace: a.namespaceBase() + "/" + url.PathEscape(name),
		CreationInfo: spdxCreationInfo{
			Created:  created.Format(time.RFC3339),
			Creators: []string{"Tool: msbuild-packages"},
		},
		Packages:          []spdxPackage{},
		Relationships:     []spdxRelationship{},
		DocumentDescribes: []string{},
	}

	ordered := orderedReport(report)
	seen := map[string]struct{}{}
	linked := map[string]struct{}{}
	for _, project := range ordered.Projects {
		if project.Failed() {
			continue
		}
		projectID := spdxElementID("Project", project.Path, "")
		doc.Packages = append(doc.Packages, spdxPackage{
			SPDXID:           projectID,
			Name:             project.Path,
			DownloadLocation: spdxNoAssertion,
			LicenseConcluded: spdxNoAssertion,
			LicenseDeclared:  spdxNoAssertion,
			Supplier:         spdxNoAssertion,
		})
		doc.DocumentDescribes = append(doc.DocumentDescribes, projectID)
		doc.Relationships = append(doc.Relationships, spdxRelationship{
			SpdxElementID:      spdxDocumentID,
			RelationshipType:   "DESCRIBES",
			RelatedSpdxElement: projectID,
		})

		for _, ref := range project.References {
			packageID := spdxElementID("Package", shared.NormalizePackageID(ref.ID), ref.Version)
			edge := projectID + "|" + packageID
			if _, ok := linked[edge]; !ok {
				linked[edge] = struct{}{}
				doc.Relationships = append(doc.Relationships, spdxRelationship{
					SpdxElementID:      projectID,
					RelationshipType:   "DEPENDS_ON",
					RelatedSpdxElement: packageID,
				})
			}
			if _, ok := seen[packageID]; ok {
				continue
			}
			seen[packageID] = struct{}{}
			doc.Packages = append(doc.Packages, spdxPackage{
				SPDXID:           packageID,
				Name:             ref.ID,
				VersionInfo:      ref.Version,
				DownloadLocation: spdxNoAssertion,
				LicenseConcluded: spdxNoAssertion,
				LicenseDeclared:  spdxNoAssertion,
				Supplier:         spdxNoAssertion,
				ExternalRefs: []spdxExternalRef{{
					ReferenceCategory: "PACKAGE-MANAGER",
					ReferenceType:     "purl",
					ReferenceLocator:  nugetPurl(ref),
				}},
			})
		}
	}
	sort.SliceStable(doc.Packages, func(i, j int) bool {
		return doc.Packages[i].SPDXID < doc.Packages[j].SPDXID
	})

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to marshal sbom payload").
			WithCause(err)
	}
	path := filepath.Join(dir, name+".sbom.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write sbom file").
			WithCause(err)
	}
	return path, nil
}

func (a SBOMWriterAdapter) namespaceBase() string {
	base := strings.TrimRight(strings.TrimSpace(a.NamespaceBase), "/")
	if base == "" {
		return DefaultSBOMNamespace
	}
	return base
}

func (a SBOMWriterAdapter) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func spdxElementID(kind string, name string, version string) string {
	seed := fmt.Sprintf("%s@%s", name, version)
	hash := sha256.Sum256([]byte(seed))
	return "SPDXRef-" + kind + "-" + hex.EncodeToString(hash[:8])
}

func nugetPurl(ref types.PackageReference) string {
	purl := "pkg:nuget/" + url.PathEscape(ref.ID)
	if ref.Version != "" {
		purl += "@" + url.PathEscape(ref.Version)
	}
	return purl
}

var _ ports.SBOMPort = SBOMWriterAdapter{}
