package adapters

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
)

const (
	buildPropsFileName    = "Directory.Build.props"
	packagesPropsFileName = "Directory.Packages.props"
)

type propsFile struct {
	path string
	doc  *xmlDocument
}

// loadPropsChain finds the props file named fileName nearest to the
// project and follows it upwards for as long as each file imports its
// parent. The result is ordered outermost first so that nearer files can
// be applied last. stopDir, when set, is the last directory searched.
func loadPropsChain(parser *XMLDocumentParser, projectPath string, fileName string, stopDir string) ([]propsFile, error) {
	if parser == nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("xml parser is required")
	}
	if strings.TrimSpace(projectPath) == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("project path is empty")
	}
	absProject, err := filepath.Abs(projectPath)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to resolve project path").
			WithCause(err)
	}
	stop := ""
	if strings.TrimSpace(stopDir) != "" {
		if stop, err = filepath.Abs(stopDir); err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("failed to resolve stop directory").
				WithCause(err)
		}
	}

	var chain []propsFile
	dir := filepath.Dir(absProject)
	for {
		path, found, err := findFileAbove(dir, fileName, stop)
		if err != nil {
			return nil, err
		}
		if !found {
			break
		}
		doc, err := parsePropsFile(parser, path)
		if err != nil {
			return nil, err
		}
		chain = append([]propsFile{{path: path, doc: doc}}, chain...)
		log.Debug().Str("path", path).Msg("props file loaded")

		parent := filepath.Dir(filepath.Dir(path))
		if !importsParent(doc, fileName) || parent == filepath.Dir(path) || filepath.Dir(path) == stop {
			break
		}
		dir = parent
	}
	return chain, nil
}

func findFileAbove(dir string, fileName string, stop string) (string, bool, error) {
	for {
		candidate := filepath.Join(dir, fileName)
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, true, nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", false, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to stat " + candidate).
				WithCause(err)
		}
		parent := filepath.Dir(dir)
		if parent == dir || dir == stop {
			return "", false, nil
		}
		dir = parent
	}
}

func parsePropsFile(parser *XMLDocumentParser, path string) (*xmlDocument, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to read " + path).
			WithCause(err)
	}
	defer file.Close()

	doc, err := parser.parse(file)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse " + path).
			WithCause(err)
	}
	return doc, nil
}

// importsParent reports whether the document pulls in the same-named file
// from a parent directory, usually through
// $([MSBuild]::GetPathOfFileAbove('Directory.Build.props', '$(MSBuildThisFileDirectory)../')).
func importsParent(doc *xmlDocument, fileName string) bool {
	needle := strings.ToLower(fileName)
	for _, element := range doc.root.elements("Import") {
		project, ok := element.Attr("Project")
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(project), needle) {
			return true
		}
	}
	return false
}
