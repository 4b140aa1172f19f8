package shared

import (
	"regexp"
	"strings"

	"msbuild-packages/internal/types"
)

// SyntaxStyle selects the placeholder syntax understood by Interpolate.
type SyntaxStyle int

const (
	// StyleMSBuild expands $(Name) placeholders.
	StyleMSBuild SyntaxStyle = iota
	// StyleMaven expands ${name} placeholders.
	StyleMaven
)

// Property values may reference other properties. Nesting deeper than
// maxInterpolationDepth is left unexpanded.
const maxInterpolationDepth = 10

// MaxInterpolatedLength bounds the work and output of a single Interpolate
// call. Once it is spent, remaining placeholders are left as written.
const MaxInterpolatedLength = 1 << 20

var (
	msbuildPlaceholder = regexp.MustCompile(`\$\(([^()]+)\)`)
	mavenPlaceholder   = regexp.MustCompile(`\$\{([^{}]+)\}`)
)

// Interpolate replaces placeholders in text with values from props.
// Placeholders naming an unknown property are left untouched, and so is a
// placeholder for a property that is already being expanded.
func Interpolate(text string, props types.PropertySet, style SyntaxStyle) string {
	if text == "" || len(props) == 0 {
		return text
	}
	e := &expander{
		props:     props,
		pattern:   placeholderPattern(style),
		expanding: map[string]struct{}{},
		budget:    MaxInterpolatedLength,
	}
	return e.expand(text, 0)
}

type expander struct {
	props     types.PropertySet
	pattern   *regexp.Regexp
	expanding map[string]struct{}
	budget    int
}

func (e *expander) expand(text string, depth int) string {
	matches := e.pattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text
	}
	var builder strings.Builder
	last := 0
	for _, m := range matches {
		builder.WriteString(text[last:m[0]])
		e.budget -= m[0] - last
		last = m[1]

		token := text[m[0]:m[1]]
		key, value, ok := resolveProperty(e.props, strings.TrimSpace(text[m[2]:m[3]]))
		_, cyclic := e.expanding[key]
		if !ok || cyclic || depth >= maxInterpolationDepth || len(value) > e.budget {
			builder.WriteString(token)
			e.budget -= len(token)
			continue
		}
		// Scanning the value is charged too, so repeated references to
		// the same large property cannot do unbounded work.
		e.budget -= len(value)
		e.expanding[key] = struct{}{}
		expanded := e.expand(value, depth+1)
		delete(e.expanding, key)
		if len(expanded) > e.budget {
			builder.WriteString(token)
			e.budget -= len(token)
			continue
		}
		builder.WriteString(expanded)
		e.budget -= len(expanded)
	}
	builder.WriteString(text[last:])
	return builder.String()
}

func placeholderPattern(style SyntaxStyle) *regexp.Regexp {
	if style == StyleMaven {
		return mavenPlaceholder
	}
	return msbuildPlaceholder
}

// LookupProperty matches the exact name first and falls back to a
// case-insensitive match, since MSBuild property names ignore case. When
// several keys differ only in case the lexically smallest wins.
func LookupProperty(props types.PropertySet, name string) (string, bool) {
	_, value, ok := resolveProperty(props, name)
	return value, ok
}

func resolveProperty(props types.PropertySet, name string) (string, string, bool) {
	if value, ok := props[name]; ok {
		return name, value, true
	}
	found := ""
	var value string
	for key, candidate := range props {
		if !strings.EqualFold(key, name) {
			continue
		}
		if found == "" || key < found {
			found = key
			value = candidate
		}
	}
	return found, value, found != ""
}
