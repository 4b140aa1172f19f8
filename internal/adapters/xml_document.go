package adapters

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"msbuild-packages/internal/ports"
)

var errDTDNotAllowed = errors.New("DTD and entity declarations are not allowed")

// XMLDocumentParser parses untrusted XML into an in-memory element tree.
//
// The decoder runs in strict mode with no custom entity table, so only the
// predefined XML entities are expanded and nothing is fetched from outside
// the input. Documents containing a DOCTYPE or any other <! directive are
// rejected. XInclude elements are kept as ordinary elements.
type XMLDocumentParser struct {
	limits XMLLimits
}

func NewSecureXMLParser(limits XMLLimits) (*XMLDocumentParser, error) {
	resolved, err := resolveXMLLimits(limits)
	if err != nil {
		return nil, err
	}
	return &XMLDocumentParser{limits: resolved}, nil
}

func (p *XMLDocumentParser) Limits() XMLLimits {
	return p.limits
}

func (p *XMLDocumentParser) Parse(r io.Reader) (ports.XMLDocument, error) {
	doc, err := p.parse(r)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (p *XMLDocumentParser) parse(r io.Reader) (*xmlDocument, error) {
	if r == nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("xml input is nil")
	}
	limited := &io.LimitedReader{R: r, N: p.limits.MaxBytes + 1}
	// Strips a UTF-8 byte order mark and transcodes UTF-16 input marked
	// with a BOM, which Visual Studio still emits for older projects.
	decoder := xml.NewDecoder(transform.NewReader(limited, unicode.BOMOverride(transform.Nop)))
	decoder.Strict = true
	decoder.CharsetReader = charsetReader

	var root *xmlElement
	var stack []*xmlElement
	for {
		token, err := decoder.Token()
		if limited.N <= 0 {
			return nil, malformedXML(fmt.Errorf("document exceeds %d bytes", p.limits.MaxBytes))
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, malformedXML(err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			if len(stack) >= p.limits.MaxDepth {
				return nil, malformedXML(fmt.Errorf("element depth exceeds %d", p.limits.MaxDepth))
			}
			if len(t.Attr) > p.limits.MaxAttrs {
				return nil, malformedXML(fmt.Errorf("element <%s> has more than %d attributes", t.Name.Local, p.limits.MaxAttrs))
			}
			element := &xmlElement{name: t.Name.Local, attrs: append([]xml.Attr(nil), t.Attr...)}
			if len(stack) == 0 {
				if root != nil {
					return nil, malformedXML(fmt.Errorf("unexpected second root element <%s>", t.Name.Local))
				}
				root = element
			} else {
				stack[len(stack)-1].appendChild(element)
			}
			stack = append(stack, element)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) == 0 {
				if strings.TrimSpace(string(t)) != "" {
					return nil, malformedXML(errors.New("character data outside root element"))
				}
				continue
			}
			stack[len(stack)-1].appendText(string(t))
		case xml.Directive:
			return nil, malformedXML(errDTDNotAllowed)
		}
	}

	if root == nil {
		return nil, malformedXML(errors.New("document has no root element"))
	}
	return &xmlDocument{root: root}, nil
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "utf-8", "utf8", "":
		return input, nil
	case "utf-16", "utf-16le", "utf-16be":
		// Already transcoded from the byte order mark.
		return input, nil
	}
	encoding, err := ianaindex.IANA.Encoding(label)
	if err != nil || encoding == nil {
		return nil, fmt.Errorf("unsupported encoding %q", label)
	}
	return encoding.NewDecoder().Reader(input), nil
}

func malformedXML(cause error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg("malformed XML document").
		WithCause(cause)
}

type xmlDocument struct {
	root *xmlElement
}

func (d *xmlDocument) Select(name string) (ports.XMLNodeSet, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("element name is required")
	}
	found := d.root.elements(name)
	set := &xmlNodeSet{nodes: make([]ports.XMLNode, 0, len(found))}
	for _, element := range found {
		set.nodes = append(set.nodes, element)
	}
	return set, nil
}

type xmlContent struct {
	text  string
	child *xmlElement
}

type xmlElement struct {
	name     string
	attrs    []xml.Attr
	children []*xmlElement
	content  []xmlContent
}

func (e *xmlElement) appendChild(child *xmlElement) {
	e.children = append(e.children, child)
	e.content = append(e.content, xmlContent{child: child})
}

func (e *xmlElement) appendText(text string) {
	e.content = append(e.content, xmlContent{text: text})
}

func (e *xmlElement) Attr(name string) (string, bool) {
	for _, attr := range e.attrs {
		if attr.Name.Space == "xmlns" {
			continue
		}
		if attr.Name.Local == name {
			return attr.Value, true
		}
	}
	return "", false
}

func (e *xmlElement) Child(name string) (ports.XMLNode, bool) {
	for _, child := range e.children {
		if child.name == name {
			return child, true
		}
	}
	return nil, false
}

func (e *xmlElement) Text() string {
	var builder strings.Builder
	e.writeText(&builder)
	return builder.String()
}

func (e *xmlElement) writeText(builder *strings.Builder) {
	for _, item := range e.content {
		if item.child != nil {
			item.child.writeText(builder)
			continue
		}
		builder.WriteString(item.text)
	}
}

// elements returns every element with the given local name at any depth
// below and including e, in document order.
func (e *xmlElement) elements(name string) []*xmlElement {
	var found []*xmlElement
	var walk func(*xmlElement)
	walk = func(element *xmlElement) {
		if element.name == name {
			found = append(found, element)
		}
		for _, child := range element.children {
			walk(child)
		}
	}
	walk(e)
	return found
}

type xmlNodeSet struct {
	nodes []ports.XMLNode
}

func (s *xmlNodeSet) Len() int {
	return len(s.nodes)
}

func (s *xmlNodeSet) Item(i int) ports.XMLNode {
	if i < 0 || i >= len(s.nodes) {
		return nil
	}
	return s.nodes[i]
}

var _ ports.XMLParserPort = (*XMLDocumentParser)(nil)
