package ports

import "io"

// XMLNode is a read-only view over a single XML element.
type XMLNode interface {
	// Attr returns the value of the attribute with the given local name.
	Attr(name string) (string, bool)
	// Child returns the first direct child element with the given local name.
	Child(name string) (XMLNode, bool)
	// Text returns the concatenated character data of the element and all
	// of its descendants.
	Text() string
}

// XMLNodeSet is an ordered selection of elements. A nil set means the
// query could not be evaluated; an empty set means nothing matched.
type XMLNodeSet interface {
	Len() int
	Item(i int) XMLNode
}

// XMLDocument is a parsed XML document that can be queried by element name.
type XMLDocument interface {
	// Select returns every element with the given local name at any depth,
	// in document order.
	Select(name string) (XMLNodeSet, error)
}

// XMLParserPort builds XMLDocuments from untrusted input.
type XMLParserPort interface {
	Parse(r io.Reader) (XMLDocument, error)
}
