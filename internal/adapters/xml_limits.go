package adapters

import (
	"cmp"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

const (
	defaultXMLMaxDepth = 256
	defaultXMLMaxAttrs = 256
	defaultXMLMaxBytes = 16 << 20
)

// XMLLimits bounds the resources spent parsing a single untrusted XML
// document. A zero field selects its default.
type XMLLimits struct {
	MaxDepth int
	MaxAttrs int
	MaxBytes int64
}

func DefaultXMLLimits() XMLLimits {
	return XMLLimits{
		MaxDepth: defaultXMLMaxDepth,
		MaxAttrs: defaultXMLMaxAttrs,
		MaxBytes: defaultXMLMaxBytes,
	}
}

func resolveXMLLimits(limits XMLLimits) (XMLLimits, error) {
	if limits.MaxDepth < 0 {
		return XMLLimits{}, invalidXMLLimit("xml max depth must be >= 0")
	}
	if limits.MaxAttrs < 0 {
		return XMLLimits{}, invalidXMLLimit("xml max attrs must be >= 0")
	}
	if limits.MaxBytes < 0 {
		return XMLLimits{}, invalidXMLLimit("xml max bytes must be >= 0")
	}
	return XMLLimits{
		MaxDepth: cmp.Or(limits.MaxDepth, defaultXMLMaxDepth),
		MaxAttrs: cmp.Or(limits.MaxAttrs, defaultXMLMaxAttrs),
		MaxBytes: cmp.Or(limits.MaxBytes, int64(defaultXMLMaxBytes)),
	}, nil
}

func invalidXMLLimit(msg string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(msg)
}
