package core

import "errors"

const parseFailureMsg = "unable to parse MSBuild project file"

var errNoPackageReferences = errors.New("no package references found")

// ParseFailure reports that a project document as a whole could not be
// parsed or queried. Cause holds the underlying error.
type ParseFailure struct {
	Cause error
}

func (e *ParseFailure) Error() string {
	if e.Cause == nil {
		return parseFailureMsg
	}
	return parseFailureMsg + ": " + e.Cause.Error()
}

func (e *ParseFailure) Unwrap() error {
	return e.Cause
}

// IsParseFailure reports whether err or any error it wraps is a ParseFailure.
func IsParseFailure(err error) bool {
	var failure *ParseFailure
	return errors.As(err, &failure)
}

func newParseFailure(cause error) error {
	var failure *ParseFailure
	if errors.As(cause, &failure) {
		return failure
	}
	return &ParseFailure{Cause: cause}
}
