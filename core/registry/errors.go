package registry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/artpar/apiref/domain/ref"
)

// -----------------------------------------------------------------------------
// User errors: expected, recoverable outcomes of bad input. Surfaced
// verbatim for display.
// -----------------------------------------------------------------------------

// InvalidResourceError means a line or URL could not be matched against
// any known resource shape.
type InvalidResourceError struct {
	Line string
	Hint string // optional detail prepended to the message
}

func (e *InvalidResourceError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: [%s]", e.Hint, e.Line)
	}
	return fmt.Sprintf("could not parse resource: [%s]", e.Line)
}

// UnknownCollectionError means no collection was given and none could be
// inferred, or the named collection does not exist in the catalog.
type UnknownCollectionError struct {
	Line string
}

func (e *UnknownCollectionError) Error() string {
	return fmt.Sprintf("unknown collection for [%s]", e.Line)
}

// WrongCollectionError means the input named or implied a collection other
// than the one required.
type WrongCollectionError struct {
	Expected string
	Got      string
	Path     string
}

func (e *WrongCollectionError) Error() string {
	return fmt.Sprintf("wrong collection: expected [%s], got [%s], for path [%s]",
		e.Expected, e.Got, e.Path)
}

// FieldCountError means a collection path supplied the wrong number of
// fields, or an empty field, for its collection's ordered parameters.
type FieldCountError struct {
	Path          string
	OrderedParams []string
}

func (e *FieldCountError) Error() string {
	upper := make([]string, len(e.OrderedParams))
	for i, p := range e.OrderedParams {
		upper[i] = strings.ToUpper(p)
	}
	possibilities := []string{
		strings.Join(upper[1:], "/"),
		"/" + strings.Join(upper, "/"),
	}
	if len(e.OrderedParams) > 2 {
		possibilities = append([]string{upper[len(upper)-1]}, possibilities...)
	}
	return fmt.Sprintf("wrong number of fields: [%s] does not match any of %s",
		e.Path, strings.Join(possibilities, ", "))
}

// InvalidEndpointError means a URL had no scheme or no recognizable
// endpoint root.
type InvalidEndpointError struct {
	URL string
}

func (e *InvalidEndpointError) Error() string {
	return fmt.Sprintf("invalid endpoint: [%s]", e.URL)
}

// IsUserError reports whether err is caused by user input rather than a
// registration-time defect. User errors are safe to display verbatim.
func IsUserError(err error) bool {
	var (
		invalidResource *InvalidResourceError
		unknownColl     *UnknownCollectionError
		wrongColl       *WrongCollectionError
		fieldCount      *FieldCountError
		invalidEndpoint *InvalidEndpointError
		unknownField    *ref.UnknownFieldError
	)
	return errors.As(err, &invalidResource) ||
		errors.As(err, &unknownColl) ||
		errors.As(err, &wrongColl) ||
		errors.As(err, &fieldCount) ||
		errors.As(err, &invalidEndpoint) ||
		errors.As(err, &unknownField)
}

// catalogMissError marks a failed api or version lookup in the catalog.
// Parse entry points translate a miss into the matching user error;
// registration-time configuration defects pass through untouched.
type catalogMissError struct {
	err error
}

func (e *catalogMissError) Error() string { return e.err.Error() }

func (e *catalogMissError) Unwrap() error { return e.err }

func isCatalogMiss(err error) bool {
	var miss *catalogMissError
	return errors.As(err, &miss)
}

// -----------------------------------------------------------------------------
// Configuration errors: registration-time defects. Not expected to be
// caught during normal resolution.
// -----------------------------------------------------------------------------

// AmbiguousAPIError means two distinct APIs claimed the same collection id
// without an explicit version switch.
type AmbiguousAPIError struct {
	Collection string
	BaseURLs   []string
}

func (e *AmbiguousAPIError) Error() string {
	return fmt.Sprintf("collection [%s] defined in multiple APIs: %v",
		e.Collection, e.BaseURLs)
}

// AmbiguousPathError means one URL path is claimed by two different
// collections.
type AmbiguousPathError struct {
	Path     string
	Existing string
	Claiming string
}

func (e *AmbiguousPathError) Error() string {
	return fmt.Sprintf("path [%s] already registered for collection [%s], cannot register [%s]",
		e.Path, e.Existing, e.Claiming)
}

// MixedBranchError means a trie level would mix literal children with a
// parameter child, which would make URL matching ambiguous.
type MixedBranchError struct {
	Token    string
	Siblings []string
}

func (e *MixedBranchError) Error() string {
	return fmt.Sprintf("url segment [%s] cannot share a level with %v: a level holds either literals or a single parameter",
		e.Token, e.Siblings)
}
