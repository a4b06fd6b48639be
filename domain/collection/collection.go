// Package collection provides collection schema value types and pure
// template functions. A collection describes one resource type: its owning
// API and version, the ordered parameters that identify an instance, and
// the relative URL template those parameters expand into.
package collection

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// placeholderPattern matches {param} placeholders in a URL template.
var placeholderPattern = regexp.MustCompile(`\{([^}]+)\}`)

// namePattern matches a dotted collection id like "svc.projects.widgets".
var namePattern = regexp.MustCompile(`^[a-zA-Z_]+(?:\.[a-zA-Z0-9_]+)+$`)

// legacyDecodedPrefixes lists collection id prefixes whose self-links are
// percent-decoded after composition, for compatibility with services that
// hand out unescaped links.
var legacyDecodedPrefixes = []string{"compute.", "clouduseraccounts.", "storage."}

// Schema describes a single resource collection (immutable value type).
type Schema struct {
	API     string // owning API name, e.g. "svc"
	Version string // API version, e.g. "v1"

	// Name is the collection name without the API prefix,
	// e.g. "projects.widgets".
	Name string

	// OrderedParams are the hierarchical identifying parameters, outermost
	// first. The last entry is the terminal parameter naming the specific
	// instance; it can never be filled from a resolver or default.
	OrderedParams []string

	// Path is the relative URL template with exactly one {param}
	// placeholder per ordered parameter, plus optional literal segments.
	Path string

	// BaseURL is the service endpoint the relative path is appended to.
	// Always ends with "/".
	BaseURL string
}

// ID returns the full dotted collection id, e.g. "svc.projects.widgets".
func (s Schema) ID() string {
	return s.API + "." + s.Name
}

// Terminal returns the terminal (instance-naming) parameter.
func (s Schema) Terminal() string {
	if len(s.OrderedParams) == 0 {
		return ""
	}
	return s.OrderedParams[len(s.OrderedParams)-1]
}

// LegacyDecodedLink reports whether self-links for this collection are
// percent-decoded after composition.
func (s Schema) LegacyDecodedLink() bool {
	id := s.ID()
	for _, prefix := range legacyDecodedPrefixes {
		if strings.HasPrefix(id, prefix) {
			return true
		}
	}
	return false
}

// Validate checks the schema invariants. A schema that fails validation is
// a catalog defect, not a user error.
func (s Schema) Validate() error {
	if s.API == "" {
		return fmt.Errorf("collection: missing api name")
	}
	if s.Version == "" {
		return fmt.Errorf("collection %q: missing api version", s.Name)
	}
	if !namePattern.MatchString(s.ID()) {
		return fmt.Errorf("collection %q: malformed id", s.ID())
	}
	if len(s.OrderedParams) == 0 {
		return fmt.Errorf("collection %q: no ordered params", s.ID())
	}
	if s.BaseURL == "" || !strings.HasSuffix(s.BaseURL, "/") {
		return fmt.Errorf("collection %q: base url must end with /", s.ID())
	}
	placeholders := TemplateParams(s.Path)
	if len(placeholders) != len(s.OrderedParams) {
		return fmt.Errorf("collection %q: template %q has %d placeholders for %d params",
			s.ID(), s.Path, len(placeholders), len(s.OrderedParams))
	}
	for i, p := range placeholders {
		if p != s.OrderedParams[i] {
			return fmt.Errorf("collection %q: template placeholder %q does not match param %q",
				s.ID(), p, s.OrderedParams[i])
		}
	}
	return nil
}

// TemplateParams extracts placeholder names from a URL template in order.
func TemplateParams(path string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(path, -1)
	params := make([]string, 0, len(matches))
	for _, m := range matches {
		params = append(params, m[1])
	}
	return params
}

// Expand substitutes values into a URL template. Each value is escaped as
// a path segment; placeholders with no value are left untouched.
func Expand(path string, values map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(path, func(ph string) string {
		name := ph[1 : len(ph)-1]
		v, ok := values[name]
		if !ok {
			return ph
		}
		return url.PathEscape(v)
	})
}
