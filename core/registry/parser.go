package registry

import (
	"regexp"
	"strings"

	"github.com/artpar/apiref/domain/collection"
	"github.com/artpar/apiref/domain/ref"
)

// collectionPathPattern splits an optional "api.collection::" prefix off a
// collection path.
var collectionPathPattern = regexp.MustCompile(
	`^(?:([a-zA-Z_]+(?:\.[a-zA-Z0-9_]+)+)::)?(.+)$`)

// Parser turns collection-path text, or bare parameter values, into a
// Reference for one collection. Parsers are owned by a Registry and hold
// a non-owning back-reference to it for default lookups.
type Parser struct {
	reg    *Registry
	schema collection.Schema
}

// Schema returns the collection this parser handles.
func (p *Parser) Schema() collection.Schema {
	return p.schema
}

// Parse builds a reference from a collection path. An empty path means
// every parameter comes from context or defaults. baseURL overrides the
// schema endpoint when non-empty.
func (p *Parser) Parse(path string, context map[string]ref.Resolver, resolve bool, baseURL string) (*ref.Reference, error) {
	values := make(map[string]string)
	if path != "" {
		fields, err := p.fields(path)
		if err != nil {
			return nil, err
		}
		for i, param := range p.schema.OrderedParams {
			if fields[i] != "" {
				values[param] = fields[i]
			}
		}
	}
	return p.newRef(values, context, path, resolve, baseURL)
}

// FromValues builds a reference from already-extracted parameter values
// (URL matching, storage shorthand, Create). displayPath is the original
// input, kept for error messages.
func (p *Parser) FromValues(values map[string]string, context map[string]ref.Resolver, displayPath string, resolve bool, baseURL string) (*ref.Reference, error) {
	return p.newRef(values, context, displayPath, resolve, baseURL)
}

func (p *Parser) newRef(values map[string]string, context map[string]ref.Resolver, displayPath string, resolve bool, baseURL string) (*ref.Reference, error) {
	reg := p.reg
	schema := p.schema
	defaults := func(param string) (string, bool) {
		resolver, ok := reg.defaults.get(schema.API, schema.Name, param)
		if !ok {
			return "", false
		}
		v, err := resolver.Resolve()
		if err != nil || v == "" {
			// No value available; the field stays empty.
			return "", false
		}
		return v, true
	}
	r := ref.New(schema, baseURL, values, context, displayPath, defaults)
	if resolve {
		if err := r.Resolve(); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// fields maps a collection path onto the ordered parameters. Legal
// shapes for N params: a leading slash followed by exactly N fields, or
// no leading slash and the terminal field alone, all but the first
// field, or all N fields. Missing leading fields come back empty, to be
// filled during resolution.
func (p *Parser) fields(path string) ([]string, error) {
	match := collectionPathPattern.FindStringSubmatch(path)
	if match == nil {
		return nil, &InvalidResourceError{Line: path}
	}
	prefix, rest := match[1], match[2]

	if prefix != "" && prefix != p.schema.ID() {
		return nil, &WrongCollectionError{
			Expected: p.schema.ID(),
			Got:      prefix,
			Path:     path,
		}
	}

	hasAll := strings.HasPrefix(rest, "/")
	supplied := strings.Split(rest, "/")
	if hasAll {
		supplied = supplied[1:]
	}

	total := len(p.schema.OrderedParams)
	countErr := &FieldCountError{Path: rest, OrderedParams: p.schema.OrderedParams}

	if hasAll && len(supplied) != total {
		return nil, countErr
	}
	if len(supplied) > total {
		return nil, countErr
	}
	if !hasAll && len(supplied) != 1 && len(supplied) != total-1 && len(supplied) != total {
		return nil, countErr
	}
	// A literal empty field at any position is ambiguous.
	for _, f := range supplied {
		if f == "" {
			return nil, countErr
		}
	}

	fields := make([]string, total)
	copy(fields[total-len(supplied):], supplied)
	return fields, nil
}

// String renders the shape this parser accepts.
func (p *Parser) String() string {
	var b strings.Builder
	b.WriteString("[" + p.schema.ID() + "::]")
	for _, param := range p.schema.OrderedParams {
		b.WriteString("/" + param)
	}
	return b.String()
}
