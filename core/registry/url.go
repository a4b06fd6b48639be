package registry

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/artpar/apiref/domain/ref"
)

// versionPattern recognizes path segments that denote an API version.
var versionPattern = regexp.MustCompile(`^(v\d+[a-z0-9]*|alpha|beta|head)$`)

func looksLikeVersion(segment string) bool {
	return versionPattern.MatchString(segment)
}

func splitPath(path string) []string {
	return strings.Split(strings.Trim(path, "/"), "/")
}

func apiNameFromCollection(collectionID string) string {
	return strings.SplitN(collectionID, ".", 2)[0]
}

// endpointParts is the result of tearing a resource URL apart: the api it
// belongs to, the version when the URL names one, and the resource path
// the trie walks over. resourcePath is always a suffix of the raw URL.
type endpointParts struct {
	api          string
	version      string // empty when the URL carries no version segment
	resourcePath string
}

// ParseURL matches a resource URL against the trie and returns the
// reference it denotes. A matched URL is definitionally fully specified,
// so no default resolution applies.
func (r *Registry) ParseURL(rawURL string) (*ref.Reference, error) {
	// Query and fragment never address a resource.
	if i := strings.IndexAny(rawURL, "?#"); i >= 0 {
		rawURL = rawURL[:i]
	}

	parts, err := r.splitURL(rawURL)
	if err != nil {
		return nil, err
	}

	version, err := r.ensureURLVersion(parts.api, parts.version)
	if err != nil {
		if isCatalogMiss(err) {
			return nil, &InvalidResourceError{Line: rawURL}
		}
		return nil, err
	}

	tokens := append([]string{parts.api, version}, strings.Split(parts.resourcePath, "/")...)
	parser, params, err := r.urlTrie.walk(tokens, rawURL)
	if err != nil {
		return nil, err
	}

	endpoint := rawURL[:len(rawURL)-len(parts.resourcePath)]
	return parser.FromValues(params, nil, rawURL, true, endpoint)
}

// splitURL infers (api, version, resource path) from a URL. The endpoint
// override table wins; otherwise hosts under a canonical suffix carry the
// api name as their subdomain with an optional version as the first path
// segment, and any other host is assumed to put api and version as the
// first two path segments.
func (r *Registry) splitURL(rawURL string) (endpointParts, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return endpointParts{}, &InvalidEndpointError{URL: rawURL}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return endpointParts{}, &InvalidEndpointError{URL: rawURL}
	}

	// Longest matching override wins so nested endpoints stay distinct.
	var matchAPI, matchEndpoint string
	for api, endpoint := range r.overrides {
		if strings.HasPrefix(rawURL, endpoint) && len(endpoint) > len(matchEndpoint) {
			matchAPI, matchEndpoint = api, endpoint
		}
	}
	if matchEndpoint != "" {
		rest := strings.TrimPrefix(strings.TrimPrefix(rawURL, matchEndpoint), "/")
		if rest == "" {
			return endpointParts{}, &InvalidResourceError{Line: rawURL}
		}
		version := ""
		if first, remainder, ok := strings.Cut(rest, "/"); ok && looksLikeVersion(first) {
			version, rest = first, remainder
		}
		if rest == "" {
			return endpointParts{}, &InvalidResourceError{Line: rawURL}
		}
		return endpointParts{api: matchAPI, version: version, resourcePath: rest}, nil
	}

	escaped := strings.TrimPrefix(u.EscapedPath(), "/")
	host := u.Hostname()

	for _, suffix := range r.suffixes {
		if host == suffix || !strings.HasSuffix(host, "."+suffix) {
			continue
		}
		api := strings.SplitN(host, ".", 2)[0]
		if api == "www" {
			// Path-style endpoint: api and version live in the path.
			break
		}
		version := ""
		rest := escaped
		if first, remainder, ok := strings.Cut(escaped, "/"); ok && looksLikeVersion(first) {
			version, rest = first, remainder
		}
		if rest == "" {
			return endpointParts{}, &InvalidResourceError{Line: rawURL}
		}
		return endpointParts{api: api, version: version, resourcePath: rest}, nil
	}

	segments := strings.SplitN(escaped, "/", 3)
	if len(segments) < 3 || segments[2] == "" {
		return endpointParts{}, &InvalidResourceError{Line: rawURL}
	}
	return endpointParts{api: segments[0], version: segments[1], resourcePath: segments[2]}, nil
}
