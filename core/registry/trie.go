package registry

import (
	"net/url"
	"strings"
)

// node is one level of the URL-matching trie. Children are keyed by path
// segment: either a literal token or a single "{param}" placeholder. A
// non-nil parser marks that a URL may end at this level. The trie only
// ever grows, so URLs issued under superseded API versions keep parsing
// for the life of the process.
type node struct {
	children map[string]*node
	parser   *Parser
}

func newNode() *node {
	return &node{children: make(map[string]*node)}
}

func isPlaceholder(token string) bool {
	return strings.HasPrefix(token, "{") && strings.HasSuffix(token, "}")
}

// insert adds a token path for a parser, reusing existing branches.
// A level holds either literal children or exactly one placeholder child;
// mixing the two is rejected at registration so that matching never has
// to guess a branch's type.
func (n *node) insert(tokens []string, p *Parser) error {
	cur := n
	for _, token := range tokens {
		child, ok := cur.children[token]
		if !ok {
			if err := cur.checkBranchType(token); err != nil {
				return err
			}
			child = newNode()
			cur.children[token] = child
		}
		cur = child
	}
	if cur.parser != nil && cur.parser.schema.ID() != p.schema.ID() {
		return &AmbiguousPathError{
			Path:     strings.Join(tokens, "/"),
			Existing: cur.parser.schema.ID(),
			Claiming: p.schema.ID(),
		}
	}
	cur.parser = p
	return nil
}

func (n *node) checkBranchType(token string) error {
	if len(n.children) == 0 {
		return nil
	}
	if isPlaceholder(token) {
		return &MixedBranchError{Token: token, Siblings: n.childKeys()}
	}
	for key := range n.children {
		if isPlaceholder(key) {
			return &MixedBranchError{Token: token, Siblings: n.childKeys()}
		}
	}
	return nil
}

func (n *node) childKeys() []string {
	keys := make([]string, 0, len(n.children))
	for k := range n.children {
		keys = append(keys, k)
	}
	return keys
}

// walk matches URL tokens against the trie. Literal children match
// exactly; a lone placeholder child captures the token as a parameter
// value. When the placeholder's subtree is a bare leaf, all remaining
// tokens are joined with "/" as the value: resource names may themselves
// contain slashes. rawURL is only used for error messages.
func (n *node) walk(tokens []string, rawURL string) (*Parser, map[string]string, error) {
	cur := n
	params := make(map[string]string)

	for i := 0; i < len(tokens); i++ {
		token := tokens[i]
		if child, ok := cur.children[token]; ok {
			cur = child
			continue
		}
		if len(cur.children) != 1 {
			return nil, nil, &InvalidResourceError{Line: rawURL}
		}
		var key string
		var child *node
		for k, c := range cur.children {
			key, child = k, c
		}
		if !isPlaceholder(key) {
			return nil, nil, &InvalidResourceError{Line: rawURL}
		}
		name := key[1 : len(key)-1]
		if child.parser != nil && len(child.children) == 0 {
			// Terminal collapse: the rest of the URL is one value.
			params[name] = unescape(strings.Join(tokens[i:], "/"))
			cur = child
			break
		}
		params[name] = unescape(token)
		cur = child
	}

	if cur.parser == nil {
		return nil, nil, &InvalidResourceError{Line: rawURL}
	}
	return cur.parser, params, nil
}

func unescape(s string) string {
	out, err := url.PathUnescape(s)
	if err != nil {
		return s
	}
	return out
}

// clone deep-copies the trie spine, translating parser pointers through
// remap so the copies point at the cloned registry.
func (n *node) clone(remap func(*Parser) *Parser) *node {
	out := newNode()
	if n.parser != nil {
		out.parser = remap(n.parser)
	}
	for key, child := range n.children {
		out.children[key] = child.clone(remap)
	}
	return out
}
