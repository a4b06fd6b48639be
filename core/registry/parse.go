package registry

import (
	"errors"
	"regexp"
	"strings"

	"github.com/artpar/apiref/domain/ref"
)

// Storage resources get two extra spellings beyond the generic grammar:
// the gs:// shorthand and two well-known URL shapes that the trie does
// not cover.
const (
	storageScheme           = "gs://"
	storagePathStyleURL     = "https://www.googleapis.com/storage/v1/"
	storageHostStyleURL     = "https://storage.googleapis.com/"
	storageBucketCollection = "storage.buckets"
	storageObjectCollection = "storage.objects"
)

var storageShorthandPattern = regexp.MustCompile(`^gs://([^/]*)(?:/(.*))?$`)

// Parse is the front door: it accepts full URLs, gs:// shorthand, and
// collection paths, dispatching in that order. collectionID names the
// expected collection; when empty it is inferred from a "collection::"
// prefix in line. With enforceCollection set, a URL resolving into a
// different collection than collectionID fails. With resolve set, the
// returned reference is strictly resolved.
func (r *Registry) Parse(line string, context map[string]ref.Resolver, collectionID string, enforceCollection, resolve bool) (*ref.Reference, error) {
	if line != "" {
		if strings.HasPrefix(line, "https://") || strings.HasPrefix(line, "http://") {
			parsed, err := r.ParseURL(line)
			if err != nil {
				var invalid *InvalidResourceError
				if !errors.As(err, &invalid) {
					return nil, err
				}
				fallback, ok, ferr := r.storageURLFallback(line, resolve)
				if ferr != nil {
					return nil, ferr
				}
				if !ok {
					return nil, err
				}
				return fallback, nil
			}
			if enforceCollection && collectionID != "" && parsed.Collection() != collectionID {
				return nil, &WrongCollectionError{
					Expected: collectionID,
					Got:      parsed.Collection(),
					Path:     parsed.WeakSelfLink(),
				}
			}
			return parsed, nil
		}
		if strings.HasPrefix(line, storageScheme) {
			return r.ParseStorageShorthand(line, resolve)
		}
	}

	if collectionID == "" {
		prefix, _, found := strings.Cut(line, "::")
		if line == "" || !found || !collectionIDPattern.MatchString(prefix) {
			return nil, &UnknownCollectionError{Line: line}
		}
		collectionID = prefix
	}

	// Object paths carry their bucket inline; split it out unless the
	// context already pins both halves.
	if collectionID == storageObjectCollection {
		return r.parseObjectPath(line, context, resolve)
	}

	return r.ParseCollectionPath(collectionID, line, context, resolve)
}

var collectionIDPattern = regexp.MustCompile(`^[a-zA-Z_]+(?:\.[a-zA-Z0-9_]+)+$`)

// ParseStorageShorthand parses "gs://bucket" into a bucket reference and
// "gs://bucket/object" into an object reference, bypassing both the trie
// and the collection grammar.
func (r *Registry) ParseStorageShorthand(rawURL string, resolve bool) (*ref.Reference, error) {
	match := storageShorthandPattern.FindStringSubmatch(rawURL)
	if match == nil {
		return nil, &InvalidResourceError{Hint: "invalid storage url", Line: rawURL}
	}
	bucket, object := match[1], match[2]
	if object != "" {
		return r.ParseCollectionPath(storageObjectCollection, "", map[string]ref.Resolver{
			"bucket": ref.Literal(bucket),
			"object": ref.Literal(object),
		}, resolve)
	}
	return r.ParseCollectionPath(storageBucketCollection, "", map[string]ref.Resolver{
		"bucket": ref.Literal(bucket),
	}, resolve)
}

// storageURLFallback recognizes the two storage URL shapes the trie does
// not model: path-style ".../storage/v1/b/<bucket>/o/<object>" and
// host-style "storage host/<bucket>[/<object>]". ok is false when rawURL
// is neither.
func (r *Registry) storageURLFallback(rawURL string, resolve bool) (*ref.Reference, bool, error) {
	if rest, found := strings.CutPrefix(rawURL, storagePathStyleURL); found {
		parts := strings.SplitN(rest, "/", 4)
		if len(parts) != 4 || parts[0] != "b" || parts[2] != "o" {
			return nil, false, nil
		}
		parsed, err := r.ParseCollectionPath(storageObjectCollection, "", map[string]ref.Resolver{
			"bucket": ref.Literal(parts[1]),
			"object": ref.Literal(parts[3]),
		}, resolve)
		return parsed, true, err
	}

	if rest, found := strings.CutPrefix(rawURL, storageHostStyleURL); found && rest != "" {
		bucket, object, hasObject := strings.Cut(rest, "/")
		if hasObject {
			parsed, err := r.ParseCollectionPath(storageObjectCollection, "", map[string]ref.Resolver{
				"bucket": ref.Literal(bucket),
				"object": ref.Literal(object),
			}, resolve)
			return parsed, true, err
		}
		parsed, err := r.ParseCollectionPath(storageBucketCollection, "", map[string]ref.Resolver{
			"bucket": ref.Literal(bucket),
		}, resolve)
		return parsed, true, err
	}

	return nil, false, nil
}

func (r *Registry) parseObjectPath(line string, context map[string]ref.Resolver, resolve bool) (*ref.Reference, error) {
	merged := make(map[string]ref.Resolver, len(context)+2)
	for k, v := range context {
		merged[k] = v
	}
	_, hasBucket := merged["bucket"]
	_, hasObject := merged["object"]
	if !hasBucket || !hasObject {
		line = strings.TrimPrefix(line, storageObjectCollection+"::")
		bucket, object, found := strings.Cut(line, "/")
		if !found {
			return nil, &InvalidResourceError{Hint: "expected bucket/object", Line: line}
		}
		merged["bucket"] = ref.Literal(bucket)
		merged["object"] = ref.Literal(object)
	}
	return r.ParseCollectionPath(storageObjectCollection, "", merged, resolve)
}
