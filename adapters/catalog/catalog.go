// Package catalog loads API collection catalogs from YAML files and
// serves them to the registry, with optional hot reload.
package catalog

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/artpar/apiref/domain/collection"
)

// catalogFile is the on-disk YAML shape.
type catalogFile struct {
	APIs []apiEntry `yaml:"apis"`
}

type apiEntry struct {
	Name           string         `yaml:"name"`
	DefaultVersion string         `yaml:"default_version"`
	Versions       []versionEntry `yaml:"versions"`
}

type versionEntry struct {
	Version     string            `yaml:"version"`
	BaseURL     string            `yaml:"base_url"`
	Collections []collectionEntry `yaml:"collections"`
}

type collectionEntry struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// Catalog is an immutable snapshot of one catalog file. It implements
// ports.CatalogSource.
type Catalog struct {
	defaultVersions map[string]string
	versions        map[string]map[string][]collection.Schema
}

// Load reads a catalog from a YAML file. Environment variables in the
// file are expanded before parsing. Every schema is validated; a single
// bad entry fails the whole load so a reload never installs a partially
// broken catalog.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	data = []byte(os.ExpandEnv(string(data)))

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	return build(file)
}

func build(file catalogFile) (*Catalog, error) {
	c := &Catalog{
		defaultVersions: make(map[string]string, len(file.APIs)),
		versions:        make(map[string]map[string][]collection.Schema, len(file.APIs)),
	}

	for _, api := range file.APIs {
		if api.Name == "" {
			return nil, fmt.Errorf("catalog: api with no name")
		}
		if _, ok := c.versions[api.Name]; ok {
			return nil, fmt.Errorf("catalog: duplicate api %q", api.Name)
		}
		if len(api.Versions) == 0 {
			return nil, fmt.Errorf("catalog: api %q has no versions", api.Name)
		}

		byVersion := make(map[string][]collection.Schema, len(api.Versions))
		for _, ver := range api.Versions {
			if ver.Version == "" {
				return nil, fmt.Errorf("catalog: api %q has a version entry with no version", api.Name)
			}
			if _, ok := byVersion[ver.Version]; ok {
				return nil, fmt.Errorf("catalog: api %q duplicate version %q", api.Name, ver.Version)
			}

			schemas := make([]collection.Schema, 0, len(ver.Collections))
			for _, col := range ver.Collections {
				s := collection.Schema{
					API:           api.Name,
					Version:       ver.Version,
					Name:          col.Name,
					OrderedParams: collection.TemplateParams(col.Path),
					Path:          col.Path,
					BaseURL:       ver.BaseURL,
				}
				if err := s.Validate(); err != nil {
					return nil, fmt.Errorf("catalog: %w", err)
				}
				schemas = append(schemas, s)
			}
			byVersion[ver.Version] = schemas
		}

		defaultVersion := api.DefaultVersion
		if defaultVersion == "" {
			// A single version is its own default.
			if len(api.Versions) == 1 {
				defaultVersion = api.Versions[0].Version
			} else {
				return nil, fmt.Errorf("catalog: api %q has multiple versions and no default_version", api.Name)
			}
		}
		if _, ok := byVersion[defaultVersion]; !ok {
			return nil, fmt.Errorf("catalog: api %q default_version %q not among its versions", api.Name, defaultVersion)
		}

		c.defaultVersions[api.Name] = defaultVersion
		c.versions[api.Name] = byVersion
	}

	return c, nil
}

// APIs returns the names of all cataloged APIs, sorted.
func (c *Catalog) APIs() []string {
	names := make([]string, 0, len(c.versions))
	for name := range c.versions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultVersion returns the version an API resolves to when none is
// given.
func (c *Catalog) DefaultVersion(api string) (string, error) {
	v, ok := c.defaultVersions[api]
	if !ok {
		return "", fmt.Errorf("catalog: unknown api %q", api)
	}
	return v, nil
}

// Collections returns the schemas of one API version.
func (c *Catalog) Collections(api, version string) ([]collection.Schema, error) {
	byVersion, ok := c.versions[api]
	if !ok {
		return nil, fmt.Errorf("catalog: unknown api %q", api)
	}
	schemas, ok := byVersion[version]
	if !ok {
		return nil, fmt.Errorf("catalog: api %q has no version %q", api, version)
	}
	out := make([]collection.Schema, len(schemas))
	copy(out, schemas)
	return out, nil
}

// Versions returns the version names of one API, sorted.
func (c *Catalog) Versions(api string) ([]string, error) {
	byVersion, ok := c.versions[api]
	if !ok {
		return nil, fmt.Errorf("catalog: unknown api %q", api)
	}
	names := make([]string, 0, len(byVersion))
	for v := range byVersion {
		names = append(names, v)
	}
	sort.Strings(names)
	return names, nil
}
