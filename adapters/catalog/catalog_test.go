package catalog_test

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/artpar/apiref/adapters/catalog"
)

const sampleCatalog = `
apis:
  - name: svc
    default_version: v1
    versions:
      - version: v1
        base_url: "https://svc.googleapis.com/v1/"
        collections:
          - name: projects
            path: "projects/{project}"
          - name: projects.widgets
            path: "projects/{project}/widgets/{widget}"
      - version: v2
        base_url: "https://svc.googleapis.com/v2/"
        collections:
          - name: projects
            path: "projects/{project}"
  - name: storage
    versions:
      - version: v1
        base_url: "https://www.googleapis.com/storage/v1/"
        collections:
          - name: buckets
            path: "b/{bucket}"
          - name: objects
            path: "b/{bucket}/o/{object}"
`

func TestLoad_ValidCatalog(t *testing.T) {
	cat := writeAndLoad(t, sampleCatalog)

	if got := cat.APIs(); !reflect.DeepEqual(got, []string{"storage", "svc"}) {
		t.Errorf("APIs() = %v, want [storage svc]", got)
	}

	v, err := cat.DefaultVersion("svc")
	if err != nil || v != "v1" {
		t.Errorf("DefaultVersion(svc) = %q, %v, want v1, nil", v, err)
	}

	schemas, err := cat.Collections("svc", "v1")
	if err != nil {
		t.Fatalf("Collections error: %v", err)
	}
	if len(schemas) != 2 {
		t.Fatalf("len(Collections) = %d, want 2", len(schemas))
	}
	widgets := schemas[1]
	if widgets.ID() != "svc.projects.widgets" {
		t.Errorf("ID = %s, want svc.projects.widgets", widgets.ID())
	}
	if !reflect.DeepEqual(widgets.OrderedParams, []string{"project", "widget"}) {
		t.Errorf("OrderedParams = %v, want [project widget]", widgets.OrderedParams)
	}
	if widgets.BaseURL != "https://svc.googleapis.com/v1/" {
		t.Errorf("BaseURL = %s", widgets.BaseURL)
	}
}

func TestLoad_SingleVersionIsItsOwnDefault(t *testing.T) {
	cat := writeAndLoad(t, sampleCatalog)

	v, err := cat.DefaultVersion("storage")
	if err != nil || v != "v1" {
		t.Errorf("DefaultVersion(storage) = %q, %v, want v1, nil", v, err)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	os.Setenv("TEST_SVC_BASE", "https://svc.internal.example.com/v1/")
	defer os.Unsetenv("TEST_SVC_BASE")

	content := `
apis:
  - name: svc
    versions:
      - version: v1
        base_url: "${TEST_SVC_BASE}"
        collections:
          - name: projects
            path: "projects/{project}"
`
	cat := writeAndLoad(t, content)

	schemas, err := cat.Collections("svc", "v1")
	if err != nil {
		t.Fatalf("Collections error: %v", err)
	}
	if schemas[0].BaseURL != "https://svc.internal.example.com/v1/" {
		t.Errorf("BaseURL = %s, want expanded env value", schemas[0].BaseURL)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "invalid yaml",
			content: "apis: [\n",
		},
		{
			name: "api without name",
			content: `
apis:
  - versions:
      - version: v1
        base_url: "https://svc.googleapis.com/v1/"
        collections:
          - name: projects
            path: "projects/{project}"
`,
		},
		{
			name: "api without versions",
			content: `
apis:
  - name: svc
`,
		},
		{
			name: "multiple versions no default",
			content: `
apis:
  - name: svc
    versions:
      - version: v1
        base_url: "https://svc.googleapis.com/v1/"
        collections:
          - name: projects
            path: "projects/{project}"
      - version: v2
        base_url: "https://svc.googleapis.com/v2/"
        collections:
          - name: projects
            path: "projects/{project}"
`,
		},
		{
			name: "default version not defined",
			content: `
apis:
  - name: svc
    default_version: v9
    versions:
      - version: v1
        base_url: "https://svc.googleapis.com/v1/"
        collections:
          - name: projects
            path: "projects/{project}"
`,
		},
		{
			name: "base url without trailing slash",
			content: `
apis:
  - name: svc
    versions:
      - version: v1
        base_url: "https://svc.googleapis.com/v1"
        collections:
          - name: projects
            path: "projects/{project}"
`,
		},
		{
			name: "collection path without placeholders",
			content: `
apis:
  - name: svc
    versions:
      - version: v1
        base_url: "https://svc.googleapis.com/v1/"
        collections:
          - name: projects
            path: "projects"
`,
		},
		{
			name: "duplicate api",
			content: `
apis:
  - name: svc
    versions:
      - version: v1
        base_url: "https://svc.googleapis.com/v1/"
        collections:
          - name: projects
            path: "projects/{project}"
  - name: svc
    versions:
      - version: v2
        base_url: "https://svc.googleapis.com/v2/"
        collections:
          - name: projects
            path: "projects/{project}"
`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := writeAndLoadErr(t, tt.content); err == nil {
				t.Fatal("expected load error")
			}
		})
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	if _, err := catalog.Load("/nonexistent/catalog.yaml"); err == nil {
		t.Fatal("expected error for nonexistent file")
	}
}

func TestUnknownLookups(t *testing.T) {
	cat := writeAndLoad(t, sampleCatalog)

	if _, err := cat.DefaultVersion("nope"); err == nil {
		t.Error("DefaultVersion(nope) succeeded, want error")
	}
	if _, err := cat.Collections("nope", "v1"); err == nil {
		t.Error("Collections(nope, v1) succeeded, want error")
	}
	if _, err := cat.Collections("svc", "v9"); err == nil {
		t.Error("Collections(svc, v9) succeeded, want error")
	}
	if _, err := cat.Versions("nope"); err == nil {
		t.Error("Versions(nope) succeeded, want error")
	}
}

func TestVersions(t *testing.T) {
	cat := writeAndLoad(t, sampleCatalog)

	got, err := cat.Versions("svc")
	if err != nil {
		t.Fatalf("Versions error: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"v1", "v2"}) {
		t.Errorf("Versions(svc) = %v, want [v1 v2]", got)
	}
}

// Helpers

func writeAndLoad(t *testing.T, content string) *catalog.Catalog {
	t.Helper()
	cat, err := writeAndLoadErr(t, content)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	return cat
}

func writeAndLoadErr(t *testing.T, content string) (*catalog.Catalog, error) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	return catalog.Load(path)
}
