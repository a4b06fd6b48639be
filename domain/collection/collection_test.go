package collection

import (
	"reflect"
	"testing"
)

func validSchema() Schema {
	return Schema{
		API:           "svc",
		Version:       "v1",
		Name:          "projects.widgets",
		OrderedParams: []string{"project", "widget"},
		Path:          "projects/{project}/widgets/{widget}",
		BaseURL:       "https://svc.googleapis.com/v1/",
	}
}

func TestSchemaID(t *testing.T) {
	s := validSchema()
	if got := s.ID(); got != "svc.projects.widgets" {
		t.Fatalf("ID() = %q, want %q", got, "svc.projects.widgets")
	}
}

func TestSchemaTerminal(t *testing.T) {
	s := validSchema()
	if got := s.Terminal(); got != "widget" {
		t.Fatalf("Terminal() = %q, want %q", got, "widget")
	}
	if got := (Schema{}).Terminal(); got != "" {
		t.Fatalf("Terminal() on empty schema = %q, want empty", got)
	}
}

func TestLegacyDecodedLink(t *testing.T) {
	tests := []struct {
		api  string
		want bool
	}{
		{"compute", true},
		{"clouduseraccounts", true},
		{"storage", true},
		{"svc", false},
		{"computeengine", false},
	}
	for _, tt := range tests {
		s := validSchema()
		s.API = tt.api
		if got := s.LegacyDecodedLink(); got != tt.want {
			t.Errorf("LegacyDecodedLink() for api %q = %v, want %v", tt.api, got, tt.want)
		}
	}
}

func TestSchemaValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Schema)
		wantErr bool
	}{
		{"valid", func(*Schema) {}, false},
		{"missing api", func(s *Schema) { s.API = "" }, true},
		{"missing version", func(s *Schema) { s.Version = "" }, true},
		{"malformed name", func(s *Schema) { s.Name = "pro jects" }, true},
		{"no params", func(s *Schema) { s.OrderedParams = nil }, true},
		{"base url without trailing slash", func(s *Schema) { s.BaseURL = "https://svc.googleapis.com/v1" }, true},
		{"placeholder count mismatch", func(s *Schema) { s.Path = "projects/{project}" }, true},
		{"placeholder order mismatch", func(s *Schema) { s.Path = "projects/{widget}/widgets/{project}" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSchema()
			tt.mutate(&s)
			err := s.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTemplateParams(t *testing.T) {
	tests := []struct {
		path string
		want []string
	}{
		{"projects/{project}/widgets/{widget}", []string{"project", "widget"}},
		{"b/{bucket}/o/{object}", []string{"bucket", "object"}},
		{"{only}", []string{"only"}},
		{"no/placeholders", []string{}},
	}
	for _, tt := range tests {
		if got := TemplateParams(tt.path); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("TemplateParams(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestExpand(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		values map[string]string
		want   string
	}{
		{
			name:   "all values",
			path:   "projects/{project}/widgets/{widget}",
			values: map[string]string{"project": "p1", "widget": "w1"},
			want:   "projects/p1/widgets/w1",
		},
		{
			name:   "missing value keeps placeholder",
			path:   "projects/{project}/widgets/{widget}",
			values: map[string]string{"widget": "w1"},
			want:   "projects/{project}/widgets/w1",
		},
		{
			name:   "values are path-escaped",
			path:   "b/{bucket}/o/{object}",
			values: map[string]string{"bucket": "bkt", "object": "dir/obj 1.txt"},
			want:   "b/bkt/o/dir%2Fobj%201.txt",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Expand(tt.path, tt.values); got != tt.want {
				t.Fatalf("Expand() = %q, want %q", got, tt.want)
			}
		})
	}
}
