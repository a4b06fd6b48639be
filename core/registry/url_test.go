package registry

import (
	"errors"
	"testing"
)

func TestParseURL_Canonical(t *testing.T) {
	reg := newTestRegistry(t)

	r, err := reg.ParseURL("https://svc.googleapis.com/v1/projects/myproj/widgets/mywidget")
	if err != nil {
		t.Fatalf("ParseURL failed: %v", err)
	}
	if r.Collection() != "svc.projects.widgets" {
		t.Errorf("collection = %q", r.Collection())
	}
	mustParam(t, r, "project", "myproj")
	mustParam(t, r, "widget", "mywidget")
}

func TestParseURL_CanonicalDefaultVersion(t *testing.T) {
	reg := newTestRegistry(t)

	// No version segment: the API's default version applies.
	r, err := reg.ParseURL("https://svc.googleapis.com/projects/myproj")
	if err != nil {
		t.Fatalf("ParseURL failed: %v", err)
	}
	if r.Collection() != "svc.projects" {
		t.Errorf("collection = %q", r.Collection())
	}
	mustParam(t, r, "project", "myproj")
}

func TestParseURL_PathStyleHost(t *testing.T) {
	reg := newTestRegistry(t)

	r, err := reg.ParseURL("https://www.googleapis.com/storage/v1/b/mybucket")
	if err != nil {
		t.Fatalf("ParseURL failed: %v", err)
	}
	if r.Collection() != "storage.buckets" {
		t.Errorf("collection = %q", r.Collection())
	}
	mustParam(t, r, "bucket", "mybucket")
}

func TestParseURL_NonCanonicalHost(t *testing.T) {
	reg := newTestRegistry(t)

	r, err := reg.ParseURL("https://api.example.com/svc/v1/projects/p/widgets/w")
	if err != nil {
		t.Fatalf("ParseURL failed: %v", err)
	}
	if r.Collection() != "svc.projects.widgets" {
		t.Errorf("collection = %q", r.Collection())
	}
	mustParam(t, r, "widget", "w")
}

func TestParseURL_EndpointOverride(t *testing.T) {
	reg := newTestRegistry(t, WithEndpointOverride("svc", "https://staging.internal:8443/svc-api/"))

	r, err := reg.ParseURL("https://staging.internal:8443/svc-api/v1/projects/p/widgets/w")
	if err != nil {
		t.Fatalf("ParseURL failed: %v", err)
	}
	mustParam(t, r, "project", "p")
	link, err := r.SelfLink()
	if err != nil {
		t.Fatal(err)
	}
	if want := "https://staging.internal:8443/svc-api/v1/projects/p/widgets/w"; link != want {
		t.Errorf("link = %q, want %q", link, want)
	}
}

func TestParseURL_NestedOverridesLongestWins(t *testing.T) {
	reg := newTestRegistry(t,
		WithEndpointOverride("svc", "https://gateway.internal/api/"),
		WithEndpointOverride("storage", "https://gateway.internal/api/storage/"),
	)

	r, err := reg.ParseURL("https://gateway.internal/api/storage/v1/b/mybucket")
	if err != nil {
		t.Fatalf("ParseURL failed: %v", err)
	}
	if r.Collection() != "storage.buckets" {
		t.Errorf("collection = %q", r.Collection())
	}
	mustParam(t, r, "bucket", "mybucket")
}

func TestParseURL_QueryAndFragmentStripped(t *testing.T) {
	reg := newTestRegistry(t)

	r, err := reg.ParseURL("https://svc.googleapis.com/v1/projects/myproj/widgets/w?alt=json#section")
	if err != nil {
		t.Fatalf("ParseURL failed: %v", err)
	}
	mustParam(t, r, "project", "myproj")
	mustParam(t, r, "widget", "w")
	link, err := r.SelfLink()
	if err != nil {
		t.Fatal(err)
	}
	if want := "https://svc.googleapis.com/v1/projects/myproj/widgets/w"; link != want {
		t.Errorf("link = %q, want %q", link, want)
	}
}

func TestParseURL_DefectiveCatalogIsNotUserError(t *testing.T) {
	reg := New(conflictingCatalog())

	_, err := reg.ParseURL("https://dup.googleapis.com/v1/things/t1")
	var ambiguous *AmbiguousPathError
	if !errors.As(err, &ambiguous) {
		t.Fatalf("err = %v, want AmbiguousPathError", err)
	}
	if IsUserError(err) {
		t.Error("a defective catalog must not surface as a user error")
	}
}

func TestParseURL_TerminalCollapse(t *testing.T) {
	reg := newTestRegistry(t)

	// Object names may contain slashes; the trailing tokens collapse
	// into the terminal parameter.
	r, err := reg.ParseURL("https://www.googleapis.com/storage/v1/b/mybucket/o/path/to/object.txt")
	if err != nil {
		t.Fatalf("ParseURL failed: %v", err)
	}
	if r.Collection() != "storage.objects" {
		t.Errorf("collection = %q", r.Collection())
	}
	mustParam(t, r, "bucket", "mybucket")
	mustParam(t, r, "object", "path/to/object.txt")
}

func TestParseURL_NoScheme(t *testing.T) {
	reg := newTestRegistry(t)

	_, err := reg.ParseURL("svc.googleapis.com/v1/projects/p")
	var endpoint *InvalidEndpointError
	if !errors.As(err, &endpoint) {
		t.Fatalf("err = %v, want InvalidEndpointError", err)
	}
}

func TestParseURL_UnknownShape(t *testing.T) {
	reg := newTestRegistry(t)

	tests := []struct {
		name string
		url  string
	}{
		{"unknown literal", "https://svc.googleapis.com/v1/gadgets/g"},
		{"truncated", "https://svc.googleapis.com/v1/projects"},
		{"unknown api", "https://nosuch.googleapis.com/v1/things/t"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := reg.ParseURL(tt.url)
			var invalid *InvalidResourceError
			if !errors.As(err, &invalid) {
				t.Fatalf("err = %v, want InvalidResourceError", err)
			}
		})
	}
}

func TestParseURL_EscapedSegments(t *testing.T) {
	reg := newTestRegistry(t)

	r, err := reg.ParseURL("https://svc.googleapis.com/v1/projects/my%20proj/widgets/w")
	if err != nil {
		t.Fatalf("ParseURL failed: %v", err)
	}
	mustParam(t, r, "project", "my proj")
}

func TestParseURL_MixedBranchRejectedAtRegistration(t *testing.T) {
	reg := newTestRegistry(t)
	if _, err := reg.registerAPIByName("svc", "v1"); err != nil {
		t.Fatal(err)
	}

	// "projects/{x}" would put a second placeholder next to {project}.
	bad := svcSchemas("v1")[0]
	bad.Name = "projects2"
	bad.OrderedParams = []string{"proj"}
	bad.Path = "projects/{proj}"
	err := reg.RegisterSchema(bad)
	var mixed *MixedBranchError
	if !errors.As(err, &mixed) {
		t.Fatalf("err = %v, want MixedBranchError", err)
	}
}

func TestLooksLikeVersion(t *testing.T) {
	tests := []struct {
		segment string
		want    bool
	}{
		{"v1", true},
		{"v1beta1", true},
		{"v2p1alpha", true},
		{"alpha", true},
		{"beta", true},
		{"projects", false},
		{"version", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := looksLikeVersion(tt.segment); got != tt.want {
			t.Errorf("looksLikeVersion(%q) = %v, want %v", tt.segment, got, tt.want)
		}
	}
}
